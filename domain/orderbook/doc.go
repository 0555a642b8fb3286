// Package orderbook implements the in-memory resting order book for a
// single instrument. Orders are grouped into FIFO price levels, each
// side keeps an ordered price index, and the best bid and best ask are
// cached so reading them is O(1).
//
// The book never crosses orders. Execution is always requested
// explicitly by the caller with a fill quantity.
//
// The book is single-writer and not safe for concurrent use. Callers
// that share a book between goroutines must serialise access
// themselves (see package service).
package orderbook
