// Package snapshot persists the resting orders of a book so recovery
// only has to replay the entry WAL written after the snapshot seq.
//
// Orders are stored in walk order (bids best first, then asks best
// first, oldest first within a level). Re-adding them in that order
// rebuilds identical levels and FIFO queues.
package snapshot
