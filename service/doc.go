// Package service is the only write entry point into the book.
//
// Every command is validated against the book, journalled in the entry
// WAL, applied, and then announced through the outbox and the quote
// channel. Transports (gRPC, Kafka) call into OrderService and never
// touch the book directly.
package service
