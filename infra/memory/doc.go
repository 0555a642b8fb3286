// Package memory holds typed object pools used on hot write paths.
package memory
