package wal

import "hash/crc32"

var castagnoli = crc32.MakeTable(crc32.Castagnoli)

// CRC32 checksums a journal frame.
func CRC32(data []byte) uint32 {
	return crc32.Checksum(data, castagnoli)
}

func CRC32Valid(data []byte, sum uint32) bool {
	return CRC32(data) == sum
}
