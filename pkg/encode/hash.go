package encode

import (
	"hash/crc32"
	"strconv"
)

// Crc32HashCode produces a non-negative CRC32 hash string.
func Crc32HashCode(b []byte) string {
	return strconv.FormatUint(uint64(crc32.ChecksumIEEE(b)), 10)
}

// ShardIndex maps key onto one of n buckets. n must be positive.
func ShardIndex(key string, n int) int {
	return int(crc32.ChecksumIEEE([]byte(key)) % uint32(n))
}
