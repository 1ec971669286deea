package alias

import (
	"strconv"
	"strings"
)

// Mixing constants of MurmurHash2.
const (
	m = 0x5bd1e995
	r = 24
)

// HashWidth is the number of base-36 characters of a scope hash.
const HashWidth = 6

// murmur2 is 32-bit MurmurHash2 with zero seed.
func murmur2(data string) uint32 {
	var h uint32

	i, n := 0, len(data)
	for ; n >= 4; i, n = i+4, n-4 {
		k := uint32(data[i]) | uint32(data[i+1])<<8 | uint32(data[i+2])<<16 | uint32(data[i+3])<<24
		k *= m
		k ^= k >> r
		h = (k * m) ^ (h * m)
	}

	switch n {
	case 3:
		h ^= uint32(data[i+2]) << 16
		fallthrough
	case 2:
		h ^= uint32(data[i+1]) << 8
		fallthrough
	case 1:
		h ^= uint32(data[i])
		h *= m
	}

	h ^= h >> 13
	h *= m
	return h ^ (h >> 15)
}

// Hash returns fixed width base-36 scope hash of unit identity (source path or
// content). Result is always HashWidth characters long.
func Hash(identity string) string {
	s := strconv.FormatUint(uint64(murmur2(identity)), 36)
	if len(s) < HashWidth {
		s = strings.Repeat("0", HashWidth-len(s)) + s
	}
	return s[:HashWidth]
}
