package draw

import (
	"encoding/binary"
	"math/bits"

	"github.com/louisbranch/lottery/internal/random"
)

// xoshiro512 is the xoshiro512** generator. A seed maps onto the eight state
// words little-endian; an all-zero seed is expanded through SplitMix64 since
// the all-zero state never leaves zero.
type xoshiro512 struct {
	s [8]uint64
}

func newXoshiro512(seed random.Seed) *xoshiro512 {
	x := &xoshiro512{}
	zero := true
	for i := range x.s {
		x.s[i] = binary.LittleEndian.Uint64(seed[i*8 : i*8+8])
		if x.s[i] != 0 {
			zero = false
		}
	}
	if zero {
		var sm splitMix64
		for i := range x.s {
			x.s[i] = sm.next()
		}
	}
	return x
}

func (x *xoshiro512) Uint64() uint64 {
	s := &x.s
	result := bits.RotateLeft64(s[1]*5, 7) * 9
	t := s[1] << 11

	s[2] ^= s[0]
	s[5] ^= s[1]
	s[1] ^= s[2]
	s[7] ^= s[3]
	s[3] ^= s[4]
	s[4] ^= s[5]
	s[0] ^= s[6]
	s[6] ^= s[7]

	s[6] ^= t
	s[7] = bits.RotateLeft64(s[7], 21)

	return result
}

type splitMix64 struct {
	state uint64
}

func (sm *splitMix64) next() uint64 {
	sm.state += 0x9e3779b97f4a7c15
	z := sm.state
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
