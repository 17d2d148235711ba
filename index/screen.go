// Copyright 2017, Kerby Shedden and the Muscato contributors.

package index

import (
	"encoding/binary"
	"math/rand"

	"github.com/chmduquesne/rollinghash/buzhash32"
	"github.com/golang-collections/go-datastructures/bitarray"
)

// screen is a standard Bloom filter over canonical k-mers: numHash
// independent buzhash32 hashes (each seeded with its own random byte-value
// table, the same construction muscato_screen.go's genTables/buildBloom use
// for its window sketches) each select one bit of a shared bitarray.
type screen struct {
	bits    bitarray.BitArray
	nbits   uint64
	tables  [][256]uint32
	numHash int
}

// screenSeed fixes the Bloom hash-table generation so that two screens
// built from the same (bits, numHash) are interchangeable across a run —
// the reference's genTables reseeds math/rand per-process, which we
// replace with a package-local deterministic generator for reproducible
// index construction.
const screenSeed = 0x9e3779b97f4a7c15

func newScreen(nbits uint64, numHash int) *screen {
	s := &screen{
		bits:    bitarray.NewBitArray(nbits),
		nbits:   nbits,
		tables:  make([][256]uint32, numHash),
		numHash: numHash,
	}
	rng := rand.New(rand.NewSource(screenSeed))
	for j := 0; j < numHash; j++ {
		seen := make(map[uint32]bool, 256)
		for i := 0; i < 256; i++ {
			for {
				v := rng.Uint32()
				if !seen[v] {
					s.tables[j][i] = v
					seen[v] = true
					break
				}
			}
		}
	}
	return s
}

func (s *screen) indices(km uint64) []uint64 {
	var buf [8]byte
	binary.LittleEndian.PutUint64(buf[:], km)
	out := make([]uint64, s.numHash)
	for j := 0; j < s.numHash; j++ {
		h := buzhash32.NewFromUint32Array(s.tables[j])
		h.Write(buf[:])
		out[j] = uint64(h.Sum32()) % s.nbits
	}
	return out
}

func (s *screen) add(km uint64) {
	for _, idx := range s.indices(km) {
		s.bits.SetBit(idx)
	}
}

func (s *screen) test(km uint64) bool {
	for _, idx := range s.indices(km) {
		ok, err := s.bits.GetBit(idx)
		if err != nil || !ok {
			return false
		}
	}
	return true
}
