// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package kmer implements the fixed-width 2-bit nucleotide encoding used
// throughout pantr: converting a read into its ordered numeric k-mers, and
// computing canonical forms and reverse complements of those k-mers.
//
// A k-mer of width k is packed into the low 2*k bits of a uint64, one base
// per 2 bits, most-significant base first: the first nucleotide of the
// k-mer occupies the highest two bits among the 2*k used, the last
// nucleotide occupies the lowest two bits. Sliding the window forward by one
// base is a left shift of the whole value by two bits (dropping the
// departing base off the top) followed by OR-ing in the new base's code at
// the bottom — the same layout aQueryFasta_thread.cpp's rolling k-mer
// builder and getOutNodes rely on.
package kmer

import "fmt"

// MaxK is the largest k-mer width this encoding supports in a uint64.
const MaxK = 31

// code maps an uppercase nucleotide to its 2-bit value. -1 marks a
// non-ACGT character (including N), which breaks a window rather than
// producing an invalid k-mer.
var code [256]int8

func init() {
	for i := range code {
		code[i] = -1
	}
	code['A'] = 0
	code['C'] = 1
	code['G'] = 2
	code['T'] = 3
}

// Mask returns the bitmask selecting the low 2*k bits used by a k-mer of
// width k.
func Mask(k int) uint64 {
	if k >= 32 {
		return ^uint64(0)
	}
	return (uint64(1) << uint(2*k)) - 1
}

// Base returns the nucleotide at read-order position i (0 = first base in
// the k-mer) of a k-mer of width k.
func Base(km uint64, k, i int) byte {
	shift := uint(2 * (k - 1 - i))
	v := (km >> shift) & 3
	return "ACGT"[v]
}

// LastBase returns the 2-bit code of the final (lowest-order) base of a
// k-mer, i.e. km % 4.
func LastBase(km uint64) uint64 {
	return km & 3
}

// ReverseComplement returns the reverse complement of a k-mer of width k.
// Complementing a 2-bit code under this encoding (A=0,C=1,G=2,T=3) is
// bitwise-NOT of the low two bits (A<->T is 0<->3, C<->G is 1<->2), and
// reversing requires re-ordering the k base pairs.
func ReverseComplement(km uint64, k int) uint64 {
	var rc uint64
	for i := 0; i < k; i++ {
		b := km & 3
		cb := b ^ 3
		rc = (rc << 2) | cb
		km >>= 2
	}
	return rc
}

// Canonical returns the lexicographically smaller of km and its reverse
// complement, i.e. the strand-insensitive representative used as a key into
// the inverted index and TR count table (§3).
func Canonical(km uint64, k int) uint64 {
	rc := ReverseComplement(km, k)
	if rc < km {
		return rc
	}
	return km
}

// Encode converts a fixed-width nucleotide string to its directed (not
// canonicalized) numeric k-mer. ok is false if seq contains a non-ACGT
// character or is not of length k.
func Encode(seq []byte, k int) (km uint64, ok bool) {
	if len(seq) != k {
		return 0, false
	}
	var v uint64
	for _, c := range seq {
		b := code[c]
		if b < 0 {
			return 0, false
		}
		v = (v << 2) | uint64(b)
	}
	return v, true
}

// ExtractDirected returns the ordered sequence of directed (non-canonical)
// numeric k-mers appearing in s, one per valid window of width k, in read
// order. A window containing any non-ACGT character is invalid and is
// simply omitted: a stretch of Ns creates a gap in the output, not an
// error. dst, if non-nil and of sufficient capacity, is reused to avoid an
// allocation per read; its backing array is overwritten and returned as the
// result's backing array.
//
// The rolling encoder is O(len(s)): each window reuses the previous
// window's bits (shift-left-and-mask) rather than re-encoding k bases.
func ExtractDirected(dst []uint64, s []byte, k int) []uint64 {
	dst = dst[:0]
	if k <= 0 || len(s) < k {
		return dst
	}
	mask := Mask(k)

	var v uint64
	run := 0 // number of consecutive valid bases accumulated so far
	for i := 0; i < len(s); i++ {
		b := code[s[i]]
		if b < 0 {
			v = 0
			run = 0
			continue
		}
		v = ((v << 2) | uint64(b)) & mask
		run++
		if run >= k {
			dst = append(dst, v)
		}
	}
	return dst
}

// ExtractCanonical is ExtractDirected followed by canonicalization of each
// k-mer, matching read2kmers' canonical-mode output (§4.1): the ordered
// sequence of canonical numeric k-mers a read contains, one per valid
// window.
func ExtractCanonical(dst []uint64, s []byte, k int) []uint64 {
	dst = ExtractDirected(dst, s, k)
	for i, v := range dst {
		dst[i] = Canonical(v, k)
	}
	return dst
}

// String renders a k-mer of width k back to its nucleotide string, for
// logging and alignment-trace output.
func String(km uint64, k int) string {
	buf := make([]byte, k)
	for i := k - 1; i >= 0; i-- {
		buf[i] = "ACGT"[km&3]
		km >>= 2
	}
	return string(buf)
}

// ValidateK returns a descriptive error if k is out of the range this
// package's uint64 encoding supports.
func ValidateK(k int) error {
	if k <= 0 || k > MaxK {
		return fmt.Errorf("kmer: k=%d out of supported range (1..%d)", k, MaxK)
	}
	return nil
}
