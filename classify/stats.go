// Copyright 2017, Kerby Shedden and the Muscato contributors.

package classify

import (
	"sort"

	"github.com/kshedden/pantr/index"
)

// KMC is the per-mate occurrence count for one unique k-mer across a pair
// (§3 PairKmerCount).
type KMC struct {
	Fwd uint8
	Rev uint8
}

// CollapseDuplicates implements countDupRemove: tag every k-mer with its
// mate of origin, concatenate the two mates' lists, sort by k-mer value,
// and collapse runs of equal k-mers into one (kmer, KMC) entry counting how
// many times it occurred in each mate.
func CollapseDuplicates(kmers1, kmers2 []uint64) (kmers []uint64, dup []KMC) {
	type tagged struct {
		km  uint64
		rev bool
	}
	all := make([]tagged, 0, len(kmers1)+len(kmers2))
	for _, km := range kmers1 {
		all = append(all, tagged{km, false})
	}
	for _, km := range kmers2 {
		all = append(all, tagged{km, true})
	}
	if len(all) == 0 {
		return nil, nil
	}
	sort.Slice(all, func(i, j int) bool { return all[i].km < all[j].km })

	bump := func(kmc *KMC, rev bool) {
		if rev {
			kmc.Rev++
		} else {
			kmc.Fwd++
		}
	}

	kmers = make([]uint64, 0, len(all))
	dup = make([]KMC, 0, len(all))
	last := all[0].km
	var cur KMC
	bump(&cur, all[0].rev)
	for i := 1; i < len(all); i++ {
		if all[i].km != last {
			kmers = append(kmers, last)
			dup = append(dup, cur)
			cur = KMC{}
			last = all[i].km
		}
		bump(&cur, all[i].rev)
	}
	kmers = append(kmers, last)
	dup = append(dup, cur)
	return kmers, dup
}

// FillStats implements fillstats: collapse duplicate k-mers across both
// mates, drop any k-mer absent from the index, sort the survivors by
// ascending index multiplicity (most specific k-mers scanned first), and
// compute remain[i], the total fwd+rev count contributed by entries at
// indices strictly greater than i — the maximum score any locus could
// still gain by processing the remainder of the list.
func FillStats(ix *index.Index, kmers1, kmers2 []uint64) (kmers []uint64, dup []KMC, remain []uint64) {
	kmers, dup = CollapseDuplicates(kmers1, kmers2)
	if len(kmers) == 0 {
		return nil, nil, nil
	}

	type entry struct {
		km   uint64
		d    KMC
		mult int
	}
	entries := make([]entry, len(kmers))
	for i, km := range kmers {
		m := -1
		if ix.MayContain(km) {
			if mm, ok := ix.Multiplicity(km); ok {
				m = mm
			}
		}
		entries[i] = entry{km, dup[i], m}
	}
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].mult == -1 {
			return false
		}
		if entries[j].mult == -1 {
			return true
		}
		return entries[i].mult < entries[j].mult
	})
	n := len(entries)
	for i, e := range entries {
		if e.mult == -1 {
			n = i
			break
		}
	}
	entries = entries[:n]
	if len(entries) == 0 {
		return nil, nil, nil
	}

	kmers = make([]uint64, len(entries))
	dup = make([]KMC, len(entries))
	for i, e := range entries {
		kmers[i] = e.km
		dup[i] = e.d
	}

	remain = make([]uint64, len(dup))
	var running uint64
	for _, d := range dup {
		running += uint64(d.Fwd) + uint64(d.Rev)
	}
	for i, d := range dup {
		running -= uint64(d.Fwd) + uint64(d.Rev)
		remain[i] = running
	}
	return kmers, dup, remain
}
