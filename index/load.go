// Copyright 2017, Kerby Shedden and the Muscato contributors.

package index

import (
	"fmt"

	"github.com/kshedden/pantr/kmerfile"
)

// LoadInto scans a §6 k-mer file and adds every row's canonical k-mer to
// ix under the row's own locus id. Used for files whose header locus ids
// are meaningful per-locus ids (the TR k-mer file).
func (ix *Index) LoadInto(path string) error {
	f, err := kmerfile.Open(path)
	if err != nil {
		return fmt.Errorf("index: opening %s: %w", path, err)
	}
	defer f.Close()
	return kmerfile.Scan(f, ix.K, func(r kmerfile.Row) error {
		ix.Add(r.Canonical, r.Locus)
		return nil
	})
}

// LoadMembershipOnly scans a §6 k-mer file and adds every row's canonical
// k-mer to ix under a single fixed locus id, ignoring the file's own
// headers. This matches the reference's readKmersFile2DBi(kmerDBi,
// "baitDB.kmers", nloci): the bait file has no locus structure of its own,
// so every k-mer it contains is recorded under the sentinel "unassigned"
// locus id.
func (ix *Index) LoadMembershipOnly(path string, locus int) error {
	f, err := kmerfile.Open(path)
	if err != nil {
		return fmt.Errorf("index: opening %s: %w", path, err)
	}
	defer f.Close()
	return kmerfile.Scan(f, ix.K, func(r kmerfile.Row) error {
		ix.Add(r.Canonical, locus)
		return nil
	})
}
