// Copyright 2017, Kerby Shedden and the Muscato contributors.

package emit

import (
	"fmt"
	"io"
)

// ExtractMode selects the `-e` title rewriting rule.
type ExtractMode int

const (
	// ExtractPreserveTitles (-e 1): titles written unchanged.
	ExtractPreserveTitles ExtractMode = 1
	// ExtractAnnotateLocus (-e 2): titles get ":<locus>_<mate>" appended.
	ExtractAnnotateLocus ExtractMode = 2
)

// WriteExtracted writes one extracted pair (§6 "Extracted reads"): a
// title line then a sequence line, per mate.
func WriteExtracted(w io.Writer, mode ExtractMode, title1, seq1, title2, seq2 string, locus int) error {
	t1, t2 := title1, title2
	if mode == ExtractAnnotateLocus {
		t1 = fmt.Sprintf("%s:%d_0", title1, locus)
		t2 = fmt.Sprintf("%s:%d_1", title2, locus)
	}
	if _, err := fmt.Fprintf(w, "%s\n%s\n%s\n%s\n", t1, seq1, t2, seq2); err != nil {
		return err
	}
	return nil
}
