// Copyright 2017, Kerby Shedden and the Muscato contributors.

package emit

import (
	"fmt"
	"io"
)

// WriteAlignment writes one `-a` alignment-trace line (§6): srcLocus,
// destLocus, then each mate's title/sequence/op-trace, with mate2's op
// trace preceding mate2's own title (matching the reference's
// `writeAlignments` field order, where ops1 covers mate1's k-mers but is
// emitted last).
func WriteAlignment(w io.Writer, srcLocus, destLocus int, title1, seq1 string, ops2 []byte, title2, seq2 string, ops1 []byte) error {
	_, err := fmt.Fprintf(w, "%d\t%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
		srcLocus, destLocus, title1, seq1, string(ops2), title2, seq2, string(ops1))
	return err
}
