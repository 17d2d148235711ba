// Copyright 2017, Kerby Shedden and the Muscato contributors.

package pantr

import (
	"fmt"
	"os"

	"github.com/kshedden/pantr/config"
	"github.com/kshedden/pantr/emit"
	"github.com/kshedden/pantr/reads"
)

// writeNonMatch re-opens the original input for a second streaming pass
// (§C.2, supplementing spec.md §6 with a "-nonmatch" flag) and writes every
// read whose title was never marked as matched during the main pass to
// cfg.NonMatchFile as FASTQ, mirroring muscato.go's writeNonMatch.
func writeNonMatch(cfg *config.Config, format reads.Format, filter *emit.NonMatchFilter) error {
	path := cfg.FastaInput
	if cfg.FastqInput != "" {
		path = cfg.FastqInput
	}
	in, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("pantr: reopening %s for non-match pass: %w", path, err)
	}
	defer in.Close()

	out, err := os.Create(cfg.NonMatchFile)
	if err != nil {
		return fmt.Errorf("pantr: creating %s: %w", cfg.NonMatchFile, err)
	}
	defer out.Close()

	rd := reads.NewReader(in, format)
	for {
		pr, ok, err := rd.Next()
		if err != nil {
			return fmt.Errorf("pantr: non-match pass: %w", err)
		}
		if !ok {
			break
		}
		if err := filter.WriteNonMatchFastq(out, pr.Title1, pr.Seq1); err != nil {
			return fmt.Errorf("pantr: writing non-match record: %w", err)
		}
		if err := filter.WriteNonMatchFastq(out, pr.Title2, pr.Seq2); err != nil {
			return fmt.Errorf("pantr: writing non-match record: %w", err)
		}
	}
	return nil
}
