// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package pantr orchestrates one end-to-end run: load the inverted index,
// TR count table and optional de Bruijn graphs, drive the §4.6 worker
// pipeline over the input read stream to completion, and write the
// updated .tr.kmers/.msa/.err/non-match outputs. This plays the role
// muscato.go's single-file main driver plays in the teacher, before the
// later cmd/ package split.
package pantr

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/profile"

	"github.com/kshedden/pantr/config"
	"github.com/kshedden/pantr/emit"
	"github.com/kshedden/pantr/graph"
	"github.com/kshedden/pantr/index"
	"github.com/kshedden/pantr/kmerfile"
	"github.com/kshedden/pantr/pipeline"
	"github.com/kshedden/pantr/reads"
	"github.com/kshedden/pantr/sim"
)

// Run executes one pantr invocation against an already-validated Config
// (config.Validate must have been called). It returns the first fatal
// error encountered; per-read rejections are never surfaced as errors
// (§7).
func Run(cfg *config.Config) error {
	runID, err := uuid.NewUUID()
	if err != nil {
		return fmt.Errorf("pantr: generating run id: %w", err)
	}
	logDir := filepath.Join(cfg.LogDir, runID.String())
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return fmt.Errorf("pantr: creating log directory %s: %w", logDir, err)
	}

	logger, logf, err := setupLog(logDir)
	if err != nil {
		return err
	}
	defer logf.Close()

	if cfg.ProfileDir != "" {
		stop := profile.Start(profile.ProfilePath(cfg.ProfileDir))
		defer stop.Stop()
	}

	logger.Printf("run id %s", runID.String())
	logger.Printf("storing per-run logs in %s", logDir)

	ix, table, err := loadIndex(cfg)
	if err != nil {
		return err
	}
	logger.Printf("loaded index: %d loci, %d distinct k-mers", ix.NLoci, ix.Len())

	var gdb *graph.DB
	if cfg.ThreadCth > 0 {
		gdb, err = loadGraphs(cfg, ix.NLoci)
		if err != nil {
			return err
		}
		logger.Printf("loaded graph database for %d loci", gdb.NLoci())
	}

	locusMap, err := loadLocusMap(cfg)
	if err != nil {
		return err
	}

	reader, inFile, format, err := openReader(cfg)
	if err != nil {
		return err
	}
	defer inFile.Close()

	var nonMatch *emit.NonMatchFilter
	if cfg.NonMatchFile != "" {
		nonMatch = emit.NewNonMatchFilter(1_000_000, 1e-4)
	}

	out := os.Stdout
	p := pipeline.New(cfg, reader, ix, table, gdb, out, logger, locusMap, nonMatch)

	logger.Printf("starting worker pipeline with %d workers", cfg.Workers)
	if err := p.Run(); err != nil {
		return fmt.Errorf("pantr: pipeline: %w", err)
	}

	st := p.Stats()
	logger.Printf("done: nReads=%d nPreFiltered=%d nThreadingReads=%d nFeasibleReads=%d",
		st.Reads, st.PreFiltered, st.ThreadingReads, st.FeasibleReads)

	if cfg.ExtractMode != 1 {
		if err := writeTRKmers(cfg, table, ix.NLoci); err != nil {
			return err
		}
		logger.Printf("wrote %s.tr.kmers", cfg.OutPrefix)
	}

	if cfg.SimMode == 1 {
		if err := writeMSA(cfg, p.MSAStats()); err != nil {
			return err
		}
		logger.Printf("wrote %s.msa", cfg.OutPrefix)
	}
	if cfg.SimMode == 2 {
		if err := writeErrDB(cfg, p.ErrDB()); err != nil {
			return err
		}
		logger.Printf("wrote %s.err", cfg.OutPrefix)
	}

	if cfg.NonMatchFile != "" {
		if err := writeNonMatch(cfg, format, nonMatch); err != nil {
			return err
		}
		logger.Printf("wrote %s", cfg.NonMatchFile)
	}

	return nil
}

func loadIndex(cfg *config.Config) (*index.Index, *index.Table, error) {
	trPath := cfg.QueryKmerPrefix + ".tr.kmers"
	nLoci, err := kmerfile.CountLoci(trPath)
	if err != nil {
		return nil, nil, fmt.Errorf("pantr: counting loci in %s: %w", trPath, err)
	}

	var screenBits uint64
	var numHash int
	if cfg.BloomScreen {
		screenBits, numHash = cfg.ScreenBits, cfg.NumHashScreen
	}

	ix := index.New(cfg.K, nLoci, screenBits, numHash)
	if err := ix.LoadInto(trPath); err != nil {
		return nil, nil, fmt.Errorf("pantr: loading %s: %w", trPath, err)
	}

	ntrPath := cfg.QueryKmerPrefix + ".ntr.kmers"
	if _, statErr := os.Stat(ntrPath); statErr == nil {
		if err := ix.LoadMembershipOnly(ntrPath, nLoci); err != nil {
			return nil, nil, fmt.Errorf("pantr: loading %s: %w", ntrPath, err)
		}
	}

	table := index.NewTable(cfg.K, nLoci)
	if err := table.LoadFrom(trPath); err != nil {
		return nil, nil, fmt.Errorf("pantr: loading TR table from %s: %w", trPath, err)
	}

	return ix, table, nil
}

func loadGraphs(cfg *config.Config, nLoci int) (*graph.DB, error) {
	graphPath := cfg.QueryKmerPrefix + ".graph.kmers"
	gdb := graph.NewDB(cfg.K, nLoci)
	if err := gdb.LoadFrom(graphPath); err != nil {
		return nil, fmt.Errorf("pantr: loading %s: %w", graphPath, err)
	}
	return gdb, nil
}

// loadLocusMap reads the optional genome-to-pangenome locus map (-m), one
// pangenome locus id per line, index 0 corresponding to genome locus 0.
func loadLocusMap(cfg *config.Config) ([]int, error) {
	if cfg.GenomeMapFile == "" {
		return nil, nil
	}
	f, err := os.Open(cfg.GenomeMapFile)
	if err != nil {
		return nil, fmt.Errorf("pantr: opening genome locus map %s: %w", cfg.GenomeMapFile, err)
	}
	defer f.Close()

	var out []int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		n, err := strconv.Atoi(line)
		if err != nil {
			return nil, fmt.Errorf("pantr: bad locus id %q in %s: %w", line, cfg.GenomeMapFile, err)
		}
		out = append(out, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("pantr: reading genome locus map %s: %w", cfg.GenomeMapFile, err)
	}
	return out, nil
}

func openReader(cfg *config.Config) (*reads.Reader, *os.File, reads.Format, error) {
	path := cfg.FastaInput
	format := reads.FASTA
	if cfg.FastqInput != "" {
		path = cfg.FastqInput
		format = reads.FASTQ
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, nil, format, fmt.Errorf("pantr: opening read input %s: %w", path, err)
	}
	return reads.NewReader(f, format), f, format, nil
}

func writeTRKmers(cfg *config.Config, table *index.Table, nLoci int) error {
	path := cfg.OutPrefix + ".tr.kmers"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pantr: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := emit.WriteTRKmers(f, table, nLoci); err != nil {
		return fmt.Errorf("pantr: writing %s: %w", path, err)
	}
	return nil
}

func writeMSA(cfg *config.Config, m *sim.MSAStats) error {
	path := cfg.OutPrefix + ".msa"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pantr: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := m.WriteTo(f); err != nil {
		return fmt.Errorf("pantr: writing %s: %w", path, err)
	}
	return nil
}

func writeErrDB(cfg *config.Config, e *sim.ErrDB) error {
	path := cfg.OutPrefix + ".err"
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("pantr: creating %s: %w", path, err)
	}
	defer f.Close()
	if err := e.WriteTo(f); err != nil {
		return fmt.Errorf("pantr: writing %s: %w", path, err)
	}
	return nil
}

