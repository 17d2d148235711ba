// Copyright 2017, Kerby Shedden and the Muscato contributors.

package config

import (
	"flag"
	"fmt"
)

// ParseFlags registers the §6 CLI surface on fs, parses args, and returns a
// Config: flags override the fields of whatever Load produced for
// -config, or a zero Config if -config was not given. A flag left at its
// zero value never overwrites a config-file value, the same two-pass
// convention as the teacher's handleArgs.
func ParseFlags(fs *flag.FlagSet, args []string) (*Config, error) {
	configFile := fs.String("config", "", "JSON or TOML file containing configuration parameters")
	k := fs.Int("k", 0, "k-mer size")
	qs := fs.String("qs", "", "prefix for <p>.tr.kmers / <p>.ntr.kmers / <p>.graph.kmers")
	fai := fs.String("fai", "", "interleaved paired-end FASTA input")
	fqi := fs.String("fqi", "", "interleaved paired-end FASTQ input")
	out := fs.String("o", "", "output prefix")
	workers := fs.Int("p", 0, "worker count")
	cth := fs.Uint64("cth", 0, "per-strand count threshold")
	rth := fs.Float64("rth", 0, "specificity ratio threshold, in [0.5, 1]")
	g := fs.Int("g", 0, "enable graph threading without correction, argument is thread_cth")
	gc := fs.Int("gc", 0, "enable graph threading with correction, argument is thread_cth")
	align := fs.Bool("a", false, "emit alignment traces (requires -g/-gc)")
	extract := fs.Int("e", 0, "write extracted reads to stdout: 1 preserve titles, 2 annotate locus/mate")
	nFilter := fs.Int("kf-n", 0, "pre-filter sample count (use with -kf-nm)")
	nmFilter := fs.Int("kf-nm", 0, "pre-filter hit threshold (use with -kf-n)")
	sim := fs.Int("s", 0, "simulation mode: 1 TR-source, 2 genome-source")
	gmap := fs.String("m", "", "genome-to-pangenome locus map (simulation mode 2)")
	nonmatch := fs.String("nonmatch", "", "write unassigned read pairs to this FASTQ path")
	logDir := fs.String("logdir", "", "directory for per-run logs")
	profDir := fs.String("prof", "", "directory to write CPU/memory profiles into")
	bloomScreen := fs.Bool("bloom", false, "enable the Bloom fast-screen layer in front of the inverted index")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	var c *Config
	if *configFile != "" {
		loaded, err := Load(*configFile)
		if err != nil {
			return nil, err
		}
		c = loaded
	} else {
		c = new(Config)
	}

	if *k != 0 {
		c.K = *k
	}
	if *qs != "" {
		c.QueryKmerPrefix = *qs
	}
	if *fai != "" {
		c.FastaInput = *fai
	}
	if *fqi != "" {
		c.FastqInput = *fqi
	}
	if *out != "" {
		c.OutPrefix = *out
	}
	if *workers != 0 {
		c.Workers = *workers
	}
	if *cth != 0 {
		c.Cth = *cth
	}
	if *rth != 0 {
		c.Rth = *rth
	}
	if *g != 0 {
		c.ThreadCth = *g
		c.Correction = false
	}
	if *gc != 0 {
		c.ThreadCth = *gc
		c.Correction = true
	}
	if *align {
		c.Align = true
	}
	if *extract != 0 {
		c.ExtractMode = *extract
	}
	if *nFilter != 0 {
		c.NFilter = *nFilter
	}
	if *nmFilter != 0 {
		c.NMFilter = *nmFilter
	}
	if *sim != 0 {
		c.SimMode = *sim
	}
	if *gmap != "" {
		c.GenomeMapFile = *gmap
	}
	if *nonmatch != "" {
		c.NonMatchFile = *nonmatch
	}
	if *logDir != "" {
		c.LogDir = *logDir
	}
	if *profDir != "" {
		c.ProfileDir = *profDir
	}
	if *bloomScreen {
		c.BloomScreen = true
	}

	if *g != 0 && *gc != 0 {
		return nil, fmt.Errorf("config: -g and -gc are mutually exclusive")
	}

	return c, nil
}
