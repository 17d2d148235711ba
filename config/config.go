// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package config implements the ambient configuration layer (§A of
// SPEC_FULL.md): a Config struct loadable from JSON or TOML, overridden by
// CLI flags, then validated and defaulted, mirroring the teacher's
// utils.Config/utils.ReadConfig plus muscato.go's handleArgs/checkArgs
// two-pass pattern.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Config holds every tunable named in spec.md §6's CLI surface, plus the
// ambient logging/profiling additions of SPEC_FULL.md §A.
type Config struct {
	// K is the k-mer width (-k, required).
	K int `json:"K" toml:"K"`

	// QueryKmerPrefix is the prefix shared by <p>.tr.kmers, <p>.ntr.kmers,
	// and <p>.graph.kmers (-qs, required).
	QueryKmerPrefix string `json:"QueryKmerPrefix" toml:"QueryKmerPrefix"`

	// FastaInput and FastqInput are mutually exclusive interleaved
	// paired-end input files (-fai / -fqi). Exactly one must be set.
	FastaInput string `json:"FastaInput" toml:"FastaInput"`
	FastqInput string `json:"FastqInput" toml:"FastqInput"`

	// OutPrefix names the updated <prefix>.tr.kmers output (-o), unless
	// ExtractMode is 1.
	OutPrefix string `json:"OutPrefix" toml:"OutPrefix"`

	// Workers is the fixed worker-pool size (-p).
	Workers int `json:"Workers" toml:"Workers"`

	// Cth and Rth are the classifier's per-strand count and specificity
	// ratio thresholds (-cth, -rth).
	Cth uint64  `json:"Cth" toml:"Cth"`
	Rth float64 `json:"Rth" toml:"Rth"`

	// ThreadCth enables graph threading when nonzero (-g/-gc argument).
	// Correction distinguishes -gc (true) from -g (false).
	ThreadCth  int  `json:"ThreadCth" toml:"ThreadCth"`
	Correction bool `json:"Correction" toml:"Correction"`

	// Align emits per-pair alignment traces (-a); requires ThreadCth != 0.
	Align bool `json:"Align" toml:"Align"`

	// ExtractMode selects extracted-read stdout formatting (-e): 0
	// disabled, 1 preserve titles, 2 annotate with locus/mate.
	ExtractMode int `json:"ExtractMode" toml:"ExtractMode"`

	// NFilter and NMFilter override the pre-filter parameters (-kf-n,
	// -kf-nm).
	NFilter  int `json:"NFilter" toml:"NFilter"`
	NMFilter int `json:"NMFilter" toml:"NMFilter"`

	// SimMode and GenomeMapFile select simulation-mode bookkeeping (-s,
	// -m).
	SimMode       int    `json:"SimMode" toml:"SimMode"`
	GenomeMapFile string `json:"GenomeMapFile" toml:"GenomeMapFile"`

	// NonMatchFile, if set, writes every unassigned pair to this FASTQ
	// path (supplemented §C.2 "-nonmatch" flag).
	NonMatchFile string `json:"NonMatchFile" toml:"NonMatchFile"`

	// ReadsPerBatch overrides the worker pipeline's batch size (§4.6
	// default 300000); 0 means use the default.
	ReadsPerBatch int `json:"ReadsPerBatch" toml:"ReadsPerBatch"`

	// LogDir is the directory per-run logs are written under; a run id
	// is appended to it (§A "Run identity"). Empty means
	// "pantr_logs" in the working directory.
	LogDir string `json:"LogDir" toml:"LogDir"`

	// ProfileDir, if set, wraps the run in github.com/pkg/profile
	// (-prof).
	ProfileDir string `json:"ProfileDir" toml:"ProfileDir"`

	// BloomScreen enables the index's Bloom fast-screen layer (SPEC_FULL.md
	// §B.2); ScreenBits and NumHashScreen size it. Purely a constant-factor
	// optimization: disabling it never changes a classification result.
	BloomScreen   bool   `json:"BloomScreen" toml:"BloomScreen"`
	ScreenBits    uint64 `json:"ScreenBits" toml:"ScreenBits"`
	NumHashScreen int    `json:"NumHashScreen" toml:"NumHashScreen"`
}

// Load reads a config file, trying JSON first and falling back to TOML
// when the JSON decode fails, per SPEC_FULL.md §B.6.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c := new(Config)
	jsonErr := json.Unmarshal(data, c)
	if jsonErr == nil {
		return c, nil
	}

	c2 := new(Config)
	if _, tomlErr := toml.Decode(string(data), c2); tomlErr != nil {
		return nil, fmt.Errorf("config: %s is neither valid JSON (%v) nor valid TOML (%v)", path, jsonErr, tomlErr)
	}
	return c2, nil
}
