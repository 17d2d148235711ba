package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadJSON(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"K":21,"QueryKmerPrefix":"run1"}`), 0644))

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 21, c.K)
	require.Equal(t, "run1", c.QueryKmerPrefix)
}

func TestLoadTOML(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.toml")
	require.NoError(t, os.WriteFile(p, []byte("K = 21\nQueryKmerPrefix = \"run1\"\n"), 0644))

	c, err := Load(p)
	require.NoError(t, err)
	require.Equal(t, 21, c.K)
	require.Equal(t, "run1", c.QueryKmerPrefix)
}

func TestLoadRejectsGarbage(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.bad")
	require.NoError(t, os.WriteFile(p, []byte("{not json, not toml :::"), 0644))

	_, err := Load(p)
	require.Error(t, err)
}

func TestParseFlagsOverridesLoadedConfig(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "c.json")
	require.NoError(t, os.WriteFile(p, []byte(`{"K":21,"QueryKmerPrefix":"run1","Workers":2}`), 0644))

	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	c, err := ParseFlags(fs, []string{"-config", p, "-p", "8", "-fqi", "reads.fastq", "-o", "out"})
	require.NoError(t, err)
	require.Equal(t, 21, c.K) // from file, not overridden
	require.Equal(t, 8, c.Workers) // overridden by flag
	require.Equal(t, "reads.fastq", c.FastqInput)
}

func TestParseFlagsRejectsBothGAndGC(t *testing.T) {
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	_, err := ParseFlags(fs, []string{"-g", "5", "-gc", "5"})
	require.Error(t, err)
}

func TestValidateDefaults(t *testing.T) {
	c := &Config{K: 21, QueryKmerPrefix: "p", FastqInput: "r.fastq", OutPrefix: "out"}
	require.NoError(t, Validate(c))
	require.Equal(t, 1, c.Workers)
	require.Equal(t, uint64(1), c.Cth)
	require.Equal(t, 0.5, c.Rth)
	require.Equal(t, 300000, c.ReadsPerBatch)
	require.Equal(t, "pantr_logs", c.LogDir)
}

func TestValidateRequiresK(t *testing.T) {
	c := &Config{QueryKmerPrefix: "p", FastqInput: "r.fastq", OutPrefix: "out"}
	require.Error(t, Validate(c))
}

func TestValidateRejectsBothInputs(t *testing.T) {
	c := &Config{K: 21, QueryKmerPrefix: "p", FastaInput: "a", FastqInput: "b", OutPrefix: "out"}
	require.Error(t, Validate(c))
}

func TestValidateAlignRequiresThreading(t *testing.T) {
	c := &Config{K: 21, QueryKmerPrefix: "p", FastqInput: "r.fastq", OutPrefix: "out", Align: true}
	require.Error(t, Validate(c))
}

func TestValidateAllowsExtractModeOneWithoutOutPrefix(t *testing.T) {
	c := &Config{K: 21, QueryKmerPrefix: "p", FastqInput: "r.fastq", ExtractMode: 1}
	require.NoError(t, Validate(c))
}

func TestValidateGenomeMapRequiresSimModeTwo(t *testing.T) {
	c := &Config{K: 21, QueryKmerPrefix: "p", FastqInput: "r.fastq", OutPrefix: "out", GenomeMapFile: "m.txt", SimMode: 1}
	require.Error(t, Validate(c))
}
