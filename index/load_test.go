package index

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/kshedden/pantr/kmer"
	"github.com/kshedden/pantr/kmerfile"
	"github.com/stretchr/testify/require"
)

func writeTmpKmerFile(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	p := filepath.Join(dir, "test.kmers")
	require.NoError(t, os.WriteFile(p, []byte(body), 0644))
	return p
}

func TestLoadIntoAndCounts(t *testing.T) {
	body := ">0\nAAAAA\t3\nAAAAC\t1\n>1\nGGGGG\t5\n"
	p := writeTmpKmerFile(t, body)

	ix := New(5, 2, 0, 0)
	require.NoError(t, ix.LoadInto(p))

	km, _ := kmer.Encode([]byte("AAAAA"), 5)
	loci, ok := ix.Loci(km)
	require.True(t, ok)
	require.Equal(t, []uint32{0}, loci)

	tbl := NewTable(5, 2)
	require.NoError(t, tbl.LoadFrom(p))
	require.True(t, tbl.Has(0, km))
	rows := tbl.Rows(0)
	require.Len(t, rows, 2)
}

func TestCountLoci(t *testing.T) {
	body := ">0\nAAAAA\t3\n>1\nGGGGG\t5\n>2\nTTTTT\t1\n"
	p := writeTmpKmerFile(t, body)
	n, err := kmerfile.CountLoci(p)
	require.NoError(t, err)
	require.Equal(t, 3, n)
}

func TestLoadMembershipOnly(t *testing.T) {
	body := ">0\nAAAAA\t1\n"
	p := writeTmpKmerFile(t, body)
	ix := New(5, 2, 0, 0) // sentinel locus = NLoci = 2
	require.NoError(t, ix.LoadMembershipOnly(p, ix.NLoci))

	km, _ := kmer.Encode([]byte("AAAAA"), 5)
	loci, ok := ix.Loci(km)
	require.True(t, ok)
	require.Equal(t, []uint32{2}, loci)
}

func TestTableAddOnlyIncrementsKnownKeys(t *testing.T) {
	body := ">0\nAAAAA\t0\n"
	p := writeTmpKmerFile(t, body)
	tbl := NewTable(5, 1)
	require.NoError(t, tbl.LoadFrom(p))

	known, _ := kmer.Encode([]byte("AAAAA"), 5)
	unknown, _ := kmer.Encode([]byte("CCCCC"), 5)

	tbl.Add(0, known, 2)
	tbl.Add(0, unknown, 100) // must be a no-op

	rows := tbl.Rows(0)
	require.Len(t, rows, 1)
	require.Equal(t, uint64(2), rows[0].Value)
}
