package reads

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestReaderFASTAPairs(t *testing.T) {
	in := ">r1/1\nACGTACGT\n>r1/2\nTTTTAAAA\n>r2/1\nGGGGCCCC\n>r2/2\nAAAACCCC\n"
	rd := NewReader(strings.NewReader(in), FASTA)

	p, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, Pair{">r1/1", "ACGTACGT", ">r1/2", "TTTTAAAA"}, p)

	p, ok, err = rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, ">r2/1", p.Title1)

	_, ok, err = rd.Next()
	require.NoError(t, err)
	require.False(t, ok)
}

func TestReaderFASTQPairs(t *testing.T) {
	in := "@r1/1\nACGT\n+\nIIII\n@r1/2\nTTTT\n+\nIIII\n"
	rd := NewReader(strings.NewReader(in), FASTQ)

	p, ok, err := rd.Next()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "ACGT", p.Seq1)
	require.Equal(t, "TTTT", p.Seq2)
}

func TestReaderTruncatedPairErrors(t *testing.T) {
	in := ">r1/1\nACGT\n"
	rd := NewReader(strings.NewReader(in), FASTA)
	_, ok, err := rd.Next()
	require.Error(t, err)
	require.False(t, ok)
}

func TestReadBatchStopsAtBoundary(t *testing.T) {
	in := ">a1\nAC\n>a2\nGT\n>b1\nAC\n>b2\nGT\n"
	rd := NewReader(strings.NewReader(in), FASTA)
	batch, err := rd.ReadBatch(10)
	require.NoError(t, err)
	require.Len(t, batch, 2)
}

func TestReadBatchRespectsSize(t *testing.T) {
	in := ">a1\nAC\n>a2\nGT\n>b1\nAC\n>b2\nGT\n"
	rd := NewReader(strings.NewReader(in), FASTA)
	batch, err := rd.ReadBatch(1)
	require.NoError(t, err)
	require.Len(t, batch, 1)
}
