package classify

import (
	"testing"

	"github.com/kshedden/pantr/index"
	"github.com/kshedden/pantr/kmer"
	"github.com/stretchr/testify/require"
)

func enc(t *testing.T, s string, k int) uint64 {
	t.Helper()
	km, ok := kmer.Encode([]byte(s), k)
	require.True(t, ok)
	return kmer.Canonical(km, k)
}

func TestPreFilterRequiresBothMates(t *testing.T) {
	ix := index.New(5, 2, 0, 0)
	a := enc(t, "AAAAA", 5)
	ix.Add(a, 0)

	k1 := []uint64{a, a, a, a}
	k2 := []uint64{999, 998, 997, 996} // never indexed
	require.False(t, PreFilter(ix, k1, k2, 4, 1))

	k2ok := []uint64{a, 998, 997, 996}
	require.True(t, PreFilter(ix, k1, k2ok, 4, 1))
}

func TestCollapseDuplicatesMergesAcrossMates(t *testing.T) {
	kmers, dup := CollapseDuplicates([]uint64{5, 5, 3}, []uint64{3, 7})
	require.Equal(t, []uint64{3, 5, 7}, kmers)
	require.Equal(t, []KMC{{Fwd: 1, Rev: 1}, {Fwd: 2, Rev: 0}, {Fwd: 0, Rev: 1}}, dup)
}

func TestFillStatsDropsAbsentAndSortsByMultiplicity(t *testing.T) {
	ix := index.New(5, 3, 0, 0)
	a := enc(t, "AAAAA", 5) // multiplicity 2
	c := enc(t, "CCCCC", 5) // multiplicity 1
	ix.Add(a, 0)
	ix.Add(a, 1)
	ix.Add(c, 0)

	g := enc(t, "GGGGT", 5) // absent from index

	kmers, dup, remain := FillStats(ix, []uint64{a, c, g}, nil)
	require.Equal(t, []uint64{c, a}, kmers) // mult 1 before mult 2
	require.Len(t, dup, 2)
	require.Equal(t, []uint64{1, 0}, remain)
}

func TestClassifyAcceptsClearWinner(t *testing.T) {
	ix := index.New(5, 2, 0, 0)
	specific := []string{"AAAAA", "AAAAC", "AAAAG", "AAAAT"}
	var k1 []uint64
	for _, s := range specific {
		km := enc(t, s, 5)
		ix.Add(km, 0)
		k1 = append(k1, km, km, km) // repeated to build up counts past cth
	}
	locus := Classify(ix, k1, k1, 2, 2, 0.9)
	require.Equal(t, 0, locus)
}

func TestClassifyRejectsBelowCountThreshold(t *testing.T) {
	ix := index.New(5, 2, 0, 0)
	km := enc(t, "AAAAA", 5)
	ix.Add(km, 0)
	locus := Classify(ix, []uint64{km}, []uint64{km}, 2, 100, 0.9)
	require.Equal(t, 2, locus) // nLoci sentinel
}

func TestClassifyEmptyKmersRejects(t *testing.T) {
	ix := index.New(5, 2, 0, 0)
	locus := Classify(ix, nil, nil, 2, 1, 0.9)
	require.Equal(t, 2, locus)
}

func TestUpdateTop2TieDoesNotPromote(t *testing.T) {
	top := newAssignment()
	second := newAssignment()
	top.Idx, top.Fc, top.Rc = 0, 5, 5
	updateTop2(5, 5, 1, &top, &second)
	require.EqualValues(t, 0, top.Idx)
	require.EqualValues(t, 1, second.Idx) // 10 ties top but beats second's 0
}
