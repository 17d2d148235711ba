// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package graph implements the per-locus de Bruijn graph (§3 Graph[L]):
// directed (non-canonical) k-mer nodes with a 4-bit outgoing-edge bitmask,
// used by the threading step (§4.5) to decide whether a read is a
// plausible walk through a locus's pangenomic content.
package graph

import (
	"fmt"

	"github.com/kshedden/pantr/kmerfile"
)

// Graph is one locus's directed de Bruijn graph: a map from directed k-mer
// to a 4-bit bitmask of outgoing edges. Bit i (i in {0,1,2,3}, nucleotide
// order A,C,G,T) set means an edge exists to the k-mer obtained by dropping
// the first base and appending nucleotide i.
type Graph struct {
	K     int
	nodes map[uint64]uint8
}

// New allocates an empty graph for k-mers of width k.
func New(k int) *Graph {
	return &Graph{K: k, nodes: make(map[uint64]uint8)}
}

// AddNode records the outgoing-edge bitmask for a directed k-mer node.
func (g *Graph) AddNode(node uint64, mask uint8) {
	g.nodes[node] = mask
}

// Has reports whether node is present in the graph.
func (g *Graph) Has(node uint64) bool {
	_, ok := g.nodes[node]
	return ok
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int { return len(g.nodes) }

// nucMask selects the low 2*(k-1) bits of a k-mer of width k — the bases
// shared between a node and each of its successors after dropping the
// node's leading base.
func nucMask(k int) uint64 {
	if k <= 1 {
		return 0
	}
	return (uint64(1) << uint(2*(k-1))) - 1
}

// OutNodes appends to dst the directed k-mers reachable from node by a
// single valid outgoing edge, matching the reference's getOutNodes: shift
// the node's trailing (k-1) bases left by two bits and append nucleotide i
// for each set bit of the node's bitmask, in nucleotide order A,C,G,T. A
// node absent from the graph (e.g. one that fell out during graph pruning
// upstream) simply yields no out-nodes, the same defensive behavior the
// reference's "if (g.count(node))" guard provides.
func (g *Graph) OutNodes(dst []uint64, node uint64) []uint64 {
	dst = dst[:0]
	bits, ok := g.nodes[node]
	if !ok {
		return dst
	}
	mask := nucMask(g.K)
	base := (node & mask) << 2
	for i := uint(0); i < 4; i++ {
		if bits&(1<<i) != 0 {
			dst = append(dst, base+uint64(i))
		}
	}
	return dst
}

// DB holds one Graph per locus.
type DB struct {
	K      int
	graphs []*Graph
}

// NewDB allocates an empty per-locus graph collection.
func NewDB(k, nLoci int) *DB {
	db := &DB{K: k, graphs: make([]*Graph, nLoci)}
	for i := range db.graphs {
		db.graphs[i] = New(k)
	}
	return db
}

// Of returns the graph for locus l.
func (db *DB) Of(l int) *Graph { return db.graphs[l] }

// NLoci returns the number of loci in the collection.
func (db *DB) NLoci() int { return len(db.graphs) }

// LoadFrom populates the collection from a §6 graph file: each row's
// directed k-mer (the file's kmer column is already directed, not
// canonicalized — §3 "graph's edge semantics operate on directed
// k-mers") becomes a node in its block's locus graph, with the row's
// value column (0-15) as the 4-bit edge bitmask.
func (db *DB) LoadFrom(path string) error {
	f, err := kmerfile.Open(path)
	if err != nil {
		return fmt.Errorf("graph: opening %s: %w", path, err)
	}
	defer f.Close()
	return kmerfile.Scan(f, db.K, func(r kmerfile.Row) error {
		if r.Locus < 0 || r.Locus >= len(db.graphs) {
			return fmt.Errorf("graph: locus %d out of range [0,%d)", r.Locus, len(db.graphs))
		}
		if r.Value > 15 {
			return fmt.Errorf("graph: edge bitmask %d out of range [0,15]", r.Value)
		}
		db.graphs[r.Locus].AddNode(r.Directed, uint8(r.Value))
		return nil
	})
}
