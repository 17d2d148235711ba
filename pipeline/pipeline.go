// Copyright 2017, Kerby Shedden and the Muscato contributors.

// Package pipeline implements the fixed worker pool (§4.6, §5): N
// goroutines share one input stream behind a reader lock and one output
// stream behind a writer lock, each pulling 300,000-pair batches,
// processing them independently, and flushing per-batch accumulators into
// shared state the next time they acquire the reader lock.
package pipeline

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/kshedden/pantr/classify"
	"github.com/kshedden/pantr/config"
	"github.com/kshedden/pantr/emit"
	"github.com/kshedden/pantr/graph"
	"github.com/kshedden/pantr/index"
	"github.com/kshedden/pantr/kmer"
	"github.com/kshedden/pantr/reads"
	"github.com/kshedden/pantr/sim"
	"github.com/kshedden/pantr/thread"
)

// Stats are the run's final per-stage counters (§7 per-batch reporting,
// accumulated over the whole run).
type Stats struct {
	Reads          uint64
	PreFiltered    uint64
	ThreadingReads uint64
	FeasibleReads  uint64
}

// accum is one worker's per-batch local accumulator (§3 "per-thread
// accumulators"), flushed into the Pipeline's shared state the next time
// its owning worker acquires the reader lock.
type accum struct {
	reads, preFiltered, threadingReads, feasibleReads uint64
	msa                                               *sim.MSAStats
	err                                                *sim.ErrDB
}

// Pipeline wires together the reader, index, TR table, optional graph
// database, and optional simulation/non-match accounting into the §4.6
// worker loop.
type Pipeline struct {
	cfg      *config.Config
	reader   *reads.Reader
	ix       *index.Index
	table    *index.Table
	graphs   *graph.DB // nil when threading is disabled
	out      io.Writer
	logger   *log.Logger
	locusMap []int
	g2pan    bool

	readerMu sync.Mutex
	writerMu sync.Mutex

	stats Stats
	msa   *sim.MSAStats // shared, non-nil only when cfg.SimMode == 1
	err   *sim.ErrDB    // shared, non-nil only when cfg.SimMode == 2

	nonMatchMu sync.Mutex
	nonMatch   *emit.NonMatchFilter // nil unless cfg.NonMatchFile set

	runErrMu sync.Mutex
	runErr   error
}

// New constructs a Pipeline ready to Run. graphs may be nil iff
// cfg.ThreadCth == 0. nonMatch may be nil to disable non-match tracking.
func New(cfg *config.Config, reader *reads.Reader, ix *index.Index, table *index.Table, graphs *graph.DB, out io.Writer, logger *log.Logger, locusMap []int, nonMatch *emit.NonMatchFilter) *Pipeline {
	p := &Pipeline{
		cfg:      cfg,
		reader:   reader,
		ix:       ix,
		table:    table,
		graphs:   graphs,
		out:      out,
		logger:   logger,
		locusMap: locusMap,
		g2pan:    len(locusMap) > 0,
		nonMatch: nonMatch,
	}
	switch cfg.SimMode {
	case 1:
		p.msa = sim.NewMSAStats(ix.NLoci)
	case 2:
		p.err = sim.NewErrDB()
	}
	return p
}

// Run spawns cfg.Workers goroutines and blocks until the input stream is
// exhausted or a fatal error occurs (a malformed stream or an invalid
// simulation locus id, §7 — not a per-read rejection).
func (p *Pipeline) Run() error {
	n := p.cfg.Workers
	if n <= 0 {
		n = 1
	}
	var wg sync.WaitGroup
	wg.Add(n)
	for id := 0; id < n; id++ {
		go func(id int) {
			defer wg.Done()
			p.workerLoop(id)
		}(id)
	}
	wg.Wait()
	return p.runErr
}

// Stats returns the accumulated final counters. Safe to call only after
// Run has returned.
func (p *Pipeline) Stats() Stats { return p.stats }

// MSAStats returns the simulation-mode-1 accounting table, or nil if
// SimMode != 1.
func (p *Pipeline) MSAStats() *sim.MSAStats { return p.msa }

// ErrDB returns the simulation-mode-2 accounting table, or nil if
// SimMode != 2.
func (p *Pipeline) ErrDB() *sim.ErrDB { return p.err }

func (p *Pipeline) setRunErr(err error) {
	p.runErrMu.Lock()
	if p.runErr == nil {
		p.runErr = err
	}
	p.runErrMu.Unlock()
}

func (p *Pipeline) failed() bool {
	p.runErrMu.Lock()
	defer p.runErrMu.Unlock()
	return p.runErr != nil
}

func (p *Pipeline) workerLoop(id int) {
	var local accum
	for {
		if p.failed() {
			return
		}
		batch, eof, err := p.nextBatch(local)
		local = accum{}
		if err != nil {
			p.setRunErr(err)
			return
		}
		if eof {
			return
		}

		var out bytes.Buffer
		next, err := p.processBatch(batch, &out)
		if err != nil {
			p.setRunErr(err)
			return
		}
		local = next

		if out.Len() > 0 {
			p.writerMu.Lock()
			_, werr := p.out.Write(out.Bytes())
			p.writerMu.Unlock()
			if werr != nil {
				p.setRunErr(fmt.Errorf("pipeline: writing output: %w", werr))
				return
			}
		}
	}
}

// nextBatch merges prev into the shared state, then reads up to
// cfg.ReadsPerBatch pairs, all under the reader lock (§4.6 step 1).
func (p *Pipeline) nextBatch(prev accum) (batch []reads.Pair, eof bool, err error) {
	p.readerMu.Lock()
	defer p.readerMu.Unlock()

	p.stats.Reads += prev.reads
	p.stats.PreFiltered += prev.preFiltered
	p.stats.ThreadingReads += prev.threadingReads
	p.stats.FeasibleReads += prev.feasibleReads
	if prev.msa != nil && p.msa != nil {
		p.msa.Merge(prev.msa)
	}
	if prev.err != nil && p.err != nil {
		p.err.Merge(prev.err)
	}

	pairs, err := p.reader.ReadBatch(p.cfg.ReadsPerBatch)
	if err != nil {
		return nil, false, fmt.Errorf("pipeline: reading batch: %w", err)
	}
	if len(pairs) == 0 {
		return nil, true, nil
	}
	if p.logger != nil {
		p.logger.Printf("worker read %d pairs", len(pairs))
	}
	return pairs, false, nil
}

func (p *Pipeline) markMatched(title string) {
	if p.nonMatch == nil {
		return
	}
	p.nonMatchMu.Lock()
	p.nonMatch.MarkMatched(title)
	p.nonMatchMu.Unlock()
}

// processBatch runs the §4.2-§4.5 per-pair pipeline over one batch,
// independently of any lock, writing extraction/alignment lines into out
// and returning this batch's local accumulator for the next nextBatch
// merge.
func (p *Pipeline) processBatch(batch []reads.Pair, out *bytes.Buffer) (accum, error) {
	var local accum

	var srcLoci []int
	if p.cfg.SimMode == 2 {
		var meta sim.Meta
		for _, pr := range batch {
			if err := meta.Parse(pr.Title1, p.ix.NLoci); err != nil {
				return local, err
			}
		}
		local.err = sim.NewErrDB()
		srcLoci = make([]int, len(batch))
		simi := 0
		for i := range batch {
			sl, err := sim.MapLocus(p.g2pan, &meta, p.locusMap, 2*i, &simi, p.ix.NLoci)
			if err != nil {
				return local, err
			}
			srcLoci[i] = sl
		}
	} else if p.cfg.SimMode == 1 {
		local.msa = sim.NewMSAStats(p.ix.NLoci)
	}

	for i, pr := range batch {
		local.reads++

		var srcLocus int
		haveSrc := p.cfg.SimMode != 0
		switch p.cfg.SimMode {
		case 1:
			sl, err := sim.ParseTRSourceTitle(pr.Title1)
			if err != nil {
				return local, err
			}
			if sl < 0 || sl > p.ix.NLoci {
				return local, fmt.Errorf("pipeline: simulated locus %d in title %q out of range [0,%d]", sl, pr.Title1, p.ix.NLoci)
			}
			srcLocus = sl
		case 2:
			srcLocus = srcLoci[i]
		}

		if err := p.handlePair(pr, srcLocus, haveSrc, &local, out); err != nil {
			return local, err
		}
	}
	return local, nil
}

func (p *Pipeline) handlePair(pr reads.Pair, srcLocus int, haveSrc bool, local *accum, out *bytes.Buffer) error {
	km1 := kmer.ExtractCanonical(nil, []byte(pr.Seq1), p.cfg.K)
	km2 := kmer.ExtractCanonical(nil, []byte(pr.Seq2), p.cfg.K)
	if len(km1) == 0 || len(km2) == 0 {
		// A mate with no valid window (e.g. all-Ns) can never pass the
		// pre-filter's index-membership sampling, so it is counted the
		// same as an ordinary pre-filter rejection (§8 scenario 2).
		local.preFiltered++
		return nil
	}

	destLocus := p.ix.NLoci
	if p.nonMatch != nil {
		defer func() {
			if destLocus != p.ix.NLoci {
				p.markMatched(pr.Title1)
				p.markMatched(pr.Title2)
			}
		}()
	}

	if !classify.PreFilter(p.ix, km1, km2, p.cfg.NFilter, p.cfg.NMFilter) {
		local.preFiltered++
		return nil
	}

	kmers, dup, _ := classify.FillStats(p.ix, km1, km2)
	destLocus = classify.Classify(p.ix, km1, km2, p.ix.NLoci, p.cfg.Cth, p.cfg.Rth)

	var cakmers map[uint64]uint64
	var ops1, ops2 []byte

	if destLocus != p.ix.NLoci {
		local.threadingReads += 2
		feasible := true

		if p.cfg.ThreadCth > 0 {
			kd1 := kmer.ExtractDirected(nil, []byte(pr.Seq1), p.cfg.K)
			kd2 := kmer.ExtractDirected(nil, []byte(pr.Seq2), p.cfg.K)
			ops1 = make([]byte, len(kd1))
			ops2 = make([]byte, len(kd2))
			g := p.graphs.Of(destLocus)
			r1 := thread.Thread(g, kd1, p.cfg.ThreadCth, p.cfg.Correction, p.table, destLocus, ops1)
			r2 := thread.Thread(g, kd2, p.cfg.ThreadCth, p.cfg.Correction, p.table, destLocus, ops2)
			feasible = r1 != thread.Reject && r2 != thread.Reject
			if feasible {
				cakmers = make(map[uint64]uint64, len(kd1)+len(kd2))
				for _, km := range kd1 {
					cakmers[kmer.Canonical(km, p.cfg.K)]++
				}
				for _, km := range kd2 {
					cakmers[kmer.Canonical(km, p.cfg.K)]++
				}
			}
		}

		if feasible {
			local.feasibleReads += 2

			if p.cfg.ExtractMode != 0 {
				if err := emit.WriteExtracted(out, emit.ExtractMode(p.cfg.ExtractMode), pr.Title1, pr.Seq1, pr.Title2, pr.Seq2, destLocus); err != nil {
					return err
				}
			}
			if p.cfg.ExtractMode != 1 {
				if p.cfg.ThreadCth == 0 {
					for i, km := range kmers {
						p.table.Add(destLocus, km, uint64(dup[i].Fwd)+uint64(dup[i].Rev))
					}
				} else {
					for km, c := range cakmers {
						p.table.Add(destLocus, km, c)
					}
				}
			}
		} else {
			destLocus = p.ix.NLoci
		}
	}

	if p.cfg.Align && p.cfg.ThreadCth > 0 && (srcLocus != p.ix.NLoci || destLocus != p.ix.NLoci) {
		if err := emit.WriteAlignment(out, srcLocus, destLocus, pr.Title1, pr.Seq1, ops2, pr.Title2, pr.Seq2, ops1); err != nil {
			return err
		}
	}

	if haveSrc && srcLocus != destLocus && p.cfg.ExtractMode != 1 {
		switch p.cfg.SimMode {
		case 1:
			local.msa.Record(srcLocus, destLocus)
		case 2:
			sim.CountFPFN(srcLocus, destLocus, p.ix.NLoci, p.table, kmers, dup, cakmers, local.err)
		}
	}

	return nil
}
