package importers

import (
	"context"
	"fmt"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"

	"github.com/arkivist/heritage/internal/gedcom"
	"github.com/arkivist/heritage/internal/resolver"
)

// Options tunes the optimized strategy. Zero values fall back to defaults.
type Options struct {
	BatchSize       int
	Workers         int
	MemoryCeilingMB int
}

func (o Options) withDefaults() Options {
	if o.BatchSize <= 0 {
		o.BatchSize = 500
	}
	if o.Workers <= 0 {
		o.Workers = 1
	}
	return o
}

// Pipeline is the import orchestrator. One pipeline serves many runs; all
// per-run state (the resolver above all) is created inside Run and discarded
// with it.
//
// Fan-out order is fixed: the relational store first, because it is the
// identifier source of truth, individuals strictly before anything that
// references them; then documents and graph, which consume the resolver and
// never write to it.
type Pipeline struct {
	db          *gorm.DB
	documents   DocumentStore
	graph       GraphStore
	newResolver func(runID string) resolver.Resolver
	log         *logrus.Logger
	opts        Options

	// batchFail forces a batch transaction to roll back; set only by tests.
	batchFail func(kind string, batch int) error
}

func NewPipeline(db *gorm.DB, documents DocumentStore, graph GraphStore, newResolver func(runID string) resolver.Resolver, log *logrus.Logger, opts Options) *Pipeline {
	if newResolver == nil {
		newResolver = func(string) resolver.Resolver { return resolver.NewMemory() }
	}
	return &Pipeline{
		db:          db,
		documents:   documents,
		graph:       graph,
		newResolver: newResolver,
		log:         log,
		opts:        opts.withDefaults(),
	}
}

// Run executes one import. The caller blocks until the outcome is ready;
// both strategies emit the same outcome shape.
func (p *Pipeline) Run(ctx context.Context, raw string, treeID uint, strategy Strategy) (*Outcome, error) {
	start := time.Now()
	out := &Outcome{
		Strategy: strategy,
		TreeID:   treeID,
		RunID:    uuid.NewString(),
		Counts:   NewStoreCounts(),
	}
	mem := newMemorySampler(p.opts.MemoryCeilingMB)

	clean := p.sanitize(raw, strategy, mem)

	set, err := gedcom.NewParser().Parse(clean)
	if err != nil {
		// Structural errors are fatal before anything touches a store.
		out.Duration = time.Since(start)
		out.MemoryPeakBytes = mem.peak
		return out, err
	}
	out.TotalRecords = set.TotalRecords()
	mem.sample()

	res := p.newResolver(out.RunID)
	defer func() {
		if err := res.Close(context.WithoutCancel(ctx)); err != nil {
			p.log.WithError(err).Warn("resolver close failed")
		}
	}()

	if err := p.importRelational(ctx, set, res, treeID, strategy, out); err != nil {
		out.Duration = time.Since(start)
		out.MemoryPeakBytes = mem.peak
		return out, err
	}
	mem.sample()

	docImporter := NewDocumentImporter(p.documents, p.log)
	docResult := p.importDocuments(ctx, docImporter, set, res, treeID, strategy, mem)
	out.Errors = append(out.Errors, docResult.Errors...)

	graphImporter := NewGraphImporter(p.graph, p.log)
	graphResult, graphErr := graphImporter.Import(ctx, set, res, treeID)
	if graphErr != nil {
		// Cross-store partial failure: relational data stands, the graph is
		// missing. Logged and reported, not fatal.
		p.log.WithError(graphErr).Error("graph import failed")
		out.Errors = append(out.Errors, ErrorRecord{Stage: StoreGraph, Message: graphErr.Error()})
	}
	out.Counts[StoreGraph][KindNodes] = graphResult.Nodes
	out.Counts[StoreGraph][KindEdges] = graphResult.Edges
	mem.sample()

	p.crossCheck(ctx, docImporter, set, res, treeID, &docResult, graphResult, out)
	out.Counts[StoreDocument][KindDocuments] = docResult.Count

	out.Success = true
	out.Duration = time.Since(start)
	out.MemoryPeakBytes = mem.peak
	return out, nil
}

func (p *Pipeline) sanitize(raw string, strategy Strategy, mem *memorySampler) string {
	if strategy != StrategyOptimized {
		clean, dropped := gedcom.SanitizeWithReport(raw)
		p.logDropped(dropped)
		return clean
	}

	// Chunk-driven pass with memory checks between chunks; a crossed ceiling
	// triggers a GC hint, never an abort.
	const chunkLines = 5000
	s := gedcom.NewSanitizer()
	for i, line := range strings.Split(gedcom.NormalizeNewlines(raw), "\n") {
		s.WriteLine(line)
		if i%chunkLines == chunkLines-1 {
			mem.sample()
		}
	}
	mem.sample()
	p.logDropped(s.Dropped())
	return s.Result()
}

func (p *Pipeline) logDropped(dropped map[string]int) {
	if len(dropped) == 0 {
		return
	}
	tags := make([]string, 0, len(dropped))
	for tag := range dropped {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	for _, tag := range tags {
		p.log.WithFields(logrus.Fields{"tag": tag, "lines": dropped[tag]}).
			Info("extension tag stripped")
	}
}

func (p *Pipeline) importRelational(ctx context.Context, set *gedcom.RecordSet, res resolver.Resolver, treeID uint, strategy Strategy, out *Outcome) error {
	ri := NewRelationalImporter(p.log)
	counts := out.Counts[StoreRelational]

	type stage struct {
		kind string
		recs []*gedcom.Record
		fn   func(ctx context.Context, tx *gorm.DB, recs []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord)
	}
	// Individuals come first so every later stage can resolve them.
	stages := []stage{
		{KindIndividuals, SortedRecords(set.Individuals), ri.ImportIndividuals},
		{KindFamilies, SortedRecords(set.Families), ri.ImportFamilies},
		{KindSources, SortedRecords(set.Sources), ri.ImportSources},
		{KindNotes, SortedRecords(set.Notes), ri.ImportNotes},
		{KindMedia, SortedRecords(set.Media), ri.ImportMedia},
	}

	if strategy == StrategyStandard {
		// One long transaction, all-or-nothing: the first failed write aborts
		// the run and rolls back every relational write. Only the batched
		// strategy skips failed records and keeps going.
		err := p.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			for _, st := range stages {
				n, errs := st.fn(ctx, tx, st.recs, res, treeID)
				counts[st.kind] = n
				out.Errors = append(out.Errors, errs...)
				if len(errs) > 0 {
					first := errs[0]
					return fmt.Errorf("%s %s: %s", st.kind, first.Xref, first.Message)
				}
			}
			return nil
		})
		if err != nil {
			for _, st := range stages {
				counts[st.kind] = 0
			}
			return fmt.Errorf("relational import failed: %w", err)
		}
		return nil
	}

	// Optimized: each stage runs to completion before the next starts, so
	// the ordering guarantee holds even with parallel batch workers.
	for _, st := range stages {
		n, errs, err := p.runBatches(ctx, st.kind, st.recs, res, treeID, st.fn)
		counts[st.kind] = n
		out.Errors = append(out.Errors, errs...)
		if err != nil {
			return fmt.Errorf("relational import stopped at %s: %w", st.kind, err)
		}
	}
	return nil
}

// runBatches commits fixed-size batches, each in its own transaction, up to
// Workers at a time. A failed batch rolls back alone; the others stand.
// Cancellation is honored between batches and leaves committed batches
// committed.
func (p *Pipeline) runBatches(ctx context.Context, kind string, records []*gedcom.Record, res resolver.Resolver, treeID uint, fn func(ctx context.Context, tx *gorm.DB, recs []*gedcom.Record, res resolver.Resolver, treeID uint) (int, []ErrorRecord)) (int, []ErrorRecord, error) {
	var (
		mu    sync.Mutex
		total int
		errs  []ErrorRecord
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)

	for i, batch := range chunkRecords(records, p.opts.BatchSize) {
		if ctx.Err() != nil {
			break
		}
		i, batch := i, batch
		g.Go(func() error {
			var n int
			var recErrs []ErrorRecord
			err := p.db.WithContext(gctx).Transaction(func(tx *gorm.DB) error {
				if p.batchFail != nil {
					if err := p.batchFail(kind, i); err != nil {
						return err
					}
				}
				n, recErrs = fn(gctx, tx, batch, res, treeID)
				return nil
			})

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				p.log.WithFields(logrus.Fields{"kind": kind, "batch": i}).
					WithError(err).Error("batch rolled back")
				errs = append(errs, ErrorRecord{
					Stage:   StoreRelational + "/" + kind,
					Message: fmt.Sprintf("batch %d rolled back: %v", i, err),
				})
				return nil
			}
			total += n
			errs = append(errs, recErrs...)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return total, errs, err
	}
	return total, errs, nil
}

func (p *Pipeline) importDocuments(ctx context.Context, di *DocumentImporter, set *gedcom.RecordSet, res resolver.Resolver, treeID uint, strategy Strategy, mem *memorySampler) DocumentResult {
	if strategy != StrategyOptimized {
		return di.Import(ctx, set, res, treeID)
	}

	result := DocumentResult{Persisted: make(map[string]bool)}
	collections := []struct {
		name string
		recs []*gedcom.Record
	}{
		{CollectionIndividuals, SortedRecords(set.Individuals)},
		{CollectionFamilies, SortedRecords(set.Families)},
		{CollectionNotes, SortedRecords(set.Notes)},
	}
	for _, c := range collections {
		for _, batch := range chunkRecords(c.recs, p.opts.BatchSize) {
			result.merge(di.ImportBatch(ctx, c.name, batch, res, treeID))
			mem.sample()
		}
	}
	return result
}

// crossCheck is the explicit reconciliation step after fan-out: it diffs the
// resolver against what the non-transactional stores accepted, retries
// missing documents once, and flags whatever still drifts.
func (p *Pipeline) crossCheck(ctx context.Context, di *DocumentImporter, set *gedcom.RecordSet, res resolver.Resolver, treeID uint, docResult *DocumentResult, graphResult GraphResult, out *Outcome) {
	missingIn := func(bucket map[string]*gedcom.Record) []string {
		var missing []string
		for _, rec := range SortedRecords(bucket) {
			if _, ok := res.Get(ctx, rec.Xref); !ok {
				continue // never persisted relationally, already reported
			}
			if !docResult.Persisted[rec.Xref] {
				missing = append(missing, rec.Xref)
			}
		}
		return missing
	}

	missingDocs := missingIn(set.Individuals)
	missingDocs = append(missingDocs, missingIn(set.Families)...)
	missingDocs = append(missingDocs, missingIn(set.Notes)...)

	if len(missingDocs) > 0 {
		retry := di.Retry(ctx, set, res, treeID, missingDocs)
		docResult.merge(retry)
		out.Reconciliation.RetriedDocuments = len(missingDocs)

		var still []string
		for _, xref := range missingDocs {
			if !docResult.Persisted[xref] {
				still = append(still, xref)
			}
		}
		missingDocs = still
	}
	out.Reconciliation.MissingDocuments = missingDocs

	// The graph is transactional: a rolled-back import leaves every resolved
	// individual missing here. Flagged, not retried.
	for _, rec := range SortedRecords(set.Individuals) {
		if _, ok := res.Get(ctx, rec.Xref); !ok {
			continue
		}
		if !graphResult.Persisted[rec.Xref] {
			out.Reconciliation.MissingGraph = append(out.Reconciliation.MissingGraph, rec.Xref)
		}
	}

	if len(out.Reconciliation.MissingDocuments) > 0 || len(out.Reconciliation.MissingGraph) > 0 {
		p.log.WithFields(logrus.Fields{
			"missing_documents": len(out.Reconciliation.MissingDocuments),
			"missing_graph":     len(out.Reconciliation.MissingGraph),
		}).Warn("cross-store drift after import")
	}
}

func chunkRecords(records []*gedcom.Record, size int) [][]*gedcom.Record {
	if size <= 0 {
		size = len(records)
	}
	var chunks [][]*gedcom.Record
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// memorySampler tracks the run's heap peak and issues GC hints when a
// configured ceiling is crossed.
type memorySampler struct {
	ceiling uint64
	peak    uint64
}

func newMemorySampler(ceilingMB int) *memorySampler {
	s := &memorySampler{}
	if ceilingMB > 0 {
		s.ceiling = uint64(ceilingMB) << 20
	}
	s.sample()
	return s
}

func (s *memorySampler) sample() {
	var stats runtime.MemStats
	runtime.ReadMemStats(&stats)
	if stats.HeapAlloc > s.peak {
		s.peak = stats.HeapAlloc
	}
	if s.ceiling > 0 && stats.HeapAlloc > s.ceiling {
		runtime.GC()
	}
}
