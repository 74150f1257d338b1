package importers

import (
	"errors"
	"fmt"
	"time"
)

// Strategy selects the execution policy for one import run.
type Strategy string

const (
	// StrategyStandard runs all relational writes in one transaction.
	StrategyStandard Strategy = "standard"
	// StrategyOptimized commits fixed-size batches in their own transactions
	// and bounds memory while parsing; built for large files.
	StrategyOptimized Strategy = "optimized"
)

var ErrUnknownStrategy = errors.New("unknown import strategy")

func ParseStrategy(s string) (Strategy, error) {
	switch Strategy(s) {
	case StrategyStandard, "":
		return StrategyStandard, nil
	case StrategyOptimized:
		return StrategyOptimized, nil
	}
	return "", fmt.Errorf("%w %q", ErrUnknownStrategy, s)
}

// Store names used as StoreCounts keys.
const (
	StoreRelational = "relational"
	StoreDocument   = "document"
	StoreGraph      = "graph"
)

// Entity kind keys within a store's counts.
const (
	KindIndividuals = "individuals"
	KindFamilies    = "families"
	KindSources     = "sources"
	KindNotes       = "notes"
	KindMedia       = "media"
	KindDocuments   = "documents"
	KindNodes       = "nodes"
	KindEdges       = "edges"
)

// Counts maps an entity kind to how many were actually persisted.
type Counts map[string]int

// StoreCounts maps store name → per-kind counts.
type StoreCounts map[string]Counts

func NewStoreCounts() StoreCounts {
	return StoreCounts{
		StoreRelational: Counts{},
		StoreDocument:   Counts{},
		StoreGraph:      Counts{},
	}
}

// Total sums every count across stores and kinds.
func (sc StoreCounts) Total() int {
	total := 0
	for _, counts := range sc {
		for _, n := range counts {
			total += n
		}
	}
	return total
}

// ErrorRecord describes one non-fatal failure during a run.
type ErrorRecord struct {
	Stage   string `json:"stage"`
	Xref    string `json:"xref,omitempty"`
	Message string `json:"message"`
}

// Reconciliation is the result of the explicit post-fan-out cross-check:
// xrefs the relational store resolved but a non-transactional store is
// missing. Drift is reported, never fatal.
type Reconciliation struct {
	MissingDocuments []string `json:"missing_documents,omitempty"`
	MissingGraph     []string `json:"missing_graph,omitempty"`
	RetriedDocuments int      `json:"retried_documents,omitempty"`
}

// Outcome is the single result shape both strategies emit, consumed by the
// performance tracker.
type Outcome struct {
	Success  bool     `json:"success"`
	Strategy Strategy `json:"strategy"`
	TreeID   uint     `json:"tree_id"`
	RunID    string   `json:"run_id"`

	Counts       StoreCounts `json:"counts"`
	TotalRecords int         `json:"total_records"`

	Duration        time.Duration `json:"duration"`
	MemoryPeakBytes uint64        `json:"memory_peak_bytes"`

	Errors         []ErrorRecord  `json:"errors,omitempty"`
	Reconciliation Reconciliation `json:"reconciliation"`
}
