package importers

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/gedcom"
	"github.com/arkivist/heritage/internal/resolver"
)

// GraphImporter builds the individual/relationship topology. The whole call
// runs inside one graph transaction: relationship integrity beats batching,
// so any failure rolls everything back and the counts are discarded.
//
// It runs after the relational import so every node it creates resolves to a
// relational identifier; unresolved xrefs are skipped, never fatal.
type GraphImporter struct {
	store GraphStore
	log   *logrus.Logger
}

func NewGraphImporter(store GraphStore, log *logrus.Logger) *GraphImporter {
	return &GraphImporter{store: store, log: log}
}

// GraphResult reports node/edge counts and the per-xref node success set.
type GraphResult struct {
	Nodes     int
	Edges     int
	Persisted map[string]bool
}

const (
	mergePersonQuery = `MERGE (p:Person {tree_id: $tree_id, record_id: $record_id})
SET p.xref = $xref, p.given_name = $given_name, p.surname = $surname,
    p.sex = $sex, p.birth_year = $birth_year, p.death_year = $death_year`

	// Spouse and sibling edges are undirected in meaning; ordering the two
	// endpoints by relational ID makes MERGE idempotent.
	mergeSpouseQuery = `MATCH (a:Person {tree_id: $tree_id, record_id: $a})
MATCH (b:Person {tree_id: $tree_id, record_id: $b})
MERGE (a)-[:SPOUSE_OF]->(b)`

	mergeParentQuery = `MATCH (p:Person {tree_id: $tree_id, record_id: $parent})
MATCH (c:Person {tree_id: $tree_id, record_id: $child})
MERGE (p)-[:PARENT_OF]->(c)`

	mergeSiblingQuery = `MATCH (a:Person {tree_id: $tree_id, record_id: $a})
MATCH (b:Person {tree_id: $tree_id, record_id: $b})
MERGE (a)-[:SIBLING_OF]->(b)`
)

// Import creates one node per resolved individual plus SPOUSE_OF, PARENT_OF
// and SIBLING_OF edges, all in a single transaction.
func (gi *GraphImporter) Import(ctx context.Context, set *gedcom.RecordSet, res resolver.Resolver, treeID uint) (GraphResult, error) {
	result := GraphResult{Persisted: make(map[string]bool)}

	err := gi.store.WriteTx(ctx, func(tx GraphTx) error {
		for _, rec := range SortedRecords(set.Individuals) {
			id, ok := res.Get(ctx, rec.Xref)
			if !ok {
				gi.log.WithField("xref", rec.Xref).Warn("individual unresolved, node skipped")
				continue
			}
			params := map[string]any{
				"tree_id":    int64(treeID),
				"record_id":  int64(id),
				"xref":       rec.Xref,
				"given_name": rec.Fields[gedcom.TagGivenName],
				"surname":    rec.Fields[gedcom.TagSurname],
				"sex":        rec.Fields[gedcom.TagSex],
				"birth_year": gedcom.YearOf(rec.Event(gedcom.TagBirth).Date),
				"death_year": gedcom.YearOf(rec.Event(gedcom.TagDeath).Date),
			}
			if err := tx.Run(ctx, mergePersonQuery, params); err != nil {
				return fmt.Errorf("merge person %s: %w", rec.Xref, err)
			}
			result.Nodes++
			result.Persisted[rec.Xref] = true
		}

		for _, rec := range SortedRecords(set.Families) {
			edges, err := gi.importFamilyEdges(ctx, tx, rec, res, treeID)
			if err != nil {
				return err
			}
			result.Edges += edges
		}
		return nil
	})
	if err != nil {
		// All or nothing: counts up to the failure are meaningless.
		return GraphResult{Persisted: make(map[string]bool)}, fmt.Errorf("graph import rolled back: %w", err)
	}
	return result, nil
}

func (gi *GraphImporter) importFamilyEdges(ctx context.Context, tx GraphTx, rec *gedcom.Record, res resolver.Resolver, treeID uint) (int, error) {
	resolve := func(tag string) []uint {
		var ids []uint
		for _, xref := range rec.Refs[tag] {
			if id, ok := res.Get(ctx, xref); ok {
				ids = append(ids, id)
			} else {
				gi.log.WithFields(logrus.Fields{"family": rec.Xref, "ref": xref}).
					Warn("xref unresolved, edge skipped")
			}
		}
		return ids
	}

	husbands := resolve(gedcom.TagHusband)
	wives := resolve(gedcom.TagWife)
	children := resolve(gedcom.TagChild)
	parents := append(append([]uint{}, husbands...), wives...)

	edges := 0

	if len(husbands) > 0 && len(wives) > 0 {
		a, b := orderPair(husbands[0], wives[0])
		err := tx.Run(ctx, mergeSpouseQuery, map[string]any{
			"tree_id": int64(treeID), "a": int64(a), "b": int64(b),
		})
		if err != nil {
			return 0, fmt.Errorf("merge spouse edge for %s: %w", rec.Xref, err)
		}
		edges++
	}

	for _, parent := range parents {
		for _, child := range children {
			err := tx.Run(ctx, mergeParentQuery, map[string]any{
				"tree_id": int64(treeID), "parent": int64(parent), "child": int64(child),
			})
			if err != nil {
				return 0, fmt.Errorf("merge parent edge for %s: %w", rec.Xref, err)
			}
			edges++
		}
	}

	for i := 0; i < len(children); i++ {
		for j := i + 1; j < len(children); j++ {
			a, b := orderPair(children[i], children[j])
			err := tx.Run(ctx, mergeSiblingQuery, map[string]any{
				"tree_id": int64(treeID), "a": int64(a), "b": int64(b),
			})
			if err != nil {
				return 0, fmt.Errorf("merge sibling edge for %s: %w", rec.Xref, err)
			}
			edges++
		}
	}

	return edges, nil
}

func orderPair(a, b uint) (uint, uint) {
	if a > b {
		return b, a
	}
	return a, b
}
