package importers

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/gedcom"
	"github.com/arkivist/heritage/internal/resolver"
)

// DocumentSchemaVersion is stamped into every document's import metadata.
const DocumentSchemaVersion = 1

// DocumentImporter writes one denormalized document per individual, family
// and note. The store is not transactional: each insert stands alone, a
// failure is logged and skipped, and nothing rolls back.
type DocumentImporter struct {
	store DocumentStore
	log   *logrus.Logger
}

func NewDocumentImporter(store DocumentStore, log *logrus.Logger) *DocumentImporter {
	return &DocumentImporter{store: store, log: log}
}

// DocumentResult reports persisted counts and the per-xref success set the
// cross-check step diffs against the resolver.
type DocumentResult struct {
	Count     int
	Persisted map[string]bool
	Errors    []ErrorRecord
}

func newDocumentResult() DocumentResult {
	return DocumentResult{Persisted: make(map[string]bool)}
}

func (r *DocumentResult) merge(other DocumentResult) {
	r.Count += other.Count
	for xref := range other.Persisted {
		r.Persisted[xref] = true
	}
	r.Errors = append(r.Errors, other.Errors...)
}

// Import persists all documentable records from the set.
func (di *DocumentImporter) Import(ctx context.Context, set *gedcom.RecordSet, res resolver.Resolver, treeID uint) DocumentResult {
	result := newDocumentResult()
	result.merge(di.ImportBatch(ctx, CollectionIndividuals, SortedRecords(set.Individuals), res, treeID))
	result.merge(di.ImportBatch(ctx, CollectionFamilies, SortedRecords(set.Families), res, treeID))
	result.merge(di.ImportBatch(ctx, CollectionNotes, SortedRecords(set.Notes), res, treeID))
	return result
}

// ImportBatch persists one slice of records into a collection. The optimized
// strategy drives this per batch to bound memory.
func (di *DocumentImporter) ImportBatch(ctx context.Context, collection string, records []*gedcom.Record, res resolver.Resolver, treeID uint) DocumentResult {
	result := newDocumentResult()
	for _, rec := range records {
		doc := di.buildDocument(ctx, rec, res, treeID)
		if err := di.store.Insert(ctx, collection, doc); err != nil {
			di.log.WithFields(logrus.Fields{"collection": collection, "xref": rec.Xref}).
				WithError(err).Warn("document skipped")
			result.Errors = append(result.Errors, ErrorRecord{
				Stage:   StoreDocument + "/" + collection,
				Xref:    rec.Xref,
				Message: err.Error(),
			})
			continue
		}
		result.Count++
		result.Persisted[rec.Xref] = true
	}
	return result
}

// Retry re-inserts the documents for the given xrefs; used once by the
// cross-check step before it reports drift.
func (di *DocumentImporter) Retry(ctx context.Context, set *gedcom.RecordSet, res resolver.Resolver, treeID uint, xrefs []string) DocumentResult {
	result := newDocumentResult()
	for _, xref := range xrefs {
		if rec, ok := set.Individuals[xref]; ok {
			result.merge(di.ImportBatch(ctx, CollectionIndividuals, []*gedcom.Record{rec}, res, treeID))
		} else if rec, ok := set.Families[xref]; ok {
			result.merge(di.ImportBatch(ctx, CollectionFamilies, []*gedcom.Record{rec}, res, treeID))
		} else if rec, ok := set.Notes[xref]; ok {
			result.merge(di.ImportBatch(ctx, CollectionNotes, []*gedcom.Record{rec}, res, treeID))
		}
	}
	return result
}

// buildDocument embeds the full field structure plus resolved relational
// identifiers and import metadata.
func (di *DocumentImporter) buildDocument(ctx context.Context, rec *gedcom.Record, res resolver.Resolver, treeID uint) map[string]any {
	events := make(map[string]any, len(rec.Events))
	for tag, event := range rec.Events {
		events[tag] = map[string]any{
			"date":  event.Date,
			"place": event.Place,
			"cause": event.Cause,
		}
	}

	refs := make(map[string]any, len(rec.Refs))
	for tag, xrefs := range rec.Refs {
		resolved := make([]map[string]any, 0, len(xrefs))
		for _, xref := range xrefs {
			entry := map[string]any{"xref": xref}
			if id, ok := res.Get(ctx, xref); ok {
				entry["record_id"] = id
			}
			resolved = append(resolved, entry)
		}
		refs[tag] = resolved
	}

	doc := map[string]any{
		"tree_id": treeID,
		"xref":    rec.Xref,
		"kind":    string(rec.Type),
		"fields":  rec.Fields,
		"events":  events,
		"refs":    refs,
		"meta": map[string]any{
			"source":         "GEDCOM",
			"imported_at":    time.Now().UTC(),
			"schema_version": DocumentSchemaVersion,
		},
	}
	if id, ok := res.Get(ctx, rec.Xref); ok {
		doc["record_id"] = id
	}
	return doc
}
