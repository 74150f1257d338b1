// Package resolver maps GEDCOM xrefs to the relational identifiers generated
// during one import run.
//
// A resolver instance is scoped to a single run: created empty before the
// relational import, populated as each entity is persisted, consulted (never
// mutated) by the document and graph importers, and discarded at run end. It
// is write-once per xref — a second Put for the same xref is an importer bug.
package resolver

import (
	"context"
	"errors"
	"fmt"
)

// ErrDuplicateXref is returned when a Put would overwrite an existing entry.
var ErrDuplicateXref = errors.New("xref already resolved")

// Resolver is the run-scoped xref → internal ID mapping.
//
// Get returns an explicit found flag; an unresolved xref means "skip the
// relationship", never "fail the import" — the skip-vs-fail decision belongs
// to the caller.
type Resolver interface {
	Put(ctx context.Context, xref string, id uint) error
	Get(ctx context.Context, xref string) (uint, bool)
	// Close releases run-scoped state (a no-op for the in-memory resolver).
	Close(ctx context.Context) error
}

func duplicateErr(xref string) error {
	return fmt.Errorf("%w: %s", ErrDuplicateXref, xref)
}
