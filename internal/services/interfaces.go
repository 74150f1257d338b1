package services

import (
	"context"

	"github.com/arkivist/heritage/internal/importers"
)

// ImportRunner executes one import run against all three stores.
// Use this interface when you only need to trigger imports.
type ImportRunner interface {
	Run(ctx context.Context, raw string, treeID uint, strategy importers.Strategy) (*importers.Outcome, error)
}

// TreeExporter renders one tree back into GEDCOM text.
type TreeExporter interface {
	Export(ctx context.Context, treeID uint) (string, error)
}
