package importers

import "context"

// DocumentStore persists denormalized per-record documents. Inserts are
// independent of each other: there is no transaction to roll back, and a
// failed insert never undoes earlier ones.
type DocumentStore interface {
	Insert(ctx context.Context, collection string, doc map[string]any) error
}

// GraphTx runs statements inside one graph-store transaction.
type GraphTx interface {
	Run(ctx context.Context, query string, params map[string]any) error
}

// GraphStore scopes fn to a single transaction: if fn returns an error the
// whole transaction rolls back.
type GraphStore interface {
	WriteTx(ctx context.Context, fn func(tx GraphTx) error) error
}

// Document collections, one per record kind.
const (
	CollectionIndividuals = "individuals"
	CollectionFamilies    = "families"
	CollectionNotes       = "notes"
)
