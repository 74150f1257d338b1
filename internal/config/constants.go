package config

const (
	// DefaultDatabasePath is the default path for the relational database.
	DefaultDatabasePath = "./heritage.db"

	// DefaultBatchSize is the per-transaction record count for the optimized
	// import strategy.
	DefaultBatchSize = 500

	// DefaultImportWorkers is how many relational batches the optimized
	// strategy commits in parallel.
	DefaultImportWorkers = 4

	// DefaultMemoryCeilingMB triggers a GC hint while parsing large files.
	DefaultMemoryCeilingMB = 512

	// DefaultMaxFileSizeMB bounds uploaded GEDCOM payloads.
	DefaultMaxFileSizeMB = 64
)
