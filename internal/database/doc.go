// Package database provides the relational data access layer.
//
// # Architecture
//
// The database layer is organized into domain-specific sub-packages:
//
//	database/
//	├── database.go      # Connection setup, migrations
//	└── trees/           # Tree CRUD and per-tree entity counts
//
// # Using Sub-packages
//
// Each sub-package provides a Repository type with domain-specific operations:
//
//	// Initialize database connection
//	db, err := database.NewDatabase("./heritage.db", log)
//
//	// Create domain-specific repositories
//	treesRepo := trees.NewRepository(db.DB)
//
//	// Use repositories
//	tree, err := treesRepo.GetByID(123)
//
// The import pipeline works against db.DB directly because its batch
// transactions span several entity kinds at once.
//
// # Adding a New Domain
//
//  1. Create a new sub-package: internal/database/<domain>/
//  2. Define a Repository struct with a *gorm.DB field
//  3. Add NewRepository(db *gorm.DB) constructor
//  4. Implement the required interface
//  5. Add compile-time interface check: var _ SomeInterface = (*Repository)(nil)
package database
