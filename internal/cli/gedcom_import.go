package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/arkivist/heritage/internal/config"
	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/importers"
	"github.com/arkivist/heritage/internal/perf"
	"github.com/arkivist/heritage/internal/services"
)

// GedcomImportCommand imports a GEDCOM file into a tree from the command line
type GedcomImportCommand struct {
	FilePath     string
	TreeID       uint
	Strategy     string
	DatabasePath string
	Verbose      bool
}

// NewGedcomImportCommand creates a new GedcomImportCommand
func NewGedcomImportCommand() *GedcomImportCommand {
	return &GedcomImportCommand{}
}

// ParseFlags parses command line flags
func (cmd *GedcomImportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("gedcom-import", flag.ExitOnError)

	var treeID uint64
	fs.StringVar(&cmd.FilePath, "file", "", "Path to the GEDCOM file to import (required)")
	fs.Uint64Var(&treeID, "tree", 0, "ID of the tree to import into (required)")
	fs.StringVar(&cmd.Strategy, "strategy", string(importers.StrategyStandard), "Import strategy: standard or optimized")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the relational database file (default from DATABASE_PATH)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s gedcom-import [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Import a GEDCOM file into an existing tree.\n\n")
		fmt.Fprintf(os.Stderr, "This command:\n")
		fmt.Fprintf(os.Stderr, "  1. Sanitizes and parses the GEDCOM file\n")
		fmt.Fprintf(os.Stderr, "  2. Persists records to the relational, document and graph stores\n")
		fmt.Fprintf(os.Stderr, "  3. Cross-checks the stores and prints a per-store summary\n\n")
		fmt.Fprintf(os.Stderr, "Store endpoints come from the environment (DATABASE_PATH, MONGO_URI,\n")
		fmt.Fprintf(os.Stderr, "NEO4J_URI, REDIS_ADDR...), same as the server.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s gedcom-import -file family.ged -tree 1\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s gedcom-import -file large.ged -tree 1 -strategy optimized\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s gedcom-import -file family.ged -tree 2 -db ./heritage.db -verbose\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.TreeID = uint(treeID)

	if cmd.FilePath == "" {
		fs.Usage()
		return fmt.Errorf("-file is required")
	}
	if cmd.TreeID == 0 {
		fs.Usage()
		return fmt.Errorf("-tree is required")
	}

	return nil
}

// Run executes the import command
func (cmd *GedcomImportCommand) Run() error {
	fmt.Println("🌳 GEDCOM Import")
	fmt.Println("================")

	absPath, err := filepath.Abs(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for file: %w", err)
	}
	cmd.FilePath = absPath

	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	log := newCommandLogger(cmd.Verbose)
	ctx := context.Background()

	st, err := connectStack(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer st.close(ctx)

	fmt.Printf("📁 Database: %s\n", cfg.Database.Path)
	fmt.Printf("📄 File: %s\n", cmd.FilePath)

	file, err := os.Open(cmd.FilePath)
	if err != nil {
		return fmt.Errorf("failed to open GEDCOM file: %w", err)
	}
	defer file.Close()

	treeRepo := trees.NewRepository(st.db.DB)
	tracker := perf.NewDBTracker(st.db.DB, log)
	service := services.NewImportService(treeRepo, st.pipeline, tracker, cfg.Import.MaxFileSizeMB, log)

	fmt.Printf("\n📦 Importing with %s strategy...\n", cmd.Strategy)

	out, runErr := service.Import(ctx, file, cmd.TreeID, cmd.Strategy)
	if out == nil {
		return runErr
	}

	cmd.printSummary(out)

	if runErr != nil {
		return fmt.Errorf("import finished with errors: %w", runErr)
	}
	fmt.Println("\n✅ Import complete!")
	return nil
}

func (cmd *GedcomImportCommand) printSummary(out *importers.Outcome) {
	fmt.Printf("\n📊 Run %s finished in %s\n", out.RunID, out.Duration.Round(time.Millisecond))
	fmt.Printf("📝 %d records across all stores\n", out.TotalRecords)

	for _, store := range []string{importers.StoreRelational, importers.StoreDocument, importers.StoreGraph} {
		counts := out.Counts[store]
		kinds := make([]string, 0, len(counts))
		for kind := range counts {
			kinds = append(kinds, kind)
		}
		sort.Strings(kinds)
		fmt.Printf("  💾 %s:", store)
		if len(kinds) == 0 {
			fmt.Printf(" none")
		}
		for _, kind := range kinds {
			fmt.Printf(" %s=%d", kind, counts[kind])
		}
		fmt.Println()
	}

	rec := out.Reconciliation
	if rec.RetriedDocuments > 0 {
		fmt.Printf("🔁 Retried %d missing documents\n", rec.RetriedDocuments)
	}
	if len(rec.MissingDocuments) > 0 || len(rec.MissingGraph) > 0 {
		fmt.Printf("⚠️  Drift: %d documents and %d graph nodes missing (reconcile sweep will report them)\n",
			len(rec.MissingDocuments), len(rec.MissingGraph))
	}

	if len(out.Errors) > 0 {
		fmt.Printf("\n⚠️  %d errors during import:\n", len(out.Errors))
		for _, e := range out.Errors {
			if e.Xref != "" {
				fmt.Printf("  ❌ [%s] %s: %s\n", e.Stage, e.Xref, e.Message)
			} else {
				fmt.Printf("  ❌ [%s] %s\n", e.Stage, e.Message)
			}
		}
	}
}
