package cli

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/arkivist/heritage/internal/config"
	"github.com/arkivist/heritage/internal/database"
	"github.com/arkivist/heritage/internal/exporters"
)

// GedcomExportCommand writes a tree back out as a GEDCOM file
type GedcomExportCommand struct {
	TreeID       uint
	OutputPath   string
	DatabasePath string
	Verbose      bool
}

// NewGedcomExportCommand creates a new GedcomExportCommand
func NewGedcomExportCommand() *GedcomExportCommand {
	return &GedcomExportCommand{}
}

// ParseFlags parses command line flags
func (cmd *GedcomExportCommand) ParseFlags(args []string) error {
	fs := flag.NewFlagSet("gedcom-export", flag.ExitOnError)

	var treeID uint64
	fs.Uint64Var(&treeID, "tree", 0, "ID of the tree to export (required)")
	fs.StringVar(&cmd.OutputPath, "output", "", "Output file path (default stdout)")
	fs.StringVar(&cmd.DatabasePath, "db", "", "Path to the relational database file (default from DATABASE_PATH)")
	fs.BoolVar(&cmd.Verbose, "verbose", false, "Enable verbose logging")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: %s gedcom-export [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Export a tree from the relational store as a GEDCOM 5.5.1 file.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s gedcom-export -tree 1 > family.ged\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s gedcom-export -tree 1 -output family.ged\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s gedcom-export -tree 2 -db ./heritage.db -output backup.ged\n", os.Args[0])
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	cmd.TreeID = uint(treeID)

	if cmd.TreeID == 0 {
		fs.Usage()
		return fmt.Errorf("-tree is required")
	}

	return nil
}

// Run executes the export command
func (cmd *GedcomExportCommand) Run() error {
	cfg := config.NewConfig()
	if cmd.DatabasePath != "" {
		cfg.Database.Path = cmd.DatabasePath
	}

	log := newCommandLogger(cmd.Verbose)
	ctx := context.Background()

	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	exporter := exporters.NewGedcomExporter(db.DB, log)
	content, err := exporter.Export(ctx, cmd.TreeID)
	if err != nil {
		return fmt.Errorf("failed to export tree %d: %w", cmd.TreeID, err)
	}

	if cmd.OutputPath == "" {
		fmt.Print(content)
		return nil
	}

	absPath, err := filepath.Abs(cmd.OutputPath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path for output: %w", err)
	}
	if err := os.WriteFile(absPath, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	lines := strings.Count(content, "\n")
	fmt.Printf("✅ Exported tree %d (%d lines) to %s\n", cmd.TreeID, lines, absPath)
	return nil
}
