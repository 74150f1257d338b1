package services

import (
	"context"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/importers"
	"github.com/arkivist/heritage/internal/perf"
)

// ErrFileTooLarge rejects uploads above the configured ceiling before any
// parsing starts.
type ErrFileTooLarge struct {
	SizeBytes int64
	MaxBytes  int64
}

func (e *ErrFileTooLarge) Error() string {
	return fmt.Sprintf("file of %d bytes exceeds the %d byte limit", e.SizeBytes, e.MaxBytes)
}

// ImportService owns the business logic around one import: tree lookup,
// file size policy, strategy selection, pipeline execution and performance
// tracking.
type ImportService struct {
	trees    *trees.Repository
	pipeline ImportRunner
	tracker  perf.Tracker
	maxBytes int64
	log      *logrus.Logger
}

func NewImportService(treeRepo *trees.Repository, pipeline ImportRunner, tracker perf.Tracker, maxFileSizeMB int, log *logrus.Logger) *ImportService {
	return &ImportService{
		trees:    treeRepo,
		pipeline: pipeline,
		tracker:  tracker,
		maxBytes: int64(maxFileSizeMB) << 20,
		log:      log,
	}
}

// Import reads the whole file and runs it through the pipeline. treeID must
// name an existing tree. The outcome is returned even when the run failed;
// callers inspect Success and the error together.
func (s *ImportService) Import(ctx context.Context, file io.Reader, treeID uint, strategyName string) (*importers.Outcome, error) {
	strategy, err := importers.ParseStrategy(strategyName)
	if err != nil {
		return nil, err
	}

	if _, err := s.trees.GetByID(treeID); err != nil {
		return nil, fmt.Errorf("tree %d not found: %w", treeID, err)
	}

	raw, err := s.readBounded(file)
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"tree_id":  treeID,
		"strategy": strategy,
		"bytes":    len(raw),
	}).Info("import started")

	out, runErr := s.pipeline.Run(ctx, string(raw), treeID, strategy)
	if out != nil && s.tracker != nil {
		s.tracker.Record(ctx, out, int64(len(raw)), runErr)
	}
	return out, runErr
}

func (s *ImportService) readBounded(file io.Reader) ([]byte, error) {
	if s.maxBytes <= 0 {
		return io.ReadAll(file)
	}
	// Read one byte past the limit so oversize is detectable.
	raw, err := io.ReadAll(io.LimitReader(file, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(raw)) > s.maxBytes {
		return nil, &ErrFileTooLarge{SizeBytes: int64(len(raw)), MaxBytes: s.maxBytes}
	}
	return raw, nil
}
