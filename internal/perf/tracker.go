// Package perf records per-run import metrics: timing, memory peak and
// per-store counts. The tracker is a sink only; import behavior never
// depends on it.
package perf

import (
	"context"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/arkivist/heritage/internal/entities"
	"github.com/arkivist/heritage/internal/importers"
)

// Tracker records one finished import run.
type Tracker interface {
	Record(ctx context.Context, out *importers.Outcome, fileSize int64, runErr error)
}

// LogTracker emits one structured line per run.
type LogTracker struct {
	log *logrus.Logger
}

func NewLogTracker(log *logrus.Logger) *LogTracker {
	return &LogTracker{log: log}
}

func (t *LogTracker) Record(_ context.Context, out *importers.Outcome, fileSize int64, runErr error) {
	entry := t.log.WithFields(logrus.Fields{
		"run_id":            out.RunID,
		"tree_id":           out.TreeID,
		"strategy":          out.Strategy,
		"total_records":     out.TotalRecords,
		"persisted":         out.Counts.Total(),
		"file_size_bytes":   fileSize,
		"duration_ms":       out.Duration.Milliseconds(),
		"memory_peak_bytes": out.MemoryPeakBytes,
		"errors":            len(out.Errors),
	})
	if runErr != nil {
		entry.WithError(runErr).Warn("import run failed")
		return
	}
	entry.Info("import run finished")
}

// DBTracker persists an ImportSession row per run and logs it as well.
type DBTracker struct {
	db  *gorm.DB
	log *LogTracker
}

func NewDBTracker(db *gorm.DB, log *logrus.Logger) *DBTracker {
	return &DBTracker{db: db, log: NewLogTracker(log)}
}

func (t *DBTracker) Record(ctx context.Context, out *importers.Outcome, fileSize int64, runErr error) {
	t.log.Record(ctx, out, fileSize, runErr)

	rel := out.Counts[importers.StoreRelational]
	session := entities.ImportSession{
		RunID:         out.RunID,
		TreeID:        out.TreeID,
		Strategy:      string(out.Strategy),
		FileSizeBytes: fileSize,
		TotalRecords:  out.TotalRecords,

		Individuals: rel[importers.KindIndividuals],
		Families:    rel[importers.KindFamilies],
		Sources:     rel[importers.KindSources],
		Notes:       rel[importers.KindNotes],
		Media:       rel[importers.KindMedia],
		Documents:   out.Counts[importers.StoreDocument][importers.KindDocuments],
		GraphNodes:  out.Counts[importers.StoreGraph][importers.KindNodes],
		GraphEdges:  out.Counts[importers.StoreGraph][importers.KindEdges],

		DurationMs:      out.Duration.Milliseconds(),
		MemoryPeakBytes: out.MemoryPeakBytes,
		Success:         out.Success,
	}
	if runErr != nil {
		session.ErrorMessage = runErr.Error()
	}

	// A tracking failure must never fail the run it tracks.
	if err := t.db.WithContext(ctx).Create(&session).Error; err != nil {
		t.log.log.WithError(err).Warn("import session not recorded")
	}
}
