package perf

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arkivist/heritage/internal/entities"
	"github.com/arkivist/heritage/internal/importers"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "perf_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.ImportSession{}))
	return db
}

func sampleOutcome() *importers.Outcome {
	counts := importers.NewStoreCounts()
	counts[importers.StoreRelational][importers.KindIndividuals] = 12
	counts[importers.StoreRelational][importers.KindFamilies] = 4
	counts[importers.StoreDocument][importers.KindDocuments] = 16
	counts[importers.StoreGraph][importers.KindNodes] = 12
	counts[importers.StoreGraph][importers.KindEdges] = 8
	return &importers.Outcome{
		Success:         true,
		Strategy:        importers.StrategyOptimized,
		TreeID:          3,
		RunID:           "run-123",
		Counts:          counts,
		TotalRecords:    16,
		Duration:        1500 * time.Millisecond,
		MemoryPeakBytes: 1 << 20,
	}
}

func TestDBTracker_Record(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewDBTracker(db, logrus.New())

	tracker.Record(context.Background(), sampleOutcome(), 4096, nil)

	var session entities.ImportSession
	require.NoError(t, db.Where("run_id = ?", "run-123").First(&session).Error)
	assert.Equal(t, uint(3), session.TreeID)
	assert.Equal(t, "optimized", session.Strategy)
	assert.Equal(t, 12, session.Individuals)
	assert.Equal(t, 4, session.Families)
	assert.Equal(t, 16, session.Documents)
	assert.Equal(t, 12, session.GraphNodes)
	assert.Equal(t, 8, session.GraphEdges)
	assert.Equal(t, int64(4096), session.FileSizeBytes)
	assert.Equal(t, int64(1500), session.DurationMs)
	assert.True(t, session.Success)
	assert.Empty(t, session.ErrorMessage)
}

func TestDBTracker_RecordFailure(t *testing.T) {
	db := setupTestDB(t)
	tracker := NewDBTracker(db, logrus.New())

	out := sampleOutcome()
	out.Success = false
	tracker.Record(context.Background(), out, 0, errors.New("malformed file"))

	var session entities.ImportSession
	require.NoError(t, db.First(&session).Error)
	assert.False(t, session.Success)
	assert.Equal(t, "malformed file", session.ErrorMessage)
}
