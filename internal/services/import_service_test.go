package services

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/entities"
	"github.com/arkivist/heritage/internal/importers"
)

type mockRunner struct {
	raw      string
	treeID   uint
	strategy importers.Strategy
	out      *importers.Outcome
	err      error
}

func (m *mockRunner) Run(_ context.Context, raw string, treeID uint, strategy importers.Strategy) (*importers.Outcome, error) {
	m.raw = raw
	m.treeID = treeID
	m.strategy = strategy
	return m.out, m.err
}

type mockTracker struct {
	recorded bool
	fileSize int64
	runErr   error
}

func (m *mockTracker) Record(_ context.Context, _ *importers.Outcome, fileSize int64, runErr error) {
	m.recorded = true
	m.fileSize = fileSize
	m.runErr = runErr
}

func setupTreeRepo(t *testing.T) (*trees.Repository, uint) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "services_test.db")
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&entities.Tree{}))

	repo := trees.NewRepository(db)
	tree := &entities.Tree{Name: "test"}
	require.NoError(t, repo.Create(tree))
	return repo, tree.ID
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)
	return log
}

func TestImportService_Import(t *testing.T) {
	repo, treeID := setupTreeRepo(t)
	runner := &mockRunner{out: &importers.Outcome{Success: true, Counts: importers.NewStoreCounts()}}
	tracker := &mockTracker{}
	svc := NewImportService(repo, runner, tracker, 64, testLogger())

	raw := "0 HEAD\n0 TRLR\n"
	out, err := svc.Import(context.Background(), strings.NewReader(raw), treeID, "optimized")
	require.NoError(t, err)
	assert.True(t, out.Success)

	assert.Equal(t, raw, runner.raw)
	assert.Equal(t, treeID, runner.treeID)
	assert.Equal(t, importers.StrategyOptimized, runner.strategy)

	assert.True(t, tracker.recorded)
	assert.Equal(t, int64(len(raw)), tracker.fileSize)
	assert.NoError(t, tracker.runErr)
}

func TestImportService_DefaultStrategy(t *testing.T) {
	repo, treeID := setupTreeRepo(t)
	runner := &mockRunner{out: &importers.Outcome{Success: true}}
	svc := NewImportService(repo, runner, &mockTracker{}, 64, testLogger())

	_, err := svc.Import(context.Background(), strings.NewReader("0 HEAD\n0 TRLR\n"), treeID, "")
	require.NoError(t, err)
	assert.Equal(t, importers.StrategyStandard, runner.strategy)
}

func TestImportService_UnknownStrategy(t *testing.T) {
	repo, treeID := setupTreeRepo(t)
	svc := NewImportService(repo, &mockRunner{}, &mockTracker{}, 64, testLogger())

	_, err := svc.Import(context.Background(), strings.NewReader(""), treeID, "turbo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown import strategy")
}

func TestImportService_UnknownTree(t *testing.T) {
	repo, _ := setupTreeRepo(t)
	runner := &mockRunner{}
	svc := NewImportService(repo, runner, &mockTracker{}, 64, testLogger())

	_, err := svc.Import(context.Background(), strings.NewReader("0 HEAD\n0 TRLR\n"), 999, "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
	assert.Empty(t, runner.raw, "pipeline must not run for a missing tree")
}

func TestImportService_FileTooLarge(t *testing.T) {
	repo, treeID := setupTreeRepo(t)
	tracker := &mockTracker{}
	// 1 MB ceiling; feed just over it.
	svc := NewImportService(repo, &mockRunner{}, tracker, 1, testLogger())

	big := strings.Repeat("0 HEAD\n", (1<<20)/7+2)
	_, err := svc.Import(context.Background(), strings.NewReader(big), treeID, "")
	require.Error(t, err)

	var tooLarge *ErrFileTooLarge
	assert.True(t, errors.As(err, &tooLarge))
	assert.False(t, tracker.recorded)
}

func TestImportService_FailedRunIsStillTracked(t *testing.T) {
	repo, treeID := setupTreeRepo(t)
	runErr := errors.New("malformed GEDCOM file")
	runner := &mockRunner{out: &importers.Outcome{Success: false}, err: runErr}
	tracker := &mockTracker{}
	svc := NewImportService(repo, runner, tracker, 64, testLogger())

	out, err := svc.Import(context.Background(), strings.NewReader("garbage"), treeID, "")
	require.Error(t, err)
	assert.False(t, out.Success)
	assert.True(t, tracker.recorded)
	assert.Equal(t, runErr, tracker.runErr)
}
