package trees

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/arkivist/heritage/internal/database"
	"github.com/arkivist/heritage/internal/entities"
)

func setupRepo(t *testing.T) (*Repository, *gorm.DB) {
	t.Helper()
	log := logrus.New()
	log.SetLevel(logrus.ErrorLevel)

	db, err := database.NewDatabase(filepath.Join(t.TempDir(), "trees_test.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	return NewRepository(db.DB), db.DB
}

func TestRepository_CreateAndGet(t *testing.T) {
	repo, _ := setupRepo(t)

	tree := &entities.Tree{Name: "Ancestry", Description: "imported from a scan"}
	require.NoError(t, repo.Create(tree))
	assert.NotZero(t, tree.ID)

	got, err := repo.GetByID(tree.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ancestry", got.Name)
	assert.Equal(t, "imported from a scan", got.Description)
}

func TestRepository_GetByIDNotFound(t *testing.T) {
	repo, _ := setupRepo(t)

	_, err := repo.GetByID(9999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRepository_GetAll(t *testing.T) {
	repo, _ := setupRepo(t)

	require.NoError(t, repo.Create(&entities.Tree{Name: "first"}))
	require.NoError(t, repo.Create(&entities.Tree{Name: "second"}))

	list, err := repo.GetAll()
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestRepository_EntityCounts(t *testing.T) {
	repo, db := setupRepo(t)

	tree := &entities.Tree{Name: "counted"}
	require.NoError(t, repo.Create(tree))
	other := &entities.Tree{Name: "other"}
	require.NoError(t, repo.Create(other))

	for i, treeID := range []uint{tree.ID, tree.ID, other.ID} {
		ind := entities.Individual{TreeID: treeID, Xref: fmt.Sprintf("I%d", i+1)}
		require.NoError(t, db.Create(&ind).Error)
	}
	require.NoError(t, db.Create(&entities.Family{TreeID: tree.ID, Xref: "F1"}).Error)
	require.NoError(t, db.Create(&entities.NoteRecord{TreeID: tree.ID, Xref: "N1", Text: "note"}).Error)

	counts, err := repo.EntityCounts(tree.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), counts.Individuals)
	assert.Equal(t, int64(1), counts.Families)
	assert.Equal(t, int64(1), counts.Notes)
	assert.Zero(t, counts.Sources)
	assert.Zero(t, counts.Media)
}
