// Package trees provides database operations for destination trees.
package trees

import (
	"gorm.io/gorm"

	"github.com/arkivist/heritage/internal/entities"
)

// Repository handles tree lookups and per-tree aggregate counts.
type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

func (r *Repository) Create(tree *entities.Tree) error {
	return r.db.Create(tree).Error
}

func (r *Repository) GetByID(id uint) (*entities.Tree, error) {
	var tree entities.Tree
	if err := r.db.First(&tree, id).Error; err != nil {
		return nil, err
	}
	return &tree, nil
}

func (r *Repository) GetAll() ([]entities.Tree, error) {
	var list []entities.Tree
	err := r.db.Find(&list).Error
	return list, err
}

// EntityCounts reports how many relational rows a tree holds per kind. The
// reconciliation sweep compares these against document and graph counts.
type EntityCounts struct {
	Individuals int64
	Families    int64
	Sources     int64
	Notes       int64
	Media       int64
}

func (r *Repository) EntityCounts(treeID uint) (EntityCounts, error) {
	var counts EntityCounts
	type countQuery struct {
		model any
		dst   *int64
	}
	for _, q := range []countQuery{
		{&entities.Individual{}, &counts.Individuals},
		{&entities.Family{}, &counts.Families},
		{&entities.SourceRecord{}, &counts.Sources},
		{&entities.NoteRecord{}, &counts.Notes},
		{&entities.MediaObject{}, &counts.Media},
	} {
		if err := r.db.Model(q.model).Where("tree_id = ?", treeID).Count(q.dst).Error; err != nil {
			return counts, err
		}
	}
	return counts, nil
}
