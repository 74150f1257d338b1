package services

import (
	"fmt"

	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/entities"
)

// TreeService manages destination trees.
type TreeService struct {
	repo *trees.Repository
}

func NewTreeService(repo *trees.Repository) *TreeService {
	return &TreeService{repo: repo}
}

func (s *TreeService) Create(name, description string) (*entities.Tree, error) {
	if name == "" {
		return nil, fmt.Errorf("tree name is required")
	}
	tree := &entities.Tree{Name: name, Description: description}
	if err := s.repo.Create(tree); err != nil {
		return nil, fmt.Errorf("failed to create tree: %w", err)
	}
	return tree, nil
}

func (s *TreeService) Get(id uint) (*entities.Tree, error) {
	return s.repo.GetByID(id)
}

func (s *TreeService) List() ([]entities.Tree, error) {
	return s.repo.GetAll()
}
