package services

import (
	"context"
	"fmt"
)

// ExportService wraps the GEDCOM exporter behind the service boundary the
// HTTP and CLI layers consume.
type ExportService struct {
	exporter TreeExporter
}

func NewExportService(exporter TreeExporter) *ExportService {
	return &ExportService{exporter: exporter}
}

func (s *ExportService) Export(ctx context.Context, treeID uint) (string, error) {
	text, err := s.exporter.Export(ctx, treeID)
	if err != nil {
		return "", fmt.Errorf("failed to export tree %d: %w", treeID, err)
	}
	return text, nil
}
