package http

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/database"
	"github.com/arkivist/heritage/internal/services"
)

// Pinger is the health probe the router can run against an external store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RouterConfig receives all router dependencies in one place, improving
// testability and keeping NewRouter's signature stable.
type RouterConfig struct {
	Database *database.Database
	Version  string

	ImportService *services.ImportService
	ExportService *services.ExportService
	TreeService   *services.TreeService

	// Optional health probes for the external stores.
	DocumentPing Pinger
	GraphPing    Pinger

	Log *logrus.Logger
}
