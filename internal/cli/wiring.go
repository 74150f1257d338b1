// Package cli implements the command-line import and export commands.
package cli

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/config"
	"github.com/arkivist/heritage/internal/database"
	"github.com/arkivist/heritage/internal/documents"
	"github.com/arkivist/heritage/internal/graph"
	"github.com/arkivist/heritage/internal/importers"
	"github.com/arkivist/heritage/internal/resolver"
)

// stack holds the connected stores a command works against.
type stack struct {
	db        *database.Database
	documents *documents.Client
	graph     *graph.Client
	pipeline  *importers.Pipeline
	log       *logrus.Logger
}

// connectStack dials every store a full import needs. Commands that only
// touch the relational store (export) use connectDatabase instead.
func connectStack(ctx context.Context, cfg *config.Config, log *logrus.Logger) (*stack, error) {
	db, err := database.NewDatabase(cfg.Database.Path, log)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	docStore, err := documents.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, log)
	if err != nil {
		db.Close()
		return nil, err
	}

	graphStore, err := graph.Connect(ctx, cfg.Neo4j.URI, cfg.Neo4j.Username, cfg.Neo4j.Password, log)
	if err != nil {
		docStore.Close(ctx)
		db.Close()
		return nil, err
	}

	var newResolver func(runID string) resolver.Resolver
	if cfg.Redis.Addr != "" {
		client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
		newResolver = func(runID string) resolver.Resolver {
			return resolver.NewRedis(client, runID)
		}
	}

	pipeline := importers.NewPipeline(db.DB, docStore, graphStore, newResolver, log, importers.Options{
		BatchSize:       cfg.Import.BatchSize,
		Workers:         cfg.Import.Workers,
		MemoryCeilingMB: cfg.Import.MemoryCeilingMB,
	})

	return &stack{db: db, documents: docStore, graph: graphStore, pipeline: pipeline, log: log}, nil
}

func (s *stack) close(ctx context.Context) {
	if err := s.graph.Close(ctx); err != nil {
		s.log.WithError(err).Warn("graph store close failed")
	}
	if err := s.documents.Close(ctx); err != nil {
		s.log.WithError(err).Warn("document store close failed")
	}
	if err := s.db.Close(); err != nil {
		s.log.WithError(err).Warn("database close failed")
	}
}

func newCommandLogger(verbose bool) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	if verbose {
		log.SetLevel(logrus.DebugLevel)
	} else {
		log.SetLevel(logrus.WarnLevel)
	}
	return log
}
