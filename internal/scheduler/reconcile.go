// Package scheduler runs the periodic cross-store reconciliation sweep. The
// per-import cross-check catches drift at import time; this sweep catches
// drift that appears later (manual deletions, a store restored from backup).
package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/database/trees"
	"github.com/arkivist/heritage/internal/importers"
)

// DocumentCounter counts documents per tree and collection.
type DocumentCounter interface {
	CountByTree(ctx context.Context, collection string, treeID uint) (int64, error)
}

// GraphCounter counts person nodes per tree.
type GraphCounter interface {
	CountPersons(ctx context.Context, treeID uint) (int64, error)
}

// TreeDrift is one tree's count mismatch across stores.
type TreeDrift struct {
	TreeID              uint
	RelationalPersons   int64
	DocumentIndividuals int64
	GraphPersons        int64
}

func (d TreeDrift) InSync() bool {
	return d.RelationalPersons == d.DocumentIndividuals &&
		d.RelationalPersons == d.GraphPersons
}

// ReconcileScheduler compares per-tree counts between the relational store
// and the two derived stores on a cron schedule. Drift is reported, never
// repaired automatically: repair means re-running the import.
type ReconcileScheduler struct {
	trees     *trees.Repository
	documents DocumentCounter
	graph     GraphCounter
	schedule  string
	log       *logrus.Logger

	cron       *cron.Cron
	mu         sync.RWMutex
	isRunning  bool
	isSweeping bool
}

func NewReconcileScheduler(treeRepo *trees.Repository, documents DocumentCounter, graph GraphCounter, schedule string, log *logrus.Logger) *ReconcileScheduler {
	return &ReconcileScheduler{
		trees:     treeRepo,
		documents: documents,
		graph:     graph,
		schedule:  schedule,
		log:       log,
		cron:      cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the periodic sweep.
func (s *ReconcileScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	_, err := s.cron.AddFunc(s.schedule, func() {
		s.runSweep()
	})
	if err != nil {
		return fmt.Errorf("invalid reconcile schedule %q: %w", s.schedule, err)
	}

	s.cron.Start()
	s.isRunning = true
	s.log.WithField("schedule", s.schedule).Info("reconciliation sweep scheduled")
	return nil
}

// Stop waits for a running sweep to finish.
func (s *ReconcileScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.isRunning = false
	s.log.Info("reconciliation sweep stopped")
}

// RunNow triggers an immediate sweep and returns its findings.
func (s *ReconcileScheduler) RunNow(ctx context.Context) ([]TreeDrift, error) {
	return s.sweep(ctx)
}

func (s *ReconcileScheduler) runSweep() {
	s.mu.Lock()
	if s.isSweeping {
		s.mu.Unlock()
		s.log.Info("reconciliation sweep skipped, previous sweep still running")
		return
	}
	s.isSweeping = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.isSweeping = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if _, err := s.sweep(ctx); err != nil {
		s.log.WithError(err).Warn("reconciliation sweep failed")
	}
}

func (s *ReconcileScheduler) sweep(ctx context.Context) ([]TreeDrift, error) {
	list, err := s.trees.GetAll()
	if err != nil {
		return nil, fmt.Errorf("list trees: %w", err)
	}

	var drifted []TreeDrift
	for _, tree := range list {
		drift, err := s.checkTree(ctx, tree.ID)
		if err != nil {
			s.log.WithField("tree_id", tree.ID).WithError(err).
				Warn("tree skipped during sweep")
			continue
		}
		if drift.InSync() {
			continue
		}
		drifted = append(drifted, drift)
		s.log.WithFields(logrus.Fields{
			"tree_id":    drift.TreeID,
			"relational": drift.RelationalPersons,
			"documents":  drift.DocumentIndividuals,
			"graph":      drift.GraphPersons,
		}).Warn("cross-store drift detected")
	}

	s.log.WithFields(logrus.Fields{"trees": len(list), "drifted": len(drifted)}).
		Info("reconciliation sweep finished")
	return drifted, nil
}

func (s *ReconcileScheduler) checkTree(ctx context.Context, treeID uint) (TreeDrift, error) {
	drift := TreeDrift{TreeID: treeID}

	counts, err := s.trees.EntityCounts(treeID)
	if err != nil {
		return drift, err
	}
	drift.RelationalPersons = counts.Individuals

	drift.DocumentIndividuals, err = s.documents.CountByTree(ctx, importers.CollectionIndividuals, treeID)
	if err != nil {
		return drift, err
	}
	drift.GraphPersons, err = s.graph.CountPersons(ctx, treeID)
	if err != nil {
		return drift, err
	}
	return drift, nil
}
