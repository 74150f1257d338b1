// Package graph adapts a Neo4j database to the import pipeline's graph
// store port.
package graph

import (
	"context"
	"fmt"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
	"github.com/sirupsen/logrus"

	"github.com/arkivist/heritage/internal/importers"
)

type Client struct {
	driver neo4j.DriverWithContext
	log    *logrus.Logger
}

var _ importers.GraphStore = (*Client)(nil)

// Connect builds the driver and verifies connectivity before returning.
func Connect(ctx context.Context, uri, username, password string, log *logrus.Logger) (*Client, error) {
	driver, err := neo4j.NewDriverWithContext(uri, neo4j.BasicAuth(username, password, ""))
	if err != nil {
		return nil, fmt.Errorf("failed to build graph driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		return nil, fmt.Errorf("graph store unreachable: %w", err)
	}

	log.WithField("uri", uri).Info("graph store connected")
	return &Client{driver: driver, log: log}, nil
}

// WriteTx scopes fn to one managed write transaction. The driver rolls the
// whole transaction back when fn returns an error.
func (c *Client) WriteTx(ctx context.Context, fn func(tx importers.GraphTx) error) error {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return nil, fn(&managedTx{tx: tx})
	})
	return err
}

// CountPersons reports how many Person nodes one tree holds; used by the
// reconciliation sweep.
func (c *Client) CountPersons(ctx context.Context, treeID uint) (int64, error) {
	session := c.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.Run(ctx,
		`MATCH (p:Person {tree_id: $tree_id}) RETURN count(p) AS n`,
		map[string]any{"tree_id": int64(treeID)})
	if err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	record, err := result.Single(ctx)
	if err != nil {
		return 0, fmt.Errorf("count persons: %w", err)
	}
	n, _ := record.Get("n")
	count, ok := n.(int64)
	if !ok {
		return 0, fmt.Errorf("count persons: unexpected result type %T", n)
	}
	return count, nil
}

// Ping is the health probe the HTTP layer runs.
func (c *Client) Ping(ctx context.Context) error {
	return c.driver.VerifyConnectivity(ctx)
}

func (c *Client) Close(ctx context.Context) error {
	return c.driver.Close(ctx)
}

type managedTx struct {
	tx neo4j.ManagedTransaction
}

func (m *managedTx) Run(ctx context.Context, query string, params map[string]any) error {
	result, err := m.tx.Run(ctx, query, params)
	if err != nil {
		return err
	}
	// Drain so statement errors surface inside the transaction.
	_, err = result.Consume(ctx)
	return err
}
