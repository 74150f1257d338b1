// Package documents adapts a MongoDB database to the import pipeline's
// document store port.
package documents

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/arkivist/heritage/internal/importers"
)

type Client struct {
	client   *mongo.Client
	database string
	log      *logrus.Logger
}

var _ importers.DocumentStore = (*Client)(nil)

// Connect dials the server and verifies the connection with a ping.
func Connect(ctx context.Context, uri, database string, log *logrus.Logger) (*Client, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to document store: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("document store unreachable: %w", err)
	}

	log.WithField("database", database).Info("document store connected")
	return &Client{client: client, database: database, log: log}, nil
}

func (c *Client) Insert(ctx context.Context, collection string, doc map[string]any) error {
	_, err := c.client.Database(c.database).Collection(collection).InsertOne(ctx, doc)
	if err != nil {
		return fmt.Errorf("insert into %s: %w", collection, err)
	}
	return nil
}

// CountByTree reports how many documents a collection holds for one tree.
// The reconciliation sweep compares this against the relational row count.
func (c *Client) CountByTree(ctx context.Context, collection string, treeID uint) (int64, error) {
	n, err := c.client.Database(c.database).Collection(collection).
		CountDocuments(ctx, bson.M{"tree_id": treeID})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// EnsureIndexes creates the (tree_id, xref) lookup index on each collection.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	model := mongo.IndexModel{
		Keys: bson.D{{Key: "tree_id", Value: 1}, {Key: "xref", Value: 1}},
	}
	for _, collection := range []string{
		importers.CollectionIndividuals,
		importers.CollectionFamilies,
		importers.CollectionNotes,
	} {
		_, err := c.client.Database(c.database).Collection(collection).
			Indexes().CreateOne(ctx, model)
		if err != nil {
			return fmt.Errorf("ensure index on %s: %w", collection, err)
		}
	}
	return nil
}

// Ping is the health probe the HTTP layer runs.
func (c *Client) Ping(ctx context.Context) error {
	return c.client.Ping(ctx, nil)
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}
