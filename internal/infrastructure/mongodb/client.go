package mongodb

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"

	"civicsolve/pkg/logger"
)

type Client struct {
	client   *mongo.Client
	database *mongo.Database
}

// NewClient connects and pings once; a failed ping is returned so the caller can decide
// whether to start degraded.
func NewClient(ctx context.Context, uri, database string, timeout time.Duration) (*Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to mongodb: %w", err)
	}

	c := &Client{
		client:   client,
		database: client.Database(database),
	}

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		return c, fmt.Errorf("failed to ping mongodb: %w", err)
	}

	logger.Info("Connected to MongoDB database %s", database)
	return c, nil
}

func (c *Client) Database() *mongo.Database {
	return c.database
}

func (c *Client) Close(ctx context.Context) error {
	return c.client.Disconnect(ctx)
}

// EnsureIndexes creates the indexes the complaint listing and the uniqueness checks rely on.
func (c *Client) EnsureIndexes(ctx context.Context) error {
	indexes := map[string][]mongo.IndexModel{
		"complaints": {
			{Keys: bson.D{{Key: "complaintId", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "createdDate", Value: -1}}},
			{Keys: bson.D{{Key: "category", Value: 1}, {Key: "createdDate", Value: -1}}},
			{Keys: bson.D{{Key: "reportedBy", Value: 1}, {Key: "createdDate", Value: -1}}},
			{Keys: bson.D{{Key: "upvotes", Value: -1}, {Key: "createdDate", Value: -1}}},
			{Keys: bson.D{{Key: "priorityRank", Value: -1}, {Key: "createdDate", Value: -1}}},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
			{Keys: bson.D{{Key: "phone", Value: 1}}},
			{Keys: bson.D{{Key: "citizenId", Value: 1}}},
		},
		"branches": {
			{Keys: bson.D{{Key: "departmentId", Value: 1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := c.database.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes on %s: %w", collection, err)
		}
	}
	return nil
}
