// Package database manages the MongoDB client lifecycle.
package database

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/josmejia2401/jac-vision/internal/config"
)

type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// Connect opens a client against the configured URI and verifies it with
// a ping before returning.
func Connect(ctx context.Context, cfg *config.DatabaseConfig) (*Mongo, error) {
	connectTimeout, err := cfg.GetConnectTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid connect_timeout: %w", err)
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetMaxPoolSize(cfg.MaxPoolSize)
	if connectTimeout > 0 {
		opts.SetConnectTimeout(connectTimeout)
	}

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to connect database: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &Mongo{client: client, db: client.Database(cfg.Name)}, nil
}

func (m *Mongo) Database() *mongo.Database {
	return m.db
}

func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

// EnsureIndexes creates the unique and lookup indexes the repositories
// rely on. Safe to call on every start.
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	users := m.db.Collection("users")
	if _, err := users.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "username", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return fmt.Errorf("users.username index: %w", err)
	}

	tokens := m.db.Collection("tokens")
	_, err := tokens.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "userId", Value: 1}}},
		{
			Keys:    bson.D{{Key: "accessToken", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return fmt.Errorf("tokens indexes: %w", err)
	}
	return nil
}
