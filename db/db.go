package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection   = "users"
	RecipesCollection = "recipes"

	UsernameIndex = "username_unique"
	EmailIndex    = "email_unique"
)

// DB is the process-wide persistence handle. It is created once in main and
// passed to the stores; Close disconnects the client.
type DB struct {
	Client  *mongo.Client
	Users   *mongo.Collection
	Recipes *mongo.Collection
}

// Connect dials MongoDB, pings the deployment and resolves the collections.
func Connect(ctx context.Context, uri, database string) (*DB, error) {
	serverAPI := options.ServerAPI(options.ServerAPIVersion1)
	opts := options.Client().ApplyURI(uri).SetServerAPIOptions(serverAPI)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Database("admin").RunCommand(pingCtx, bson.D{{Key: "ping", Value: 1}}).Err(); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo ping: %w", err)
	}

	d := client.Database(database)
	return &DB{
		Client:  client,
		Users:   d.Collection(UsersCollection),
		Recipes: d.Collection(RecipesCollection),
	}, nil
}

func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

// EnsureIndexes creates the unique user indexes and the recipe lookup indexes.
// CreateMany is idempotent for identical specs.
func (d *DB) EnsureIndexes(ctx context.Context) error {
	_, err := d.Users.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName(UsernameIndex)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true).SetName(EmailIndex)},
	})
	if err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	_, err = d.Recipes.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "title", Value: 1}}},
		{Keys: bson.D{{Key: "cuisine", Value: 1}}},
		{Keys: bson.D{{Key: "difficulty", Value: 1}}},
		{Keys: bson.D{{Key: "author", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	})
	if err != nil {
		return fmt.Errorf("recipes indexes: %w", err)
	}
	return nil
}

// OptionsFindLatest sorts newest first. A limit of 0 means no limit.
func OptionsFindLatest(offset, limit int64) *options.FindOptions {
	opts := options.Find()
	opts.SetSort(bson.D{{Key: "created_at", Value: -1}})
	if offset > 0 {
		opts.SetSkip(offset)
	}
	if limit > 0 {
		opts.SetLimit(limit)
	}
	return opts
}
