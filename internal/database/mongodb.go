package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ConnectMongo opens a connection and returns the client. Caller should call client.Disconnect(ctx).
func ConnectMongo(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("mongo ping: %w", err)
	}
	return client, nil
}

// EnsureAccountIndexes creates the unique indexes the identity resolver relies
// on. The unique index rejection on the second insert is the only guard
// against two simultaneous first logins creating two users for one identity.
func EnsureAccountIndexes(ctx context.Context, db *mongo.Database) error {
	users := db.Collection("users")
	models := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "githubUid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
		{
			Keys:    bson.D{{Key: "linkedinUid", Value: 1}},
			Options: options.Index().SetUnique(true).SetSparse(true),
		},
	}
	if _, err := users.Indexes().CreateMany(ctx, models); err != nil {
		return fmt.Errorf("users indexes: %w", err)
	}

	// owned resources are matched by external key per owner for idempotent upserts
	owned := map[string]string{
		"github_accounts": "userId",
		"linkedins":       "userId",
		"stackexchanges":  "userId",
		"preferences":     "userId",
		"repos":           "accountId",
		"organizations":   "accountId",
		"positions":       "accountId",
		"educations":      "accountId",
	}
	for col, ownerField := range owned {
		keys := bson.D{{Key: ownerField, Value: 1}}
		opts := options.Index().SetUnique(true)
		switch col {
		case "repos", "organizations", "positions", "educations":
			keys = append(keys, bson.E{Key: "externalKey", Value: 1})
		}
		idx := mongo.IndexModel{Keys: keys, Options: opts}
		if _, err := db.Collection(col).Indexes().CreateOne(ctx, idx); err != nil {
			return fmt.Errorf("%s index: %w", col, err)
		}
	}
	return nil
}
