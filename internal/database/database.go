package database

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"

	"github.com/sheikhmaazraheel/MYR-Backend/internal/config"
)

// Open returns the store selected by STORAGE_DRIVER.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch cfg.StorageDriver {
	case "memory":
		zap.S().Warn("⚠️ using in-memory store, data will not survive a restart")
		return NewMemoryStore(), nil
	case "mongo", "":
		return ConnectMongo(ctx, cfg.MongoURI, cfg.MongoDB)
	default:
		return nil, errors.Errorf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}
}

// ConnectMongo dials the document database and makes sure the unique
// indexes exist before any request is served.
func ConnectMongo(ctx context.Context, uri, dbName string) (*MongoStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(10*time.Second))
	if err != nil {
		return nil, errors.Wrap(err, "mongo connect")
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, errors.Wrap(err, "mongo ping")
	}

	store := NewMongoStore(client, client.Database(dbName))
	if err := store.EnsureIndexes(ctx); err != nil {
		return nil, err
	}
	zap.S().Infow("✅ connected to MongoDB", "database", dbName)
	return store, nil
}
