package repositories

import (
	"context"
	"fmt"
	"log"
	"time"

	"task-manager/api/internal/config"
	"task-manager/api/internal/database"
)

// Store is an opened datastore together with its repositories.
type Store struct {
	*Repositories
	Health func(ctx context.Context) error
	Stats  func() map[string]interface{}
	Close  func() error
}

// Open connects the datastore selected by DB_TYPE. The gorm backends are
// migrated when DB_AUTO_MIGRATE is set; mongo always gets its indexes.
func Open(ctx context.Context, cfg *config.Config) (*Store, error) {
	if cfg.Database.Type == config.DBTypeMongo {
		return openMongo(ctx, cfg)
	}

	pool, err := database.NewDatabasePool(database.PoolConfigFromConfig(cfg))
	if err != nil {
		return nil, err
	}
	if cfg.Database.AutoMigrate {
		if err := pool.Migrate(); err != nil {
			pool.Close()
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	log.Printf("Connected to %s database", cfg.Database.Type)
	return &Store{
		Repositories: NewGormRepositories(pool.DB),
		Health:       pool.HealthContext,
		Stats:        pool.Stats,
		Close:        pool.Close,
	}, nil
}

func openMongo(ctx context.Context, cfg *config.Config) (*Store, error) {
	mdb := database.NewMongoDB(cfg.Mongo)
	if err := mdb.Connect(ctx); err != nil {
		return nil, err
	}
	if err := EnsureMongoIndexes(ctx, mdb.Database); err != nil {
		_ = mdb.Disconnect(ctx)
		return nil, fmt.Errorf("ensure indexes: %w", err)
	}

	log.Printf("Connected to MongoDB database %s", cfg.Mongo.Database)
	return &Store{
		Repositories: NewMongoRepositories(mdb.Database),
		Health:       mdb.Health,
		Stats: func() map[string]interface{} {
			return map[string]interface{}{"type": config.DBTypeMongo, "database": cfg.Mongo.Database}
		},
		Close: func() error {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			return mdb.Disconnect(ctx)
		},
	}, nil
}
