package database

import (
	"context"
	"errors"
	"time"

	"task-manager/api/internal/config"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	URL      string
	Name     string
	timeout  time.Duration
}

func NewMongoDB(cfg config.MongoConfig) *MongoDB {
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &MongoDB{
		URL:     cfg.URL,
		Name:    cfg.Database,
		timeout: timeout,
	}
}

func (m *MongoDB) Connect(ctx context.Context) error {
	if m.URL == "" {
		return errors.New("mongo URL is required")
	}
	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(m.URL))
	if err != nil {
		return err
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return err
	}
	m.Client = client
	m.Database = client.Database(m.Name)
	return nil
}

func (m *MongoDB) Health(ctx context.Context) error {
	if m.Client == nil {
		return errors.New("mongo client is not connected")
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return m.Client.Ping(ctx, readpref.Primary())
}

func (m *MongoDB) Disconnect(ctx context.Context) error {
	if m.Client == nil {
		return nil
	}
	return m.Client.Disconnect(ctx)
}
