package database

import (
	"context"
	"testing"
	"time"

	"task-manager/api/internal/config"
	"task-manager/api/internal/models"

	"github.com/gofrs/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm/logger"
)

func newSQLitePool(t *testing.T) *DatabasePool {
	t.Helper()
	cfg := DefaultPoolConfig()
	cfg.Driver = config.DBTypeSQLite
	cfg.DSN = ":memory:"
	cfg.LogLevel = logger.Silent

	pool, err := NewDatabasePool(cfg)
	require.NoError(t, err)
	t.Cleanup(func() { pool.Close() })
	return pool
}

func TestDefaultPoolConfig(t *testing.T) {
	cfg := DefaultPoolConfig()

	assert.Equal(t, config.DBTypePostgres, cfg.Driver)
	assert.Equal(t, 25, cfg.MaxOpenConns)
	assert.Equal(t, 10, cfg.MaxIdleConns)
	assert.Equal(t, time.Hour, cfg.ConnMaxLifetime)
	assert.Equal(t, 30*time.Minute, cfg.ConnMaxIdleTime)
	assert.Equal(t, logger.Info, cfg.LogLevel)
}

func TestPoolConfigFromConfig(t *testing.T) {
	cfg := &config.Config{Database: config.DatabaseConfig{
		Type:       config.DBTypeSQLite,
		SQLitePath: "tasks.db",
		LogLevel:   "silent",
	}}
	pc := PoolConfigFromConfig(cfg)
	assert.Equal(t, "tasks.db", pc.DSN)
	assert.Equal(t, logger.Silent, pc.LogLevel)

	cfg.Database.Type = config.DBTypePostgres
	cfg.Database.Host = "db"
	pc = PoolConfigFromConfig(cfg)
	assert.Contains(t, pc.DSN, "host=db")
}

func TestParseLogLevel(t *testing.T) {
	assert.Equal(t, logger.Silent, ParseLogLevel("SILENT"))
	assert.Equal(t, logger.Error, ParseLogLevel("error"))
	assert.Equal(t, logger.Info, ParseLogLevel("info"))
	assert.Equal(t, logger.Warn, ParseLogLevel("anything"))
}

func TestNewDatabasePool_InvalidConfig(t *testing.T) {
	tests := []struct {
		name   string
		config *PoolConfig
	}{
		{"nil config", nil},
		{"empty DSN", &PoolConfig{Driver: config.DBTypeSQLite}},
		{"negative limits", &PoolConfig{Driver: config.DBTypeSQLite, DSN: ":memory:", MaxOpenConns: -1}},
		{"negative lifetime", &PoolConfig{Driver: config.DBTypeSQLite, DSN: ":memory:", ConnMaxLifetime: -time.Hour}},
		{"unknown driver", &PoolConfig{Driver: "oracle", DSN: "x"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewDatabasePool(tt.config)
			assert.Error(t, err)
		})
	}
}

func TestDatabasePool_SQLite(t *testing.T) {
	pool := newSQLitePool(t)

	require.NoError(t, pool.Migrate())
	assert.NoError(t, pool.Health())

	user := models.User{ID: uuid.Must(uuid.NewV4()), Name: "Ana", Email: "ana@test.com", Password: "x", Role: models.RoleUser, Active: true}
	require.NoError(t, pool.DB.Create(&user).Error)

	var count int64
	require.NoError(t, pool.DB.Model(&models.User{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	stats := pool.Stats()
	assert.NotContains(t, stats, "error")
	assert.Equal(t, 1, stats["max_open_connections"])
}

func TestDatabasePool_WithoutConnection(t *testing.T) {
	pool := &DatabasePool{}

	assert.Contains(t, pool.Stats(), "error")
	assert.Error(t, pool.Health())
	assert.Error(t, pool.AutoMigrate())
	assert.NoError(t, pool.Close())
}

func TestNewMongoDB_Defaults(t *testing.T) {
	m := NewMongoDB(config.MongoConfig{URL: "mongodb://localhost:27017", Database: "tasks"})
	assert.Equal(t, 10*time.Second, m.timeout)
	assert.Equal(t, "tasks", m.Name)
	assert.Error(t, m.Health(context.Background()))
	assert.NoError(t, m.Disconnect(context.Background()))
}

func TestMigrationFilesEmbedded(t *testing.T) {
	entries, err := migrationFS.ReadDir("migrations")
	require.NoError(t, err)
	assert.Len(t, entries, 6)
}
