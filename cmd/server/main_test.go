package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"task-manager/api/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func loadTestConfig(t *testing.T, env map[string]string) *config.Config {
	t.Helper()
	gin.SetMode(gin.TestMode)
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("DB_TYPE", "sqlite")
	t.Setenv("SQLITE_PATH", ":memory:")
	t.Setenv("DB_LOG_LEVEL", "silent")
	t.Setenv("BCRYPT_COST", "4")
	for k, v := range env {
		t.Setenv(k, v)
	}

	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	return cfg
}

func serve(app *application, method, path, body string) *httptest.ResponseRecorder {
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	app.router.ServeHTTP(w, req)
	return w
}

func TestApplicationStartupWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := loadTestConfig(t, map[string]string{
		"REDIS_HOST": mr.Host(),
		"REDIS_PORT": mr.Port(),
	})

	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer app.close()

	require.NotNil(t, app.worker)
	require.NotNil(t, app.queue)
	require.NotNil(t, app.limiter)

	assert.Equal(t, http.StatusOK, serve(app, "GET", "/api/health", "").Code)

	w := serve(app, "POST", "/api/auth/register", `{"name":"Alice","email":"alice@test.com","password":"secret123"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Contains(t, w.Body.String(), `"token"`)
}

func TestApplicationStartupWithoutRedis(t *testing.T) {
	cfg := loadTestConfig(t, map[string]string{
		"REDIS_ENABLED":      "false",
		"RATE_LIMIT_ENABLED": "false",
	})

	app, err := newApplication(context.Background(), cfg)
	require.NoError(t, err)
	defer app.close()

	assert.Nil(t, app.worker)
	assert.Nil(t, app.limiter)
	assert.Equal(t, http.StatusOK, serve(app, "GET", "/api/health/ready", "").Code)

	w := serve(app, "POST", "/api/auth/login", `{"email":"nobody@test.com","password":"secret123"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestProductionRequiresSecrets(t *testing.T) {
	t.Setenv("ENVIRONMENT", "production")
	t.Setenv("DB_TYPE", "postgres")
	t.Setenv("DB_PASSWORD", "")

	_, err := config.LoadConfig()
	assert.Error(t, err)

	t.Setenv("DB_PASSWORD", "pw")
	_, err = config.LoadConfig()
	assert.Error(t, err, "default JWT secret is rejected")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := config.LoadConfig()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())
}
