package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestMustLoad_ValidConfig(t *testing.T) {
	configContent := `
env: test
client_http:
  api_base_url: "http://localhost:9090/api/v1"
  timeout: 20s
  rate_limit: 5
  rate_burst: 10
  login_route: "/login"
  cache_ttl: 30m
  use_redis: true
  redis_prefix: "vsclient:"
session_storage:
  session_file: "/tmp/session.json"
redis_connection:
  addressredis: "localhost:6379"
  password: "redis_pass"
  user: "redis_user"
  db: 1
  max_retries: 3
  dial_timeout: 5s
  timeoutredis: 10s
http_server:
  addresshttp: ":8080"
  timeouthttp: 30s
  idle_timeout: 60s
jwttoken:
  jwt_secret_key: "test_secret_key"
  token_ttl: 24h
`
	t.Setenv("CONFIG_PATH", writeConfig(t, configContent))

	cfg := MustLoad()

	assert.Equal(t, "test", cfg.Env)
	assert.Equal(t, "http://localhost:9090/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 20*time.Second, cfg.Timeout)
	assert.Equal(t, float64(5), cfg.RateLimit)
	assert.Equal(t, 10, cfg.RateBurst)
	assert.Equal(t, "/login", cfg.LoginRoute)
	assert.Equal(t, 30*time.Minute, cfg.CacheTTL)
	assert.True(t, cfg.UseRedis)
	assert.Equal(t, "vsclient:", cfg.RedisPrefix)
	assert.Equal(t, "/tmp/session.json", cfg.SessionFile)
	assert.Equal(t, "localhost:6379", cfg.AddressRedis)
	assert.Equal(t, "redis_pass", cfg.Password)
	assert.Equal(t, 1, cfg.DB)
	assert.Equal(t, 5*time.Second, cfg.DialTimeout)
	assert.Equal(t, ":8080", cfg.AddressHTTP)
	assert.Equal(t, 30*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, "test_secret_key", cfg.JWTSecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}

func TestMustLoad_DefaultValues(t *testing.T) {
	configContent := `
env: local
redis_connection:
  addressredis: "localhost:6379"
`
	t.Setenv("CONFIG_PATH", writeConfig(t, configContent))

	cfg := MustLoad()

	assert.Equal(t, "http://localhost:8080/api/v1", cfg.APIBaseURL)
	assert.Equal(t, 15*time.Second, cfg.Timeout)
	assert.Equal(t, "/login", cfg.LoginRoute)
	assert.Equal(t, time.Hour, cfg.CacheTTL)
	assert.False(t, cfg.UseRedis)
	assert.Equal(t, "query:", cfg.RedisPrefix)
	assert.Equal(t, ".session.json", cfg.SessionFile)
	assert.Equal(t, "localhost:8080", cfg.AddressHTTP)
	assert.Equal(t, 10*time.Second, cfg.TimeoutHTTP)
	assert.Equal(t, time.Minute, cfg.IdleTimeout)
	assert.Equal(t, "dev-secret", cfg.JWTSecretKey)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
}
