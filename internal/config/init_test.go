package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"APP_PORT", "DB_DRIVER", "FEED_PAGE_SIZE", "JWT_TTL", "DELETE_POLICY", "BATCH_SIZE", "FEED_SYNC_INTERVAL"} {
		t.Setenv(key, "")
	}
	t.Setenv("DB_DSN", "file:test.db")
	t.Setenv("JWT_SECRET", "s3cret")

	s := Load()
	assert.Equal(t, "8080", s.Port)
	assert.Equal(t, "mysql", s.DBDriver)
	assert.Equal(t, 20, s.FeedPageSize)
	assert.Equal(t, 100, s.BatchSize)
	assert.Equal(t, 5*time.Minute, s.FeedSync)
	assert.Equal(t, 24*time.Hour, s.JWTTTL)
	assert.Equal(t, "author", s.DeletePolicy)
	require.NoError(t, s.Validate())
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("DB_DRIVER", "Postgres")
	t.Setenv("FEED_PAGE_SIZE", "5")
	t.Setenv("JWT_TTL", "90m")
	t.Setenv("REDIS_DB", "not-a-number")
	t.Setenv("FEED_SYNC_INTERVAL", "30s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, ,http://b.test")

	s := Load()
	assert.Equal(t, "postgres", s.DBDriver)
	assert.Equal(t, 5, s.FeedPageSize)
	assert.Equal(t, 90*time.Minute, s.JWTTTL)
	assert.Equal(t, 0, s.RedisDB)
	assert.Equal(t, 30*time.Second, s.FeedSync)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, s.CORSOrigins)
}

func TestValidateReportsEveryProblem(t *testing.T) {
	s := &Settings{DBDriver: "oracle", DeletePolicy: "nobody", FeedPageSize: 20}

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DB_DSN is not set")
	assert.Contains(t, err.Error(), `DB_DRIVER "oracle" is not supported`)
	assert.Contains(t, err.Error(), "JWT_SECRET is not set")
	assert.Contains(t, err.Error(), `DELETE_POLICY "nobody" is not supported`)
}

func TestMemoryDriverNeedsNoDSN(t *testing.T) {
	s := &Settings{DBDriver: "memory", JWTSecret: "x", DeletePolicy: "any", FeedPageSize: 20}
	assert.NoError(t, s.Validate())
}
