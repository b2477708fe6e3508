package database

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/config"
)

func TestRedisOptions(t *testing.T) {
	opts, err := RedisOptions(&config.Config{RedisURL: "redis://:pw@cache:6380/2"})
	require.NoError(t, err)
	assert.Equal(t, "cache:6380", opts.Addr)
	assert.Equal(t, "pw", opts.Password)
	assert.Equal(t, 2, opts.DB)

	opts, err = RedisOptions(&config.Config{RedisHost: "localhost", RedisDB: 1})
	require.NoError(t, err)
	assert.Equal(t, "localhost:6379", opts.Addr)
	assert.Equal(t, 1, opts.DB)

	_, err = RedisOptions(&config.Config{})
	assert.ErrorIs(t, err, ErrRedisNotConfigured)

	_, err = RedisOptions(&config.Config{RedisURL: "http://not-redis"})
	assert.Error(t, err)
}

func TestNewRedisClientUnreachable(t *testing.T) {
	_, err := NewRedisClient(context.Background(), &config.Config{RedisHost: "127.0.0.1", RedisPort: "1"})
	assert.Error(t, err)
}
