package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/memodb-io/assetbucket/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Disabled(t *testing.T) {
	rdb, err := New(&config.Config{})
	require.NoError(t, err)
	assert.Nil(t, rdb)
	assert.NoError(t, Close(rdb))
}

func TestNew_Miniredis(t *testing.T) {
	mr := miniredis.RunT(t)

	rdb, err := New(&config.Config{Redis: config.RedisCfg{Addr: mr.Addr(), PoolSize: 2}})
	require.NoError(t, err)
	require.NotNil(t, rdb)
	defer Close(rdb)

	require.NoError(t, rdb.Set(context.Background(), "k", "v", 0).Err())
	got, err := mr.Get("k")
	require.NoError(t, err)
	assert.Equal(t, "v", got)
}

func TestNew_Unreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := New(&config.Config{Redis: config.RedisCfg{Addr: addr}})
	assert.Error(t, err)
}
