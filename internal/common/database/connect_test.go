package database

import (
	"context"
	"errors"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visa-portal/internal/common/config"
)

type fakeConn struct {
	pingErr error
	closed  bool
}

func (f *fakeConn) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeConn) Close() error {
	f.closed = true
	return nil
}

func TestConnect(t *testing.T) {
	t.Run("failed ping closes the client", func(t *testing.T) {
		fc := &fakeConn{pingErr: errors.New("connection refused")}
		got, err := connect(context.Background(), func() (*fakeConn, error) { return fc, nil })
		require.Error(t, err)
		assert.Nil(t, got)
		assert.True(t, fc.closed)
	})

	t.Run("healthy client stays open", func(t *testing.T) {
		fc := &fakeConn{}
		got, err := connect(context.Background(), func() (*fakeConn, error) { return fc, nil })
		require.NoError(t, err)
		assert.Same(t, fc, got)
		assert.False(t, fc.closed)
	})

	t.Run("open error is returned as is", func(t *testing.T) {
		openErr := errors.New("bad dsn")
		_, err := connect(context.Background(), func() (*fakeConn, error) { return nil, openErr })
		assert.ErrorIs(t, err, openErr)
	})
}

func TestConnectRedis(t *testing.T) {
	mr := miniredis.RunT(t)

	rc, err := ConnectRedis(context.Background(), config.RedisConfig{Address: mr.Addr()})
	require.NoError(t, err)
	assert.NoError(t, rc.Close())

	addr := mr.Addr()
	mr.Close()
	_, err = ConnectRedis(context.Background(), config.RedisConfig{Address: addr})
	assert.Error(t, err)
}

func TestElasticsearchClose(t *testing.T) {
	ec, err := NewElasticsearch(config.ElasticsearchConfig{URL: "http://127.0.0.1:9200"})
	require.NoError(t, err)
	assert.NoError(t, ec.Close())
}
