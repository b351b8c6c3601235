package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/config"
)

func TestOptions(t *testing.T) {
	tests := []struct {
		name     string
		cfg      config.RedisConfig
		wantAddr string
		wantDB   int
		wantPass string
		wantPool int
		wantErr  bool
	}{
		{
			name:     "discrete fields",
			cfg:      config.RedisConfig{Addr: "cache:6379", Password: "pw", DB: 1},
			wantAddr: "cache:6379",
			wantDB:   1,
			wantPass: "pw",
		},
		{
			name:     "url wins",
			cfg:      config.RedisConfig{URL: "redis://:secret@redis.internal:6380/2", Addr: "ignored:1", PoolSize: 20},
			wantAddr: "redis.internal:6380",
			wantDB:   2,
			wantPass: "secret",
			wantPool: 20,
		},
		{
			name:    "bad url",
			cfg:     config.RedisConfig{URL: "http://redis.internal"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := Options(tt.cfg)
			if tt.wantErr {
				assert.ErrorContains(t, err, "redis url")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantAddr, opts.Addr)
			assert.Equal(t, tt.wantDB, opts.DB)
			assert.Equal(t, tt.wantPass, opts.Password)
			assert.Equal(t, tt.wantPool, opts.PoolSize)
		})
	}
}

func TestConnect(t *testing.T) {
	mr := miniredis.RunT(t)

	client, err := Connect(context.Background(), config.RedisConfig{URL: "redis://" + mr.Addr() + "/0"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	assert.NoError(t, Checker{Client: client}.Ping(context.Background()))

	mr.Close()
	assert.Error(t, Checker{Client: client}.Ping(context.Background()))
}

func TestConnectUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	_, err := Connect(context.Background(), config.RedisConfig{Addr: addr})
	assert.ErrorContains(t, err, "unreachable")
}
