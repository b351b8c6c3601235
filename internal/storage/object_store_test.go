package storage

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"redesperanza/web/internal/config"
)

func TestPublicURLRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.StorageConfig
		want string
	}{
		{
			name: "derived from endpoint",
			cfg:  config.StorageConfig{Endpoint: "http://127.0.0.1:9000", Bucket: "case-images"},
			want: "http://127.0.0.1:9000/case-images/cases/1-a.jpg",
		},
		{
			name: "tls endpoint",
			cfg:  config.StorageConfig{Endpoint: "https://s3.example.com", Bucket: "case-images"},
			want: "https://s3.example.com/case-images/cases/1-a.jpg",
		},
		{
			name: "public base url",
			cfg:  config.StorageConfig{Endpoint: "minio:9000", Bucket: "case-images", PublicBaseURL: "https://cdn.example.com/"},
			want: "https://cdn.example.com/cases/1-a.jpg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store, err := NewObjectStore(tt.cfg)
			require.NoError(t, err)

			got := store.PublicURL("cases/1-a.jpg")
			assert.Equal(t, tt.want, got)

			key, ok := store.KeyFromURL(got)
			assert.True(t, ok)
			assert.Equal(t, "cases/1-a.jpg", key)

			_, ok = store.KeyFromURL("https://elsewhere.example/cases/1-a.jpg")
			assert.False(t, ok)
		})
	}
}
