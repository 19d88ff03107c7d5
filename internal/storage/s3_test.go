package storage

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appconfig "github.com/sirdesai22/recap-service/internal/config"
)

func newTestStore(t *testing.T, cfg appconfig.S3) *S3Store {
	t.Helper()
	cfg.AccessKey, cfg.SecretKey = "test", "test"
	s, err := NewS3Store(context.Background(), cfg, 0)
	require.NoError(t, err)
	return s
}

func TestNewS3Store_RequiresBucket(t *testing.T) {
	_, err := NewS3Store(context.Background(), appconfig.S3{}, 0)
	assert.Error(t, err)
}

func TestPublicURL(t *testing.T) {
	tests := []struct {
		name string
		cfg  appconfig.S3
		key  string
		want string
	}{
		{
			name: "aws default",
			cfg:  appconfig.S3{Bucket: "recaps", Region: "eu-west-1"},
			key:  "images/a.jpg",
			want: "https://recaps.s3.eu-west-1.amazonaws.com/images/a.jpg",
		},
		{
			name: "custom endpoint with prefix",
			cfg:  appconfig.S3{Bucket: "recaps", Endpoint: "http://localhost:9000/", Prefix: "site/"},
			key:  "/images/a.jpg",
			want: "http://localhost:9000/recaps/site/images/a.jpg",
		},
		{
			name: "public base url",
			cfg:  appconfig.S3{Bucket: "recaps", PublicBaseURL: "https://cdn.example.com/", Prefix: "site"},
			key:  "legacy/fair.docx",
			want: "https://cdn.example.com/site/legacy/fair.docx",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestStore(t, tt.cfg)
			got := s.PublicURL(tt.key)
			assert.Equal(t, tt.want, got)

			key, ok := s.KeyForURL(got)
			require.True(t, ok)
			assert.Equal(t, strings.TrimPrefix(tt.key, "/"), key)
		})
	}
}

func TestKeyForURL_Outside(t *testing.T) {
	s := newTestStore(t, appconfig.S3{Bucket: "recaps", PublicBaseURL: "https://cdn.example.com", Prefix: "site"})

	for _, u := range []string{
		"https://other.example.com/site/a.docx",
		"https://cdn.example.com/other/a.docx",
		"https://cdn.example.com/",
	} {
		_, ok := s.KeyForURL(u)
		assert.False(t, ok, u)
	}

	key, ok := s.KeyForURL("https://cdn.example.com/site/legacy/Fair%20Recap.docx?v=2")
	require.True(t, ok)
	assert.Equal(t, "legacy/Fair Recap.docx", key)
}

func TestUploadKey(t *testing.T) {
	key := UploadKey("recaps/123", "Photo.JPG")
	assert.True(t, strings.HasPrefix(key, "recaps/123/"))
	assert.True(t, strings.HasSuffix(key, ".jpg"))
	assert.NotEqual(t, key, UploadKey("recaps/123", "Photo.JPG"))
}
