package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, "http://localhost:3000/api/v1", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.Equal(t, "/login", cfg.LoginPath)
	require.NoError(t, cfg.Validate())
}

func TestLoad(t *testing.T) {
	t.Run("empty path", func(t *testing.T) {
		cfg, err := Load("")
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "roomzy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("apiUrl: https://api.roomzy.cl/api/v1\ntimeout: 30s\ncache:\n  enabled: true\n"), 0600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, "https://api.roomzy.cl/api/v1", cfg.APIURL)
		assert.Equal(t, 30*time.Second, cfg.Timeout)
		assert.True(t, cfg.Cache.Enabled)
		assert.Equal(t, "/login", cfg.LoginPath)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.Error(t, err)
	})

	t.Run("bad yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "roomzy.yaml")
		require.NoError(t, os.WriteFile(path, []byte("timeout: ["), 0600))

		_, err := Load(path)
		require.Error(t, err)
	})
}

func TestApply(t *testing.T) {
	cfg := Default()
	cfg.Apply(Overrides{APIURL: "https://staging.roomzy.cl/api/v1", CacheDir: "/tmp/cache"})

	assert.Equal(t, "https://staging.roomzy.cl/api/v1", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.Timeout)
	assert.True(t, cfg.Cache.Enabled)

	client := cfg.Client()
	assert.Equal(t, "https://staging.roomzy.cl/api/v1", client.BaseURL)
	assert.Equal(t, "/tmp/cache", client.CacheDir)
	assert.True(t, client.EnableCache)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{"default", Default(), true},
		{"relative url", Config{APIURL: "/api/v1", Timeout: time.Second}, false},
		{"ftp url", Config{APIURL: "ftp://x/api", Timeout: time.Second}, false},
		{"zero timeout", Config{APIURL: "http://x/api"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok {
				require.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
