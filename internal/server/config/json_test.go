package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/flagx"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":       "www.example:9000",
		"store_driver":             "postgres",
		"database_dsn":             "postgres://x",
		"inference_timeout":        "5s",
		"hazard_labels":            []string{"Flooding", "Other"},
		"corroboration_threshold":  0.8,
		"corroboration_lookback":   float64(time.Hour),
		"idempotent_verify":        false,
		"reject_duplicate_reports": true,
		"redis_url":                "redis://cache:6379/1",
		"embedding_cache_ttl":      "2h",
		"s3_bucket":                "bucket",
	})

	t.Run("loads from json over defaults", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
		assert.Equal(t, "postgres", cfg.StoreDriver)
		assert.Equal(t, "postgres://x", cfg.DatabaseDSN)
		assert.Equal(t, 5*time.Second, cfg.InferenceTimeout)
		assert.Equal(t, []string{"Flooding", "Other"}, cfg.HazardLabels)
		assert.Equal(t, 0.8, cfg.CorroborationThreshold)
		assert.Equal(t, time.Hour, cfg.CorroborationLookback)
		assert.False(t, cfg.IdempotentVerify)
		assert.True(t, cfg.RejectDuplicateReports)
		assert.Equal(t, "redis://cache:6379/1", cfg.RedisURL)
		assert.Equal(t, 2*time.Hour, cfg.EmbeddingCacheTTL)
		assert.Equal(t, "bucket", cfg.S3Bucket)

		// Keys absent from the file keep their defaults.
		assert.Equal(t, ":8000", cfg.EndpointAddrHTTP)
		assert.Equal(t, 5.0, cfg.CorroborationRadiusKm)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("env var is the fallback", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(flagx.ConfigEnvVar, pathFlag)

		cfg := &Config{}
		require.NoError(t, parseJson(cfg))
		assert.Equal(t, "www.example:9000", cfg.EndpointAddrGRPC)
	})

	t.Run("no config → no changes", func(t *testing.T) {
		os.Args = []string{"testbin"}
		t.Setenv(flagx.ConfigEnvVar, "")

		cfg := &Config{EndpointAddrGRPC: "defaults:1234", S3Bucket: "s3bucket"}
		require.NoError(t, parseJson(cfg))

		assert.Equal(t, "defaults:1234", cfg.EndpointAddrGRPC)
		assert.Equal(t, "s3bucket", cfg.S3Bucket)
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		assert.Error(t, parseJson(&Config{}))
	})
}
