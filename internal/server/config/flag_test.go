package config

import (
	"os"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected  *Config
		name      string
		args      []string
		expectErr bool
	}{
		{
			name: "all flags",
			args: []string{"cmd",
				"-a", "127.0.0.1:9090", "-http", ":8080", "-store", "postgres", "-d", "db",
				"-model-url", "http://models:9100", "-retries", "5", "-labels", "Flooding, Tsunami,,Other",
				"-radius", "2.5", "-lookback", "6h", "-idempotent-verify=false", "-reject-duplicates=true",
				"-s", "secret", "-redis", "redis://r:6379/0", "-nats", "nats://n:4222",
				"-u", "user", "-p", "password", "-b", "bucket", "-g", "us-west-1", "-e", "http://endpoint",
				"-otlp", "otel:4317", "-log-level", "debug",
			},
			expected: &Config{
				EndpointAddrGRPC:       "127.0.0.1:9090",
				EndpointAddrHTTP:       ":8080",
				StoreDriver:            "postgres",
				DatabaseDSN:            "db",
				ModelServerURL:         "http://models:9100",
				InferenceRetries:       5,
				HazardLabels:           []string{"Flooding", "Tsunami", "Other"},
				CorroborationRadiusKm:  2.5,
				CorroborationLookback:  6 * time.Hour,
				IdempotentVerify:       false,
				RejectDuplicateReports: true,
				SecretKey:              "secret",
				RedisURL:               "redis://r:6379/0",
				NATSURL:                "nats://n:4222",
				S3RootUser:             "user",
				S3RootPassword:         "password",
				S3Bucket:               "bucket",
				S3Region:               "us-west-1",
				S3BaseEndpoint:         "http://endpoint",
				OTLPEndpoint:           "otel:4317",
				LogLevel:               "debug",
			},
		},
		{
			name:     "foreign flags are ignored",
			args:     []string{"cmd", "-c", "cfg.json", "-unknown", "x", "-a", ":1"},
			expected: &Config{EndpointAddrGRPC: ":1"},
		},
		{
			name:      "bad number",
			args:      []string{"cmd", "-retries", "many"},
			expectErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			origArgs := os.Args
			t.Cleanup(func() { os.Args = origArgs })
			os.Args = tt.args

			config := &Config{}
			err := parseFlags(config)
			if tt.expectErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestSplitLabels(t *testing.T) {
	assert.Nil(t, splitLabels(""))
	assert.Equal(t, []string{"High Waves", "Other"}, splitLabels(" High Waves ,Other,"))
}
