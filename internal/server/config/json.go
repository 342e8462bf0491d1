package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/flagx"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/timex"
)

// JsonConfig is the on-disk shape of Config. Durations use timex.Duration,
// so both "30s" and integer nanoseconds are accepted.
type JsonConfig struct {
	EndpointAddrGRPC           string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP           string         `json:"endpoint_addr_http"`
	StoreDriver                string         `json:"store_driver"`
	DatabaseDSN                string         `json:"database_dsn"`
	ModelServerURL             string         `json:"model_server_url"`
	InferenceTimeout           timex.Duration `json:"inference_timeout"`
	InferenceRetries           uint64         `json:"inference_retries"`
	HazardLabels               []string       `json:"hazard_labels"`
	CorroborationRadiusKm      float64        `json:"corroboration_radius_km"`
	CorroborationThreshold     float64        `json:"corroboration_threshold"`
	CorroborationDivisor       float64        `json:"corroboration_divisor"`
	CorroborationLookback      timex.Duration `json:"corroboration_lookback"`
	CorroborationMaxCandidates int            `json:"corroboration_max_candidates"`
	IdempotentVerify           bool           `json:"idempotent_verify"`
	RejectDuplicateReports     bool           `json:"reject_duplicate_reports"`
	SecretKey                  string         `json:"secret_key"`
	RedisURL                   string         `json:"redis_url"`
	EmbeddingCacheTTL          timex.Duration `json:"embedding_cache_ttl"`
	NATSURL                    string         `json:"nats_url"`
	NATSSubjectPrefix          string         `json:"nats_subject_prefix"`
	S3RootUser                 string         `json:"s3_root_user"`
	S3RootPassword             string         `json:"s3_root_password"`
	S3Bucket                   string         `json:"s3_bucket"`
	S3Region                   string         `json:"s3_region"`
	S3BaseEndpoint             string         `json:"s3_base_endpoint"`
	OTLPEndpoint               string         `json:"otlp_endpoint"`
	LogLevel                   string         `json:"log_level"`
	ShutdownTimeout            timex.Duration `json:"shutdown_timeout"`
}

// parseJson overlays the JSON file named by -c/-config (or $VERACITY_CONFIG)
// onto config. Keys missing from the file keep their current value.
func parseJson(config *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := fromConfig(config)
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	c.apply(config)
	return nil
}

func fromConfig(c *Config) *JsonConfig {
	return &JsonConfig{
		EndpointAddrGRPC:           c.EndpointAddrGRPC,
		EndpointAddrHTTP:           c.EndpointAddrHTTP,
		StoreDriver:                c.StoreDriver,
		DatabaseDSN:                c.DatabaseDSN,
		ModelServerURL:             c.ModelServerURL,
		InferenceTimeout:           timex.Duration{Duration: c.InferenceTimeout},
		InferenceRetries:           c.InferenceRetries,
		HazardLabels:               c.HazardLabels,
		CorroborationRadiusKm:      c.CorroborationRadiusKm,
		CorroborationThreshold:     c.CorroborationThreshold,
		CorroborationDivisor:       c.CorroborationDivisor,
		CorroborationLookback:      timex.Duration{Duration: c.CorroborationLookback},
		CorroborationMaxCandidates: c.CorroborationMaxCandidates,
		IdempotentVerify:           c.IdempotentVerify,
		RejectDuplicateReports:     c.RejectDuplicateReports,
		SecretKey:                  c.SecretKey,
		RedisURL:                   c.RedisURL,
		EmbeddingCacheTTL:          timex.Duration{Duration: c.EmbeddingCacheTTL},
		NATSURL:                    c.NATSURL,
		NATSSubjectPrefix:          c.NATSSubjectPrefix,
		S3RootUser:                 c.S3RootUser,
		S3RootPassword:             c.S3RootPassword,
		S3Bucket:                   c.S3Bucket,
		S3Region:                   c.S3Region,
		S3BaseEndpoint:             c.S3BaseEndpoint,
		OTLPEndpoint:               c.OTLPEndpoint,
		LogLevel:                   c.LogLevel,
		ShutdownTimeout:            timex.Duration{Duration: c.ShutdownTimeout},
	}
}

func (j *JsonConfig) apply(c *Config) {
	c.EndpointAddrGRPC = j.EndpointAddrGRPC
	c.EndpointAddrHTTP = j.EndpointAddrHTTP
	c.StoreDriver = j.StoreDriver
	c.DatabaseDSN = j.DatabaseDSN
	c.ModelServerURL = j.ModelServerURL
	c.InferenceTimeout = j.InferenceTimeout.Duration
	c.InferenceRetries = j.InferenceRetries
	c.HazardLabels = j.HazardLabels
	c.CorroborationRadiusKm = j.CorroborationRadiusKm
	c.CorroborationThreshold = j.CorroborationThreshold
	c.CorroborationDivisor = j.CorroborationDivisor
	c.CorroborationLookback = j.CorroborationLookback.Duration
	c.CorroborationMaxCandidates = j.CorroborationMaxCandidates
	c.IdempotentVerify = j.IdempotentVerify
	c.RejectDuplicateReports = j.RejectDuplicateReports
	c.SecretKey = j.SecretKey
	c.RedisURL = j.RedisURL
	c.EmbeddingCacheTTL = j.EmbeddingCacheTTL.Duration
	c.NATSURL = j.NATSURL
	c.NATSSubjectPrefix = j.NATSSubjectPrefix
	c.S3RootUser = j.S3RootUser
	c.S3RootPassword = j.S3RootPassword
	c.S3Bucket = j.S3Bucket
	c.S3Region = j.S3Region
	c.S3BaseEndpoint = j.S3BaseEndpoint
	c.OTLPEndpoint = j.OTLPEndpoint
	c.LogLevel = j.LogLevel
	c.ShutdownTimeout = j.ShutdownTimeout.Duration
}
