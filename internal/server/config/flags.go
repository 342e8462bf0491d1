package config

import (
	"flag"
	"os"
	"strings"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/flagx"
)

// knownFlags lists every flag parseFlags owns. Bool flags should be given in
// the -name=value form.
var knownFlags = []string{
	"-a", "-http", "-store", "-d", "-model-url", "-retries", "-labels",
	"-radius", "-lookback", "-idempotent-verify", "-reject-duplicates",
	"-s", "-redis", "-nats", "-u", "-p", "-b", "-g", "-e", "-otlp", "-log-level",
}

// parseFlags overlays command-line flags onto config.
//
//	-a string              gRPC bind address (":50051")
//	-http string           HTTP bind address (":8000")
//	-store string          store driver, memory or postgres
//	-d string              PostgreSQL DSN
//	-model-url string      model server base URL
//	-retries uint          inference retries
//	-labels string         comma separated hazard labels
//	-radius float          corroboration radius, km
//	-lookback duration     corroboration candidate window
//	-idempotent-verify     count a report's verification once
//	-reject-duplicates     reject analyze calls for known report ids
//	-s string              JWT HMAC secret for verifier tokens
//	-redis string          Redis URL for the embedding cache
//	-nats string           NATS URL for report events
//	-u / -p string         S3 access key / secret
//	-b / -g / -e string    S3 bucket / region / base endpoint
//	-otlp string           OTLP gRPC metrics endpoint
//	-log-level string      debug, info, warn or error
func parseFlags(config *Config) error {
	args := flagx.FilterArgs(os.Args[1:], knownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "gRPC address and port")
	fs.StringVar(&config.EndpointAddrHTTP, "http", config.EndpointAddrHTTP, "HTTP address and port")
	fs.StringVar(&config.StoreDriver, "store", config.StoreDriver, "store driver (memory|postgres)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.ModelServerURL, "model-url", config.ModelServerURL, "model server URL")
	fs.Uint64Var(&config.InferenceRetries, "retries", config.InferenceRetries, "inference retries")
	labels := fs.String("labels", strings.Join(config.HazardLabels, ","), "comma separated hazard labels")
	fs.Float64Var(&config.CorroborationRadiusKm, "radius", config.CorroborationRadiusKm, "corroboration radius in km")
	fs.DurationVar(&config.CorroborationLookback, "lookback", config.CorroborationLookback, "corroboration lookback window")
	fs.BoolVar(&config.IdempotentVerify, "idempotent-verify", config.IdempotentVerify, "count each report's verification once")
	fs.BoolVar(&config.RejectDuplicateReports, "reject-duplicates", config.RejectDuplicateReports, "reject duplicate report ids")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.StringVar(&config.RedisURL, "redis", config.RedisURL, "redis URL")
	fs.StringVar(&config.NATSURL, "nats", config.NATSURL, "NATS URL")
	fs.StringVar(&config.S3RootUser, "u", config.S3RootUser, "S3 access key")
	fs.StringVar(&config.S3RootPassword, "p", config.S3RootPassword, "S3 secret key")
	fs.StringVar(&config.S3Bucket, "b", config.S3Bucket, "S3 bucket")
	fs.StringVar(&config.S3Region, "g", config.S3Region, "S3 region")
	fs.StringVar(&config.S3BaseEndpoint, "e", config.S3BaseEndpoint, "S3 base endpoint")
	fs.StringVar(&config.OTLPEndpoint, "otlp", config.OTLPEndpoint, "OTLP metrics endpoint")
	fs.StringVar(&config.LogLevel, "log-level", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		return err
	}

	config.HazardLabels = splitLabels(*labels)
	return nil
}

func splitLabels(s string) []string {
	var out []string
	for _, l := range strings.Split(s, ",") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}
