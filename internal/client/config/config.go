// Package config holds the settings of the veracity operator console.
package config

import "time"

// Config holds runtime settings for the operator console.
//
// Fields:
//   - ServerEndpointAddr: host:port of the veracity gRPC endpoint.
//   - OnlineCheckInterval: how often the console probes server reachability.
//   - RequestTimeout: deadline applied to every call.
//   - AccessToken: verifier token attached to verify calls, if already issued.
//   - TokenValidity: lifetime of tokens minted with the "token" command.
type Config struct {
	ServerEndpointAddr  string
	OnlineCheckInterval time.Duration
	RequestTimeout      time.Duration
	AccessToken         string
	TokenValidity       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "127.0.0.1:50051"
	c.OnlineCheckInterval = 3 * time.Second
	c.RequestTimeout = 30 * time.Second
	c.TokenValidity = time.Hour
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
