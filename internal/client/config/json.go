package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/flagx"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Durations use
// timex.Duration so JSON may carry "3s" or integer nanoseconds.
type JsonConfig struct {
	ServerEndpointAddr  string         `json:"server_endpoint_addr"`
	OnlineCheckInterval timex.Duration `json:"online_check_interval"`
	RequestTimeout      timex.Duration `json:"request_timeout"`
	AccessToken         string         `json:"access_token"`
	TokenValidity       timex.Duration `json:"token_validity"`
}

// parseJson overlays cfg with the JSON file named by -c/-config (or
// $VERACITY_CONFIG). Keys absent from the file keep their current value.
func parseJson(cfg *Config) error {
	path := flagx.ConfigPath()
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	jc := JsonConfig{
		ServerEndpointAddr:  cfg.ServerEndpointAddr,
		OnlineCheckInterval: timex.Duration{Duration: cfg.OnlineCheckInterval},
		RequestTimeout:      timex.Duration{Duration: cfg.RequestTimeout},
		AccessToken:         cfg.AccessToken,
		TokenValidity:       timex.Duration{Duration: cfg.TokenValidity},
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.OnlineCheckInterval = jc.OnlineCheckInterval.Duration
	cfg.RequestTimeout = jc.RequestTimeout.Duration
	cfg.AccessToken = jc.AccessToken
	cfg.TokenValidity = jc.TokenValidity.Duration
	return nil
}
