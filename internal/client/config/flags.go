package config

import (
	"flag"
	"os"
	"time"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags:
//
//	-a string   address and port of the veracity server
//	-i int      online check interval in seconds
//	-t string   verifier access token
//
// os.Args is filtered with flagx.FilterArgs so flags owned by other
// consumers (e.g. -c) do not abort parsing.
func parseFlags(cfg *Config) error {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-i", "-t"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerEndpointAddr, "a", cfg.ServerEndpointAddr, "address and port to access server")
	onlineCheckInterval := fs.Int("i", int(cfg.OnlineCheckInterval.Seconds()), "online check interval (in seconds)")
	fs.StringVar(&cfg.AccessToken, "t", cfg.AccessToken, "verifier access token")

	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg.OnlineCheckInterval = time.Duration(*onlineCheckInterval) * time.Second
	return nil
}
