package main

import (
	"context"
	"log"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/client/cli"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/client/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	app, err := cli.NewApp(cfg)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app.Run(ctx)

}
