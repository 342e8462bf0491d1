package main

import (
	"context"
	"log"

	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server"
	"github.com/mohitexpo007/Ocean-Hazard-App/internal/server/config"
)

func main() {

	ctx := context.Background()
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Printf("config: %v", err)
		return
	}

	app, err := server.NewApp(ctx, cfg)
	if err != nil {
		log.Printf("%v", err)
		return
	}

	app.Run(ctx)

}
