package main

import (
	"log"

	"cutquote-backend/internal/bootstrap"
	"cutquote-backend/internal/shared/config"
	"cutquote-backend/internal/shared/server"
	"cutquote-backend/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	app, err := bootstrap.Build(cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}

	addr := server.Addr(cfg.Port)
	telemetry.Info("server.start", map[string]any{
		"addr":         addr,
		"env":          cfg.Env,
		"object_store": cfg.ObjectStoreType,
		"model_loaded": app.PricingService.ModelLoaded(),
	})

	if err := app.Router.Run(addr); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
