package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"sentenex/internal/app"
	"sentenex/internal/config"
	"sentenex/internal/logger"
)

func main() {
	cfgPath := os.Getenv("SENTENEX_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.toml"
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	application, err := app.NewApp(cfg)
	if err != nil {
		log.Fatalf("build app: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Infof("✓ config loaded (env=%s, addr=%s, backend=%s)", cfg.App.Env, cfg.App.HTTPAddr, cfg.Backend.APIURL)
	if err := application.Run(ctx); err != nil {
		log.Fatalf("run: %v", err)
	}
}
