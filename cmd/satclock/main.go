package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wwood2025/Satellite-Clock/internal/config"
	"github.com/wwood2025/Satellite-Clock/internal/web"
)

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "./satclock.yaml", "Path to YAML config")
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Fatalf("config load failed: %v", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	rt, err := newRuntime(ctx, cfg)
	if err != nil {
		log.Fatalf("runtime init failed: %v", err)
	}
	defer rt.close()

	log.Printf("satclock starting")
	log.Printf("tick=%s zone=%s web=%s", cfg.Clock.TickInterval, rt.loc, cfg.Web.Listen)

	go func() {
		err := web.Serve(ctx, cfg.Web.Listen, rt.status, rt.alarms, rt.chimes, rt.hub, rt.met.Handler())
		if err != nil && ctx.Err() == nil {
			log.Printf("web server stopped: %v", err)
			cancel()
		}
	}()

	if err := rt.run(ctx); err != nil && ctx.Err() == nil {
		log.Printf("tick loop stopped: %v", err)
	}
	log.Printf("satclock stopping")
}
