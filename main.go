package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leonelquinteros/gotext"

	"darkmanor/pkg/engine/loop"
	"darkmanor/pkg/game/api"
	"darkmanor/pkg/game/app"
	"darkmanor/pkg/game/config"
	"darkmanor/pkg/game/level"
	"darkmanor/pkg/game/renderer"
	ebitenrenderer "darkmanor/pkg/game/renderer/ebiten"
	"darkmanor/pkg/game/renderer/tui"
)

func initGettext(cfg *config.Config) {
	if cfg.LocaleDir == "" {
		return
	}
	gotext.Configure(cfg.LocaleDir, cfg.Language, "default")
}

func loadLayout(cfg *config.Config) *level.Layout {
	if cfg.LevelFile == "" {
		return level.Default()
	}
	layout, err := level.LoadFile(cfg.LevelFile)
	if err != nil {
		log.Fatalf("level %s: %v", cfg.LevelFile, err)
	}
	return layout
}

func main() {
	configPath := flag.String("config", config.DefaultPath(), "path to the client config file")
	apiURL := flag.String("api", "", "persistence server URL (overrides the config file)")
	rendererName := flag.String("renderer", "", "renderer to use: ebiten or tui (overrides the config file)")
	flag.Parse()

	logger := log.New(os.Stderr, "darkmanor: ", log.LstdFlags)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if *apiURL != "" {
		cfg.APIURL = *apiURL
	}
	if *rendererName != "" {
		cfg.Renderer = *rendererName
	}
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}
	cfg.ApplyBindings()
	initGettext(cfg)

	client, err := api.New(cfg.APIURL, api.WithTimeout(cfg.RequestTimeout))
	if err != nil {
		logger.Fatalf("api: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if h, err := client.WaitHealthy(ctx, 500*time.Millisecond, cfg.HealthWait); err != nil {
		logger.Printf("server at %s not healthy, continuing offline: %v", client.BaseURL(), err)
	} else {
		logger.Printf("server at %s: database %s", client.BaseURL(), h.DBStatus)
	}

	var r renderer.Renderer
	switch cfg.Renderer {
	case "tui":
		r = tui.New()
	default:
		r = ebitenrenderer.New(cfg.TileSize, cfg.SetTileSize, logger)
	}
	r.Init()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	game := app.New(app.Config{
		Layout:             loadLayout(cfg),
		Client:             client,
		Renderer:           r,
		Loop:               loop.New(ctx, 0),
		AutosavePeriod:     cfg.AutosavePeriod,
		PauseStopsAutosave: cfg.PauseStopsAutosave,
		GuestDelay:         cfg.GuestDelay,
		Log:                logger,
	})

	if cfg.Renderer == "tui" {
		// The terminal reader may block on a read; it is abandoned on exit.
		go func() {
			if err := r.Run(ctx); err != nil {
				logger.Printf("tui: %v", err)
			}
			cancel()
		}()
		if err := game.Run(ctx); err != nil {
			logger.Fatal(err)
		}
		return
	}

	// Ebiten must own the main goroutine.
	go func() {
		if err := game.Run(ctx); err != nil {
			logger.Print(err)
		}
		cancel()
	}()
	if err := r.Run(ctx); err != nil {
		logger.Fatal(err)
	}
}
