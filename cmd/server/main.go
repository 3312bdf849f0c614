package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"darkmanor/pkg/server/auth"
	"darkmanor/pkg/server/config"
	"darkmanor/pkg/server/httpapi"
	"darkmanor/pkg/server/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	addr := flag.String("addr", cfg.Addr, "listen address")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database path")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	secret := []byte(cfg.JWTSecret)
	if len(secret) == 0 {
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			logger.Fatalf("generate jwt secret: %v", err)
		}
		secret = []byte(hex.EncodeToString(buf))
		logger.Printf("DARKMANOR_JWT_SECRET not set; sessions end when the server restarts")
	}

	st, err := store.Open(*dbPath)
	if err != nil {
		logger.Fatalf("open store: %v", err)
	}
	defer st.Close()

	authSvc := auth.New(st, auth.Config{
		Secret:        secret,
		TTL:           cfg.TokenTTL,
		BcryptCost:    cfg.BcryptCost,
		SecureCookies: cfg.SecureCookies,
	})
	api := httpapi.New(st, authSvc, cfg.CORSOrigins, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              *addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (db %s)", *addr, *dbPath)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}
