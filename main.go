package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/pizzanight/server/auth"
	"github.com/pizzanight/server/cliparse"
	"github.com/pizzanight/server/cloudmirror"
	"github.com/pizzanight/server/localstore"
	"github.com/pizzanight/server/p2p"
	"github.com/pizzanight/server/router"
	"github.com/pizzanight/server/session"
)

func main() {
	// .env is a dev convenience; absence is fine
	_ = godotenv.Load()

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Open the local store
	store, err := localstore.Open(cfg.DataPath)
	if err != nil {
		slog.Error("local store open failed", "error", err)
		os.Exit(1)
	}
	defer store.Close()

	if repaired, err := store.ScanAndRepair(); err != nil {
		slog.Warn("backup scan failed", "error", err)
	} else if len(repaired) > 0 {
		slog.Warn("removed corrupt backup rows", "keys", repaired)
	}

	// Connect the cloud mirror when configured
	var mirror *cloudmirror.Mirror
	if cfg.MirrorURL != "" {
		mirror, err = cloudmirror.New(ctx, cfg.MirrorURL, slog.Default())
		if err != nil {
			slog.Warn("cloud mirror unavailable, continuing without it", "error", err)
		} else {
			defer mirror.Close()
			mirror.EnsureSchema(ctx)
		}
	}

	// Join the sync transport
	room, err := p2p.DialRedisRoom(ctx, cfg.RedisURL, cfg.Room)
	if err != nil {
		slog.Error("sync transport connection failed", "error", err)
		os.Exit(1)
	}
	defer room.Close()

	// Build the session
	sess, err := session.New(ctx, session.Config{
		Room:     room,
		Store:    store,
		Mirror:   mirror,
		PeerID:   auth.NewPeerID(),
		Nickname: cfg.Nickname,
	})
	if err != nil {
		slog.Error("session setup failed", "error", err)
		os.Exit(1)
	}

	go func() {
		if err := sess.Run(ctx); err != nil {
			slog.Error("sync session stopped", "error", err)
			stop()
		}
	}()

	// Create server
	mux := router.NewRouter(sess, cfg)
	server := http.Server{
		Handler: mux,
		Addr:    ":" + strconv.Itoa(cfg.Port),
	}

	go func() {
		<-ctx.Done()
		server.Close()
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "room", cfg.Room, "nickname", cfg.Nickname)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}
