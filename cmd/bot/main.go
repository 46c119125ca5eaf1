package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"trio.game/internal/bot"
	"trio.game/internal/client"
	"trio.game/internal/config"
	"trio.game/internal/reconciler"
	"trio.game/internal/render/headless"
	"trio.game/internal/transport/events"
	"trio.game/internal/transport/rest"
)

func main() {
	var (
		cfgPath = flag.String("config", "", "yaml config file (optional)")
		server  = flag.String("server", "", "game server base url")
		game    = flag.String("game", "", "game id")
		user    = flag.String("user", "bot", "user id of the bot")
		token   = flag.String("token", "", "bearer token")
		think   = flag.Duration("think", 300*time.Millisecond, "delay before every move")
		lobby   = flag.Bool("lobby", false, "also join, start and restart games")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[bot] ", log.LstdFlags|log.Lmicroseconds)

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		logger.Fatalf("config: %v", err)
	}
	if *server != "" {
		cfg.ServerURL = *server
	}
	if *game != "" {
		cfg.GameID = *game
	}
	if *token != "" {
		cfg.AuthToken = *token
	}
	cfg.UserID = *user
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		logger.Fatalf("config: %v", err)
	}

	api, err := rest.New(rest.Config{
		ServerURL: cfg.ServerURL,
		GameID:    cfg.GameID,
		AuthToken: cfg.AuthToken,
		Timeout:   cfg.Transport.RequestTimeout(),
		Logger:    logger,
	})
	if err != nil {
		logger.Fatalf("api: %v", err)
	}
	header := http.Header{}
	if cfg.AuthToken != "" {
		header.Set("Authorization", "Bearer "+cfg.AuthToken)
	}

	player := bot.New(bot.Config{Think: *think, Lobby: *lobby, Logger: logger})
	sess, err := client.New(client.Config{
		Viewer: reconciler.Viewer{UserID: cfg.UserID, GameID: cfg.GameID},
		Stream: events.Config{
			URL:              cfg.EventsURL(),
			Header:           header,
			HandshakeTimeout: cfg.Transport.HandshakeTimeout(),
			ReadTimeout:      cfg.Transport.ReadTimeout(),
			MaxBackoff:       cfg.Transport.MaxBackoff(),
		},
		Sender:       api,
		Fetcher:      api,
		Renderer:     player.Wrap(headless.New(headless.WithLogger(logger))),
		Logger:       logger,
		StallTimeout: cfg.Sequencer.StallTimeout(),
		Countdown:    cfg.Selection.CountdownSeconds,
	})
	if err != nil {
		logger.Fatalf("session: %v", err)
	}
	player.Attach(sess.Reconciler())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go player.Run(ctx)

	logger.Printf("playing game %s as %s", cfg.GameID, cfg.UserID)
	err = sess.Run(ctx)
	sess.Close()
	if err != nil {
		logger.Fatalf("stopped: %v", err)
	}
}
