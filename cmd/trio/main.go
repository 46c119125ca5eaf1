package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/pterm/pterm"

	"trio.game/internal/client"
	"trio.game/internal/config"
	"trio.game/internal/persistence/history"
	"trio.game/internal/persistence/journal"
	"trio.game/internal/protocol"
	"trio.game/internal/reconciler"
	"trio.game/internal/render/term"
	"trio.game/internal/transport/events"
	"trio.game/internal/transport/rest"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "history" {
		os.Exit(runHistory(os.Args[2:]))
	}
	os.Exit(run())
}

func run() int {
	var (
		cfgPath  = flag.String("config", "", "yaml config file (optional)")
		server   = flag.String("server", "", "game server base url")
		game     = flag.String("game", "", "game id")
		user     = flag.String("user", "", "user id (empty for an anonymous session)")
		token    = flag.String("token", "", "bearer token")
		journalD = flag.String("journal", "", "journal dir (overrides config)")
		histDB   = flag.String("history", "", "history sqlite path (overrides config)")
		validate = flag.Bool("validate", false, "validate every frame against the wire schemas")
		verbose  = flag.Bool("v", false, "log to stderr")
	)
	flag.Parse()

	cfg, err := config.Load(*cfgPath)
	if err != nil {
		pterm.Error.Printfln("config: %v", err)
		return 2
	}
	applyFlags(&cfg, *server, *game, *user, *token, *journalD, *histDB, *validate)
	if err := cfg.Validate(); err != nil {
		pterm.Error.Printfln("config: %v", err)
		return 2
	}

	logger := log.New(io.Discard, "", 0)
	if *verbose {
		logger = log.New(os.Stderr, "[trio] ", log.LstdFlags|log.Lmicroseconds)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := term.New(os.Stdout, cfg.Render.EffectDuration())
	sess, closers, err := open(cfg, out, logger)
	if err != nil {
		pterm.Error.Printfln("%v", err)
		return 1
	}
	defer func() {
		for _, c := range closers {
			c()
		}
	}()
	defer sess.Close()

	pterm.DefaultHeader.Println("Trio - game " + cfg.GameID)
	go repl(ctx, stop, os.Stdin, sess.Reconciler(), out)

	if err := sess.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		pterm.Error.Printfln("%v", err)
		return 1
	}
	return 0
}

func applyFlags(cfg *config.Config, server, game, user, token, journalDir, histDB string, validate bool) {
	if server != "" {
		cfg.ServerURL = server
	}
	if game != "" {
		cfg.GameID = game
	}
	if user != "" {
		cfg.UserID = user
	}
	if token != "" {
		cfg.AuthToken = token
	}
	if journalDir != "" {
		cfg.Journal.Dir = journalDir
	}
	if histDB != "" {
		cfg.History.DBPath = histDB
	}
	if validate {
		cfg.ValidateEvents = true
	}
	cfg.Normalize()
}

// open builds a session from cfg. The returned closers release the stores it opened.
func open(cfg config.Config, out reconciler.Renderer, logger *log.Logger) (*client.Session, []func(), error) {
	var closers []func()
	api, err := rest.New(rest.Config{
		ServerURL: cfg.ServerURL,
		GameID:    cfg.GameID,
		AuthToken: cfg.AuthToken,
		Timeout:   cfg.Transport.RequestTimeout(),
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, err
	}

	header := http.Header{}
	if cfg.AuthToken != "" {
		header.Set("Authorization", "Bearer "+cfg.AuthToken)
	}
	sc := client.Config{
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
		Renderer:     out,
		Logger:       logger,
		StallTimeout: cfg.Sequencer.StallTimeout(),
		Countdown:    cfg.Selection.CountdownSeconds,
	}

	// release undoes the opens above when a later step fails.
	release := func() {
		if sc.Journal != nil {
			_ = sc.Journal.Close()
		}
		for _, c := range closers {
			c()
		}
	}

	if cfg.Journal.Dir != "" {
		j, err := journal.NewWriter(cfg.Journal.Dir, cfg.GameID)
		if err != nil {
			return nil, nil, fmt.Errorf("journal: %w", err)
		}
		sc.Journal = j
		logger.Printf("journal session %s in %s", j.Session(), cfg.Journal.Dir)
	}
	if cfg.History.DBPath != "" {
		h, err := history.Open(cfg.History.DBPath)
		if err != nil {
			release()
			return nil, nil, fmt.Errorf("history: %w", err)
		}
		sc.History = h
		closers = append(closers, func() { _ = h.Close() })
	}
	if cfg.ValidateEvents {
		v, err := protocol.NewValidator()
		if err != nil {
			release()
			return nil, nil, err
		}
		sc.Validator = v
	}

	sess, err := client.New(sc)
	if err != nil {
		release()
		return nil, nil, err
	}
	return sess, closers, nil
}
