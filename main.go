package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/debemdeboas/the-notes/internal/config"
	"github.com/debemdeboas/the-notes/internal/db"
	"github.com/debemdeboas/the-notes/internal/logger"
	"github.com/debemdeboas/the-notes/internal/notes"
	"github.com/debemdeboas/the-notes/internal/session"
	"github.com/debemdeboas/the-notes/internal/store"
	"github.com/debemdeboas/the-notes/internal/web"
)

const shutdownTimeout = 10 * time.Second

func setLoggers(l zerolog.Logger) {
	config.SetLogger(l.With().Str("component", "config").Logger())
	db.SetLogger(l.With().Str("component", "db").Logger())
	store.SetLogger(l.With().Str("component", "store").Logger())
	notes.SetLogger(l.With().Str("component", "notes").Logger())
	session.SetLogger(l.With().Str("component", "session").Logger())
	web.SetLogger(l.With().Str("component", "web").Logger())
}

// sweepInterval checks for idle sessions a dozen times per idle period, but
// not more than once a minute.
func sweepInterval(idle time.Duration) time.Duration {
	interval := idle / 12
	if interval < time.Minute {
		interval = time.Minute
	}
	return interval
}

// app is everything the server needs once configuration is loaded.
type app struct {
	store    store.NoteStore
	sessions *session.Registry
	handler  http.Handler
}

func newApp(ctx context.Context, creds config.StoreCredentials, cfg *config.Config) (*app, error) {
	noteStore, err := store.New(ctx, creds, cfg.Store)
	if err != nil {
		return nil, err
	}

	sessions := session.NewRegistry(noteStore)
	srv, err := web.NewServer(sessions, cfg)
	if err != nil {
		if c, ok := noteStore.(store.Closer); ok {
			c.Close()
		}
		return nil, err
	}

	return &app{
		store:    noteStore,
		sessions: sessions,
		handler:  srv.Handler(),
	}, nil
}

func (a *app) Close() error {
	if c, ok := a.store.(store.Closer); ok {
		return c.Close()
	}
	return nil
}

func main() {
	bootLogger := logger.New("info")
	setLoggers(bootLogger)

	config.LoadEnv()
	if err := config.LoadConfig(config.ConfigPath()); err != nil {
		bootLogger.Fatal().Err(err).Msgf(config.ErrLoadConfigFmt, err)
	}
	cfg := config.AppConfig

	log := logger.NewWithFormat(cfg.Logging.Level, cfg.Logging.Format, os.Stderr)
	setLoggers(log)

	creds, err := config.LoadStoreCredentials()
	if err != nil {
		log.Fatal().Err(err).Msg("Cannot start without note store credentials")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, creds, cfg)
	if err != nil {
		log.Fatal().Err(err).Msgf(config.ErrInitializeStoreFmt, err)
	}
	defer a.Close()

	go a.sessions.Run(ctx, sweepInterval(cfg.Session.IdleTimeout), cfg.Session.IdleTimeout)

	addr := net.JoinHostPort(cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:              addr,
		Handler:           a.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Error shutting down server")
		}
	}()

	log.Info().Str("addr", addr).Str("store", storeKind(creds.URL)).Msg("Server listening")
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("Server stopped")
		return
	}
	log.Info().Msg("Server stopped")
}

// storeKind names the backend without logging the endpoint itself.
func storeKind(url string) string {
	if scheme, _, ok := strings.Cut(url, "://"); ok {
		return scheme
	}
	return "unknown"
}
