package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	flags "github.com/jessevdk/go-flags"
	"github.com/joho/godotenv"

	"github.com/bf4stats/api/internal/config"
	"github.com/bf4stats/api/internal/handler"
	"github.com/bf4stats/api/internal/logging"
	"github.com/bf4stats/api/internal/service"
	"github.com/bf4stats/api/pkg/gametools"
)

type options struct {
	Config string `long:"config" env:"CONFIG_FILE" description:"Path to a YAML config file"`
	Addr   string `long:"addr" description:"Listen address, overrides config and ADDR"`
}

func main() {
	_ = godotenv.Load()
	logging.Setup()

	var opts options
	if _, err := flags.Parse(&opts); err != nil {
		var ferr *flags.Error
		if errors.As(err, &ferr) && ferr.Type == flags.ErrHelp {
			os.Exit(0)
		}
		os.Exit(2)
	}

	cfg, err := config.Load(opts.Config)
	if err != nil {
		logging.Fatal("failed to load config", "error", err)
	}
	if opts.Addr != "" {
		cfg.Addr = opts.Addr
	}

	client := gametools.NewClient(cfg.UpstreamBaseURL, cfg.UpstreamTimeout)
	playerService := service.NewPlayerService(client)

	h := handler.New(cfg.AllowedOrigins)
	playerHandler := handler.NewPlayerHandler(playerService)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.NewRouter(h, playerHandler),
		ReadHeaderTimeout: 10 * time.Second,
		// Leave room for a full upstream timeout before the write deadline.
		WriteTimeout: cfg.UpstreamTimeout + 5*time.Second,
	}

	go func() {
		slog.Info("server listening",
			"addr", server.Addr,
			"upstream", cfg.UpstreamBaseURL,
			"upstream_timeout", cfg.UpstreamTimeout.String(),
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Fatal("server error", "error", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		slog.Error("shutdown error", "error", err)
	}
}
