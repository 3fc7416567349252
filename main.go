// Command vidify is the main entrypoint for the media relay bot.
// It:
//   - Loads configuration and initializes structured logging.
//   - Connects the Telegram bot and starts long polling.
//   - Starts the artifact sweeper and a minimal HTTP server with /healthz
//     and /metrics.
//
// Shutdown is graceful on SIGINT/SIGTERM or the owner's /shutdown command.
// The owner's /restart command exits with code 3 so a supervisor (systemd,
// docker restart policy) can bring the process back up.
package main

import (
	"context"
	"log/slog"
	"net/http"
	_ "net/http/pprof" //nolint:gosec // G108: pprof endpoints enabled only when ENABLE_PPROF=1
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mkrell/vidify/bot"
	"github.com/mkrell/vidify/config"
	"github.com/mkrell/vidify/relay"
	"github.com/mkrell/vidify/server"
	"github.com/mkrell/vidify/telemetry"
)

func main() {
	// Load .env file if present (local dev convenience only; production relies on real env)
	_ = godotenv.Load(".env")

	// Configure logging (level + format). Defaults: level=info, format=text.
	lvl := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	case "info", "":
		// keep default
	default:
		// unknown level -> keep info but note once using temporary logger
		tmp := slog.New(slog.NewTextHandler(os.Stdout, nil))
		tmp.Warn("unknown LOG_LEVEL, using info", slog.String("value", os.Getenv("LOG_LEVEL")))
	}
	format := strings.ToLower(os.Getenv("LOG_FORMAT")) // text | json
	var handler slog.Handler
	switch format {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: lvl})
	}
	slog.SetDefault(slog.New(handler))
	slog.Info("logger initialized", slog.String("level", lvl.String()), slog.String("format", map[bool]string{true: "json", false: "text"}[format == "json"]))

	// Config
	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}
	if err := cfg.ValidateBotReady(); err != nil {
		slog.Error("config invalid", slog.Any("err", err))
		os.Exit(1)
	}

	// Metrics / telemetry init
	telemetry.Init()

	// Initialize OpenTelemetry tracing (optional; requires OTEL_EXPORTER_OTLP_ENDPOINT)
	shutdownTracing, err := telemetry.InitTracing("vidify", "1.0.0")
	if err != nil {
		slog.Error("tracing initialization failed", slog.Any("err", err))
		os.Exit(1)
	}

	// Working directory for downloaded artifacts
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		slog.Error("failed to create data dir", slog.String("dir", cfg.DataDir), slog.Any("err", err))
		os.Exit(1)
	}

	// Root context with graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Telegram bot, relay pipeline, and sweeper
	b, err := bot.New(cfg)
	if err != nil {
		slog.Error("failed to connect telegram bot", slog.Any("err", err))
		os.Exit(1)
	}

	active := relay.NewActiveSet()
	pipeline := relay.NewPipeline(
		&relay.YTDLP{},
		b,
		relay.VideoConfig(cfg.DataDir, cfg.MaxFileBytes, cfg.YTDLPArgs),
		relay.AnimationConfig(cfg.DataDir, cfg.MaxFileBytes, cfg.YTDLPArgs),
		cfg.MaxConcurrentJobs,
		active,
	)
	b.AttachPipeline(pipeline)

	sweeper := &relay.Sweeper{
		Dir:      cfg.DataDir,
		Interval: cfg.SweepInterval,
		MaxAge:   cfg.SweepMaxAge,
		Active:   active,
	}
	go sweeper.Run(ctx)
	go b.Run(ctx)

	// Enable pprof profiling endpoints in debug mode (ENABLE_PPROF=1)
	if os.Getenv("ENABLE_PPROF") == "1" {
		pprofAddr := os.Getenv("PPROF_ADDR")
		if pprofAddr == "" {
			pprofAddr = "localhost:6060"
		}
		go func() {
			slog.Info("pprof profiling enabled", slog.String("addr", pprofAddr))
			// Use an http.Server with timeouts to satisfy G114 and avoid DoS risks
			srv := &http.Server{
				Addr:              pprofAddr,
				Handler:           nil, // default mux exposes /debug/pprof
				ReadHeaderTimeout: 5 * time.Second,
				ReadTimeout:       10 * time.Second,
				WriteTimeout:      10 * time.Second,
				IdleTimeout:       60 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil {
				slog.Error("pprof server error", slog.Any("err", err))
			}
		}()
	}

	// HTTP server (health/metrics)
	go func() {
		if err := server.Start(ctx, cfg.HTTPAddr); err != nil {
			slog.Error("http server exited with error", slog.Any("err", err))
		}
	}()

	// Block until shutdown signal or owner lifecycle command
	restart := false
	select {
	case <-ctx.Done():
		slog.Info("shutting down")
	case sig := <-b.Control():
		slog.Info("lifecycle command received", slog.String("signal", sig.String()))
		restart = sig == bot.SignalRestart
	}
	stop()
	shutdownTracing()
	if restart {
		slog.Info("exiting for supervisor restart")
		os.Exit(3)
	}
}
