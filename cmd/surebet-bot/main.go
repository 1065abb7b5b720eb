package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/Vodeneev/surebetbot/internal/calculator/calculator"
	"github.com/Vodeneev/surebetbot/internal/feed"
	"github.com/Vodeneev/surebetbot/internal/pkg/config"
	"github.com/Vodeneev/surebetbot/internal/pkg/health"
	"github.com/Vodeneev/surebetbot/internal/pkg/health/handlers"
	"github.com/Vodeneev/surebetbot/internal/pkg/logging"
	"github.com/Vodeneev/surebetbot/internal/pkg/metrics"
	"github.com/Vodeneev/surebetbot/internal/pkg/storage"
	"github.com/Vodeneev/surebetbot/internal/pkg/telegram"
)

const (
	defaultConfigPath = "configs/example.yaml"
	serviceName       = "surebet-bot"
)

func main() {
	fmt.Println("Starting Surebet Bot...")

	var configPath string
	var healthAddr string

	// .env is optional; real environment variables win
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: failed to load .env: %v", err)
	}

	defaultConfig := os.Getenv("CONFIG_PATH")
	if defaultConfig == "" {
		defaultConfig = defaultConfigPath
	}

	flag.StringVar(&configPath, "config", defaultConfig, "Path to config file (can be set via CONFIG_PATH env var)")
	flag.StringVar(&healthAddr, "health-addr", "", "Health server listen address, overrides health.addr (e.g. :8080)")
	flag.Parse()

	fmt.Printf("Loading config from: %s\n", configPath)

	store, err := config.NewStore(configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg := store.Snapshot()

	_, closeLog, err := logging.SetupLogger(&cfg.Logging, serviceName)
	if err != nil {
		log.Fatalf("Failed to setup logging: %v", err)
	}
	defer func() { _ = closeLog() }()
	slog.Info("Config loaded", "path", configPath, "feeds", len(cfg.Feeds))

	if err := calculator.NewRouter(cfg.Routing).Validate(); err != nil {
		slog.Warn("Routing thresholds leave a gap", "detail", err)
	}

	checks := map[string]handlers.Check{}

	var deps feed.Deps
	if cfg.NeedsPostgres() {
		pg, err := storage.NewPostgresOfferStorage(cfg.Postgres.DSN)
		if err != nil {
			log.Fatalf("Failed to initialize PostgreSQL storage: %v", err)
		}
		defer pg.Close()
		deps.Offers = pg
		checks["postgres"] = pg.Ping
	}

	var seen storage.SeenStore = storage.NewMemorySeenStore()
	if cfg.Redis.Enabled {
		rs, err := storage.NewRedisSeenStore(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			log.Fatalf("Failed to connect to Redis: %v", err)
		}
		seen = rs
		checks["redis"] = rs.Ping
		slog.Info("Using Redis seen store", "addr", cfg.Redis.Addr)
	}
	defer seen.Close()
	deps.Seen = seen

	sources, err := feed.NewSources(cfg.Feeds, cfg.Browser, deps)
	if err != nil {
		log.Fatalf("Failed to build feeds: %v", err)
	}
	if len(sources) < 2 {
		slog.Warn("Fewer than two feeds configured, no surebets can be detected", "feeds", len(sources))
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	collector, err := metrics.NewCollector(reg)
	if err != nil {
		log.Fatalf("Failed to register metrics: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		slog.Info("Received shutdown signal, stopping surebet bot...")
		cancel()
	}()

	opts := []calculator.Option{
		calculator.WithSeenStore(seen),
		calculator.WithMetrics(collector),
	}

	var bot *telegramBot
	if cfg.Telegram.Enabled {
		bot, err = newTelegramBot(cfg.Telegram)
		if err != nil {
			log.Fatalf("Failed to start Telegram: %v", err)
		}
		defer bot.notifier.Close()
		opts = append(opts, calculator.WithNotifier(bot.notifier))
	} else {
		slog.Info("Telegram disabled, surebets are only logged and served over HTTP")
	}

	service := calculator.NewService(store, sources, opts...)

	if bot != nil {
		telegram.NewCommandListener(bot.api, store, service, bot.notifier).ListenForCommands(ctx)
		slog.Info("Telegram command listener started")
	}

	if healthAddr == "" {
		healthAddr = cfg.Health.Addr
	}
	router := health.NewRouter(reg, checks, func(r chi.Router) { service.RegisterHTTP(r) })
	health.Run(ctx, healthAddr, serviceName, router, 5*time.Second)

	slog.Info("Starting scanner...")
	if err := service.Start(ctx); err != nil {
		slog.Error("Scanner failed", "error", err)
		log.Fatalf("Scanner failed: %v", err)
	}

	slog.Info("Surebet bot stopped")
}
