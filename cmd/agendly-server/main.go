package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/robfig/cron/v3"
	"google.golang.org/api/option"

	"agendly/backend/internal/config"
	"agendly/backend/internal/docstore"
	firestoredriver "agendly/backend/internal/docstore/firestore"
	"agendly/backend/internal/docstore/memory"
	postgresdriver "agendly/backend/internal/docstore/postgres"
	"agendly/backend/internal/service/reminder"
	"agendly/backend/internal/service/scheduling"
	"agendly/backend/internal/store/document"
	"agendly/backend/internal/transport/httpapi"
	"agendly/backend/internal/weather"
)

func main() {
	_ = godotenv.Load()

	log := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})).With(
		slog.String("service", "agendly-server"),
	)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		log.Error("config load failed", slog.Any("err", err))
		os.Exit(1)
	}

	log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLogLevel(cfg.LogLevel)})).With(
		slog.String("service", "agendly-server"),
	)
	slog.SetDefault(log)

	log.Info("starting",
		slog.String("http_addr", cfg.HTTPAddr),
		slog.String("store_driver", cfg.StoreDriver),
		slog.String("log_level", cfg.LogLevel),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := openStore(ctx, cfg, log)
	if err != nil {
		log.Error("store connection failed", slog.Any("err", err), slog.String("store_driver", cfg.StoreDriver))
		os.Exit(1)
	}
	defer func() {
		if err := client.Close(); err != nil {
			log.Warn("store close failed", slog.Any("err", err))
		}
	}()

	categories := document.NewCategoryRepo(client)
	appointments := document.NewAppointmentRepo(client)
	agenda := scheduling.NewService(categories, appointments)

	var weatherClient *weather.Client
	if cfg.WeatherAPIKey != "" {
		weatherClient = weather.NewClient(weather.Config{
			APIKey:    cfg.WeatherAPIKey,
			BaseURL:   cfg.WeatherBaseURL,
			Lang:      cfg.WeatherLang,
			Timeout:   cfg.WeatherTimeout,
			CacheSize: cfg.WeatherCacheSize,
			CacheTTL:  cfg.WeatherCacheTTL,
		})
	} else {
		log.Warn("weather api key not configured; weather endpoint disabled")
	}

	var scheduler *cron.Cron
	if cfg.ReminderEnabled {
		scanner := reminder.NewScanner(appointments, log, cfg.ReminderLead)
		scheduler = cron.New()
		if _, err := scheduler.AddFunc(cfg.ReminderSchedule, func() { scanner.Run(ctx) }); err != nil {
			log.Error("reminder schedule invalid", slog.Any("err", err), slog.String("schedule", cfg.ReminderSchedule))
			os.Exit(1)
		}
		scheduler.Start()
		log.Info("reminder scanner scheduled",
			slog.String("schedule", cfg.ReminderSchedule),
			slog.Duration("lead", cfg.ReminderLead),
		)
	}

	server := httpapi.NewServer(categories, appointments, agenda, weatherClient, log)
	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: server.Router(),
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()

	log.Info("http server started", slog.String("http_addr", cfg.HTTPAddr))

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received")
		if scheduler != nil {
			<-scheduler.Stop().Done()
		}
		shutdown(log, httpServer, cfg.ShutdownTimeout)
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server stopped with error", slog.Any("err", err))
			os.Exit(1)
		}
	}
}

func openStore(ctx context.Context, cfg config.Config, log *slog.Logger) (docstore.Client, error) {
	switch cfg.StoreDriver {
	case "memory":
		return memory.New(), nil
	case "firestore":
		var opts []option.ClientOption
		if cfg.FirestoreCredFile != "" {
			opts = append(opts, option.WithCredentialsFile(cfg.FirestoreCredFile))
		}
		return firestoredriver.Open(ctx, cfg.FirestoreProject, opts...)
	case "postgres":
		log.Info("connecting to database", databaseLogArgs(cfg.DatabaseURL)...)
		client, err := postgresdriver.Open(cfg.DatabaseURL, postgresdriver.Options{
			Pool: postgresdriver.PoolConfig{
				MaxOpenConns:    cfg.DBMaxOpenConns,
				MaxIdleConns:    cfg.DBMaxIdleConns,
				ConnMaxLifetime: cfg.DBConnMaxLifetime,
				ConnMaxIdleTime: cfg.DBConnMaxIdleTime,
			},
			PollInterval: cfg.WatchPollInterval,
		})
		if err != nil {
			return nil, err
		}
		if err := client.EnsureSchema(ctx); err != nil {
			_ = client.Close()
			return nil, err
		}
		return client, nil
	default:
		return nil, errors.New("unknown store driver " + cfg.StoreDriver)
	}
}

func shutdown(log *slog.Logger, s *http.Server, timeout time.Duration) {
	log.Info("shutting down http server", slog.Duration("timeout", timeout))

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Warn("http graceful shutdown failed; forcing close", slog.Any("err", err))
		_ = s.Close()
		return
	}
	log.Info("http server stopped")
}

func parseLogLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func databaseLogArgs(databaseURL string) []any {
	u, err := url.Parse(databaseURL)
	if err != nil {
		return []any{slog.String("db_url", "invalid")}
	}
	name := strings.TrimPrefix(u.Path, "/")
	host := u.Hostname()
	port := u.Port()
	if port == "" {
		port = "default"
	}
	if host == "" {
		host = "unknown"
	}
	if name == "" {
		name = "unknown"
	}
	return []any{
		slog.String("db_host", host),
		slog.String("db_port", port),
		slog.String("db_name", name),
	}
}
