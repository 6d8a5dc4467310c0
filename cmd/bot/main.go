package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"

	"moevius/internal/adapters/discord"
	"moevius/internal/application"
	"moevius/internal/config"
	"moevius/internal/infrastructure/database"
	"moevius/internal/infrastructure/i18n"
	"moevius/internal/infrastructure/memory"
	"moevius/internal/lib/logger/sl"
	"moevius/internal/metrics"
	"moevius/internal/ports/output"
	pkgdiscord "moevius/pkg/discord"
	"moevius/pkg/tz"
)

const shutdownTimeout = 5 * time.Second

func main() {
	flags := pflag.NewFlagSet("moevius", pflag.ContinueOnError)
	envFile := flags.String("env-file", ".env", "path to an optional .env file")
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	cfg, err := config.Load(*envFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := setupLogger(cfg.Env)
	log.Info("starting moevius", slog.String("env", cfg.Env), slog.String("storage", cfg.StorageDriver))

	if err := run(cfg, log); err != nil {
		log.Error("moevius stopped with error", sl.Err(err))
		os.Exit(1)
	}
	log.Info("moevius stopped")
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	loc, err := tz.Load(cfg.Timezone)
	if err != nil {
		return err
	}

	eventRepo, attendanceRepo, closeStore, err := openStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	var sinks metrics.Fanout
	var metricsServer *http.Server
	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		sinks = append(sinks, metrics.NewPrometheusSink(reg, log))

		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
		metricsServer = &http.Server{
			Addr:              cfg.MetricsAddr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}
		go func() {
			log.Info("metrics server listening", slog.String("addr", cfg.MetricsAddr))
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("metrics server", sl.Err(err))
			}
		}()
	}
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		defer redisClient.Close()
		sinks = append(sinks, metrics.NewRedisSink(redisClient, log, loc, metrics.DefaultActivityRetention))
		log.Info("activity counters enabled", slog.String("redis", cfg.RedisAddr))
	}
	var sink metrics.Sink = metrics.NewNoopSink()
	if len(sinks) > 0 {
		sink = sinks
	}

	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return fmt.Errorf("create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	translator := i18n.NewTranslator(cfg.Locale, log)
	render := pkgdiscord.NewRenderer(translator, cfg.Locale, loc)
	notifier := discord.NewChannelNotifier(log, session, render, cfg.ChannelIDs(), cfg.GuildID)

	eventSvc := application.NewEventService(log, eventRepo, attendanceRepo, notifier, loc)
	attendanceSvc := application.NewAttendanceService(log, attendanceRepo, eventSvc, sink)
	confirmSvc := application.NewConfirmationService(log, eventSvc, sink, cfg.ConfirmTimeout)
	defer confirmSvc.Close()

	handler := discord.NewHandler(log, eventSvc, attendanceSvc, confirmSvc, render, loc, cfg.SuperUserIDs, cfg.SquadMemberIDs)
	confirmSvc.OnTimeout(handler.HandleDraftTimeout)

	scheduler := application.NewScheduler(application.SchedulerConfig{
		TickInterval: cfg.TickInterval,
		CatchUp:      cfg.CatchUp,
		Location:     loc,
	}, log, eventRepo, attendanceRepo, notifier, sink)
	schedulerDone := make(chan struct{})
	go func() {
		defer close(schedulerDone)
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Error("scheduler", sl.Err(err))
		}
	}()

	bot := discord.NewBot(log, session, cfg.GuildID, handler, render)
	botErr := bot.Start(ctx)
	stop()
	<-schedulerDone

	if metricsServer != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			log.Warn("metrics server shutdown", sl.Err(err))
		}
	}
	return botErr
}

func openStore(ctx context.Context, cfg *config.Config, log *slog.Logger) (output.EventRepository, output.AttendanceRepository, func(), error) {
	if cfg.StorageDriver == config.StorageMemory {
		log.Warn("using in-memory storage; events are lost on restart")
		store := memory.NewStore()
		return store.Events(), store.Attendance(), func() {}, nil
	}

	if err := database.RunMigrations(cfg.DatabaseURL, log); err != nil {
		return nil, nil, nil, err
	}
	pool, err := database.NewPool(ctx, cfg.DatabaseURL, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return database.NewEventRepository(pool), database.NewAttendanceRepository(pool), pool.Close, nil
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case config.EnvLocal:
		log = slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case config.EnvDev:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	default:
		log = slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}
