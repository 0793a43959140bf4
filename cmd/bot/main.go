// Package main contains the entrypoint for the lounge bot application.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tgbot "github.com/go-telegram/bot"

	"github.com/dicelounge/loungebot/internal/bot"
	"github.com/dicelounge/loungebot/internal/bot/handlers"
	"github.com/dicelounge/loungebot/internal/bot/tasks"
	"github.com/dicelounge/loungebot/internal/config"
	"github.com/dicelounge/loungebot/internal/database"
	"github.com/dicelounge/loungebot/internal/logger"
	"github.com/dicelounge/loungebot/internal/menu"
	"github.com/dicelounge/loungebot/internal/notify"
	"github.com/dicelounge/loungebot/internal/tables"
	"github.com/dicelounge/loungebot/internal/telegram"
	"github.com/dicelounge/loungebot/internal/tracker"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes and starts all application components (config, logger,
// database, menu catalog, tracker, bot, scheduler), handles graceful
// shutdown, and returns an exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	// The audit log is best effort: without a database the bot still tracks
	// tables in memory.
	var store database.Store
	db, err := database.NewDB(cfg.Database.Path)
	if err != nil {
		log.Error("Failed to open database, audit logging disabled", "path", cfg.Database.Path, "error", err)
	} else {
		defer database.CloseDB(db)
		store = database.NewStore(db, log)
		if err := store.Ping(ctx); err != nil {
			log.Error("Database health check failed, audit logging disabled", "error", err)
			store = nil
		}
	}

	// A broken menu file disables order-taking but not game tracking.
	catalog, err := menu.Load(cfg.Menu.Path)
	if err != nil {
		log.Error("Failed to load menu catalog, order-taking disabled", "path", cfg.Menu.Path, "error", err)
		catalog = nil
	}

	registry := tables.NewRegistry(cfg.Tables.Count, cfg.Tables.Specials)

	var items tracker.ItemChecker
	if catalog != nil {
		items = catalog
	}
	trk := tracker.New(log, items)

	notifier := notify.NewNotifier(cfg.Telegram.ChannelID, log)

	hDeps := handlers.HandlerDeps{
		Logger:   log,
		Config:   cfg,
		Tracker:  trk,
		Catalog:  catalog,
		Tables:   registry,
		Store:    store,
		Notifier: notifier,
	}

	botOpts := []tgbot.Option{
		tgbot.WithMiddlewares(logger.Middleware(log), handlers.AllowedOnly(hDeps)),
		tgbot.WithDefaultHandler(handlers.NewMessageHandler(hDeps)),
	}
	tg, err := telegram.NewTelegramBot(cfg.Telegram.Token, log, botOpts...)
	if err != nil {
		log.Error("Failed to create Telegram bot", "error", err)
		return 1
	}

	notifier.Bind(tg)

	cmdHandlers := handlers.RegisterAllCommands(hDeps)
	if err := telegram.RegisterHandlers(tg, log, cmdHandlers); err != nil {
		log.Error("Failed to register Telegram handlers", "error", err)
		return 1
	}

	tDeps := tasks.TaskDeps{
		Logger:  log,
		Config:  cfg,
		Tracker: trk,
		Store:   store,
	}
	sched, err := bot.NewScheduler(log, &cfg.Scheduler, tasks.RegisterAllTasks(tDeps))
	if err != nil {
		log.Error("Failed to create scheduler", "error", err)
		return 1
	}

	app := bot.NewBot(log, cfg, trk, tg, sched)

	log.Info("Starting bot...")
	runErr := app.Run(ctx)

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Bot stopped due to error", "error", runErr)
		return 1
	}

	log.Info("Bot stopped gracefully.")
	return 0
}
