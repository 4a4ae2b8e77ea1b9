package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/hray3182/DoseLine/internal/ai"
	"github.com/hray3182/DoseLine/internal/bot"
	"github.com/hray3182/DoseLine/internal/database"
	"github.com/hray3182/DoseLine/internal/localstore"
	"github.com/hray3182/DoseLine/internal/repository"
	"github.com/hray3182/DoseLine/internal/scheduler"
	"github.com/hray3182/DoseLine/internal/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the Telegram bot and the notification scheduler",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	if cfg.TelegramToken == "" {
		return errors.New("TELEGRAM_TOKEN is required")
	}

	// Create context with cancellation
	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	local, err := localstore.New(cfg.LocalDBPath)
	if err != nil {
		return fmt.Errorf("failed to open local store: %w", err)
	}
	defer local.Close()
	log.Printf("Opened local store at %s", local.Path())

	// Connect the remote mirror (optional)
	var base storage.Store = local
	if cfg.DatabaseURI != "" {
		db, err := database.New(ctx, cfg.DatabaseURI)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		log.Println("Connected to database")

		if err := db.Migrate(ctx); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		log.Println("Database migrations completed")

		mirror := storage.NewMirror(local, repository.NewStore(db))
		n, err := mirror.Hydrate(ctx)
		if err != nil {
			log.Printf("Failed to hydrate from remote: %v", err)
		} else if n > 0 {
			log.Printf("Hydrated %d users from remote", n)
		}
		base = mirror
	} else {
		log.Println("DATABASE_URI not set, running local only")
	}
	a := newApp(local, base)

	// Initialize AI client (optional)
	var aiClient *ai.Client
	if cfg.AIAPIKey != "" {
		aiClient = ai.New(cfg.AIAPIKey, cfg.AIBaseURL, cfg.AIModel)
		log.Printf("AI client initialized (model: %s)", cfg.AIModel)
	} else {
		log.Println("AI client not configured, natural language features disabled")
	}

	b, err := bot.New(cfg.TelegramToken, a.svc, a.reporter, aiClient, cfg.SnoozeMinutes)
	if err != nil {
		return err
	}

	sched := scheduler.New(a.svc, b.Handlers(), cfg.RefreshInterval, cfg.NotifyLead)
	a.svc.OnChange(func(int64) { sched.Notify() })
	go sched.Start(ctx)

	// Another process writing the same database file must refresh us too.
	watcher, err := localstore.Watch(local.Path(), func() {
		users, err := a.svc.Users(ctx)
		if err != nil {
			log.Printf("Failed to list users after external change: %v", err)
			return
		}
		for _, u := range users {
			a.svc.Broadcast(u)
		}
	})
	if err != nil {
		log.Printf("Failed to watch %s, external edits need a restart: %v", local.Path(), err)
	} else {
		defer watcher.Close()
	}

	// Handle graceful shutdown
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		cancel()
	}()

	log.Println("Starting bot...")
	if err := b.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("bot error: %w", err)
	}
	return nil
}
