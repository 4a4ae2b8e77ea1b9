package main

import (
	"fmt"
	"os"

	"github.com/hray3182/DoseLine/internal/config"
	"github.com/hray3182/DoseLine/internal/history"
	"github.com/hray3182/DoseLine/internal/localstore"
	"github.com/hray3182/DoseLine/internal/models"
	"github.com/hray3182/DoseLine/internal/reminders"
	"github.com/hray3182/DoseLine/internal/storage"
	"github.com/spf13/cobra"
)

var (
	dbPath string
	userID int64
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "doseline",
	Short: "Medication and supplement reminders",
	Long: `DoseLine expands reminder definitions into the day's doses, tracks what
was taken, and notifies through a Telegram bot when run with "serve".`,
	SilenceUsage: true,
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Path to the local database (default $LOCAL_DB_PATH or ~/.doseline/doseline.db)")
	rootCmd.PersistentFlags().Int64VarP(&userID, "user", "u", 0, "User (Telegram chat) id to act on")
}

func initConfig() {
	var err error
	cfg, err = config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	if dbPath != "" {
		cfg.LocalDBPath = dbPath
	}
}

// app bundles what the one-shot commands need.
type app struct {
	local    *localstore.Store
	store    storage.Store
	svc      *reminders.Service
	reporter *history.Reporter
}

func (a *app) Close() error {
	return a.local.Close()
}

func openApp() (*app, error) {
	local, err := localstore.New(cfg.LocalDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open local store: %w", err)
	}
	return newApp(local, local), nil
}

func newApp(local *localstore.Store, base storage.Store) *app {
	store := storage.Defaulted{Store: base, Settings: defaultSettings()}
	return &app{
		local:    local,
		store:    store,
		svc:      reminders.NewService(store),
		reporter: history.NewReporter(store),
	}
}

func defaultSettings() models.Settings {
	return models.Settings{SleepStart: cfg.DefaultSleepStart, SleepEnd: cfg.DefaultSleepEnd}
}
