package main

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/inbox-reader/internal/app"
	"github.com/nhle/inbox-reader/internal/logging"
	"github.com/nhle/inbox-reader/internal/model"
	"github.com/nhle/inbox-reader/internal/store"
)

func main() {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, closer := logging.Setup(cfg.Logging)
	if closer != nil {
		defer closer.Close()
	}

	dataDir := model.DefaultDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "Cannot create data directory: %v\n", err)
		os.Exit(1)
	}

	dbPath := filepath.Join(dataDir, "accounts.db")
	db, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot open account registry: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	logger.Info("starting", "db", dbPath, "config", model.DefaultConfigPath())

	p := tea.NewProgram(app.New(db, cfg, logger), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		logger.Error("fatal", "error", err)
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
