package main

import (
	"context"
	"delivery-route-console/internal/adapters/mapview"
	"delivery-route-console/internal/adapters/remote"
	"delivery-route-console/internal/config"
	"delivery-route-console/internal/console"
	"delivery-route-console/internal/platform/logging"
	"delivery-route-console/internal/tui"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	if err := cfg.ValidateConsole(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// The terminal belongs to the UI; logs go to a file.
	logFile, err := os.OpenFile(cfg.Console.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logging.Setup(cfg.Log.Level, cfg.Log.Format, logFile)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	client := remote.NewClient(cfg.Console.APIURL)
	canvas := mapview.NewCanvas(60, 20)
	session := console.NewSession(client, canvas)

	slog.Info("console started", "api", client.BaseURL())

	p := tea.NewProgram(
		tui.NewApp(ctx, session, canvas),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	if _, err := p.Run(); err != nil {
		slog.Error("console exited", "err", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
