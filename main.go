package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/maya-advisor/maya-tui/app"
	"github.com/maya-advisor/maya-tui/client"
	"github.com/maya-advisor/maya-tui/config"
	"github.com/maya-advisor/maya-tui/observability"
	"github.com/maya-advisor/maya-tui/style"
)

var version = "dev"

func main() {
	profileFlag := flag.String("profile", "", "Named profile for state isolation (~/.maya/profiles/<name>)")
	urlFlag := flag.String("url", "", "MAYA backend URL (overrides MAYA_URL and tui.json)")
	noColor := flag.Bool("no-color", false, "Disable ANSI colors")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.BoolVar(showVersion, "V", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("maya %s\n", version)
		os.Exit(0)
	}

	if *noColor {
		lipgloss.SetColorProfile(termenv.Ascii)
	}

	home, _ := os.UserHomeDir()
	profileDir := filepath.Join(home, ".maya")
	if *profileFlag != "" {
		profileDir = filepath.Join(profileDir, "profiles", *profileFlag)
	}
	if err := os.MkdirAll(profileDir, 0o755); err != nil {
		fmt.Fprintf(os.Stderr, "maya: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(profileDir)
	cfg.ApplyEnv(os.Getenv)
	if *urlFlag != "" {
		cfg.BackendURL = *urlFlag
	}

	logFile, err := observability.Init(filepath.Join(profileDir, "maya.log"), cfg.LogLevel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "maya: logging disabled: %v\n", err)
	} else {
		defer logFile.Close()
	}

	// A saved theme wins; otherwise follow the terminal background.
	if !hasSavedConfig(profileDir) || !style.SetTheme(cfg.Theme) {
		if lipgloss.HasDarkBackground() {
			style.SetTheme("dark")
		} else {
			style.SetTheme("light")
		}
	}

	c := client.New(cfg.BackendURL)
	c.SetTimeout(cfg.RequestTimeout())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	observability.Logger().Info("starting", "version", version, "backend", cfg.BackendURL, "profile", profileDir)

	m := app.New(ctx, c, app.Options{URL: cfg.BackendURL, ProfileDir: profileDir})
	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
		tea.WithContext(ctx),
	)

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		fmt.Fprintf(os.Stderr, "maya: %v\n", err)
		os.Exit(1)
	}
}

func hasSavedConfig(profileDir string) bool {
	_, err := os.Stat(filepath.Join(profileDir, "tui.json"))
	return err == nil
}
