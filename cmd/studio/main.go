package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/joho/godotenv"

	"jewelshot/internal/bootstrap"
	"jewelshot/internal/infra"
	"jewelshot/internal/storage"
	"jewelshot/internal/studio"
)

func main() {
	var (
		prefsPath string
		outDir    string
	)
	flag.StringVar(&prefsPath, "prefs", studio.DefaultPrefsPath(), "Path of the studio preferences file")
	flag.StringVar(&outDir, "out", "", "Directory for saved photoshoots (overrides preferences and STORAGE_PATH)")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	prefs, err := studio.LoadPrefs(prefsPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
	}

	logPath := prefs.LogFile
	if logPath == "" {
		logPath = filepath.Join(os.TempDir(), "jewelshot-studio.log")
	}
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening log file: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()
	logger := infra.NewLoggerTo(logFile, cfg.AppEnv).With().Str("cmd", "studio").Logger()
	for _, name := range cfg.Missing() {
		logger.Warn().Str("var", name).Msg("environment variable not set")
	}

	switch {
	case outDir != "":
	case prefs.OutputDir != "":
		outDir = prefs.OutputDir
	default:
		outDir = cfg.StoragePath
	}
	store, err := storage.NewFileStore(outDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error preparing output directory: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	services, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error initialising services: %v\n", err)
		os.Exit(1)
	}
	defer services.Close()

	ctrl := services.NewController("studio")
	ctrl.Start(ctx)
	defer ctrl.Close()

	model := studio.New(studio.Options{
		Controller: ctrl,
		Store:      store,
		Prefs:      prefs,
		SavePrefs:  func(p studio.Prefs) error { return studio.SavePrefs(prefsPath, p) },
		Logger:     logger,
		Locale:     localeFromEnv(),
	})
	defer model.Close()

	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running studio: %v\n", err)
		os.Exit(1)
	}
}

// localeFromEnv turns LANG=id_ID.UTF-8 into "id-ID".
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_MESSAGES", "LANG"} {
		v := os.Getenv(key)
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		return strings.ReplaceAll(v, "_", "-")
	}
	return ""
}
