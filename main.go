package main

import (
	"flag"
	"fmt"
	"os"

	"chat-analyzer/analyzer"
	"chat-analyzer/db"
	"chat-analyzer/history"
	"chat-analyzer/ui"
	"chat-analyzer/utils"

	"fyne.io/fyne/v2"
)

var (
	version = "0.1.0"
)

func main() {
	// Parse command line flags
	configPath := flag.String("config", "", "Path to configuration file")
	dataDir := flag.String("data-dir", "", "Directory for config, history, archive and logs")
	showVersion := flag.Bool("version", false, "Show version information")
	flag.Parse()

	if *showVersion {
		fmt.Printf("Chat Analyzer v%s\n", version)
		os.Exit(0)
	}

	overrides, envErr := utils.LoadEnvOverrides(".env")
	if *dataDir == "" {
		*dataDir = overrides.DataDir
	}

	paths := utils.ResolveDataPaths(*dataDir)
	if *configPath != "" {
		paths.Config = *configPath
	}

	// Initialize logger
	logger, err := utils.NewLogger(utils.GetLogPath(paths.Logs))
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Close()

	logger.Info("Starting Chat Analyzer v%s", version)
	logger.Info("Data directory: %s", paths.Dir)

	// config mirrors the file; overrides are applied to a copy when needed
	config := utils.LoadConfigOrDefault(paths.Config, logger)
	if envErr != nil {
		logger.Warn("Ignoring environment overrides: %v", envErr)
		overrides = utils.EnvOverrides{}
	} else if _, applied := overrides.Effective(config); len(applied) > 0 {
		logger.Info("Environment overrides applied: %v", applied)
	}

	store := history.Load(paths.History, logger)

	// The archive is optional; the app works from the JSON history alone
	archive, err := db.New(paths.Archive)
	if err != nil {
		logger.Error("Failed to open archive, search is disabled: %v", err)
		archive = nil
	} else {
		defer archive.Close()
		logger.Info("Archive opened: %s", paths.Archive)
	}

	dispatcher := analyzer.NewDispatcher(fyne.Do, logger)
	session := analyzer.NewSession(store, dispatcher, logger)
	if archive != nil {
		session.SetArchive(archive)
	}

	app := ui.NewApp(config, overrides, paths, session, archive, logger)

	logger.Info("Application started")
	app.Run()
	logger.Info("Application stopped")
}
