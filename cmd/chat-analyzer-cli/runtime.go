package main

import (
	"fmt"

	"chat-analyzer/analyzer"
	"chat-analyzer/db"
	"chat-analyzer/history"
	"chat-analyzer/utils"
)

// env is what every command needs before touching application state
type env struct {
	paths     utils.DataPaths
	overrides utils.EnvOverrides
	logger    *utils.Logger
}

func openEnv(flags *globalFlags) (*env, error) {
	overrides, err := utils.LoadEnvOverrides(".env")
	if err != nil {
		return nil, err
	}

	dataDir := flags.dataDir
	if dataDir == "" {
		dataDir = overrides.DataDir
	}
	paths := utils.ResolveDataPaths(dataDir)
	if flags.configPath != "" {
		paths.Config = flags.configPath
	}

	logger, err := utils.NewLogger(utils.GetLogPath(paths.Logs))
	if err != nil {
		return nil, err
	}
	// stdout carries command output only
	logger.SetConsole(nil)

	return &env{paths: paths, overrides: overrides, logger: logger}, nil
}

func (e *env) Close() {
	e.logger.Close()
}

// runtime is a session wired the same way the GUI wires it, except that
// completions are handed to the main goroutine through a channel
type runtime struct {
	*env
	config     *utils.Config
	archive    *db.DB
	session    *analyzer.Session
	deliveries chan func()
}

func openRuntime(flags *globalFlags) (*runtime, error) {
	e, err := openEnv(flags)
	if err != nil {
		return nil, err
	}

	config, applied := e.overrides.Effective(utils.LoadConfigOrDefault(e.paths.Config, e.logger))
	if len(applied) > 0 {
		e.logger.Info("Environment overrides applied: %v", applied)
	}

	rt := &runtime{
		env:        e,
		config:     config,
		deliveries: make(chan func(), 1),
	}

	store := history.Load(e.paths.History, e.logger)
	dispatcher := analyzer.NewDispatcher(func(fn func()) { rt.deliveries <- fn }, e.logger)
	rt.session = analyzer.NewSession(store, dispatcher, e.logger)

	archive, err := db.New(e.paths.Archive)
	if err != nil {
		e.logger.Warn("Archive unavailable: %v", err)
	} else {
		rt.archive = archive
		rt.session.SetArchive(archive)
	}

	return rt, nil
}

func (rt *runtime) Close() {
	if rt.archive != nil {
		rt.archive.Close()
	}
	rt.env.Close()
}

// requireArchive fails commands that only make sense with the archive
func (rt *runtime) requireArchive() (*db.DB, error) {
	if rt.archive == nil {
		return nil, fmt.Errorf("archive %s could not be opened, see the log in %s", rt.paths.Archive, rt.paths.Logs)
	}
	return rt.archive, nil
}

// loadImport makes an archived import the loaded chat log
func (rt *runtime) loadImport(id string) (int, error) {
	archive, err := rt.requireArchive()
	if err != nil {
		return 0, err
	}
	imp, err := archive.GetImport(id)
	if err != nil {
		return 0, err
	}
	entries, err := archive.ListEntries(imp.ID)
	if err != nil {
		return 0, err
	}
	return rt.session.SetArchivedEntries(imp.ID, entries, imp.Source)
}

// useAnalyzer builds the analyzer from the effective config
func (rt *runtime) useAnalyzer() error {
	an, err := analyzer.FromConfig(rt.config, rt.logger)
	if err != nil {
		return fmt.Errorf("%w (set it with `chat-analyzer-cli config set-key` or CHAT_ANALYZER_API_KEY)", err)
	}
	rt.session.SetAnalyzer(an)
	return nil
}

// await blocks until the in-flight request completes and returns its outcome
func (rt *runtime) await(start func(done func(analyzer.Completion)) error) (analyzer.Completion, error) {
	var completion analyzer.Completion
	if err := start(func(c analyzer.Completion) {
		completion = c
	}); err != nil {
		return analyzer.Completion{}, err
	}

	fn := <-rt.deliveries
	fn()
	return completion, nil
}

// selectRecord makes the 1-based history record n current; 0 keeps the latest
func (rt *runtime) selectRecord(n int) error {
	if n == 0 {
		return nil
	}
	if _, err := rt.session.SelectRecord(n - 1); err != nil {
		return fmt.Errorf("no history record #%d (have %d)", n, rt.session.History().Len())
	}
	return nil
}
