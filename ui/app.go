package ui

import (
	"errors"

	"chat-analyzer/analyzer"
	"chat-analyzer/db"
	"chat-analyzer/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

// Tab order of the main window
const (
	tabSettings = iota
	tabAnalysis
	tabResults
	tabSearch
)

// App represents the main application
type App struct {
	fyneApp   fyne.App
	window    fyne.Window
	config    *utils.Config // as stored in the config file
	overrides utils.EnvOverrides
	paths     utils.DataPaths
	session *analyzer.Session
	archive *db.DB // nil when the archive could not be opened
	logger  *utils.Logger

	tabs         *container.AppTabs
	settingsView *SettingsView
	analysisView *AnalysisView
	resultsView  *ResultsView
	searchView   *SearchView
}

// NewApp creates a new application instance. The session's dispatcher must
// deliver completions with fyne.Do. config is saved back to its file on
// changes; overrides only affect the running process.
func NewApp(config *utils.Config, overrides utils.EnvOverrides, paths utils.DataPaths, session *analyzer.Session, archive *db.DB, logger *utils.Logger) *App {
	fyneApp := app.NewWithID("chat-analyzer")
	window := fyneApp.NewWindow("聊天记录分析工具")

	window.Resize(fyne.NewSize(
		float32(config.WindowWidth),
		float32(config.WindowHeight),
	))

	application := &App{
		fyneApp:   fyneApp,
		window:    window,
		config:    config,
		overrides: overrides,
		paths:     paths,
		session:   session,
		archive:   archive,
		logger:    logger,
	}

	window.SetOnClosed(func() {
		size := window.Canvas().Size()
		application.config.WindowWidth = int(size.Width)
		application.config.WindowHeight = int(size.Height)
		if err := utils.SaveConfig(application.paths.Config, application.config); err != nil {
			application.logger.Error("Failed to save window size: %v", err)
		} else {
			application.logger.Info("Window size saved: %dx%d", application.config.WindowWidth, application.config.WindowHeight)
		}
	})

	application.applyThemeFromConfig()
	application.rebuildAnalyzer()
	application.buildUI()

	return application
}

// rebuildAnalyzer replaces the session analyzer after a settings change.
// Without a usable config the session has no analyzer and analysis is refused.
func (a *App) rebuildAnalyzer() {
	effective := a.effectiveConfig(a.config)
	an, err := analyzer.FromConfig(effective, a.logger)
	if err != nil {
		if errors.Is(err, utils.ErrMissingAPIKey) {
			a.logger.Info("No API key configured yet")
		} else {
			a.logger.Error("Failed to initialize analyzer: %v", err)
		}
		a.session.SetAnalyzer(nil)
		return
	}
	a.session.SetAnalyzer(an)
	a.logger.Info("Analyzer ready: %s / %s", an.Provider().Name(), effective.Model)
}

// effectiveConfig returns cfg with the environment overrides applied
func (a *App) effectiveConfig(cfg *utils.Config) *utils.Config {
	effective, _ := a.overrides.Effective(cfg)
	return effective
}

func (a *App) buildUI() {
	a.settingsView = NewSettingsView(a)
	a.analysisView = NewAnalysisView(a)
	a.resultsView = NewResultsView(a)
	a.searchView = NewSearchView(a)

	a.tabs = container.NewAppTabs(
		container.NewTabItem("设置", a.settingsView.Build()),
		container.NewTabItem("分析", a.analysisView.Build()),
		container.NewTabItem("结果", a.resultsView.Build()),
		container.NewTabItem("搜索", a.searchView.Build()),
	)
	a.tabs.OnSelected = func(item *container.TabItem) {
		if a.tabs.SelectedIndex() == tabSearch {
			a.searchView.RefreshStats()
		}
	}

	// Start where the user can act: settings until a key exists
	if a.session.Analyzer() != nil {
		a.tabs.SelectIndex(tabAnalysis)
	}

	poweredBy := widget.NewHyperlink("DeepSeek AI", nil)
	_ = poweredBy.SetURLFromString("https://deepseek.com/")
	footer := container.NewHBox(widget.NewLabel("Powered by:"), poweredBy)

	a.window.SetContent(container.NewBorder(nil, footer, nil, nil, a.tabs))
	a.setupKeyboardShortcuts()
}

func (a *App) setupKeyboardShortcuts() {
	// Ctrl+O: Import chat log
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyO,
		Modifier: desktop.ControlModifier,
	}, func(shortcut fyne.Shortcut) {
		a.tabs.SelectIndex(tabAnalysis)
		a.analysisView.showImportDialog()
	})

	// Ctrl+S: Export current result
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyS,
		Modifier: desktop.ControlModifier,
	}, func(shortcut fyne.Shortcut) {
		a.resultsView.showExportDialog()
	})

	// Ctrl+F: Search
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyF,
		Modifier: desktop.ControlModifier,
	}, func(shortcut fyne.Shortcut) {
		a.tabs.SelectIndex(tabSearch)
		a.window.Canvas().Focus(a.searchView.searchEntry)
	})

	// Ctrl+Comma: Settings
	a.window.Canvas().AddShortcut(&desktop.CustomShortcut{
		KeyName:  fyne.KeyComma,
		Modifier: desktop.ControlModifier,
	}, func(shortcut fyne.Shortcut) {
		a.tabs.SelectIndex(tabSettings)
	})
}

// setBusy toggles every control that starts a request
func (a *App) setBusy(busy bool) {
	a.analysisView.setBusy(busy)
	a.resultsView.setBusy(busy)
}

// onCompletion runs on the UI goroutine once a request has been recorded
func (a *App) onCompletion(c analyzer.Completion) {
	a.setBusy(false)
	a.resultsView.showCompletion(c)
	a.tabs.SelectIndex(tabResults)

	if c.SaveErr != nil {
		a.showError("结果已显示，但保存历史记录失败:\n" + c.SaveErr.Error())
	}
}

// Run shows the window and runs the event loop
func (a *App) Run() {
	a.window.ShowAndRun()
}

// showError shows an error dialog
func (a *App) showError(message string) {
	a.showPopup("❌ 错误", message)
}

// showSuccess shows a success dialog
func (a *App) showSuccess(message string) {
	a.showPopup("✅ 成功", message)
}

// showWarning shows a warning dialog
func (a *App) showWarning(message string) {
	a.showPopup("⚠️ 提示", message)
}

func (a *App) showPopup(title, message string) {
	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewVBox(
			widget.NewLabel(title),
			widget.NewLabel(message),
			widget.NewButton("确定", func() {
				popup.Hide()
			}),
		),
		a.window.Canvas(),
	)
	popup.Show()
}

func (a *App) applyThemeFromConfig() {
	isDark := a.config.Theme == "dark"
	a.fyneApp.Settings().SetTheme(newCustomTheme(a.config.FontSize, isDark))

	if isDark {
		a.logger.Info("Applied dark theme with font size %d", a.config.FontSize)
	} else {
		a.logger.Info("Applied light theme with font size %d", a.config.FontSize)
	}
}

// userMessage maps session errors to the notice shown to the user
func userMessage(err error) string {
	switch {
	case errors.Is(err, analyzer.ErrNoAnalyzer), errors.Is(err, utils.ErrMissingAPIKey):
		return "请先在设置中配置API Key"
	case errors.Is(err, analyzer.ErrNoEntries):
		return "请先导入或输入聊天记录"
	case errors.Is(err, analyzer.ErrNoResult):
		return "没有可用的分析结果"
	case errors.Is(err, analyzer.ErrEmptyFeedback):
		return "请先输入反馈内容"
	case errors.Is(err, analyzer.ErrBusy):
		return "正在分析中，请稍候"
	default:
		return err.Error()
	}
}
