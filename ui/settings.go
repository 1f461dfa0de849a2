package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"chat-analyzer/analyzer"
	"chat-analyzer/db"
	"chat-analyzer/llm"
	"chat-analyzer/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

var providerLabels = map[string]string{
	utils.ProviderDeepSeek: "DeepSeek",
	utils.ProviderOllama:   "Ollama (本地)",
}

// SettingsView represents the settings tab
type SettingsView struct {
	app *App

	providerSelect   *widget.Select
	apiKeyEntry      *widget.Entry
	modelSelect      *widget.Select
	modelEntry       *widget.Entry
	baseURLEntry     *widget.Entry
	systemPrompt     *widget.Entry
	anonymizeCheck   *widget.Check
	themeSelect      *widget.Select
	fontSizeSlider   *widget.Slider
	fontSizeLabel    *widget.Label
	archiveStats     *widget.Label
	testButton       *widget.Button
	selectedProvider string
}

// NewSettingsView creates a new settings view
func NewSettingsView(app *App) *SettingsView {
	return &SettingsView{app: app}
}

// Build builds the settings view UI
func (sv *SettingsView) Build() fyne.CanvasObject {
	return container.NewVScroll(container.NewVBox(
		widget.NewCard("API 设置", "", sv.buildAPISettings()),
		widget.NewCard("系统提示词设置", "", sv.buildPromptSettings()),
		widget.NewCard("界面", "", sv.buildUISettings()),
		widget.NewCard("本地存档", "", sv.buildArchiveSettings()),
	))
}

func (sv *SettingsView) buildAPISettings() fyne.CanvasObject {
	cfg := sv.app.config

	sv.apiKeyEntry = widget.NewPasswordEntry()
	sv.apiKeyEntry.SetPlaceHolder("sk-...")
	if sv.app.overrides.HasAPIKey() {
		sv.apiKeyEntry.SetPlaceHolder("已通过环境变量设置")
	}
	sv.apiKeyEntry.SetText(cfg.APIKey)

	var labels []string
	for _, m := range utils.Models {
		labels = append(labels, m.Label)
	}
	sv.modelSelect = widget.NewSelect(labels, nil)
	sv.modelSelect.SetSelected(utils.ModelLabel(cfg.Model))

	sv.modelEntry = widget.NewEntry()
	sv.modelEntry.SetPlaceHolder("qwen2.5")

	sv.baseURLEntry = widget.NewEntry()
	sv.baseURLEntry.SetText(cfg.BaseURL)

	sv.providerSelect = widget.NewSelect(
		[]string{providerLabels[utils.ProviderDeepSeek], providerLabels[utils.ProviderOllama]},
		func(label string) {
			for name, l := range providerLabels {
				if l == label {
					sv.selectedProvider = name
				}
			}
			sv.updateProviderFields()
		},
	)
	sv.selectedProvider = cfg.Provider
	if cfg.Provider == utils.ProviderOllama {
		sv.modelEntry.SetText(cfg.Model)
	}
	sv.providerSelect.SetSelected(providerLabels[cfg.Provider])

	sv.anonymizeCheck = widget.NewCheck("发送前隐藏邮箱、手机号、链接等敏感信息", nil)
	sv.anonymizeCheck.SetChecked(cfg.Anonymize)

	saveButton := widget.NewButton("保存API设置", sv.saveSettings)
	saveButton.Importance = widget.HighImportance

	sv.testButton = widget.NewButton("测试连接", sv.testConnection)

	form := widget.NewForm(
		widget.NewFormItem("服务", sv.providerSelect),
		widget.NewFormItem("API Key", sv.apiKeyEntry),
		widget.NewFormItem("选择模型", container.NewVBox(sv.modelSelect, sv.modelEntry)),
		widget.NewFormItem("Base URL", sv.baseURLEntry),
		widget.NewFormItem("隐私", sv.anonymizeCheck),
	)

	return container.NewVBox(form, container.NewHBox(saveButton, sv.testButton))
}

// updateProviderFields shows the model control that fits the provider
func (sv *SettingsView) updateProviderFields() {
	if sv.selectedProvider == utils.ProviderOllama {
		sv.modelSelect.Hide()
		sv.modelEntry.Show()
		sv.apiKeyEntry.Disable()
		sv.baseURLEntry.SetPlaceHolder(llm.DefaultOllamaURL)
	} else {
		sv.modelEntry.Hide()
		sv.modelSelect.Show()
		sv.apiKeyEntry.Enable()
		sv.baseURLEntry.SetPlaceHolder(llm.DeepSeekBaseURL)
	}
}

func (sv *SettingsView) buildPromptSettings() fyne.CanvasObject {
	sv.systemPrompt = widget.NewMultiLineEntry()
	sv.systemPrompt.Wrapping = fyne.TextWrapWord
	sv.systemPrompt.SetMinRowsVisible(5)
	sv.systemPrompt.SetPlaceHolder("输入自定义的系统提示词，如不填写将使用默认提示词")
	sv.systemPrompt.SetText(sv.app.config.SystemPrompt)

	return container.NewVBox(
		widget.NewLabel("自定义系统提示词 (可选):"),
		sv.systemPrompt,
	)
}

func (sv *SettingsView) buildUISettings() fyne.CanvasObject {
	cfg := sv.app.config

	sv.themeSelect = widget.NewSelect([]string{"Light", "Dark"}, func(value string) {
		cfg.Theme = strings.ToLower(value)
		sv.app.applyThemeFromConfig()
		sv.persist("theme")
	})
	if cfg.Theme == "dark" {
		sv.themeSelect.SetSelected("Dark")
	} else {
		sv.themeSelect.SetSelected("Light")
	}

	sv.fontSizeLabel = widget.NewLabel(fmt.Sprintf("字体大小: %d", cfg.FontSize))
	sv.fontSizeSlider = widget.NewSlider(10, 24)
	sv.fontSizeSlider.Step = 1
	sv.fontSizeSlider.Value = float64(cfg.FontSize)
	sv.fontSizeSlider.OnChangeEnded = func(value float64) {
		cfg.FontSize = int(value)
		sv.fontSizeLabel.SetText(fmt.Sprintf("字体大小: %d", cfg.FontSize))
		sv.app.applyThemeFromConfig()
		sv.persist("font size")
	}

	return widget.NewForm(
		widget.NewFormItem("主题", sv.themeSelect),
		widget.NewFormItem("", container.NewVBox(sv.fontSizeLabel, sv.fontSizeSlider)),
	)
}

func (sv *SettingsView) buildArchiveSettings() fyne.CanvasObject {
	paths := sv.app.paths
	pathsLabel := widget.NewLabel(fmt.Sprintf("配置: %s\n历史: %s\n存档: %s", paths.Config, paths.History, paths.Archive))
	pathsLabel.Wrapping = fyne.TextWrapBreak

	sv.archiveStats = widget.NewLabel("")
	sv.updateArchiveStats()

	refreshButton := widget.NewButton("刷新统计", sv.updateArchiveStats)
	vacuumButton := widget.NewButton("优化数据库", sv.vacuumArchive)
	if sv.app.archive == nil {
		refreshButton.Disable()
		vacuumButton.Disable()
	}

	return container.NewVBox(pathsLabel, sv.archiveStats, container.NewHBox(refreshButton, vacuumButton))
}

// formConfig returns a copy of the file config with the form values applied
func (sv *SettingsView) formConfig() *utils.Config {
	cfg := *sv.app.config
	cfg.Provider = sv.selectedProvider
	cfg.APIKey = sv.apiKeyEntry.Text
	cfg.BaseURL = strings.TrimSpace(sv.baseURLEntry.Text)
	cfg.SystemPrompt = sv.systemPrompt.Text
	cfg.Anonymize = sv.anonymizeCheck.Checked

	if cfg.Provider == utils.ProviderOllama {
		cfg.Model = strings.TrimSpace(sv.modelEntry.Text)
	} else if id, ok := utils.ModelIDForLabel(sv.modelSelect.Selected); ok {
		cfg.Model = id
	}

	cfg.Normalize()
	return &cfg
}

func (sv *SettingsView) saveSettings() {
	cfg := sv.formConfig()
	if err := sv.app.effectiveConfig(cfg).Validate(); err != nil {
		if errors.Is(err, utils.ErrMissingAPIKey) {
			sv.app.showWarning("请输入有效的API Key")
		} else {
			sv.app.showWarning(err.Error())
		}
		return
	}

	if err := utils.SaveConfig(sv.app.paths.Config, cfg); err != nil {
		sv.app.logger.Error("Failed to save config: %v", err)
		sv.app.showError("保存设置失败: " + err.Error())
		return
	}

	*sv.app.config = *cfg
	sv.app.rebuildAnalyzer()
	sv.app.analysisView.refreshButtons()
	sv.app.logger.Info("Settings saved (provider=%s, model=%s)", cfg.Provider, cfg.Model)
	sv.app.showSuccess("API设置已保存")
}

// persist writes the current config after a UI-only change
func (sv *SettingsView) persist(what string) {
	if err := utils.SaveConfig(sv.app.paths.Config, sv.app.config); err != nil {
		sv.app.logger.Error("Failed to save %s: %v", what, err)
		return
	}
	sv.app.logger.Info("Saved %s setting", what)
}

// testConnection sends a short message with the current form values
func (sv *SettingsView) testConnection() {
	cfg := sv.app.effectiveConfig(sv.formConfig())
	if err := cfg.Validate(); err != nil {
		sv.app.showWarning(userMessage(err))
		return
	}

	provider, err := llm.NewProvider(analyzer.ProviderConfig(cfg))
	if err == nil {
		err = provider.ValidateConfig()
	}
	if err != nil {
		sv.app.showError("初始化失败: " + err.Error())
		return
	}

	sv.testButton.Disable()
	sv.testButton.SetText("测试中...")
	sv.app.logger.Info("Testing connection for provider: %s", provider.Name())

	utils.SafeGo(sv.app.logger, "testConnection", func() {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		_, err := provider.Chat(ctx, []llm.Message{{Role: llm.RoleUser, Content: "Hello"}})

		fyne.Do(func() {
			sv.testButton.Enable()
			sv.testButton.SetText("测试连接")
			if err != nil {
				sv.app.logger.Error("Connection test failed: %v", err)
				sv.app.showError("连接测试失败: " + err.Error())
				return
			}
			sv.app.logger.Info("Connection test successful for: %s", provider.Name())
			sv.app.showSuccess("连接测试成功!\n\n服务: " + provider.Name() + "\n模型: " + cfg.Model)
		})
	})
}

func (sv *SettingsView) updateArchiveStats() {
	if sv.app.archive == nil {
		sv.archiveStats.SetText("存档不可用")
		return
	}

	stats, err := sv.app.archive.GetStats()
	if err != nil {
		sv.app.logger.Error("Failed to get archive stats: %v", err)
		sv.archiveStats.SetText("无法获取统计信息")
		return
	}

	sv.archiveStats.SetText(fmt.Sprintf(
		"导入次数: %d\n消息数: %d\n分析结果: %d\n数据库大小: %s",
		stats.ImportCount,
		stats.EntryCount,
		stats.AnalysisCount,
		db.FormatSize(stats.DBSizeBytes),
	))
}

func (sv *SettingsView) vacuumArchive() {
	if err := sv.app.archive.Vacuum(); err != nil {
		sv.app.logger.Error("Failed to vacuum archive: %v", err)
		sv.app.showError("优化失败: " + err.Error())
		return
	}
	sv.app.logger.Info("Archive vacuum completed")
	sv.updateArchiveStats()
	sv.app.showSuccess("数据库已优化")
}
