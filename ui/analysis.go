package ui

import (
	"errors"
	"fmt"

	"chat-analyzer/chatlog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

const formatHint = "请按照以下格式输入聊天记录：\n[时间] 作者: 消息\n例如：[2023-01-01 12:00:00] 张三: 你好！"

// AnalysisView is the tab for loading chat data and starting an analysis
type AnalysisView struct {
	app *App

	fileLabel     *widget.Label
	manualInput   *widget.Entry
	preview       *widget.Entry
	analyzeButton *widget.Button
	progress      *widget.ProgressBarInfinite
}

// NewAnalysisView creates the analysis tab
func NewAnalysisView(app *App) *AnalysisView {
	return &AnalysisView{app: app}
}

// Build builds the analysis view UI
func (av *AnalysisView) Build() fyne.CanvasObject {
	importButton := widget.NewButton("导入CSV文件", av.showImportDialog)
	av.fileLabel = widget.NewLabel("未选择文件")

	hint := widget.NewLabel(formatHint)
	hint.Wrapping = fyne.TextWrapWord

	av.manualInput = widget.NewMultiLineEntry()
	av.manualInput.SetPlaceHolder("在此输入聊天记录...")
	av.manualInput.SetMinRowsVisible(6)

	parseButton := widget.NewButton("解析输入内容", av.parseManualInput)

	av.preview = widget.NewMultiLineEntry()
	av.preview.Wrapping = fyne.TextWrapWord
	av.preview.SetMinRowsVisible(10)
	av.preview.Disable()

	av.analyzeButton = widget.NewButton("开始分析", av.startAnalysis)
	av.analyzeButton.Importance = widget.HighImportance

	av.progress = widget.NewProgressBarInfinite()
	av.progress.Stop()
	av.progress.Hide()

	av.refreshButtons()

	top := container.NewVBox(
		widget.NewCard("导入聊天记录", "", container.NewVBox(importButton, av.fileLabel)),
		widget.NewCard("手动输入聊天记录", "", container.NewVBox(hint, av.manualInput, parseButton)),
	)
	controls := container.NewBorder(nil, nil, av.analyzeButton, nil, av.progress)

	return container.NewBorder(
		top,
		controls,
		nil,
		nil,
		widget.NewCard("聊天记录预览", "", av.preview),
	)
}

func (av *AnalysisView) showImportDialog() {
	fileDialog := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
		if err != nil {
			av.app.showError("打开文件失败: " + err.Error())
			return
		}
		if reader == nil {
			return // User cancelled
		}
		path := reader.URI().Path()
		reader.Close()

		av.app.logger.Info("Importing chat log from: %s", path)
		n, err := av.app.session.LoadFile(path)
		if err != nil {
			av.app.logger.Error("Failed to import %s: %v", path, err)
			if errors.Is(err, chatlog.ErrNothingParsed) {
				av.app.showWarning("文件中没有可用的聊天记录")
			} else {
				av.app.showError("导入CSV文件失败: " + err.Error())
			}
			return
		}

		av.fileLabel.SetText(fmt.Sprintf("已导入: %s (%d 条消息)", av.app.session.Source(), n))
		av.showPreview()
	}, av.app.window)

	fileDialog.SetFilter(storage.NewExtensionFileFilter([]string{".csv", ".txt"}))
	fileDialog.Show()
}

func (av *AnalysisView) parseManualInput() {
	n, err := av.app.session.LoadText(av.manualInput.Text)
	if err != nil {
		if errors.Is(err, chatlog.ErrNothingParsed) {
			av.app.showWarning("请输入聊天记录")
		} else {
			av.app.showError("解析失败: " + err.Error())
		}
		return
	}

	av.fileLabel.SetText(fmt.Sprintf("手动输入 (%d 条消息)", n))
	av.showPreview()
	av.app.showSuccess(fmt.Sprintf("成功解析 %d 条聊天记录", n))
}

func (av *AnalysisView) showPreview() {
	av.preview.SetText(av.app.session.Preview(chatlog.DefaultPreviewLimit))
	av.refreshButtons()
}

func (av *AnalysisView) startAnalysis() {
	if av.app.session.Analyzer() == nil {
		av.app.showWarning("请先在设置中配置API Key")
		av.app.tabs.SelectIndex(tabSettings)
		return
	}

	err := av.app.session.StartAnalysis(av.app.config.SystemPrompt, av.app.onCompletion)
	if err != nil {
		av.app.showWarning(userMessage(err))
		return
	}
	av.app.setBusy(true)
}

func (av *AnalysisView) setBusy(busy bool) {
	if busy {
		av.progress.Show()
		av.progress.Start()
	} else {
		av.progress.Stop()
		av.progress.Hide()
	}
	av.refreshButtons()
}

// refreshButtons enables analysis only with chat data loaded and no
// request in flight
func (av *AnalysisView) refreshButtons() {
	if len(av.app.session.Entries()) > 0 && !av.app.session.Busy() {
		av.analyzeButton.Enable()
	} else {
		av.analyzeButton.Disable()
	}
}
