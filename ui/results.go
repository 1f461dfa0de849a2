package ui

import (
	"chat-analyzer/analyzer"
	"chat-analyzer/history"
	"chat-analyzer/utils"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/widget"
)

// ResultsView is the tab with history, the current result and feedback
type ResultsView struct {
	app *App

	historyList   *widget.List
	records       []history.Record
	resultText    *widget.RichText
	feedbackEntry *widget.Entry
	improveButton *widget.Button
	progress      *widget.ProgressBarInfinite
}

// NewResultsView creates the results tab
func NewResultsView(app *App) *ResultsView {
	return &ResultsView{app: app}
}

// Build builds the results view UI
func (rv *ResultsView) Build() fyne.CanvasObject {
	rv.records = rv.app.session.History().Records()

	rv.historyList = widget.NewList(
		func() int {
			return len(rv.records)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("0000-00-00 00:00:00 - 分析结果")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(rv.records) {
				return
			}
			obj.(*widget.Label).SetText(rv.records[id].Label())
		},
	)
	rv.historyList.OnSelected = func(id widget.ListItemID) {
		rec, err := rv.app.session.SelectRecord(id)
		if err != nil {
			rv.app.logger.Warn("Failed to select history record %d: %v", id, err)
			return
		}
		rv.showResult(rec.Result)
		rv.feedbackEntry.SetText("")
	}

	rv.resultText = widget.NewRichText()
	rv.resultText.Wrapping = fyne.TextWrapWord

	rv.feedbackEntry = widget.NewMultiLineEntry()
	rv.feedbackEntry.Wrapping = fyne.TextWrapWord
	rv.feedbackEntry.SetMinRowsVisible(3)
	rv.feedbackEntry.SetPlaceHolder("例如：请按人员分别总结，并列出待办事项")

	rv.improveButton = widget.NewButton("提交反馈并改进", rv.startImprovement)
	rv.improveButton.Importance = widget.HighImportance

	rv.progress = widget.NewProgressBarInfinite()
	rv.progress.Stop()
	rv.progress.Hide()

	exportButton := widget.NewButton("导出分析结果到CSV", rv.showExportDialog)

	if current, ok := rv.app.session.CurrentResult(); ok {
		rv.showResult(current)
	}
	rv.selectLatest()

	historyCard := widget.NewCard("历史分析记录", "", rv.historyList)
	resultCard := widget.NewCard("分析结果", "", container.NewVScroll(rv.resultText))
	feedbackCard := widget.NewCard("提供反馈", "请提供反馈以改进分析结果:", container.NewVBox(
		rv.feedbackEntry,
		container.NewBorder(nil, nil, rv.improveButton, nil, rv.progress),
	))

	split := container.NewHSplit(historyCard, container.NewBorder(nil, feedbackCard, nil, nil, resultCard))
	split.SetOffset(0.3)

	return container.NewBorder(nil, exportButton, nil, nil, split)
}

// showResult renders a result; analyses usually come back as Markdown
func (rv *ResultsView) showResult(text string) {
	rv.resultText.ParseMarkdown(text)
}

// selectLatest highlights the newest record without triggering OnSelected
func (rv *ResultsView) selectLatest() {
	if len(rv.records) == 0 {
		return
	}
	onSelected := rv.historyList.OnSelected
	rv.historyList.OnSelected = nil
	rv.historyList.Select(len(rv.records) - 1)
	rv.historyList.ScrollToBottom()
	rv.historyList.OnSelected = onSelected
}

// showCompletion displays a finished request and refreshes the history list
func (rv *ResultsView) showCompletion(c analyzer.Completion) {
	rv.records = rv.app.session.History().Records()
	rv.historyList.Refresh()
	rv.selectLatest()
	rv.showResult(c.Record.Result)

	if c.Record.Type == history.KindImprovement && c.Result.OK() {
		rv.feedbackEntry.SetText("")
	}
}

func (rv *ResultsView) startImprovement() {
	if rv.app.session.Analyzer() == nil {
		rv.app.showWarning("请先在设置中配置API Key")
		return
	}

	err := rv.app.session.StartImprovement(rv.feedbackEntry.Text, rv.app.onCompletion)
	if err != nil {
		rv.app.showWarning(userMessage(err))
		return
	}
	rv.app.setBusy(true)
}

func (rv *ResultsView) setBusy(busy bool) {
	if busy {
		rv.improveButton.Disable()
		rv.progress.Show()
		rv.progress.Start()
		return
	}
	rv.improveButton.Enable()
	rv.progress.Stop()
	rv.progress.Hide()
}

func (rv *ResultsView) showExportDialog() {
	if _, ok := rv.app.session.CurrentResult(); !ok {
		rv.app.showWarning("没有可导出的分析结果")
		return
	}

	saveDialog := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
		if err != nil {
			rv.app.showError("保存文件失败: " + err.Error())
			return
		}
		if writer == nil {
			return // User cancelled
		}
		path := writer.URI().Path()
		writer.Close()

		if err := rv.app.session.ExportCSV(path); err != nil {
			rv.app.logger.Error("Failed to export result: %v", err)
			rv.app.showError("导出失败: " + err.Error())
			return
		}
		rv.app.showSuccess("分析结果已导出到:\n" + path)
	}, rv.app.window)

	saveDialog.SetFileName(utils.GenerateExportFilename("analysis", "csv"))
	saveDialog.SetFilter(storage.NewExtensionFileFilter([]string{".csv"}))
	if dir, err := utils.GetDefaultExportPath(); err == nil {
		if uri, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
			saveDialog.SetLocation(uri)
		}
	}
	saveDialog.Show()
}
