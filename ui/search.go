package ui

import (
	"fmt"
	"strings"

	"chat-analyzer/db"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// Search modes
const (
	searchModeAnalyses = "分析结果"
	searchModeEntries  = "聊天记录"
)

const searchLimit = 50

// searchHit is one row of the results list
type searchHit struct {
	title   string
	snippet string
	full    string
}

// SearchView represents the archive search interface
type SearchView struct {
	app          *App
	searchEntry  *widget.Entry
	searchButton *widget.Button
	modeSelect   *widget.Select
	resultsList  *widget.List
	hits         []searchHit
	statusLabel  *widget.Label
	statsLabel   *widget.Label
}

// NewSearchView creates a new search view
func NewSearchView(app *App) *SearchView {
	return &SearchView{app: app}
}

// Build builds the search view UI
func (sv *SearchView) Build() fyne.CanvasObject {
	sv.searchEntry = widget.NewEntry()
	sv.searchEntry.SetPlaceHolder("搜索历史分析结果或聊天记录...")
	sv.searchEntry.OnSubmitted = func(string) {
		sv.performSearch()
	}

	sv.searchButton = widget.NewButton("搜索", sv.performSearch)
	sv.searchButton.Importance = widget.HighImportance

	sv.modeSelect = widget.NewSelect([]string{searchModeAnalyses, searchModeEntries}, func(string) {
		if strings.TrimSpace(sv.searchEntry.Text) != "" {
			sv.performSearch()
		}
	})
	sv.modeSelect.SetSelected(searchModeAnalyses)

	searchBar := container.NewBorder(
		nil,
		nil,
		sv.modeSelect,
		sv.searchButton,
		sv.searchEntry,
	)

	sv.statusLabel = widget.NewLabel("输入关键词开始搜索")
	sv.statusLabel.Alignment = fyne.TextAlignCenter

	sv.statsLabel = widget.NewLabel("")
	sv.statsLabel.Wrapping = fyne.TextWrapWord

	sv.resultsList = widget.NewList(
		func() int {
			return len(sv.hits)
		},
		func() fyne.CanvasObject {
			title := widget.NewLabel("Title")
			title.TextStyle = fyne.TextStyle{Bold: true}
			snippet := widget.NewLabel("Snippet")
			snippet.Wrapping = fyne.TextWrapWord
			return container.NewVBox(title, snippet, widget.NewSeparator())
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			if id >= len(sv.hits) {
				return
			}
			hit := sv.hits[id]
			box := obj.(*fyne.Container)
			box.Objects[0].(*widget.Label).SetText(hit.title)
			box.Objects[1].(*widget.Label).SetText(hit.snippet)
		},
	)
	sv.resultsList.OnSelected = func(id widget.ListItemID) {
		if id < len(sv.hits) {
			sv.showHit(sv.hits[id])
		}
		sv.resultsList.UnselectAll()
	}

	if sv.app.archive == nil {
		sv.searchEntry.Disable()
		sv.searchButton.Disable()
		sv.modeSelect.Disable()
		sv.statusLabel.SetText("归档数据库不可用，搜索已禁用")
	}

	statsCard := widget.NewCard("归档统计", "", sv.statsLabel)
	sv.RefreshStats()

	return container.NewBorder(
		container.NewVBox(searchBar, sv.statusLabel),
		statsCard,
		nil,
		nil,
		sv.resultsList,
	)
}

// performSearch runs the query against the archive in the selected mode
func (sv *SearchView) performSearch() {
	if sv.app.archive == nil {
		return
	}

	query := strings.TrimSpace(sv.searchEntry.Text)
	if query == "" {
		sv.statusLabel.SetText("请输入搜索关键词")
		sv.hits = nil
		sv.resultsList.Refresh()
		return
	}

	mode := sv.modeSelect.Selected
	sv.app.logger.Info("Searching %s for: %s", mode, query)

	var (
		hits []searchHit
		err  error
	)
	if mode == searchModeEntries {
		hits, err = sv.searchEntries(query)
	} else {
		hits, err = sv.searchAnalyses(query)
	}
	if err != nil {
		sv.app.logger.Error("Search failed: %v", err)
		sv.statusLabel.SetText("搜索失败: " + err.Error())
		sv.hits = nil
		sv.resultsList.Refresh()
		return
	}

	sv.hits = hits
	sv.resultsList.Refresh()

	if len(hits) == 0 {
		sv.statusLabel.SetText("未找到匹配结果")
	} else {
		sv.statusLabel.SetText(fmt.Sprintf("找到 %d 条结果", len(hits)))
	}
	sv.app.logger.Info("Search completed: %d results", len(hits))
}

func (sv *SearchView) searchAnalyses(query string) ([]searchHit, error) {
	results, err := sv.app.archive.SearchAnalyses(query, searchLimit)
	if err != nil {
		return nil, err
	}

	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		typeText := "分析结果"
		if r.Analysis.Kind == "improvement" {
			typeText = "改进结果"
		}
		hits = append(hits, searchHit{
			title:   fmt.Sprintf("%s - %s", r.Analysis.Timestamp, typeText),
			snippet: r.Snippet,
			full:    r.Analysis.Result,
		})
	}
	return hits, nil
}

func (sv *SearchView) searchEntries(query string) ([]searchHit, error) {
	results, err := sv.app.archive.SearchEntries(query, searchLimit)
	if err != nil {
		return nil, err
	}

	hits := make([]searchHit, 0, len(results))
	for _, r := range results {
		hits = append(hits, searchHit{
			title:   fmt.Sprintf("%s | %s", r.Source, r.Time),
			snippet: fmt.Sprintf("%s: %s", r.Author, r.Message),
			full:    fmt.Sprintf("[%s] %s: %s", r.Time, r.Author, r.Message),
		})
	}
	return hits, nil
}

func (sv *SearchView) showHit(hit searchHit) {
	content := widget.NewRichTextFromMarkdown(hit.full)
	content.Wrapping = fyne.TextWrapWord
	scroll := container.NewVScroll(content)
	scroll.SetMinSize(fyne.NewSize(600, 400))

	var popup *widget.PopUp
	popup = widget.NewModalPopUp(
		container.NewBorder(
			widget.NewLabelWithStyle(hit.title, fyne.TextAlignLeading, fyne.TextStyle{Bold: true}),
			widget.NewButton("关闭", func() {
				popup.Hide()
			}),
			nil,
			nil,
			scroll,
		),
		sv.app.window.Canvas(),
	)
	popup.Show()
}

// RefreshStats reloads the archive summary shown under the results
func (sv *SearchView) RefreshStats() {
	if sv.app.archive == nil {
		sv.statsLabel.SetText("归档数据库未打开")
		return
	}

	stats, err := sv.app.archive.GetStats()
	if err != nil {
		sv.app.logger.Warn("Failed to load archive stats: %v", err)
		sv.statsLabel.SetText("无法读取统计信息")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("导入次数: %d    聊天记录: %d    分析结果: %d    数据库大小: %s",
		stats.ImportCount, stats.EntryCount, stats.AnalysisCount, db.FormatSize(stats.DBSizeBytes)))

	authors, err := sv.app.archive.GetTopAuthors("", 5)
	if err != nil {
		sv.app.logger.Warn("Failed to load top authors: %v", err)
	} else if len(authors) > 0 {
		names := make([]string, 0, len(authors))
		for _, a := range authors {
			names = append(names, fmt.Sprintf("%s (%d)", a.Author, a.MessageCount))
		}
		sb.WriteString("\n最活跃: " + strings.Join(names, ", "))
	}

	sv.statsLabel.SetText(sb.String())
}
