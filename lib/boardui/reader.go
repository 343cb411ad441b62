// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// readerChromeLines is the header line plus the status bar around the
// reader viewport.
const readerChromeLines = 2

// openReader shows question id full screen.
func (model *Model) openReader(id int64) {
	model.focusRegion = FocusReader
	model.readerID = id
	model.reader = viewport.New(max(model.width, 1), max(model.height-readerChromeLines, 1))
	model.renderReader()
	model.reader.GotoTop()
}

// renderReader re-renders the reader content from the current
// snapshot, keeping the scroll position where the content allows.
func (model *Model) renderReader() {
	model.reader.Width = max(model.width, 1)
	model.reader.Height = max(model.height-readerChromeLines, 1)
	offset := model.reader.YOffset
	model.reader.SetContent(model.readerContent())
	model.reader.SetYOffset(offset)
}

// readerContent is the scrollable body: the full message, then the
// answer rendered as markdown.
func (model Model) readerContent() string {
	width := max(model.width-2, 10)
	q, ok := model.snapshot.Get(model.readerID)
	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	if !ok {
		return " " + faint.Render(fmt.Sprintf("Question #%d is no longer on the board.", model.readerID))
	}

	var lines []string
	message := lipgloss.NewStyle().Width(width).Foreground(model.theme.NormalText).Render(q.Message)
	lines = append(lines, strings.Split(message, "\n")...)
	lines = append(lines, "")

	heading := lipgloss.NewStyle().Bold(true).Foreground(model.theme.StatusAnswered).Render("Answer")
	lines = append(lines, heading)
	if q.Answered() {
		lines = append(lines, strings.Split(renderMarkdown(q.Answer, model.theme, width), "\n")...)
	} else {
		lines = append(lines, faint.Render("No answer yet"))
	}
	if !q.UpdatedAt.IsZero() {
		lines = append(lines, "", faint.Render("updated "+q.UpdatedAt.Local().Format("2006-01-02 15:04")))
	}

	for index, line := range lines {
		lines[index] = " " + line
	}
	return strings.Join(lines, "\n")
}

// handleReaderKeys scrolls the reader. Close returns to the list.
func (model *Model) handleReaderKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case message.Type == tea.KeyCtrlC:
		return *model, tea.Quit
	case key.Matches(message, model.keys.Close):
		model.focusRegion = FocusList
		return *model, nil
	case key.Matches(message, model.keys.Top):
		model.reader.GotoTop()
		return *model, nil
	case key.Matches(message, model.keys.Bottom):
		model.reader.GotoBottom()
		return *model, nil
	}
	var command tea.Cmd
	model.reader, command = model.reader.Update(message)
	return *model, command
}

// readerView renders the reader screen: a header naming the question,
// the viewport, and a status bar.
func (model Model) readerView() string {
	header := fmt.Sprintf(" #%d", model.readerID)
	if q, ok := model.snapshot.Get(model.readerID); ok {
		status := lipgloss.NewStyle().Foreground(model.theme.StatusColor(q.Status)).Render(string(q.Status))
		header += " · " + status + " · by " + authorLabel(q)
		if !q.CreatedAt.IsZero() {
			header += " · asked " + q.CreatedAt.Local().Format("2006-01-02 15:04")
		}
	}
	right := lipgloss.NewStyle().
		Foreground(model.theme.ConnectionColor(model.connection)).
		Render(connectionLabel(model.connection)) + " "
	headerLine := lipgloss.NewStyle().Bold(true).Foreground(model.theme.HeaderForeground).Render(header)
	if gap := model.width - lipgloss.Width(headerLine) - lipgloss.Width(right); gap >= 1 {
		headerLine += strings.Repeat(" ", gap) + right
	}

	statusBar := model.renderStatusBar()
	if model.mutationError == "" && model.notice == "" && model.logLine == "" {
		help := fmt.Sprintf(" %s %s · j/k scroll · %3.0f%%",
			model.keys.Close.Help().Key, model.keys.Close.Help().Desc, model.reader.ScrollPercent()*100)
		statusBar = model.fit(lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(help))
	}

	return strings.Join([]string{model.fit(headerLine), model.reader.View(), statusBar}, "\n")
}

// ReadingQuestion returns the id of the question open in the reader.
func (model Model) ReadingQuestion() (int64, bool) {
	return model.readerID, model.focusRegion == FocusReader
}
