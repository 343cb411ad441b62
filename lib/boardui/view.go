// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/questionview"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// detailLines is the height of the detail section under the list.
const detailLines = 3

// tabLabels maps each tab to its header label.
var tabLabels = map[questionview.Tab]string{
	questionview.TabAll:       "All",
	questionview.TabPending:   "Pending",
	questionview.TabEscalated: "Escalated",
	questionview.TabAnswered:  "Answered",
}

// searchBarVisible reports whether the search bar occupies a row.
func (model Model) searchBarVisible() bool {
	return model.focusRegion == FocusSearch || model.search.Value() != ""
}

// listHeight returns the rows available to the list area: everything
// except the tab bar, the optional search bar, the divider, the detail
// section, and the status bar.
func (model Model) listHeight() int {
	chrome := 1 + 1 + detailLines + 1
	if model.searchBarVisible() {
		chrome++
	}
	return max(model.height-chrome, 1)
}

// listRows returns how many question rows fit in the list area. One
// row is reserved for the "more" line when the tab has unrevealed
// questions.
func (model Model) listRows() int {
	rows := model.listHeight()
	if model.pager.HasMore(model.activeTab, len(model.views.Tab(model.activeTab))) && rows > 1 {
		rows--
	}
	return rows
}

// View implements tea.Model.
func (model Model) View() string {
	if !model.ready {
		return ""
	}
	if model.focusRegion == FocusReader {
		return model.readerView()
	}

	lines := []string{model.renderTabBar()}
	if model.searchBarVisible() {
		lines = append(lines, model.fit(model.search.View()))
	}
	lines = append(lines, model.renderList()...)
	lines = append(lines, lipgloss.NewStyle().
		Foreground(model.theme.BorderColor).
		Render(strings.Repeat("─", max(model.width, 1))))
	lines = append(lines, model.renderDetail()...)
	lines = append(lines, model.renderStatusBar())
	return strings.Join(lines, "\n")
}

// fit truncates a possibly styled line to the terminal width.
func (model Model) fit(line string) string {
	return ansi.Truncate(line, model.width, "…")
}

func (model Model) renderTabBar() string {
	activeStyle := lipgloss.NewStyle().
		Bold(true).
		Underline(true).
		Foreground(model.theme.HeaderForeground)
	inactiveStyle := lipgloss.NewStyle().Foreground(model.theme.FaintText)

	var labels []string
	for _, tab := range questionview.Tabs {
		label := fmt.Sprintf("%s %d", tabLabels[tab], len(model.views.Tab(tab)))
		if tab == model.activeTab {
			labels = append(labels, activeStyle.Render(label))
		} else {
			labels = append(labels, inactiveStyle.Render(label))
		}
	}
	left := " " + strings.Join(labels, "  ")

	right := lipgloss.NewStyle().
		Foreground(model.theme.ConnectionColor(model.connection)).
		Render(connectionLabel(model.connection)) + " "

	gap := model.width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 1 {
		return model.fit(left)
	}
	return left + strings.Repeat(" ", gap) + right
}

// connectionLabel is the indicator text for a push connection state.
func connectionLabel(state pushconn.State) string {
	switch state {
	case pushconn.Open:
		return "● live"
	case pushconn.Connecting:
		return "◌ connecting"
	case pushconn.Closing:
		return "○ closing"
	default:
		return "○ reconnecting"
	}
}

func (model Model) renderList() []string {
	height := model.listHeight()
	lines := make([]string, 0, height)

	all := model.views.Tab(model.activeTab)
	rows := model.visible()
	switch {
	case len(rows) == 0:
		lines = append(lines, model.fit(" "+model.emptyMessage()))
	default:
		end := min(model.scrollOffset+model.listRows(), len(rows))
		for index := model.scrollOffset; index < end; index++ {
			lines = append(lines, model.renderRow(rows[index], index == model.cursor))
		}
		if model.pager.HasMore(model.activeTab, len(all)) {
			more := fmt.Sprintf(" … %d more, press %s", len(all)-len(rows), model.keys.MoreResults.Help().Key)
			lines = append(lines, model.fit(lipgloss.NewStyle().Foreground(model.theme.FaintText).Render(more)))
		}
	}

	for len(lines) < height {
		lines = append(lines, "")
	}
	return lines
}

// emptyMessage explains an empty list area.
func (model Model) emptyMessage() string {
	if model.snapshot.Len() == 0 {
		if model.loading {
			return model.spinner.View() + " Loading questions..."
		}
		if model.loadError != "" {
			return fmt.Sprintf("Failed to load questions: %s. Press %s to retry.",
				model.loadError, model.keys.Refresh.Help().Key)
		}
	}
	if search := model.search.Value(); search != "" {
		return fmt.Sprintf("No questions match %q", search)
	}
	return "No questions"
}

// renderRow renders one list row: id, status, message, author. The
// selected row is drawn without inner styles so its background spans
// the full width.
func (model Model) renderRow(q question.Question, selected bool) string {
	id := fmt.Sprintf(" #%-4d", q.ID)
	status := fmt.Sprintf("%-9s", q.Status)
	message := flatten(q.Message)
	author := " · " + authorLabel(q)

	if selected {
		line := ansi.Truncate(id+" "+status+" "+message+author, model.width, "…")
		return lipgloss.NewStyle().
			Background(model.theme.SelectedBackground).
			Foreground(model.theme.SelectedForeground).
			Width(model.width).
			Render(line)
	}

	faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
	line := faint.Render(id) + " " +
		lipgloss.NewStyle().Foreground(model.theme.StatusColor(q.Status)).Render(status) + " " +
		model.highlight(message) +
		faint.Render(author)
	return model.fit(line)
}

// highlight marks the part of text that matched the search.
func (model Model) highlight(text string) string {
	normal := lipgloss.NewStyle().Foreground(model.theme.NormalText)
	start, end, ok := questionview.MatchRange(text, model.search.Value())
	if !ok {
		return normal.Render(text)
	}
	runes := []rune(text)
	if end > len(runes) {
		return normal.Render(text)
	}
	match := lipgloss.NewStyle().
		Foreground(model.theme.SelectedForeground).
		Background(model.theme.SearchHighlightBackground)
	return normal.Render(string(runes[:start])) +
		match.Render(string(runes[start:end])) +
		normal.Render(string(runes[end:]))
}

// renderDetail shows the selected question's metadata, full message,
// and answer.
func (model Model) renderDetail() []string {
	lines := make([]string, 0, detailLines)
	if selected, ok := model.selected(); ok {
		faint := lipgloss.NewStyle().Foreground(model.theme.FaintText)
		header := fmt.Sprintf(" #%d by %s", selected.ID, authorLabel(selected))
		if !selected.CreatedAt.IsZero() {
			header += " · asked " + selected.CreatedAt.Local().Format("2006-01-02 15:04")
		}
		lines = append(lines, model.fit(faint.Render(header)))
		lines = append(lines, model.fit(" "+flatten(selected.Message)))
		if selected.Answered() {
			lines = append(lines, model.fit(
				lipgloss.NewStyle().Foreground(model.theme.StatusAnswered).Render(" Answer: ")+flatten(selected.Answer)))
		} else {
			lines = append(lines, model.fit(faint.Render(" No answer yet")))
		}
	}
	for len(lines) < detailLines {
		lines = append(lines, "")
	}
	return lines
}

// renderStatusBar shows, in priority order: the compose line, a
// mutation error, a notice, a log record, a load error, or the key
// help.
func (model Model) renderStatusBar() string {
	switch {
	case model.focusRegion == FocusCompose:
		return model.fit(model.compose.View())
	case model.mutationError != "":
		return model.fit(lipgloss.NewStyle().Foreground(model.theme.ErrorForeground).Render(" " + model.mutationError))
	case model.notice != "":
		return model.fit(lipgloss.NewStyle().Foreground(model.theme.NoticeForeground).Bold(true).Render(" " + model.notice))
	case model.logLine != "":
		color := model.theme.HelpText
		if model.logLevel >= slog.LevelError {
			color = model.theme.ErrorForeground
		} else if model.logLevel >= slog.LevelWarn {
			color = model.theme.StatusPending
		}
		return model.fit(lipgloss.NewStyle().Foreground(color).Render(" " + model.logLine))
	case model.loadError != "" && model.snapshot.Len() > 0:
		return model.fit(lipgloss.NewStyle().Foreground(model.theme.ErrorForeground).Render(" refresh failed: " + model.loadError))
	}

	var parts []string
	for _, binding := range model.keys.helpBindings(model.isAdmin()) {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return model.fit(lipgloss.NewStyle().Foreground(model.theme.HelpText).Render(" " + strings.Join(parts, " · ")))
}

func authorLabel(q question.Question) string {
	if q.AuthorName == "" {
		return "anonymous"
	}
	return q.AuthorName
}

// flatten collapses whitespace runs, including newlines, to single
// spaces so a message fits on one row.
func flatten(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

func formatID(id int64) string {
	return strconv.FormatInt(id, 10)
}
