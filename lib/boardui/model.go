// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/questionevent"
	"github.com/bureau-foundation/qaboard/lib/questionstore"
	"github.com/bureau-foundation/qaboard/lib/questionview"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// FocusRegion identifies which part of the dashboard receives
// keyboard input.
type FocusRegion int

const (
	// FocusList routes keys to list navigation and actions.
	FocusList FocusRegion = iota

	// FocusSearch routes keys to the search bar.
	FocusSearch

	// FocusCompose routes keys to the compose line (asking or
	// answering).
	FocusCompose

	// FocusReader routes keys to the full-screen question reader.
	FocusReader
)

type composeKind int

const (
	composeAsk composeKind = iota
	composeAnswer
)

// requestTimeout bounds each refresh and mutation the dashboard
// issues.
const requestTimeout = 30 * time.Second

// noticeFadeDelay is how long notices and mutation errors stay in the
// status bar.
const noticeFadeDelay = 4 * time.Second

// NewQuestionNotice is shown to admins when a question arrives over
// the push channel.
const NewQuestionNotice = "New question arrived"

// changeMsg is delivered when the source's collection changed.
type changeMsg struct{}

// loadResultMsg carries the outcome of a Refresh.
type loadResultMsg struct {
	err error
}

// mutationResultMsg carries the outcome of an ask, answer, or status
// change.
type mutationResultMsg struct {
	notice string
	err    error
}

// mutationErrorFadeMsg clears the mutation error from the status bar.
type mutationErrorFadeMsg struct{}

// noticeFadeMsg clears the notice it was scheduled for. A newer notice
// has a different sequence number and survives.
type noticeFadeMsg struct {
	sequence int
}

// Options configures a Model. Zero values select the defaults.
type Options struct {
	// Keys overrides DefaultKeyMap.
	Keys *KeyMap

	// Theme overrides DefaultTheme.
	Theme *Theme

	// User is the signed-in viewer, or nil when anonymous. Answer and
	// status actions are offered only to admins.
	User *question.User

	// PageSize is the number of questions revealed per page.
	PageSize int
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	source Source
	keys   KeyMap
	theme  Theme
	user   *question.User

	changes  <-chan questionstore.Change
	snapshot *questionstore.Snapshot
	views    questionview.Views
	pager    *questionview.Pager

	width  int
	height int
	ready  bool

	activeTab    questionview.Tab
	cursor       int
	scrollOffset int

	focusRegion   FocusRegion
	search        textinput.Model
	compose       textinput.Model
	composeKind   composeKind
	composeTarget int64
	reader        viewport.Model
	readerID      int64

	loading    bool
	loadError  string
	spinner    spinner.Model
	connection pushconn.State

	notice         string
	noticeSequence int
	mutationError  string
	logLine        string
	logLevel       slog.Level
}

// NewModel creates a dashboard over source. The model subscribes to
// the source immediately so no change between construction and the
// first render is missed.
func NewModel(source Source, options Options) Model {
	keys := DefaultKeyMap
	if options.Keys != nil {
		keys = *options.Keys
	}
	theme := DefaultTheme
	if options.Theme != nil {
		theme = *options.Theme
	}

	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search questions and authors"
	search.CharLimit = 256

	compose := textinput.New()
	compose.CharLimit = 4096

	model := Model{
		source:      source,
		keys:        keys,
		theme:       theme,
		user:        options.User,
		changes:     source.Subscribe(),
		pager:       questionview.NewPager(options.PageSize),
		activeTab:   questionview.TabAll,
		focusRegion: FocusList,
		search:      search,
		compose:     compose,
		loading:     true,
		spinner:     spinner.New(spinner.WithSpinner(spinner.Dot)),
		connection:  source.ConnectionState(),
	}
	model.reload()
	return model
}

// Init implements tea.Model. Starts the change listener, the initial
// fetch, and the loading spinner.
func (model Model) Init() tea.Cmd {
	return tea.Batch(
		listenForChange(model.changes),
		refreshCommand(model.source),
		model.spinner.Tick,
	)
}

// listenForChange blocks until the source reports a change. Returns
// nil when the channel closes, which ends the listening loop.
func listenForChange(channel <-chan questionstore.Change) tea.Cmd {
	return func() tea.Msg {
		if _, ok := <-channel; !ok {
			return nil
		}
		return changeMsg{}
	}
}

func refreshCommand(source Source) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return loadResultMsg{err: source.Refresh(ctx)}
	}
}

func mutationCommand(notice string, run func(context.Context) error) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()
		return mutationResultMsg{notice: notice, err: run(ctx)}
	}
}

// Update implements tea.Model.
func (model Model) Update(message tea.Msg) (tea.Model, tea.Cmd) {
	switch message := message.(type) {
	case tea.KeyMsg:
		switch model.focusRegion {
		case FocusSearch:
			return model.handleSearchKeys(message)
		case FocusCompose:
			return model.handleComposeKeys(message)
		case FocusReader:
			return model.handleReaderKeys(message)
		}
		return model.handleListKeys(message)

	case tea.WindowSizeMsg:
		model.width = message.Width
		model.height = message.Height
		model.ready = true
		model.clampCursor()
		if model.focusRegion == FocusReader {
			model.renderReader()
		}

	case changeMsg:
		model.reload()
		if model.focusRegion == FocusReader {
			model.renderReader()
		}
		return model, listenForChange(model.changes)

	case loadResultMsg:
		model.loading = false
		model.loadError = ""
		if message.err != nil {
			model.loadError = message.err.Error()
		}
		model.reload()
		if model.focusRegion == FocusReader {
			model.renderReader()
		}

	case mutationResultMsg:
		if message.err != nil {
			return model, model.showMutationError(describeError(message.err))
		}
		return model, model.showNotice(message.notice)

	case mutationErrorFadeMsg:
		model.mutationError = ""

	case noticeFadeMsg:
		if message.sequence == model.noticeSequence {
			model.notice = ""
		}

	case pushEventMsg:
		if _, created := message.event.(questionevent.Created); created && model.isAdmin() {
			return model, model.showNotice(NewQuestionNotice)
		}

	case connectionStateMsg:
		model.connection = model.source.ConnectionState()

	case logRecordMsg:
		model.logLine = message.Summary
		model.logLevel = message.Level
		return model, tea.Tick(logRecordFadeDelay, func(time.Time) tea.Msg {
			return logRecordFadeMsg{}
		})

	case logRecordFadeMsg:
		model.logLine = ""

	case spinner.TickMsg:
		if !model.loading {
			return model, nil
		}
		var command tea.Cmd
		model.spinner, command = model.spinner.Update(message)
		return model, command
	}
	return model, nil
}

func (model *Model) handleListKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Quit):
		return *model, tea.Quit

	case key.Matches(message, model.keys.Up):
		model.moveCursor(-1)
	case key.Matches(message, model.keys.Down):
		model.moveCursor(1)
	case key.Matches(message, model.keys.Top):
		model.moveCursor(-model.cursor)
	case key.Matches(message, model.keys.Bottom):
		model.moveCursor(len(model.visible()) - 1 - model.cursor)

	case key.Matches(message, model.keys.MoreResults):
		model.pager.RevealNext(model.activeTab, len(model.views.Tab(model.activeTab)))

	case key.Matches(message, model.keys.TabAll):
		model.switchTab(questionview.TabAll)
	case key.Matches(message, model.keys.TabPending):
		model.switchTab(questionview.TabPending)
	case key.Matches(message, model.keys.TabEscalated):
		model.switchTab(questionview.TabEscalated)
	case key.Matches(message, model.keys.TabAnswered):
		model.switchTab(questionview.TabAnswered)
	case key.Matches(message, model.keys.NextTab):
		model.switchTab(model.adjacentTab(1))
	case key.Matches(message, model.keys.PreviousTab):
		model.switchTab(model.adjacentTab(-1))

	case key.Matches(message, model.keys.Open):
		if selected, ok := model.selected(); ok {
			model.openReader(selected.ID)
		}

	case key.Matches(message, model.keys.SearchActivate):
		model.focusRegion = FocusSearch
		model.search.CursorEnd()
		return *model, model.search.Focus()

	case key.Matches(message, model.keys.SearchClear):
		if model.search.Value() != "" {
			model.search.SetValue("")
			model.searchChanged()
		}

	case key.Matches(message, model.keys.Refresh):
		if model.loading {
			return *model, nil
		}
		model.loading = true
		return *model, tea.Batch(refreshCommand(model.source), model.spinner.Tick)

	case key.Matches(message, model.keys.Ask):
		return *model, model.startCompose(composeAsk, 0, "", "Ask a question")

	case key.Matches(message, model.keys.Answer):
		selected, ok := model.selected()
		if !ok {
			return *model, nil
		}
		if !model.isAdmin() {
			return *model, model.showMutationError("answering requires an admin account")
		}
		return *model, model.startCompose(composeAnswer, selected.ID, selected.Answer, "Answer question #"+formatID(selected.ID))

	case key.Matches(message, model.keys.Escalate):
		return *model, model.changeStatus(question.StatusEscalated)
	case key.Matches(message, model.keys.MarkAnswered):
		return *model, model.changeStatus(question.StatusAnswered)
	case key.Matches(message, model.keys.MarkPending):
		return *model, model.changeStatus(question.StatusPending)
	}
	return *model, nil
}

// handleSearchKeys routes input to the search bar. Enter keeps the
// search and returns to the list; Esc clears it.
func (model *Model) handleSearchKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Submit):
		model.focusRegion = FocusList
		model.search.Blur()
		return *model, nil
	case key.Matches(message, model.keys.Cancel):
		model.focusRegion = FocusList
		model.search.Blur()
		model.search.SetValue("")
		model.searchChanged()
		return *model, nil
	}

	before := model.search.Value()
	var command tea.Cmd
	model.search, command = model.search.Update(message)
	if model.search.Value() != before {
		model.searchChanged()
	}
	return *model, command
}

// handleComposeKeys routes input to the compose line. Enter submits
// and Esc abandons the draft.
func (model *Model) handleComposeKeys(message tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(message, model.keys.Submit):
		text := model.compose.Value()
		model.endCompose()
		return *model, model.submitCompose(text)
	case key.Matches(message, model.keys.Cancel):
		model.endCompose()
		return *model, nil
	}

	var command tea.Cmd
	model.compose, command = model.compose.Update(message)
	return *model, command
}

func (model *Model) startCompose(kind composeKind, target int64, initial, prompt string) tea.Cmd {
	model.focusRegion = FocusCompose
	model.composeKind = kind
	model.composeTarget = target
	model.compose.Prompt = prompt + ": "
	model.compose.SetValue(initial)
	model.compose.CursorEnd()
	return model.compose.Focus()
}

func (model *Model) endCompose() {
	model.focusRegion = FocusList
	model.compose.Blur()
	model.compose.SetValue("")
}

func (model *Model) submitCompose(text string) tea.Cmd {
	source := model.source
	switch model.composeKind {
	case composeAsk:
		return mutationCommand("Question submitted", func(ctx context.Context) error {
			_, err := source.Create(ctx, text)
			return err
		})
	case composeAnswer:
		id := model.composeTarget
		return mutationCommand("Answer saved", func(ctx context.Context) error {
			_, err := source.Answer(ctx, id, text)
			return err
		})
	}
	return nil
}

// changeStatus issues a status change for the selected question.
func (model *Model) changeStatus(status question.Status) tea.Cmd {
	selected, ok := model.selected()
	if !ok || selected.Status == status {
		return nil
	}
	if !model.isAdmin() {
		return model.showMutationError("changing status requires an admin account")
	}
	source := model.source
	return mutationCommand("Marked "+string(status), func(ctx context.Context) error {
		_, err := source.SetStatus(ctx, selected.ID, status)
		return err
	})
}

func (model *Model) showNotice(notice string) tea.Cmd {
	if notice == "" {
		return nil
	}
	model.noticeSequence++
	model.notice = notice
	sequence := model.noticeSequence
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return noticeFadeMsg{sequence: sequence}
	})
}

func (model *Model) showMutationError(text string) tea.Cmd {
	model.mutationError = text
	return tea.Tick(noticeFadeDelay, func(time.Time) tea.Msg {
		return mutationErrorFadeMsg{}
	})
}

// describeError returns the text shown for a failed request. Context
// errors get a friendlier wording than the transport chain.
func describeError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "request timed out"
	}
	return err.Error()
}

func (model Model) isAdmin() bool {
	return model.user != nil && model.user.IsAdmin
}

// reload re-projects the current snapshot. A new snapshot version or
// search text returns every tab to its first page.
func (model *Model) reload() {
	model.snapshot = model.source.Snapshot()
	search := model.search.Value()
	model.views = questionview.Project(model.snapshot.Questions(), search)
	model.pager.Sync(model.snapshot.Version(), search)
	model.clampCursor()
}

func (model *Model) searchChanged() {
	model.cursor = 0
	model.scrollOffset = 0
	model.reload()
}

// visible returns the revealed rows of the active tab.
func (model Model) visible() []question.Question {
	return model.pager.Visible(model.activeTab, model.views.Tab(model.activeTab))
}

func (model Model) selected() (question.Question, bool) {
	rows := model.visible()
	if model.cursor < 0 || model.cursor >= len(rows) {
		return question.Question{}, false
	}
	return rows[model.cursor], true
}

func (model *Model) switchTab(tab questionview.Tab) {
	if tab == model.activeTab {
		return
	}
	model.activeTab = tab
	model.cursor = 0
	model.scrollOffset = 0
}

func (model Model) adjacentTab(step int) questionview.Tab {
	for index, tab := range questionview.Tabs {
		if tab == model.activeTab {
			count := len(questionview.Tabs)
			return questionview.Tabs[((index+step)%count+count)%count]
		}
	}
	return questionview.TabAll
}

// moveCursor moves the selection by delta rows, revealing the next
// page when the cursor nears the end of the revealed rows.
func (model *Model) moveCursor(delta int) {
	model.cursor += delta
	model.pager.Scrolled(model.activeTab, max(model.cursor, 0), len(model.views.Tab(model.activeTab)))
	model.clampCursor()
}

// clampCursor keeps the cursor on a visible row and scrolls the list
// so the cursor row is on screen.
func (model *Model) clampCursor() {
	count := len(model.visible())
	if model.cursor >= count {
		model.cursor = count - 1
	}
	if model.cursor < 0 {
		model.cursor = 0
	}

	rows := model.listRows()
	if model.cursor < model.scrollOffset {
		model.scrollOffset = model.cursor
	}
	if model.cursor >= model.scrollOffset+rows {
		model.scrollOffset = model.cursor - rows + 1
	}
	if maxOffset := max(count-rows, 0); model.scrollOffset > maxOffset {
		model.scrollOffset = maxOffset
	}
}

// SearchText returns the current search input.
func (model Model) SearchText() string {
	return model.search.Value()
}

// ActiveTab returns the tab being displayed.
func (model Model) ActiveTab() questionview.Tab {
	return model.activeTab
}
