// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines all key bindings for the board dashboard.
type KeyMap struct {
	// List navigation.
	Up     key.Binding
	Down   key.Binding
	Top    key.Binding
	Bottom key.Binding

	// MoreResults reveals the next page of the active tab.
	MoreResults key.Binding

	// Tab switching.
	TabAll       key.Binding
	TabPending   key.Binding
	TabEscalated key.Binding
	TabAnswered  key.Binding
	NextTab      key.Binding
	PreviousTab  key.Binding

	// Open shows the selected question full screen; Close returns
	// to the list.
	Open  key.Binding
	Close key.Binding

	// Search.
	SearchActivate key.Binding
	SearchClear    key.Binding

	// Refresh re-fetches the full collection.
	Refresh key.Binding

	// Ask is open to everyone.
	Ask key.Binding

	// Admin actions on the selected question.
	Answer       key.Binding
	Escalate     key.Binding
	MarkAnswered key.Binding
	MarkPending  key.Binding

	// Text entry (search bar and compose line).
	Submit key.Binding
	Cancel key.Binding

	Quit key.Binding
}

// DefaultKeyMap is the built-in key binding set.
var DefaultKeyMap = KeyMap{
	Up: key.NewBinding(
		key.WithKeys("k", "up"),
		key.WithHelp("k/↑", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("j", "down"),
		key.WithHelp("j/↓", "down"),
	),
	Top: key.NewBinding(
		key.WithKeys("g", "home"),
		key.WithHelp("g", "top"),
	),
	Bottom: key.NewBinding(
		key.WithKeys("G", "end"),
		key.WithHelp("G", "bottom"),
	),
	MoreResults: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "more"),
	),
	TabAll: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "all"),
	),
	TabPending: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "pending"),
	),
	TabEscalated: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "escalated"),
	),
	TabAnswered: key.NewBinding(
		key.WithKeys("4"),
		key.WithHelp("4", "answered"),
	),
	NextTab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next tab"),
	),
	PreviousTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "previous tab"),
	),
	Open: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "read"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc", "q"),
		key.WithHelp("esc", "back"),
	),
	SearchActivate: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	SearchClear: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "clear search"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "refresh"),
	),
	Ask: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "ask"),
	),
	Answer: key.NewBinding(
		key.WithKeys("A"),
		key.WithHelp("A", "answer"),
	),
	Escalate: key.NewBinding(
		key.WithKeys("e"),
		key.WithHelp("e", "escalate"),
	),
	MarkAnswered: key.NewBinding(
		key.WithKeys("m"),
		key.WithHelp("m", "mark answered"),
	),
	MarkPending: key.NewBinding(
		key.WithKeys("p"),
		key.WithHelp("p", "mark pending"),
	),
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "submit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// helpBindings returns the bindings shown in the status bar. Admin
// actions are listed only for admins.
func (keys KeyMap) helpBindings(admin bool) []key.Binding {
	bindings := []key.Binding{
		keys.Up, keys.Down, keys.Open, keys.TabAll, keys.TabPending, keys.TabEscalated, keys.TabAnswered,
		keys.SearchActivate, keys.MoreResults, keys.Refresh, keys.Ask,
	}
	if admin {
		bindings = append(bindings, keys.Answer, keys.Escalate, keys.MarkAnswered, keys.MarkPending)
	}
	return append(bindings, keys.Quit)
}
