// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/bureau-foundation/qaboard/lib/pushconn"
	"github.com/bureau-foundation/qaboard/lib/schema/question"
)

// Theme defines the color palette for the dashboard. All colors use
// lipgloss ANSI 256-color codes for broad terminal compatibility.
type Theme struct {
	// Text colors.
	NormalText lipgloss.Color
	FaintText  lipgloss.Color

	// Selected row.
	SelectedBackground lipgloss.Color
	SelectedForeground lipgloss.Color

	// Status colors.
	StatusPending   lipgloss.Color
	StatusEscalated lipgloss.Color
	StatusAnswered  lipgloss.Color

	// Connection indicator.
	ConnectionLive lipgloss.Color
	ConnectionDown lipgloss.Color

	// UI chrome.
	HeaderForeground lipgloss.Color
	BorderColor      lipgloss.Color
	HelpText         lipgloss.Color

	// Notices in the status bar.
	NoticeForeground lipgloss.Color
	ErrorForeground  lipgloss.Color

	// SearchHighlightBackground tints the part of a row that matched
	// the search.
	SearchHighlightBackground lipgloss.Color

	// Answer markdown.
	CodeForeground lipgloss.Color
	LinkForeground lipgloss.Color
}

// StatusColor returns the color for a question status, or FaintText
// for anything unrecognized.
func (theme Theme) StatusColor(status question.Status) lipgloss.Color {
	switch status {
	case question.StatusPending:
		return theme.StatusPending
	case question.StatusEscalated:
		return theme.StatusEscalated
	case question.StatusAnswered:
		return theme.StatusAnswered
	default:
		return theme.FaintText
	}
}

// ConnectionColor returns the indicator color for a push connection
// state.
func (theme Theme) ConnectionColor(state pushconn.State) lipgloss.Color {
	if state == pushconn.Open {
		return theme.ConnectionLive
	}
	return theme.ConnectionDown
}

// DefaultTheme is the built-in dark-terminal color scheme.
var DefaultTheme = Theme{
	NormalText: lipgloss.Color("252"),
	FaintText:  lipgloss.Color("245"),

	SelectedBackground: lipgloss.Color("236"),
	SelectedForeground: lipgloss.Color("255"),

	StatusPending:   lipgloss.Color("220"), // amber
	StatusEscalated: lipgloss.Color("196"), // red
	StatusAnswered:  lipgloss.Color("114"), // green

	ConnectionLive: lipgloss.Color("114"),
	ConnectionDown: lipgloss.Color("208"),

	HeaderForeground: lipgloss.Color("255"),
	BorderColor:      lipgloss.Color("240"),
	HelpText:         lipgloss.Color("241"),

	NoticeForeground: lipgloss.Color("75"),
	ErrorForeground:  lipgloss.Color("196"),

	SearchHighlightBackground: lipgloss.Color("58"),

	CodeForeground: lipgloss.Color("180"),
	LinkForeground: lipgloss.Color("75"),
}
