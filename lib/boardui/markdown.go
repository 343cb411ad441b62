// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package boardui

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/alecthomas/chroma/v2/quick"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
	"github.com/muesli/termenv"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	extast "github.com/yuin/goldmark/extension/ast"
	"github.com/yuin/goldmark/text"
)

var (
	markdownParser     goldmark.Markdown
	markdownParserOnce sync.Once
)

func getMarkdownParser() goldmark.Markdown {
	markdownParserOnce.Do(func() {
		markdownParser = goldmark.New(
			goldmark.WithExtensions(
				extension.Strikethrough,
				extension.Linkify,
				extension.TaskList,
			),
		)
	})
	return markdownParser
}

// renderMarkdown renders an answer for the terminal, wrapped to width
// columns. Soft line breaks become spaces so hard-wrapped answers
// reflow. Fenced code blocks with a language are highlighted.
func renderMarkdown(input string, theme Theme, width int) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	source := []byte(input)
	document := getMarkdownParser().Parser().Parse(text.NewReader(source))

	// Output always goes to the dashboard, so colors are forced rather
	// than detected from the environment.
	renderer := lipgloss.NewRenderer(io.Discard, termenv.WithProfile(termenv.ANSI256))
	renderer.SetColorProfile(termenv.ANSI256)

	writer := &markdownWriter{source: source, theme: theme, renderer: renderer}
	lines := writer.blocks(document, max(width, 10))
	for len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return strings.Join(lines, "\n")
}

type markdownWriter struct {
	source   []byte
	theme    Theme
	renderer *lipgloss.Renderer
}

func (writer *markdownWriter) style() lipgloss.Style {
	return writer.renderer.NewStyle()
}

// blocks renders the block children of parent into lines no wider
// than width. Each block except tight list items is followed by a
// blank line.
func (writer *markdownWriter) blocks(parent ast.Node, width int) []string {
	var lines []string
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		switch node := node.(type) {
		case *ast.Paragraph:
			lines = append(lines, writer.wrap(writer.inline(node), width)...)
			lines = append(lines, "")

		case *ast.TextBlock:
			lines = append(lines, writer.wrap(writer.inline(node), width)...)

		case *ast.Heading:
			heading := writer.style().Bold(true).Foreground(writer.theme.HeaderForeground).
				Render(ansi.Strip(writer.inline(node)))
			lines = append(lines, writer.wrap(heading, width)...)
			lines = append(lines, "")

		case *ast.FencedCodeBlock:
			lines = append(lines, writer.code(node, string(node.Language(writer.source)), width)...)
			lines = append(lines, "")

		case *ast.CodeBlock:
			lines = append(lines, writer.code(node, "", width)...)
			lines = append(lines, "")

		case *ast.List:
			lines = append(lines, writer.list(node, width)...)
			lines = append(lines, "")

		case *ast.Blockquote:
			bar := writer.style().Foreground(writer.theme.BorderColor).Render("│ ")
			inner := writer.blocks(node, width-2)
			for len(inner) > 0 && inner[len(inner)-1] == "" {
				inner = inner[:len(inner)-1]
			}
			for _, line := range inner {
				lines = append(lines, bar+line)
			}
			lines = append(lines, "")

		case *ast.ThematicBreak:
			lines = append(lines, writer.style().Foreground(writer.theme.BorderColor).Render(strings.Repeat("─", width)), "")

		case *ast.HTMLBlock:
			faint := writer.style().Foreground(writer.theme.FaintText)
			for _, line := range writer.rawLines(node) {
				lines = append(lines, faint.Render(ansi.Truncate(line, width, "…")))
			}
			lines = append(lines, "")

		default:
			lines = append(lines, writer.blocks(node, width)...)
		}
	}
	return lines
}

// list renders list items with a bullet or number hanging in front of
// the first line.
func (writer *markdownWriter) list(list *ast.List, width int) []string {
	var lines []string
	number := list.Start
	if number == 0 {
		number = 1
	}
	for item := list.FirstChild(); item != nil; item = item.NextSibling() {
		marker := "• "
		if list.IsOrdered() {
			marker = fmt.Sprintf("%d. ", number)
			number++
		}
		indent := strings.Repeat(" ", len(marker))
		inner := writer.blocks(item, width-len(marker))
		for len(inner) > 0 && inner[len(inner)-1] == "" {
			inner = inner[:len(inner)-1]
		}
		for index, line := range inner {
			switch {
			case index == 0:
				lines = append(lines, writer.style().Foreground(writer.theme.FaintText).Render(marker)+line)
			case line == "":
				lines = append(lines, "")
			default:
				lines = append(lines, indent+line)
			}
		}
		if !list.IsTight && item.NextSibling() != nil {
			lines = append(lines, "")
		}
	}
	return lines
}

// code renders a code block indented by two columns. Long lines are
// truncated rather than wrapped.
func (writer *markdownWriter) code(node ast.Node, language string, width int) []string {
	code := strings.TrimRight(strings.Join(writer.rawLines(node), "\n"), "\n")
	var highlighted string
	if language != "" {
		var buffer strings.Builder
		if err := quick.Highlight(&buffer, code, language, "terminal256", "monokai"); err == nil {
			highlighted = strings.TrimRight(buffer.String(), "\n")
		}
	}
	var lines []string
	if highlighted == "" {
		faint := writer.style().Foreground(writer.theme.CodeForeground)
		for _, line := range strings.Split(code, "\n") {
			lines = append(lines, "  "+faint.Render(ansi.Truncate(line, width-2, "…")))
		}
		return lines
	}
	for _, line := range strings.Split(highlighted, "\n") {
		lines = append(lines, "  "+ansi.Truncate(line, width-2, "…"))
	}
	return lines
}

// rawLines returns the source lines of a block node.
func (writer *markdownWriter) rawLines(node ast.Node) []string {
	segments := node.Lines()
	lines := make([]string, 0, segments.Len())
	for index := 0; index < segments.Len(); index++ {
		segment := segments.At(index)
		lines = append(lines, strings.TrimRight(string(segment.Value(writer.source)), "\n"))
	}
	return lines
}

// inline renders the inline children of node as one styled string.
// Hard line breaks are kept as newlines.
func (writer *markdownWriter) inline(parent ast.Node) string {
	var builder strings.Builder
	for node := parent.FirstChild(); node != nil; node = node.NextSibling() {
		switch node := node.(type) {
		case *ast.Text:
			builder.WriteString(writer.style().Foreground(writer.theme.NormalText).
				Render(string(node.Segment.Value(writer.source))))
			switch {
			case node.HardLineBreak():
				builder.WriteString("\n")
			case node.SoftLineBreak():
				builder.WriteString(" ")
			}

		case *ast.String:
			builder.WriteString(writer.style().Foreground(writer.theme.NormalText).Render(string(node.Value)))

		case *ast.Emphasis:
			content := ansi.Strip(writer.inline(node))
			style := writer.style().Foreground(writer.theme.NormalText)
			if node.Level >= 2 {
				style = style.Bold(true)
			} else {
				style = style.Italic(true)
			}
			builder.WriteString(style.Render(content))

		case *extast.Strikethrough:
			builder.WriteString(writer.style().Strikethrough(true).Render(ansi.Strip(writer.inline(node))))

		case *ast.CodeSpan:
			builder.WriteString(writer.style().Foreground(writer.theme.CodeForeground).
				Render(ansi.Strip(writer.inline(node))))

		case *ast.Link:
			label := ansi.Strip(writer.inline(node))
			destination := string(node.Destination)
			builder.WriteString(writer.style().Underline(true).Foreground(writer.theme.LinkForeground).Render(label))
			if destination != "" && destination != label {
				builder.WriteString(writer.style().Foreground(writer.theme.FaintText).Render(" (" + destination + ")"))
			}

		case *ast.AutoLink:
			builder.WriteString(writer.style().Underline(true).Foreground(writer.theme.LinkForeground).
				Render(string(node.URL(writer.source))))

		case *ast.Image:
			builder.WriteString(writer.style().Foreground(writer.theme.FaintText).
				Render("[image: " + ansi.Strip(writer.inline(node)) + "]"))

		case *extast.TaskCheckBox:
			if node.IsChecked {
				builder.WriteString("[x] ")
			} else {
				builder.WriteString("[ ] ")
			}

		case *ast.RawHTML:
			faint := writer.style().Foreground(writer.theme.FaintText)
			for index := 0; index < node.Segments.Len(); index++ {
				segment := node.Segments.At(index)
				builder.WriteString(faint.Render(string(segment.Value(writer.source))))
			}

		default:
			builder.WriteString(writer.inline(node))
		}
	}
	return builder.String()
}

// wrap word-wraps styled text to width and drops the padding lipgloss
// adds to short lines.
func (writer *markdownWriter) wrap(content string, width int) []string {
	wrapped := lipgloss.NewStyle().Width(width).Render(content)
	lines := strings.Split(wrapped, "\n")
	for index, line := range lines {
		lines[index] = strings.TrimRight(line, " ")
	}
	return lines
}
