// Package styles provides terminal color and formatting utilities for
// rayforce-go tooling output: the rayquery shell and the mage build targets.
package styles

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Color palette for rayforce tooling
var (
	Primary = lipgloss.Color("#2D7FF9") // Blue
	Accent  = lipgloss.Color("#F2A93B") // Amber

	SuccessColor = lipgloss.Color("#04B575") // Green
	WarningColor = lipgloss.Color("#FFB347") // Orange
	ErrorColor   = lipgloss.Color("#FF6B6B") // Red
	InfoColor    = lipgloss.Color("#54A6FF") // Light blue

	Text    = lipgloss.Color("#FAFAFA")
	TextDim = lipgloss.Color("#A8A8A8")
)

// Base styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			PaddingTop(1).
			PaddingBottom(1)

	SuccessStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(SuccessColor)

	ErrorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ErrorColor)

	WarningStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(WarningColor)

	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	BoldStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Text)

	DimStyle = lipgloss.NewStyle().
			Foreground(TextDim)

	CodeStyle = lipgloss.NewStyle().
			Foreground(Accent).
			PaddingLeft(1).
			PaddingRight(1)

	tableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary)

	tableCellStyle = lipgloss.NewStyle().
			Foreground(Text)
)

// Convenience functions for commonly used styled text
func Success(text string) string {
	return SuccessStyle.Render("✓ " + text)
}

func Error(text string) string {
	return ErrorStyle.Render("✗ " + text)
}

func Warning(text string) string {
	return WarningStyle.Render("⚠ " + text)
}

func Info(text string) string {
	return InfoStyle.Render("ℹ " + text)
}

func Header(text string) string {
	return HeaderStyle.Render("⚡ " + text)
}

func Bold(text string) string {
	return BoldStyle.Render(text)
}

func Dim(text string) string {
	return DimStyle.Render(text)
}

func Code(text string) string {
	return CodeStyle.Render(text)
}

func Example(command, description string) string {
	return "  " + Code(command) + " - " + Dim(description)
}

// Session renders a connection session id for prompts and error output.
func Session(id string) string {
	return DimStyle.Render("[" + id + "]")
}

// RowCount renders a result summary line.
func RowCount(rows int) string {
	noun := "rows"
	if rows == 1 {
		noun = "row"
	}
	return DimStyle.Render(fmt.Sprintf("(%d %s)", rows, noun))
}

// RenderTable renders a column-aligned result table: one header of
// name:kind cells followed by the rows.
func RenderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var sb strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = tableHeaderStyle.Render(pad(h, widths[i]))
	}
	sb.WriteString(strings.Join(cells, "  "))
	for _, row := range rows {
		sb.WriteByte('\n')
		for i, cell := range row {
			cells[i] = tableCellStyle.Render(pad(cell, widths[i]))
		}
		sb.WriteString(strings.Join(cells[:len(row)], "  "))
	}
	return sb.String()
}

func pad(s string, w int) string {
	if len(s) >= w {
		return s
	}
	return s + strings.Repeat(" ", w-len(s))
}
