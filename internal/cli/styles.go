// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/calcman/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#17A2B8")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#28A745")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFC107")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#DC3545")
	// InfoColor indicates informational messages.
	InfoColor = lipgloss.Color("#6F42C1")
	// SubtleColor indicates less prominent UI elements.
	SubtleColor = lipgloss.Color("#666666")

	// TitleStyle is used for section titles.
	TitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor).
			MarginBottom(1)

	// SuccessStyle formats success messages.
	SuccessStyle = lipgloss.NewStyle().
			Foreground(SuccessColor)

	// WarningStyle formats warning messages.
	WarningStyle = lipgloss.NewStyle().
			Foreground(WarningColor)

	// ErrorStyle formats error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(ErrorColor)

	// InfoStyle formats informational messages.
	InfoStyle = lipgloss.NewStyle().
			Foreground(InfoColor)

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// BoldStyle makes text bold.
	BoldStyle = lipgloss.NewStyle().
			Bold(true)

	// BoxStyle is used for bordered content boxes.
	BoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#333")).
			Padding(1, 2)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)

	// PromptStyle is used for user prompts.
	PromptStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(PrimaryColor)
)

// Icons.
const (
	SuccessIcon    = "✓"
	ErrorIcon      = "✗"
	WarningIcon    = "⚠️"
	InfoIcon       = "ℹ️"
	CalculatorIcon = "🧮"
)

// FormatSuccess formats a success message with icon.
func FormatSuccess(message string) string {
	return SuccessStyle.Render(SuccessIcon + " " + message)
}

// FormatError formats an error message with icon.
func FormatError(message string) string {
	return ErrorStyle.Render(ErrorIcon + " " + message)
}

// FormatWarning formats a warning message with icon.
func FormatWarning(message string) string {
	return WarningStyle.Render(WarningIcon + " " + message)
}

// FormatInfo formats an info message with icon.
func FormatInfo(message string) string {
	return InfoStyle.Render(InfoIcon + " " + message)
}

// FormatTitle formats a title with the calculator icon.
func FormatTitle(title string) string {
	return TitleStyle.Render(CalculatorIcon + " " + title)
}

// FormatPrompt formats a prompt message.
func FormatPrompt(prompt string) string {
	return PromptStyle.Render(prompt + " → ")
}

// RenderBox renders content in a styled box.
func RenderBox(title, content string) string {
	boxTitle := TitleStyle.
		UnsetMargins().
		Render(title)

	boxContent := lipgloss.JoinVertical(
		lipgloss.Left,
		boxTitle,
		content,
	)

	return BoxStyle.Render(boxContent)
}

// RenderTable lays out rows under a header with aligned columns.
func RenderTable(header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i := range min(len(row), len(widths)) {
			widths[i] = max(widths[i], lipgloss.Width(row[i]))
		}
	}

	renderRow := func(cells []string, style lipgloss.Style) string {
		rendered := make([]string, len(widths))
		for i := range widths {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			rendered[i] = TableCellStyle.Width(widths[i] + 2).Render(cell)
		}
		return style.Render(lipgloss.JoinHorizontal(lipgloss.Top, rendered...))
	}

	lines := []string{renderRow(header, TableHeaderStyle)}
	for _, row := range rows {
		lines = append(lines, renderRow(row, lipgloss.NewStyle()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

// RenderCalculators renders the catalog as a table.
func RenderCalculators(defs []model.Definition) string {
	if len(defs) == 0 {
		return SubtleStyle.Render("No calculators configured.")
	}
	rows := make([][]string, 0, len(defs))
	for _, def := range defs {
		rows = append(rows, []string{
			def.ID,
			def.Name,
			def.Slug,
			def.Category,
			formatRange(def.Variables.MinAmount, def.Variables.DefaultAmount, def.Variables.MaxAmount),
			formatRange(def.Variables.MinRate, def.Variables.DefaultRate, def.Variables.MaxRate),
		})
	}
	return RenderTable([]string{"ID", "NAME", "SLUG", "CATEGORY", "AMOUNT", "RATE %"}, rows)
}

// RenderDefinition renders one definition with its rendered SEO text.
func RenderDefinition(def model.Definition, rendered model.RenderedSEO) string {
	var b strings.Builder
	field := func(label, value string) {
		if value == "" {
			value = SubtleStyle.Render("(none)")
		}
		fmt.Fprintf(&b, "%s %s\n", BoldStyle.Render(label+":"), value)
	}

	field("Slug", def.Slug)
	field("Category", def.Category)
	field("Description", def.Description)
	field("Icon", def.Icon)
	field("Color", def.Color)
	field("Amount", formatRange(def.Variables.MinAmount, def.Variables.DefaultAmount, def.Variables.MaxAmount))
	field("Rate", formatRange(def.Variables.MinRate, def.Variables.DefaultRate, def.Variables.MaxRate))
	if def.Sitemap != nil {
		field("Sitemap changefreq", def.Sitemap.ChangeFreq)
		if def.Sitemap.Priority != nil {
			field("Sitemap priority", fmt.Sprintf("%g", *def.Sitemap.Priority))
		}
	}
	b.WriteString("\n")
	field("SEO title", rendered.Title)
	field("SEO description", rendered.Description)
	field("SEO h1", rendered.H1)
	field("SEO keywords", rendered.Keywords)
	if !def.UpdatedAt.IsZero() {
		b.WriteString("\n" + SubtleStyle.Render("Updated "+def.UpdatedAt.Format("2006-01-02 15:04 MST")))
	}

	return RenderBox(def.Name+" ("+def.ID+")", strings.TrimRight(b.String(), "\n"))
}

func formatRange(lo, def, hi float64) string {
	return fmt.Sprintf("%s ≤ %s ≤ %s", formatNumber(lo), formatNumber(def), formatNumber(hi))
}

func formatNumber(v float64) string {
	return strings.TrimSuffix(strings.TrimRight(fmt.Sprintf("%.2f", v), "0"), ".")
}
