// Package cli provides styled terminal output using lipgloss.
package cli

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ltanh/qrflow/internal/model"
)

var (
	// PrimaryColor is the main theme color.
	PrimaryColor = lipgloss.Color("#5B8DEF")
	// SuccessColor indicates successful operations.
	SuccessColor = lipgloss.Color("#4ECDC4")
	// WarningColor indicates warnings or caution messages.
	WarningColor = lipgloss.Color("#FFE66D")
	// ErrorColor indicates errors or failure messages.
	ErrorColor = lipgloss.Color("#FF6B6B")
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

	// SubtleStyle formats less prominent text.
	SubtleStyle = lipgloss.NewStyle().
			Foreground(SubtleColor)

	// TableHeaderStyle is used for table headers.
	TableHeaderStyle = lipgloss.NewStyle().
				Bold(true).
				BorderStyle(lipgloss.NormalBorder()).
				BorderBottom(true).
				BorderForeground(lipgloss.Color("#333"))

	// TableCellStyle formats table cells with appropriate padding.
	TableCellStyle = lipgloss.NewStyle().
			PaddingRight(2)
)

// Icons.
const (
	SuccessIcon = "✓"
	ErrorIcon   = "✗"
	WarningIcon = "⚠️"
	ScanIcon    = "📷"
	SyncIcon    = "🔄"
)

// Icons keyed by code kind, shown next to classification output.
var kindIcons = map[model.CodeKind]string{
	model.KindWifi:    "📶",
	model.KindURL:     "🔗",
	model.KindBank:    "🏦",
	model.KindEwallet: "👛",
	model.KindCard:    "💳",
	model.KindUnknown: "❔",
}

// KindIcon returns the display icon for a code kind.
func KindIcon(kind model.CodeKind) string {
	if icon, ok := kindIcons[kind]; ok {
		return icon
	}
	return kindIcons[model.KindUnknown]
}

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

// FormatTitle formats a section title.
func FormatTitle(title string) string {
	return TitleStyle.Render(ScanIcon + " " + title)
}

// FormatClassification renders one classification line for scan output.
func FormatClassification(result model.ClassificationResult) string {
	return KindIcon(result.Kind) + " " +
		string(result.Kind) + "  " +
		SubtleStyle.Render(result.DisplayLabel)
}

// RenderRecordTable renders records as an aligned table for list views.
func RenderRecordTable(records []model.QRRecord) string {
	if len(records) == 0 {
		return SubtleStyle.Render("no records")
	}

	headers := []string{"ID", "TYPE", "CODE", "ACCOUNT", "UPDATED", "SYNCED"}
	rows := make([][]string, 0, len(records))
	for _, rec := range records {
		synced := ErrorStyle.Render("dirty")
		if rec.Synced {
			synced = SuccessStyle.Render("yes")
		}
		rows = append(rows, []string{
			rec.ID,
			string(rec.Type),
			rec.Code,
			rec.AccountName,
			rec.UpdatedAt.Format("2006-01-02 15:04"),
			synced,
		})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if w := lipgloss.Width(cell); w > widths[i] {
				widths[i] = w
			}
		}
	}

	var b strings.Builder
	for i, h := range headers {
		b.WriteString(TableHeaderStyle.Render(pad(h, widths[i])))
		b.WriteString("  ")
	}
	b.WriteString("\n")
	for _, row := range rows {
		for i, cell := range row {
			b.WriteString(TableCellStyle.Render(pad(cell, widths[i])))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func pad(s string, width int) string {
	if gap := width - lipgloss.Width(s); gap > 0 {
		return s + strings.Repeat(" ", gap)
	}
	return s
}
