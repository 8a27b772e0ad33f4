// Package cli renders personnel data for the staffsyncctl terminal client.
package cli

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/staffsync/staffsync-api/internal/domain"
	"github.com/staffsync/staffsync-api/internal/service"
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#101F38"))
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	mutedStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#8a94a6"))

	readyBadge    = lipgloss.NewStyle().Foreground(lipgloss.Color("#8BC34A")).Bold(true)
	notReadyBadge = lipgloss.NewStyle().Foreground(lipgloss.Color("#e53935")).Bold(true)
	pendingBadge  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFC107")).Bold(true)
)

var personnelHeaders = []string{"Force No.", "Rank", "Surname", "First Name", "Mustering", "Unit", "Base", "Readiness"}

// ReadinessBadge styles a readiness status for the terminal.
func ReadinessBadge(status domain.ReadinessStatus) string {
	switch status {
	case domain.ReadinessReady:
		return readyBadge.Render("● " + string(status))
	case domain.ReadinessNotReady:
		return notReadyBadge.Render("● " + string(status))
	case domain.ReadinessPending:
		return pendingBadge.Render("● " + string(status))
	default:
		return mutedStyle.Render(string(status))
	}
}

// RenderPersonnel draws one page of the personnel directory.
func RenderPersonnel(page *service.PersonnelPage) string {
	var sb strings.Builder
	sb.WriteString(titleStyle.Render("Personnel"))
	sb.WriteString("\n")

	if len(page.Rows) == 0 {
		sb.WriteString(mutedStyle.Render("no personnel match the filter"))
		sb.WriteString("\n")
		return sb.String()
	}

	rows := make([][]string, 0, len(page.Rows))
	for _, row := range page.Rows {
		rows = append(rows, []string{
			row.ForceNumber,
			row.Rank,
			row.Surname,
			row.FirstName,
			row.MusteringName,
			row.UnitName,
			row.BaseName,
			ReadinessBadge(row.ReadinessStatus),
		})
	}
	sb.WriteString(renderTable(personnelHeaders, rows))
	sb.WriteString(mutedStyle.Render(fmt.Sprintf("page %d of %d, %d members", page.Page, page.TotalPages, page.Total)))
	sb.WriteString("\n")
	return sb.String()
}

func renderTable(headers []string, rows [][]string) string {
	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}
	// padding
	for i := range widths {
		widths[i] += 2
	}

	sep := mutedStyle.Render("│")
	var sb strings.Builder
	for i, h := range headers {
		if i > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(headerStyle.Width(widths[i]).Render(h))
	}
	sb.WriteString("\n")

	total := len(headers) - 1
	for _, w := range widths {
		total += w
	}
	sb.WriteString(mutedStyle.Render(strings.Repeat("─", total)))
	sb.WriteString("\n")

	for _, row := range rows {
		for i, cell := range row {
			if i >= len(widths) {
				break
			}
			if i > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(cellStyle.Width(widths[i]).Render(cell))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
