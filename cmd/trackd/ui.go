package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"trackd/internal/add"
	"trackd/internal/index"
)

var (
	idStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("213")).Bold(true)
	fileStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	testStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	warnStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("114"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// renderResult formats an add result for the terminal.
func renderResult(result *add.Result) string {
	var sb strings.Builder

	if len(result.Components) == 0 {
		sb.WriteString(dimStyle.Render("Nothing added or updated.") + "\n")
	}
	for _, comp := range result.Components {
		sb.WriteString(successStyle.Render("added") + " " + idStyle.Render(comp.ID) + "\n")
		for _, f := range comp.Files {
			if f.IsTest {
				sb.WriteString("  " + testStyle.Render(f.RelativePath+" (test)") + "\n")
			} else {
				sb.WriteString("  " + fileStyle.Render(f.RelativePath) + "\n")
			}
		}
	}

	if !result.Warnings.Empty() {
		sb.WriteString(warnStyle.Render("warnings:") + "\n")
		ids := make([]string, 0, len(result.Warnings))
		for id := range result.Warnings {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			for _, p := range result.Warnings[id] {
				sb.WriteString("  " + warnStyle.Render(fmt.Sprintf("%s already belongs to %s, skipped", p, id)) + "\n")
			}
		}
	}

	return sb.String()
}

// renderRecord formats one index record for the status command.
func renderRecord(key string, rec *index.Record) string {
	var sb strings.Builder
	sb.WriteString(idStyle.Render(key))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  [%s]", rec.Origin)))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("  %d file(s)", len(rec.Files))))
	if rec.MainFile != "" {
		sb.WriteString(dimStyle.Render("  main: " + rec.MainFile))
	}
	return sb.String()
}

// renderError formats a fatal error.
func renderError(err error) string {
	return errorStyle.Render("Error: ") + err.Error()
}
