package main

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/debemdeboas/the-notes/internal/model"
)

const timeLayout = "2006-01-02 15:04"

var (
	idStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	promptStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("212")).Bold(true)
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
)

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format(timeLayout)
}

func printList(w io.Writer, list []model.Note) {
	if len(list) == 0 {
		fmt.Fprintln(w, dimStyle.Render("No notes found"))
		return
	}

	width := 0
	for _, n := range list {
		width = max(width, len(n.ID))
	}
	for _, n := range list {
		id := string(n.ID) + strings.Repeat(" ", width-len(n.ID))
		fmt.Fprintf(w, "%s  %s  %s\n",
			idStyle.Render(id),
			dimStyle.Render(formatTime(n.UpdatedAt)),
			titleStyle.Render(n.Title))
	}
}

func printNote(w io.Writer, n model.Note) {
	fmt.Fprintln(w, titleStyle.Render(n.Title))
	fmt.Fprintln(w, dimStyle.Render(fmt.Sprintf("id %s, created %s, last updated %s",
		n.ID, formatTime(n.CreatedAt), formatTime(n.UpdatedAt))))
	if n.Content != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, n.Content)
	}
}
