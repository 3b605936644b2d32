package views

import (
	"fmt"
	"strings"
)

type AgendaItemData struct {
	Text      string
	Completed bool
	Pinned    bool
	// Span describes a long-term range or repeat rule; empty for plain items.
	Span string
}

type AgendaPanelData struct {
	Day      string
	Weekday  string
	IsToday  bool
	Items    []AgendaItemData
	Cursor   int
	AddView  string
	Adding   bool
	Progress string
}

func RenderAgendaPanel(data AgendaPanelData) string {
	var b strings.Builder
	title := fmt.Sprintf("%s %s", data.Day, data.Weekday)
	if data.IsToday {
		title += " (today)"
	}
	b.WriteString(title + "\n")
	if data.Progress != "" {
		b.WriteString(data.Progress + "\n")
	}
	b.WriteString("\n")

	if len(data.Items) == 0 {
		b.WriteString("  (nothing planned)\n")
	}
	for i, item := range data.Items {
		cursor := "  "
		if i == data.Cursor {
			cursor = cursorStyle.Render("> ")
		}
		check := "[ ]"
		text := item.Text
		if item.Completed {
			check = "[x]"
			text = doneStyle.Render(text)
		}
		line := fmt.Sprintf("%s%2d %s %s", cursor, i+1, check, text)
		if item.Pinned {
			line += " " + badgeStyle.Render("*")
		}
		if item.Span != "" {
			line += " " + badgeStyle.Render("("+item.Span+")")
		}
		b.WriteString(line + "\n")
	}

	if data.Adding {
		b.WriteString("\n" + data.AddView)
	}
	return strings.TrimRight(b.String(), "\n")
}

type SyncStatusData struct {
	Remote   bool
	Online   bool
	Pending  int
	LastSync string
}

func RenderSyncStatus(data SyncStatusData) string {
	if !data.Remote {
		return fmt.Sprintf("local only | pending: %d", data.Pending)
	}
	state := "offline"
	if data.Online {
		state = "online"
	}
	out := fmt.Sprintf("%s | pending: %d", state, data.Pending)
	if data.LastSync != "" {
		out += " | synced " + data.LastSync
	}
	return out
}

func RenderCommandPalette(active bool, inputView string) string {
	if !active {
		return ""
	}
	return "command: " + inputView
}

type HelpPanelData struct {
	Markdown string
	HelpView string
}

func RenderHelpPanel(data HelpPanelData) string {
	return strings.TrimSpace(RenderMarkdown(data.Markdown) + "\n\n" + data.HelpView)
}
