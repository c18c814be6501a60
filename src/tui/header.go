package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
)

// Header represents the top status bar component.
type Header struct {
	topic       string
	group       string
	total       int
	shown       int
	follow      bool
	closed      bool
	searchQuery string
	searchMode  bool
	styles      *StyleConfig
}

// NewHeader creates a new header with default styles
func NewHeader(topic, group string) Header {
	return Header{
		topic:  topic,
		group:  group,
		follow: true,
		styles: DefaultStyles(),
	}
}

// SetCounts updates the number of records received and shown.
func (h *Header) SetCounts(total, shown int) {
	h.total = total
	h.shown = shown
}

func (h *Header) SetFollow(follow bool) {
	h.follow = follow
}

func (h *Header) SetClosed(closed bool) {
	h.closed = closed
}

// SetSearch updates the search state
func (h *Header) SetSearch(query string, mode bool) {
	h.searchQuery = query
	h.searchMode = mode
}

// Render renders the header
func (h Header) Render(width int) string {
	statusStyle := lipgloss.NewStyle().
		Foreground(h.styles.PrimaryBlue).
		Bold(true).
		Padding(0, 2)

	status := statusStyle.Render(fmt.Sprintf("%s ▸ %s", h.topic, h.group))

	countText := fmt.Sprintf("%d records", h.total)
	if h.shown != h.total {
		countText = fmt.Sprintf("%d of %d records", h.shown, h.total)
	}
	counts := statusStyle.Render(countText)

	var modeText string
	modeStyle := lipgloss.NewStyle().Padding(0, 2).Foreground(h.styles.TextSecondary)
	switch {
	case h.closed:
		modeText = "stopped"
		modeStyle = modeStyle.Foreground(h.styles.WarningColor)
	case h.follow:
		modeText = "following"
	default:
		modeText = "paused"
	}
	mode := modeStyle.Render(modeText)

	var searchText string
	if h.searchMode {
		searchText = fmt.Sprintf("Search: %s█", h.searchQuery)
	} else if h.searchQuery != "" {
		searchText = fmt.Sprintf("Search: %s", h.searchQuery)
	} else {
		searchText = "[/] to search"
	}

	searchStyle := lipgloss.NewStyle().
		Foreground(h.styles.TextSecondary).
		Padding(0, 2)
	if h.searchMode {
		searchStyle = searchStyle.Foreground(h.styles.PrimaryBlue)
	}
	search := searchStyle.Render(searchText)

	content := lipgloss.JoinHorizontal(lipgloss.Left, status, counts, mode, search)

	headerStyle := lipgloss.NewStyle().
		Background(h.styles.DarkBackground).
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderForeground(h.styles.BorderColor).
		Width(width)

	return headerStyle.Render(content)
}
