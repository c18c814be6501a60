package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Spinner frames for the waiting animation
var spinnerFrames = []string{"⠋", "⠙", "⠹", "⠸", "⠼", "⠴", "⠦", "⠧", "⠇", "⠏"}

// SpinnerTickMsg triggers spinner animation frame advance
type SpinnerTickMsg time.Time

// WaitingModel is shown until the first record arrives.
type WaitingModel struct {
	topic        string
	group        string
	spinnerFrame int
	stopped      bool
}

func NewWaitingModel(topic, group string) WaitingModel {
	return WaitingModel{topic: topic, group: group}
}

// SpinnerTick returns a command that sends SpinnerTickMsg after a delay
func SpinnerTick() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(t time.Time) tea.Msg {
		return SpinnerTickMsg(t)
	})
}

// Stop ends the animation. Further ticks are not rescheduled.
func (m *WaitingModel) Stop() {
	m.stopped = true
}

func (m WaitingModel) Update(msg tea.Msg) (WaitingModel, tea.Cmd) {
	if _, ok := msg.(SpinnerTickMsg); ok && !m.stopped {
		m.spinnerFrame = (m.spinnerFrame + 1) % len(spinnerFrames)
		return m, SpinnerTick()
	}
	return m, nil
}

func (m WaitingModel) View() string {
	if m.stopped {
		return "Consumer stopped before any record arrived."
	}
	spinnerStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")) // Gold
	return fmt.Sprintf("%s Waiting for records on %s (group %s)...",
		spinnerStyle.Render(spinnerFrames[m.spinnerFrame]), m.topic, m.group)
}
