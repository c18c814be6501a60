package tui

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Start runs the live view in the alternate screen until the user quits.
func Start(feed *Feed, topic, group string) error {
	p := tea.NewProgram(NewMainModel(feed, topic, group), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
