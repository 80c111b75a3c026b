package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Run starts the browser in the alternate screen and blocks until it exits.
func Run(ctx context.Context, source Source, pageSize int, start View) error {
	p := tea.NewProgram(NewModel(ctx, source, pageSize).WithView(start), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("browser failed: %w", err)
	}
	return nil
}
