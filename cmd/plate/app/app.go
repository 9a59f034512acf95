package app

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"platefinder/internal/config"
)

// Run launches the interactive client and blocks until it exits.
func Run(cfg *config.Config, logger *zap.Logger) error {
	model, err := New(cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	program := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("application error: %w", err)
	}
	return nil
}
