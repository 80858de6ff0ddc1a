// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package tui renders the terminal status screen: sync state, manual
// backup/restore/reset actions, and the device identity.
package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/logger"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/service"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

type TUI struct {
	services *service.Services
	actor    models.DeviceActor
	mode     string
}

func New(services *service.Services, actor models.DeviceActor, mode string, _ *logger.Logger) (*TUI, error) {
	return &TUI{services: services, actor: actor, mode: mode}, nil
}

// Run blocks until the user quits the status screen.
func (t *TUI) Run(ctx context.Context) error {
	model := newStatusModel(ctx, t.services, t.actor, t.mode)
	finalModel, err := tea.NewProgram(model, tea.WithAltScreen()).Run()
	if err != nil {
		return err
	}

	if _, ok := finalModel.(statusModel); !ok {
		return tea.ErrProgramKilled
	}
	return nil
}
