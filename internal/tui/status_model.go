// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/config"
	"github.com/riiiiiiiiiina0/nenya-sync/internal/service"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

const statusRefreshEvery = 2 * time.Second

type statusModel struct {
	ctx      context.Context
	services *service.Services
	actor    models.DeviceActor
	mode     string

	state        models.SyncState
	busy         bool
	busyAction   string
	confirmReset bool
	status       string
	errMsg       string
}

func newStatusModel(ctx context.Context, services *service.Services, actor models.DeviceActor, mode string) statusModel {
	return statusModel{
		ctx:      ctx,
		services: services,
		actor:    actor,
		mode:     mode,
		state:    services.StatusService.Snapshot(),
	}
}

func (m statusModel) Init() tea.Cmd {
	return m.cmdTick()
}

func (m statusModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case statusTickMsg:
		m.state = m.services.StatusService.Snapshot()
		return m, m.cmdTick()

	case backupDoneMsg:
		m.busy = false
		m.busyAction = ""
		m.state = m.services.StatusService.Snapshot()
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Backup failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("Backup complete: %d chunk(s) uploaded", msg.outcome.ChunkCount)
		return m, nil

	case restoreDoneMsg:
		m.busy = false
		m.busyAction = ""
		m.state = m.services.StatusService.Snapshot()
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Restore failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("Restore complete: %d categor(ies) applied", msg.outcome.Applied)
		if msg.outcome.Skipped > 0 {
			m.status += fmt.Sprintf(", %d skipped", msg.outcome.Skipped)
		}
		return m, nil

	case resetDoneMsg:
		m.busy = false
		m.busyAction = ""
		m.state = m.services.StatusService.Snapshot()
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Reset failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("Settings reset to defaults, %d categor(ies) backed up", msg.outcome.Applied)
		return m, nil

	case syncDoneMsg:
		m.busy = false
		m.busyAction = ""
		m.state = m.services.StatusService.Snapshot()
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Sync failed: %v", msg.err)
			return m, nil
		}
		m.errMsg = ""
		m.status = fmt.Sprintf("Sync complete: %d applied, %d uploaded", msg.outcome.Applied, msg.outcome.Uploaded)
		return m, nil

	case copiedMsg:
		if msg.err != nil {
			m.errMsg = fmt.Sprintf("Copy failed: %v", msg.err)
			return m, nil
		}
		m.status = "Device ID copied"
		return m, nil
	}

	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	if m.confirmReset {
		switch {
		case key.Matches(keyMsg, keys.yes):
			m.confirmReset = false
			m.busy = true
			m.busyAction = "Resetting to defaults..."
			m.status = ""
			m.errMsg = ""
			return m, m.cmdReset()
		case key.Matches(keyMsg, keys.no), key.Matches(keyMsg, keys.quit):
			m.confirmReset = false
		}
		return m, nil
	}

	switch {
	case key.Matches(keyMsg, keys.quit):
		return m, tea.Quit

	case key.Matches(keyMsg, keys.backup):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.busyAction = "Backing up..."
		m.status = ""
		m.errMsg = ""
		return m, m.cmdBackup()

	case key.Matches(keyMsg, keys.restore):
		if m.busy {
			return m, nil
		}
		m.busy = true
		m.busyAction = "Restoring..."
		m.status = ""
		m.errMsg = ""
		return m, m.cmdRestore()

	case key.Matches(keyMsg, keys.reset):
		if m.busy {
			return m, nil
		}
		m.confirmReset = true
		return m, nil

	case key.Matches(keyMsg, keys.sync):
		if m.busy || m.mode != config.SyncModeMerge {
			return m, nil
		}
		m.busy = true
		m.busyAction = "Syncing..."
		m.status = ""
		m.errMsg = ""
		return m, m.cmdSync()

	case key.Matches(keyMsg, keys.copy):
		return m, m.cmdCopyActorID()
	}

	return m, nil
}

func (m statusModel) View() string {
	if m.confirmReset {
		content := "Reset every setting to its default and back up?\n\n"
		content += "y yes    n no"
		return overlayBoxStyle.Render(content)
	}

	var b strings.Builder

	b.WriteString("Device    : " + fitText(m.actor.ID, 44) + "\n")
	b.WriteString("Mode      : " + m.mode + "\n\n")

	b.WriteString("Last backup  : " + timeOrDash(m.state.LastBackupAt) + "\n")
	b.WriteString("Last restore : " + timeOrDash(m.state.LastRestoreAt) + "\n")
	b.WriteString("Last merge   : " + timeOrDash(m.state.LastMergeAt) + "\n\n")

	b.WriteString(fmt.Sprintf("Applied %d │ Uploaded %d │ Skipped %d │ Chunks %d\n",
		m.state.Applied, m.state.Uploaded, m.state.Skipped, m.state.ChunkCount))

	if m.state.LastError != nil {
		b.WriteString("\n")
		b.WriteString(errorStyle.Render("Last error: "+fitText(m.state.LastError.Message, 60)) + "\n")
		b.WriteString("At        : " + timeOrDash(m.state.LastError.At) + "\n")
	}

	if m.busy {
		b.WriteString("\n" + m.busyAction + "\n")
	}
	if m.errMsg != "" {
		b.WriteString("\n" + errorStyle.Render("Error: "+m.errMsg) + "\n")
	}
	if m.status != "" {
		b.WriteString("\nStatus: " + m.status + "\n")
	}

	hotKeys := "b: backup │ r: restore │ x: reset defaults │ c: copy device id"
	if m.mode == config.SyncModeMerge {
		hotKeys = "s: sync now │ " + hotKeys
	}

	return renderPage("SYNC STATUS", strings.TrimRight(b.String(), "\n"), hotKeys)
}

func (m statusModel) cmdTick() tea.Cmd {
	return tea.Tick(statusRefreshEvery, func(time.Time) tea.Msg {
		return statusTickMsg{}
	})
}

func (m statusModel) cmdBackup() tea.Cmd {
	ctx := m.ctx
	svc := m.services.BackupService

	return func() tea.Msg {
		outcome, err := svc.Backup(ctx, models.TriggerManual)
		return backupDoneMsg{outcome: outcome, err: err}
	}
}

func (m statusModel) cmdRestore() tea.Cmd {
	ctx := m.ctx
	svc := m.services.BackupService

	return func() tea.Msg {
		outcome, err := svc.Restore(ctx, models.TriggerManual)
		return restoreDoneMsg{outcome: outcome, err: err}
	}
}

func (m statusModel) cmdReset() tea.Cmd {
	ctx := m.ctx
	svc := m.services.BackupService

	return func() tea.Msg {
		outcome, err := svc.Reset(ctx, models.TriggerManual)
		return resetDoneMsg{outcome: outcome, err: err}
	}
}

func (m statusModel) cmdSync() tea.Cmd {
	ctx := m.ctx
	svc := m.services.MergeService

	return func() tea.Msg {
		outcome, err := svc.Sync(ctx, models.TriggerManual)
		return syncDoneMsg{outcome: outcome, err: err}
	}
}

func (m statusModel) cmdCopyActorID() tea.Cmd {
	id := m.actor.ID

	return func() tea.Msg {
		return copiedMsg{err: clipboard.WriteAll(id)}
	}
}
