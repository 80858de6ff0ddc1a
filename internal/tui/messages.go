package tui

import (
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

type backupDoneMsg struct {
	outcome models.SyncOutcome
	err     error
}

type restoreDoneMsg struct {
	outcome models.SyncOutcome
	err     error
}

type resetDoneMsg struct {
	outcome models.SyncOutcome
	err     error
}

type syncDoneMsg struct {
	outcome models.SyncOutcome
	err     error
}

type statusTickMsg struct{}

type copiedMsg struct {
	err error
}
