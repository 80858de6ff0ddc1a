// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package workers

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/riiiiiiiiiina0/nenya-sync/internal/service"
	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

// mockWorker is a test implementation of the Worker interface
// that tracks how many times Run and Stop were called.
type mockWorker struct {
	runCount  int
	stopCount int
}

func (m *mockWorker) Run()  { m.runCount++ }
func (m *mockWorker) Stop() { m.stopCount++ }

func TestWorkers_Run_AllWorkersAreCalled(t *testing.T) {
	w1 := &mockWorker{}
	w2 := &mockWorker{}
	w3 := &mockWorker{}

	ws := NewWorkers(w1, w2, w3)
	ws.Run()

	for i, w := range []*mockWorker{w1, w2, w3} {
		if w.runCount != 1 {
			t.Errorf("worker[%d]: expected runCount=1, got %d", i, w.runCount)
		}
	}
}

func TestWorkers_Run_Empty(t *testing.T) {
	ws := NewWorkers()

	// Should not panic on empty workers list
	ws.Run()
	ws.Stop()
}

func TestWorkers_Run_Order(t *testing.T) {
	order := []int{}

	newOrderWorker := func(id int) Worker {
		return &orderWorker{id: id, order: &order}
	}

	ws := NewWorkers(newOrderWorker(1), newOrderWorker(2), newOrderWorker(3))
	ws.Run()

	expected := []int{1, 2, 3}
	for i, v := range expected {
		if order[i] != v {
			t.Errorf("expected order[%d]=%d, got %d", i, v, order[i])
		}
	}
}

func TestWorkers_Stop_OnlyStoppersStopped(t *testing.T) {
	stoppable := &mockWorker{}
	plain := &runOnlyWorker{}

	ws := NewWorkers(stoppable, plain)
	ws.Run()
	ws.Stop()

	if stoppable.stopCount != 1 {
		t.Errorf("expected stopCount=1, got %d", stoppable.stopCount)
	}
}

func TestSyncJobWorker_RunStartsJob(t *testing.T) {
	var runs atomic.Int32
	job := service.NewSyncJob(func(context.Context, models.Trigger) error {
		runs.Add(1)
		return nil
	})

	w := NewSyncJobWorker(context.Background(), job, 10*time.Millisecond)
	w.Run()
	defer w.(Stopper).Stop()

	deadline := time.Now().Add(2 * time.Second)
	for runs.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if runs.Load() == 0 {
		t.Error("expected the sync job to run at least once")
	}
}

// orderWorker is a helper that appends its ID to a shared slice on Run.
type orderWorker struct {
	id    int
	order *[]int
}

func (o *orderWorker) Run() {
	*o.order = append(*o.order, o.id)
}

// runOnlyWorker implements Worker but not Stopper.
type runOnlyWorker struct{}

func (runOnlyWorker) Run() {}
