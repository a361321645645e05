package device

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashdown-obs/roofsentry/internal/safety"
)

func TestNewState_FailsOpen(t *testing.T) {
	state := NewState()

	snapshot := state.Snapshot()
	if !snapshot.IsSafe {
		t.Error("initial IsSafe = false, want true (fail-open while disconnected)")
	}
	if snapshot.Connected {
		t.Error("initial Connected = true, want false")
	}
}

func TestNextTransactionID_StartsAtOne(t *testing.T) {
	state := NewState()

	if id := state.NextTransactionID(); id != 1 {
		t.Errorf("first transaction ID = %d, want 1", id)
	}
	if id := state.NextTransactionID(); id != 2 {
		t.Errorf("second transaction ID = %d, want 2", id)
	}
}

func TestNextTransactionID_UniqueUnderConcurrency(t *testing.T) {
	state := NewState()

	const goroutines = 50
	const perGoroutine = 100

	var mu sync.Mutex
	seen := make(map[uint32]bool, goroutines*perGoroutine)

	var wg sync.WaitGroup
	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perGoroutine; j++ {
				id := state.NextTransactionID()
				mu.Lock()
				if seen[id] {
					t.Errorf("transaction ID %d issued twice", id)
				}
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if len(seen) != goroutines*perGoroutine {
		t.Errorf("issued %d unique IDs, want %d", len(seen), goroutines*perGoroutine)
	}
}

func TestSetConnected(t *testing.T) {
	state := NewState()

	state.SetConnected(true)
	if !state.Connected() {
		t.Error("Connected() = false after SetConnected(true)")
	}

	state.SetConnected(false)
	if state.Connected() {
		t.Error("Connected() = true after SetConnected(false)")
	}
}

func TestApplyDecision_Success(t *testing.T) {
	state := NewState()

	decision := safety.Decision{
		EvaluatedAt: time.Date(2026, time.August, 15, 22, 0, 0, 0, time.UTC),
		Final:       safety.RoofOpen,
		IsSafe:      true,
	}
	state.ApplyDecision(decision, nil)

	snapshot := state.Snapshot()
	if !snapshot.IsSafe {
		t.Error("IsSafe = false, want true")
	}
	if snapshot.LastError != "" {
		t.Errorf("LastError = %q, want empty", snapshot.LastError)
	}
	if !snapshot.LastUpdate.Equal(decision.EvaluatedAt) {
		t.Errorf("LastUpdate = %v, want %v", snapshot.LastUpdate, decision.EvaluatedAt)
	}
	if snapshot.Decision.Final != safety.RoofOpen {
		t.Errorf("Decision.Final = %v, want OPEN", snapshot.Decision.Final)
	}
}

func TestApplyDecision_Failure(t *testing.T) {
	state := NewState()

	// Even a nominally-safe decision is overruled when the cycle failed.
	decision := safety.Decision{
		EvaluatedAt: time.Now(),
		Final:       safety.RoofOpen,
		IsSafe:      true,
	}
	state.ApplyDecision(decision, errors.New("status log unwritable"))

	snapshot := state.Snapshot()
	if snapshot.IsSafe {
		t.Error("IsSafe = true after failed cycle, want false")
	}
	if snapshot.LastError != "status log unwritable" {
		t.Errorf("LastError = %q, want the cycle failure", snapshot.LastError)
	}
}

func TestForceSafe(t *testing.T) {
	state := NewState()

	// Start from an unsafe, failed state.
	state.ApplyDecision(safety.Decision{EvaluatedAt: time.Now()}, errors.New("boom"))

	now := time.Now()
	state.ForceSafe(now)

	snapshot := state.Snapshot()
	if !snapshot.IsSafe {
		t.Error("IsSafe = false after ForceSafe, want true")
	}
	if snapshot.LastError != "" {
		t.Errorf("LastError = %q after ForceSafe, want empty", snapshot.LastError)
	}
	if !snapshot.LastUpdate.Equal(now) {
		t.Errorf("LastUpdate = %v, want %v", snapshot.LastUpdate, now)
	}
}

func TestSubscribe_ReceivesSnapshots(t *testing.T) {
	state := NewState()

	ch := state.Subscribe()
	defer state.Unsubscribe(ch)

	state.SetConnected(true)

	select {
	case snapshot := <-ch:
		if !snapshot.Connected {
			t.Error("snapshot.Connected = false, want true")
		}
	case <-time.After(time.Second):
		t.Fatal("no snapshot received after state change")
	}
}

func TestSubscribe_SlowConsumerDoesNotBlock(t *testing.T) {
	state := NewState()

	ch := state.Subscribe()
	defer state.Unsubscribe(ch)

	// Overflow the buffer; notify must not block.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			state.ForceSafe(time.Now())
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("notify blocked on a slow subscriber")
	}
}

func TestUnsubscribe_ClosesChannel(t *testing.T) {
	state := NewState()

	ch := state.Subscribe()
	state.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Error("channel still open after Unsubscribe")
	}

	// Double unsubscribe must not panic.
	state.Unsubscribe(ch)
}
