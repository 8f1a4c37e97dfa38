package navigation

import (
	"slices"
	"testing"
	"time"
)

func TestManualScheduler(t *testing.T) {
	m := NewManualScheduler()
	var fired []string
	record := func(name string) func() { return func() { fired = append(fired, name) } }

	m.AfterFunc(30*time.Millisecond, record("c"))
	m.AfterFunc(10*time.Millisecond, record("a"))
	m.AfterFunc(10*time.Millisecond, record("b"))
	stop := m.AfterFunc(20*time.Millisecond, record("cancelled"))
	m.AfterFunc(15*time.Millisecond, func() {
		fired = append(fired, "chain")
		m.AfterFunc(5*time.Millisecond, record("chained"))
	})

	if !stop() {
		t.Error("first cancel reported false")
	}
	if stop() {
		t.Error("second cancel reported true")
	}

	m.AfterFunc(-time.Second, record("now"))
	m.Advance(0)
	if !slices.Equal(fired, []string{"now"}) {
		t.Fatalf("fired = %v", fired)
	}

	m.Advance(25 * time.Millisecond)
	want := []string{"now", "a", "b", "chain", "chained"}
	if !slices.Equal(fired, want) {
		t.Errorf("fired = %v, want %v", fired, want)
	}
	if m.Now() != 25*time.Millisecond {
		t.Errorf("Now = %v", m.Now())
	}
	if m.Pending() != 1 {
		t.Errorf("Pending = %d, want 1", m.Pending())
	}

	m.Advance(5 * time.Millisecond)
	if got := fired[len(fired)-1]; got != "c" {
		t.Errorf("last fired = %s", got)
	}
}

func TestRealScheduler(t *testing.T) {
	done := make(chan struct{})
	RealScheduler{}.AfterFunc(time.Millisecond, func() { close(done) })
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("callback did not run")
	}

	stop := RealScheduler{}.AfterFunc(time.Hour, func() { t.Error("cancelled callback ran") })
	if !stop() {
		t.Error("Stop reported false for a pending timer")
	}
}
