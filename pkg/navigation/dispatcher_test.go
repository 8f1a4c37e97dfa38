package navigation

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestSerialDispatcherOrder(t *testing.T) {
	d := NewSerialDispatcher()
	defer d.Close()

	var (
		mu  sync.Mutex
		got []int
	)
	release := make(chan struct{})
	d.Dispatch(func(context.Context) { <-release })
	for i := range 50 {
		d.Dispatch(func(context.Context) {
			mu.Lock()
			got = append(got, i)
			mu.Unlock()
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	if err := d.Wait(ctx); err == nil {
		t.Error("Wait returned before the blocked task finished")
	}
	cancel()

	close(release)
	ctx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.Wait(ctx); err != nil {
		t.Fatalf("Wait: %v", err)
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran at position %d", v, i)
		}
	}
	if len(got) != 50 {
		t.Errorf("ran %d tasks, want 50", len(got))
	}
}

func TestSerialDispatcherClose(t *testing.T) {
	d := NewSerialDispatcher()
	ran := make(chan string, 3)
	d.Dispatch(func(ctx context.Context) {
		time.Sleep(5 * time.Millisecond)
		if ctx.Err() != nil {
			ran <- "cancelled"
			return
		}
		ran <- "queued"
	})

	if err := d.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := d.Close(); err != nil {
		t.Fatalf("second Close: %v", err)
	}
	d.Dispatch(func(context.Context) { ran <- "late" })
	close(ran)

	var got []string
	for s := range ran {
		got = append(got, s)
	}
	if len(got) != 1 || got[0] != "queued" {
		t.Errorf("ran = %v, want [queued]", got)
	}
	if err := d.Wait(context.Background()); err != nil {
		t.Errorf("Wait after Close: %v", err)
	}
}
