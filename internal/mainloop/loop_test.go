package mainloop

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func startLoop(t *testing.T) (*Loop, context.CancelFunc) {
	t.Helper()
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = l.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l, cancel
}

func TestDispatchRunsInOrder(t *testing.T) {
	l, _ := startLoop(t)

	var got []int
	for i := 0; i < 100; i++ {
		i := i
		l.Dispatch(func() { got = append(got, i) })
	}

	if err := l.Call(context.Background(), func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if len(got) != 100 {
		t.Fatalf("expected 100 tasks, got %d", len(got))
	}
	for i, v := range got {
		if v != i {
			t.Fatalf("task %d ran out of order (%d)", i, v)
		}
	}
}

func TestDispatchFromTask(t *testing.T) {
	l, _ := startLoop(t)

	done := make(chan struct{})
	l.Dispatch(func() {
		l.Dispatch(func() { close(done) })
	})

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("nested dispatch never ran")
	}
}

func TestDispatchFromManyGoroutines(t *testing.T) {
	l, _ := startLoop(t)

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 50; j++ {
				l.Dispatch(func() { counter++ })
			}
		}()
	}
	wg.Wait()

	if err := l.Call(context.Background(), func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if counter != 1000 {
		t.Errorf("counter = %d, want 1000", counter)
	}
}

func TestPanickingTaskDoesNotStopLoop(t *testing.T) {
	l, _ := startLoop(t)

	l.Dispatch(func() { panic("boom") })

	ran := false
	if err := l.Call(context.Background(), func() { ran = true }); err != nil {
		t.Fatalf("Call: %v", err)
	}
	if !ran {
		t.Error("task after panic did not run")
	}
}

func TestDispatchAfterStop(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := l.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("Run = %v, want context.Canceled", err)
	}

	if l.Dispatch(func() {}) {
		t.Error("Dispatch after stop should report false")
	}
	if err := l.Call(context.Background(), func() {}); !errors.Is(err, ErrStopped) {
		t.Errorf("Call after stop = %v, want ErrStopped", err)
	}
}

// waitQueued blocks until n tasks are waiting behind the running one.
func waitQueued(t *testing.T, l *Loop, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		l.mu.Lock()
		got := len(l.queue)
		l.mu.Unlock()
		if got >= n {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("queue length %d, want %d", got, n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestCallQueuedAtStopReturnsErrStopped(t *testing.T) {
	l := New(nil)
	ctx, cancel := context.WithCancel(context.Background())
	runDone := make(chan struct{})
	go func() {
		defer close(runDone)
		_ = l.Run(ctx)
	}()

	release := make(chan struct{})
	started := make(chan struct{})
	l.Dispatch(func() {
		close(started)
		<-release
	})
	<-started

	callErr := make(chan error, 1)
	ran := false
	go func() {
		callErr <- l.Call(context.Background(), func() { ran = true })
	}()
	waitQueued(t, l, 1)

	cancel()
	close(release)
	<-runDone

	select {
	case err := <-callErr:
		if !errors.Is(err, ErrStopped) {
			t.Errorf("Call = %v, want ErrStopped", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Call still blocked after the loop stopped")
	}
	if ran {
		t.Error("dropped task ran")
	}
}

func TestCallAbandonedOnContextNeverRuns(t *testing.T) {
	l, _ := startLoop(t)

	release := make(chan struct{})
	started := make(chan struct{})
	l.Dispatch(func() {
		close(started)
		<-release
	})
	<-started

	var mu sync.Mutex
	ran := false

	ctx, cancel := context.WithCancel(context.Background())
	callErr := make(chan error, 1)
	go func() {
		callErr <- l.Call(ctx, func() {
			mu.Lock()
			ran = true
			mu.Unlock()
		})
	}()
	waitQueued(t, l, 1)

	cancel()
	if err := <-callErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("Call = %v, want context.Canceled", err)
	}

	close(release)
	// Flush the loop past the abandoned task.
	if err := l.Call(context.Background(), func() {}); err != nil {
		t.Fatalf("Call: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if ran {
		t.Error("task ran after its Call returned")
	}
}

func TestCallWaitsForRunningTask(t *testing.T) {
	l, _ := startLoop(t)

	ctx, cancel := context.WithCancel(context.Background())
	entered := make(chan struct{})
	release := make(chan struct{})
	finished := false

	callErr := make(chan error, 1)
	go func() {
		callErr <- l.Call(ctx, func() {
			close(entered)
			<-release
			finished = true
		})
	}()
	<-entered
	cancel()

	select {
	case err := <-callErr:
		t.Fatalf("Call returned %v while its task was still running", err)
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	if err := <-callErr; err != nil {
		t.Fatalf("Call = %v, want nil", err)
	}
	if !finished {
		t.Error("Call returned before its task finished")
	}
}
