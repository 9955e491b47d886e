package router

import (
	"context"
	"sync"
	"testing"
	"time"
)

func startedRouter(t *testing.T) *Router {
	t.Helper()
	r := New()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("router failed to start: %s", err)
	}
	return r
}

func TestCommandsRunInPostOrder(t *testing.T) {
	r := startedRouter(t)
	defer r.Stop()

	const n = 100
	var order []int
	done := make(chan struct{})
	for i := 0; i < n; i++ {
		i := i
		r.Post(func() {
			order = append(order, i)
			if i == n-1 {
				close(done)
			}
		})
	}

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for commands to drain")
	}
	for i, v := range order {
		if v != i {
			t.Fatalf("command %d ran out of order (got %d)", i, v)
		}
	}
}

func TestReentrantPostRunsAfterQueuedCommands(t *testing.T) {
	r := startedRouter(t)
	defer r.Stop()

	var order []string
	done := make(chan struct{})
	r.Post(func() {
		order = append(order, "first")
		// Posted mid-drain: must run after "second", which is already queued.
		r.Post(func() {
			order = append(order, "third")
			close(done)
		})
	})
	r.Post(func() {
		order = append(order, "second")
	})

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for reentrant command")
	}
	want := []string{"first", "second", "third"}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("order = %v, want %v", order, want)
		}
	}
}

func TestConcurrentPostsAllProcessed(t *testing.T) {
	r := startedRouter(t)
	defer r.Stop()

	const producers = 8
	const each = 50
	var mu sync.Mutex
	count := 0
	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < each; i++ {
				r.Post(func() {
					mu.Lock()
					count++
					mu.Unlock()
				})
			}
		}()
	}
	wg.Wait()

	deadline := time.Now().Add(time.Second)
	for {
		mu.Lock()
		n := count
		mu.Unlock()
		if n == producers*each {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("processed %d of %d commands", n, producers*each)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestPostAfterStopIsRejected(t *testing.T) {
	r := startedRouter(t)
	r.Stop()
	if r.Post(func() { t.Error("command ran after Stop") }) {
		t.Error("Post after Stop reported acceptance")
	}
	time.Sleep(20 * time.Millisecond)
}

func TestStopIsIdempotent(t *testing.T) {
	r := startedRouter(t)
	r.Stop()
	r.Stop()
}

func TestStartAfterStopIsRefusedQuietly(t *testing.T) {
	r := startedRouter(t)
	r.Stop()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := r.Start(ctx); err != nil {
		t.Fatalf("Start after Stop returned error: %s", err)
	}
}
