package pool

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

func TestBatch_CoalescesConcurrentCalls(t *testing.T) {
	p := newTestPool(t, Config{})
	ctx := context.Background()

	release := make(chan struct{})
	firstRunning := make(chan struct{})
	firstCalls := 0
	secondCalls := 0

	var wg sync.WaitGroup
	results := make([]any, 2)

	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = p.Batch(ctx, "orders", func(ctx context.Context) (any, error) {
			firstCalls++
			close(firstRunning)
			<-release
			return "shared", nil
		})
	}()

	<-firstRunning

	secondStarted := make(chan struct{})
	wg.Add(1)
	go func() {
		defer wg.Done()
		close(secondStarted)
		// Same key, different function: must share the first call's result.
		results[1], _ = p.Batch(ctx, "orders", func(ctx context.Context) (any, error) {
			secondCalls++
			return "never", nil
		})
	}()

	<-secondStarted
	// Let the second caller join the in-flight call before it settles.
	time.Sleep(10 * time.Millisecond)
	close(release)
	wg.Wait()

	if firstCalls != 1 {
		t.Errorf("first function ran %d times, want 1", firstCalls)
	}
	if secondCalls != 0 {
		t.Errorf("second function ran %d times, want 0", secondCalls)
	}
	if results[0] != "shared" || results[1] != "shared" {
		t.Errorf("results = %v, want both \"shared\"", results)
	}
}

func TestBatch_RecordRemovedOnSettlement(t *testing.T) {
	p := newTestPool(t, Config{})

	_, err := p.Batch(context.Background(), "k", func(ctx context.Context) (any, error) {
		return nil, errors.New("failed")
	})
	if err == nil {
		t.Fatal("Batch() error = nil, want the function's failure")
	}

	if s := p.Stats(); s.ActiveBatches != 0 {
		t.Errorf("ActiveBatches = %d after settlement, want 0", s.ActiveBatches)
	}
}

func TestBatch_DistinctKeysRunIndependently(t *testing.T) {
	p := newTestPool(t, Config{})
	ctx := context.Background()

	a, _ := p.Batch(ctx, "a", func(ctx context.Context) (any, error) { return 1, nil })
	b, _ := p.Batch(ctx, "b", func(ctx context.Context) (any, error) { return 2, nil })

	if a != 1 || b != 2 {
		t.Errorf("results = %v, %v, want 1, 2", a, b)
	}
}

func TestCleanupBatches_SweepsStaleRecords(t *testing.T) {
	p := newTestPool(t, Config{})

	release := make(chan struct{})
	running := make(chan struct{})
	go func() {
		_, _ = p.Batch(context.Background(), "stuck", func(ctx context.Context) (any, error) {
			close(running)
			<-release
			return nil, nil
		})
	}()
	<-running

	// Make the record look stale.
	p.mu.Lock()
	p.inflight["stuck"] = time.Now().Add(-time.Hour)
	p.mu.Unlock()

	if swept := p.CleanupBatches(30 * time.Minute); swept != 1 {
		t.Errorf("swept = %d, want 1", swept)
	}
	if s := p.Stats(); s.ActiveBatches != 0 {
		t.Errorf("ActiveBatches = %d after sweep, want 0", s.ActiveBatches)
	}

	// A caller after the sweep starts a fresh underlying call.
	fresh, err := p.Batch(context.Background(), "stuck", func(ctx context.Context) (any, error) {
		return "fresh", nil
	})
	if err != nil {
		t.Fatalf("Batch() after sweep error = %v", err)
	}
	if fresh != "fresh" {
		t.Errorf("result = %v, want fresh", fresh)
	}

	close(release)
}

func TestCleanupBatches_KeepsYoungRecords(t *testing.T) {
	p := newTestPool(t, Config{})

	release := make(chan struct{})
	running := make(chan struct{})
	go func() {
		_, _ = p.Batch(context.Background(), "young", func(ctx context.Context) (any, error) {
			close(running)
			<-release
			return nil, nil
		})
	}()
	<-running

	if swept := p.CleanupBatches(time.Hour); swept != 0 {
		t.Errorf("swept = %d, want 0", swept)
	}

	close(release)
}

func TestStartSweeper_StopsOnContextDone(t *testing.T) {
	p := newTestPool(t, Config{})

	ctx, cancel := context.WithCancel(context.Background())
	p.StartSweeper(ctx, time.Millisecond, time.Hour)

	// Give the ticker a few cycles, then stop; must not panic or leak.
	time.Sleep(5 * time.Millisecond)
	cancel()
	time.Sleep(5 * time.Millisecond)
}
