package async

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type mockNotifier struct {
	mu     sync.Mutex
	titles []string
	err    error         // if set, Send returns this
	delay  time.Duration // if >0, Send sleeps first
	panics bool

	inFlight atomic.Int64
	peak     atomic.Int64
}

func (m *mockNotifier) Name() string  { return "mock" }
func (m *mockNotifier) Enabled() bool { return true }

func (m *mockNotifier) Send(_ context.Context, title, _ string) error {
	n := m.inFlight.Add(1)
	defer m.inFlight.Add(-1)
	for {
		p := m.peak.Load()
		if n <= p || m.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if m.delay > 0 {
		time.Sleep(m.delay)
	}
	if m.panics {
		panic("channel exploded")
	}
	m.mu.Lock()
	m.titles = append(m.titles, title)
	m.mu.Unlock()
	return m.err
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.titles)
}

func TestAlertsFlowThrough(t *testing.T) {
	inner := &mockNotifier{}
	a := New(inner, WithBufferSize(16))

	for i := 0; i < 10; i++ {
		if err := a.Send(context.Background(), "Failed SSH attempt", "body"); err != nil {
			t.Fatalf("Send error: %v", err)
		}
	}

	if err := a.Close(); err != nil {
		t.Fatalf("Close error: %v", err)
	}

	if inner.count() != 10 {
		t.Errorf("got %d alerts, want 10", inner.count())
	}
}

func TestBackpressureBlocks(t *testing.T) {
	// Inner notifier is slow; buffer size is 1; one worker.
	inner := &mockNotifier{delay: 50 * time.Millisecond}
	a := New(inner, WithBufferSize(1), WithWorkers(1), WithBlockOnFull())

	a.Send(context.Background(), "first", "")

	done := make(chan struct{})
	go func() {
		a.Send(context.Background(), "second", "")
		a.Send(context.Background(), "third", "")
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Send blocked indefinitely (expected eventual unblock via drain)")
	}

	a.Close()
}

func TestSendHonoursContextWhenFull(t *testing.T) {
	inner := &mockNotifier{delay: 200 * time.Millisecond}
	a := New(inner, WithBufferSize(0), WithWorkers(1), WithBlockOnFull())
	defer a.Close()

	// Occupy the single worker, then let the unbuffered queue fill.
	a.Send(context.Background(), "first", "")

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := a.Send(ctx, "second", "")
	if err == nil {
		// The drain loop may have accepted it while the pool was waiting; retry once.
		err = a.Send(ctx, "third", "")
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("got %v, want context.DeadlineExceeded", err)
	}
}

func TestDropOnFull(t *testing.T) {
	inner := &mockNotifier{delay: 100 * time.Millisecond}
	var dropped atomic.Int64
	a := New(inner, WithBufferSize(1), WithWorkers(1), WithOnDrop(func(string) { dropped.Add(1) }))

	var full int64
	for i := 0; i < 20; i++ {
		if err := a.Send(context.Background(), "burst", ""); errors.Is(err, ErrQueueFull) {
			full++
		}
	}

	a.Close()

	if inner.count() == 20 {
		t.Error("expected some alerts to be dropped when the queue is full")
	}
	if inner.count() == 0 {
		t.Error("expected at least some alerts to be delivered")
	}
	if full == 0 || dropped.Load() != full {
		t.Errorf("ErrQueueFull returned %d times, drop callback %d times", full, dropped.Load())
	}
}

func TestSendDoesNotWaitOnSlowDelivery(t *testing.T) {
	// Small queue and a channel far slower than the producer.
	inner := &mockNotifier{delay: 300 * time.Millisecond}
	a := New(inner, WithBufferSize(8), WithWorkers(4))
	defer a.Close()

	start := time.Now()
	for i := 0; i < 40; i++ {
		a.Send(context.Background(), "Failed SSH attempt", "")
	}
	if took := time.Since(start); took > 100*time.Millisecond {
		t.Fatalf("enqueueing 40 alerts took %v, want the caller never to wait on delivery", took)
	}
}

func TestCloseDrainsRemaining(t *testing.T) {
	inner := &mockNotifier{}
	a := New(inner, WithBufferSize(100))

	for i := 0; i < 50; i++ {
		a.Send(context.Background(), "drain", "")
	}

	a.Close()

	if inner.count() != 50 {
		t.Errorf("after Close, got %d alerts, want 50 (drain incomplete)", inner.count())
	}
}

func TestWorkersBounded(t *testing.T) {
	inner := &mockNotifier{delay: 20 * time.Millisecond}
	a := New(inner, WithBufferSize(64), WithWorkers(3))

	for i := 0; i < 30; i++ {
		a.Send(context.Background(), "bounded", "")
	}
	a.Close()

	if p := inner.peak.Load(); p > 3 {
		t.Errorf("peak concurrency %d, want <= 3", p)
	}
	if p := inner.peak.Load(); p < 2 {
		t.Errorf("peak concurrency %d, want deliveries to overlap", p)
	}
}

func TestErrorCallbackInvoked(t *testing.T) {
	inner := &mockNotifier{err: errors.New("send failed")}
	var errorCount atomic.Int64
	a := New(inner, WithBufferSize(16), WithOnError(func(err error) {
		errorCount.Add(1)
	}))

	for i := 0; i < 5; i++ {
		a.Send(context.Background(), "failing", "")
	}

	a.Close()

	if errorCount.Load() != 5 {
		t.Errorf("error callback called %d times, want 5", errorCount.Load())
	}
}

func TestPanicReportedAsError(t *testing.T) {
	inner := &mockNotifier{panics: true}
	var errorCount atomic.Int64
	a := New(inner, WithOnError(func(err error) { errorCount.Add(1) }))

	a.Send(context.Background(), "boom", "")
	a.Send(context.Background(), "boom", "")
	a.Close()

	if errorCount.Load() != 2 {
		t.Errorf("error callback called %d times, want 2", errorCount.Load())
	}
}

func TestNoGoroutineLeakAfterClose(t *testing.T) {
	a := New(&mockNotifier{}, WithBufferSize(16))

	a.Send(context.Background(), "leak-check", "")
	a.Close()

	select {
	case <-a.done:
	case <-time.After(time.Second):
		t.Fatal("drain goroutine did not exit after Close")
	}
}

func TestCloseIdempotent(t *testing.T) {
	a := New(&mockNotifier{}, WithBufferSize(16))

	a.Send(context.Background(), "idempotent", "")

	if err := a.Close(); err != nil {
		t.Fatalf("first Close error: %v", err)
	}
	if err := a.Close(); err != nil {
		t.Fatalf("second Close error: %v", err)
	}
}

func TestSendAfterClose(t *testing.T) {
	a := New(&mockNotifier{})
	a.Close()

	if err := a.Send(context.Background(), "late", ""); err == nil {
		t.Fatal("expected error sending after Close")
	}
}

func TestDrainTimeoutAbandonsInFlight(t *testing.T) {
	inner := &mockNotifier{delay: time.Second}
	a := New(inner, WithDrainTimeout(50*time.Millisecond))

	a.Send(context.Background(), "slow", "")

	start := time.Now()
	a.Close()
	if took := time.Since(start); took > 500*time.Millisecond {
		t.Fatalf("Close took %v, want drain timeout to bound it", took)
	}
}
