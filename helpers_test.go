package framepump_test

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gogpu/framepump"
	"github.com/gogpu/framepump/dispatch"
)

// mockCanvas implements framepump.Canvas and records transform calls.
type mockCanvas struct {
	mu     sync.Mutex
	ops    []string
	sx, sy float64
}

func newMockCanvas() *mockCanvas {
	return &mockCanvas{sx: 1, sy: 1}
}

func (m *mockCanvas) Identity() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sx, m.sy = 1, 1
	m.ops = append(m.ops, "identity")
}

func (m *mockCanvas) Scale(sx, sy float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sx *= sx
	m.sy *= sy
	m.ops = append(m.ops, fmt.Sprintf("scale(%g,%g)", sx, sy))
}

func (m *mockCanvas) scale() (float64, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sx, m.sy
}

func (m *mockCanvas) recorded() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.ops...)
}

// mockSurface implements framepump.Surface.
type mockSurface struct {
	w, h   int
	sf     float64
	canvas *mockCanvas
}

func newMockSurface(sf float64) *mockSurface {
	return &mockSurface{w: 800, h: 600, sf: sf, canvas: newMockCanvas()}
}

func (s *mockSurface) Size() (int, int)         { return s.w, s.h }
func (s *mockSurface) ScaleFactor() float64     { return s.sf }
func (s *mockSurface) Canvas() framepump.Canvas { return s.canvas }

// withScale returns a surface sharing the canvas with a different scale.
func (s *mockSurface) withScale(sf float64) *mockSurface {
	c := *s
	c.sf = sf
	return &c
}

// paintHub implements framepump.PaintSource for tests.
type paintHub struct {
	framepump.Event[framepump.Surface]
}

func (p *paintHub) OnPaint(h framepump.Handler[framepump.Surface]) framepump.Subscription {
	return p.Add(h)
}

func (p *paintHub) paint(s framepump.Surface) error {
	return p.Fire(s)
}

// countingLocker is a sync.Locker that counts acquisitions.
type countingLocker struct {
	mu    sync.Mutex
	locks atomic.Int32
}

func (l *countingLocker) Lock() {
	l.mu.Lock()
	l.locks.Add(1)
}

func (l *countingLocker) Unlock() { l.mu.Unlock() }

// otherContext returns the token of a goroutine other than the caller's.
func otherContext() framepump.ExecContext {
	ch := make(chan framepump.ExecContext)
	go func() { ch <- framepump.CurrentContext() }()
	return <-ch
}

// inlineDispatcher runs actions synchronously on the calling goroutine.
var inlineDispatcher = framepump.DispatcherFunc(func(action func()) error {
	action()
	return nil
})

// startLoop runs a dispatch loop on its own goroutine for the test's lifetime.
func startLoop(t *testing.T) *dispatch.Loop {
	t.Helper()
	loop := dispatch.New()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = loop.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	select {
	case <-loop.Started():
	case <-time.After(5 * time.Second):
		t.Fatal("dispatch loop did not start")
	}
	return loop
}

func waitReady(t *testing.T, c *framepump.Coordinator) {
	t.Helper()
	select {
	case <-c.Ready():
	case <-time.After(5 * time.Second):
		t.Fatalf("coordinator not ready, state %v", c.State())
	}
}
