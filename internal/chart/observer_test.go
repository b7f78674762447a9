package chart

import (
	"sync"
	"testing"
)

// manualSource lets a test push widths to subscribers.
type manualSource struct {
	mu           sync.Mutex
	fns          []func(float64)
	unsubscribed int
}

func (s *manualSource) Subscribe(fn func(float64)) func() {
	s.mu.Lock()
	s.fns = append(s.fns, fn)
	s.mu.Unlock()
	return func() {
		s.mu.Lock()
		s.unsubscribed++
		s.mu.Unlock()
	}
}

func (s *manualSource) emit(w float64) {
	s.mu.Lock()
	fns := append([]func(float64){}, s.fns...)
	s.mu.Unlock()
	for _, fn := range fns {
		fn(w)
	}
}

func TestWidthObserverLifecycle(t *testing.T) {
	src := &manualSource{}
	var got []float64
	obs := NewWidthObserver(src, func(w float64) { got = append(got, w) })

	if obs.Width() != DefaultWidth {
		t.Fatalf("default width = %v, want %d", obs.Width(), DefaultWidth)
	}
	obs.Start()
	obs.Start()
	if len(src.fns) != 1 {
		t.Fatalf("Start should subscribe once, got %d subscriptions", len(src.fns))
	}
	if !obs.Active() {
		t.Fatal("observer should be active after Start")
	}

	src.emit(800)
	src.emit(0)
	src.emit(-5)
	if obs.Width() != 800 || len(got) != 1 {
		t.Fatalf("width = %v callbacks = %v, want 800 and one callback", obs.Width(), got)
	}

	obs.Stop()
	obs.Stop()
	if src.unsubscribed != 1 {
		t.Fatalf("expected one unsubscribe, got %d", src.unsubscribed)
	}
	if obs.Active() {
		t.Fatal("observer should be inactive after Stop")
	}

	src.emit(1200)
	if obs.Width() != 800 || len(got) != 1 {
		t.Fatalf("late resize should be dropped, width = %v callbacks = %v", obs.Width(), got)
	}

	obs.Start()
	if len(src.fns) != 1 {
		t.Fatal("a stopped observer must not resubscribe")
	}
}

func TestWidthObserverStopBeforeStart(t *testing.T) {
	src := &manualSource{}
	obs := NewWidthObserver(src, nil)
	obs.Stop()
	obs.Start()
	if len(src.fns) != 0 || src.unsubscribed != 0 {
		t.Fatalf("unexpected source activity: %d subscriptions, %d unsubscribes", len(src.fns), src.unsubscribed)
	}
}

func TestFixedWidthMeasuresOnStart(t *testing.T) {
	obs := NewWidthObserver(FixedWidth(420), nil)
	defer obs.Stop()
	obs.Start()
	if obs.Width() != 420 {
		t.Fatalf("width = %v, want 420", obs.Width())
	}

	zero := NewWidthObserver(FixedWidth(0), nil)
	defer zero.Stop()
	zero.Start()
	if zero.Width() != DefaultWidth {
		t.Fatalf("zero width should keep default, got %v", zero.Width())
	}
}

func TestChartMountFollowsResize(t *testing.T) {
	src := &manualSource{}
	c := New(sampleData())
	obs := c.Mount(src)
	defer obs.Stop()

	src.emit(900)
	if c.Width() != 900 {
		t.Fatalf("chart width = %v, want 900", c.Width())
	}
	src.emit(10)
	if c.Width() != MinWidth {
		t.Fatalf("narrow width should clamp to %d, got %v", MinWidth, c.Width())
	}
}
