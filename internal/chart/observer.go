package chart

import "sync"

// WidthSource reports the measured width of the chart container.
// Subscribe registers fn and returns the function that unregisters it.
type WidthSource interface {
	Subscribe(fn func(width float64)) (unsubscribe func())
}

// FixedWidth is a WidthSource that measures once, synchronously, on
// subscription. Non-positive widths are ignored.
type FixedWidth float64

// Subscribe calls fn with the fixed width.
func (w FixedWidth) Subscribe(fn func(width float64)) func() {
	if w > 0 {
		fn(float64(w))
	}
	return func() {}
}

// WidthObserver tracks a container width between Start and Stop. Stop must
// be called on every exit path once Start has been called; both are
// idempotent. A stopped observer cannot be restarted.
type WidthObserver struct {
	mu          sync.Mutex
	src         WidthSource
	onResize    func(width float64)
	width       float64
	unsubscribe func()
}

// NewWidthObserver creates an observer reporting to onResize, which may be nil.
func NewWidthObserver(src WidthSource, onResize func(width float64)) *WidthObserver {
	return &WidthObserver{src: src, onResize: onResize, width: DefaultWidth}
}

// Start subscribes to the source.
func (o *WidthObserver) Start() {
	o.mu.Lock()
	if o.unsubscribe != nil || o.src == nil {
		o.mu.Unlock()
		return
	}
	// Subscribe may call back synchronously; the lock is not held then.
	o.unsubscribe = func() {}
	o.mu.Unlock()

	unsub := o.src.Subscribe(o.resize)

	o.mu.Lock()
	if o.src == nil {
		// Stopped while subscribing.
		o.mu.Unlock()
		unsub()
		return
	}
	o.unsubscribe = unsub
	o.mu.Unlock()
}

// Stop releases the subscription.
func (o *WidthObserver) Stop() {
	o.mu.Lock()
	unsub := o.unsubscribe
	o.unsubscribe = nil
	o.src = nil
	o.mu.Unlock()
	if unsub != nil {
		unsub()
	}
}

// Width returns the last measured width, DefaultWidth before any measurement.
func (o *WidthObserver) Width() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.width
}

// Active reports whether the observer is subscribed.
func (o *WidthObserver) Active() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.unsubscribe != nil
}

func (o *WidthObserver) resize(width float64) {
	if width <= 0 {
		return
	}
	o.mu.Lock()
	if o.src == nil {
		// Stopped: late callbacks from the source are dropped.
		o.mu.Unlock()
		return
	}
	o.width = width
	fn := o.onResize
	o.mu.Unlock()
	if fn != nil {
		fn(width)
	}
}
