// Package viewport tracks the pixel size of the map's rendering container.
package viewport

import (
	"math"
	"sync"
)

// Default size used until the container reports a measurement.
const (
	DefaultWidth  = 800
	DefaultHeight = 600
)

// Viewport is the container size in whole pixels.
type Viewport struct {
	Width  int `json:"width" doc:"Container width in pixels"`
	Height int `json:"height" doc:"Container height in pixels"`
}

// Renderable reports whether both sides are strictly positive.
func (v Viewport) Renderable() bool {
	return v.Width > 0 && v.Height > 0
}

// Observer holds the latest Viewport and fans size changes out to
// subscribers. The zero value is not usable; call NewObserver.
type Observer struct {
	mu       sync.Mutex
	current  Viewport
	measured bool
	closed   bool
	nextID   int
	subs     map[int]func(Viewport)
}

// NewObserver returns an observer at the default 800×600 size.
func NewObserver() *Observer {
	return &Observer{
		current: Viewport{Width: DefaultWidth, Height: DefaultHeight},
		subs:    make(map[int]func(Viewport)),
	}
}

// Current returns the latest viewport.
func (o *Observer) Current() Viewport {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.current
}

// Measured reports whether a real measurement has arrived.
func (o *Observer) Measured() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.measured
}

// Observe records a layout measurement. Sizes are rounded to the nearest
// pixel and subscribers run only when the rounded size changed.
// Measurements after Close are dropped.
func (o *Observer) Observe(width, height float64) {
	v := Viewport{Width: int(math.Round(width)), Height: int(math.Round(height))}

	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return
	}
	changed := !o.measured || v != o.current
	o.current = v
	o.measured = true
	var subs []func(Viewport)
	if changed {
		subs = make([]func(Viewport), 0, len(o.subs))
		for _, fn := range o.subs {
			subs = append(subs, fn)
		}
	}
	o.mu.Unlock()

	for _, fn := range subs {
		fn(v)
	}
}

// Subscribe registers fn for size changes and returns a func removing it.
func (o *Observer) Subscribe(fn func(Viewport)) (unsubscribe func()) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return func() {}
	}
	id := o.nextID
	o.nextID++
	o.subs[id] = fn
	return func() {
		o.mu.Lock()
		delete(o.subs, id)
		o.mu.Unlock()
	}
}

// Close detaches all subscribers. It is safe to call more than once.
func (o *Observer) Close() {
	o.mu.Lock()
	o.closed = true
	clear(o.subs)
	o.mu.Unlock()
}
