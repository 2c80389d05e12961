package export

import (
	"sync"

	"github.com/vanderheijden86/wsjfboard/pkg/scene"
)

// FrameQueue is a PaintScheduler for offline rendering. Callbacks queue up
// until Flush, which stands in for the frame being painted.
type FrameQueue struct {
	mu    sync.Mutex
	queue []func()
}

// NewFrameQueue returns an empty queue.
func NewFrameQueue() *FrameQueue {
	return &FrameQueue{}
}

// AfterPaint implements bubble.PaintScheduler.
func (q *FrameQueue) AfterPaint(fn func()) {
	if fn == nil {
		return
	}
	q.mu.Lock()
	q.queue = append(q.queue, fn)
	q.mu.Unlock()
}

// Len returns the number of queued callbacks.
func (q *FrameQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.queue)
}

// Flush runs queued callbacks in FIFO order, including callbacks queued by
// the ones being run, and returns how many ran.
func (q *FrameQueue) Flush() int {
	ran := 0
	for {
		q.mu.Lock()
		if len(q.queue) == 0 {
			q.mu.Unlock()
			return ran
		}
		fn := q.queue[0]
		q.queue[0] = nil
		q.queue = q.queue[1:]
		q.mu.Unlock()

		fn()
		ran++
	}
}

// FontGate is a FontSource whose metrics become available when Ready is
// called. WhenReady callbacks registered before then are held back.
type FontGate struct {
	scene.Measurer

	mu      sync.Mutex
	ready   bool
	waiting []func()
}

// NewFontGate wraps m; a nil m uses scene.FaceMeasurer.
func NewFontGate(m scene.Measurer) *FontGate {
	if m == nil {
		m = scene.FaceMeasurer{}
	}
	return &FontGate{Measurer: m}
}

// WhenReady implements bubble.FontSource.
func (g *FontGate) WhenReady(fn func()) {
	g.mu.Lock()
	if !g.ready {
		g.waiting = append(g.waiting, fn)
		g.mu.Unlock()
		return
	}
	g.mu.Unlock()
	fn()
}

// Ready marks the fonts loaded and runs held callbacks in order.
func (g *FontGate) Ready() {
	g.mu.Lock()
	g.ready = true
	waiting := g.waiting
	g.waiting = nil
	g.mu.Unlock()
	for _, fn := range waiting {
		fn()
	}
}
