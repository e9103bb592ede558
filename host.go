package bramble

import "sort"

// FrameHandle identifies a scheduled frame or timer callback. Zero is never
// a valid handle.
type FrameHandle uint64

// Host is the environment a GameLoop runs in: a clock, a per-frame callback
// (vsync-style), one-shot timers, and page/window visibility notifications.
// Every callback runs on the host's single loop goroutine.
type Host interface {
	// Now returns a monotonic timestamp in milliseconds.
	Now() float64
	// RequestFrame schedules cb for the next displayed frame.
	RequestFrame(cb func(timestamp float64)) FrameHandle
	// CancelFrame cancels a pending frame callback.
	CancelFrame(h FrameHandle)
	// SetTimer schedules cb after delay milliseconds.
	SetTimer(delay float64, cb func()) FrameHandle
	// CancelTimer cancels a pending timer.
	CancelTimer(h FrameHandle)
	// OnVisibilityChange registers fn for hidden/visible transitions and
	// returns a function that detaches it.
	OnVisibilityChange(fn func(hidden bool)) (detach func())
}

// ManualHost is a Host driven explicitly by Advance. It suits headless runs
// and tests.
type ManualHost struct {
	now      float64
	next     FrameHandle
	frames   map[FrameHandle]func(float64)
	timers   map[FrameHandle]manualTimer
	watchers map[FrameHandle]func(bool)
	hidden   bool
}

type manualTimer struct {
	due float64
	cb  func()
}

// NewManualHost returns a host whose clock starts at zero.
func NewManualHost() *ManualHost {
	return &ManualHost{
		frames:   make(map[FrameHandle]func(float64)),
		timers:   make(map[FrameHandle]manualTimer),
		watchers: make(map[FrameHandle]func(bool)),
	}
}

func (h *ManualHost) handle() FrameHandle {
	h.next++
	return h.next
}

// Now returns the manual clock.
func (h *ManualHost) Now() float64 { return h.now }

// RequestFrame queues cb until the next Advance.
func (h *ManualHost) RequestFrame(cb func(float64)) FrameHandle {
	id := h.handle()
	h.frames[id] = cb
	return id
}

// CancelFrame drops a queued frame callback.
func (h *ManualHost) CancelFrame(id FrameHandle) { delete(h.frames, id) }

// SetTimer queues cb to fire once the clock reaches now+delay.
func (h *ManualHost) SetTimer(delay float64, cb func()) FrameHandle {
	id := h.handle()
	h.timers[id] = manualTimer{due: h.now + delay, cb: cb}
	return id
}

// CancelTimer drops a queued timer.
func (h *ManualHost) CancelTimer(id FrameHandle) { delete(h.timers, id) }

// OnVisibilityChange registers fn.
func (h *ManualHost) OnVisibilityChange(fn func(bool)) func() {
	id := h.handle()
	h.watchers[id] = fn
	return func() { delete(h.watchers, id) }
}

// Pending reports how many frame callbacks and timers are queued.
func (h *ManualHost) Pending() (frames, timers int) {
	return len(h.frames), len(h.timers)
}

// Watchers reports how many visibility handlers are attached.
func (h *ManualHost) Watchers() int { return len(h.watchers) }

// Advance moves the clock forward by ms, fires the timers that came due in
// deadline order, then runs the frame callbacks queued before the call.
// Callbacks scheduled while advancing wait for the next Advance.
func (h *ManualHost) Advance(ms float64) {
	h.now += ms

	var due []FrameHandle
	for id, t := range h.timers {
		if t.due <= h.now {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool {
		a, b := h.timers[due[i]], h.timers[due[j]]
		if a.due != b.due {
			return a.due < b.due
		}
		return due[i] < due[j]
	})
	for _, id := range due {
		t, ok := h.timers[id]
		if !ok {
			continue
		}
		delete(h.timers, id)
		t.cb()
	}

	ids := make([]FrameHandle, 0, len(h.frames))
	for id := range h.frames {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		cb, ok := h.frames[id]
		if !ok {
			continue
		}
		delete(h.frames, id)
		cb(h.now)
	}
}

// SetHidden changes visibility and notifies watchers when it differs.
func (h *ManualHost) SetHidden(hidden bool) {
	if h.hidden == hidden {
		return
	}
	h.hidden = hidden
	ids := make([]FrameHandle, 0, len(h.watchers))
	for id := range h.watchers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if fn, ok := h.watchers[id]; ok {
			fn(hidden)
		}
	}
}
