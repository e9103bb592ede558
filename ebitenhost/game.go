package ebitenhost

import (
	"sort"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/bramble"
)

// GameOptions configures NewGame.
type GameOptions struct {
	// Width and Height fix the logical screen size. Zero follows the window.
	Width, Height int
	// Overlay draws FPS and frame statistics on top of each frame.
	Overlay bool
	// ScreenshotDir receives captures queued by Screenshot. Empty uses
	// DefaultScreenshotDir.
	ScreenshotDir string
	Logger        *zap.Logger
}

type timer struct {
	due float64
	cb  func()
}

// Game is an ebiten.Game that also serves as a bramble.Host. The engine draws
// into an offscreen buffer; Draw presents it.
type Game struct {
	log     *zap.Logger
	start   time.Time
	width   int
	height  int
	overlay bool

	next     bramble.FrameHandle
	frames   map[bramble.FrameHandle]func(float64)
	timers   map[bramble.FrameHandle]timer
	watchers map[bramble.FrameHandle]func(bool)
	hidden   bool

	buffer *ebiten.Image
	canvas *Canvas
	stats  func() bramble.FrameStats
	quit   bool

	clock   *bramble.TimeManager
	script  *Script
	shots   []string
	shotDir string
}

// NewGame returns a host whose clock starts now.
func NewGame(opts GameOptions) *Game {
	logger := opts.Logger
	if logger == nil {
		logger = bramble.Logger()
	}
	dir := opts.ScreenshotDir
	if dir == "" {
		dir = DefaultScreenshotDir
	}
	return &Game{
		log:      logger.Named("ebitenhost"),
		shotDir:  dir,
		start:    time.Now(),
		width:    opts.Width,
		height:   opts.Height,
		overlay:  opts.Overlay,
		frames:   make(map[bramble.FrameHandle]func(float64)),
		timers:   make(map[bramble.FrameHandle]timer),
		watchers: make(map[bramble.FrameHandle]func(bool)),
		canvas:   NewCanvas(nil),
	}
}

// Canvas returns the canvas renderers should draw to.
func (g *Game) Canvas() *Canvas { return g.canvas }

// SetStatsSource supplies the statistics shown by the overlay.
func (g *Game) SetStatsSource(fn func() bramble.FrameStats) { g.stats = fn }

// SetClock gives scripts access to the engine's time manager.
func (g *Game) SetClock(tm *bramble.TimeManager) { g.clock = tm }

// SetScript attaches a script stepped once per Update. Nil detaches.
func (g *Game) SetScript(s *Script) { g.script = s }

// Quit ends RunGame after the current update.
func (g *Game) Quit() { g.quit = true }

func (g *Game) handle() bramble.FrameHandle {
	g.next++
	return g.next
}

// Now returns milliseconds since NewGame.
func (g *Game) Now() float64 {
	return float64(time.Since(g.start).Microseconds()) / 1000
}

// RequestFrame runs cb on the next Draw.
func (g *Game) RequestFrame(cb func(float64)) bramble.FrameHandle {
	id := g.handle()
	g.frames[id] = cb
	return id
}

// CancelFrame drops a pending frame callback.
func (g *Game) CancelFrame(id bramble.FrameHandle) { delete(g.frames, id) }

// SetTimer runs cb from the first Update at or after now+delay.
func (g *Game) SetTimer(delay float64, cb func()) bramble.FrameHandle {
	id := g.handle()
	g.timers[id] = timer{due: g.Now() + delay, cb: cb}
	return id
}

// CancelTimer drops a pending timer.
func (g *Game) CancelTimer(id bramble.FrameHandle) { delete(g.timers, id) }

// OnVisibilityChange registers fn for focus changes.
func (g *Game) OnVisibilityChange(fn func(bool)) func() {
	id := g.handle()
	g.watchers[id] = fn
	return func() { delete(g.watchers, id) }
}

// Update steps the attached script, tracks window focus and fires due
// timers.
func (g *Game) Update() error {
	if g.script != nil {
		g.script.step(g)
	}
	if g.quit {
		return ebiten.Termination
	}
	g.setHidden(!ebiten.IsFocused())
	g.ensureBuffer()

	now := g.Now()
	var due []bramble.FrameHandle
	for id, t := range g.timers {
		if t.due <= now {
			due = append(due, id)
		}
	}
	sort.Slice(due, func(i, j int) bool { return due[i] < due[j] })
	for _, id := range due {
		t, ok := g.timers[id]
		if !ok {
			continue
		}
		delete(g.timers, id)
		t.cb()
	}
	return nil
}

// Draw runs pending frame callbacks and presents the buffer.
func (g *Game) Draw(screen *ebiten.Image) {
	g.ensureBuffer()
	if len(g.frames) > 0 {
		ids := make([]bramble.FrameHandle, 0, len(g.frames))
		for id := range g.frames {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
		now := g.Now()
		for _, id := range ids {
			cb, ok := g.frames[id]
			if !ok {
				continue
			}
			delete(g.frames, id)
			cb(now)
		}
	}
	if g.buffer != nil {
		screen.DrawImage(g.buffer, nil)
		g.flushScreenshots(g.buffer)
	} else {
		g.flushScreenshots(screen)
	}
	if g.overlay {
		drawOverlay(screen, g.stats)
	}
}

// Layout returns the fixed logical size, or the window size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	if g.width > 0 && g.height > 0 {
		return g.width, g.height
	}
	g.width, g.height = outsideWidth, outsideHeight
	return outsideWidth, outsideHeight
}

func (g *Game) ensureBuffer() {
	if g.width <= 0 || g.height <= 0 {
		return
	}
	if g.buffer != nil {
		b := g.buffer.Bounds()
		if b.Dx() == g.width && b.Dy() == g.height {
			return
		}
		g.buffer.Deallocate()
	}
	g.buffer = ebiten.NewImage(g.width, g.height)
	g.canvas.SetTarget(g.buffer)
	g.log.Debug("render buffer allocated", zap.Int("width", g.width), zap.Int("height", g.height))
}

func (g *Game) setHidden(hidden bool) {
	if g.hidden == hidden {
		return
	}
	g.hidden = hidden
	ids := make([]bramble.FrameHandle, 0, len(g.watchers))
	for id := range g.watchers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	for _, id := range ids {
		if fn, ok := g.watchers[id]; ok {
			fn(hidden)
		}
	}
}
