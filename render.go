package bramble

import (
	"fmt"
	"time"

	"go.uber.org/zap"
)

// DefaultMaxBatchSize is the number of sprites after which a batch is
// flushed even if the texture does not change.
const DefaultMaxBatchSize = 1000

// RendererOptions configures NewRenderer. Provider takes precedence over
// Canvas; with neither the renderer runs headless on BackendNone.
type RendererOptions struct {
	Provider     ContextProvider
	Canvas       Canvas
	MaxBatchSize int
	ClearColor   Color
	Viewport     *Viewport
	Camera       *Camera
	// PostProcess runs at End on the 2D backend with an identity transform.
	PostProcess func(s Surface)
	Logger      *zap.Logger
	// Now overrides the clock used for FrameStats.Elapsed.
	Now func() time.Time
}

// SpriteOptions describes one sprite draw. Zero values select the defaults:
// native size, centered origin, no tint and a parallax of (1, 1).
type SpriteOptions struct {
	X, Y          float64
	Width, Height float64
	// Origin is the pivot as a fraction of the size. Nil uses the region's
	// origin, or (0.5, 0.5).
	Origin   *Vec2
	Rotation float64
	// Tint multiplies the sprite color; A is the sprite alpha. Nil draws
	// the texture unchanged.
	Tint *Color
	// Parallax scales the camera offset. Nil means (1, 1); (0, 0) pins the
	// sprite to the screen.
	Parallax *Vec2
	Blend    BlendMode
	FlipX    bool
	FlipY    bool
}

// FrameStats summarises one Begin/End pair.
type FrameStats struct {
	DrawCalls int
	Sprites   int
	Batches   int
	Elapsed   time.Duration
}

// Renderer batches sprite draws by texture and submits them to a Surface or
// TriangleSurface. A Renderer is used from a single goroutine; draws happen
// between Begin and End.
type Renderer struct {
	log     *zap.Logger
	backend Backend
	surface Surface
	tri     TriangleSurface

	maxBatch    int
	clearColor  Color
	viewport    *Viewport
	camera      *Camera
	postProcess func(Surface)
	now         func() time.Time

	drawing   bool
	started   time.Time
	stats     FrameStats
	lastStats FrameStats
	vt        ViewportTransform

	batch spriteBatch
	verts []Vertex
	inds  []uint32
}

// NewRenderer selects a backend and returns a renderer ready for Begin.
func NewRenderer(opts RendererOptions) *Renderer {
	r := &Renderer{
		log:         loggerOr(opts.Logger),
		maxBatch:    opts.MaxBatchSize,
		clearColor:  opts.ClearColor,
		viewport:    opts.Viewport,
		camera:      opts.Camera,
		postProcess: opts.PostProcess,
		now:         opts.Now,
	}
	if r.maxBatch <= 0 {
		r.maxBatch = DefaultMaxBatchSize
	}
	if r.now == nil {
		r.now = time.Now
	}

	var ctx any
	switch {
	case opts.Provider != nil:
		ctx = opts.Provider()
	case opts.Canvas != nil:
		ctx = contextFromCanvas(opts.Canvas)
	}
	r.backend, r.surface, r.tri = detectBackend(ctx)
	r.log.Debug("renderer created", zap.Stringer("backend", r.backend), zap.Int("max_batch_size", r.maxBatch))
	return r
}

// Backend returns the selected backend.
func (r *Renderer) Backend() Backend { return r.backend }

// Size returns the surface size, or zero on BackendNone.
func (r *Renderer) Size() (w, h float64) {
	switch r.backend {
	case Backend2D:
		return r.surface.Size()
	case BackendGL:
		return r.tri.Size()
	}
	return 0, 0
}

// Camera returns the active camera, or nil.
func (r *Renderer) Camera() *Camera { return r.camera }

// SetCamera replaces the active camera. Nil disables the camera transform.
func (r *Renderer) SetCamera(c *Camera) { r.camera = c }

// Viewport returns the active viewport, or nil.
func (r *Renderer) Viewport() *Viewport { return r.viewport }

// SetViewport replaces the active viewport. Nil draws in raw screen space.
func (r *Renderer) SetViewport(v *Viewport) { r.viewport = v }

// SetPostProcess replaces the post-process hook.
func (r *Renderer) SetPostProcess(fn func(Surface)) { r.postProcess = fn }

// MaxBatchSize returns the flush threshold.
func (r *Renderer) MaxBatchSize() int { return r.maxBatch }

// Drawing reports whether a frame is open.
func (r *Renderer) Drawing() bool { return r.drawing }

// Stats returns the statistics of the last completed frame.
func (r *Renderer) Stats() FrameStats { return r.lastStats }

// Begin resets the frame statistics, clears the surface and installs the
// viewport transform. Calling Begin with a frame open discards the open
// frame's pending batch.
func (r *Renderer) Begin() {
	if r.drawing {
		r.log.Warn("renderer Begin called twice without End; discarding pending batch")
	}
	r.drawing = true
	r.started = r.now()
	r.stats = FrameStats{}
	r.batch.reset()
	r.vt = ViewportTransform{Scale: 1}

	switch r.backend {
	case Backend2D:
		r.surface.ResetTransform()
		r.surface.Clear(r.clearColor)
		if r.viewport != nil {
			r.vt = r.viewport.Apply(r.surface)
		}
	case BackendGL:
		r.tri.Clear(r.clearColor)
		if r.viewport != nil {
			w, h := r.tri.Size()
			r.vt = r.viewport.Compute(w, h)
		}
	}
}

// DrawSprite queues d for drawing. It returns ErrNotDrawing outside a
// Begin/End pair.
func (r *Renderer) DrawSprite(d Drawable, opts SpriteOptions) error {
	if !r.drawing {
		return ErrNotDrawing
	}
	if d == nil {
		return fmt.Errorf("%w: nil drawable", ErrInvalidArgument)
	}
	cmd := newSpriteCommand(d.resolve(), opts)
	if cmd.src.texture == nil {
		return fmt.Errorf("%w: drawable has no texture", ErrInvalidArgument)
	}
	r.enqueue(cmd)
	return nil
}

// End flushes the pending batch, runs the post-process hook and returns the
// frame statistics.
func (r *Renderer) End() (FrameStats, error) {
	if !r.drawing {
		return FrameStats{}, ErrNotDrawing
	}
	r.flush()
	r.drawing = false

	if r.backend == Backend2D && r.postProcess != nil {
		r.surface.ResetTransform()
		r.runPostProcess()
	}

	r.stats.Elapsed = r.now().Sub(r.started)
	r.lastStats = r.stats
	return r.stats, nil
}

func (r *Renderer) runPostProcess() {
	defer func() {
		if p := recover(); p != nil {
			r.log.Warn("post-process hook panicked", zap.Any("panic", p))
		}
	}()
	r.postProcess(r.surface)
}

// screenPosition applies the camera to a sprite's world position.
func (r *Renderer) screenPosition(cmd *spriteCommand) (x, y, zoom float64) {
	if r.camera == nil {
		return cmd.x, cmd.y, 1
	}
	x, y = r.camera.project(cmd.x, cmd.y, cmd.parallax)
	return x, y, r.camera.Zoom
}
