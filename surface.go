package bramble

// CompositeOp is a 2D surface compositing operation.
type CompositeOp uint8

const (
	CompositeSourceOver    CompositeOp = iota // standard alpha blending
	CompositeLighter                          // additive
	CompositeMultiply                         // source * destination
	CompositeScreen                           // 1 - (1-src)*(1-dst)
	CompositeDestinationIn                    // keep destination where source is opaque
)

var compositeNames = [...]string{"source-over", "lighter", "multiply", "screen", "destination-in"}

func (op CompositeOp) String() string {
	if int(op) < len(compositeNames) {
		return compositeNames[op]
	}
	return "source-over"
}

// Surface is the 2D drawing capability the Renderer needs from a host: a
// transform stack, global alpha, composite selection, image blits and solid
// fills. It mirrors an immediate-mode canvas context.
type Surface interface {
	Size() (w, h float64)
	Clear(c Color)
	ResetTransform()
	Translate(x, y float64)
	Rotate(theta float64)
	Scale(x, y float64)
	Save()
	Restore()
	SetGlobalAlpha(a float64)
	SetCompositeOp(op CompositeOp)
	// DrawImage copies the (sx, sy, sw, sh) rectangle of src into the
	// (dx, dy, dw, dh) rectangle under the current transform.
	DrawImage(src Image, sx, sy, sw, sh, dx, dy, dw, dh float64) error
	FillRect(x, y, w, h float64, c Color)
}

// Vertex is one corner of a textured triangle. Dst is in screen pixels, Src
// in source-image pixels. The color is premultiplied and multiplied into the
// sampled texel.
type Vertex struct {
	DstX, DstY float32
	SrcX, SrcY float32
	R, G, B, A float32
}

// TriangleSurface is the GPU-style capability: textured triangle lists with a
// per-vertex color. A Renderer on such a surface submits one call per batch.
type TriangleSurface interface {
	Size() (w, h float64)
	Clear(c Color)
	DrawTriangles(vertices []Vertex, indices []uint32, src Image, blend BlendMode) error
}

// Backend identifies how a Renderer draws.
type Backend uint8

const (
	BackendNone Backend = iota // draws are absorbed
	Backend2D                  // per-sprite Surface calls
	BackendGL                  // batched TriangleSurface calls
)

func (b Backend) String() string {
	switch b {
	case Backend2D:
		return "2d"
	case BackendGL:
		return "gl"
	default:
		return "none"
	}
}

// ContextProvider returns a drawing context: a TriangleSurface, a Surface,
// or anything else (which selects BackendNone).
type ContextProvider func() any

// Canvas hands out drawing contexts by kind, returning nil when a kind is
// unsupported.
type Canvas interface {
	Context(kind Backend) any
}

// detectBackend infers the backend from a context's dynamic type. Triangle
// support wins when a context offers both.
func detectBackend(ctx any) (Backend, Surface, TriangleSurface) {
	switch c := ctx.(type) {
	case TriangleSurface:
		s, _ := ctx.(Surface)
		return BackendGL, s, c
	case Surface:
		return Backend2D, c, nil
	default:
		return BackendNone, nil, nil
	}
}

// contextFromCanvas tries GL first and falls back to 2D.
func contextFromCanvas(c Canvas) any {
	if ctx := c.Context(BackendGL); ctx != nil {
		if _, ok := ctx.(TriangleSurface); ok {
			return ctx
		}
	}
	return c.Context(Backend2D)
}
