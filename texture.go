package bramble

import (
	"encoding/json"
	"fmt"
	"image"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
)

// Image is an opaque drawable source handle supplied by the host surface
// (an *ebiten.Image, for example). Only its bounds are inspected.
type Image interface {
	Bounds() image.Rectangle
}

// Texture is a drawable source image with an identity. Commands sharing a
// texture ID batch together.
type Texture struct {
	ID     string
	Width  int
	Height int
	Source Image

	key uint64
}

// NewTexture wraps src. An empty id is replaced by a random UUID.
func NewTexture(id string, src Image) *Texture {
	t := &Texture{ID: id, Source: src}
	if src != nil {
		b := src.Bounds()
		t.Width, t.Height = b.Dx(), b.Dy()
	}
	t.init()
	return t
}

// NewSizedTexture creates a texture with explicit dimensions, for sources
// whose bounds are not yet known or that have no pixels at all.
func NewSizedTexture(id string, width, height int, src Image) *Texture {
	t := &Texture{ID: id, Width: width, Height: height, Source: src}
	t.init()
	return t
}

func (t *Texture) init() {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.key = xxhash.Sum64String(t.ID)
}

// identity returns the batch key for the texture.
func (t *Texture) identity() uint64 {
	if t.key == 0 {
		t.init()
	}
	return t.key
}

// TextureRegion is a sub-rectangle of a parent texture with an optional
// default origin (fractions of the region size).
type TextureRegion struct {
	Texture *Texture
	X, Y    float64
	Width   float64
	Height  float64
	Origin  *Vec2
}

// Rect returns the region's source rectangle.
func (r TextureRegion) Rect() Rect {
	return Rect{X: r.X, Y: r.Y, Width: r.Width, Height: r.Height}
}

// Drawable is either a *Texture or a TextureRegion.
type Drawable interface {
	resolve() resolvedDrawable
}

// resolvedDrawable is the common projection of both Drawable variants,
// computed once per draw call.
type resolvedDrawable struct {
	texture *Texture
	sub     *Rect // nil draws the whole source
	width   float64
	height  float64
	origin  *Vec2
}

func (t *Texture) resolve() resolvedDrawable {
	return resolvedDrawable{texture: t, width: float64(t.Width), height: float64(t.Height)}
}

func (r TextureRegion) resolve() resolvedDrawable {
	sub := r.Rect()
	return resolvedDrawable{texture: r.Texture, sub: &sub, width: r.Width, height: r.Height, origin: r.Origin}
}

// TextureAtlas maps region names to regions of one or more textures. Regions
// are immutable once added.
type TextureAtlas struct {
	regions map[string]TextureRegion
}

// NewTextureAtlas returns an empty atlas.
func NewTextureAtlas() *TextureAtlas {
	return &TextureAtlas{regions: make(map[string]TextureRegion)}
}

// Add registers a region. Re-registering a name fails.
func (a *TextureAtlas) Add(name string, region TextureRegion) error {
	if _, dup := a.regions[name]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicateRegion, name)
	}
	a.regions[name] = region
	return nil
}

// AddGrid slices tex into equally sized cells, row-major, naming them
// prefix0, prefix1, ...
func (a *TextureAtlas) AddGrid(prefix string, tex *Texture, cellW, cellH int) ([]string, error) {
	if cellW <= 0 || cellH <= 0 {
		return nil, fmt.Errorf("%w: grid cell %dx%d", ErrInvalidArgument, cellW, cellH)
	}
	var names []string
	for y := 0; y+cellH <= tex.Height; y += cellH {
		for x := 0; x+cellW <= tex.Width; x += cellW {
			name := fmt.Sprintf("%s%d", prefix, len(names))
			err := a.Add(name, TextureRegion{
				Texture: tex,
				X:       float64(x), Y: float64(y),
				Width: float64(cellW), Height: float64(cellH),
			})
			if err != nil {
				return names, err
			}
			names = append(names, name)
		}
	}
	return names, nil
}

// Region returns the named region.
func (a *TextureAtlas) Region(name string) (TextureRegion, error) {
	r, ok := a.regions[name]
	if !ok {
		return TextureRegion{}, fmt.Errorf("%w: %q", ErrRegionNotFound, name)
	}
	return r, nil
}

// MustRegion is like Region but panics for an unknown name.
func (a *TextureAtlas) MustRegion(name string) TextureRegion {
	r, err := a.Region(name)
	if err != nil {
		panic(err)
	}
	return r
}

// Has reports whether name is registered.
func (a *TextureAtlas) Has(name string) bool {
	_, ok := a.regions[name]
	return ok
}

// Names returns the registered region names, sorted.
func (a *TextureAtlas) Names() []string {
	names := make([]string, 0, len(a.regions))
	for n := range a.regions {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// LoadAtlas parses TexturePacker JSON and binds its frames to the given page
// textures. Supports both the hash format (single "frames" object, page 0)
// and the array format ("textures" array with per-page frame lists).
func LoadAtlas(jsonData []byte, pages ...*Texture) (*TextureAtlas, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("bramble: failed to parse atlas JSON: %w", err)
	}

	atlas := NewTextureAtlas()
	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("bramble: failed to parse atlas textures array: %w", err)
		}
		for i, tex := range textures {
			if err := atlas.addFrames(tex.Frames, i, pages); err != nil {
				return nil, err
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("bramble: failed to parse atlas frames: %w", err)
		}
		if err := atlas.addFrames(frames, 0, pages); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("bramble: atlas JSON has neither \"frames\" nor \"textures\" key")
	}
	return atlas, nil
}

// --- JSON structure types ---

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonPivot struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type jsonFrame struct {
	Frame   jsonRect   `json:"frame"`
	Rotated bool       `json:"rotated"`
	Pivot   *jsonPivot `json:"pivot"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func (a *TextureAtlas) addFrames(frames map[string]jsonFrame, page int, pages []*Texture) error {
	if page >= len(pages) || pages[page] == nil {
		return fmt.Errorf("bramble: atlas page %d has no texture", page)
	}
	// Sorted for deterministic error reporting.
	names := make([]string, 0, len(frames))
	for name := range frames {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		f := frames[name]
		if f.Rotated {
			return fmt.Errorf("bramble: atlas frame %q is rotated; rotated packing is not supported", name)
		}
		region := TextureRegion{
			Texture: pages[page],
			X:       float64(f.Frame.X),
			Y:       float64(f.Frame.Y),
			Width:   float64(f.Frame.W),
			Height:  float64(f.Frame.H),
		}
		if f.Pivot != nil {
			region.Origin = &Vec2{X: f.Pivot.X, Y: f.Pivot.Y}
		}
		if err := a.Add(name, region); err != nil {
			return err
		}
	}
	return nil
}
