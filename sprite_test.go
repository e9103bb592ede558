package bramble

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/bramble/ecs"
)

func newSpriteWorld(t *testing.T, clips *ClipRegistry) (*ecs.World, *Renderer, *recordingSurface) {
	t.Helper()
	r, s := new2DRenderer(t, RendererOptions{})
	w := ecs.NewWorld()
	require.NoError(t, w.RegisterSystem(TransformHistorySystem()))
	require.NoError(t, w.RegisterSystem(NewSpriteRenderSystem(r, clips, nil)))
	return w, r, s
}

func addSprite(t *testing.T, w *ecs.World, x, y float64, sp Sprite) ecs.Entity {
	t.Helper()
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, TransformComponent, NewTransform(x, y)))
	require.NoError(t, ecs.Add(w, e, SpriteComponent, sp))
	return e
}

func renderFrame(t *testing.T, w *ecs.World, r *Renderer, alpha float64) FrameStats {
	t.Helper()
	r.Begin()
	w.Render(alpha)
	stats, err := r.End()
	require.NoError(t, err)
	return stats
}

func TestSpriteRenderLayerOrder(t *testing.T) {
	w, r, s := newSpriteWorld(t, nil)
	tex := testTexture("a", 4, 4)
	addSprite(t, w, 30, 0, Sprite{Drawable: tex, Layer: 2})
	addSprite(t, w, 10, 0, Sprite{Drawable: tex, Layer: 1})
	addSprite(t, w, 20, 0, Sprite{Drawable: tex, Layer: 1})
	addSprite(t, w, 99, 0, Sprite{Drawable: tex, Hidden: true})

	stats := renderFrame(t, w, r, 1)
	assert.Equal(t, 3, stats.Sprites)

	var order []string
	for _, c := range s.calls {
		if len(c) > 9 && c[:9] == "translate" {
			order = append(order, c)
		}
	}
	assert.Equal(t, []string{"translate 10 0", "translate 20 0", "translate 30 0"}, order)
}

func TestSpriteRenderInterpolates(t *testing.T) {
	w, r, s := newSpriteWorld(t, nil)
	e := addSprite(t, w, 0, 0, Sprite{Drawable: testTexture("a", 4, 4)})
	require.NoError(t, w.RegisterSystem(ecs.NewSystem("move", ecs.StageUpdate, func(ctx *ecs.TickContext) {
		ecs.Get(ctx.World, e, TransformComponent).X += 10
	})))

	w.Step(16)
	renderFrame(t, w, r, 0.25)
	assert.Contains(t, s.calls, "translate 2.5 0")
}

func TestSpriteRenderScaleAndNativeSize(t *testing.T) {
	w, r, s := newSpriteWorld(t, nil)
	e := addSprite(t, w, 0, 0, Sprite{Drawable: testTexture("a", 8, 4)})
	ecs.Get(w, e, TransformComponent).ScaleX = 2
	addSprite(t, w, 0, 0, Sprite{Drawable: testTexture("b", 8, 4), Width: 3, Height: 3})

	renderFrame(t, w, r, 1)
	assert.Contains(t, s.calls, "draw 0 0 8 4 -> -8 -2 16 4")
	assert.Contains(t, s.calls, "draw 0 0 8 4 -> -1.5 -1.5 3 3")
}

func TestSpriteRenderUsesAnimationFrame(t *testing.T) {
	f := newAnimFixture(t, nil)
	w, r, s := newSpriteWorld(t, f.clips)
	e := addSprite(t, w, 0, 0, Sprite{})
	ctrl := NewAnimationController(w, f.clips, nil)
	require.NoError(t, ctrl.Attach(e, "loop", nil))
	ctrl.Step(e, 2)
	ctrl.SetFlip(e, false, true)

	stats := renderFrame(t, w, r, 1)
	assert.Equal(t, 1, stats.Sprites)
	// Frame 2 of the grid is the third 16x16 cell.
	assert.Contains(t, s.calls, "draw 32 0 16 16 -> -8 -8 16 16")
	assert.Contains(t, s.calls, "scale 1 -1")
}

func TestSpriteRenderSkipsWithoutDrawable(t *testing.T) {
	w, r, _ := newSpriteWorld(t, nil)
	addSprite(t, w, 0, 0, Sprite{})
	stats := renderFrame(t, w, r, 1)
	assert.Zero(t, stats.Sprites)
}

func TestSpriteDefaults(t *testing.T) {
	w := ecs.NewWorld()
	e := w.CreateEntity()
	sp, err := ecs.Ensure(w, e, SpriteComponent)
	require.NoError(t, err)
	assert.Nil(t, sp.Tint)

	tr, err := ecs.Ensure(w, e, TransformComponent)
	require.NoError(t, err)
	assert.Equal(t, 1.0, tr.ScaleX)
}

func TestTransformHistory(t *testing.T) {
	w := ecs.NewWorld()
	require.NoError(t, w.RegisterSystem(TransformHistorySystem()))
	e := w.CreateEntity()
	require.NoError(t, ecs.Add(w, e, TransformComponent, NewTransform(5, 5)))

	tr := ecs.Get(w, e, TransformComponent)
	tr.X, tr.Rotation = 15, 1
	w.Step(10)

	tr = ecs.Get(w, e, TransformComponent)
	assert.Equal(t, 15.0, tr.PrevX)
	assert.Equal(t, 1.0, tr.PrevRotation)

	tr.Teleport(100, 100)
	x, y, _ := tr.Interpolated(0.5)
	assert.Equal(t, 100.0, x)
	assert.Equal(t, 100.0, y)
}
