package bramble

import "github.com/phanxgames/bramble/ecs"

// Transform is an entity's world placement. Prev* hold the values at the
// start of the current step so renders can interpolate between steps.
type Transform struct {
	X        float64 `json:"x" yaml:"x"`
	Y        float64 `json:"y" yaml:"y"`
	Rotation float64 `json:"rotation" yaml:"rotation"`
	ScaleX   float64 `json:"scale_x" yaml:"scale_x"`
	ScaleY   float64 `json:"scale_y" yaml:"scale_y"`

	PrevX        float64 `json:"prev_x" yaml:"prev_x"`
	PrevY        float64 `json:"prev_y" yaml:"prev_y"`
	PrevRotation float64 `json:"prev_rotation" yaml:"prev_rotation"`
}

// NewTransform returns a transform at (x, y) with unit scale and no motion
// history.
func NewTransform(x, y float64) Transform {
	return Transform{X: x, Y: y, ScaleX: 1, ScaleY: 1, PrevX: x, PrevY: y}
}

// Interpolated blends the previous and current placement by alpha.
func (t *Transform) Interpolated(alpha float64) (x, y, rotation float64) {
	return lerp(t.PrevX, t.X, alpha), lerp(t.PrevY, t.Y, alpha), lerp(t.PrevRotation, t.Rotation, alpha)
}

// Teleport moves the transform without interpolating from the old place.
func (t *Transform) Teleport(x, y float64) {
	t.X, t.Y = x, y
	t.PrevX, t.PrevY = x, y
}

// TransformComponent is the ECS definition for Transform.
var TransformComponent = ecs.Define("bramble.Transform",
	ecs.WithDefaults(func() Transform { return NewTransform(0, 0) }),
)

// TransformHistorySystem records each transform's placement at the start of
// every step. It runs first in the init stage.
func TransformHistorySystem() *ecs.FuncSystem {
	return ecs.NewSystem("bramble.transform_history", ecs.StageInit, func(ctx *ecs.TickContext) {
		q := ctx.World.Query(ecs.QuerySpec{All: []ecs.Definition{TransformComponent}})
		for row := range q.Rows() {
			t := ecs.Field(row, TransformComponent)
			t.PrevX, t.PrevY, t.PrevRotation = t.X, t.Y, t.Rotation
		}
	}).WithOrder(-1000)
}
