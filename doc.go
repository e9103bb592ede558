// Package bramble is an ECS-driven 2D sprite engine core.
//
// An [Engine] ties together an [ecs.World], a fixed-step [GameLoop] driven by
// a [TimeManager], a batching [Renderer] with a [Camera] and optional
// [Viewport], the animation subsystem and particle [Emitter]s. The platform
// is supplied by a [Host]: ebitenhost runs the engine in an Ebitengine
// window and [ManualHost] drives it deterministically from tests.
//
// # Quick start
//
//	cfg, err := bramble.LoadConfig("bramble.toml")
//	if err != nil {
//		log.Fatal(err)
//	}
//	err = ebitenhost.Run(cfg, ebitenhost.RunOptions{Title: "demo"},
//		func(e *bramble.Engine, g *ebitenhost.Game) error {
//			ent := e.World.CreateEntity()
//			_ = ecs.Add(e.World, ent, bramble.TransformComponent, bramble.NewTransform(100, 100))
//			return ecs.Add(e.World, ent, bramble.SpriteComponent, bramble.Sprite{Drawable: tex})
//		})
//
// # Time and the loop
//
// Frame deltas are converted into whole simulation steps of FixedDelta
// milliseconds. The accumulator is clamped to MaxAccumulator so a long stall
// cannot trigger a spiral of catch-up steps. The leftover fraction is passed
// to the render stage as the interpolation alpha; [Transform] keeps the
// previous step's pose so sprites render between the two.
//
// # Rendering
//
// The [Renderer] picks a backend from the host canvas. On a
// [TriangleSurface] sprites are batched into quads and flushed when the
// texture changes or the batch is full. On a plain [Surface] each sprite is
// drawn with canvas-style transforms. Draw errors and panics from one sprite
// are logged and never abort the frame.
//
// # Animation
//
// [AnimationClip]s are registered once in a [ClipRegistry] and played per
// entity through the [SpriteAnimation] component. The [AnimationController]
// is the entity-level API; the animation system advances every playing
// entity each step and then dispatches completed, looped and frame events.
//
// # Particles
//
// An [Emitter] spawns [Particle]s at a rate or in bursts, integrates them and
// applies [Behavior]s such as [Gravity] and [AlphaOverLife]. Emitters render
// through anything implementing [SpriteDrawer], including the Renderer.
//
// # Configuration and logging
//
// [Config] is read from TOML or YAML by [LoadConfig]. Logging goes through
// zap; [SetLogger] replaces the package logger and each component accepts
// its own.
package bramble
