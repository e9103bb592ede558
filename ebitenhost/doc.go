// Package ebitenhost runs a bramble Engine on [Ebitengine].
//
// [Game] implements both ebiten.Game and bramble.Host: frame callbacks run
// from Draw, timers from Update, and window focus drives visibility. The
// engine renders into an offscreen buffer that Draw presents, so the loop
// can run in either vsync or timed mode.
//
// [Surface] adapts an *ebiten.Image to bramble.Surface (per-sprite drawing
// with a canvas-style transform stack) and [GPUSurface] adds
// bramble.TriangleSurface for batched drawing. [Canvas] hands out either.
//
//	err := ebitenhost.Run(cfg, ebitenhost.RunOptions{Title: "demo"}, func(e *bramble.Engine, g *ebitenhost.Game) error {
//		// register clips, create entities and systems
//		return nil
//	})
//
// A [Script] replays screenshot, wait, pause, resume, timescale and quit
// actions one per update, which is enough for unattended capture runs.
//
// [Ebitengine]: https://ebitengine.org
package ebitenhost
