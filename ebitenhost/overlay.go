package ebitenhost

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"

	"github.com/phanxgames/bramble"
)

var overlayBackground *ebiten.Image

// drawOverlay prints FPS, TPS and the last frame's renderer statistics in the
// top-left corner.
func drawOverlay(screen *ebiten.Image, stats func() bramble.FrameStats) {
	text := fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	lines := 2
	if stats != nil {
		s := stats()
		text += fmt.Sprintf("\ndraw calls: %d\nbatches: %d\nsprites: %d", s.DrawCalls, s.Batches, s.Sprites)
		lines += 3
	}

	if overlayBackground == nil {
		overlayBackground = ebiten.NewImage(1, 1)
		// Semi-transparent background for readability
		overlayBackground.Fill(color.RGBA{0, 0, 0, 128})
	}
	var op ebiten.DrawImageOptions
	op.GeoM.Scale(140, float64(lines*16+4))
	screen.DrawImage(overlayBackground, &op)
	ebitenutil.DebugPrint(screen, text)
}
