package ebitenhost

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"
)

// DefaultScreenshotDir is used when GameOptions.ScreenshotDir is empty.
const DefaultScreenshotDir = "screenshots"

// Screenshot queues a capture of the engine's output for the end of the
// next Draw. The PNG lands in the screenshot directory under a timestamped
// name. Safe to call from Update, Draw or a frame callback.
func (g *Game) Screenshot(label string) {
	g.shots = append(g.shots, label)
}

// flushScreenshots writes every queued capture of src. The overlay is never
// part of the capture.
func (g *Game) flushScreenshots(src *ebiten.Image) {
	if len(g.shots) == 0 || src == nil {
		return
	}
	defer func() { g.shots = g.shots[:0] }()

	if err := os.MkdirAll(g.shotDir, 0o755); err != nil {
		g.log.Warn("screenshot directory", zap.String("dir", g.shotDir), zap.Error(err))
		return
	}

	b := src.Bounds()
	pixels := make([]byte, 4*b.Dx()*b.Dy())
	src.ReadPixels(pixels)
	img := unpremultiply(pixels, b.Dx(), b.Dy())

	stamp := time.Now().Format("20060102_150405")
	seen := make(map[string]int, len(g.shots))
	for _, label := range g.shots {
		safe := sanitizeLabel(label)
		name := stamp + "_" + safe + ".png"
		if n := seen[safe]; n > 0 {
			name = fmt.Sprintf("%s_%s_%d.png", stamp, safe, n)
		}
		seen[safe]++
		path := filepath.Join(g.shotDir, name)
		if err := writePNG(path, img); err != nil {
			g.log.Warn("screenshot write", zap.Error(err))
			continue
		}
		g.log.Info("screenshot saved", zap.String("path", path))
	}
}

// unpremultiply converts premultiplied RGBA bytes to a straight-alpha image.
func unpremultiply(pixels []byte, w, h int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	n := min(len(pixels), len(img.Pix))
	for i := 0; i+3 < n; i += 4 {
		r, gr, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			gr = uint8(min(int(gr)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = gr
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("ebitenhost: create %s: %w", path, err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("ebitenhost: encode %s: %w", path, err)
	}
	return f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replacing everything
// else with '_'. Empty labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		}
		return '_'
	}, label)
}
