package ebitenhost

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"go.uber.org/zap"

	"github.com/phanxgames/bramble"
)

// RunOptions configures Run.
type RunOptions struct {
	Title string
	// Width and Height size the window. Zero uses the configured design
	// resolution, or 800x600.
	Width, Height int
	// Prefer2D selects the per-sprite renderer path.
	Prefer2D bool
	Overlay  bool
	// Script, when set, is stepped once per update.
	Script        *Script
	ScreenshotDir string
	Logger        *zap.Logger
}

// Run builds an Engine on an ebiten window, calls setup, starts the loop
// and blocks until the window closes or setup's engine quits.
func Run(cfg bramble.Config, opts RunOptions, setup func(e *bramble.Engine, g *Game) error) error {
	w, h := opts.Width, opts.Height
	if w <= 0 || h <= 0 {
		w, h = cfg.Render.DesignWidth, cfg.Render.DesignHeight
	}
	if w <= 0 || h <= 0 {
		w, h = 800, 600
	}

	game := NewGame(GameOptions{
		Width:         w,
		Height:        h,
		Overlay:       opts.Overlay,
		ScreenshotDir: opts.ScreenshotDir,
		Logger:        opts.Logger,
	})
	game.Canvas().Prefer2D = opts.Prefer2D
	// The canvas needs a target before the renderer inspects its size.
	game.ensureBuffer()

	engine, err := bramble.NewEngine(bramble.EngineOptions{
		Config:   cfg,
		Host:     game,
		Renderer: bramble.RendererOptions{Canvas: game.Canvas()},
		Logger:   opts.Logger,
	})
	if err != nil {
		return fmt.Errorf("ebitenhost: build engine: %w", err)
	}
	game.SetStatsSource(engine.Renderer.Stats)
	game.SetClock(engine.Time)
	game.SetScript(opts.Script)

	if setup != nil {
		if err := setup(engine, game); err != nil {
			return fmt.Errorf("ebitenhost: setup: %w", err)
		}
	}

	ebiten.SetWindowSize(w, h)
	if opts.Title != "" {
		ebiten.SetWindowTitle(opts.Title)
	}
	ebiten.SetVsyncEnabled(cfg.Loop.VSync)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	engine.Start()
	defer engine.Stop()
	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("ebitenhost: run game: %w", err)
	}
	return nil
}
