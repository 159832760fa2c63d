package birch

import (
	"errors"
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
}

// Update ends the run once an attached touch script has finished and its
// screenshots have been written.
func (g *game) Update() error {
	s := g.scene
	if s.script != nil && s.script.Done() && len(s.screenshots) == 0 {
		return ebiten.Termination
	}
	s.Update()
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	cfg := g.scene.config
	return cfg.Width, cfg.Height
}

// Run opens a window sized and titled from the scene's Config and runs the
// scene until the window closes. For full control, implement ebiten.Game and
// call Scene.Update and Scene.Draw directly.
func Run(scene *Scene) error {
	cfg := scene.config
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	defer scene.Close()
	if err := ebiten.RunGame(&game{scene: scene}); err != nil && !errors.Is(err, ebiten.Termination) {
		return fmt.Errorf("birch: run: %w", err)
	}
	return nil
}
