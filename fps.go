package birch

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
	"golang.org/x/image/font"
)

// fpsRefresh is how often, in seconds, the FPS label re-rasterizes.
const fpsRefresh = 0.5

// NewFPSLabel creates a label showing Ebitengine's measured FPS and TPS,
// refreshed twice a second. Add it last, or give it a high z-index, to keep
// it on top.
func NewFPSLabel(face font.Face) *Entity {
	e := NewLabel("fps", formatFPS(0, 0), face)
	e.SetColor(ColorFromRGB(0xFFFF00, 1))
	var elapsed float64
	e.OnUpdate = func(dt float64) {
		elapsed += dt
		if elapsed < fpsRefresh {
			return
		}
		elapsed = 0
		e.SetText(formatFPS(ebiten.ActualFPS(), ebiten.ActualTPS()))
	}
	return e
}

func formatFPS(fps, tps float64) string {
	return fmt.Sprintf("FPS: %5.1f\nTPS: %5.1f", fps, tps)
}
