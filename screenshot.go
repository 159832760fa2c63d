package birch

import (
	"fmt"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// Screenshot queues a labeled capture of the next drawn frame. Scene.Draw
// writes it as a PNG into Config.ScreenshotDir, named by timestamp, frame
// and label.
func (s *Scene) Screenshot(label string) {
	s.screenshots = append(s.screenshots, label)
}

// flushScreenshots writes every queued capture of screen.
func (s *Scene) flushScreenshots(screen *ebiten.Image) {
	if len(s.screenshots) == 0 {
		return
	}
	b := screen.Bounds()
	img := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	screen.ReadPixels(img.Pix)

	stamp := time.Now().Format("20060102_150405")
	for _, label := range s.screenshots {
		name := fmt.Sprintf("%s_%06d_%s.png", stamp, s.frame, sanitizeLabel(label))
		path, err := writeScreenshot(s.config.ScreenshotDir, name, img)
		if err != nil {
			logger.Error("screenshot failed", "label", label, "err", err)
			continue
		}
		logger.Info("screenshot saved", "path", path)
	}
	clear(s.screenshots)
	s.screenshots = s.screenshots[:0]
}

// writeScreenshot encodes img, premultiplied as read back from the GPU, into
// dir/name and returns the path.
func writeScreenshot(dir, name string, img *image.RGBA) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("birch: screenshot dir: %w", err)
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("birch: create screenshot: %w", err)
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return "", fmt.Errorf("birch: encode screenshot: %w", err)
	}
	return path, f.Close()
}

// sanitizeLabel keeps letters, digits, '-' and '.', replacing everything
// else with '_'. Blank labels become "unlabeled".
func sanitizeLabel(label string) string {
	label = strings.TrimSpace(label)
	if label == "" {
		return "unlabeled"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '.':
			return r
		default:
			return '_'
		}
	}, label)
}
