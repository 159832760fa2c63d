package birch

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(dir, name string, b []byte) error {
	return os.WriteFile(filepath.Join(dir, name), b, 0o644)
}

// drainWithin polls w until it reports something or the timeout passes.
func drainWithin(w *TextureWatcher, timeout time.Duration) []string {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if names := w.Drain(); len(names) > 0 {
			return names
		}
		time.Sleep(10 * time.Millisecond)
	}
	return nil
}

func TestTextureWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	w, err := NewTextureWatcher(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer w.Close()

	if err := writeFile(dir, "hero.png", []byte("x")); err != nil {
		t.Fatal(err)
	}
	names := drainWithin(w, 2*time.Second)
	if len(names) != 1 || names[0] != "hero.png" {
		t.Fatalf("changed = %v, want [hero.png]", names)
	}
	if again := w.Drain(); len(again) != 0 {
		t.Errorf("second Drain = %v, want empty", again)
	}
}

func TestTextureWatcherMissingDir(t *testing.T) {
	if _, err := NewTextureWatcher(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Error("expected an error for a missing directory")
	}
}

func TestSceneReloadsWatchedTexture(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(dir, "tile.png", pngBytes(t, 2, 2, opaqueRed)); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.AssetDir = dir
	cfg.WatchAssets = true
	s := NewSceneWithConfig(cfg)
	defer s.Close()
	if s.watcher == nil {
		t.Skip("file watching unavailable")
	}
	tex, err := s.Textures().Load("tile.png")
	if err != nil {
		t.Fatal(err)
	}

	if err := writeFile(dir, "tile.png", pngBytes(t, 4, 4, opaqueBlue)); err != nil {
		t.Fatal(err)
	}
	deadline := time.Now().Add(2 * time.Second)
	for tex.Width() != 4 && time.Now().Before(deadline) {
		s.Step(0)
		time.Sleep(10 * time.Millisecond)
	}
	if tex.Width() != 4 {
		t.Errorf("texture not reloaded: width = %d", tex.Width())
	}
}
