package birch

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
	"testing/fstest"
)

func pngBytes(t *testing.T, w, h int, c color.RGBA) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestNewTextureValidatesLength(t *testing.T) {
	tex := NewTexture(2, 1, make([]byte, 8))
	if tex.Width() != 2 || tex.Height() != 1 || tex.Version() != 1 {
		t.Errorf("texture = %dx%d v%d", tex.Width(), tex.Height(), tex.Version())
	}
	expectPanic(t, "short pixel buffer", func() { NewTexture(2, 2, make([]byte, 8)) })
}

func TestTextureReplaceBumpsVersion(t *testing.T) {
	tex := solidTexture(2, 2, opaqueRed)
	tex.Replace(image.NewRGBA(image.Rect(0, 0, 3, 1)))
	if tex.Version() != 2 {
		t.Errorf("version = %d, want 2", tex.Version())
	}
	if tex.Width() != 3 || tex.Height() != 1 {
		t.Errorf("size = %dx%d, want 3x1", tex.Width(), tex.Height())
	}
}

func TestFSTextureLoaderDecodesPNG(t *testing.T) {
	fsys := fstest.MapFS{"img/hero.png": {Data: pngBytes(t, 3, 2, opaqueGreen)}}
	l := FSTextureLoader{FS: fsys, Density: 2}

	tex, err := l.LoadTexture("img/hero.png")
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 3 || tex.Height() != 2 {
		t.Errorf("size = %dx%d, want 3x2", tex.Width(), tex.Height())
	}
	if tex.Name != "img/hero.png" || tex.Density != 2 {
		t.Errorf("name=%q density=%v", tex.Name, tex.Density)
	}
	if got := tex.Image().(*image.RGBA).RGBAAt(1, 1); got != opaqueGreen {
		t.Errorf("pixel = %v, want green", got)
	}
}

func TestFSTextureLoaderErrors(t *testing.T) {
	fsys := fstest.MapFS{"bad.png": {Data: []byte("not an image")}}
	l := FSTextureLoader{FS: fsys}

	if _, err := l.LoadTexture("missing.png"); !errors.Is(err, ErrTextureNotFound) {
		t.Errorf("missing: err = %v, want ErrTextureNotFound", err)
	}
	if _, err := l.LoadTexture("bad.png"); err == nil || errors.Is(err, ErrTextureNotFound) {
		t.Errorf("bad: err = %v, want a decode error", err)
	}
}

func TestTextureCacheLoadsOnce(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: pngBytes(t, 1, 1, opaqueRed)}}
	c := NewTextureCache(FSTextureLoader{FS: fsys})

	first, err := c.Load("a.png")
	if err != nil {
		t.Fatal(err)
	}
	second, _ := c.Load("a.png")
	if first != second {
		t.Error("cache returned a different texture")
	}
	if c.Len() != 1 {
		t.Errorf("Len = %d, want 1", c.Len())
	}
	if _, ok := c.Get("other.png"); ok {
		t.Error("Get loaded a texture")
	}
}

func TestTextureCacheWithoutLoader(t *testing.T) {
	c := NewTextureCache(nil)
	tex := solidTexture(1, 1, opaqueRed)
	c.Register("reg", tex)
	if got, err := c.Load("reg"); err != nil || got != tex {
		t.Errorf("registered Load = %v, %v", got, err)
	}
	if tex.Name != "reg" {
		t.Errorf("name = %q, want reg", tex.Name)
	}
	if _, err := c.Load("nope"); !errors.Is(err, ErrTextureNotFound) {
		t.Errorf("err = %v, want ErrTextureNotFound", err)
	}
	c.Remove("reg")
	if c.Len() != 0 {
		t.Error("Remove left the texture")
	}
}

func TestTextureCacheReloadReplacesInPlace(t *testing.T) {
	fsys := fstest.MapFS{"a.png": {Data: pngBytes(t, 1, 1, opaqueRed)}}
	c := NewTextureCache(FSTextureLoader{FS: fsys})
	tex, _ := c.Load("a.png")

	fsys["a.png"] = &fstest.MapFile{Data: pngBytes(t, 2, 2, opaqueBlue)}
	if err := c.Reload("a.png"); err != nil {
		t.Fatal(err)
	}
	if tex.Version() != 2 || tex.Width() != 2 {
		t.Errorf("reloaded texture v%d %dx%d", tex.Version(), tex.Width(), tex.Height())
	}
	if err := c.Reload("never-loaded.png"); err != nil {
		t.Errorf("reload of unknown name: %v", err)
	}
	c.Clear()
	if c.Len() != 0 {
		t.Error("Clear left textures")
	}
}

func TestSceneLoadsFromAssetDir(t *testing.T) {
	dir := t.TempDir()
	if err := writeFile(dir, "tile.png", pngBytes(t, 4, 4, opaqueRed)); err != nil {
		t.Fatal(err)
	}
	cfg := DefaultConfig()
	cfg.AssetDir = dir
	s := NewSceneWithConfig(cfg)
	defer s.Close()

	tex, err := s.Textures().Load("tile.png")
	if err != nil {
		t.Fatal(err)
	}
	if tex.Width() != 4 {
		t.Errorf("width = %d, want 4", tex.Width())
	}
}
