package birch

import (
	"errors"
	"fmt"
	"image"
	"io/fs"

	// Decoders available to FSTextureLoader.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/bmp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// ErrTextureNotFound is returned when a texture name cannot be resolved.
var ErrTextureNotFound = errors.New("birch: texture not found")

// Texture is a decoded RGBA bitmap with alpha-premultiplied 8-bit channels,
// the layout of image.RGBA. The device uploads it on first use and again
// whenever its version changes.
type Texture struct {
	// Name identifies the texture in caches and logs.
	Name string
	// Density is the device pixel density the bitmap was produced for.
	Density float64
	// Flip samples the bitmap upside down.
	Flip bool

	img     *image.RGBA
	version uint64
}

// NewTexture wraps premultiplied RGBA pixels. Panics if len(pix) is not
// width*height*4.
func NewTexture(width, height int, pix []byte) *Texture {
	if len(pix) != width*height*4 {
		panic("birch: texture pixel buffer does not match its dimensions")
	}
	img := &image.RGBA{Pix: pix, Stride: width * 4, Rect: image.Rect(0, 0, width, height)}
	return newTextureRGBA(img)
}

// NewTextureFromImage copies any image into a new texture.
func NewTextureFromImage(src image.Image) *Texture {
	return newTextureRGBA(toRGBA(src))
}

func newTextureRGBA(img *image.RGBA) *Texture {
	return &Texture{Density: 1, img: img, version: 1}
}

func toRGBA(src image.Image) *image.RGBA {
	b := src.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	xdraw.Copy(dst, image.Point{}, src, b, xdraw.Src, nil)
	return dst
}

// Width returns the bitmap width in pixels.
func (t *Texture) Width() int { return t.img.Rect.Dx() }

// Height returns the bitmap height in pixels.
func (t *Texture) Height() int { return t.img.Rect.Dy() }

// Pix returns the premultiplied RGBA pixels. The slice MUST NOT be mutated;
// use Replace.
func (t *Texture) Pix() []byte { return t.img.Pix }

// Image returns the bitmap as an image.Image.
func (t *Texture) Image() image.Image { return t.img }

// Version increases every time the pixels are replaced.
func (t *Texture) Version() uint64 { return t.version }

// Replace swaps the texture's pixels in place. Entities using the texture
// pick up the change on their next update.
func (t *Texture) Replace(src image.Image) {
	t.img = toRGBA(src)
	t.version++
}

// --- Asset boundary ---

// TextureLoader produces decoded textures by name.
type TextureLoader interface {
	LoadTexture(name string) (*Texture, error)
}

// FSTextureLoader decodes PNG, JPEG, BMP, and WebP files from a file system.
type FSTextureLoader struct {
	FS      fs.FS
	Density float64
}

// LoadTexture opens and decodes name.
func (l FSTextureLoader) LoadTexture(name string) (*Texture, error) {
	f, err := l.FS.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, name)
		}
		return nil, fmt.Errorf("birch: open texture %q: %w", name, err)
	}
	defer f.Close()
	img, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("birch: decode texture %q: %w", name, err)
	}
	tex := NewTextureFromImage(img)
	tex.Name = name
	if l.Density > 0 {
		tex.Density = l.Density
	}
	return tex, nil
}

// --- Cache ---

// TextureCache maps names to loaded textures. Each Scene owns one; nothing
// is shared between scenes.
type TextureCache struct {
	loader   TextureLoader
	textures map[string]*Texture
}

// NewTextureCache creates a cache that falls back to loader on a miss.
// loader may be nil, in which case only registered textures resolve.
func NewTextureCache(loader TextureLoader) *TextureCache {
	return &TextureCache{loader: loader, textures: make(map[string]*Texture)}
}

// SetLoader replaces the fallback loader.
func (c *TextureCache) SetLoader(loader TextureLoader) { c.loader = loader }

// Register stores tex under name, replacing any previous entry.
func (c *TextureCache) Register(name string, tex *Texture) {
	if tex.Name == "" {
		tex.Name = name
	}
	c.textures[name] = tex
}

// Get returns the cached texture for name without loading.
func (c *TextureCache) Get(name string) (*Texture, bool) {
	tex, ok := c.textures[name]
	return tex, ok
}

// Load returns the cached texture for name, loading and caching it on a miss.
func (c *TextureCache) Load(name string) (*Texture, error) {
	if tex, ok := c.textures[name]; ok {
		return tex, nil
	}
	if c.loader == nil {
		return nil, fmt.Errorf("%w: %s", ErrTextureNotFound, name)
	}
	tex, err := c.loader.LoadTexture(name)
	if err != nil {
		return nil, err
	}
	c.textures[name] = tex
	return tex, nil
}

// Reload decodes name again and replaces the cached texture's pixels in
// place. Names that are not cached are ignored.
func (c *TextureCache) Reload(name string) error {
	tex, ok := c.textures[name]
	if !ok || c.loader == nil {
		return nil
	}
	fresh, err := c.loader.LoadTexture(name)
	if err != nil {
		return err
	}
	tex.Replace(fresh.img)
	return nil
}

// Remove drops name from the cache.
func (c *TextureCache) Remove(name string) {
	delete(c.textures, name)
}

// Clear drops every cached texture.
func (c *TextureCache) Clear() {
	clear(c.textures)
}

// Len returns the number of cached textures.
func (c *TextureCache) Len() int { return len(c.textures) }
