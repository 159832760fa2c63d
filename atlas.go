package birch

import (
	"errors"
	"fmt"
	"image"
	"slices"

	xdraw "golang.org/x/image/draw"
)

// ErrAtlasOverflow is returned by TextureAtlas.Pack when some textures do not
// fit within the maximum atlas size. Dropped lists them.
var ErrAtlasOverflow = errors.New("birch: texture atlas overflow")

// atlasCell is a texture's placement inside the atlas, margin excluded.
type atlasCell struct {
	x, y, w, h int
	packed     bool
	version    uint64 // texture version copied by the last Build
}

// TextureAtlas packs many textures into a single bitmap so a batching group
// can draw its subtree with one texture binding. Textures are added once;
// placements are stable until the next Pack.
type TextureAtlas struct {
	maxSize int
	margin  int

	textures []*Texture
	cells    map[*Texture]*atlasCell
	dropped  []*Texture

	width, height int
	texture       *Texture
}

// NewTextureAtlas creates an empty atlas limited to maxSize x maxSize pixels,
// leaving margin pixels between cells.
func NewTextureAtlas(maxSize, margin int) *TextureAtlas {
	if maxSize <= 0 {
		maxSize = MaxTextureSize
	}
	if margin < 0 {
		margin = 0
	}
	return &TextureAtlas{maxSize: maxSize, margin: margin, cells: make(map[*Texture]*atlasCell)}
}

// Add registers tex. Returns false if tex is nil or already present.
func (a *TextureAtlas) Add(tex *Texture) bool {
	if tex == nil {
		return false
	}
	if _, ok := a.cells[tex]; ok {
		return false
	}
	a.textures = append(a.textures, tex)
	a.cells[tex] = &atlasCell{}
	return true
}

// Len returns the number of textures added.
func (a *TextureAtlas) Len() int { return len(a.textures) }

// Pack assigns a placement to every texture with a shelf packer: textures are
// placed tallest first, left to right, opening a new shelf when the current
// row is full. Textures that do not fit are left unplaced and reported
// through an error wrapping ErrAtlasOverflow.
func (a *TextureAtlas) Pack() error {
	order := slices.Clone(a.textures)
	slices.SortStableFunc(order, func(p, q *Texture) int {
		return q.Height() - p.Height()
	})

	a.dropped = a.dropped[:0]
	a.width, a.height = 0, 0
	x, y, shelf := 0, 0, 0
	m := a.margin
	for _, tex := range order {
		cell := a.cells[tex]
		*cell = atlasCell{w: tex.Width(), h: tex.Height()}
		if cell.w+2*m > a.maxSize || cell.h+2*m > a.maxSize {
			a.dropped = append(a.dropped, tex)
			continue
		}
		if x+cell.w+2*m > a.maxSize {
			x, y = 0, y+shelf
			shelf = 0
		}
		if y+cell.h+2*m > a.maxSize {
			a.dropped = append(a.dropped, tex)
			continue
		}
		cell.x, cell.y = x+m, y+m
		cell.packed = true
		x += cell.w + 2*m
		shelf = max(shelf, cell.h+2*m)
		a.width = max(a.width, x)
		a.height = max(a.height, y+shelf)
	}
	if len(a.dropped) > 0 {
		return fmt.Errorf("%w: %d of %d textures do not fit in %dx%d",
			ErrAtlasOverflow, len(a.dropped), len(a.textures), a.maxSize, a.maxSize)
	}
	return nil
}

// Dropped returns the textures the last Pack could not place.
func (a *TextureAtlas) Dropped() []*Texture { return a.dropped }

// Size returns the packed atlas dimensions.
func (a *TextureAtlas) Size() (w, h int) { return a.width, a.height }

// Placement returns the pixel rectangle tex occupies, or false if tex was
// not packed.
func (a *TextureAtlas) Placement(tex *Texture) (image.Rectangle, bool) {
	cell, ok := a.cells[tex]
	if !ok || !cell.packed {
		return image.Rectangle{}, false
	}
	return image.Rect(cell.x, cell.y, cell.x+cell.w, cell.y+cell.h), true
}

// Build copies every packed texture into the atlas bitmap and returns it.
// Edge pixels are replicated outward across the margin so sampling at a
// cell border never picks up a neighbour.
func (a *TextureAtlas) Build() *Texture {
	img := image.NewRGBA(image.Rect(0, 0, max(a.width, 1), max(a.height, 1)))
	for _, tex := range a.textures {
		cell := a.cells[tex]
		if !cell.packed {
			continue
		}
		r := image.Rect(cell.x, cell.y, cell.x+cell.w, cell.y+cell.h)
		xdraw.Copy(img, r.Min, tex.img, tex.img.Bounds(), xdraw.Src, nil)
		for i := 0; i < a.margin; i++ {
			bleed(img, r.Inset(-i))
		}
		cell.version = tex.version
	}
	if a.texture == nil {
		a.texture = newTextureRGBA(img)
		a.texture.Name = "atlas"
	} else {
		a.texture.Replace(img)
	}
	return a.texture
}

// bleed extends the one-pixel border of r outward by one pixel.
func bleed(img *image.RGBA, r image.Rectangle) {
	b := img.Bounds()
	for x := r.Min.X; x < r.Max.X; x++ {
		if r.Min.Y > b.Min.Y {
			img.SetRGBA(x, r.Min.Y-1, img.RGBAAt(x, r.Min.Y))
		}
		if r.Max.Y < b.Max.Y {
			img.SetRGBA(x, r.Max.Y, img.RGBAAt(x, r.Max.Y-1))
		}
	}
	for y := r.Min.Y - 1; y <= r.Max.Y; y++ {
		if y < b.Min.Y || y >= b.Max.Y {
			continue
		}
		cy := min(max(y, r.Min.Y), r.Max.Y-1)
		if r.Min.X > b.Min.X {
			img.SetRGBA(r.Min.X-1, y, img.RGBAAt(r.Min.X, cy))
		}
		if r.Max.X < b.Max.X {
			img.SetRGBA(r.Max.X, y, img.RGBAAt(r.Max.X-1, cy))
		}
	}
}

// TexCoords returns tex's normalized rectangle (x/W, y/H, w/W, h/H) within the
// built atlas, or (-1, -1, 1, 1) when tex was not packed.
func (a *TextureAtlas) TexCoords(tex *Texture) (x, y, w, h float32) {
	r := a.region(tex)
	return r.x, r.y, r.w, r.h
}

// Texture returns the last built atlas bitmap, or nil before Build.
func (a *TextureAtlas) Texture() *Texture { return a.texture }

// region returns tex's normalized rectangle within the atlas. Unpacked
// textures map to noTexture.
func (a *TextureAtlas) region(tex *Texture) texRegion {
	cell, ok := a.cells[tex]
	if !ok || !cell.packed || a.texture == nil {
		return noTexture
	}
	w := float32(a.texture.Width())
	h := float32(a.texture.Height())
	return texRegion{
		x: float32(cell.x) / w,
		y: float32(cell.y) / h,
		w: float32(cell.w) / w,
		h: float32(cell.h) / h,
	}
}

// stale reports whether the atlas no longer matches textures: a texture was
// added or removed, or one of them changed since the last Build.
func (a *TextureAtlas) stale(textures []*Texture) bool {
	if a.texture == nil || len(textures) != len(a.textures) {
		return true
	}
	for _, tex := range textures {
		cell, ok := a.cells[tex]
		if !ok || (cell.packed && cell.version != tex.version) {
			return true
		}
	}
	return false
}
