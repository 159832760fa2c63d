package birch

import (
	"image"

	"github.com/chewxy/math32"
	"github.com/google/uuid"
)

// texRegion is a normalized rectangle inside a bound texture. Batched
// entities sample their atlas cell; standalone entities sample the whole
// texture.
type texRegion struct {
	x, y, w, h float32
}

var (
	fullRegion = texRegion{0, 0, 1, 1}
	// noTexture tells the fragment stage to output the vertex color only.
	noTexture = texRegion{-1, -1, 1, 1}
)

func (r texRegion) missing() bool { return r.x < 0 }

// gridSize returns the number of vertex columns and rows of the entity's
// geometry. Every shape is a grid of quads; vertex (col, row) sits at index
// col*rows + row, so a single quad is ordered (0,0) (0,h) (w,0) (w,h).
func (e *Entity) gridSize() (cols, rows int) {
	switch e.Type {
	case EntityTypeRectangle, EntityTypeSprite, EntityTypeLabel, EntityTypeAnimatedSprite:
		return 2, 2
	case EntityTypeCircle:
		return 3, 3
	case EntityTypeRoundedRectangle, EntityTypeSlice9Sprite:
		return 4, 4
	default:
		return 0, 0
	}
}

func (e *Entity) vertexCount() int {
	switch {
	case e.mesh != nil:
		return len(e.mesh.verts)
	case e.Type == EntityTypeTiledSprite:
		c, r := e.tileCounts()
		return 4 * c * r
	}
	c, r := e.gridSize()
	return c * r
}

func (e *Entity) indexCount() int {
	switch {
	case e.mesh != nil:
		return len(e.mesh.indices)
	case e.Type == EntityTypeTiledSprite:
		c, r := e.tileCounts()
		return 6 * c * r
	}
	c, r := e.gridSize()
	if c == 0 {
		return 0
	}
	return (c - 1) * (r - 1) * 6
}

// shapeVersion changes whenever the index pattern may change while the
// vertex and index counts stay the same.
func (e *Entity) shapeVersion() uint32 {
	if e.mesh != nil {
		return e.mesh.version
	}
	return 0
}

// gridLines returns the local x and y coordinates of the grid columns and rows.
func (e *Entity) gridLines() (xs, ys []float32) {
	w := float32(e.resolved.Width)
	h := float32(e.resolved.Height)
	switch e.Type {
	case EntityTypeCircle:
		return []float32{0, w / 2, w}, []float32{0, h / 2, h}
	case EntityTypeRoundedRectangle:
		cr := e.clampedCornerRadius()
		return []float32{0, cr, w - cr, w}, []float32{0, cr, h - cr, h}
	case EntityTypeSlice9Sprite:
		c, r := e.centerRect, e.srcRect
		return slice9Lines(w, c.X, c.Width, r.Width), slice9Lines(h, c.Y, c.Height, r.Height)
	default:
		return []float32{0, w}, []float32{0, h}
	}
}

// slice9Lines places the two inner grid lines of a nine-slice axis. The
// borders keep their source size; when they do not fit in size they shrink
// in proportion.
func slice9Lines(size float32, center, centerLen, src float64) []float32 {
	lo := float32(center)
	hi := float32(src - (center + centerLen))
	if sum := lo + hi; sum > size && sum > 0 {
		k := size / sum
		lo *= k
		hi *= k
	}
	return []float32{0, lo, size - hi, size}
}

func (e *Entity) clampedCornerRadius() float32 {
	limit := math32.Min(float32(e.resolved.Width), float32(e.resolved.Height)) / 2
	return math32.Max(0, math32.Min(float32(e.cornerRadius), limit))
}

// writeVertices writes the entity's positions transformed by m into dst.
// Inactive entities collapse to a single point so the vertex count never
// changes.
func (e *Entity) writeVertices(dst []float32, m [6]float64) {
	switch {
	case e.mesh != nil:
		e.writeMeshVertices(dst, m)
		return
	case e.Type == EntityTypeTiledSprite:
		e.writeTileVertices(dst, m)
		return
	}
	xs, ys := e.gridLines()
	i := 0
	for _, lx := range xs {
		for _, ly := range ys {
			if !e.visible {
				lx, ly = 0, 0
			}
			x, y := transformPoint(m, float64(lx), float64(ly))
			dst[i] = float32(x)
			dst[i+1] = float32(y)
			i += 2
		}
	}
}

// writeIndices writes triangle-list indices rebased by base into dst.
func (e *Entity) writeIndices(dst []uint32, base uint32) {
	switch {
	case e.mesh != nil:
		e.writeMeshIndices(dst, base)
		return
	case e.Type == EntityTypeTiledSprite:
		c, r := e.tileCounts()
		for i := range c * r {
			v := base + uint32(4*i)
			dst[6*i], dst[6*i+1], dst[6*i+2] = v, v+1, v+2
			dst[6*i+3], dst[6*i+4], dst[6*i+5] = v+1, v+3, v+2
		}
		return
	}
	cols, rows := e.gridSize()
	i := 0
	for c := 0; c < cols-1; c++ {
		for r := 0; r < rows-1; r++ {
			a := base + uint32(c*rows+r)
			b := a + 1
			cc := base + uint32((c+1)*rows+r)
			d := cc + 1
			dst[i], dst[i+1], dst[i+2] = a, b, cc
			dst[i+3], dst[i+4], dst[i+5] = b, d, cc
			i += 6
		}
	}
}

// texLines returns the normalized texture coordinates of the grid columns
// and rows, before mapping into an atlas cell. ok is false when the entity
// samples no texture.
func (e *Entity) texLines() (us, vs []float32, ok bool) {
	if e.texture == nil {
		return nil, nil, false
	}
	switch e.Type {
	case EntityTypeCircle:
		// The texture holds the top-left quadrant; the grid mirrors it.
		return []float32{0, 1, 0}, []float32{0, 1, 0}, true
	case EntityTypeRoundedRectangle:
		return []float32{0, 1, 1, 0}, []float32{0, 1, 1, 0}, true
	case EntityTypeSprite, EntityTypeAnimatedSprite:
		tw := float32(e.texture.Width())
		th := float32(e.texture.Height())
		if tw == 0 || th == 0 {
			return nil, nil, false
		}
		r := e.srcRect
		u0, u1 := float32(r.X)/tw, float32(r.X+r.Width)/tw
		v0, v1 := float32(r.Y)/th, float32(r.Y+r.Height)/th
		if e.texture.Flip {
			v0, v1 = v1, v0
		}
		return []float32{u0, u1}, []float32{v0, v1}, true
	case EntityTypeSlice9Sprite:
		tw := float32(e.texture.Width())
		th := float32(e.texture.Height())
		if tw == 0 || th == 0 {
			return nil, nil, false
		}
		r, c := e.srcRect, e.centerRect
		us = []float32{
			float32(r.X) / tw,
			float32(r.X+c.X) / tw,
			float32(r.X+c.X+c.Width) / tw,
			float32(r.X+r.Width) / tw,
		}
		vs = []float32{
			float32(r.Y) / th,
			float32(r.Y+c.Y) / th,
			float32(r.Y+c.Y+c.Height) / th,
			float32(r.Y+r.Height) / th,
		}
		if e.texture.Flip {
			// Mirror inside the source rect.
			top, bottom := vs[0], vs[3]
			for i := range vs {
				vs[i] = top + bottom - vs[i]
			}
		}
		return us, vs, true
	case EntityTypeRectangle, EntityTypeLabel:
		return []float32{0, 1}, []float32{0, 1}, true
	default:
		return nil, nil, false
	}
}

// writeTexCoords writes texture coordinates mapped into region.
func (e *Entity) writeTexCoords(dst []float32, region texRegion) {
	if e.texture != nil && !region.missing() {
		switch {
		case e.mesh != nil:
			e.writeMeshTexCoords(dst, region)
			return
		case e.Type == EntityTypeTiledSprite:
			e.writeTileTexCoords(dst, region)
			return
		}
	}
	us, vs, ok := e.texLines()
	if !ok || region.missing() {
		for i := range dst[:2*e.vertexCount()] {
			dst[i] = -1
		}
		return
	}
	i := 0
	for _, u := range us {
		for _, v := range vs {
			dst[i] = region.x + u*region.w
			dst[i+1] = region.y + v*region.h
			i += 2
		}
	}
}

// writeColors fills dst with c repeated for every vertex.
func writeColors(dst []float32, c Color) {
	r, g, b, a := float32(c.R), float32(c.G), float32(c.B), float32(c.A)
	for i := 0; i+3 < len(dst); i += 4 {
		dst[i], dst[i+1], dst[i+2], dst[i+3] = r, g, b, a
	}
}

// newQuarterCircleTexture renders the top-left quadrant of an anti-aliased
// disc of radius r. The disc's center is the texture's bottom-right corner.
// Returns nil for a non-positive radius.
func newQuarterCircleTexture(r float64) *Texture {
	q := int(math32.Ceil(float32(r)))
	if q <= 0 {
		return nil
	}
	img := image.NewRGBA(image.Rect(0, 0, q, q))
	radius := float32(q)
	for y := 0; y < q; y++ {
		for x := 0; x < q; x++ {
			dx := radius - (float32(x) + 0.5)
			dy := radius - (float32(y) + 0.5)
			alpha := radius - math32.Sqrt(dx*dx+dy*dy) + 0.5
			alpha = math32.Max(0, math32.Min(1, alpha))
			v := uint8(math32.Round(alpha * 255))
			// Premultiplied white.
			o := img.PixOffset(x, y)
			img.Pix[o], img.Pix[o+1], img.Pix[o+2], img.Pix[o+3] = v, v, v, v
		}
	}
	tex := newTextureRGBA(img)
	tex.Name = "circle-" + uuid.NewString()
	return tex
}
