package birch

import "math"

// LineType selects how a line's points are joined.
type LineType uint8

const (
	LineStrip LineType = iota // consecutive points joined, open ended
	LineLoop                  // strip closed back to the first point
	Lines                     // independent segments from point pairs
)

// DefaultLineWidth is the stroke width of lines created without one.
const DefaultLineWidth = 10

// meshShape is the geometry of a point-defined entity. verts and indices
// are rebuilt from points whenever the points or stroke settings change.
type meshShape struct {
	points   []Vec2
	width    float64
	lineType LineType

	verts   []Vec2   // triangulated vertices in point space
	indices []uint32 // triangle list over verts
	bounds  Rect
	version uint32 // bumped on every rebuild so drawn index patterns refresh
}

// NewPolygon creates a filled convex polygon. The entity's origin is the
// top-left corner of the points' bounding box and its size is that box.
// Fewer than three points give an empty polygon.
func NewPolygon(name string, points []Vec2) *Entity {
	e := newEntity(name, EntityTypePolygon)
	e.mesh = &meshShape{}
	e.SetPoints(points)
	return e
}

// NewTriangle creates a filled triangle.
func NewTriangle(name string, a, b, c Vec2) *Entity {
	e := newEntity(name, EntityTypeTriangle)
	e.mesh = &meshShape{}
	e.SetPoints([]Vec2{a, b, c})
	return e
}

// NewLine creates a stroked polyline of the given width. Two points always
// form a single segment whatever the line type.
func NewLine(name string, points []Vec2, width float64, typ LineType) *Entity {
	e := newEntity(name, EntityTypeLine)
	e.mesh = &meshShape{width: width, lineType: typ}
	e.SetPoints(points)
	return e
}

// Points returns the points the entity was built from. The returned slice
// must not be mutated.
func (e *Entity) Points() []Vec2 {
	if e.mesh == nil {
		return nil
	}
	return e.mesh.points
}

// SetPoints replaces the points of a polygon, triangle or line and resizes
// the entity to their bounding box. Panics on other entity types, or when a
// triangle is given anything but three points.
func (e *Entity) SetPoints(points []Vec2) {
	if e.mesh == nil {
		panic("birch: SetPoints requires a polygon, triangle or line")
	}
	if e.Type == EntityTypeTriangle && len(points) != 3 {
		panic("birch: a triangle needs exactly three points")
	}
	e.mesh.points = append(e.mesh.points[:0], points...)
	e.rebuildMesh()
}

// LineWidth returns a line's stroke width.
func (e *Entity) LineWidth() float64 {
	if e.mesh == nil {
		return 0
	}
	return e.mesh.width
}

// SetLineWidth sets a line's stroke width.
func (e *Entity) SetLineWidth(w float64) {
	if e.Type != EntityTypeLine {
		panic("birch: SetLineWidth requires a line")
	}
	e.mesh.width = w
	e.rebuildMesh()
}

// LineType returns how a line's points are joined.
func (e *Entity) LineType() LineType {
	if e.mesh == nil {
		return LineStrip
	}
	return e.mesh.lineType
}

// SetLineType sets how a line's points are joined.
func (e *Entity) SetLineType(t LineType) {
	if e.Type != EntityTypeLine {
		panic("birch: SetLineType requires a line")
	}
	e.mesh.lineType = t
	e.rebuildMesh()
}

func (e *Entity) rebuildMesh() {
	m := e.mesh
	m.verts = m.verts[:0]
	m.indices = m.indices[:0]
	if e.Type == EntityTypeLine {
		m.buildLine()
	} else {
		m.buildFan()
	}
	m.bounds = pointBounds(m.verts)
	m.version++
	e.SetSize(m.bounds.Width, m.bounds.Height)
	e.dirty |= DirtyTexCoords
}

// buildFan triangulates the points as a fan around the first one. N points
// give N vertices and 3(N-2) indices.
func (m *meshShape) buildFan() {
	n := len(m.points)
	if n < 3 {
		return
	}
	m.verts = append(m.verts, m.points...)
	for i := 1; i < n-1; i++ {
		m.indices = append(m.indices, 0, uint32(i), uint32(i+1))
	}
}

// buildLine strokes the points. Every joint contributes a vertex pair offset
// along its normal by half the width; consecutive pairs form a quad.
func (m *meshShape) buildLine() {
	pts := m.points
	n := len(pts)
	if n < 2 {
		return
	}
	halfW := m.width / 2
	typ := m.lineType
	if n == 2 {
		typ = Lines
	}
	switch typ {
	case Lines:
		for i := 0; i+1 < n; i += 2 {
			nx, ny := perpendicular(pts[i], pts[i+1])
			v := uint32(len(m.verts))
			m.pushPair(pts[i], nx, ny, halfW)
			m.pushPair(pts[i+1], nx, ny, halfW)
			m.pushQuad(v, v+2)
		}
	case LineStrip:
		for i := 0; i < n; i++ {
			var nx, ny float64
			switch i {
			case 0:
				nx, ny = perpendicular(pts[0], pts[1])
			case n - 1:
				nx, ny = perpendicular(pts[n-2], pts[n-1])
			default:
				nx, ny = miterNormal(pts[i-1], pts[i], pts[i+1])
			}
			m.pushPair(pts[i], nx, ny, halfW)
			if i > 0 {
				v := uint32(2 * i)
				m.pushQuad(v-2, v)
			}
		}
	case LineLoop:
		for i := 0; i < n; i++ {
			nx, ny := miterNormal(pts[(i+n-1)%n], pts[i], pts[(i+1)%n])
			m.pushPair(pts[i], nx, ny, halfW)
		}
		for i := 0; i < n; i++ {
			m.pushQuad(uint32(2*i), uint32(2*((i+1)%n)))
		}
	}
}

func (m *meshShape) pushPair(p Vec2, nx, ny, halfW float64) {
	m.verts = append(m.verts,
		Vec2{p.X + nx*halfW, p.Y + ny*halfW},
		Vec2{p.X - nx*halfW, p.Y - ny*halfW},
	)
}

// pushQuad joins the vertex pair starting at a to the pair starting at b.
func (m *meshShape) pushQuad(a, b uint32) {
	m.indices = append(m.indices, a, a+1, b, a+1, b+1, b)
}

// perpendicular returns the unit left-perpendicular of the segment from a to b.
func perpendicular(a, b Vec2) (float64, float64) {
	dx := b.X - a.X
	dy := b.Y - a.Y
	ln := math.Sqrt(dx*dx + dy*dy)
	if ln < 1e-10 {
		return 0, -1
	}
	return -dy / ln, dx / ln
}

// miterNormal averages the normals of the segments meeting at p and scales
// the result so the stroke keeps its width, clamped at 2x for sharp corners.
func miterNormal(prev, p, next Vec2) (float64, float64) {
	nx0, ny0 := perpendicular(prev, p)
	nx1, ny1 := perpendicular(p, next)
	nx, ny := nx0+nx1, ny0+ny1
	ln := math.Sqrt(nx*nx + ny*ny)
	if ln < 1e-10 {
		// The path folds back on itself.
		return nx0, ny0
	}
	nx /= ln
	ny /= ln
	if dot := nx0*nx + ny0*ny; dot > 0.1 {
		scale := min(1/dot, 2)
		nx *= scale
		ny *= scale
	}
	return nx, ny
}

func pointBounds(pts []Vec2) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// meshScale maps point space onto the entity's resolved size.
func (e *Entity) meshScale() (sx, sy float64) {
	b := e.mesh.bounds
	sx, sy = 1, 1
	if b.Width > 0 {
		sx = e.resolved.Width / b.Width
	}
	if b.Height > 0 {
		sy = e.resolved.Height / b.Height
	}
	return sx, sy
}

func (e *Entity) writeMeshVertices(dst []float32, m [6]float64) {
	b := e.mesh.bounds
	sx, sy := e.meshScale()
	for i, v := range e.mesh.verts {
		lx, ly := (v.X-b.X)*sx, (v.Y-b.Y)*sy
		if !e.visible {
			lx, ly = 0, 0
		}
		x, y := transformPoint(m, lx, ly)
		dst[2*i] = float32(x)
		dst[2*i+1] = float32(y)
	}
}

func (e *Entity) writeMeshIndices(dst []uint32, base uint32) {
	for i, idx := range e.mesh.indices {
		dst[i] = base + idx
	}
}

// writeMeshTexCoords stretches the texture over the bounding box.
func (e *Entity) writeMeshTexCoords(dst []float32, region texRegion) {
	b := e.mesh.bounds
	flip := e.texture.Flip
	for i, v := range e.mesh.verts {
		var u, t float32
		if b.Width > 0 {
			u = float32((v.X - b.X) / b.Width)
		}
		if b.Height > 0 {
			t = float32((v.Y - b.Y) / b.Height)
		}
		if flip {
			t = 1 - t
		}
		dst[2*i] = region.x + u*region.w
		dst[2*i+1] = region.y + t*region.h
	}
}
