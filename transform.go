package birch

import "math"

// identityTransform is the identity affine matrix.
var identityTransform = [6]float64{1, 0, 0, 1, 0, 0}

// transform holds an entity's local placement, its cached local matrix, and
// the composed world matrix and color.
type transform struct {
	position Vec2
	anchor   Vec2 // 0..1 of the parent's size
	pivot    Vec2 // 0..1 of the entity's own size
	scale    Vec2
	rotation float64
	color    Color

	size     Size // as authored; axes flagged by sizeRatio hold ratios
	resolved Size // size in pixels after ratio resolution
	offset   Vec2 // parent size * anchor

	local      [6]float64
	world      [6]float64
	worldColor Color
}

func newTransform() transform {
	return transform{
		scale:      Vec2{1, 1},
		color:      ColorWhite,
		local:      identityTransform,
		world:      identityTransform,
		worldColor: ColorWhite,
	}
}

// computeLocalMatrix computes the local affine matrix [a, b, c, d, tx, ty].
//
// Composition order:
//
//	Translate(-pivot*size) -> Scale -> Rotate -> Translate(position + offset)
func computeLocalMatrix(t *transform) [6]float64 {
	sx := t.scale.X
	sy := t.scale.Y
	sin, cos := math.Sincos(t.rotation)

	px := t.pivot.X * t.resolved.Width
	py := t.pivot.Y * t.resolved.Height

	// After Scale * Translate(-pivot):
	//   a=sx, b=0, c=0, d=sy, tx=-px*sx, ty=-py*sy
	preTx := -px * sx
	preTy := -py * sy

	// After Rotate:
	ra := cos * sx
	rb := sin * sx
	rc := -sin * sy
	rd := cos * sy
	rtx := cos*preTx - sin*preTy
	rty := sin*preTx + cos*preTy

	return [6]float64{ra, rb, rc, rd, rtx + t.position.X + t.offset.X, rty + t.position.Y + t.offset.Y}
}

// multiplyAffine multiplies two 2D affine matrices: result = parent * child.
//
//	Matrix layout: [a, b, c, d, tx, ty]
//	| a  c  tx |
//	| b  d  ty |
//	| 0  0   1 |
func multiplyAffine(p, c [6]float64) [6]float64 {
	return [6]float64{
		p[0]*c[0] + p[2]*c[1],
		p[1]*c[0] + p[3]*c[1],
		p[0]*c[2] + p[2]*c[3],
		p[1]*c[2] + p[3]*c[3],
		p[0]*c[4] + p[2]*c[5] + p[4],
		p[1]*c[4] + p[3]*c[5] + p[5],
	}
}

// translateAffine returns m * Translate(x, y).
func translateAffine(m [6]float64, x, y float64) [6]float64 {
	return multiplyAffine(m, [6]float64{1, 0, 0, 1, x, y})
}

// invertAffine computes the inverse of a 2D affine matrix.
// Returns the identity matrix if the matrix is singular.
func invertAffine(m [6]float64) [6]float64 {
	det := m[0]*m[3] - m[2]*m[1]
	if det > -1e-12 && det < 1e-12 {
		return identityTransform
	}
	invDet := 1.0 / det
	a := m[3] * invDet
	b := -m[1] * invDet
	c := -m[2] * invDet
	d := m[0] * invDet
	return [6]float64{
		a, b, c, d,
		-(a*m[4] + c*m[5]),
		-(b*m[4] + d*m[5]),
	}
}

// transformPoint applies an affine matrix to a point.
func transformPoint(m [6]float64, x, y float64) (float64, float64) {
	return m[0]*x + m[2]*y + m[4], m[1]*x + m[3]*y + m[5]
}

// axisScale returns the lengths of the matrix's x and y basis vectors.
func axisScale(m [6]float64) (float64, float64) {
	return math.Hypot(m[0], m[1]), math.Hypot(m[2], m[3])
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// --- Transform property setters ---

// SetPosition sets the entity's local position and marks its vertices dirty.
func (e *Entity) SetPosition(x, y float64) {
	e.position = Vec2{x, y}
	e.dirty |= DirtyVertex
}

// SetScale sets the entity's scale. Non-finite values are rejected and the
// previous scale is kept.
func (e *Entity) SetScale(sx, sy float64) {
	if !isFinite(sx) || !isFinite(sy) {
		logger.Debug("rejected non-finite scale", "entity", e.Name, "sx", sx, "sy", sy)
		return
	}
	e.scale = Vec2{sx, sy}
	e.dirty |= DirtyVertex
}

// SetRotation sets the entity's rotation in radians. Non-finite values are
// rejected and the previous rotation is kept.
func (e *Entity) SetRotation(r float64) {
	if !isFinite(r) {
		logger.Debug("rejected non-finite rotation", "entity", e.Name, "rotation", r)
		return
	}
	e.rotation = r
	e.dirty |= DirtyVertex
}

// SetPivot sets the rotation and scale origin as a fraction of the entity's size.
func (e *Entity) SetPivot(px, py float64) {
	e.pivot = Vec2{px, py}
	e.dirty |= DirtyVertex
}

// SetAnchor sets the attachment point as a fraction of the parent's size.
func (e *Entity) SetAnchor(ax, ay float64) {
	e.anchor = Vec2{ax, ay}
	e.dirty |= DirtyVertex | DirtyAnchor
}

// SetColor sets the entity's tint. Only the color buffer is rebound.
func (e *Entity) SetColor(c Color) {
	e.color = c
	e.dirty |= DirtyColor
}

// SetAlpha sets the alpha component of the entity's tint.
func (e *Entity) SetAlpha(a float64) {
	e.color.A = a
	e.dirty |= DirtyColor
}

// SetSize sets the entity's size. Axes flagged by the current SizeRatio are
// interpreted as ratios of the parent's size.
func (e *Entity) SetSize(w, h float64) {
	e.size = Size{w, h}
	e.resolved = e.resolveSize(Size{})
	e.dirty |= DirtyVertex | DirtySize
}

// SetSizeRatio selects which size axes are ratios of the parent's size.
func (e *Entity) SetSizeRatio(r SizeRatio) {
	e.sizeRatio = r
	e.dirty |= DirtyVertex | DirtySize
}

// Position returns the entity's local position.
func (e *Entity) Position() Vec2 { return e.position }

// Scale returns the entity's local scale.
func (e *Entity) Scale() Vec2 { return e.scale }

// Rotation returns the entity's local rotation in radians.
func (e *Entity) Rotation() float64 { return e.rotation }

// Pivot returns the entity's pivot.
func (e *Entity) Pivot() Vec2 { return e.pivot }

// Anchor returns the entity's anchor.
func (e *Entity) Anchor() Vec2 { return e.anchor }

// Color returns the entity's own tint, not composed with its ancestors.
func (e *Entity) Color() Color { return e.color }

// Size returns the entity's size as authored.
func (e *Entity) Size() Size { return e.size }

// SizeRatio returns which size axes are ratios of the parent's size.
func (e *Entity) SizeRatio() SizeRatio { return e.sizeRatio }

// resolveSize converts the authored size into pixels. Ratio axes use
// parent; when parent is the zero Size the last resolved value is kept.
func (e *Entity) resolveSize(parent Size) Size {
	out := e.size
	if e.sizeRatio&RatioWidth != 0 {
		out.Width = e.resolved.Width
		if parent.Width != 0 {
			out.Width = parent.Width * e.size.Width
		}
	}
	if e.sizeRatio&RatioHeight != 0 {
		out.Height = e.resolved.Height
		if parent.Height != 0 {
			out.Height = parent.Height * e.size.Height
		}
	}
	return out
}

// --- Derived world-space accessors ---
//
// These read the matrix computed by the most recent updateFrame and are stale
// until the next frame after a mutation.

// WorldMatrix returns the composed affine matrix.
func (e *Entity) WorldMatrix() [6]float64 { return e.world }

// WorldColor returns the composed tint.
func (e *Entity) WorldColor() Color { return e.worldColor }

// AbsolutePosition returns the world-space position of the entity's origin.
func (e *Entity) AbsolutePosition() Vec2 {
	x, y := transformPoint(e.world, 0, 0)
	return Vec2{x, y}
}

// AbsoluteScale returns the world-space scale along the entity's own axes.
func (e *Entity) AbsoluteScale() Vec2 {
	sx, sy := axisScale(e.world)
	return Vec2{sx, sy}
}

// AbsoluteSize returns the resolved size multiplied by the world-space scale.
func (e *Entity) AbsoluteSize() Size {
	sx, sy := axisScale(e.world)
	return Size{e.resolved.Width * sx, e.resolved.Height * sy}
}

// ResolvedSize returns the size in local pixels after ratio resolution.
func (e *Entity) ResolvedSize() Size { return e.resolved }

// WorldToLocal converts a world-space point to this entity's local coordinate space.
func (e *Entity) WorldToLocal(wx, wy float64) (lx, ly float64) {
	return transformPoint(invertAffine(e.world), wx, wy)
}

// LocalToWorld converts a local-space point to world-space.
func (e *Entity) LocalToWorld(lx, ly float64) (wx, wy float64) {
	return transformPoint(e.world, lx, ly)
}
