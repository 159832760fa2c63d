package birch

import "math"

// ColliderKind identifies the bounding shape held by a Collider.
type ColliderKind uint8

const (
	ColliderBox ColliderKind = iota
	ColliderCircle
)

// OBB is an oriented bounding box: a center, two unit axes and the half
// extents along them.
type OBB struct {
	Center     Vec2
	AxisU      Vec2
	AxisV      Vec2
	HalfWidth  float64
	HalfHeight float64
}

// Collider is an entity's world-space bounding shape, derived from its world
// matrix and resolved size. Boxes carry both an AABB and an OBB; circles
// carry a center and radius and an AABB.
type Collider struct {
	Kind   ColliderKind
	AABB   Rect
	OBB    OBB
	Center Vec2
	Radius float64
}

// Collider returns the entity's cached bounding shape, recomputed after any
// VERTEX change has been applied by an update.
func (e *Entity) Collider() Collider {
	if !e.colliderValid {
		e.collider = e.computeCollider()
		e.colliderValid = true
	}
	return e.collider
}

func (e *Entity) computeCollider() Collider {
	m := e.world
	w, h := e.resolved.Width, e.resolved.Height

	ux, uy, lenU := unitAxis(m[0], m[1])
	vx, vy, lenV := unitAxis(m[2], m[3])
	cx, cy := transformPoint(m, w/2, h/2)
	obb := OBB{
		Center:     Vec2{cx, cy},
		AxisU:      Vec2{ux, uy},
		AxisV:      Vec2{vx, vy},
		HalfWidth:  w * lenU / 2,
		HalfHeight: h * lenV / 2,
	}

	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, p := range [4][2]float64{{0, 0}, {w, 0}, {0, h}, {w, h}} {
		x, y := transformPoint(m, p[0], p[1])
		minX, maxX = math.Min(minX, x), math.Max(maxX, x)
		minY, maxY = math.Min(minY, y), math.Max(maxY, y)
	}
	c := Collider{
		Kind: ColliderBox,
		AABB: Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY},
		OBB:  obb,
	}
	if e.Type == EntityTypeCircle {
		c.Kind = ColliderCircle
		c.Center = obb.Center
		c.Radius = math.Min(obb.HalfWidth, obb.HalfHeight)
	}
	return c
}

// unitAxis normalizes (x, y). A zero-length axis yields (0, 0) and length 0.
func unitAxis(x, y float64) (ux, uy, length float64) {
	length = math.Hypot(x, y)
	if length == 0 {
		return 0, 0, 0
	}
	return x / length, y / length, length
}

// Contains reports whether the world point (x, y) is inside the shape.
func (c Collider) Contains(x, y float64) bool {
	if c.Kind == ColliderCircle {
		dx, dy := x-c.Center.X, y-c.Center.Y
		return dx*dx+dy*dy <= c.Radius*c.Radius
	}
	if !c.AABB.Contains(x, y) {
		return false
	}
	o := c.OBB
	dx, dy := x-o.Center.X, y-o.Center.Y
	return math.Abs(dx*o.AxisU.X+dy*o.AxisU.Y) <= o.HalfWidth &&
		math.Abs(dx*o.AxisV.X+dy*o.AxisV.Y) <= o.HalfHeight
}

// Intersects reports whether two shapes overlap.
func (c Collider) Intersects(o Collider) bool {
	if !c.AABB.Intersects(o.AABB) {
		return false
	}
	switch {
	case c.Kind == ColliderCircle && o.Kind == ColliderCircle:
		dx, dy := c.Center.X-o.Center.X, c.Center.Y-o.Center.Y
		r := c.Radius + o.Radius
		return dx*dx+dy*dy <= r*r
	case c.Kind == ColliderCircle:
		return o.OBB.intersectsCircle(c.Center, c.Radius)
	case o.Kind == ColliderCircle:
		return c.OBB.intersectsCircle(o.Center, o.Radius)
	default:
		return c.OBB.intersects(o.OBB)
	}
}

// intersects runs the separating axis test over the four box axes.
func (b OBB) intersects(o OBB) bool {
	d := Vec2{o.Center.X - b.Center.X, o.Center.Y - b.Center.Y}
	for _, axis := range [4]Vec2{b.AxisU, b.AxisV, o.AxisU, o.AxisV} {
		if axis.X == 0 && axis.Y == 0 {
			continue
		}
		dist := math.Abs(dot(d, axis))
		rb := b.HalfWidth*math.Abs(dot(b.AxisU, axis)) + b.HalfHeight*math.Abs(dot(b.AxisV, axis))
		ro := o.HalfWidth*math.Abs(dot(o.AxisU, axis)) + o.HalfHeight*math.Abs(dot(o.AxisV, axis))
		if dist > rb+ro {
			return false
		}
	}
	return true
}

// intersectsCircle clamps the circle center into box space and measures the
// distance to the closest point.
func (b OBB) intersectsCircle(center Vec2, radius float64) bool {
	d := Vec2{center.X - b.Center.X, center.Y - b.Center.Y}
	lu := dot(d, b.AxisU)
	lv := dot(d, b.AxisV)
	cu := math.Max(-b.HalfWidth, math.Min(b.HalfWidth, lu))
	cv := math.Max(-b.HalfHeight, math.Min(b.HalfHeight, lv))
	du, dv := lu-cu, lv-cv
	return du*du+dv*dv <= radius*radius
}

func dot(a, b Vec2) float64 { return a.X*b.X + a.Y*b.Y }

// ContainsPoint reports whether the world point (x, y) is inside the entity's
// collider. Inactive entities contain nothing.
func (e *Entity) ContainsPoint(x, y float64) bool {
	if !e.visible {
		return false
	}
	return e.Collider().Contains(x, y)
}

// CollidesWith reports whether the colliders of e and other overlap.
func (e *Entity) CollidesWith(other *Entity) bool {
	if other == nil || !e.visible || !other.visible {
		return false
	}
	return e.Collider().Intersects(other.Collider())
}
