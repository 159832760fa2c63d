package birch

import (
	"weak"

	"golang.org/x/image/font"
)

// --- ID counter ---

// entityIDCounter is a plain counter (no atomic, birch is single-threaded).
var entityIDCounter uint32

func nextEntityID() uint32 {
	entityIDCounter++
	return entityIDCounter
}

// --- Entity ---

// Entity is the fundamental scene graph element. A single flat struct is used
// for every shape and group variant; geometry is selected by Type.
type Entity struct {
	// Identity
	ID   uint32
	Name string
	Tag  string
	Type EntityType

	// Hierarchy. The parent handle never keeps the parent alive.
	parent   weak.Pointer[Entity]
	children []*Entity

	transform
	sizeRatio SizeRatio

	// Ordering and visibility
	zIndex  int
	active  bool
	visible bool // active and every ancestor active, as of the last update

	// Touch
	touchEnabled   bool
	swallowTouches bool
	listeners      []touchListenerEntry
	touchFrame     uint64 // scene frame this entity last registered as touchable

	BlendMode BlendMode

	// Render state. Setters OR into dirty; updateFrame moves dirty (merged
	// with the parent's) into frameDirty, which drawFrame clears once bound.
	dirty          DirtyFlag
	frameDirty     DirtyFlag
	texture        *Texture
	textureVersion uint64 // texture version last seen by updateFrame
	renderer       *Renderer
	inBatch        bool // drawn by a batching ancestor

	collider      Collider
	colliderValid bool

	tweens []*Tween

	// Per-entity callback, run at the start of every update.
	OnUpdate func(delta float64)

	UserData any

	// Circle
	radius float64
	// RoundedRectangle
	cornerRadius float64
	// Sprite and its variants
	srcRect    Rect
	filename   string
	centerRect Rect            // Slice9Sprite
	anim       *frameAnimation // AnimatedSprite
	// Polygon, Triangle, Line
	mesh       *meshShape
	drawnShape uint32 // mesh version whose indices the renderer holds
	// Label
	text  string
	face  font.Face
	align TextAlign

	// Group
	sortOrderDirty bool
	sorted         []*Entity // z-sorted traversal order, rebuilt when sortOrderDirty
	dirtyChildren  DirtyFlag
	batching       bool
	layoutDirty    bool // structure changed since the last batched rebuild
	atlas          *TextureAtlas
	batchEntries   []batchEntry // leaves in draw order with their first vertex
	updating       *Scene       // non-nil while this group's children are being updated

	// AlignmentGroup
	padding     float64
	contentSize Size

	disposed bool
}

// entityDefaults sets the common default field values shared by all constructors.
func entityDefaults(e *Entity) {
	e.ID = nextEntityID()
	e.transform = newTransform()
	e.active = true
	e.visible = true
	e.dirty = DirtyAll
}

func newEntity(name string, typ EntityType) *Entity {
	e := &Entity{Name: name, Type: typ}
	entityDefaults(e)
	return e
}

// NewRectangle creates a solid rectangle of the given size.
func NewRectangle(name string, w, h float64) *Entity {
	e := newEntity(name, EntityTypeRectangle)
	e.SetSize(w, h)
	return e
}

// NewRoundedRectangle creates a rectangle whose corners are rounded by cornerRadius.
func NewRoundedRectangle(name string, w, h, cornerRadius float64) *Entity {
	e := newEntity(name, EntityTypeRoundedRectangle)
	e.SetSize(w, h)
	e.SetCornerRadius(cornerRadius)
	return e
}

// NewCircle creates a filled circle. Its size is the bounding square.
func NewCircle(name string, radius float64) *Entity {
	e := newEntity(name, EntityTypeCircle)
	e.SetRadius(radius)
	return e
}

// --- Accessors ---

// Parent returns the group that owns this entity, or nil when the entity is
// detached or its group has been disposed or collected.
func (e *Entity) Parent() *Entity {
	p := e.parent.Value()
	if p == nil || p.disposed {
		return nil
	}
	return p
}

// Active reports whether the entity is drawn and receives touches.
func (e *Entity) Active() bool { return e.active }

// SetActive shows or hides the entity and its subtree. Inactive entities keep
// their place in the tree and in batched buffers; their geometry collapses to
// zero area.
func (e *Entity) SetActive(active bool) {
	if e.active == active {
		return
	}
	e.active = active
	e.dirty |= DirtyVertex
}

// ZIndex returns the entity's draw order among its siblings.
func (e *Entity) ZIndex() int { return e.zIndex }

// SetZIndex sets the entity's draw order among its siblings. The parent
// re-sorts on its next update; equal z-indices keep insertion order.
func (e *Entity) SetZIndex(z int) {
	if e.zIndex == z {
		return
	}
	e.zIndex = z
	if p := e.Parent(); p != nil {
		p.sortOrderDirty = true
	}
}

// DirtyFlags returns every flag not yet consumed by a draw: mutations made
// since the last update plus flags the last update has not yet had bound.
func (e *Entity) DirtyFlags() DirtyFlag { return e.dirty | e.frameDirty }

// Texture returns the entity's texture, or nil.
func (e *Entity) Texture() *Texture { return e.texture }

// SetTexture replaces the entity's texture and marks texture and texture
// coordinates dirty.
func (e *Entity) SetTexture(tex *Texture) {
	e.texture = tex
	if tex != nil {
		e.textureVersion = tex.version
	}
	e.dirty |= DirtyTexture | DirtyTexCoords
}

// Radius returns a circle's radius.
func (e *Entity) Radius() float64 { return e.radius }

// SetRadius sets a circle's radius, resizing it to the bounding square and
// regenerating its alpha texture.
func (e *Entity) SetRadius(r float64) {
	e.radius = r
	e.SetSize(2*r, 2*r)
	e.SetTexture(newQuarterCircleTexture(r))
}

// CornerRadius returns a rounded rectangle's corner radius.
func (e *Entity) CornerRadius() float64 { return e.cornerRadius }

// SetCornerRadius sets a rounded rectangle's corner radius.
func (e *Entity) SetCornerRadius(r float64) {
	e.cornerRadius = r
	e.SetTexture(newQuarterCircleTexture(r))
	e.dirty |= DirtyVertex
}

// TouchEnabled reports whether the entity registers as a touch candidate.
func (e *Entity) TouchEnabled() bool { return e.touchEnabled }

// SetTouchEnabled enables or disables touch hit-testing for the entity.
func (e *Entity) SetTouchEnabled(enabled bool) { e.touchEnabled = enabled }

// SwallowTouches reports whether a touch that begins on this entity stops
// propagating to entities behind it.
func (e *Entity) SwallowTouches() bool { return e.swallowTouches }

// SetSwallowTouches sets whether touches stop at this entity.
func (e *Entity) SetSwallowTouches(swallow bool) { e.swallowTouches = swallow }

// IsDisposed reports whether Dispose has been called.
func (e *Entity) IsDisposed() bool { return e.disposed }

// RemoveFromParent detaches this entity from its group.
// No-op if the entity has no parent.
func (e *Entity) RemoveFromParent() {
	if p := e.Parent(); p != nil {
		p.Remove(e)
	}
}

// Dispose detaches the entity, disposes its subtree, and releases device
// buffers. A disposed entity must not be reused.
func (e *Entity) Dispose() {
	if e.disposed {
		return
	}
	e.RemoveFromParent()
	e.dispose()
}

func (e *Entity) dispose() {
	e.disposed = true
	for _, c := range e.children {
		c.parent = weak.Pointer[Entity]{}
		c.dispose()
	}
	e.children = nil
	e.sorted = nil
	e.tweens = nil
	e.listeners = nil
	e.OnUpdate = nil
	if e.renderer != nil {
		e.renderer.release()
		e.renderer = nil
	}
	e.atlas = nil
	e.batchEntries = nil
}
