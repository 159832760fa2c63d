package birch

// NewHorizontalGroup creates a group that lays its children out left to
// right, padding pixels apart. Each child's own position is added to its slot.
func NewHorizontalGroup(name string, padding float64) *Entity {
	e := newEntity(name, EntityTypeHorizontalGroup)
	e.padding = padding
	return e
}

// NewVerticalGroup creates a group that lays its children out top to bottom.
func NewVerticalGroup(name string, padding float64) *Entity {
	e := newEntity(name, EntityTypeVerticalGroup)
	e.padding = padding
	return e
}

// Padding returns the gap between an alignment group's children.
func (e *Entity) Padding() float64 { return e.padding }

// SetPadding sets the gap between an alignment group's children.
func (e *Entity) SetPadding(p float64) {
	if e.padding == p {
		return
	}
	e.padding = p
	e.dirty |= DirtyVertex
}

// ContentSize returns the extent of an alignment group's stacked children as
// of the last update.
func (e *Entity) ContentSize() Size { return e.contentSize }
