package birch

import "weak"

// NewGroup creates a group entity with no visual output of its own.
func NewGroup(name string) *Entity {
	e := newEntity(name, EntityTypeGroup)
	return e
}

// NewBatchedGroup creates a group that merges its subtree into one draw call.
func NewBatchedGroup(name string) *Entity {
	e := NewGroup(name)
	e.SetEnableBatching(true)
	return e
}

// --- Pending structural changes ---

type changeOp uint8

const (
	changeAdd changeOp = iota
	changeInsert
	changeRemove
	changeRemoveAll
)

// pendingChange is a structural mutation requested while its group was
// being traversed. The scene applies the queue between update and draw.
type pendingChange struct {
	op     changeOp
	group  *Entity
	child  *Entity
	index  int
	before *Entity // insert position anchor for changeInsert; nil with index >= 0
}

// --- Tree manipulation ---

// Add appends child to this group's children.
// If child already has a parent, it is removed from that parent first.
// Panics if the receiver is not a group, child is nil, or child is an
// ancestor of this group (cycle).
//
// While the scene is updating either this group or child's current parent,
// the change is queued and applied after the update pass.
func (e *Entity) Add(child *Entity) {
	e.checkAddable(child)
	if s := traversing(e, child); s != nil {
		s.deferChange(pendingChange{op: changeAdd, group: e, child: child, index: -1})
		return
	}
	e.insertChild(child, len(e.children))
}

// AddAt inserts child at the given index among the insertion-ordered children.
func (e *Entity) AddAt(child *Entity, index int) {
	e.checkAddable(child)
	if index < 0 || index > len(e.children) {
		panic("birch: child index out of range")
	}
	if s := traversing(e, child); s != nil {
		s.deferChange(pendingChange{op: changeInsert, group: e, child: child, index: index})
		return
	}
	e.insertChild(child, index)
}

// InsertBefore inserts child immediately before the existing child anchor.
func (e *Entity) InsertBefore(child, anchor *Entity) {
	e.insertRelative(child, anchor, 0)
}

// InsertAfter inserts child immediately after the existing child anchor.
func (e *Entity) InsertAfter(child, anchor *Entity) {
	e.insertRelative(child, anchor, 1)
}

func (e *Entity) insertRelative(child, anchor *Entity, shift int) {
	e.checkAddable(child)
	if anchor == nil || anchor.Parent() != e {
		panic("birch: anchor's parent is not this group")
	}
	if s := traversing(e, child); s != nil {
		s.deferChange(pendingChange{op: changeInsert, group: e, child: child, before: anchor, index: shift})
		return
	}
	e.insertChild(child, e.indexOf(anchor)+shift)
}

// Remove detaches child from this group.
// Panics if child's parent is not this group.
func (e *Entity) Remove(child *Entity) {
	if child == nil || child.parent.Value() != e {
		panic("birch: child's parent is not this group")
	}
	if s := traversing(e, nil); s != nil {
		s.deferChange(pendingChange{op: changeRemove, group: e, child: child})
		return
	}
	e.removeChild(child)
}

// RemoveAll detaches all children from this group. Children are NOT disposed.
func (e *Entity) RemoveAll() {
	if s := traversing(e, nil); s != nil {
		s.deferChange(pendingChange{op: changeRemoveAll, group: e})
		return
	}
	e.removeAllChildren()
}

// traversing returns the scene whose update pass is iterating group or
// child's current parent, or any of their ancestors. A subtree moved while
// traversal is in progress must still be updated exactly once per frame.
func traversing(group, child *Entity) *Scene {
	for p := group; p != nil; p = p.parent.Value() {
		if p.updating != nil {
			return p.updating
		}
	}
	if child == nil {
		return nil
	}
	for p := child.parent.Value(); p != nil; p = p.parent.Value() {
		if p.updating != nil {
			return p.updating
		}
	}
	return nil
}

// Children returns the children in insertion order. The returned slice MUST
// NOT be mutated by the caller.
func (e *Entity) Children() []*Entity {
	return e.children
}

// NumChildren returns the number of children.
func (e *Entity) NumChildren() int {
	return len(e.children)
}

// ChildAt returns the child at the given insertion index.
func (e *Entity) ChildAt(index int) *Entity {
	return e.children[index]
}

// FindByName returns the first descendant with the given name, searching
// depth-first in insertion order.
func (e *Entity) FindByName(name string) *Entity {
	for _, c := range e.children {
		if c.Name == name {
			return c
		}
		if found := c.FindByName(name); found != nil {
			return found
		}
	}
	return nil
}

// FindByTag returns every descendant with the given tag, depth-first.
func (e *Entity) FindByTag(tag string) []*Entity {
	var out []*Entity
	for _, c := range e.children {
		if c.Tag == tag {
			out = append(out, c)
		}
		out = append(out, c.FindByTag(tag)...)
	}
	return out
}

// BatchingEnabled reports whether the group merges its subtree into one draw.
func (e *Entity) BatchingEnabled() bool { return e.batching }

// SetEnableBatching turns batching on or off. Either way the next draw
// rebuilds every buffer.
func (e *Entity) SetEnableBatching(enabled bool) {
	if !e.Type.IsGroup() {
		panic("birch: batching requires a group")
	}
	if e.batching == enabled {
		return
	}
	e.batching = enabled
	e.layoutDirty = true
	e.dirty |= DirtyAll
	markSubtreeDirty(e)
	if !enabled {
		e.atlas = nil
		if e.renderer != nil {
			e.renderer.release()
			e.renderer = nil
		}
	}
}

func (e *Entity) checkAddable(child *Entity) {
	if !e.Type.IsGroup() {
		panic("birch: cannot add a child to a non-group entity")
	}
	if child == nil {
		panic("birch: cannot add nil child")
	}
	if globalDebug {
		debugCheckDisposed(e, "Add (parent)")
		debugCheckDisposed(child, "Add (child)")
	}
	if isAncestor(child, e) {
		panic("birch: adding child would create a cycle")
	}
}

func (e *Entity) insertChild(child *Entity, index int) {
	if old := child.parent.Value(); old != nil {
		if old == e && e.indexOf(child) < index {
			index--
		}
		old.removeChild(child)
	}
	if index > len(e.children) {
		index = len(e.children)
	}
	child.parent = weak.Make(e)
	e.children = append(e.children, nil)
	copy(e.children[index+1:], e.children[index:])
	e.children[index] = child
	e.structureChanged()
	markSubtreeDirty(child)
	if globalDebug {
		debugCheckTreeDepth(child)
		debugCheckChildCount(e)
	}
}

func (e *Entity) removeChild(child *Entity) {
	i := e.indexOf(child)
	if i < 0 {
		return
	}
	copy(e.children[i:], e.children[i+1:])
	e.children[len(e.children)-1] = nil
	e.children = e.children[:len(e.children)-1]
	child.parent = weak.Pointer[Entity]{}
	e.structureChanged()
	markSubtreeDirty(child)
}

func (e *Entity) removeAllChildren() {
	for _, c := range e.children {
		c.parent = weak.Pointer[Entity]{}
		markSubtreeDirty(c)
	}
	clear(e.children)
	e.children = e.children[:0]
	e.structureChanged()
}

// structureChanged records that the child list changed: the traversal order
// must be rebuilt and batched buffers fully re-laid out.
func (e *Entity) structureChanged() {
	e.sortOrderDirty = true
	e.layoutDirty = true
	e.dirty |= DirtyAll
	for p := e.Parent(); p != nil; p = p.Parent() {
		p.layoutDirty = true
	}
}

func (e *Entity) indexOf(child *Entity) int {
	for i, c := range e.children {
		if c == child {
			return i
		}
	}
	return -1
}

// isAncestor reports whether candidate is entity or one of its ancestors.
func isAncestor(candidate, entity *Entity) bool {
	for p := entity; p != nil; p = p.parent.Value() {
		if p == candidate {
			return true
		}
	}
	return false
}

// markSubtreeDirty sets every dirty flag on entity and its descendants.
func markSubtreeDirty(entity *Entity) {
	entity.dirty |= DirtyAll
	entity.colliderValid = false
	for _, c := range entity.children {
		markSubtreeDirty(c)
	}
}

// --- Sorting ---

// rebuildSortedChildren rebuilds the z-sorted traversal order from the
// insertion-ordered children using a stable insertion sort, so equal
// z-indices keep insertion order. A changed order invalidates the batched
// layout of this group and every ancestor.
func (e *Entity) rebuildSortedChildren() {
	next := make([]*Entity, len(e.children))
	copy(next, e.children)
	for i := 1; i < len(next); i++ {
		key := next[i]
		j := i - 1
		for j >= 0 && next[j].zIndex > key.zIndex {
			next[j+1] = next[j]
			j--
		}
		next[j+1] = key
	}
	if !sameOrder(e.sorted, next) {
		e.layoutDirty = true
		for p := e.Parent(); p != nil; p = p.Parent() {
			p.layoutDirty = true
		}
	}
	e.sorted = next
	e.sortOrderDirty = false
}

func sameOrder(a, b []*Entity) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// drawOrder returns the children in the order they are updated and drawn.
func (e *Entity) drawOrder() []*Entity {
	return e.sorted
}
