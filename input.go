package birch

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// maxPointers is the number of simultaneous pointers tracked: the mouse as
// pointer 0 plus nine touches.
const maxPointers = 10

// TouchPhase is the stage of a touch sequence.
type TouchPhase uint8

const (
	TouchBegin TouchPhase = iota
	TouchMove
	TouchEnd
)

func (p TouchPhase) String() string {
	switch p {
	case TouchBegin:
		return "begin"
	case TouchMove:
		return "move"
	case TouchEnd:
		return "end"
	default:
		return "unknown"
	}
}

// Touch is one pointer event in world coordinates. LocalX/LocalY are filled
// per receiver in that entity's local space.
type Touch struct {
	ID             int
	Phase          TouchPhase
	X, Y           float64
	StartX, StartY float64
	LocalX, LocalY float64
}

// TouchListener is called for every touch event delivered to an entity.
type TouchListener func(e *Entity, t Touch)

// TouchListenerHandle removes a listener registered with AddTouchListener.
type TouchListenerHandle struct {
	id uint32
}

type touchListenerEntry struct {
	id uint32
	fn TouchListener
}

var nextListenerID uint32

// AddTouchListener registers fn for touches delivered to this entity. The
// entity must also be touch-enabled to receive them.
func (e *Entity) AddTouchListener(fn TouchListener) TouchListenerHandle {
	nextListenerID++
	e.listeners = append(e.listeners, touchListenerEntry{id: nextListenerID, fn: fn})
	return TouchListenerHandle{id: nextListenerID}
}

// RemoveTouchListener unregisters a listener. Unknown handles are ignored.
func (e *Entity) RemoveTouchListener(h TouchListenerHandle) {
	for i, l := range e.listeners {
		if l.id == h.id {
			e.listeners = append(e.listeners[:i], e.listeners[i+1:]...)
			return
		}
	}
}

// fireTouch delivers t to every listener, with local coordinates filled in.
func (e *Entity) fireTouch(t Touch) {
	t.LocalX, t.LocalY = e.WorldToLocal(t.X, t.Y)
	// Listeners may remove themselves.
	for _, l := range append([]touchListenerEntry(nil), e.listeners...) {
		l.fn(e, t)
	}
}

// --- Scene side ---

// pointerState tracks one pointer between frames.
type pointerState struct {
	down           bool
	startX, startY float64
	lastX, lastY   float64
}

// pushTouchable registers e as a hit candidate for this frame. Registration
// order is draw order, so later entries are in front.
func (s *Scene) pushTouchable(e *Entity) {
	e.touchFrame = s.frame
	s.touchables = append(s.touchables, e)
}

// registered reports whether e is a hit candidate this frame.
func (s *Scene) registered(e *Entity) bool {
	return !e.disposed && e.touchFrame == s.frame && e.visible
}

// dispatchTouch delivers one pointer event. Begin goes front to back to every
// candidate containing the point, stopping after the first one that swallows
// touches; move and end go to the entities that received that begin.
func (s *Scene) dispatchTouch(t Touch) {
	if t.ID < 0 || t.ID >= maxPointers {
		return
	}
	switch t.Phase {
	case TouchBegin:
		recv := s.receivers[t.ID][:0]
		for i := len(s.touchables) - 1; i >= 0; i-- {
			e := s.touchables[i]
			if !s.registered(e) || !e.ContainsPoint(t.X, t.Y) {
				continue
			}
			recv = append(recv, e)
			s.deliver(e, t)
			if e.swallowTouches {
				break
			}
		}
		s.receivers[t.ID] = recv
	case TouchMove, TouchEnd:
		for _, e := range s.receivers[t.ID] {
			if s.registered(e) {
				s.deliver(e, t)
			}
		}
		if t.Phase == TouchEnd {
			clear(s.receivers[t.ID])
			s.receivers[t.ID] = s.receivers[t.ID][:0]
		}
	}
}

func (s *Scene) deliver(e *Entity, t Touch) {
	e.fireTouch(t)
	if s.store != nil {
		lx, ly := e.WorldToLocal(t.X, t.Y)
		s.store.EmitTouch(TouchEvent{
			Phase:      t.Phase,
			TouchID:    t.ID,
			EntityID:   e.ID,
			EntityName: e.Name,
			X:          t.X,
			Y:          t.Y,
			LocalX:     lx,
			LocalY:     ly,
		})
	}
}

// processPointer runs the pointer state machine and dispatches the resulting
// event, if any.
func (s *Scene) processPointer(id int, x, y float64, pressed bool) {
	ps := &s.pointers[id]
	switch {
	case pressed && !ps.down:
		*ps = pointerState{down: true, startX: x, startY: y, lastX: x, lastY: y}
		s.dispatchTouch(Touch{ID: id, Phase: TouchBegin, X: x, Y: y, StartX: x, StartY: y})
	case pressed && (x != ps.lastX || y != ps.lastY):
		ps.lastX, ps.lastY = x, y
		s.dispatchTouch(Touch{ID: id, Phase: TouchMove, X: x, Y: y, StartX: ps.startX, StartY: ps.startY})
	case !pressed && ps.down:
		ps.down = false
		s.dispatchTouch(Touch{ID: id, Phase: TouchEnd, X: x, Y: y, StartX: ps.startX, StartY: ps.startY})
	}
}

// pollInput reads Ebitengine's mouse and touch state. The left mouse button
// is pointer 0; touches take slots 1-9 in the order they began.
func (s *Scene) pollInput() {
	mx, my := ebiten.CursorPosition()
	s.processPointer(0, float64(mx), float64(my), ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft))

	for _, tid := range inpututil.AppendJustPressedTouchIDs(s.touchIDs[:0]) {
		s.touchSlot(tid)
	}
	s.touchIDs = ebiten.AppendTouchIDs(s.touchIDs[:0])
	var active [maxPointers]bool
	for _, tid := range s.touchIDs {
		slot := s.touchSlot(tid)
		if slot < 0 {
			continue
		}
		active[slot] = true
		tx, ty := ebiten.TouchPosition(tid)
		s.processPointer(slot, float64(tx), float64(ty), true)
	}
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && !active[i] {
			ps := &s.pointers[i]
			s.processPointer(i, ps.lastX, ps.lastY, false)
			s.touchUsed[i] = false
		}
	}
}

// touchSlot maps an ebiten.TouchID to a pointer slot, allocating one if
// needed. Returns -1 when every slot is taken.
func (s *Scene) touchSlot(tid ebiten.TouchID) int {
	for i := 1; i < maxPointers; i++ {
		if s.touchUsed[i] && s.touchMap[i] == tid {
			return i
		}
	}
	for i := 1; i < maxPointers; i++ {
		if !s.touchUsed[i] {
			s.touchUsed[i] = true
			s.touchMap[i] = tid
			return i
		}
	}
	return -1
}
