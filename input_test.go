package birch

import "testing"

// touchRecorder collects deliveries across entities.
type touchRecorder struct {
	events []recorded
}

type recorded struct {
	name  string
	phase TouchPhase
	t     Touch
}

func (r *touchRecorder) listen(e *Entity) TouchListenerHandle {
	e.SetTouchEnabled(true)
	return e.AddTouchListener(func(e *Entity, t Touch) {
		r.events = append(r.events, recorded{name: e.Name, phase: t.Phase, t: t})
	})
}

func (r *touchRecorder) names(phase TouchPhase) []string {
	var out []string
	for _, ev := range r.events {
		if ev.phase == phase {
			out = append(out, ev.name)
		}
	}
	return out
}

func overlappingPair(swallow bool) (*Scene, *Entity, *Entity, *touchRecorder) {
	s, _ := newTestScene()
	back := NewRectangle("back", 100, 100)
	front := NewRectangle("front", 50, 50)
	front.SetSwallowTouches(swallow)
	s.Root().Add(back)
	s.Root().Add(front)
	rec := &touchRecorder{}
	rec.listen(back)
	rec.listen(front)
	return s, back, front, rec
}

func equalNames(a, b []string) bool {
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

func TestTouchReachesEveryNonSwallowingEntity(t *testing.T) {
	s, _, _, rec := overlappingPair(false)
	s.InjectTap(0, 10, 10)
	s.Step(0)

	if got := rec.names(TouchBegin); !equalNames(got, []string{"front", "back"}) {
		t.Errorf("begin receivers = %v, want [front back]", got)
	}
	if got := rec.names(TouchEnd); !equalNames(got, []string{"front", "back"}) {
		t.Errorf("end receivers = %v, want [front back]", got)
	}
}

func TestSwallowingEntityStopsPropagation(t *testing.T) {
	s, _, _, rec := overlappingPair(true)
	s.InjectTap(0, 10, 10)
	s.Step(0)

	if got := rec.names(TouchBegin); !equalNames(got, []string{"front"}) {
		t.Errorf("begin receivers = %v, want [front]", got)
	}
}

func TestTouchOutsideFrontReachesBack(t *testing.T) {
	s, _, _, rec := overlappingPair(true)
	s.InjectTap(0, 80, 80)
	s.Step(0)

	if got := rec.names(TouchBegin); !equalNames(got, []string{"back"}) {
		t.Errorf("begin receivers = %v, want [back]", got)
	}
}

func TestZIndexDecidesFront(t *testing.T) {
	s, back, _, rec := overlappingPair(true)
	back.SetSwallowTouches(true)
	back.SetZIndex(1)
	s.InjectTap(0, 10, 10)
	s.Step(0)

	if got := rec.names(TouchBegin); !equalNames(got, []string{"back"}) {
		t.Errorf("begin receivers = %v, want [back]", got)
	}
}

func TestMoveAndEndFollowBeginReceivers(t *testing.T) {
	s, _, _, rec := overlappingPair(true)
	s.InjectDrag(0, 10, 10, 90, 90, 2)
	s.Step(0)

	if got := rec.names(TouchMove); !equalNames(got, []string{"front", "front"}) {
		t.Errorf("move receivers = %v, want [front front]", got)
	}
	if got := rec.names(TouchEnd); !equalNames(got, []string{"front"}) {
		t.Errorf("end receivers = %v, want [front]", got)
	}
	last := rec.events[len(rec.events)-1].t
	if last.StartX != 10 || last.StartY != 10 || last.X != 90 {
		t.Errorf("end touch = %+v", last)
	}
}

func TestTouchLocalCoordinates(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("r", 40, 40)
	r.SetPosition(100, 100)
	r.SetScale(2, 2)
	s.Root().Add(r)
	rec := &touchRecorder{}
	rec.listen(r)
	s.InjectTouchDown(0, 120, 110)
	s.Step(0)

	if len(rec.events) != 1 {
		t.Fatalf("events = %d, want 1", len(rec.events))
	}
	got := rec.events[0].t
	assertNear(t, "local x", got.LocalX, 10)
	assertNear(t, "local y", got.LocalY, 5)
}

func TestRemovedListenerIsNotCalled(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("r", 10, 10)
	s.Root().Add(r)
	rec := &touchRecorder{}
	h := rec.listen(r)
	other := 0
	r.AddTouchListener(func(*Entity, Touch) { other++ })
	r.RemoveTouchListener(h)
	r.RemoveTouchListener(h) // unknown handle
	s.InjectTap(0, 5, 5)
	s.Step(0)

	if len(rec.events) != 0 {
		t.Errorf("removed listener called %d times", len(rec.events))
	}
	if other != 2 {
		t.Errorf("remaining listener called %d times, want 2", other)
	}
}

func TestDisabledAndInactiveEntitiesIgnored(t *testing.T) {
	s, back, front, rec := overlappingPair(false)
	front.SetActive(false)
	back.SetTouchEnabled(false)
	s.InjectTap(0, 10, 10)
	s.Step(0)

	if len(rec.events) != 0 {
		t.Errorf("events = %v, want none", rec.names(TouchBegin))
	}
}

func TestInactiveAncestorHidesTouch(t *testing.T) {
	s, _ := newTestScene()
	g := NewGroup("g")
	r := NewRectangle("r", 10, 10)
	g.Add(r)
	s.Root().Add(g)
	rec := &touchRecorder{}
	rec.listen(r)
	g.SetActive(false)
	s.InjectTap(0, 5, 5)
	s.Step(0)

	if len(rec.events) != 0 {
		t.Error("touch delivered under an inactive group")
	}
}

func TestReceiverRemovedMidTouchGetsNoEnd(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("r", 10, 10)
	s.Root().Add(r)
	rec := &touchRecorder{}
	rec.listen(r)
	s.InjectTouchDown(0, 5, 5)
	s.Step(0)

	r.RemoveFromParent()
	s.InjectTouchUp(0, 5, 5)
	s.Step(0)

	if got := rec.names(TouchEnd); len(got) != 0 {
		t.Errorf("detached entity received end: %v", got)
	}
}

func TestListenerMutatesTree(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("r", 10, 10)
	s.Root().Add(r)
	r.SetTouchEnabled(true)
	spawned := NewRectangle("spawned", 5, 5)
	r.AddTouchListener(func(e *Entity, t Touch) {
		if t.Phase == TouchBegin {
			s.Root().Add(spawned)
			e.SetPosition(50, 0)
		}
	})
	s.InjectTouchDown(0, 5, 5)
	s.Step(0)

	if spawned.Parent() != s.Root() {
		t.Fatal("entity added from a listener is not attached")
	}
	assertNear(t, "moved x", r.AbsolutePosition().X, 50)
}

func TestMultiplePointersTrackedSeparately(t *testing.T) {
	s, _ := newTestScene()
	left := NewRectangle("left", 10, 10)
	right := NewRectangle("right", 10, 10)
	right.SetPosition(50, 0)
	s.Root().Add(left)
	s.Root().Add(right)
	rec := &touchRecorder{}
	rec.listen(left)
	rec.listen(right)

	s.InjectTouchDown(1, 5, 5)
	s.InjectTouchDown(2, 55, 5)
	s.InjectTouchUp(1, 5, 5)
	s.Step(0)

	if got := rec.names(TouchEnd); !equalNames(got, []string{"left"}) {
		t.Errorf("end receivers = %v, want [left]", got)
	}
	s.InjectTouchUp(2, 55, 5)
	s.Step(0)
	if got := rec.names(TouchEnd); !equalNames(got, []string{"left", "right"}) {
		t.Errorf("end receivers = %v, want [left right]", got)
	}
}

func TestOutOfRangePointerIgnored(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("r", 10, 10)
	s.Root().Add(r)
	rec := &touchRecorder{}
	rec.listen(r)
	s.InjectTap(maxPointers, 5, 5)
	s.InjectTap(-1, 5, 5)
	s.Step(0)
	if len(rec.events) != 0 {
		t.Errorf("events = %d, want 0", len(rec.events))
	}
}

func TestTouchEventForwardedToStore(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("r", 10, 10)
	r.SetPosition(20, 0)
	s.Root().Add(r)
	(&touchRecorder{}).listen(r)
	store := &memoryStore{}
	s.SetEventStore(store)
	s.InjectTap(0, 25, 5)
	s.Step(0)

	if len(store.events) != 2 {
		t.Fatalf("store events = %d, want 2", len(store.events))
	}
	ev := store.events[0]
	if ev.Phase != TouchBegin || ev.EntityName != "r" || ev.EntityID != r.ID {
		t.Errorf("event = %+v", ev)
	}
	assertNear(t, "local x", ev.LocalX, 5)
}

type memoryStore struct{ events []TouchEvent }

func (m *memoryStore) EmitTouch(e TouchEvent) { m.events = append(m.events, e) }
