package birch

import "testing"

func TestHorizontalGroupStacksChildren(t *testing.T) {
	s, _ := newTestScene()
	h := NewHorizontalGroup("row", 5)
	a := NewRectangle("a", 10, 10)
	b := NewRectangle("b", 20, 10)
	c := NewRectangle("c", 30, 5)
	h.Add(a)
	h.Add(b)
	h.Add(c)
	s.Root().Add(h)
	s.Step(0)

	assertNear(t, "a.x", a.AbsolutePosition().X, 0)
	assertNear(t, "b.x", b.AbsolutePosition().X, 15)
	assertNear(t, "c.x", c.AbsolutePosition().X, 40)
	if got := h.ContentSize(); got != (Size{70, 10}) {
		t.Errorf("content size = %v, want {70 10}", got)
	}
	if got := h.ResolvedSize(); got != (Size{70, 10}) {
		t.Errorf("resolved size = %v, want {70 10}", got)
	}
}

func TestVerticalGroupStacksChildren(t *testing.T) {
	s, _ := newTestScene()
	v := NewVerticalGroup("col", 2)
	a := NewRectangle("a", 10, 10)
	b := NewRectangle("b", 40, 20)
	v.Add(a)
	v.Add(b)
	v.SetPosition(100, 0)
	s.Root().Add(v)
	s.Step(0)

	p := b.AbsolutePosition()
	assertNear(t, "b.x", p.X, 100)
	assertNear(t, "b.y", p.Y, 12)
	if got := v.ContentSize(); got != (Size{40, 32}) {
		t.Errorf("content size = %v, want {40 32}", got)
	}
}

func TestAlignmentChildPositionOffsetsSlot(t *testing.T) {
	s, _ := newTestScene()
	h := NewHorizontalGroup("row", 0)
	a := NewRectangle("a", 10, 10)
	a.SetPosition(3, 4)
	b := NewRectangle("b", 10, 10)
	h.Add(a)
	h.Add(b)
	s.Root().Add(h)
	s.Step(0)

	pa := a.AbsolutePosition()
	assertNear(t, "a.x", pa.X, 3)
	assertNear(t, "a.y", pa.Y, 4)
	assertNear(t, "b.x", b.AbsolutePosition().X, 13)
}

func TestAlignmentResizeShiftsLaterSiblings(t *testing.T) {
	s, _ := newTestScene()
	h := NewHorizontalGroup("row", 0)
	a := NewRectangle("a", 10, 10)
	b := NewRectangle("b", 10, 10)
	c := NewRectangle("c", 10, 10)
	h.Add(a)
	h.Add(b)
	h.Add(c)
	s.Root().Add(h)
	frame(s)

	a.SetSize(25, 10)
	s.Step(0)
	assertNear(t, "b.x", b.AbsolutePosition().X, 25)
	assertNear(t, "c.x", c.AbsolutePosition().X, 35)
	if h.ResolvedSize().Width != 45 {
		t.Errorf("width = %v, want 45", h.ResolvedSize().Width)
	}
}

func TestAlignmentUsesScaledSize(t *testing.T) {
	s, _ := newTestScene()
	h := NewHorizontalGroup("row", 0)
	a := NewRectangle("a", 10, 10)
	a.SetScale(2, 1)
	b := NewRectangle("b", 10, 10)
	h.Add(a)
	h.Add(b)
	s.Root().Add(h)
	s.Step(0)
	assertNear(t, "b.x", b.AbsolutePosition().X, 20)
}

func TestSetPaddingRelayouts(t *testing.T) {
	s, _ := newTestScene()
	h := NewHorizontalGroup("row", 0)
	a := NewRectangle("a", 10, 10)
	b := NewRectangle("b", 10, 10)
	h.Add(a)
	h.Add(b)
	s.Root().Add(h)
	frame(s)

	h.SetPadding(6)
	s.Step(0)
	assertNear(t, "b.x", b.AbsolutePosition().X, 16)
	if h.Padding() != 6 {
		t.Errorf("padding = %v", h.Padding())
	}
}

func TestBatchedAlignmentGroup(t *testing.T) {
	s, d := newTestScene()
	h := NewHorizontalGroup("row", 10)
	h.SetEnableBatching(true)
	h.Add(NewRectangle("a", 10, 10))
	h.Add(NewRectangle("b", 10, 10))
	s.Root().Add(h)
	frame(s)

	if len(d.draws) != 1 {
		t.Fatalf("draws = %d, want 1", len(d.draws))
	}
	v := d.buffers[d.draws[0].handle][BufferVertices]
	// b's first vertex sits after a and the padding.
	if v[8] != 20 || v[9] != 0 {
		t.Errorf("b origin = (%v, %v), want (20, 0)", v[8], v[9])
	}
}
