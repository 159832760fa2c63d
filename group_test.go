package birch

import (
	"runtime"
	"testing"
)

func expectPanic(t *testing.T, what string, fn func()) {
	t.Helper()
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("expected panic for %s, got none", what)
		}
	}()
	fn()
}

// --- Add / Remove ---

func TestAddSetsParent(t *testing.T) {
	g := NewGroup("g")
	c := NewRectangle("c", 1, 1)
	g.Add(c)
	if c.Parent() != g {
		t.Error("parent not set")
	}
	if g.NumChildren() != 1 || g.ChildAt(0) != c {
		t.Errorf("children = %v", names(g.Children()))
	}
}

func TestAddReparents(t *testing.T) {
	a := NewGroup("a")
	b := NewGroup("b")
	c := NewRectangle("c", 1, 1)
	a.Add(c)
	b.Add(c)
	if a.NumChildren() != 0 {
		t.Error("child still in old parent")
	}
	if c.Parent() != b {
		t.Error("parent not updated")
	}
}

func TestAddAtAndInsertRelative(t *testing.T) {
	g := NewGroup("g")
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	c := NewRectangle("c", 1, 1)
	d := NewRectangle("d", 1, 1)
	g.Add(a)
	g.Add(d)
	g.AddAt(b, 1)
	g.InsertAfter(c, b)
	want := []string{"a", "b", "c", "d"}
	got := names(g.Children())
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("children = %v, want %v", got, want)
		}
	}
	g.InsertBefore(NewRectangle("z", 1, 1), a)
	if g.ChildAt(0).Name != "z" {
		t.Errorf("first child = %q, want z", g.ChildAt(0).Name)
	}
}

func TestRemove(t *testing.T) {
	g := NewGroup("g")
	c := NewRectangle("c", 1, 1)
	g.Add(c)
	g.Remove(c)
	if g.NumChildren() != 0 || c.Parent() != nil {
		t.Error("child not removed")
	}
}

func TestRemoveAllKeepsChildrenAlive(t *testing.T) {
	g := NewGroup("g")
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	g.Add(a)
	g.Add(b)
	g.RemoveAll()
	if g.NumChildren() != 0 {
		t.Fatal("children left")
	}
	if a.IsDisposed() || b.IsDisposed() {
		t.Error("RemoveAll disposed its children")
	}
	if a.Parent() != nil {
		t.Error("parent not cleared")
	}
}

func TestTreePanics(t *testing.T) {
	g := NewGroup("g")
	child := NewGroup("child")
	g.Add(child)
	leaf := NewRectangle("leaf", 1, 1)

	expectPanic(t, "cycle", func() { child.Add(g) })
	expectPanic(t, "self-add", func() { g.Add(g) })
	expectPanic(t, "nil child", func() { g.Add(nil) })
	expectPanic(t, "non-group parent", func() { leaf.Add(NewRectangle("x", 1, 1)) })
	expectPanic(t, "wrong parent", func() { child.Remove(leaf) })
	expectPanic(t, "index out of range", func() { g.AddAt(NewRectangle("x", 1, 1), 5) })
	expectPanic(t, "batching on a leaf", func() { leaf.SetEnableBatching(true) })
}

// --- Disposal and the weak parent ---

func TestDisposeDetachesSubtree(t *testing.T) {
	root := NewGroup("root")
	g := NewGroup("g")
	c := NewRectangle("c", 1, 1)
	g.Add(c)
	root.Add(g)

	g.Dispose()
	if root.NumChildren() != 0 {
		t.Error("disposed group still attached")
	}
	if !c.IsDisposed() {
		t.Error("child not disposed")
	}
	if c.Parent() != nil {
		t.Error("child still reports a parent")
	}
	g.Dispose() // no-op
}

func TestParentOfDisposedGroupIsNil(t *testing.T) {
	g := NewGroup("g")
	c := NewRectangle("c", 1, 1)
	g.Add(c)
	g.disposed = true
	if c.Parent() != nil {
		t.Error("Parent() returned a disposed group")
	}
}

func TestParentDoesNotKeepGroupAlive(t *testing.T) {
	c := NewRectangle("c", 1, 1)
	func() {
		g := NewGroup("g")
		g.Add(c)
	}()
	for range 5 {
		runtime.GC()
		if c.Parent() == nil {
			return
		}
	}
	t.Error("parent still reachable through child")
}

// --- Deferred changes ---

func TestAddDuringUpdateIsDeferred(t *testing.T) {
	s, _ := newTestScene()
	g := NewGroup("g")
	c := NewRectangle("c", 1, 1)
	g.Add(c)
	s.Root().Add(g)

	var pendingDuring int
	added := NewRectangle("added", 1, 1)
	c.OnUpdate = func(float64) {
		if added.Parent() == nil {
			g.Add(added)
			pendingDuring = s.PendingChanges()
		}
	}
	s.Step(0)

	if pendingDuring != 1 {
		t.Errorf("pending during update = %d, want 1", pendingDuring)
	}
	if s.PendingChanges() != 0 {
		t.Errorf("pending after update = %d, want 0", s.PendingChanges())
	}
	if g.NumChildren() != 2 || added.Parent() != g {
		t.Errorf("deferred add not applied: %v", names(g.Children()))
	}
}

func TestRemoveSelfDuringUpdate(t *testing.T) {
	s, _ := newTestScene()
	g := NewGroup("g")
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	g.Add(a)
	g.Add(b)
	s.Root().Add(g)

	bRan := false
	a.OnUpdate = func(float64) { a.RemoveFromParent() }
	b.OnUpdate = func(float64) { bRan = true }
	s.Step(0)

	if !bRan {
		t.Error("sibling skipped after deferred removal")
	}
	if g.NumChildren() != 1 || g.ChildAt(0) != b {
		t.Errorf("children = %v, want [b]", names(g.Children()))
	}
}

func TestDeferredAddDroppedWhenChildDisposed(t *testing.T) {
	s, _ := newTestScene()
	g := NewGroup("g")
	c := NewRectangle("c", 1, 1)
	g.Add(c)
	s.Root().Add(g)

	late := NewRectangle("late", 1, 1)
	c.OnUpdate = func(float64) {
		g.Add(late)
		late.disposed = true
		c.OnUpdate = nil
	}
	s.Step(0)
	if g.NumChildren() != 1 {
		t.Errorf("disposed child was added: %v", names(g.Children()))
	}
}

// reparentScene builds root=[first, second] with x inside a. b sits at
// (100, 0) so x's world position tells which parent transformed it.
func reparentScene(bFirst bool) (s *Scene, a, b, x *Entity) {
	s, _ = newTestScene()
	a = NewGroup("a")
	b = NewGroup("b")
	b.SetPosition(100, 0)
	x = NewRectangle("x", 1, 1)
	a.Add(x)
	if bFirst {
		s.Root().Add(b)
		s.Root().Add(a)
	} else {
		s.Root().Add(a)
		s.Root().Add(b)
	}
	return s, a, b, x
}

func TestReparentIntoUpdatedSibling(t *testing.T) {
	s, _, b, x := reparentScene(true)
	moved := false
	x.OnUpdate = func(float64) {
		if !moved {
			moved = true
			b.Add(x)
		}
	}
	s.Step(0)

	if x.Parent() != b {
		t.Fatal("x not moved into b")
	}
	assertNear(t, "x world x", x.AbsolutePosition().X, 100)
}

func TestReparentIntoPendingSibling(t *testing.T) {
	s, _, b, x := reparentScene(false)
	calls := 0
	x.OnUpdate = func(float64) {
		calls++
		if calls == 1 {
			b.Add(x)
		}
	}
	x.SetTouchEnabled(true)
	x.AddTouchListener(func(*Entity, Touch) {})
	s.Step(0)

	if calls != 1 {
		t.Errorf("OnUpdate ran %d times in one step, want 1", calls)
	}
	if n := s.Stats().Touchables; n != 1 {
		t.Errorf("touchables = %d, want 1", n)
	}
	if x.Parent() != b {
		t.Fatal("x not moved into b")
	}
	assertNear(t, "x world x", x.AbsolutePosition().X, 100)
}

func TestRemoveFromFinishedGroupDuringUpdateIsDeferred(t *testing.T) {
	s, a, b, x := reparentScene(false)
	var pendingDuring int
	b.OnUpdate = func(float64) {
		if x.Parent() == a {
			a.Remove(x)
			pendingDuring = s.PendingChanges()
		}
	}
	s.Step(0)

	if pendingDuring != 1 {
		t.Errorf("pending during update = %d, want 1", pendingDuring)
	}
	if a.NumChildren() != 0 {
		t.Errorf("a children = %v, want none", names(a.Children()))
	}
}

// --- Queries ---

func TestFindByNameAndTag(t *testing.T) {
	root := NewGroup("root")
	g := NewGroup("g")
	a := NewRectangle("a", 1, 1)
	a.Tag = "enemy"
	b := NewRectangle("b", 1, 1)
	b.Tag = "enemy"
	g.Add(a)
	root.Add(g)
	root.Add(b)

	if root.FindByName("a") != a {
		t.Error("FindByName did not find nested child")
	}
	if root.FindByName("missing") != nil {
		t.Error("FindByName found a missing name")
	}
	got := root.FindByTag("enemy")
	if len(got) != 2 || got[0] != a || got[1] != b {
		t.Errorf("FindByTag = %v, want [a b]", names(got))
	}
}

func TestZIndexOrder(t *testing.T) {
	s, _ := newTestScene()
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	c := NewRectangle("c", 1, 1)
	s.Root().Add(a)
	s.Root().Add(b)
	s.Root().Add(c)
	a.SetZIndex(2)
	c.SetZIndex(-1)
	s.Step(0)

	got := names(s.Root().drawOrder())
	want := []string{"c", "b", "a"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("draw order = %v, want %v", got, want)
		}
	}
	// Insertion order is untouched.
	if s.Root().ChildAt(0) != a {
		t.Error("SetZIndex reordered Children()")
	}
}

func TestUnsortedUntilNextUpdate(t *testing.T) {
	s, _ := newTestScene()
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	s.Root().Add(a)
	s.Root().Add(b)
	s.Step(0)
	a.SetZIndex(5)
	if s.Root().drawOrder()[0] != a {
		t.Error("order changed before the next update")
	}
	s.Step(0)
	if s.Root().drawOrder()[1] != a {
		t.Error("order not rebuilt on the next update")
	}
}
