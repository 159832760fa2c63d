package birch

import "testing"

func TestNewScene(t *testing.T) {
	s := NewScene()
	root := s.Root()
	if root == nil {
		t.Fatal("root should not be nil")
	}
	if root.Name != "root" {
		t.Errorf("root.Name = %q, want %q", root.Name, "root")
	}
	if root.Type != EntityTypeGroup {
		t.Errorf("root.Type = %v, want EntityTypeGroup", root.Type)
	}
	if got := root.Size(); got != (Size{Width: 640, Height: 480}) {
		t.Errorf("root size = %+v, want 640x480", got)
	}
	if s.Textures() == nil {
		t.Error("Textures() should not be nil")
	}
	if s.Device() != nil {
		t.Error("a new scene should have no device")
	}
	if s.Config().Title != "birch" {
		t.Errorf("Config().Title = %q, want default", s.Config().Title)
	}
}

func TestSceneSetDevice(t *testing.T) {
	s := NewScene()
	d := newRecordDevice()
	s.SetDevice(d)
	if s.Device() != d {
		t.Error("Device() should return the device passed to SetDevice")
	}
	s.SetDevice(nil)
	if s.Device() != nil {
		t.Error("SetDevice(nil) should clear the device")
	}
}

func TestSceneSetScreenSize(t *testing.T) {
	s, _ := newTestScene()
	r := NewRectangle("half", 0.5, 0.5)
	r.SetSizeRatio(RatioBoth)
	s.Root().Add(r)
	frame(s)

	s.SetScreenSize(200, 100)
	frame(s)
	if got := r.resolved; got.Width != 100 || got.Height != 50 {
		t.Errorf("resolved size = %+v, want 100x50", got)
	}
}

func TestSceneSetEventStore(t *testing.T) {
	s := NewScene()
	store := &memoryStore{}
	s.SetEventStore(store)
	if s.store != store {
		t.Error("store should be set")
	}
	s.SetEventStore(nil)
	if s.store != nil {
		t.Error("store should be nil")
	}
}

func TestSceneSetDebugMode(t *testing.T) {
	s := NewScene()
	t.Cleanup(func() { s.SetDebugMode(false) })
	s.SetDebugMode(true)
	if !s.debug || !globalDebug {
		t.Error("debug should be true")
	}
	s.SetDebugMode(false)
	if s.debug || globalDebug {
		t.Error("debug should be false")
	}
}

func TestSceneFrameCounter(t *testing.T) {
	s := NewScene()
	for range 3 {
		s.Step(1.0 / 60)
	}
	if s.Frame() != 3 {
		t.Errorf("Frame() = %d, want 3", s.Frame())
	}
}

func TestSceneStatsResetEachFrame(t *testing.T) {
	s, _ := newTestScene()
	s.Root().Add(NewRectangle("r", 10, 10))
	frame(s)
	if got := s.Stats().DrawCalls; got != 1 {
		t.Fatalf("DrawCalls = %d, want 1", got)
	}
	s.Step(1.0 / 60)
	if got := s.Stats().DrawCalls; got != 0 {
		t.Errorf("DrawCalls after update = %d, want 0", got)
	}
}

func TestSceneCloseDisposesTree(t *testing.T) {
	s, d := newTestScene()
	r := NewRectangle("r", 10, 10)
	s.Root().Add(r)
	frame(s)

	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if !s.Root().IsDisposed() || !r.IsDisposed() {
		t.Error("Close should dispose the whole tree")
	}
	if len(d.deleted) != 1 {
		t.Errorf("deleted buffers = %d, want 1", len(d.deleted))
	}
}

func TestDeferredInsertBeforeRemovedAnchorAppends(t *testing.T) {
	s := NewScene()
	g := NewGroup("g")
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	c := NewRectangle("c", 1, 1)
	g.Add(a)
	g.Add(b)
	s.Root().Add(g)

	once := false
	a.OnUpdate = func(float64) {
		if once {
			return
		}
		once = true
		g.Remove(a)
		g.InsertBefore(c, a)
	}
	s.Step(0)

	if got := names(g.Children()); !equalNames(got, []string{"b", "c"}) {
		t.Errorf("children = %v, want [b c]", got)
	}
}

func TestDeferredChangesApplyInOrder(t *testing.T) {
	s := NewScene()
	g := NewGroup("g")
	a := NewRectangle("a", 1, 1)
	b := NewRectangle("b", 1, 1)
	g.Add(a)
	s.Root().Add(g)

	once := false
	a.OnUpdate = func(float64) {
		if once {
			return
		}
		once = true
		g.Add(b)
		g.RemoveAll()
		g.Add(a)
	}
	s.Step(0)

	if got := names(g.Children()); !equalNames(got, []string{"a"}) {
		t.Errorf("children = %v, want [a]", got)
	}
	if b.Parent() != nil {
		t.Error("b should have been removed by the later RemoveAll")
	}
}
