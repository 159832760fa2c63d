package birch

import (
	"bytes"
	"fmt"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

// captureLog routes the package logger into a buffer for the rest of the test.
func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := Logger()
	l := log.New(&buf)
	l.SetLevel(log.DebugLevel)
	SetLogger(l)
	t.Cleanup(func() { SetLogger(prev) })
	return &buf
}

func debugScene(t *testing.T) (*Scene, *recordDevice) {
	s, d := newTestScene()
	s.SetDebugMode(true)
	t.Cleanup(func() { s.SetDebugMode(false) })
	return s, d
}

func expectDisposedPanic(t *testing.T, fn func()) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic, got none")
		}
		if msg := fmt.Sprint(r); !strings.Contains(msg, "disposed") {
			t.Errorf("panic message should mention 'disposed', got: %s", msg)
		}
	}()
	fn()
}

func TestDebugModeDisposedChildPanics(t *testing.T) {
	s, _ := debugScene(t)
	child := NewRectangle("child", 1, 1)
	child.Dispose()
	expectDisposedPanic(t, func() { s.Root().Add(child) })
}

func TestDebugModeDisposedParentPanics(t *testing.T) {
	debugScene(t)
	parent := NewGroup("parent")
	parent.Dispose()
	expectDisposedPanic(t, func() { parent.Add(NewRectangle("child", 1, 1)) })
}

func TestReleaseModeDisposedEntityNoPanic(t *testing.T) {
	s, _ := newTestScene()
	child := NewRectangle("child", 1, 1)
	child.Dispose()
	s.Root().Add(child)
	// Disposed children are skipped by the update.
	s.Step(0)
	s.Render()
}

func TestDebugModeTreeDepthWarning(t *testing.T) {
	buf := captureLog(t)
	s, _ := debugScene(t)
	current := s.Root()
	for i := 0; i < debugMaxTreeDepth+2; i++ {
		child := NewGroup(fmt.Sprintf("depth_%d", i))
		current.Add(child)
		current = child
	}
	if !strings.Contains(buf.String(), "tree depth exceeds threshold") {
		t.Errorf("expected tree depth warning, got: %q", buf.String())
	}
}

func TestDebugModeChildCountWarning(t *testing.T) {
	buf := captureLog(t)
	s, _ := debugScene(t)
	g := NewGroup("many")
	s.Root().Add(g)
	for i := 0; i < debugMaxChildCount+1; i++ {
		g.Add(NewRectangle("c", 1, 1))
	}
	out := buf.String()
	if !strings.Contains(out, "too many children") || !strings.Contains(out, "many") {
		t.Errorf("expected child count warning, got: %q", out)
	}
}

func TestDebugModeLogsFrameStats(t *testing.T) {
	s, _ := debugScene(t)
	buf := captureLog(t)
	s.Root().Add(NewRectangle("r", 1, 1))
	frame(s)
	if out := buf.String(); !strings.Contains(out, "drawCalls=1") {
		t.Errorf("expected frame stats, got: %q", out)
	}
}

func TestSetLoggerNilIgnored(t *testing.T) {
	prev := Logger()
	SetLogger(nil)
	if Logger() != prev {
		t.Error("nil logger replaced the package logger")
	}
}

func TestRenderWithoutDeviceWarns(t *testing.T) {
	buf := captureLog(t)
	s := NewScene()
	s.Step(0)
	s.Render()
	if !strings.Contains(buf.String(), "no device") {
		t.Errorf("expected a warning, got: %q", buf.String())
	}
}
