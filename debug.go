package birch

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// logger receives every diagnostic birch emits. Replace it with SetLogger.
var logger = log.NewWithOptions(os.Stderr, log.Options{
	Prefix:          "birch",
	ReportTimestamp: true,
	TimeFormat:      time.RFC3339,
})

// SetLogger replaces the package logger. A nil logger is ignored.
func SetLogger(l *log.Logger) {
	if l != nil {
		logger = l
	}
}

// Logger returns the package logger.
func Logger() *log.Logger { return logger }

// globalDebug mirrors the most recently set Scene debug flag so that tree
// operations, which have no scene at hand, can run their checks.
var globalDebug bool

// Stats are per-frame counters collected by the scene's device wrapper.
type Stats struct {
	DrawCalls      int
	BufferUploads  int // whole-buffer uploads
	SubUploads     int // partial uploads
	FloatsUp       int // float32 elements uploaded, whole and partial
	TextureUploads int
	Touchables     int
	UpdateTime     time.Duration
	DrawTime       time.Duration
}

// statsDevice counts calls into the wrapped device.
type statsDevice struct {
	Device
	stats *Stats
}

func (d *statsDevice) BufferData(h BufferHandle, kind BufferKind, data []float32) {
	d.stats.BufferUploads++
	d.stats.FloatsUp += len(data)
	d.Device.BufferData(h, kind, data)
}

func (d *statsDevice) BufferSubData(h BufferHandle, kind BufferKind, offset int, data []float32) {
	d.stats.SubUploads++
	d.stats.FloatsUp += len(data)
	d.Device.BufferSubData(h, kind, offset, data)
}

func (d *statsDevice) UploadTexture(tex *Texture) {
	d.stats.TextureUploads++
	d.Device.UploadTexture(tex)
}

func (d *statsDevice) DrawElements(h BufferHandle, cmd DrawCommand) {
	d.stats.DrawCalls++
	d.Device.DrawElements(h, cmd)
}

// logStats writes one frame's counters at debug level.
func (s *Scene) logStats() {
	st := s.stats
	logger.Debug("frame",
		"update", st.UpdateTime, "draw", st.DrawTime,
		"drawCalls", st.DrawCalls, "uploads", st.BufferUploads, "subUploads", st.SubUploads,
		"floats", st.FloatsUp, "textures", st.TextureUploads, "touchables", st.Touchables)
}

// debugCheckDisposed panics with a descriptive message when a disposed entity
// is used in a tree operation. Callers only invoke it in debug mode.
func debugCheckDisposed(e *Entity, op string) {
	if e.disposed {
		panic(fmt.Sprintf("birch debug: %s on disposed entity %q (ID was %d)", op, e.Name, e.ID))
	}
}

const debugMaxTreeDepth = 32

// debugCheckTreeDepth warns if the tree depth exceeds debugMaxTreeDepth.
func debugCheckTreeDepth(e *Entity) {
	depth := 0
	for p := e; p != nil; p = p.parent.Value() {
		depth++
	}
	if depth > debugMaxTreeDepth {
		logger.Warn("tree depth exceeds threshold", "entity", e.Name, "depth", depth, "max", debugMaxTreeDepth)
	}
}

const debugMaxChildCount = 1000

// debugCheckChildCount warns if a group has more than debugMaxChildCount children.
func debugCheckChildCount(e *Entity) {
	if len(e.children) > debugMaxChildCount {
		logger.Warn("group has too many children", "entity", e.Name, "children", len(e.children), "max", debugMaxChildCount)
	}
}
