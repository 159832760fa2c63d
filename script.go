package birch

import (
	"errors"
	"fmt"

	"github.com/pelletier/go-toml/v2"
)

// scriptStep is one action of a touch script.
type scriptStep struct {
	Action  string  `toml:"action"`
	Pointer int     `toml:"pointer"`
	Label   string  `toml:"label"`
	X       float64 `toml:"x"`
	Y       float64 `toml:"y"`
	ToX     float64 `toml:"to_x"`
	ToY     float64 `toml:"to_y"`
	Frames  int     `toml:"frames"`
}

type scriptFile struct {
	Steps []scriptStep `toml:"step"`
}

var errEmptyScript = errors.New("birch: touch script has no steps")

// TouchScript replays scripted touches and screenshots, one step per frame,
// for automated visual testing. Attach it with Scene.SetTouchScript.
//
//	[[step]]
//	action = "tap"
//	x = 100
//	y = 200
//
//	[[step]]
//	action = "wait"
//	frames = 3
//
//	[[step]]
//	action = "screenshot"
//	label = "after-tap"
//
// Actions are tap, down, move, up, drag (x, y to to_x, to_y over frames
// moves), wait and screenshot. pointer selects the touch ID, 0 by default.
type TouchScript struct {
	steps  []scriptStep
	cursor int
	wait   int
	done   bool
}

// ParseTouchScript decodes a TOML touch script. Unknown actions are rejected.
func ParseTouchScript(b []byte) (*TouchScript, error) {
	var f scriptFile
	if err := toml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("birch: parse touch script: %w", err)
	}
	if len(f.Steps) == 0 {
		return nil, errEmptyScript
	}
	for i, st := range f.Steps {
		switch st.Action {
		case "tap", "down", "move", "up", "drag", "wait", "screenshot":
		default:
			return nil, fmt.Errorf("birch: touch script step %d: unknown action %q", i, st.Action)
		}
		if st.Pointer < 0 || st.Pointer >= maxPointers {
			return nil, fmt.Errorf("birch: touch script step %d: pointer %d out of range", i, st.Pointer)
		}
	}
	return &TouchScript{steps: f.Steps}, nil
}

// SetTouchScript attaches a script; it advances at the start of every update.
// A nil script detaches the current one.
func (s *Scene) SetTouchScript(script *TouchScript) {
	s.script = script
}

// Done reports whether every step has run.
func (r *TouchScript) Done() bool { return r.done }

// step runs the next action. Touches it queues are dispatched later in the
// same update.
func (r *TouchScript) step(s *Scene) {
	if r.done {
		return
	}
	if r.wait > 0 {
		r.wait--
		return
	}
	if r.cursor >= len(r.steps) {
		r.done = true
		return
	}
	st := r.steps[r.cursor]
	r.cursor++

	switch st.Action {
	case "tap":
		s.InjectTap(st.Pointer, st.X, st.Y)
	case "down":
		s.InjectTouchDown(st.Pointer, st.X, st.Y)
	case "move":
		s.InjectTouchMove(st.Pointer, st.X, st.Y)
	case "up":
		s.InjectTouchUp(st.Pointer, st.X, st.Y)
	case "drag":
		s.InjectDrag(st.Pointer, st.X, st.Y, st.ToX, st.ToY, max(st.Frames, 1))
	case "wait":
		// This frame counts as one.
		r.wait = max(st.Frames-1, 0)
	case "screenshot":
		s.Screenshot(st.Label)
	}
	logger.Debug("touch script step", "index", r.cursor-1, "action", st.Action)

	if r.cursor >= len(r.steps) && r.wait == 0 {
		r.done = true
	}
}
