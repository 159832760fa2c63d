package birch

import (
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Tween animates up to four values of an entity simultaneously, writing them
// through the entity's setters so dirty flags propagate as usual. Create one
// with TweenPosition, TweenScale, TweenRotation, TweenColor or TweenAlpha and
// either start it with Entity.RunTween or advance it yourself with Update.
type Tween struct {
	tweens [4]*gween.Tween
	count  int
	apply  func(v [4]float64)
	target *Entity

	// OnComplete runs once, after the final values are applied.
	OnComplete func()
	Done       bool
}

func newTween(target *Entity, from, to []float64, duration float64, fn ease.TweenFunc, apply func([4]float64)) *Tween {
	if fn == nil {
		fn = ease.Linear
	}
	t := &Tween{count: len(from), target: target, apply: apply}
	for i := range from {
		t.tweens[i] = gween.New(float32(from[i]), float32(to[i]), float32(duration), fn)
	}
	return t
}

// Update advances the tween by dt seconds and applies the new values. A tween
// whose target has been disposed finishes without writing.
func (t *Tween) Update(dt float64) {
	if t.Done {
		return
	}
	if t.target != nil && t.target.disposed {
		t.Done = true
		return
	}
	var vals [4]float64
	all := true
	for i := 0; i < t.count; i++ {
		v, finished := t.tweens[i].Update(float32(dt))
		vals[i] = float64(v)
		if !finished {
			all = false
		}
	}
	t.apply(vals)
	if all {
		t.Done = true
		if t.OnComplete != nil {
			t.OnComplete()
		}
	}
}

// TweenPosition animates the entity's position to (toX, toY).
func TweenPosition(e *Entity, toX, toY, duration float64, fn ease.TweenFunc) *Tween {
	return newTween(e, []float64{e.position.X, e.position.Y}, []float64{toX, toY}, duration, fn,
		func(v [4]float64) { e.SetPosition(v[0], v[1]) })
}

// TweenScale animates the entity's scale to (toSX, toSY).
func TweenScale(e *Entity, toSX, toSY, duration float64, fn ease.TweenFunc) *Tween {
	return newTween(e, []float64{e.scale.X, e.scale.Y}, []float64{toSX, toSY}, duration, fn,
		func(v [4]float64) { e.SetScale(v[0], v[1]) })
}

// TweenRotation animates the entity's rotation, in radians.
func TweenRotation(e *Entity, to, duration float64, fn ease.TweenFunc) *Tween {
	return newTween(e, []float64{e.rotation}, []float64{to}, duration, fn,
		func(v [4]float64) { e.SetRotation(v[0]) })
}

// TweenColor animates all four channels of the entity's color.
func TweenColor(e *Entity, to Color, duration float64, fn ease.TweenFunc) *Tween {
	c := e.color
	return newTween(e, []float64{c.R, c.G, c.B, c.A}, []float64{to.R, to.G, to.B, to.A}, duration, fn,
		func(v [4]float64) { e.SetColor(Color{v[0], v[1], v[2], v[3]}) })
}

// TweenAlpha animates the entity's alpha.
func TweenAlpha(e *Entity, to, duration float64, fn ease.TweenFunc) *Tween {
	return newTween(e, []float64{e.color.A}, []float64{to}, duration, fn,
		func(v [4]float64) { e.SetAlpha(v[0]) })
}

// RunTween attaches t to the entity. It advances at the start of every
// update of the entity and is dropped once done.
func (e *Entity) RunTween(t *Tween) {
	if t == nil || t.Done {
		return
	}
	e.tweens = append(e.tweens, t)
}

// CancelTween stops t without applying further values.
func (e *Entity) CancelTween(t *Tween) {
	for i, x := range e.tweens {
		if x == t {
			e.tweens = append(e.tweens[:i], e.tweens[i+1:]...)
			t.Done = true
			return
		}
	}
}

// CancelAllTweens stops every tween attached to the entity.
func (e *Entity) CancelAllTweens() {
	for _, t := range e.tweens {
		t.Done = true
	}
	e.tweens = e.tweens[:0]
}

// NumTweens returns the number of running tweens.
func (e *Entity) NumTweens() int { return len(e.tweens) }

func (e *Entity) updateTweens(dt float64) {
	// OnComplete may start or cancel tweens; iterate over a snapshot.
	running := append([]*Tween(nil), e.tweens...)
	for _, t := range running {
		t.Update(dt)
	}
	n := 0
	for _, t := range e.tweens {
		if !t.Done {
			e.tweens[n] = t
			n++
		}
	}
	clear(e.tweens[n:])
	e.tweens = e.tweens[:n]
}
