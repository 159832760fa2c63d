package birch

// AnimationLoop selects what a frame animation does at the end of its range.
type AnimationLoop uint8

const (
	LoopNone     AnimationLoop = iota // stop on the last frame
	LoopRepeat                        // restart from the first frame
	LoopPingPong                      // reverse direction at either end
)

// frameAnimation is the frame grid and playback state of an animated sprite.
type frameAnimation struct {
	sheet     Rect // region of the texture holding the frames
	frameSize Size
	margin    int
	frames    []Vec2 // top-left of each frame, relative to sheet
	frame     int

	playing      bool
	timePerFrame float64
	elapsed      float64
	first, last  int
	dir          int
	loop         AnimationLoop
	loopCount    int
	loops        int
	onFinish     func(*Entity)
}

// NewAnimatedSprite creates a sprite that shows one frame of a grid laid out
// row by row inside sheet. margin is the gap between frames in pixels. A
// frameCount of 0 uses every frame that fits. The sprite's size is one frame.
func NewAnimatedSprite(name string, tex *Texture, sheet Rect, frameSize Size, frameCount, margin int) *Entity {
	e := newEntity(name, EntityTypeAnimatedSprite)
	if tex != nil {
		e.filename = tex.Name
	}
	e.anim = &frameAnimation{sheet: sheet, frameSize: frameSize, margin: margin}
	e.anim.layout(frameCount)
	e.SetSize(frameSize.Width, frameSize.Height)
	e.SetTexture(tex)
	e.SelectFrame(0)
	return e
}

// layout computes the frame origins. The grid is always at least one frame.
func (a *frameAnimation) layout(count int) {
	m := float64(a.margin)
	cols, rows := 0, 0
	if a.frameSize.Width > 0 && a.frameSize.Height > 0 {
		cols = int((a.sheet.Width + m) / (a.frameSize.Width + m))
		rows = int((a.sheet.Height + m) / (a.frameSize.Height + m))
	}
	if count <= 0 || count > cols*rows {
		count = cols * rows
	}
	a.frames = a.frames[:0]
	for i := range count {
		c, r := i%cols, i/cols
		a.frames = append(a.frames, Vec2{
			X: float64(c) * (a.frameSize.Width + m),
			Y: float64(r) * (a.frameSize.Height + m),
		})
	}
	if len(a.frames) == 0 {
		a.frames = append(a.frames, Vec2{})
	}
}

// FrameCount returns the number of frames of an animated sprite.
func (e *Entity) FrameCount() int {
	if e.anim == nil {
		return 0
	}
	return len(e.anim.frames)
}

// SetFrameCount limits an animated sprite to its first n frames, or every
// frame that fits when n is 0.
func (e *Entity) SetFrameCount(n int) {
	e.mustAnimate("SetFrameCount")
	e.anim.layout(n)
	e.SelectFrame(e.anim.frame)
}

// FrameSize returns the size of one frame.
func (e *Entity) FrameSize() Size {
	if e.anim == nil {
		return Size{}
	}
	return e.anim.frameSize
}

// FrameMargin returns the gap between frames in pixels.
func (e *Entity) FrameMargin() int {
	if e.anim == nil {
		return 0
	}
	return e.anim.margin
}

// SheetRect returns the region of the texture holding the frames.
func (e *Entity) SheetRect() Rect {
	if e.anim == nil {
		return Rect{}
	}
	return e.anim.sheet
}

// CurrentFrame returns the index of the frame being shown.
func (e *Entity) CurrentFrame() int {
	if e.anim == nil {
		return 0
	}
	return e.anim.frame
}

// SelectFrame shows frame i, wrapped into the frame range. It does not stop
// a running animation.
func (e *Entity) SelectFrame(i int) {
	e.mustAnimate("SelectFrame")
	a := e.anim
	n := len(a.frames)
	i = ((i % n) + n) % n
	a.frame = i
	p := a.frames[i]
	e.srcRect = Rect{
		X:      a.sheet.X + p.X,
		Y:      a.sheet.Y + p.Y,
		Width:  a.frameSize.Width,
		Height: a.frameSize.Height,
	}
	e.dirty |= DirtyTexCoords
}

// StartAnimation plays every frame in order, each shown for timePerFrame
// seconds. loopCount bounds the number of passes when looping; 0 loops
// forever.
func (e *Entity) StartAnimation(timePerFrame float64, loop AnimationLoop, loopCount int) {
	e.StartAnimationRange(0, e.FrameCount()-1, timePerFrame, loop, loopCount)
}

// StartAnimationRange plays frames first through last. A range of fewer than
// two frames does nothing.
func (e *Entity) StartAnimationRange(first, last int, timePerFrame float64, loop AnimationLoop, loopCount int) {
	e.mustAnimate("StartAnimation")
	a := e.anim
	first = max(first, 0)
	last = min(last, len(a.frames)-1)
	if last <= first || timePerFrame <= 0 {
		return
	}
	a.first, a.last = first, last
	a.timePerFrame = timePerFrame
	a.loop = loop
	a.loopCount = loopCount
	a.loops = 0
	a.elapsed = 0
	a.dir = 1
	a.playing = true
	e.SelectFrame(first)
}

// StopAnimation stops playback on the current frame and runs the finish
// callback if one is set.
func (e *Entity) StopAnimation() {
	if e.anim == nil || !e.anim.playing {
		return
	}
	e.anim.playing = false
	if e.anim.onFinish != nil {
		e.anim.onFinish(e)
	}
}

// Animating reports whether a frame animation is playing.
func (e *Entity) Animating() bool { return e.anim != nil && e.anim.playing }

// SetOnAnimationFinish sets the callback run when a frame animation stops.
func (e *Entity) SetOnAnimationFinish(fn func(*Entity)) {
	e.mustAnimate("SetOnAnimationFinish")
	e.anim.onFinish = fn
}

func (e *Entity) mustAnimate(op string) {
	if e.anim == nil {
		panic("birch: " + op + " requires an animated sprite")
	}
}

// advanceFrames moves playback forward by delta seconds.
func (e *Entity) advanceFrames(delta float64) {
	a := e.anim
	a.elapsed += delta
	for a.playing && a.elapsed >= a.timePerFrame {
		a.elapsed -= a.timePerFrame
		next := a.frame + a.dir
		switch {
		case next > a.last && a.loop == LoopPingPong:
			a.dir = -1
			next = a.frame - 1
		case next > a.last:
			next = a.first
		case next < a.first:
			a.dir = 1
			next = a.frame + 1
		}
		e.SelectFrame(next)
		if (a.dir > 0 && next == a.last) || (a.dir < 0 && next == a.first) {
			a.loops++
			if a.loop == LoopNone || (a.loopCount > 0 && a.loops >= a.loopCount) {
				e.StopAnimation()
			}
		}
	}
}
