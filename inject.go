package birch

// injectedTouch is a synthetic pointer event queued by the Inject methods.
type injectedTouch struct {
	id      int
	x, y    float64
	pressed bool
}

// InjectTouchDown queues a press of pointer id at world (x, y). Queued events
// are processed in order by the next Step or Update, after the tree update.
func (s *Scene) InjectTouchDown(id int, x, y float64) {
	s.injectQueue = append(s.injectQueue, injectedTouch{id: id, x: x, y: y, pressed: true})
}

// InjectTouchMove queues a move of a pressed pointer.
func (s *Scene) InjectTouchMove(id int, x, y float64) {
	s.injectQueue = append(s.injectQueue, injectedTouch{id: id, x: x, y: y, pressed: true})
}

// InjectTouchUp queues the release of pointer id at (x, y).
func (s *Scene) InjectTouchUp(id int, x, y float64) {
	s.injectQueue = append(s.injectQueue, injectedTouch{id: id, x: x, y: y, pressed: false})
}

// InjectTap queues a press followed by a release at the same point.
func (s *Scene) InjectTap(id int, x, y float64) {
	s.InjectTouchDown(id, x, y)
	s.InjectTouchUp(id, x, y)
}

// InjectDrag queues a press at (fromX, fromY), steps evenly spaced moves,
// and a release at (toX, toY).
func (s *Scene) InjectDrag(id int, fromX, fromY, toX, toY float64, steps int) {
	s.InjectTouchDown(id, fromX, fromY)
	for i := 1; i <= steps; i++ {
		t := float64(i) / float64(steps)
		s.InjectTouchMove(id, fromX+(toX-fromX)*t, fromY+(toY-fromY)*t)
	}
	s.InjectTouchUp(id, toX, toY)
}

// processInjected drains the inject queue.
func (s *Scene) processInjected() {
	for _, ev := range s.injectQueue {
		if ev.id < 0 || ev.id >= maxPointers {
			continue
		}
		s.processPointer(ev.id, ev.x, ev.y, ev.pressed)
	}
	s.injectQueue = s.injectQueue[:0]
}
