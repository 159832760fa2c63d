package birch

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EventStore receives every touch event an entity handles. The ecs package
// provides a Donburi-backed implementation.
type EventStore interface {
	EmitTouch(event TouchEvent)
}

// TouchEvent is a delivered touch, as forwarded to an EventStore.
type TouchEvent struct {
	Phase      TouchPhase
	TouchID    int
	EntityID   uint32
	EntityName string
	X, Y       float64
	LocalX     float64
	LocalY     float64
}

// Scene owns an entity tree and everything needed to update and draw it:
// the device, the texture cache, touch state and the queue of structural
// changes made while the tree was being traversed.
type Scene struct {
	root    *Entity
	config  Config
	device  Device // wraps the user device to count Stats
	raw     Device
	ebiten  *EbitenDevice
	stats   Stats
	frame   uint64
	debug   bool
	pending []pendingChange

	script      *TouchScript
	screenshots []string

	textures *TextureCache
	watcher  *TextureWatcher
	store    EventStore

	// Touch
	touchables  []*Entity
	receivers   [maxPointers][]*Entity
	pointers    [maxPointers]pointerState
	touchMap    [maxPointers]ebiten.TouchID
	touchUsed   [maxPointers]bool
	touchIDs    []ebiten.TouchID
	injectQueue []injectedTouch
}

// NewScene creates a scene with DefaultConfig.
func NewScene() *Scene {
	return NewSceneWithConfig(DefaultConfig())
}

// NewSceneWithConfig creates a scene whose root group is the size of the
// configured window. Asset loading and watching are set up from cfg; a
// watcher that fails to start is logged and skipped.
func NewSceneWithConfig(cfg Config) *Scene {
	cfg = cfg.withDefaults()
	logger.SetLevel(cfg.level())

	s := &Scene{config: cfg, textures: NewTextureCache(nil)}
	s.root = NewGroup("root")
	s.root.SetSize(float64(cfg.Width), float64(cfg.Height))
	s.SetDebugMode(cfg.Debug)

	if cfg.AssetDir != "" {
		s.textures.SetLoader(FSTextureLoader{FS: os.DirFS(cfg.AssetDir)})
		if cfg.WatchAssets {
			w, err := NewTextureWatcher(cfg.AssetDir)
			if err != nil {
				logger.Warn("asset watcher disabled", "dir", cfg.AssetDir, "err", err)
			} else {
				s.watcher = w
			}
		}
	}
	return s
}

// Root returns the scene's root group.
func (s *Scene) Root() *Entity { return s.root }

// Config returns the scene's settings.
func (s *Scene) Config() Config { return s.config }

// Textures returns the scene's texture cache.
func (s *Scene) Textures() *TextureCache { return s.textures }

// SetDevice sets the backend used by Render. Renderers created for a
// previous device are recreated on their next draw.
func (s *Scene) SetDevice(d Device) {
	s.raw = d
	if d == nil {
		s.device = nil
		return
	}
	s.device = &statsDevice{Device: d, stats: &s.stats}
}

// Device returns the device set with SetDevice, or the Ebitengine device
// Draw created.
func (s *Scene) Device() Device { return s.raw }

// SetScreenSize resizes the root group.
func (s *Scene) SetScreenSize(w, h float64) {
	s.root.SetSize(w, h)
}

// SetEventStore sets the optional ECS bridge.
func (s *Scene) SetEventStore(store EventStore) { s.store = store }

// SetDebugMode enables or disables debug mode. When enabled, disposed-entity
// access panics, tree depth and child count warnings are logged, and
// per-frame stats are logged at debug level.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// Stats returns the counters of the last frame.
func (s *Scene) Stats() Stats { return s.stats }

// Frame returns the number of updates run so far.
func (s *Scene) Frame() uint64 { return s.frame }

// Update advances the scene by one Ebitengine tick and dispatches mouse and
// touch input.
func (s *Scene) Update() {
	s.update(1/float64(ebiten.TPS()), true)
}

// Step advances the scene by delta seconds without polling Ebitengine input.
// Injected touches are still dispatched.
func (s *Scene) Step(delta float64) {
	s.update(delta, false)
}

func (s *Scene) update(delta float64, poll bool) {
	t0 := time.Now()
	s.stats = Stats{}
	s.frame++
	s.drainWatcher()

	s.touchables = s.touchables[:0]
	s.root.updateFrame(s, delta, s.rootState(), false)
	s.stats.Touchables = len(s.touchables)

	changed := s.applyPending()
	if s.script != nil {
		s.script.step(s)
	}
	before := len(s.injectQueue)
	if poll {
		s.pollInput()
	}
	s.processInjected()
	// Listeners and deferred changes may have left the tree dirty; settle it
	// so this frame draws their result.
	if changed || before > 0 || poll {
		s.settle()
	}
	s.stats.UpdateTime = time.Since(t0)
}

func (s *Scene) rootState() parentState {
	return parentState{
		matrix:  identityTransform,
		color:   ColorWhite,
		size:    s.root.size,
		visible: true,
	}
}

// settle runs an update pass without callbacks, tweens or touch
// registration, so changes made after the main pass reach the draw.
func (s *Scene) settle() {
	s.root.updateFrame(s, 0, s.rootState(), true)
	s.applyPending()
}

func (s *Scene) deferChange(c pendingChange) {
	s.pending = append(s.pending, c)
}

// PendingChanges returns the number of structural changes waiting to be
// applied.
func (s *Scene) PendingChanges() int { return len(s.pending) }

// applyPending applies queued structural changes in the order they were
// made. Changes that became invalid in the meantime are dropped.
func (s *Scene) applyPending() bool {
	if len(s.pending) == 0 {
		return false
	}
	for _, c := range s.pending {
		g := c.group
		if g.disposed {
			continue
		}
		switch c.op {
		case changeAdd, changeInsert:
			if c.child.disposed || isAncestor(c.child, g) {
				logger.Warn("dropped deferred add", "group", g.Name, "child", c.child.Name)
				continue
			}
			idx := len(g.children)
			if c.op == changeInsert {
				idx = c.index
				if c.before != nil {
					if i := g.indexOf(c.before); i >= 0 {
						idx = i + c.index
					} else {
						idx = len(g.children)
					}
				}
			}
			g.insertChild(c.child, min(max(idx, 0), len(g.children)))
		case changeRemove:
			if c.child.parent.Value() == g {
				g.removeChild(c.child)
			}
		case changeRemoveAll:
			g.removeAllChildren()
		}
	}
	clear(s.pending)
	s.pending = s.pending[:0]
	return true
}

// Render draws the tree through the scene's device.
func (s *Scene) Render() {
	if s.device == nil {
		logger.Warn("render skipped: no device")
		return
	}
	t0 := time.Now()
	s.root.drawFrame(s)
	s.stats.DrawTime = time.Since(t0)
	if s.debug {
		s.logStats()
	}
}

// Draw renders the scene into screen. If no device was set, an Ebitengine
// device is created on first use.
func (s *Scene) Draw(screen *ebiten.Image) {
	if s.raw == nil {
		d, err := NewEbitenDevice()
		if err != nil {
			logger.Error("cannot create device", "err", err)
			return
		}
		s.ebiten = d
		s.SetDevice(d)
	}
	if s.ebiten != nil {
		s.ebiten.SetTarget(screen)
	}
	screen.Fill(clearColor(s.config.ClearColor))
	s.Render()
	s.flushScreenshots(screen)
}

func clearColor(rgb uint32) color.RGBA {
	return color.RGBA{R: uint8(rgb >> 16), G: uint8(rgb >> 8), B: uint8(rgb), A: 0xff}
}

// drainWatcher reloads textures whose files changed since the last frame.
func (s *Scene) drainWatcher() {
	if s.watcher == nil {
		return
	}
	for _, name := range s.watcher.Drain() {
		if err := s.textures.Reload(name); err != nil {
			logger.Warn("texture reload failed", "texture", name, "err", err)
			continue
		}
		logger.Debug("texture reloaded", "texture", name)
	}
}

// Close stops the asset watcher and disposes the tree.
func (s *Scene) Close() error {
	s.root.Dispose()
	if s.watcher != nil {
		if err := s.watcher.Close(); err != nil {
			return fmt.Errorf("birch: close watcher: %w", err)
		}
	}
	return nil
}
