// Package birch is a retained-mode 2D scene graph for [Ebitengine] built
// around cheap re-rendering: entities track what changed since the last frame
// and only the affected GPU buffers are re-uploaded.
//
// Birch provides the entity tree, transform and color inheritance, size and
// anchor layout, batched drawing through texture atlases, touch dispatch,
// colliders, text labels, alignment groups, and tweens.
//
// # Quick start
//
// The simplest way to get started is [Run], which creates a window and game
// loop sized from the scene's [Config]:
//
//	scene := birch.NewScene()
//	// ... add entities ...
//	birch.Run(scene)
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly:
//
//	type Game struct{ scene *birch.Scene }
//
//	func (g *Game) Update() error              { g.scene.Update(); return nil }
//	func (g *Game) Draw(s *ebiten.Image)       { g.scene.Draw(s) }
//	func (g *Game) Layout(w, h int) (int, int) { return 640, 480 }
//
// Settings come from a TOML file through [LoadConfig], or from
// [DefaultConfig] edited in code.
//
// # Entity tree
//
// Every visual element is an [Entity]. Entities form a tree rooted at
// [Scene.Root]; only groups have children. Children inherit their parent's
// transform, color and visibility.
//
// Create entities with typed constructors: [NewGroup], [NewBatchedGroup],
// [NewHorizontalGroup], [NewVerticalGroup], [NewRectangle],
// [NewRoundedRectangle], [NewCircle], [NewSprite], and [NewLabel].
//
//	ui := birch.NewGroup("ui")
//	scene.Root().Add(ui)
//
//	box := birch.NewRectangle("box", 80, 40)
//	box.SetPosition(100, 50)
//	box.SetColor(birch.ColorFromRGB(0x4db3ff, 1))
//	ui.Add(box)
//
// Setters mark the entity dirty; world transforms, colliders and vertex data
// are recomputed on the next update. Tree changes made from an OnUpdate
// callback or a touch listener are deferred until the traversal finishes.
//
// # Batching
//
// A batching group draws its whole subtree with one draw call. Child
// textures are packed into a [TextureAtlas], vertices are baked in world
// space, and color or texture coordinate changes upload only the affected
// ranges.
//
// # Touch
//
// Entities opt in with [Entity.SetTouchEnabled] and [Entity.AddTouchListener].
// A touch begins on every entity under the pointer, front to back, until one
// that swallows touches; moves and the end go to the entities that saw the
// begin. Touches can be injected for tests and replayed from a TOML
// [TouchScript]. The [ecs] subpackage forwards handled touches into a
// [Donburi] world.
//
// Tweens are built on [gween].
//
// [Ebitengine]: https://ebitengine.org
// [gween]: https://github.com/tanema/gween
// [Donburi]: https://github.com/yohamta/donburi
// [ecs]: https://pkg.go.dev/github.com/phanxgames/birch/ecs
package birch
