package birch

// parentState is what a group hands each child during updateFrame.
type parentState struct {
	matrix  [6]float64
	color   Color
	size    Size
	dirty   DirtyFlag
	visible bool
	inBatch bool
}

// updateFrame runs callbacks and tweens, merges the parent's dirty flags,
// recomputes the local and world matrices and the composed color where
// needed, and registers the entity as a touch candidate. Groups then update
// their children. settle is set on the extra pass that follows structural
// changes; it skips callbacks, tweens and touch registration.
func (e *Entity) updateFrame(s *Scene, delta float64, p parentState, settle bool) {
	if !settle {
		if e.OnUpdate != nil {
			e.OnUpdate(delta)
		}
		if len(e.tweens) > 0 {
			e.updateTweens(delta)
		}
		if e.anim != nil && e.anim.playing {
			e.advanceFrames(delta)
		}
	}
	if e.texture != nil && e.texture.version != e.textureVersion {
		e.textureVersion = e.texture.version
		e.dirty |= DirtyTexture | DirtyTexCoords
	}

	merged := e.dirty | p.dirty
	if merged&(DirtySize|DirtyAnchor) != 0 {
		e.resolved = e.resolveSize(p.size)
		e.offset = Vec2{p.size.Width * e.anchor.X, p.size.Height * e.anchor.Y}
	}
	if merged&(DirtyVertex|DirtySize|DirtyAnchor) != 0 {
		e.local = computeLocalMatrix(&e.transform)
		e.world = multiplyAffine(p.matrix, e.local)
		e.colliderValid = false
	}
	if merged&DirtyColor != 0 {
		e.worldColor = e.color.Mul(p.color)
	}
	// Pending flags become this frame's flags; drawFrame clears them once bound.
	e.frameDirty |= merged
	e.dirty = 0
	e.visible = e.active && p.visible
	e.inBatch = p.inBatch

	if !settle && e.visible && e.touchEnabled && (e.swallowTouches || len(e.listeners) > 0) {
		s.pushTouchable(e)
	}

	if e.Type.IsGroup() {
		e.updateChildren(s, delta, merged, settle)
	}
}

// updateChildren sorts if needed and propagates the frame to every child in
// draw order, collecting the children's dirty flags into dirtyChildren.
func (e *Entity) updateChildren(s *Scene, delta float64, merged DirtyFlag, settle bool) {
	if e.sortOrderDirty {
		e.rebuildSortedChildren()
	}
	cp := parentState{
		matrix:  e.world,
		color:   e.worldColor,
		size:    e.resolved,
		dirty:   merged,
		visible: e.visible,
		inBatch: e.inBatch || e.batching,
	}
	horizontal := e.Type == EntityTypeHorizontalGroup
	vertical := e.Type == EntityTypeVerticalGroup
	var offset Vec2
	var extent Size
	var children DirtyFlag

	e.updating = s
	for _, c := range e.sorted {
		if c.disposed {
			continue
		}
		if horizontal || vertical {
			cp.matrix = translateAffine(e.world, offset.X, offset.Y)
		}
		c.updateFrame(s, delta, cp, settle)
		children |= c.frameDirty | c.dirtyChildren

		if horizontal || vertical {
			// A moved or resized child shifts every later sibling.
			if c.frameDirty&(DirtyVertex|DirtySize) != 0 {
				cp.dirty |= DirtyVertex
			}
			w := c.resolved.Width * abs(c.scale.X)
			h := c.resolved.Height * abs(c.scale.Y)
			if horizontal {
				offset.X += c.position.X + c.offset.X + w + e.padding
				extent.Width = offset.X - e.padding
				extent.Height = max(extent.Height, c.position.Y+c.offset.Y+h)
			} else {
				offset.Y += c.position.Y + c.offset.Y + h + e.padding
				extent.Height = offset.Y - e.padding
				extent.Width = max(extent.Width, c.position.X+c.offset.X+w)
			}
		}
	}
	e.updating = nil
	e.dirtyChildren |= children
	if horizontal || vertical {
		e.contentSize = extent
		// The stack's extent is the group's size.
		if extent != e.resolved {
			e.resolved = extent
			e.frameDirty |= DirtySize
		}
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

// drawFrame rebinds the buffer sections named by this frame's flags and
// issues draw calls. Flags are cleared once their sections are bound.
// Inactive entities keep their flags so nothing is lost while hidden.
func (e *Entity) drawFrame(s *Scene) {
	if e.Type.IsGroup() {
		if e.batching {
			e.drawBatched(s)
			return
		}
		e.drawGroup(s)
		return
	}
	if !e.visible {
		return
	}
	r := e.ensureRenderer(s.device)
	n := e.vertexCount()
	d := e.frameDirty

	if len(r.indices) != e.indexCount() || len(r.vertices) != 2*n || e.drawnShape != e.shapeVersion() {
		r.resize(n, e.indexCount())
		e.writeIndices(r.indices, 0)
		r.bindIndices()
		e.drawnShape = e.shapeVersion()
		d |= DirtyRendererAll
	}
	if d&DirtyVertex != 0 {
		e.writeVertices(r.vertices, identityTransform)
		r.bindVertices()
	}
	if d&DirtyColor != 0 {
		writeColors(r.colors, e.worldColor)
		r.bindColors()
	}
	if d&DirtyTexture != 0 {
		r.bindTexture(e.texture)
	}
	if d&(DirtyTexCoords|DirtyTexture) != 0 {
		e.writeTexCoords(r.texCoords, fullRegion)
		r.bindTexCoords()
	}
	e.frameDirty = 0
	r.draw(e.world, e.BlendMode)
}

// drawGroup draws every child independently.
func (e *Entity) drawGroup(s *Scene) {
	if !e.visible {
		return
	}
	for _, c := range e.sorted {
		if !c.disposed {
			c.drawFrame(s)
		}
	}
	e.frameDirty = 0
	e.dirtyChildren = 0
	e.layoutDirty = false
}

func (e *Entity) ensureRenderer(d Device) *Renderer {
	if e.renderer == nil || e.renderer.device != d {
		if e.renderer != nil {
			e.renderer.release()
		}
		e.renderer = newRenderer(d)
		e.frameDirty |= DirtyRendererAll
	}
	return e.renderer
}
