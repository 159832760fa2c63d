package birch

// batchEntry locates one leaf inside its batching group's buffers.
type batchEntry struct {
	entity  *Entity
	first   int // first vertex
	verts   int
	indices int
	shape   uint32
}

// laidOut reports whether the leaf's geometry still fits its slot.
func (be batchEntry) laidOut() bool {
	l := be.entity
	return l.vertexCount() == be.verts && l.indexCount() == be.indices && l.shapeVersion() == be.shape
}

// drawBatched draws a batching group's whole subtree with a single draw call.
// Vertices are baked in world space, so the call uses the identity matrix.
//
// The group rebuilds every buffer when its own vertices moved, when the
// layout changed, when a leaf's vertex or index count changed, when a
// child's texture changed, or when every buffer kind is dirty anyway.
// Otherwise only the dirty sections of dirty leaves are uploaded in place.
func (e *Entity) drawBatched(s *Scene) {
	if !e.visible {
		return
	}
	r := e.ensureRenderer(s.device)
	children := e.dirtyChildren
	all := e.frameDirty | children

	switch {
	case e.frameDirty&DirtyVertex != 0,
		e.layoutDirty,
		children&DirtyTexture != 0,
		all&DirtyRendererAll == DirtyRendererAll,
		children&DirtyRendererAll != 0 && e.geometryChanged():
		e.rebuildBatch(s, r)
	case children&DirtyRendererAll != 0:
		e.updateBatch(r, children)
	}
	clearBatchFlags(e)
	r.draw(identityTransform, e.BlendMode)
}

// rebuildBatch lays out every leaf of the subtree in draw order, repacks the
// atlas if the texture set changed, and uploads every buffer.
func (e *Entity) rebuildBatch(s *Scene, r *Renderer) {
	e.batchEntries = e.batchEntries[:0]
	var textures []*Texture
	seen := make(map[*Texture]bool)
	nv, ni := 0, 0
	walkBatch(e, func(leaf *Entity) {
		be := batchEntry{
			entity:  leaf,
			first:   nv,
			verts:   leaf.vertexCount(),
			indices: leaf.indexCount(),
			shape:   leaf.shapeVersion(),
		}
		e.batchEntries = append(e.batchEntries, be)
		nv += be.verts
		ni += be.indices
		if t := leaf.texture; t != nil && !seen[t] {
			seen[t] = true
			textures = append(textures, t)
		}
	})

	e.rebuildAtlas(s, textures)

	r.resize(nv, ni)
	idx := 0
	for _, be := range e.batchEntries {
		leaf := be.entity
		n := leaf.vertexCount()
		leaf.writeVertices(r.vertices[be.first*vertexStride:], leaf.world)
		writeColors(r.colors[be.first*colorStride:(be.first+n)*colorStride], leaf.worldColor)
		leaf.writeTexCoords(r.texCoords[be.first*texCoordStride:], e.regionFor(leaf))
		leaf.writeIndices(r.indices[idx:], uint32(be.first))
		idx += be.indices
	}
	r.bindVertices()
	r.bindColors()
	r.bindTexCoords()
	r.bindIndices()
	if e.atlas != nil {
		r.bindTexture(e.atlas.Texture())
	} else {
		r.bindTexture(nil)
	}
}

// rebuildAtlas repacks the group's atlas when textures differ from what it
// holds. Textures that overflow it are drawn as flat color.
func (e *Entity) rebuildAtlas(s *Scene, textures []*Texture) {
	if len(textures) == 0 {
		e.atlas = nil
		return
	}
	if e.atlas != nil && !e.atlas.stale(textures) {
		return
	}
	prev := e.atlas
	e.atlas = NewTextureAtlas(s.config.MaxTextureSize, s.config.TextureMargin)
	if prev != nil {
		// Keep the device texture object so it is replaced, not leaked.
		e.atlas.texture = prev.texture
	}
	for _, t := range textures {
		e.atlas.Add(t)
	}
	if err := e.atlas.Pack(); err != nil {
		logger.Warn("atlas overflow", "group", e.Name, "dropped", len(e.atlas.Dropped()), "err", err)
	}
	e.atlas.Build()
}

func (e *Entity) regionFor(leaf *Entity) texRegion {
	if e.atlas == nil || leaf.texture == nil {
		return noTexture
	}
	return e.atlas.region(leaf.texture)
}

// updateBatch uploads, for every dirty leaf, only the buffer sections named
// by its flags, at the leaf's fixed offset.
func (e *Entity) updateBatch(r *Renderer, dirty DirtyFlag) {
	for _, be := range e.batchEntries {
		leaf := be.entity
		d := leaf.frameDirty & dirty
		if d == 0 {
			continue
		}
		n := leaf.vertexCount()
		if d&DirtyVertex != 0 {
			leaf.writeVertices(r.vertices[be.first*vertexStride:], leaf.world)
			r.bindVerticesSub(be.first, n)
		}
		if d&DirtyColor != 0 {
			writeColors(r.colors[be.first*colorStride:(be.first+n)*colorStride], leaf.worldColor)
			r.bindColorsSub(be.first, n)
		}
		if d&DirtyTexCoords != 0 {
			leaf.writeTexCoords(r.texCoords[be.first*texCoordStride:], e.regionFor(leaf))
			r.bindTexCoordsSub(be.first, n)
		}
	}
}

// geometryChanged reports whether any leaf outgrew or reshaped its slot
// since the last rebuild.
func (e *Entity) geometryChanged() bool {
	for _, be := range e.batchEntries {
		if !be.laidOut() {
			return true
		}
	}
	return false
}

// walkBatch visits every leaf below group in draw order, including leaves
// with no geometry yet so a later change is noticed. Nested groups,
// batching or not, contribute their leaves to the enclosing batch.
func walkBatch(group *Entity, visit func(*Entity)) {
	for _, c := range group.sorted {
		if c.disposed {
			continue
		}
		if c.Type.IsGroup() {
			walkBatch(c, visit)
			continue
		}
		visit(c)
	}
}

// clearBatchFlags resets the per-frame flags of group and its subtree once
// their contents are bound.
func clearBatchFlags(group *Entity) {
	group.frameDirty = 0
	group.dirtyChildren = 0
	group.layoutDirty = false
	for _, c := range group.sorted {
		if c.Type.IsGroup() {
			clearBatchFlags(c)
		} else {
			c.frameDirty = 0
		}
	}
}
