package birch

// bindCall records one buffer upload.
type bindCall struct {
	handle BufferHandle
	kind   BufferKind
	offset int
	n      int
	sub    bool
}

type drawCall struct {
	handle BufferHandle
	cmd    DrawCommand
}

// recordDevice is an in-memory Device that records every call.
type recordDevice struct {
	next     BufferHandle
	buffers  map[BufferHandle]*[bufferKindCount][]float32
	indices  map[BufferHandle][]uint32
	binds    []bindCall
	draws    []drawCall
	uploads  []*Texture
	deleted  []BufferHandle
	indexSet int
}

func newRecordDevice() *recordDevice {
	return &recordDevice{
		buffers: make(map[BufferHandle]*[bufferKindCount][]float32),
		indices: make(map[BufferHandle][]uint32),
	}
}

func (d *recordDevice) NewBuffer() BufferHandle {
	d.next++
	d.buffers[d.next] = &[bufferKindCount][]float32{}
	return d.next
}

func (d *recordDevice) DeleteBuffer(h BufferHandle) {
	delete(d.buffers, h)
	delete(d.indices, h)
	d.deleted = append(d.deleted, h)
}

func (d *recordDevice) BufferData(h BufferHandle, kind BufferKind, data []float32) {
	d.buffers[h][kind] = append([]float32(nil), data...)
	d.binds = append(d.binds, bindCall{handle: h, kind: kind, n: len(data)})
}

func (d *recordDevice) BufferSubData(h BufferHandle, kind BufferKind, offset int, data []float32) {
	copy(d.buffers[h][kind][offset:], data)
	d.binds = append(d.binds, bindCall{handle: h, kind: kind, offset: offset, n: len(data), sub: true})
}

func (d *recordDevice) IndexData(h BufferHandle, indices []uint32) {
	d.indices[h] = append([]uint32(nil), indices...)
	d.indexSet++
}

func (d *recordDevice) UploadTexture(tex *Texture) {
	d.uploads = append(d.uploads, tex)
}

func (d *recordDevice) DrawElements(h BufferHandle, cmd DrawCommand) {
	d.draws = append(d.draws, drawCall{handle: h, cmd: cmd})
}

// reset forgets recorded calls but keeps buffer contents.
func (d *recordDevice) reset() {
	d.binds = d.binds[:0]
	d.draws = d.draws[:0]
	d.uploads = d.uploads[:0]
	d.indexSet = 0
}

// bindsOf returns the recorded uploads of one buffer kind.
func (d *recordDevice) bindsOf(kind BufferKind) []bindCall {
	var out []bindCall
	for _, b := range d.binds {
		if b.kind == kind {
			out = append(out, b)
		}
	}
	return out
}

// screenVertices returns the positions every draw call would rasterize, in
// draw order, transformed the way EbitenDevice transforms them.
func (d *recordDevice) screenVertices() []float32 {
	var out []float32
	for _, dc := range d.draws {
		pos := d.buffers[dc.handle][BufferVertices]
		for _, i := range d.indices[dc.handle] {
			x, y := transformPoint(dc.cmd.Matrix, float64(pos[2*i]), float64(pos[2*i+1]))
			out = append(out, float32(x), float32(y))
		}
	}
	return out
}

// newTestScene returns a scene drawing into a recordDevice.
func newTestScene() (*Scene, *recordDevice) {
	s := NewScene()
	d := newRecordDevice()
	s.SetDevice(d)
	return s, d
}

// frame runs one update and one render.
func frame(s *Scene) {
	s.Step(1.0 / 60)
	s.Render()
}
