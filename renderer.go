package birch

// Floats per vertex in each buffer.
const (
	vertexStride   = 2
	colorStride    = 4
	texCoordStride = 2
)

// Renderer owns the CPU mirrors and device buffers of one drawable unit: a
// standalone entity or a batching group. Buffers are never shared.
type Renderer struct {
	device Device
	handle BufferHandle

	vertices  []float32
	colors    []float32
	texCoords []float32
	indices   []uint32
	texture   *Texture
}

func newRenderer(d Device) *Renderer {
	return &Renderer{device: d, handle: d.NewBuffer()}
}

// resize sets the mirror lengths for n vertices and ni indices, reusing
// capacity.
func (r *Renderer) resize(n, ni int) {
	r.vertices = growFloats(r.vertices, n*vertexStride)
	r.colors = growFloats(r.colors, n*colorStride)
	r.texCoords = growFloats(r.texCoords, n*texCoordStride)
	if cap(r.indices) < ni {
		r.indices = make([]uint32, ni)
	}
	r.indices = r.indices[:ni]
}

func growFloats(s []float32, n int) []float32 {
	if cap(s) < n {
		return make([]float32, n)
	}
	return s[:n]
}

func (r *Renderer) bindVertices() {
	r.device.BufferData(r.handle, BufferVertices, r.vertices)
}

// bindVerticesSub uploads vertices [first, first+count).
func (r *Renderer) bindVerticesSub(first, count int) {
	off := first * vertexStride
	r.device.BufferSubData(r.handle, BufferVertices, off, r.vertices[off:off+count*vertexStride])
}

func (r *Renderer) bindColors() {
	r.device.BufferData(r.handle, BufferColors, r.colors)
}

func (r *Renderer) bindColorsSub(first, count int) {
	off := first * colorStride
	r.device.BufferSubData(r.handle, BufferColors, off, r.colors[off:off+count*colorStride])
}

func (r *Renderer) bindTexCoords() {
	r.device.BufferData(r.handle, BufferTexCoords, r.texCoords)
}

func (r *Renderer) bindTexCoordsSub(first, count int) {
	off := first * texCoordStride
	r.device.BufferSubData(r.handle, BufferTexCoords, off, r.texCoords[off:off+count*texCoordStride])
}

func (r *Renderer) bindIndices() {
	r.device.IndexData(r.handle, r.indices)
}

func (r *Renderer) bindTexture(tex *Texture) {
	r.texture = tex
	if tex != nil {
		r.device.UploadTexture(tex)
	}
}

func (r *Renderer) draw(m [6]float64, blend BlendMode) {
	if len(r.indices) == 0 {
		return
	}
	r.device.DrawElements(r.handle, DrawCommand{Texture: r.texture, Matrix: m, Blend: blend})
}

func (r *Renderer) release() {
	if r.device != nil {
		r.device.DeleteBuffer(r.handle)
		r.device = nil
	}
}
