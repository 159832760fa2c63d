package birch

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// BufferHandle names one renderer's buffer set on a Device.
type BufferHandle uint32

// BufferKind selects a per-vertex buffer.
type BufferKind uint8

const (
	BufferVertices  BufferKind = iota // 2 floats per vertex
	BufferColors                      // 4 floats per vertex, straight alpha
	BufferTexCoords                   // 2 floats per vertex, normalized; U < 0 means no texture
	bufferKindCount
)

func (k BufferKind) String() string {
	switch k {
	case BufferVertices:
		return "vertices"
	case BufferColors:
		return "colors"
	case BufferTexCoords:
		return "texcoords"
	default:
		return "unknown"
	}
}

// DrawCommand carries the per-draw state applied on top of the bound buffers.
type DrawCommand struct {
	Texture *Texture
	Matrix  [6]float64
	Blend   BlendMode
}

// Device is the GPU backend renderers upload to and draw with. Offsets and
// lengths are in float32 elements.
type Device interface {
	NewBuffer() BufferHandle
	DeleteBuffer(h BufferHandle)
	// BufferData replaces the whole buffer of the given kind.
	BufferData(h BufferHandle, kind BufferKind, data []float32)
	// BufferSubData overwrites data starting at element offset.
	BufferSubData(h BufferHandle, kind BufferKind, offset int, data []float32)
	IndexData(h BufferHandle, indices []uint32)
	// UploadTexture makes tex available for drawing. Uploading an unchanged
	// texture version is a no-op.
	UploadTexture(tex *Texture)
	DrawElements(h BufferHandle, cmd DrawCommand)
}

// --- Ebitengine device ---

// vertexColorShaderSrc outputs the premultiplied vertex color, modulated by
// the texture unless the source coordinate carries the no-texture sentinel.
const vertexColorShaderSrc = `//kage:unit pixels
package main

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := vec4(color.rgb*color.a, color.a)
	if src.x < 0 {
		return c
	}
	origin := imageSrc0Origin()
	size := imageSrc0Size()
	p := clamp(src, origin+0.5, origin+size-0.5)
	return imageSrc0At(p) * c
}
`

type ebitenBuffers struct {
	data    [bufferKindCount][]float32
	indices []uint32
}

type ebitenTexture struct {
	img     *ebiten.Image
	version uint64
}

// EbitenDevice implements Device on top of Ebitengine. Buffers live in CPU
// memory and are expanded into ebiten vertices at draw time.
type EbitenDevice struct {
	target   *ebiten.Image
	shader   *ebiten.Shader
	buffers  map[BufferHandle]*ebitenBuffers
	textures map[*Texture]*ebitenTexture
	next     BufferHandle
	verts    []ebiten.Vertex // reused per draw
}

// NewEbitenDevice compiles the device shader. The returned device draws
// nothing until SetTarget is called.
func NewEbitenDevice() (*EbitenDevice, error) {
	shader, err := ebiten.NewShader([]byte(vertexColorShaderSrc))
	if err != nil {
		return nil, fmt.Errorf("birch: compile device shader: %w", err)
	}
	return &EbitenDevice{
		shader:   shader,
		buffers:  make(map[BufferHandle]*ebitenBuffers),
		textures: make(map[*Texture]*ebitenTexture),
	}, nil
}

// SetTarget sets the image subsequent draws render into.
func (d *EbitenDevice) SetTarget(img *ebiten.Image) { d.target = img }

func (d *EbitenDevice) NewBuffer() BufferHandle {
	d.next++
	d.buffers[d.next] = &ebitenBuffers{}
	return d.next
}

func (d *EbitenDevice) DeleteBuffer(h BufferHandle) {
	delete(d.buffers, h)
}

func (d *EbitenDevice) BufferData(h BufferHandle, kind BufferKind, data []float32) {
	b := d.buffers[h]
	if b == nil {
		return
	}
	b.data[kind] = append(b.data[kind][:0], data...)
}

func (d *EbitenDevice) BufferSubData(h BufferHandle, kind BufferKind, offset int, data []float32) {
	b := d.buffers[h]
	if b == nil || offset+len(data) > len(b.data[kind]) {
		return
	}
	copy(b.data[kind][offset:], data)
}

func (d *EbitenDevice) IndexData(h BufferHandle, indices []uint32) {
	if b := d.buffers[h]; b != nil {
		b.indices = append(b.indices[:0], indices...)
	}
}

func (d *EbitenDevice) UploadTexture(tex *Texture) {
	t := d.textures[tex]
	if t != nil && t.version == tex.version {
		return
	}
	if t == nil || t.img.Bounds().Dx() != tex.Width() || t.img.Bounds().Dy() != tex.Height() {
		if t != nil {
			t.img.Deallocate()
		}
		t = &ebitenTexture{img: ebiten.NewImage(tex.Width(), tex.Height())}
		d.textures[tex] = t
	}
	t.img.WritePixels(tex.Pix())
	t.version = tex.version
}

// ReleaseTexture frees the device copy of tex.
func (d *EbitenDevice) ReleaseTexture(tex *Texture) {
	if t := d.textures[tex]; t != nil {
		t.img.Deallocate()
		delete(d.textures, tex)
	}
}

func (d *EbitenDevice) DrawElements(h BufferHandle, cmd DrawCommand) {
	b := d.buffers[h]
	if d.target == nil || b == nil || len(b.indices) == 0 {
		return
	}
	pos := b.data[BufferVertices]
	col := b.data[BufferColors]
	uv := b.data[BufferTexCoords]
	n := len(pos) / vertexStride

	var src *ebiten.Image
	var tw, th float32
	if cmd.Texture != nil {
		if t := d.textures[cmd.Texture]; t != nil {
			src = t.img
			tw, th = float32(cmd.Texture.Width()), float32(cmd.Texture.Height())
		}
	}

	if cap(d.verts) < n {
		d.verts = make([]ebiten.Vertex, n)
	}
	verts := d.verts[:n]
	for i := range verts {
		x, y := transformPoint(cmd.Matrix, float64(pos[2*i]), float64(pos[2*i+1]))
		v := &verts[i]
		v.DstX, v.DstY = float32(x), float32(y)
		v.SrcX, v.SrcY = -1, -1
		if src != nil && 2*i+1 < len(uv) && uv[2*i] >= 0 {
			v.SrcX, v.SrcY = uv[2*i]*tw, uv[2*i+1]*th
		}
		v.ColorR, v.ColorG, v.ColorB, v.ColorA = 1, 1, 1, 1
		if 4*i+3 < len(col) {
			v.ColorR, v.ColorG, v.ColorB, v.ColorA = col[4*i], col[4*i+1], col[4*i+2], col[4*i+3]
		}
	}

	var opts ebiten.DrawTrianglesShaderOptions
	opts.Blend = cmd.Blend.EbitenBlend()
	opts.Images[0] = src
	d.target.DrawTrianglesShader32(verts, b.indices, d.shader, &opts)
}
