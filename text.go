package birch

import (
	"image"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// TextAlign controls horizontal alignment of label lines.
type TextAlign uint8

const (
	TextAlignLeft TextAlign = iota
	TextAlignCenter
	TextAlignRight
)

// DefaultFace is used by labels created without a face.
var DefaultFace font.Face = basicfont.Face7x13

// NewLabel creates a text entity. The text is rasterized into a texture of
// exactly the size of the laid-out lines, and the entity takes that size.
// A nil face uses DefaultFace.
func NewLabel(name, text string, face font.Face) *Entity {
	e := newEntity(name, EntityTypeLabel)
	if face == nil {
		face = DefaultFace
	}
	e.face = face
	e.SetText(text)
	return e
}

// Text returns a label's text.
func (e *Entity) Text() string { return e.text }

// SetText replaces a label's text and re-rasterizes it. Setting the current
// text again does nothing.
func (e *Entity) SetText(text string) {
	if text == e.text && e.texture != nil {
		return
	}
	e.text = text
	e.rasterizeText()
}

// Face returns a label's font face.
func (e *Entity) Face() font.Face { return e.face }

// SetFace replaces a label's font face and re-rasterizes it.
func (e *Entity) SetFace(face font.Face) {
	if face == nil {
		face = DefaultFace
	}
	e.face = face
	e.rasterizeText()
}

// Align returns a label's line alignment.
func (e *Entity) Align() TextAlign { return e.align }

// SetAlign sets how lines of different widths are aligned.
func (e *Entity) SetAlign(a TextAlign) {
	if e.align == a {
		return
	}
	e.align = a
	e.rasterizeText()
}

// MeasureText returns the pixel size of text laid out with face.
func MeasureText(face font.Face, text string) (w, h int) {
	if face == nil {
		face = DefaultFace
	}
	lines := strings.Split(text, "\n")
	var width fixed.Int26_6
	for _, l := range lines {
		width = max(width, font.MeasureString(face, l))
	}
	return width.Ceil(), len(lines) * face.Metrics().Height.Ceil()
}

func (e *Entity) rasterizeText() {
	if e.text == "" {
		e.SetTexture(nil)
		e.SetSize(0, 0)
		return
	}
	w, h := MeasureText(e.face, e.text)
	if w == 0 || h == 0 {
		e.SetTexture(nil)
		e.SetSize(float64(w), float64(h))
		return
	}
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	m := e.face.Metrics()
	d := font.Drawer{Dst: img, Src: image.White, Face: e.face}
	lineH := m.Height.Ceil()
	for i, line := range strings.Split(e.text, "\n") {
		lw := font.MeasureString(e.face, line).Ceil()
		x := 0
		switch e.align {
		case TextAlignCenter:
			x = (w - lw) / 2
		case TextAlignRight:
			x = w - lw
		}
		d.Dot = fixed.P(x, i*lineH+m.Ascent.Ceil())
		d.DrawString(line)
	}

	if e.texture != nil && e.texture.Width() == w && e.texture.Height() == h && strings.HasPrefix(e.texture.Name, "label-") {
		e.texture.Replace(img)
		e.SetTexture(e.texture)
	} else {
		tex := newTextureRGBA(img)
		tex.Name = "label-" + uuid.NewString()
		e.SetTexture(tex)
	}
	e.SetSize(float64(w), float64(h))
}
