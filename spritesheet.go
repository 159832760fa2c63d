package birch

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
)

// NewSprite creates a textured quad showing the whole of tex at its pixel
// size. A nil texture gives an empty flat-colored sprite.
func NewSprite(name string, tex *Texture) *Entity {
	e := newEntity(name, EntityTypeSprite)
	if tex != nil {
		e.filename = tex.Name
		e.srcRect = Rect{Width: float64(tex.Width()), Height: float64(tex.Height())}
		e.SetSize(e.srcRect.Width, e.srcRect.Height)
	}
	e.SetTexture(tex)
	return e
}

// NewSpriteFromFile creates a sprite whose texture is loaded through cache.
func NewSpriteFromFile(name string, cache *TextureCache, filename string) (*Entity, error) {
	tex, err := cache.Load(filename)
	if err != nil {
		return nil, fmt.Errorf("birch: sprite %q: %w", name, err)
	}
	e := NewSprite(name, tex)
	e.filename = filename
	return e, nil
}

// Filename returns the cache name the sprite's texture was loaded from.
func (e *Entity) Filename() string { return e.filename }

// SourceRect returns the region of the texture the sprite samples, in pixels.
func (e *Entity) SourceRect() Rect { return e.srcRect }

// SetSourceRect sets the region of the texture the sprite samples, in pixels.
// The sprite's size is not changed. For a tiled sprite this is the repeated
// tile.
func (e *Entity) SetSourceRect(r Rect) {
	e.srcRect = r
	e.dirty |= DirtyTexCoords
	if e.Type == EntityTypeTiledSprite || e.Type == EntityTypeSlice9Sprite {
		e.dirty |= DirtyVertex
	}
}

// --- Nine-slice and tiled sprites ---

// NewSlice9Sprite creates a sprite drawn as a 3x3 grid. center is the
// stretchable region of src, relative to src's top-left corner; the border
// around it keeps its pixel size as the sprite is resized. A nil texture
// draws flat color.
func NewSlice9Sprite(name string, tex *Texture, src, center Rect) *Entity {
	e := newEntity(name, EntityTypeSlice9Sprite)
	if tex != nil {
		e.filename = tex.Name
	}
	e.srcRect = src
	e.centerRect = center
	e.SetSize(src.Width, src.Height)
	e.SetTexture(tex)
	return e
}

// CenterRect returns a nine-slice sprite's stretchable region.
func (e *Entity) CenterRect() Rect { return e.centerRect }

// SetCenterRect sets a nine-slice sprite's stretchable region.
func (e *Entity) SetCenterRect(r Rect) {
	e.centerRect = r
	e.dirty |= DirtyVertex | DirtyTexCoords
}

// NewTiledSprite creates a w x h sprite that repeats the whole of tex. The
// last row and column are cut to fit. Change the repeated region with
// SetSourceRect.
func NewTiledSprite(name string, tex *Texture, w, h float64) *Entity {
	e := newEntity(name, EntityTypeTiledSprite)
	if tex != nil {
		e.filename = tex.Name
		e.srcRect = Rect{Width: float64(tex.Width()), Height: float64(tex.Height())}
	}
	e.SetSize(w, h)
	e.SetTexture(tex)
	return e
}

// tileCounts returns how many columns and rows of tiles cover the resolved
// size. Without a tile size the whole entity is one tile.
func (e *Entity) tileCounts() (cols, rows int) {
	w, h := e.resolved.Width, e.resolved.Height
	if w <= 0 || h <= 0 {
		return 0, 0
	}
	cols, rows = 1, 1
	if tw := e.srcRect.Width; tw > 0 {
		cols = int(math.Ceil(w / tw))
	}
	if th := e.srcRect.Height; th > 0 {
		rows = int(math.Ceil(h / th))
	}
	return cols, rows
}

// tileRect returns the local rectangle of tile (c, r).
func (e *Entity) tileRect(c, r int) Rect {
	w, h := e.resolved.Width, e.resolved.Height
	tw, th := e.srcRect.Width, e.srcRect.Height
	if tw <= 0 {
		tw = w
	}
	if th <= 0 {
		th = h
	}
	x0, y0 := float64(c)*tw, float64(r)*th
	return Rect{X: x0, Y: y0, Width: min(tw, w-x0), Height: min(th, h-y0)}
}

// writeTileVertices writes one quad per tile, columns outer.
func (e *Entity) writeTileVertices(dst []float32, m [6]float64) {
	cols, rows := e.tileCounts()
	i := 0
	for c := range cols {
		for r := range rows {
			t := e.tileRect(c, r)
			for _, p := range [4]Vec2{
				{t.X, t.Y}, {t.X, t.Y + t.Height},
				{t.X + t.Width, t.Y}, {t.X + t.Width, t.Y + t.Height},
			} {
				if !e.visible {
					p = Vec2{}
				}
				x, y := transformPoint(m, p.X, p.Y)
				dst[i], dst[i+1] = float32(x), float32(y)
				i += 2
			}
		}
	}
}

// writeTileTexCoords maps every tile onto the source rect. Cut tiles sample
// the matching part of it.
func (e *Entity) writeTileTexCoords(dst []float32, region texRegion) {
	tw := float64(e.texture.Width())
	th := float64(e.texture.Height())
	if tw == 0 || th == 0 {
		for i := range dst[:2*e.vertexCount()] {
			dst[i] = -1
		}
		return
	}
	cols, rows := e.tileCounts()
	src := e.srcRect
	i := 0
	for c := range cols {
		for r := range rows {
			t := e.tileRect(c, r)
			u0, u1 := src.X/tw, (src.X+t.Width)/tw
			v0, v1 := src.Y/th, (src.Y+t.Height)/th
			if e.texture.Flip {
				v0, v1 = v1, v0
			}
			for _, uv := range [4][2]float64{{u0, v0}, {u0, v1}, {u1, v0}, {u1, v1}} {
				dst[i] = region.x + float32(uv[0])*region.w
				dst[i+1] = region.y + float32(uv[1])*region.h
				i += 2
			}
		}
	}
}

// --- Sprite sheets ---

// ErrUnknownFrame is returned when a sprite sheet has no frame by that name.
var ErrUnknownFrame = errors.New("birch: unknown sprite sheet frame")

// SheetFrame is one named region of a sprite sheet page.
type SheetFrame struct {
	Page int
	Rect Rect
	// Source is the untrimmed size as authored.
	Source Size
}

// SpriteSheet is a set of named frames on one or more page textures, as
// exported by TexturePacker.
type SpriteSheet struct {
	Pages  []*Texture
	frames map[string]SheetFrame
}

// LoadSpriteSheet parses TexturePacker JSON and associates the given pages.
// Both the hash format (single "frames" object) and the array format
// ("textures" array with per-page frame lists) are accepted.
func LoadSpriteSheet(jsonData []byte, pages []*Texture) (*SpriteSheet, error) {
	var probe struct {
		Frames   json.RawMessage `json:"frames"`
		Textures json.RawMessage `json:"textures"`
	}
	if err := json.Unmarshal(jsonData, &probe); err != nil {
		return nil, fmt.Errorf("birch: parse sprite sheet: %w", err)
	}
	sheet := &SpriteSheet{Pages: pages, frames: make(map[string]SheetFrame)}
	switch {
	case probe.Textures != nil:
		var textures []jsonTexturePage
		if err := json.Unmarshal(probe.Textures, &textures); err != nil {
			return nil, fmt.Errorf("birch: parse sprite sheet textures: %w", err)
		}
		for i, t := range textures {
			for name, f := range t.Frames {
				sheet.frames[name] = f.toFrame(i)
			}
		}
	case probe.Frames != nil:
		var frames map[string]jsonFrame
		if err := json.Unmarshal(probe.Frames, &frames); err != nil {
			return nil, fmt.Errorf("birch: parse sprite sheet frames: %w", err)
		}
		for name, f := range frames {
			sheet.frames[name] = f.toFrame(0)
		}
	default:
		return nil, errors.New(`birch: sprite sheet has neither "frames" nor "textures"`)
	}
	for name, f := range sheet.frames {
		if f.Page >= len(pages) {
			return nil, fmt.Errorf("birch: sprite sheet frame %q references missing page %d", name, f.Page)
		}
	}
	return sheet, nil
}

type jsonRect struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

type jsonFrame struct {
	Frame      jsonRect `json:"frame"`
	SourceSize struct {
		W int `json:"w"`
		H int `json:"h"`
	} `json:"sourceSize"`
}

type jsonTexturePage struct {
	Image  string               `json:"image"`
	Frames map[string]jsonFrame `json:"frames"`
}

func (f jsonFrame) toFrame(page int) SheetFrame {
	return SheetFrame{
		Page:   page,
		Rect:   Rect{X: float64(f.Frame.X), Y: float64(f.Frame.Y), Width: float64(f.Frame.W), Height: float64(f.Frame.H)},
		Source: Size{Width: float64(f.SourceSize.W), Height: float64(f.SourceSize.H)},
	}
}

// Frame returns the named frame.
func (s *SpriteSheet) Frame(name string) (SheetFrame, bool) {
	f, ok := s.frames[name]
	return f, ok
}

// FrameNames returns every frame name, sorted.
func (s *SpriteSheet) FrameNames() []string {
	names := make([]string, 0, len(s.frames))
	for n := range s.frames {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// NewSprite creates a sprite showing the named frame at its pixel size.
func (s *SpriteSheet) NewSprite(name, frame string) (*Entity, error) {
	f, ok := s.frames[frame]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownFrame, frame)
	}
	e := NewSprite(name, s.Pages[f.Page])
	e.SetSourceRect(f.Rect)
	e.SetSize(f.Rect.Width, f.Rect.Height)
	return e, nil
}
