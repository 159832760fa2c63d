package birch

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Color represents an RGBA color with components in [0, 1]. Not premultiplied.
// Premultiplication happens in the fragment stage.
type Color struct {
	R, G, B, A float64
}

// ColorWhite is the default tint (no color modification).
var ColorWhite = Color{1, 1, 1, 1}

// ColorFromRGB builds a color from a 0xRRGGBB value and an alpha in [0, 1].
func ColorFromRGB(rgb uint32, alpha float64) Color {
	return Color{
		R: float64((rgb>>16)&0xff) / 255,
		G: float64((rgb>>8)&0xff) / 255,
		B: float64(rgb&0xff) / 255,
		A: alpha,
	}
}

// RGB packs the color channels into 0xRRGGBB, dropping alpha.
func (c Color) RGB() uint32 {
	return uint32(channel8(c.R))<<16 | uint32(channel8(c.G))<<8 | uint32(channel8(c.B))
}

// Mul returns the element-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c.R * o.R, c.G * o.G, c.B * o.B, c.A * o.A}
}

func channel8(v float64) uint8 {
	return uint8(math.Round(math.Max(0, math.Min(1, v)) * 255))
}

// Vec2 is a 2D vector used for positions, offsets, scales, and directions
// throughout the API.
type Vec2 struct {
	X, Y float64
}

// Size is a width/height pair.
type Size struct {
	Width, Height float64
}

// Rect is an axis-aligned rectangle. The coordinate system has its origin at
// the top-left, with Y increasing downward.
type Rect struct {
	X, Y, Width, Height float64
}

// Contains reports whether the point (x, y) lies inside the rectangle.
// Points on the edge are considered inside.
func (r Rect) Contains(x, y float64) bool {
	return x >= r.X && x <= r.X+r.Width &&
		y >= r.Y && y <= r.Y+r.Height
}

// Intersects reports whether r and other overlap.
// Adjacent rectangles (sharing only an edge) are considered intersecting.
func (r Rect) Intersects(other Rect) bool {
	return r.X <= other.X+other.Width &&
		r.X+r.Width >= other.X &&
		r.Y <= other.Y+other.Height &&
		r.Y+r.Height >= other.Y
}

// BlendMode is how a draw call composites onto the target. It is carried on
// every DrawCommand and serialized with the entity.
type BlendMode uint8

const (
	BlendNormal   BlendMode = iota // premultiplied source-over
	BlendAdd                       // src + dst
	BlendMultiply                  // src * dst
	BlendScreen                    // 1 - (1-src)*(1-dst)
	BlendErase                     // clears dst where src is opaque
	BlendNone                      // src replaces dst
)

// EbitenBlend maps the mode onto Ebitengine's blend factors.
func (b BlendMode) EbitenBlend() ebiten.Blend {
	switch b {
	case BlendAdd:
		return ebiten.BlendLighter
	case BlendMultiply:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorDestinationColor,
			BlendFactorSourceAlpha:      ebiten.BlendFactorDestinationAlpha,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceAlpha,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendScreen:
		return ebiten.Blend{
			BlendFactorSourceRGB:        ebiten.BlendFactorOne,
			BlendFactorSourceAlpha:      ebiten.BlendFactorOne,
			BlendFactorDestinationRGB:   ebiten.BlendFactorOneMinusSourceColor,
			BlendFactorDestinationAlpha: ebiten.BlendFactorOneMinusSourceAlpha,
			BlendOperationRGB:           ebiten.BlendOperationAdd,
			BlendOperationAlpha:         ebiten.BlendOperationAdd,
		}
	case BlendErase:
		return ebiten.BlendDestinationOut
	case BlendNone:
		return ebiten.BlendCopy
	default:
		return ebiten.BlendSourceOver
	}
}

// EntityType distinguishes geometry and update behavior for an Entity.
type EntityType uint8

const (
	EntityTypeRectangle        EntityType = iota // solid quad
	EntityTypeRoundedRectangle                   // quad with rounded corners
	EntityTypeCircle                             // anti-aliased filled circle
	EntityTypeSprite                             // textured quad over a source rect
	EntityTypeLabel                              // rasterized text
	EntityTypeGroup                              // container of child entities
	EntityTypeHorizontalGroup                    // group stacking children left to right
	EntityTypeVerticalGroup                      // group stacking children top to bottom
	EntityTypeSlice9Sprite                       // sprite with fixed borders and a stretched center
	EntityTypeTiledSprite                        // sprite repeating its source rect
	EntityTypeAnimatedSprite                     // sprite cycling through a frame grid
	EntityTypePolygon                            // filled convex polygon
	EntityTypeTriangle                           // filled triangle
	EntityTypeLine                               // stroked polyline
)

var entityTypeNames = [...]string{
	EntityTypeRectangle:        "Rectangle",
	EntityTypeRoundedRectangle: "RoundedRectangle",
	EntityTypeCircle:           "Circle",
	EntityTypeSprite:           "Sprite",
	EntityTypeLabel:            "Label",
	EntityTypeGroup:            "Group",
	EntityTypeHorizontalGroup:  "HorizontalGroup",
	EntityTypeVerticalGroup:    "VerticalGroup",
	EntityTypeSlice9Sprite:     "Slice9Sprite",
	EntityTypeTiledSprite:      "TiledSprite",
	EntityTypeAnimatedSprite:   "AnimatedSprite",
	EntityTypePolygon:          "Polygon",
	EntityTypeTriangle:         "Triangle",
	EntityTypeLine:             "Line",
}

func (t EntityType) String() string {
	if int(t) < len(entityTypeNames) {
		return entityTypeNames[t]
	}
	return "Unknown"
}

// IsGroup reports whether entities of this type own children.
func (t EntityType) IsGroup() bool {
	return t == EntityTypeGroup || t == EntityTypeHorizontalGroup || t == EntityTypeVerticalGroup
}

// DirtyFlag marks which parts of an entity's cached render state are stale.
type DirtyFlag uint8

const (
	DirtyVertex    DirtyFlag = 1 << iota // vertex positions
	DirtyColor                           // per-vertex colors
	DirtyTexture                         // bound texture
	DirtyTexCoords                       // per-vertex texture coordinates
	DirtySize                            // resolved size (ratio sizes re-resolve)
	DirtyAnchor                          // anchor offset within the parent

	DirtyRendererAll = DirtyVertex | DirtyColor | DirtyTexture | DirtyTexCoords
	DirtyAll         = DirtyRendererAll | DirtySize | DirtyAnchor
)

// SizeRatio selects which size axes are expressed as a ratio of the parent's size.
type SizeRatio uint8

const (
	RatioNone   SizeRatio = 0
	RatioWidth  SizeRatio = 1
	RatioHeight SizeRatio = 2
	RatioBoth             = RatioWidth | RatioHeight
)

const (
	// MaxTextureSize bounds both atlas dimensions.
	MaxTextureSize = 4096
	// TextureMargin is the bleed border replicated around every atlas cell.
	TextureMargin = 1
)
