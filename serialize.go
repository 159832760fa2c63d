package birch

import (
	"errors"
	"fmt"
	"io"

	"github.com/phanxgames/birch/data"
	"golang.org/x/image/font"
)

// ErrUnknownEntityType is returned when a record names no known entity type.
var ErrUnknownEntityType = errors.New("birch: unknown entity type")

// Record keys.
const (
	keyEntityType   = "entityType"
	keyName         = "name"
	keyTag          = "tag"
	keyPositionX    = "positionX"
	keyPositionY    = "positionY"
	keyScaleX       = "scaleX"
	keyScaleY       = "scaleY"
	keyRotation     = "rotation"
	keyPivotX       = "pivotX"
	keyPivotY       = "pivotY"
	keyAnchorX      = "anchorX"
	keyAnchorY      = "anchorY"
	keyWidth        = "width"
	keyHeight       = "height"
	keySizeRatio    = "sizeSetInRatio"
	keyColor        = "color"
	keyAlpha        = "alpha"
	keyZIndex       = "zIndex"
	keyActive       = "active"
	keyBatching     = "enableBatching"
	keyChildren     = "childEntities"
	keyPadding      = "padding"
	keyRadius       = "radius"
	keyCornerRadius = "cornerRadius"
	keyFilename     = "filename"
	keyRectX        = "rect-x"
	keyRectY        = "rect-y"
	keyRectWidth    = "rect-width"
	keyRectHeight   = "rect-height"
	keyText         = "text"
	keyBlendMode    = "blendMode"

	keyCenterRectX      = "centerRect-x"
	keyCenterRectY      = "centerRect-y"
	keyCenterRectWidth  = "centerRect-width"
	keyCenterRectHeight = "centerRect-height"
	keyPoints           = "points"
	keyPointX           = "px"
	keyPointY           = "py"
	keyLineWidth        = "lineWidth"
	keyLineType         = "lineType"
	keyFrameWidth       = "frameWidth"
	keyFrameHeight      = "frameHeight"
	keyFrameCount       = "frameCount"
	keyMargin           = "margin"
	keyFrame            = "frame"
)

// Serialize converts e and its subtree into a record.
func Serialize(e *Entity) data.Dictionary {
	d := data.Dictionary{
		keyEntityType: data.Int(e.Type),
		keyName:       data.String(e.Name),
		keyPositionX:  data.Float(e.position.X),
		keyPositionY:  data.Float(e.position.Y),
		keyScaleX:     data.Float(e.scale.X),
		keyScaleY:     data.Float(e.scale.Y),
		keyRotation:   data.Float(e.rotation),
		keyPivotX:     data.Float(e.pivot.X),
		keyPivotY:     data.Float(e.pivot.Y),
		keyAnchorX:    data.Float(e.anchor.X),
		keyAnchorY:    data.Float(e.anchor.Y),
		keyWidth:      data.Float(e.size.Width),
		keyHeight:     data.Float(e.size.Height),
		keySizeRatio:  data.Int(e.sizeRatio),
		keyColor:      data.Int(e.color.RGB()),
		keyAlpha:      data.Float(e.color.A),
		keyZIndex:     data.Int(e.zIndex),
		keyActive:     data.Bool(e.active),
		keyBlendMode:  data.Int(e.BlendMode),
	}
	if e.Tag != "" {
		d[keyTag] = data.String(e.Tag)
	}
	switch e.Type {
	case EntityTypeCircle:
		d[keyRadius] = data.Float(e.radius)
	case EntityTypeRoundedRectangle:
		d[keyCornerRadius] = data.Float(e.cornerRadius)
	case EntityTypeSprite, EntityTypeTiledSprite:
		d[keyFilename] = data.String(e.filename)
		putRect(d, rectKeys, e.srcRect)
	case EntityTypeSlice9Sprite:
		d[keyFilename] = data.String(e.filename)
		putRect(d, rectKeys, e.srcRect)
		putRect(d, centerRectKeys, e.centerRect)
	case EntityTypeAnimatedSprite:
		d[keyFilename] = data.String(e.filename)
		putRect(d, rectKeys, e.anim.sheet)
		d[keyFrameWidth] = data.Float(e.anim.frameSize.Width)
		d[keyFrameHeight] = data.Float(e.anim.frameSize.Height)
		d[keyFrameCount] = data.Int(len(e.anim.frames))
		d[keyMargin] = data.Int(e.anim.margin)
		d[keyFrame] = data.Int(e.anim.frame)
	case EntityTypePolygon, EntityTypeTriangle, EntityTypeLine:
		pts := make(data.List, 0, len(e.mesh.points))
		for _, p := range e.mesh.points {
			pts = append(pts, data.Dictionary{keyPointX: data.Float(p.X), keyPointY: data.Float(p.Y)})
		}
		d[keyPoints] = pts
		if e.Type == EntityTypeLine {
			d[keyLineWidth] = data.Float(e.mesh.width)
			d[keyLineType] = data.Int(e.mesh.lineType)
		}
	case EntityTypeLabel:
		d[keyText] = data.String(e.text)
	case EntityTypeHorizontalGroup, EntityTypeVerticalGroup:
		d[keyPadding] = data.Float(e.padding)
	}
	if e.Type.IsGroup() {
		d[keyBatching] = data.Bool(e.batching)
		children := make(data.List, 0, len(e.children))
		for _, c := range e.children {
			children = append(children, Serialize(c))
		}
		d[keyChildren] = children
	}
	return d
}

// EntityCreator builds entities while deserializing. Sprites resolve their
// filename through Textures; labels use Face, or DefaultFace when nil.
type EntityCreator struct {
	Textures *TextureCache
	Face     font.Face
}

// Create returns a new entity of type t, configured from the type-specific
// keys of d.
func (c EntityCreator) Create(t EntityType, d data.Dictionary) (*Entity, error) {
	name, err := optString(d, keyName, "")
	if err != nil {
		return nil, err
	}
	switch t {
	case EntityTypeRectangle:
		return newEntity(name, t), nil
	case EntityTypeRoundedRectangle:
		r, err := optFloat(d, keyCornerRadius, 0)
		if err != nil {
			return nil, err
		}
		e := newEntity(name, t)
		e.SetCornerRadius(r)
		return e, nil
	case EntityTypeCircle:
		r, err := optFloat(d, keyRadius, 0)
		if err != nil {
			return nil, err
		}
		return NewCircle(name, r), nil
	case EntityTypeSprite:
		return c.createSprite(name, d)
	case EntityTypeSlice9Sprite, EntityTypeTiledSprite, EntityTypeAnimatedSprite:
		return c.createSpriteVariant(t, name, d)
	case EntityTypePolygon, EntityTypeTriangle, EntityTypeLine:
		return createMesh(t, name, d)
	case EntityTypeLabel:
		text, err := optString(d, keyText, "")
		if err != nil {
			return nil, err
		}
		return NewLabel(name, text, c.Face), nil
	case EntityTypeGroup:
		return NewGroup(name), nil
	case EntityTypeHorizontalGroup, EntityTypeVerticalGroup:
		p, err := optFloat(d, keyPadding, 0)
		if err != nil {
			return nil, err
		}
		if t == EntityTypeHorizontalGroup {
			return NewHorizontalGroup(name, p), nil
		}
		return NewVerticalGroup(name, p), nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEntityType, t)
	}
}

func (c EntityCreator) createSprite(name string, d data.Dictionary) (*Entity, error) {
	filename, err := optString(d, keyFilename, "")
	if err != nil {
		return nil, err
	}
	var e *Entity
	if filename == "" {
		e = NewSprite(name, nil)
	} else {
		if c.Textures == nil {
			return nil, fmt.Errorf("birch: sprite %q needs a texture cache to load %q", name, filename)
		}
		if e, err = NewSpriteFromFile(name, c.Textures, filename); err != nil {
			return nil, err
		}
	}
	r, err := optRect(d, rectKeys, e.srcRect)
	if err != nil {
		return nil, err
	}
	e.SetSourceRect(r)
	return e, nil
}

// loadTexture resolves a sprite filename through the creator's cache. An
// empty filename gives a nil texture.
func (c EntityCreator) loadTexture(name string, d data.Dictionary) (*Texture, string, error) {
	filename, err := optString(d, keyFilename, "")
	if err != nil || filename == "" {
		return nil, "", err
	}
	if c.Textures == nil {
		return nil, "", fmt.Errorf("birch: sprite %q needs a texture cache to load %q", name, filename)
	}
	tex, err := c.Textures.Load(filename)
	if err != nil {
		return nil, "", fmt.Errorf("birch: sprite %q: %w", name, err)
	}
	return tex, filename, nil
}

func (c EntityCreator) createSpriteVariant(t EntityType, name string, d data.Dictionary) (*Entity, error) {
	tex, filename, err := c.loadTexture(name, d)
	if err != nil {
		return nil, err
	}
	var full Rect
	if tex != nil {
		full = Rect{Width: float64(tex.Width()), Height: float64(tex.Height())}
	}
	src, err := optRect(d, rectKeys, full)
	if err != nil {
		return nil, err
	}
	var e *Entity
	switch t {
	case EntityTypeSlice9Sprite:
		center, err := optRect(d, centerRectKeys, Rect{})
		if err != nil {
			return nil, err
		}
		e = NewSlice9Sprite(name, tex, src, center)
	case EntityTypeTiledSprite:
		e = NewTiledSprite(name, tex, src.Width, src.Height)
		e.SetSourceRect(src)
	default:
		if e, err = createAnimatedSprite(name, tex, src, d); err != nil {
			return nil, err
		}
	}
	e.filename = filename
	return e, nil
}

func createAnimatedSprite(name string, tex *Texture, sheet Rect, d data.Dictionary) (*Entity, error) {
	fw, err := optFloat(d, keyFrameWidth, sheet.Width)
	if err != nil {
		return nil, err
	}
	fh, err := optFloat(d, keyFrameHeight, sheet.Height)
	if err != nil {
		return nil, err
	}
	count, err := optInt(d, keyFrameCount, 0)
	if err != nil {
		return nil, err
	}
	margin, err := optInt(d, keyMargin, 0)
	if err != nil {
		return nil, err
	}
	frame, err := optInt(d, keyFrame, 0)
	if err != nil {
		return nil, err
	}
	e := NewAnimatedSprite(name, tex, sheet, Size{fw, fh}, int(count), int(margin))
	e.SelectFrame(int(frame))
	return e, nil
}

func createMesh(t EntityType, name string, d data.Dictionary) (*Entity, error) {
	var points []Vec2
	if d.Has(keyPoints) {
		list, err := d.GetList(keyPoints)
		if err != nil {
			return nil, err
		}
		for i, v := range list {
			pd, ok := v.(data.Dictionary)
			if !ok {
				return nil, fmt.Errorf("point %d: %w", i, &data.MismatchError{Want: data.TypeDictionary, Got: v.Type()})
			}
			x, err := optFloat(pd, keyPointX, 0)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			y, err := optFloat(pd, keyPointY, 0)
			if err != nil {
				return nil, fmt.Errorf("point %d: %w", i, err)
			}
			points = append(points, Vec2{x, y})
		}
	}
	switch t {
	case EntityTypeTriangle:
		if len(points) != 3 {
			return nil, fmt.Errorf("birch: triangle %q has %d points, want 3", name, len(points))
		}
		return NewTriangle(name, points[0], points[1], points[2]), nil
	case EntityTypeLine:
		w, err := optFloat(d, keyLineWidth, DefaultLineWidth)
		if err != nil {
			return nil, err
		}
		typ, err := optInt(d, keyLineType, int32(LineStrip))
		if err != nil {
			return nil, err
		}
		return NewLine(name, points, w, LineType(typ)), nil
	default:
		return NewPolygon(name, points), nil
	}
}

// Deserialize rebuilds an entity tree from a record produced by Serialize.
// A value stored with the wrong type fails with an error wrapping
// data.ErrTypeMismatch; nothing is partially returned.
func Deserialize(d data.Dictionary, creator EntityCreator) (*Entity, error) {
	typ, err := d.GetInt(keyEntityType)
	if err != nil {
		return nil, fmt.Errorf("birch: deserialize: %w", err)
	}
	e, err := creator.Create(EntityType(typ), d)
	if err != nil {
		return nil, fmt.Errorf("birch: deserialize %s: %w", EntityType(typ), err)
	}
	if err := applyRecord(e, d); err != nil {
		e.Dispose()
		return nil, fmt.Errorf("birch: deserialize %q: %w", e.Name, err)
	}
	if !e.Type.IsGroup() {
		return e, nil
	}
	batching, err := optBool(d, keyBatching, false)
	if err != nil {
		e.Dispose()
		return nil, fmt.Errorf("birch: deserialize %q: %w", e.Name, err)
	}
	if batching {
		e.SetEnableBatching(true)
	}
	if !d.Has(keyChildren) {
		return e, nil
	}
	children, err := d.GetList(keyChildren)
	if err != nil {
		e.Dispose()
		return nil, fmt.Errorf("birch: deserialize %q: %w", e.Name, err)
	}
	for i, v := range children {
		cd, ok := v.(data.Dictionary)
		if !ok {
			e.Dispose()
			return nil, fmt.Errorf("birch: deserialize %q child %d: %w", e.Name, i,
				&data.MismatchError{Want: data.TypeDictionary, Got: v.Type()})
		}
		child, err := Deserialize(cd, creator)
		if err != nil {
			e.Dispose()
			return nil, err
		}
		e.Add(child)
	}
	return e, nil
}

// applyRecord sets the fields shared by every entity type.
func applyRecord(e *Entity, d data.Dictionary) error {
	var err error
	get := func(key string, def float64) float64 {
		if err != nil {
			return def
		}
		var v float64
		v, err = optFloat(d, key, def)
		return v
	}
	px, py := get(keyPositionX, 0), get(keyPositionY, 0)
	sx, sy := get(keyScaleX, 1), get(keyScaleY, 1)
	rot := get(keyRotation, 0)
	pvx, pvy := get(keyPivotX, 0), get(keyPivotY, 0)
	ax, ay := get(keyAnchorX, 0), get(keyAnchorY, 0)
	w, h := get(keyWidth, e.size.Width), get(keyHeight, e.size.Height)
	alpha := get(keyAlpha, 1)
	if err != nil {
		return err
	}
	rgb, err := optInt(d, keyColor, 0xFFFFFF)
	if err != nil {
		return err
	}
	ratio, err := optInt(d, keySizeRatio, 0)
	if err != nil {
		return err
	}
	z, err := optInt(d, keyZIndex, 0)
	if err != nil {
		return err
	}
	active, err := optBool(d, keyActive, true)
	if err != nil {
		return err
	}
	blend, err := optInt(d, keyBlendMode, int32(BlendNormal))
	if err != nil {
		return err
	}
	if e.Tag, err = optString(d, keyTag, ""); err != nil {
		return err
	}

	e.SetPosition(px, py)
	e.SetScale(sx, sy)
	e.SetRotation(rot)
	e.SetPivot(pvx, pvy)
	e.SetAnchor(ax, ay)
	e.SetSizeRatio(SizeRatio(ratio))
	e.SetSize(w, h)
	e.SetColor(ColorFromRGB(uint32(rgb), alpha))
	e.SetZIndex(int(z))
	e.SetActive(active)
	e.BlendMode = BlendMode(blend)
	return nil
}

// SaveEntity writes e's subtree to w.
func SaveEntity(w io.Writer, e *Entity) error {
	if err := data.Write(w, Serialize(e)); err != nil {
		return fmt.Errorf("birch: save %q: %w", e.Name, err)
	}
	return nil
}

// LoadEntity reads a tree written by SaveEntity.
func LoadEntity(r io.Reader, creator EntityCreator) (*Entity, error) {
	d, err := data.ReadDictionary(r)
	if err != nil {
		return nil, fmt.Errorf("birch: load entity: %w", err)
	}
	return Deserialize(d, creator)
}

// --- optional typed lookups ---

type rectKeySet [4]string

var (
	rectKeys       = rectKeySet{keyRectX, keyRectY, keyRectWidth, keyRectHeight}
	centerRectKeys = rectKeySet{keyCenterRectX, keyCenterRectY, keyCenterRectWidth, keyCenterRectHeight}
)

func putRect(d data.Dictionary, keys rectKeySet, r Rect) {
	d[keys[0]] = data.Float(r.X)
	d[keys[1]] = data.Float(r.Y)
	d[keys[2]] = data.Float(r.Width)
	d[keys[3]] = data.Float(r.Height)
}

// optRect reads the four keys of a rectangle; missing ones keep def's value.
func optRect(d data.Dictionary, keys rectKeySet, def Rect) (Rect, error) {
	r := def
	var err error
	for i, dst := range [4]*float64{&r.X, &r.Y, &r.Width, &r.Height} {
		if *dst, err = optFloat(d, keys[i], *dst); err != nil {
			return def, err
		}
	}
	return r, nil
}

func optFloat(d data.Dictionary, key string, def float64) (float64, error) {
	if !d.Has(key) {
		return def, nil
	}
	v, err := d.GetFloat(key)
	return float64(v), err
}

func optInt(d data.Dictionary, key string, def int32) (int32, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.GetInt(key)
}

func optBool(d data.Dictionary, key string, def bool) (bool, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.GetBool(key)
}

func optString(d data.Dictionary, key, def string) (string, error) {
	if !d.Has(key) {
		return def, nil
	}
	return d.GetString(key)
}
