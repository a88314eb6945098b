package component

import "image/color"

// Sprite is the renderable half of an entity. It carries its own transform,
// written by BodySpriteSync after every step and read by renderers.
type Sprite struct {
	Transform Transform
	Width     float64
	Height    float64
	Color     color.RGBA
	Hidden    bool
}

// NewSprite returns a visible sprite of the given size at the origin.
func NewSprite(width, height float64, c color.RGBA) *Sprite {
	return &Sprite{
		Transform: IdentityTransform(),
		Width:     width,
		Height:    height,
		Color:     c,
	}
}
