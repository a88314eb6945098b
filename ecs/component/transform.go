package component

// Transform is the visual placement of a sprite. X and Y are the centre of
// the sprite in world units; Rotation is in radians.
type Transform struct {
	X        float64
	Y        float64
	ScaleX   float64
	ScaleY   float64
	Rotation float64
}

// IdentityTransform returns a transform at the origin with unit scale.
func IdentityTransform() Transform {
	return Transform{ScaleX: 1, ScaleY: 1}
}
