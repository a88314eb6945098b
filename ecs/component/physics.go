package component

import (
	"fmt"

	"github.com/jakecoffman/cp"
)

// BodyKind selects how the solver treats a body.
type BodyKind uint8

const (
	BodyDynamic BodyKind = iota
	BodyStatic
	BodyKinematic
)

// BodyDef describes a body and its main shape. A positive Radius makes the
// shape a circle, otherwise Width and Height describe a centred box.
type BodyDef struct {
	Kind     BodyKind
	Category Category
	Position cp.Vector
	Angle    float64

	Width  float64
	Height float64
	Radius float64

	Mass       float64
	Friction   float64
	Elasticity float64

	Sensor        bool
	FixedRotation bool
	// FootSensor attaches a thin sensor strip under the body, tagged
	// CategoryPlayerFeet, used for grounded checks.
	FootSensor bool
}

// Validate reports definition errors wrapped around ErrInvalidBodyDef.
func (d BodyDef) Validate() error {
	if !d.Category.Valid() {
		return fmt.Errorf("%w: category %d", ErrInvalidBodyDef, d.Category)
	}
	if d.Kind > BodyKinematic {
		return fmt.Errorf("%w: kind %d", ErrInvalidBodyDef, d.Kind)
	}
	if d.Radius < 0 {
		return fmt.Errorf("%w: negative radius %v", ErrInvalidBodyDef, d.Radius)
	}
	if d.Radius == 0 && (d.Width <= 0 || d.Height <= 0) {
		return fmt.Errorf("%w: box needs positive size, got %vx%v", ErrInvalidBodyDef, d.Width, d.Height)
	}
	if d.Mass < 0 {
		return fmt.Errorf("%w: negative mass %v", ErrInvalidBodyDef, d.Mass)
	}
	return nil
}

// Extent returns the bounding size of the main shape.
func (d BodyDef) Extent() (float64, float64) {
	if d.Radius > 0 {
		return d.Radius * 2, d.Radius * 2
	}
	return d.Width, d.Height
}
