package component

import "github.com/jakecoffman/cp"

// Category is the data tag carried by every shape. Contact classification
// reads it; it is never derived from the entity's type.
type Category uint8

const (
	CategoryNone Category = iota
	CategoryTerrain
	CategoryPlayer
	CategoryPlayerFeet
	CategoryHazard
	CategoryPickup
	CategoryProp

	categoryCount
)

var categoryNames = [...]string{
	CategoryNone:       "none",
	CategoryTerrain:    "terrain",
	CategoryPlayer:     "player",
	CategoryPlayerFeet: "player_feet",
	CategoryHazard:     "hazard",
	CategoryPickup:     "pickup",
	CategoryProp:       "prop",
}

// Categories lists every assignable category.
func Categories() []Category {
	out := make([]Category, 0, categoryCount-1)
	for c := CategoryNone + 1; c < categoryCount; c++ {
		out = append(out, c)
	}
	return out
}

func (c Category) String() string {
	if int(c) < len(categoryNames) {
		return categoryNames[c]
	}
	return "unknown"
}

// Valid reports whether c is an assignable category.
func (c Category) Valid() bool {
	return c > CategoryNone && c < categoryCount
}

// CollisionType maps the category onto a Chipmunk collision type so each
// category pair can carry its own handler.
func (c Category) CollisionType() cp.CollisionType {
	return cp.CollisionType(c)
}

// CategoryOf reads the tag stored on a shape.
func CategoryOf(shape *cp.Shape) Category {
	if shape == nil {
		return CategoryNone
	}
	c, ok := shape.UserData.(Category)
	if !ok {
		return CategoryNone
	}
	return c
}

// Tag writes c onto shape as both user data and collision type.
func Tag(shape *cp.Shape, c Category) {
	if shape == nil {
		return
	}
	shape.UserData = c
	shape.SetCollisionType(c.CollisionType())
}
