package render

// Camera maps world units to screen pixels. X and Y are the world point
// drawn at the screen's top-left corner.
type Camera struct {
	X    float64
	Y    float64
	Zoom float64
}

func (c Camera) zoom() float64 {
	if c.Zoom > 0 {
		return c.Zoom
	}
	return 1
}

// ToScreen converts a world position to screen pixels.
func (c Camera) ToScreen(x, y float64) (float64, float64) {
	z := c.zoom()
	return (x - c.X) * z, (y - c.Y) * z
}
