package ecs

import "github.com/jakecoffman/cp"

// DebugDrawBridge hands world geometry to a diagnostic drawer when enabled.
// It only reads the world.
type DebugDrawBridge struct {
	world   *PhysicsWorld
	enabled bool
}

func NewDebugDrawBridge(world *PhysicsWorld) *DebugDrawBridge {
	return &DebugDrawBridge{world: world}
}

func (d *DebugDrawBridge) SetEnabled(enabled bool) {
	if d == nil {
		return
	}
	d.enabled = enabled
}

func (d *DebugDrawBridge) Enabled() bool {
	return d != nil && d.enabled
}

// Toggle flips the flag and returns the new value.
func (d *DebugDrawBridge) Toggle() bool {
	if d == nil {
		return false
	}
	d.enabled = !d.enabled
	return d.enabled
}

// Render draws the current shapes through drawer and reports whether
// anything was submitted.
func (d *DebugDrawBridge) Render(drawer cp.Drawer) bool {
	if !d.Enabled() || drawer == nil {
		return false
	}
	space := d.world.Space()
	if space == nil {
		return false
	}
	cp.DrawSpace(space, drawer)
	return true
}
