package system

import (
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs"
)

const (
	playerMoveSpeed = 260.0
	playerJumpSpeed = 600.0
)

// PlayerInput is one frame of sampled input. MoveX is in [-1, 1].
type PlayerInput struct {
	MoveX       float64
	JumpPressed bool
}

// PlayerController turns sampled input into the horizontal intent and, when
// the player stands on terrain, a jump impulse against gravity.
type PlayerController struct {
	scene     *ecs.Scene
	MoveSpeed float64
	JumpSpeed float64
}

func NewPlayerController(scene *ecs.Scene) *PlayerController {
	return &PlayerController{
		scene:     scene,
		MoveSpeed: playerMoveSpeed,
		JumpSpeed: playerJumpSpeed,
	}
}

// Drive writes the intent and applies a jump when requested. It must run
// between frames, never from inside a step. It reports whether a jump was
// applied.
func (p *PlayerController) Drive(in PlayerInput) bool {
	if p == nil || p.scene == nil {
		return false
	}
	p.scene.Control.SetVelocityX(clampUnit(in.MoveX) * p.MoveSpeed)
	if !in.JumpPressed {
		return false
	}
	return p.Jump()
}

// Jump launches the player against gravity if its foot sensor touches
// terrain.
func (p *PlayerController) Jump() bool {
	if p == nil || p.scene == nil {
		return false
	}
	body := p.scene.Sync.Player()
	if body == nil {
		return false
	}
	b, ok := p.scene.World.FindEntity(body)
	if !ok || !p.scene.Contacts.Grounded(b.Entity) {
		return false
	}
	space := p.scene.World.Space()
	if space == nil {
		return false
	}
	g := space.Gravity()
	if g.Y == 0 {
		return false
	}

	vel := body.Velocity()
	body.SetVelocityVector(cp.Vector{X: vel.X, Y: -math.Copysign(p.JumpSpeed, g.Y)})
	return true
}

func clampUnit(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-1, math.Min(1, v))
}
