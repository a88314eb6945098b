package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
)

// BodySpriteSync couples bodies to sprites. Input crosses into the
// simulation only through ApplyIntents; simulation reaches visuals only
// through SyncVisuals and Teleport.
type BodySpriteSync struct {
	world   *PhysicsWorld
	control *component.PlayerControl
	player  *cp.Body
}

func NewBodySpriteSync(world *PhysicsWorld, control *component.PlayerControl) *BodySpriteSync {
	if world == nil {
		panic("body sync: nil world")
	}
	return &BodySpriteSync{world: world, control: control}
}

// RegisterPair attaches sprite to the body's binding and returns the body's
// handle. Registering an unknown body or registering twice panics.
func (s *BodySpriteSync) RegisterPair(body *cp.Body, sprite *component.Sprite) Entity {
	if sprite == nil {
		panic("body sync: register nil sprite")
	}
	b := s.world.MustFindEntity(body)
	if b.Sprite != nil {
		panic("body sync: body " + b.Entity.String() + " already has a sprite")
	}
	b.Sprite = sprite
	copyTransform(b)
	return b.Entity
}

// Unregister detaches the sprite from body. During a step the detach happens
// after the step.
func (s *BodySpriteSync) Unregister(body *cp.Body) {
	s.world.deferOp(func() {
		if b, ok := s.world.FindEntity(body); ok {
			b.Sprite = nil
		}
	})
}

// Sprite returns the sprite registered for e.
func (s *BodySpriteSync) Sprite(e Entity) (*component.Sprite, bool) {
	b, ok := s.world.Binding(e)
	if !ok || b.Sprite == nil {
		return nil, false
	}
	return b.Sprite, true
}

// SetPlayer selects the body driven by PlayerControl. A nil body clears it.
func (s *BodySpriteSync) SetPlayer(body *cp.Body) {
	if body != nil {
		s.world.MustFindEntity(body)
	}
	s.player = body
}

// Player returns the controlled body, or nil.
func (s *BodySpriteSync) Player() *cp.Body {
	return s.player
}

// ApplyIntents overwrites the player's horizontal velocity with the current
// intent and leaves vertical velocity to the solver.
func (s *BodySpriteSync) ApplyIntents() {
	if s.player == nil || s.control == nil {
		return
	}
	if _, ok := s.world.FindEntity(s.player); !ok {
		s.player = nil
		return
	}
	v := s.player.Velocity()
	v.X = s.control.VelocityX()
	s.player.SetVelocityVector(v)
}

// SyncVisuals copies position and angle of every registered body into its
// sprite.
func (s *BodySpriteSync) SyncVisuals() {
	for _, b := range s.world.Bindings() {
		if b.Sprite == nil {
			continue
		}
		copyTransform(b)
	}
}

// Teleport moves a body and its sprite to pos and stops it. It is the only
// path from visual placement back into the simulation.
func (s *BodySpriteSync) Teleport(body *cp.Body, pos cp.Vector) {
	s.world.deferOp(func() {
		b, ok := s.world.FindEntity(body)
		if !ok {
			return
		}
		body.SetPosition(pos)
		body.SetVelocity(0, 0)
		body.SetAngularVelocity(0)
		// Static and kinematic shapes keep their broad-phase bounds until
		// they are re-added.
		if space := s.world.Space(); space != nil && body.GetType() != cp.BODY_DYNAMIC {
			for _, shape := range b.Shapes {
				if space.ContainsShape(shape) {
					space.RemoveShape(shape)
					space.AddShape(shape)
				}
			}
		}
		if b.Sprite != nil {
			copyTransform(b)
		}
	})
}

func copyTransform(b *Binding) {
	pos := b.Body.Position()
	b.Sprite.Transform.X = pos.X
	b.Sprite.Transform.Y = pos.Y
	b.Sprite.Transform.Rotation = b.Body.Angle()
}
