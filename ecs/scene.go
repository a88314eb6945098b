package ecs

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
)

// Scene is the per-frame entry point. The host calls Update once per frame;
// nothing in the scene schedules itself.
type Scene struct {
	World    *PhysicsWorld
	Contacts *ContactListener
	Sync     *BodySpriteSync
	Debug    *DebugDrawBridge
	Control  *component.PlayerControl
}

// NewScene wires the four components around a fresh world. Nil control gets
// a private PlayerControl.
func NewScene(cfg Config, control *component.PlayerControl) *Scene {
	if control == nil {
		control = &component.PlayerControl{}
	}
	world := NewPhysicsWorld(cfg)
	return &Scene{
		World:    world,
		Contacts: NewContactListener(world, nil),
		Sync:     NewBodySpriteSync(world, control),
		Debug:    NewDebugDrawBridge(world),
		Control:  control,
	}
}

// Enter initializes the world for this scene.
func (s *Scene) Enter(gravity cp.Vector, bounds *cp.BB) {
	s.World.Initialize(gravity, bounds)
}

// Update runs one frame: intents, step (contacts dispatch inside), then
// visuals. A non-positive dt leaves everything untouched.
func (s *Scene) Update(dt float64) {
	if !(dt > 0) {
		return
	}
	s.Sync.ApplyIntents()
	s.World.Step(dt)
	s.Sync.SyncVisuals()
}

// DrawDebug renders world geometry through drawer if debug draw is enabled.
func (s *Scene) DrawDebug(drawer cp.Drawer) bool {
	return s.Debug.Render(drawer)
}

// Spawn adds a body and, when sprite is non-nil, registers it.
func (s *Scene) Spawn(def component.BodyDef, sprite *component.Sprite) (*cp.Body, Entity, error) {
	body, err := s.World.AddBody(def)
	if err != nil {
		return nil, 0, err
	}
	if sprite == nil {
		return body, s.World.MustFindEntity(body).Entity, nil
	}
	return body, s.Sync.RegisterPair(body, sprite), nil
}

// RemoveEntity removes the entity's body and its sprite pairing.
func (s *Scene) RemoveEntity(body *cp.Body) {
	if body == s.Sync.Player() {
		s.Sync.SetPlayer(nil)
	}
	s.World.RemoveBody(body)
}

// Teardown releases the world.
func (s *Scene) Teardown() {
	s.Sync.SetPlayer(nil)
	s.World.Teardown()
}
