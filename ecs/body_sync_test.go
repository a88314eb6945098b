package ecs

import (
	"image/color"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSyncVisualsCopiesExactTransform(t *testing.T) {
	w, _ := newTestWorld(t, cp.Vector{X: 0, Y: -9.81})
	sync := NewBodySpriteSync(w, nil)

	defs := []component.BodyDef{
		{Category: component.CategoryProp, Position: cp.Vector{X: 1, Y: 2}, Width: 1, Height: 1},
		{Category: component.CategoryProp, Position: cp.Vector{X: -7, Y: 3}, Radius: 0.5},
		{Category: component.CategoryPlayer, Position: cp.Vector{X: 30, Y: 30}, Width: 1, Height: 2, FixedRotation: true},
		{Kind: component.BodyStatic, Category: component.CategoryTerrain, Position: cp.Vector{X: 0, Y: -50}, Width: 100, Height: 1},
	}
	sprites := make([]*component.Sprite, len(defs))
	bodies := make([]*cp.Body, len(defs))
	for i, def := range defs {
		bodies[i] = addBox(t, w, def)
		sprites[i] = component.NewSprite(1, 1, color.RGBA{A: 255})
		sync.RegisterPair(bodies[i], sprites[i])
	}
	bodies[0].SetAngularVelocity(3.3)
	bodies[1].SetVelocity(4, 1)

	for i := 0; i < 17; i++ {
		w.Step(1.0 / 60)
		sync.SyncVisuals()
		for j, b := range bodies {
			pos := b.Position()
			assert.Equal(t, pos.X, sprites[j].Transform.X)
			assert.Equal(t, pos.Y, sprites[j].Transform.Y)
			assert.Equal(t, b.Angle(), sprites[j].Transform.Rotation)
		}
	}
}

func TestSyncVisualsNeverWritesPhysics(t *testing.T) {
	w, _ := newTestWorld(t, cp.Vector{})
	sync := NewBodySpriteSync(w, nil)
	body := addBox(t, w, component.BodyDef{Category: component.CategoryProp, Position: cp.Vector{X: 2, Y: 2}})
	sprite := component.NewSprite(1, 1, color.RGBA{})
	sync.RegisterPair(body, sprite)

	sprite.Transform.X = 99
	w.Step(1.0 / 60)
	assert.Equal(t, 2.0, body.Position().X)
	sync.SyncVisuals()
	assert.Equal(t, 2.0, sprite.Transform.X)
}

func TestApplyIntentsOverwritesOnlyHorizontal(t *testing.T) {
	control := &component.PlayerControl{}
	scene := NewScene(DefaultConfig(), control)
	scene.Enter(cp.Vector{X: 0, Y: -10}, nil)
	player, _, err := scene.Spawn(component.BodyDef{
		Category:      component.CategoryPlayer,
		Position:      cp.Vector{X: 0, Y: 100},
		Width:         1,
		Height:        2,
		FixedRotation: true,
	}, component.NewSprite(1, 2, color.RGBA{}))
	require.NoError(t, err)
	scene.Sync.SetPlayer(player)

	player.SetVelocity(-3, 2)
	control.SetVelocityX(5)
	scene.Update(1.0 / 60)

	v := player.Velocity()
	assert.Equal(t, 5.0, v.X)
	assert.InDelta(t, 2-10.0/60, v.Y, 1e-9, "vertical velocity kept and integrated")

	control.SetVelocityX(0)
	scene.Update(1.0 / 60)
	assert.Equal(t, 0.0, player.Velocity().X)
}

func TestRegisterPairPreconditions(t *testing.T) {
	w, _ := newTestWorld(t, cp.Vector{})
	sync := NewBodySpriteSync(w, nil)
	body := addBox(t, w, component.BodyDef{Category: component.CategoryProp})

	e := sync.RegisterPair(body, component.NewSprite(1, 1, color.RGBA{}))
	assert.Equal(t, w.MustFindEntity(body).Entity, e)
	got, ok := sync.Sprite(e)
	require.True(t, ok)
	assert.NotNil(t, got)

	assert.Panics(t, func() { sync.RegisterPair(body, component.NewSprite(1, 1, color.RGBA{})) }, "twice")
	assert.Panics(t, func() { sync.RegisterPair(cp.NewBody(1, 1), component.NewSprite(1, 1, color.RGBA{})) }, "unknown body")
	assert.Panics(t, func() { sync.RegisterPair(body, nil) }, "nil sprite")
	assert.Panics(t, func() { sync.SetPlayer(cp.NewBody(1, 1)) })
}

func TestUnregisterDuringStepIsDeferred(t *testing.T) {
	w, l := newTestWorld(t, cp.Vector{})
	sync := NewBodySpriteSync(w, nil)
	player := addBox(t, w, component.BodyDef{Category: component.CategoryPlayer})
	hazard := addBox(t, w, component.BodyDef{Kind: component.BodyStatic, Category: component.CategoryHazard, Sensor: true, Position: cp.Vector{X: 0.3}})
	e := sync.RegisterPair(player, component.NewSprite(1, 1, color.RGBA{}))

	var stillPaired bool
	l.Subscribe(ContactSinkFunc(func(c Contact) {
		sync.Unregister(c.BodyA)
		_, stillPaired = sync.Sprite(e)
	}))
	w.Step(1.0 / 60)

	assert.True(t, stillPaired)
	_, ok := sync.Sprite(e)
	assert.False(t, ok)
	_, ok = w.FindEntity(player)
	assert.True(t, ok, "unregistering keeps the body")
	_, ok = w.FindEntity(hazard)
	assert.True(t, ok)
}

func TestTeleportResetsBodyAndSprite(t *testing.T) {
	w, _ := newTestWorld(t, cp.Vector{X: 0, Y: -10})
	sync := NewBodySpriteSync(w, nil)
	body := addBox(t, w, component.BodyDef{Category: component.CategoryProp})
	sprite := component.NewSprite(1, 1, color.RGBA{})
	sync.RegisterPair(body, sprite)
	body.SetVelocity(3, 3)

	sync.Teleport(body, cp.Vector{X: 7, Y: 8})
	assert.Equal(t, cp.Vector{X: 7, Y: 8}, body.Position())
	assert.Equal(t, cp.Vector{}, body.Velocity())
	assert.Equal(t, 7.0, sprite.Transform.X)
	assert.Equal(t, 8.0, sprite.Transform.Y)

	wall := addBox(t, w, component.BodyDef{Kind: component.BodyStatic, Category: component.CategoryTerrain})
	sync.Teleport(wall, cp.Vector{X: -4, Y: 0})
	assert.Equal(t, cp.Vector{X: -4, Y: 0}, wall.Position())

	// A box dropped over the new spot lands on the moved wall.
	crate := addBox(t, w, component.BodyDef{Category: component.CategoryProp, Position: cp.Vector{X: -4, Y: 3}})
	for i := 0; i < 120; i++ {
		w.Step(1.0 / 60)
	}
	assert.InDelta(t, 1.0, crate.Position().Y, 0.15)
	assert.InDelta(t, -4.0, crate.Position().X, 0.1)

	// Nothing is left behind at the old spot.
	dropped := addBox(t, w, component.BodyDef{Category: component.CategoryProp, Position: cp.Vector{X: 0, Y: 3}})
	for i := 0; i < 60; i++ {
		w.Step(1.0 / 60)
	}
	assert.Less(t, dropped.Position().Y, -0.5)
}

func TestApplyIntentsForgetsRemovedPlayer(t *testing.T) {
	control := &component.PlayerControl{}
	w, _ := newTestWorld(t, cp.Vector{})
	sync := NewBodySpriteSync(w, control)
	player := addBox(t, w, component.BodyDef{Category: component.CategoryPlayer})
	sync.SetPlayer(player)
	w.RemoveBody(player)

	control.SetVelocityX(4)
	assert.NotPanics(t, sync.ApplyIntents)
	assert.Nil(t, sync.Player())
}
