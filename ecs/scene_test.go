package ecs

import (
	"image/color"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneFrameOrder(t *testing.T) {
	control := &component.PlayerControl{}
	scene := NewScene(DefaultConfig(), control)
	scene.Enter(cp.Vector{}, nil)

	player, pe, err := scene.Spawn(component.BodyDef{Category: component.CategoryPlayer, Position: cp.Vector{X: -2}, Width: 1, Height: 1}, component.NewSprite(1, 1, color.RGBA{}))
	require.NoError(t, err)
	_, he, err := scene.Spawn(component.BodyDef{
		Kind:     component.BodyStatic,
		Category: component.CategoryHazard,
		Position: cp.Vector{X: 0},
		Width:    2,
		Height:   2,
		Sensor:   true,
	}, nil)
	require.NoError(t, err)
	scene.Sync.SetPlayer(player)

	var seen []Contact
	var spriteX float64
	scene.Contacts.Subscribe(ContactSinkFunc(func(c Contact) {
		seen = append(seen, c)
		s, _ := scene.Sync.Sprite(pe)
		spriteX = s.Transform.X
	}))

	control.SetVelocityX(60)
	scene.Update(1.0 / 60)

	require.Len(t, seen, 1)
	assert.Equal(t, ContactPlayerHazard, seen[0].Name)
	assert.Equal(t, he, seen[0].B)
	assert.Equal(t, -2.0, spriteX, "visuals sync after contacts dispatch")
	s, ok := scene.Sync.Sprite(pe)
	require.True(t, ok)
	assert.Equal(t, player.Position().X, s.Transform.X)
	assert.InDelta(t, -1.0, s.Transform.X, 1e-9)
}

func TestSceneZeroDeltaFrame(t *testing.T) {
	control := &component.PlayerControl{}
	scene := NewScene(DefaultConfig(), control)
	scene.Enter(cp.Vector{X: 0, Y: -10}, nil)
	player, _, err := scene.Spawn(component.BodyDef{Category: component.CategoryPlayer, Width: 1, Height: 1}, nil)
	require.NoError(t, err)
	scene.Sync.SetPlayer(player)

	control.SetVelocityX(9)
	scene.Update(0)
	assert.Equal(t, cp.Vector{}, player.Velocity())
	assert.Equal(t, 0.0, scene.World.Elapsed())
}

func TestSceneRemoveEntityAndTeardown(t *testing.T) {
	scene := NewScene(DefaultConfig(), nil)
	scene.Enter(cp.Vector{}, &cp.BB{L: 0, B: 0, R: 10, T: 10})
	player, pe, err := scene.Spawn(component.BodyDef{Category: component.CategoryPlayer, Position: cp.Vector{X: 5, Y: 5}, Width: 1, Height: 1}, component.NewSprite(1, 1, color.RGBA{}))
	require.NoError(t, err)
	scene.Sync.SetPlayer(player)

	scene.RemoveEntity(player)
	assert.Nil(t, scene.Sync.Player())
	_, ok := scene.Sync.Sprite(pe)
	assert.False(t, ok)

	_, _, err = scene.Spawn(component.BodyDef{Category: component.CategoryPlayer}, nil)
	assert.ErrorIs(t, err, component.ErrInvalidBodyDef)

	scene.Teardown()
	assert.False(t, scene.World.Initialized())
	assert.Panics(t, func() { scene.Update(1.0 / 60) })
}
