package system

import (
	"math"
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayerControllerIntent(t *testing.T) {
	scene := newTestScene(t, cp.Vector{})
	pc := NewPlayerController(scene)

	tests := []struct {
		name string
		move float64
		want float64
	}{
		{"idle", 0, 0},
		{"half right", 0.5, 130},
		{"left", -1, -260},
		{"clamped", 5, 260},
		{"nan", math.NaN(), 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			pc.Drive(PlayerInput{MoveX: tc.move})
			assert.Equal(t, tc.want, scene.Control.VelocityX())
		})
	}
}

func TestPlayerControllerJumpsOnlyWhenGrounded(t *testing.T) {
	scene := newTestScene(t, cp.Vector{X: 0, Y: -10})
	pc := NewPlayerController(scene)

	assert.False(t, pc.Drive(PlayerInput{JumpPressed: true}), "no player")

	player, _ := spawn(t, scene, component.BodyDef{
		Category:      component.CategoryPlayer,
		Position:      cp.Vector{X: 0, Y: 20},
		FixedRotation: true,
		FootSensor:    true,
	})
	scene.Sync.SetPlayer(player)
	assert.False(t, pc.Drive(PlayerInput{JumpPressed: true}), "airborne")

	scene.Sync.Teleport(player, cp.Vector{X: 0, Y: 0.5})
	spawn(t, scene, component.BodyDef{
		Kind:     component.BodyStatic,
		Category: component.CategoryTerrain,
		Position: cp.Vector{X: 0, Y: -1},
		Width:    10,
		Height:   2,
	})
	scene.Update(frame)

	require.True(t, pc.Drive(PlayerInput{JumpPressed: true}))
	assert.Equal(t, 600.0, player.Velocity().Y, "jump points away from gravity")
}
