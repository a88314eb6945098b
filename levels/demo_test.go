package levels

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/ecs/component"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enterDemo(t *testing.T) (*ecs.Scene, *Demo) {
	t.Helper()
	scene := ecs.NewScene(ecs.DefaultConfig(), nil)
	scene.Enter(DemoGravity, &DemoBounds)
	t.Cleanup(scene.Teardown)
	demo, err := BuildDemo(scene)
	require.NoError(t, err)
	return scene, demo
}

func TestBuildDemoRequiresEnteredScene(t *testing.T) {
	_, err := BuildDemo(ecs.NewScene(ecs.DefaultConfig(), nil))
	assert.Error(t, err)
	_, err = BuildDemo(nil)
	assert.Error(t, err)
}

func TestBuildDemo(t *testing.T) {
	scene, demo := enterDemo(t)

	require.NotNil(t, demo.Player)
	assert.Same(t, demo.Player, scene.Sync.Player())
	assert.Equal(t, demo.Spawn, demo.Player.Position())
	assert.Len(t, demo.Hazards, len(demoHazards))
	assert.Len(t, demo.Pickups, len(demoPickups))
	assert.Len(t, demo.Props, len(demoProps))

	counts := map[component.Category]int{}
	for _, b := range scene.World.Bindings() {
		counts[b.Category]++
	}
	assert.Equal(t, 1, counts[component.CategoryPlayer])
	// floor and platforms plus the arena bounds
	assert.Equal(t, len(demoTerrain)+1, counts[component.CategoryTerrain])

	sprite, ok := scene.Sync.Sprite(scene.World.MustFindEntity(demo.Player).Entity)
	require.True(t, ok)
	assert.Equal(t, 32.0, sprite.Width)
	assert.Equal(t, 48.0, sprite.Height)
}

func TestDemoPlayerLands(t *testing.T) {
	scene, demo := enterDemo(t)
	e := scene.World.MustFindEntity(demo.Player).Entity

	for i := 0; i < 60; i++ {
		scene.Update(1.0 / 60)
	}

	assert.True(t, scene.Contacts.Grounded(e))
	pos := demo.Player.Position()
	assert.InDelta(t, 656, pos.Y, 1, "resting on the floor top at 680")
	sprite, _ := scene.Sync.Sprite(e)
	assert.Equal(t, cp.Vector{X: sprite.Transform.X, Y: sprite.Transform.Y}, pos)
}
