package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/ecs/component"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

func newTestScene(t *testing.T, gravity cp.Vector) *ecs.Scene {
	t.Helper()
	scene := ecs.NewScene(ecs.DefaultConfig(), nil)
	scene.Enter(gravity, nil)
	t.Cleanup(scene.Teardown)
	return scene
}

func spawn(t *testing.T, scene *ecs.Scene, def component.BodyDef) (*cp.Body, ecs.Entity) {
	t.Helper()
	if def.Width == 0 && def.Radius == 0 {
		def.Width, def.Height = 1, 1
	}
	body, e, err := scene.Spawn(def, nil)
	require.NoError(t, err)
	return body, e
}
