// Package levels builds playable scenes in code.
package levels

import (
	"fmt"
	"image/color"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/ecs/component"
	"golang.org/x/image/colornames"
)

// DemoBounds is the demo arena in screen units, +Y down.
var DemoBounds = cp.BB{L: 0, B: 0, R: 1280, T: 720}

// DemoGravity matches screen coordinates.
var DemoGravity = cp.Vector{X: 0, Y: 900}

// Demo holds the handles a host needs after the scene is built.
type Demo struct {
	Player  *cp.Body
	Spawn   cp.Vector
	Hazards []*cp.Body
	Pickups []*cp.Body
	Props   []*cp.Body
}

type piece struct {
	def    component.BodyDef
	colour color.RGBA
}

func terrain(x, y, w, h float64) piece {
	return piece{
		def: component.BodyDef{
			Kind:     component.BodyStatic,
			Category: component.CategoryTerrain,
			Position: cp.Vector{X: x, Y: y},
			Width:    w,
			Height:   h,
			Friction: 0.9,
		},
		colour: colornames.Slategray,
	}
}

func hazard(x, y, w, h float64) piece {
	return piece{
		def: component.BodyDef{
			Kind:     component.BodyStatic,
			Category: component.CategoryHazard,
			Position: cp.Vector{X: x, Y: y},
			Width:    w,
			Height:   h,
			Sensor:   true,
		},
		colour: colornames.Crimson,
	}
}

func pickup(x, y float64) piece {
	return piece{
		def: component.BodyDef{
			Kind:     component.BodyStatic,
			Category: component.CategoryPickup,
			Position: cp.Vector{X: x, Y: y},
			Radius:   12,
			Sensor:   true,
		},
		colour: colornames.Gold,
	}
}

func prop(x, y, w, h, radius float64) piece {
	return piece{
		def: component.BodyDef{
			Kind:       component.BodyDynamic,
			Category:   component.CategoryProp,
			Position:   cp.Vector{X: x, Y: y},
			Width:      w,
			Height:     h,
			Radius:     radius,
			Mass:       2,
			Friction:   0.7,
			Elasticity: 0.2,
		},
		colour: colornames.Peru,
	}
}

var (
	demoSpawn = cp.Vector{X: 120, Y: 640}

	demoTerrain = []piece{
		terrain(640, 700, 1280, 40),
		terrain(400, 520, 240, 20),
		terrain(860, 400, 240, 20),
		terrain(1160, 280, 160, 20),
	}
	demoHazards = []piece{
		hazard(640, 670, 80, 20),
		hazard(1160, 260, 40, 20),
	}
	demoPickups = []piece{
		pickup(400, 490),
		pickup(860, 370),
		pickup(1100, 640),
	}
	demoProps = []piece{
		prop(300, 300, 32, 32, 0),
		prop(900, 200, 32, 32, 0),
		prop(700, 100, 0, 0, 16),
	}
)

// BuildDemo populates an entered scene with the demo level and selects the
// player.
func BuildDemo(scene *ecs.Scene) (*Demo, error) {
	if scene == nil || !scene.World.Initialized() {
		return nil, fmt.Errorf("levels: scene not entered")
	}

	demo := &Demo{Spawn: demoSpawn}
	for _, p := range demoTerrain {
		if _, err := spawn(scene, p); err != nil {
			return nil, err
		}
	}
	for _, group := range []struct {
		pieces []piece
		out    *[]*cp.Body
	}{
		{demoHazards, &demo.Hazards},
		{demoPickups, &demo.Pickups},
		{demoProps, &demo.Props},
	} {
		for _, p := range group.pieces {
			body, err := spawn(scene, p)
			if err != nil {
				return nil, err
			}
			*group.out = append(*group.out, body)
		}
	}

	player, err := spawn(scene, piece{
		def: component.BodyDef{
			Kind:          component.BodyDynamic,
			Category:      component.CategoryPlayer,
			Position:      demoSpawn,
			Width:         32,
			Height:        48,
			Mass:          1,
			FixedRotation: true,
			FootSensor:    true,
		},
		colour: colornames.Dodgerblue,
	})
	if err != nil {
		return nil, err
	}
	scene.Sync.SetPlayer(player)
	demo.Player = player
	return demo, nil
}

func spawn(scene *ecs.Scene, p piece) (*cp.Body, error) {
	w, h := p.def.Extent()
	body, _, err := scene.Spawn(p.def, component.NewSprite(w, h, p.colour))
	if err != nil {
		return nil, fmt.Errorf("levels: spawn %s: %w", p.def.Category, err)
	}
	return body, nil
}
