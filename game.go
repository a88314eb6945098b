package main

import (
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/ecs/render"
	"github.com/milk9111/physlayer/ecs/system"
	"github.com/milk9111/physlayer/levels"
	"github.com/milk9111/physlayer/prefabs"
	"golang.org/x/image/colornames"
)

const (
	baseWidth  = 1280
	baseHeight = 720
)

type Options struct {
	Debug      bool
	ConfigPath string
	Script     string
	Watch      bool
}

type Game struct {
	frames int
	opts   Options

	spec       *prefabs.PhysicsSpec
	scene      *ecs.Scene
	demo       *levels.Demo
	controller *system.PlayerController
	script     *system.ContactScript
	watcher    *prefabs.Watcher
	cam        render.Camera

	contacts ecs.EventQueue[ecs.Contact]
	pickups  int
	hits     int
}

func NewGame(opts Options) (*Game, error) {
	spec, err := loadPhysicsSpec(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if opts.Debug {
		spec.DebugDraw = true
	}

	g := &Game{opts: opts, spec: spec, cam: render.Camera{Zoom: 1}}
	if err := g.enter(); err != nil {
		return nil, err
	}

	if opts.Watch {
		w, err := prefabs.NewWatcher(prefabs.Dir, prefabs.Dir+"/scripts")
		if err != nil {
			log.Printf("prefabs: hot reload disabled: %v", err)
		} else {
			g.watcher = w
		}
	}
	return g, nil
}

func loadPhysicsSpec(path string) (*prefabs.PhysicsSpec, error) {
	if path == "" {
		return prefabs.LoadPhysicsSpec()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return prefabs.DecodePhysicsSpec(data)
}

// enter builds a fresh scene from the current spec.
func (g *Game) enter() error {
	cfg, err := g.spec.Config()
	if err != nil {
		return err
	}

	scene := ecs.NewScene(cfg, nil)
	scene.Enter(g.spec.GravityVector(), &levels.DemoBounds)
	scene.Debug.SetEnabled(g.spec.DebugDraw)

	demo, err := levels.BuildDemo(scene)
	if err != nil {
		scene.Teardown()
		return err
	}

	controller := system.NewPlayerController(scene)
	g.applySpeeds(controller)

	scriptName := g.opts.Script
	if scriptName == "" {
		scriptName = g.spec.ContactScript
	}
	scene.Contacts.Subscribe(ecs.ContactSinkFunc(g.contacts.Push))

	var script *system.ContactScript
	if scriptName != "" {
		script, err = system.NewContactScript(scene, scriptName)
		if err != nil {
			log.Printf("contacts: %v", err)
		} else {
			script.SetSpawn(demo.Spawn)
			scene.Contacts.Subscribe(script)
		}
	}

	if g.scene != nil {
		g.scene.Teardown()
	}
	g.scene, g.demo, g.controller, g.script = scene, demo, controller, script
	g.contacts.Drain()
	g.pickups, g.hits = 0, 0
	return nil
}

func (g *Game) applySpeeds(pc *system.PlayerController) {
	if g.spec.PlayerSpeed > 0 {
		pc.MoveSpeed = g.spec.PlayerSpeed
	}
	if g.spec.JumpSpeed > 0 {
		pc.JumpSpeed = g.spec.JumpSpeed
	}
}

func (g *Game) Update() error {
	g.frames++
	g.reload()

	in := sampleInput()
	if in.ToggleDebug {
		g.scene.Debug.Toggle()
	}
	if in.Reset {
		if err := g.enter(); err != nil {
			log.Printf("reset: %v", err)
		}
	}
	g.controller.Drive(in.PlayerInput)

	g.scene.Update(1 / float64(ebiten.TPS()))
	g.tally()
	return nil
}

// tally counts the frame's gameplay notifications for the HUD.
func (g *Game) tally() {
	for _, c := range g.contacts.Drain() {
		if c.Phase != ecs.ContactBegin {
			continue
		}
		switch c.Name {
		case ecs.ContactPlayerPickup:
			g.pickups++
		case ecs.ContactPlayerHazard:
			g.hits++
		}
	}
}

// reload applies on-disk edits between frames.
func (g *Game) reload() {
	if g.watcher == nil {
		return
	}
	select {
	case err := <-g.watcher.Errors:
		log.Printf("prefabs: watch: %v", err)
	default:
	}

	for _, path := range g.watcher.Poll() {
		switch {
		case prefabs.IsSpecFile(path):
			if g.opts.ConfigPath != "" {
				continue
			}
			spec, err := prefabs.LoadPhysicsSpec()
			if err != nil {
				log.Printf("prefabs: reload %s: %v", path, err)
				continue
			}
			cfg, _ := spec.Config()
			if err := g.scene.World.Reconfigure(cfg, spec.GravityVector()); err != nil {
				log.Printf("prefabs: reload %s: %v", path, err)
				continue
			}
			spec.DebugDraw = g.scene.Debug.Enabled()
			g.spec = spec
			g.applySpeeds(g.controller)
			log.Printf("prefabs: reloaded %s", path)
		case prefabs.IsScriptFile(path):
			if g.script == nil {
				continue
			}
			if err := g.script.Reload(); err != nil {
				log.Printf("contacts: reload %s: %v", path, err)
				continue
			}
			log.Printf("contacts: reloaded %s", path)
		}
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(colornames.Midnightblue)
	render.DrawSprites(g.scene.World, g.cam, screen)
	render.DrawPhysicsDebug(g.scene, g.cam, screen)

	if g.scene.Debug.Enabled() {
		render.DrawSceneStats(g.scene, screen)
		return
	}
	ebitenutil.DebugPrint(screen, fmt.Sprintf("Frames: %d    FPS: %.2f    Pickups: %d/%d    Hits: %d    F3 debug  R reset",
		g.frames, ebiten.ActualFPS(), g.pickups, len(g.demo.Pickups), g.hits))
}

func (g *Game) LayoutF(outsideWidth, outsideHeight float64) (float64, float64) {
	return baseWidth, baseHeight
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	panic("shouldn't use Layout")
}

func (g *Game) Close() {
	if g.watcher != nil {
		_ = g.watcher.Close()
	}
	if g.scene != nil {
		g.scene.Teardown()
		g.scene = nil
	}
}
