// Command physterm runs the demo scene in a terminal, drawing world geometry
// with the debug-draw bridge.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"sync/atomic"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/ecs/system"
	"github.com/milk9111/physlayer/levels"
	"github.com/milk9111/physlayer/prefabs"
)

// Terminals report key presses but not releases, so a move key holds the
// intent for this long.
const holdDuration = 150 * time.Millisecond

// moveIntent is the last move key: its direction and when it arrived.
type moveIntent struct {
	dir float64
	at  time.Time
}

type termGame struct {
	screen     tcell.Screen
	scene      *ecs.Scene
	demo       *levels.Demo
	controller *system.PlayerController
	drawer     *system.TerminalDrawer
	moveSpeed  float64

	held  atomic.Pointer[moveIntent]
	jumps chan struct{}
	quit  chan struct{}
}

func main() {
	configPath := flag.String("config", "", "physics yaml to load instead of prefabs/physics.yaml")
	scriptName := flag.String("script", "", "contact script in prefabs/scripts (overrides contact_script)")
	fps := flag.Int("fps", 60, "frames per second")
	logPath := flag.String("log", "physterm.log", "log file; the terminal is owned by the renderer")
	flag.Parse()

	if f, err := os.OpenFile(*logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
		log.SetOutput(f)
		defer f.Close()
	}

	g, err := newTermGame(*configPath, *scriptName)
	if err != nil {
		fmt.Fprintf(os.Stderr, "physterm: %v\n", err)
		os.Exit(1)
	}
	defer g.cleanup()

	g.run(*fps)
}

func newTermGame(configPath, scriptName string) (*termGame, error) {
	spec, err := loadSpec(configPath)
	if err != nil {
		return nil, err
	}
	cfg, err := spec.Config()
	if err != nil {
		return nil, err
	}

	screen, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	if err := screen.Init(); err != nil {
		return nil, err
	}

	scene := ecs.NewScene(cfg, nil)
	scene.Enter(spec.GravityVector(), &levels.DemoBounds)
	scene.Debug.SetEnabled(true)
	demo, err := levels.BuildDemo(scene)
	if err != nil {
		screen.Fini()
		return nil, err
	}

	g := &termGame{
		screen:     screen,
		scene:      scene,
		demo:       demo,
		controller: system.NewPlayerController(scene),
		drawer:     system.NewTerminalDrawer(screen, levels.DemoBounds),
		jumps:      make(chan struct{}, 1),
		quit:       make(chan struct{}),
	}
	if spec.JumpSpeed > 0 {
		g.controller.JumpSpeed = spec.JumpSpeed
	}
	g.moveSpeed = g.controller.MoveSpeed
	if spec.PlayerSpeed > 0 {
		g.moveSpeed = spec.PlayerSpeed
	}

	if scriptName == "" {
		scriptName = spec.ContactScript
	}
	if scriptName != "" {
		script, err := system.NewContactScript(scene, scriptName)
		if err != nil {
			log.Printf("contacts: %v", err)
		} else {
			script.SetSpawn(demo.Spawn)
			scene.Contacts.Subscribe(script)
		}
	}
	return g, nil
}

func loadSpec(path string) (*prefabs.PhysicsSpec, error) {
	if path == "" {
		return prefabs.LoadPhysicsSpec()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return prefabs.DecodePhysicsSpec(data)
}

// pollInput runs on its own goroutine. It only records the held move key;
// anything touching bodies goes through the jumps channel.
func (g *termGame) pollInput() {
	for {
		ev := g.screen.PollEvent()
		if ev == nil {
			return
		}
		switch ev := ev.(type) {
		case *tcell.EventKey:
			switch {
			case ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC || ev.Rune() == 'q':
				close(g.quit)
				return
			case ev.Key() == tcell.KeyLeft || ev.Rune() == 'a':
				g.move(-1)
			case ev.Key() == tcell.KeyRight || ev.Rune() == 'd':
				g.move(1)
			case ev.Rune() == ' ' || ev.Key() == tcell.KeyUp || ev.Rune() == 'w':
				select {
				case g.jumps <- struct{}{}:
				default:
				}
			}
		case *tcell.EventResize:
			g.screen.Sync()
		}
	}
}

func (g *termGame) move(dir float64) {
	g.held.Store(&moveIntent{dir: dir, at: time.Now()})
}

// heldVelocity is the horizontal intent for a frame at now. Direction and
// timestamp are read as one value, so a fresh press is never expired.
func (g *termGame) heldVelocity(now time.Time) float64 {
	in := g.held.Load()
	if in == nil || now.Sub(in.at) > holdDuration {
		return 0
	}
	return in.dir * g.moveSpeed
}

func (g *termGame) run(fps int) {
	if fps <= 0 {
		fps = 60
	}
	frame := time.Second / time.Duration(fps)
	ticker := time.NewTicker(frame)
	defer ticker.Stop()

	go g.pollInput()

	last := time.Now()
	for {
		select {
		case <-g.quit:
			return
		case <-g.jumps:
			g.controller.Jump()
		case now := <-ticker.C:
			g.scene.Control.SetVelocityX(g.heldVelocity(now))
			g.scene.Update(now.Sub(last).Seconds())
			last = now
			g.draw()
		}
	}
}

func (g *termGame) draw() {
	g.screen.Clear()
	g.drawer.Resize()
	g.scene.DrawDebug(g.drawer)

	grounded := false
	if b, ok := g.scene.World.FindEntity(g.demo.Player); ok {
		grounded = g.scene.Contacts.Grounded(b.Entity)
	}
	begins, ends := g.scene.Contacts.Counts()
	status := fmt.Sprintf(" t=%.1fs grounded=%v contacts=%d/%d  a/d move  space jump  q quit ",
		g.scene.World.Elapsed(), grounded, begins, ends)
	for i, r := range status {
		g.screen.SetContent(i, 0, r, nil, tcell.StyleDefault.Reverse(true))
	}
	g.screen.Show()
}

func (g *termGame) cleanup() {
	g.scene.Teardown()
	g.screen.Fini()
}
