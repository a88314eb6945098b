package main

import (
	"flag"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	debug := flag.Bool("debug", false, "start with physics debug draw enabled")
	configPath := flag.String("config", "", "physics yaml to load instead of prefabs/physics.yaml")
	scriptName := flag.String("script", "", "contact script in prefabs/scripts (overrides contact_script)")
	watch := flag.Bool("watch", true, "reload physics.yaml and scripts when they change on disk")
	flag.Parse()

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(baseWidth, baseHeight)
	ebiten.SetWindowTitle("physlayer")

	game, err := NewGame(Options{
		Debug:      *debug,
		ConfigPath: *configPath,
		Script:     *scriptName,
		Watch:      *watch,
	})
	if err != nil {
		log.Fatal(err)
	}
	defer game.Close()

	if err := ebiten.RunGame(game); err != nil {
		log.Fatal(err)
	}
}
