package render

import (
	"sort"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/ecs/component"
	"golang.org/x/image/colornames"
)

var pixel = func() *ebiten.Image {
	img := ebiten.NewImage(1, 1)
	img.Fill(colornames.White)
	return img
}()

// DrawSprites draws every visible sprite registered in world as a tinted,
// rotated rectangle centred on its transform. Only sprite transforms are
// read; bodies are never touched here.
func DrawSprites(world *ecs.PhysicsWorld, cam Camera, screen *ebiten.Image) {
	if world == nil || screen == nil {
		return
	}

	bindings := world.Bindings()
	visible := make([]*ecs.Binding, 0, len(bindings))
	for _, b := range bindings {
		if b.Sprite != nil && !b.Sprite.Hidden {
			visible = append(visible, b)
		}
	}
	sort.SliceStable(visible, func(i, j int) bool {
		if visible[i].Category != visible[j].Category {
			return visible[i].Category < visible[j].Category
		}
		return uint64(visible[i].Entity) < uint64(visible[j].Entity)
	})

	zoom := cam.zoom()
	for _, b := range visible {
		drawSprite(screen, b.Sprite, cam, zoom)
	}
}

func drawSprite(screen *ebiten.Image, s *component.Sprite, cam Camera, zoom float64) {
	t := s.Transform
	sx := t.ScaleX
	if sx == 0 {
		sx = 1
	}
	sy := t.ScaleY
	if sy == 0 {
		sy = 1
	}

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(-0.5, -0.5)
	op.GeoM.Scale(s.Width*sx, s.Height*sy)
	op.GeoM.Rotate(t.Rotation)
	op.GeoM.Scale(zoom, zoom)
	x, y := cam.ToScreen(t.X, t.Y)
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(s.Color)

	screen.DrawImage(pixel, op)
}
