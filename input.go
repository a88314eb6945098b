package main

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/milk9111/physlayer/ecs/system"
)

const stickDeadzone = 0.2

// frameInput is one frame of sampled keyboard and gamepad state.
type frameInput struct {
	system.PlayerInput
	ToggleDebug bool
	Reset       bool
}

func sampleInput() frameInput {
	var in frameInput

	if ebiten.IsKeyPressed(ebiten.KeyA) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		in.MoveX -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyD) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		in.MoveX += 1
	}
	in.JumpPressed = inpututil.IsKeyJustPressed(ebiten.KeySpace)
	in.ToggleDebug = inpututil.IsKeyJustPressed(ebiten.KeyF3)
	in.Reset = inpututil.IsKeyJustPressed(ebiten.KeyR)

	if gamepads := ebiten.GamepadIDs(); len(gamepads) > 0 {
		id := gamepads[0]
		leftX := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
		if math.Abs(leftX) > stickDeadzone {
			in.MoveX = leftX
		}
		in.JumpPressed = in.JumpPressed || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonRightBottom)
		in.ToggleDebug = in.ToggleDebug || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterLeft)
		in.Reset = in.Reset || inpututil.IsStandardGamepadButtonJustPressed(id, ebiten.StandardGamepadButtonCenterRight)
	}

	return in
}
