package component

import (
	"math"
	"sync/atomic"
)

// PlayerControl holds the horizontal velocity intent produced by input.
// Input may write it from any goroutine; the scene reads it once per frame.
type PlayerControl struct {
	velocityX atomic.Uint64
}

// SetVelocityX overwrites the horizontal intent.
func (p *PlayerControl) SetVelocityX(v float64) {
	if p == nil {
		return
	}
	p.velocityX.Store(math.Float64bits(v))
}

// VelocityX returns the current horizontal intent.
func (p *PlayerControl) VelocityX() float64 {
	if p == nil {
		return 0
	}
	return math.Float64frombits(p.velocityX.Load())
}
