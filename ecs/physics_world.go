package ecs

import (
	"errors"
	"fmt"
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs/component"
)

const (
	defaultFixedStep  = 1.0 / 60.0
	defaultMaxDelta   = 0.25
	defaultIterations = 10

	boundsThickness = 1.0
	footDepth       = 2.0
	footWidthRatio  = 0.9
)

var ErrInvalidConfig = errors.New("ecs: invalid physics config")

// Config controls how Step subdivides frame time.
type Config struct {
	// FixedStep is the duration of one solver sub-step in seconds.
	FixedStep float64
	// MaxDelta caps the frame time consumed by a single Step call.
	MaxDelta float64
	// Iterations is the solver iteration count per sub-step.
	Iterations int
}

// DefaultConfig returns 60 Hz sub-steps capped at a quarter second per frame.
func DefaultConfig() Config {
	return Config{
		FixedStep:  defaultFixedStep,
		MaxDelta:   defaultMaxDelta,
		Iterations: defaultIterations,
	}
}

// Validate reports configuration errors wrapped around ErrInvalidConfig.
func (c Config) Validate() error {
	if !(c.FixedStep > 0) || math.IsInf(c.FixedStep, 0) {
		return fmt.Errorf("%w: fixed step %v", ErrInvalidConfig, c.FixedStep)
	}
	if c.MaxDelta < c.FixedStep || math.IsInf(c.MaxDelta, 0) {
		return fmt.Errorf("%w: max delta %v below fixed step %v", ErrInvalidConfig, c.MaxDelta, c.FixedStep)
	}
	if c.Iterations <= 0 {
		return fmt.Errorf("%w: iterations %d", ErrInvalidConfig, c.Iterations)
	}
	return nil
}

// MaxSubSteps is the most sub-steps one Step call may run.
func (c Config) MaxSubSteps() int {
	return int(math.Floor(c.MaxDelta/c.FixedStep + 1e-9))
}

// Binding is the side-table entry tying a body handle to its shapes, its
// category and, once registered, its sprite.
type Binding struct {
	Entity   Entity
	Category component.Category
	Body     *cp.Body
	Shapes   []*cp.Shape
	Sprite   *component.Sprite

	def      component.BodyDef
	removing bool
}

// PhysicsWorld owns the Chipmunk space, the handle table and the step clock.
type PhysicsWorld struct {
	cfg      Config
	space    *cp.Space
	contacts *ContactListener

	handles  entityStore
	bindings SparseSet[*Binding]
	bounds   *cp.Body

	// footSign is +1 when gravity points towards +Y, -1 otherwise.
	footSign float64

	accumulator float64
	elapsed     float64
	locked      bool
	pending     []func()
}

// NewPhysicsWorld creates an uninitialized world. An invalid config falls
// back to DefaultConfig.
func NewPhysicsWorld(cfg Config) *PhysicsWorld {
	if err := cfg.Validate(); err != nil {
		log.Printf("PhysicsWorld: %v, using defaults", err)
		cfg = DefaultConfig()
	}
	return &PhysicsWorld{cfg: cfg, footSign: 1}
}

// Initialize builds the space. A non-nil bounds adds four static segments
// around the rectangle, tagged as terrain.
func (pw *PhysicsWorld) Initialize(gravity cp.Vector, bounds *cp.BB) {
	if pw == nil {
		panic("physics world: initialize nil world")
	}
	if pw.space != nil {
		panic("physics world: already initialized")
	}

	space := cp.NewSpace()
	space.Iterations = uint(pw.cfg.Iterations)
	space.SetGravity(gravity)
	pw.space = space
	pw.setGravitySide(gravity)
	pw.accumulator = 0
	pw.elapsed = 0

	if pw.contacts != nil {
		pw.contacts.install(space)
	}
	if bounds != nil {
		pw.buildBounds(*bounds)
	}
	log.Printf("PhysicsWorld: initialized gravity=(%.2f, %.2f) step=%.4f maxDelta=%.3f", gravity.X, gravity.Y, pw.cfg.FixedStep, pw.cfg.MaxDelta)
}

// Initialized reports whether Initialize has run since the last Teardown.
func (pw *PhysicsWorld) Initialized() bool {
	return pw != nil && pw.space != nil
}

// Space returns the underlying Chipmunk space.
func (pw *PhysicsWorld) Space() *cp.Space {
	if pw == nil {
		return nil
	}
	return pw.space
}

// Config returns the active stepping configuration.
func (pw *PhysicsWorld) Config() Config {
	return pw.cfg
}

// Elapsed returns the total simulated time.
func (pw *PhysicsWorld) Elapsed() float64 {
	return pw.elapsed
}

// Locked reports whether a Step is in progress. Structural changes requested
// while locked are queued.
func (pw *PhysicsWorld) Locked() bool {
	return pw != nil && pw.locked
}

// Step advances the simulation by dt in fixed sub-steps and dispatches the
// contacts they produced.
func (pw *PhysicsWorld) Step(dt float64) {
	if pw == nil || pw.space == nil {
		panic("physics world: step before Initialize")
	}
	if pw.locked {
		panic("physics world: reentrant step")
	}
	if !(dt > 0) {
		return
	}
	if dt > pw.cfg.MaxDelta {
		dt = pw.cfg.MaxDelta
	}

	pw.advance(dt)
	pw.applyPending()
}

// advance runs the sub-steps and the contact dispatch with the world locked.
// The lock is released even if a sink panics.
func (pw *PhysicsWorld) advance(dt float64) {
	pw.locked = true
	defer func() { pw.locked = false }()

	pw.accumulator += dt
	maxSteps := pw.cfg.MaxSubSteps()
	steps := 0
	for pw.accumulator >= pw.cfg.FixedStep && steps < maxSteps {
		pw.space.Step(pw.cfg.FixedStep)
		pw.accumulator -= pw.cfg.FixedStep
		pw.elapsed += pw.cfg.FixedStep
		steps++
	}
	if pw.accumulator >= pw.cfg.FixedStep {
		pw.accumulator = 0
	}
	pw.contacts.flush()
}

// FindEntity resolves a body to its binding. It reports false for bodies
// that were never added through AddBody or have been removed.
func (pw *PhysicsWorld) FindEntity(body *cp.Body) (*Binding, bool) {
	if pw == nil || body == nil {
		return nil, false
	}
	e, ok := body.UserData.(Entity)
	if !ok {
		return nil, false
	}
	b, ok := pw.bindings.Get(e)
	if !ok || b.Body != body {
		return nil, false
	}
	return b, true
}

// MustFindEntity is FindEntity for callers holding a body they created; a
// miss is a broken invariant.
func (pw *PhysicsWorld) MustFindEntity(body *cp.Body) *Binding {
	b, ok := pw.FindEntity(body)
	if !ok {
		panic("physics world: body has no registered entity")
	}
	return b
}

// Binding returns the binding for a handle.
func (pw *PhysicsWorld) Binding(e Entity) (*Binding, bool) {
	if pw == nil {
		return nil, false
	}
	return pw.bindings.Get(e)
}

// Bindings returns every live binding in stable order. Callers must not
// retain the slice across structural changes.
func (pw *PhysicsWorld) Bindings() []*Binding {
	if pw == nil {
		return nil
	}
	return pw.bindings.Values()
}

// AddBody creates a body and its shapes from def and allocates its handle.
// During a step the space insertion is queued; the handle is usable at once.
func (pw *PhysicsWorld) AddBody(def component.BodyDef) (*cp.Body, error) {
	if pw == nil || pw.space == nil {
		panic("physics world: add body before Initialize")
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}

	body := newBody(def)
	body.SetPosition(def.Position)
	body.SetAngle(def.Angle)

	shape := newShape(body, def)
	shape.SetFriction(def.Friction)
	shape.SetElasticity(def.Elasticity)
	shape.SetSensor(def.Sensor)
	component.Tag(shape, def.Category)
	shapes := []*cp.Shape{shape}

	if def.FootSensor {
		shapes = append(shapes, pw.newFootSensor(body, def))
	}

	e := pw.handles.create()
	body.UserData = e
	b := &Binding{
		Entity:   e,
		Category: def.Category,
		Body:     body,
		Shapes:   shapes,
		def:      def,
	}
	pw.bindings.Set(e, b)

	pw.deferOp(func() {
		if b.removing {
			return
		}
		pw.space.AddBody(body)
		for _, s := range shapes {
			pw.space.AddShape(s)
		}
	})
	return body, nil
}

// RemoveBody removes a body, its shapes and its binding. Removal requested
// during a step happens after the step's contacts are dispatched. Unknown
// or already removed bodies are ignored.
func (pw *PhysicsWorld) RemoveBody(body *cp.Body) {
	b, ok := pw.FindEntity(body)
	if !ok || b.removing {
		return
	}
	if b.Body == pw.bounds {
		return
	}
	b.removing = true
	pw.deferOp(func() {
		pw.destroyBinding(b)
	})
}

// Reconfigure swaps the stepping configuration and gravity, queued when
// called during a step. Flipping the vertical sign of gravity moves every
// foot sensor to the new downward side.
func (pw *PhysicsWorld) Reconfigure(cfg Config, gravity cp.Vector) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	pw.deferOp(func() {
		pw.cfg = cfg
		if pw.space != nil {
			pw.space.Iterations = uint(cfg.Iterations)
			pw.space.SetGravity(gravity)
		}
		side := pw.footSign
		pw.setGravitySide(gravity)
		if pw.footSign != side {
			pw.rebuildFootSensors()
		}
		if pw.accumulator >= cfg.FixedStep {
			pw.accumulator = 0
		}
	})
	return nil
}

// Teardown drops every body and the space. The world can be initialized
// again afterwards.
func (pw *PhysicsWorld) Teardown() {
	if pw == nil || pw.space == nil {
		return
	}
	if pw.locked {
		panic("physics world: teardown during step")
	}
	n := pw.bindings.Len()
	pw.space = nil
	pw.bounds = nil
	pw.bindings = SparseSet[*Binding]{}
	pw.handles.reset()
	pw.pending = nil
	pw.accumulator = 0
	if pw.contacts != nil {
		pw.contacts.reset()
	}
	log.Printf("PhysicsWorld: teardown released %d bodies", n)
}

func (pw *PhysicsWorld) deferOp(op func()) {
	if pw.locked {
		pw.pending = append(pw.pending, op)
		return
	}
	op()
}

// applyPending runs structural changes queued during the last step. Contacts
// they raise wait for the next step's dispatch.
func (pw *PhysicsWorld) applyPending() {
	ops := pw.pending
	pw.pending = nil
	for _, op := range ops {
		op()
	}
}

func (pw *PhysicsWorld) destroyBinding(b *Binding) {
	if pw.space != nil {
		for _, s := range b.Shapes {
			if pw.space.ContainsShape(s) {
				pw.space.RemoveShape(s)
			}
		}
		if pw.space.ContainsBody(b.Body) {
			pw.space.RemoveBody(b.Body)
		}
	}
	pw.contacts.forget(b.Entity)
	pw.bindings.Remove(b.Entity)
	pw.handles.destroy(b.Entity)
	b.Body.UserData = nil
	b.Sprite = nil
}

func (pw *PhysicsWorld) setGravitySide(gravity cp.Vector) {
	if gravity.Y < 0 {
		pw.footSign = -1
	} else {
		pw.footSign = 1
	}
}

func (pw *PhysicsWorld) buildBounds(bb cp.BB) {
	body := cp.NewStaticBody()
	segments := []struct {
		a cp.Vector
		b cp.Vector
	}{
		{a: cp.Vector{X: bb.L, Y: bb.B}, b: cp.Vector{X: bb.R, Y: bb.B}},
		{a: cp.Vector{X: bb.L, Y: bb.T}, b: cp.Vector{X: bb.R, Y: bb.T}},
		{a: cp.Vector{X: bb.L, Y: bb.B}, b: cp.Vector{X: bb.L, Y: bb.T}},
		{a: cp.Vector{X: bb.R, Y: bb.B}, b: cp.Vector{X: bb.R, Y: bb.T}},
	}
	shapes := make([]*cp.Shape, 0, len(segments))
	for _, seg := range segments {
		shape := cp.NewSegment(body, seg.a, seg.b, boundsThickness)
		shape.SetFriction(0.8)
		component.Tag(shape, component.CategoryTerrain)
		shapes = append(shapes, shape)
	}

	e := pw.handles.create()
	body.UserData = e
	pw.bindings.Set(e, &Binding{
		Entity:   e,
		Category: component.CategoryTerrain,
		Body:     body,
		Shapes:   shapes,
	})
	pw.space.AddBody(body)
	for _, s := range shapes {
		pw.space.AddShape(s)
	}
	pw.bounds = body
}

// rebuildFootSensors swaps each foot sensor for one on the current gravity
// side. Removing the old sensor ends its terrain contacts.
func (pw *PhysicsWorld) rebuildFootSensors() {
	for _, b := range pw.bindings.Values() {
		for i, s := range b.Shapes {
			if component.CategoryOf(s) != component.CategoryPlayerFeet {
				continue
			}
			foot := pw.newFootSensor(b.Body, b.def)
			if pw.space != nil && pw.space.ContainsShape(s) {
				pw.space.RemoveShape(s)
				pw.space.AddShape(foot)
			}
			b.Shapes[i] = foot
		}
	}
}

func (pw *PhysicsWorld) newFootSensor(body *cp.Body, def component.BodyDef) *cp.Shape {
	w, h := def.Extent()
	edge := pw.footSign * h / 2
	bb := cp.BB{
		L: -w * footWidthRatio / 2,
		R: w * footWidthRatio / 2,
		B: math.Min(edge, edge+pw.footSign*footDepth),
		T: math.Max(edge, edge+pw.footSign*footDepth),
	}
	foot := cp.NewBox2(body, bb, 0)
	foot.SetSensor(true)
	component.Tag(foot, component.CategoryPlayerFeet)
	return foot
}

func newBody(def component.BodyDef) *cp.Body {
	switch def.Kind {
	case component.BodyStatic:
		return cp.NewStaticBody()
	case component.BodyKinematic:
		return cp.NewKinematicBody()
	}

	mass := def.Mass
	if mass <= 0 {
		mass = 1
	}
	var moment float64
	switch {
	case def.FixedRotation:
		moment = math.Inf(1)
	case def.Radius > 0:
		moment = cp.MomentForCircle(mass, 0, def.Radius, cp.Vector{})
	default:
		moment = cp.MomentForBox(mass, def.Width, def.Height)
	}
	return cp.NewBody(mass, moment)
}

func newShape(body *cp.Body, def component.BodyDef) *cp.Shape {
	if def.Radius > 0 {
		return cp.NewCircle(body, def.Radius, cp.Vector{})
	}
	return cp.NewBox(body, def.Width, def.Height, 0)
}
