package system

import (
	"fmt"
	"log"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs"
	"github.com/milk9111/physlayer/prefabs"
)

const contactDispatchScript = `
if !is_undefined(__event) {
	on_contact(__engine, __state, __event)
}
`

// ContactScript forwards contact notifications to a tengo script defining
// on_contact(engine, state, event). state persists across calls; script
// errors are logged and dropped.
type ContactScript struct {
	scene    *ecs.Scene
	name     string
	compiled *tengo.Compiled
	state    *tengo.Map
	engine   *tengo.ImmutableMap
	spawn    cp.Vector
	calls    int
}

// NewContactScript compiles the named script from prefabs/scripts.
func NewContactScript(scene *ecs.Scene, name string) (*ContactScript, error) {
	src, err := prefabs.LoadScript(name)
	if err != nil {
		return nil, fmt.Errorf("contact script: load %s: %w", name, err)
	}
	return NewContactScriptSource(scene, name, src)
}

// NewContactScriptSource compiles src directly.
func NewContactScriptSource(scene *ecs.Scene, name string, src []byte) (*ContactScript, error) {
	if scene == nil {
		panic("contact script: nil scene")
	}
	s := &ContactScript{
		scene: scene,
		name:  name,
		state: &tengo.Map{Value: map[string]tengo.Object{}},
	}
	if err := s.compile(src); err != nil {
		return nil, err
	}
	s.engine = s.buildEngine()
	return s, nil
}

// Reload recompiles the script from prefabs. State survives; a failed
// reload keeps the previous program.
func (s *ContactScript) Reload() error {
	src, err := prefabs.LoadScript(s.name)
	if err != nil {
		return fmt.Errorf("contact script: load %s: %w", s.name, err)
	}
	return s.compile(src)
}

// SetSpawn sets the point exposed to the script as engine.spawn_x/spawn_y.
func (s *ContactScript) SetSpawn(pos cp.Vector) {
	s.spawn = pos
	s.engine = s.buildEngine()
}

// State returns the script's persistent state map.
func (s *ContactScript) State() map[string]tengo.Object {
	return s.state.Value
}

// Calls is the number of notifications handed to the script.
func (s *ContactScript) Calls() int {
	return s.calls
}

func (s *ContactScript) OnContact(c ecs.Contact) {
	s.calls++
	if err := s.run(c); err != nil {
		log.Printf("contacts: script %s: %s %s: %v", s.name, c.Name, c.Phase, err)
	}
}

func (s *ContactScript) compile(src []byte) error {
	script := tengo.NewScript(append(append([]byte{}, src...), "\n"+contactDispatchScript...))
	_ = script.Add("__engine", map[string]any{})
	_ = script.Add("__state", map[string]any{})
	_ = script.Add("__event", nil)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))

	compiled, err := script.Compile()
	if err != nil {
		return fmt.Errorf("contact script: compile %s: %w", s.name, err)
	}
	if err := runGuarded(compiled); err != nil {
		return fmt.Errorf("contact script: init %s: %w", s.name, err)
	}
	if !compiled.IsDefined("on_contact") {
		return fmt.Errorf("contact script: %s does not define on_contact", s.name)
	}
	s.compiled = compiled
	return nil
}

func (s *ContactScript) run(c ecs.Contact) error {
	if err := s.compiled.Set("__engine", s.engine); err != nil {
		return err
	}
	if err := s.compiled.Set("__state", s.state); err != nil {
		return err
	}
	if err := s.compiled.Set("__event", contactObject(c)); err != nil {
		return err
	}
	return runGuarded(s.compiled)
}

// runGuarded runs a compiled program. The tengo VM lets Go runtime faults
// such as integer division by zero escape as panics.
func runGuarded(compiled *tengo.Compiled) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("script panic: %v", r)
		}
	}()
	return compiled.Run()
}

func contactObject(c ecs.Contact) *tengo.ImmutableMap {
	return &tengo.ImmutableMap{Value: map[string]tengo.Object{
		"name":       &tengo.String{Value: c.Name},
		"phase":      &tengo.String{Value: c.Phase.String()},
		"a":          &tengo.Int{Value: int64(c.A)},
		"b":          &tengo.Int{Value: int64(c.B)},
		"category_a": &tengo.String{Value: c.CategoryA.String()},
		"category_b": &tengo.String{Value: c.CategoryB.String()},
	}}
}

func (s *ContactScript) buildEngine() *tengo.ImmutableMap {
	values := map[string]tengo.Object{
		"spawn_x": &tengo.Float{Value: s.spawn.X},
		"spawn_y": &tengo.Float{Value: s.spawn.Y},
	}

	values["remove"] = &tengo.UserFunction{Name: "remove", Value: func(args ...tengo.Object) (tengo.Object, error) {
		b, ok := s.binding(args, 1)
		if !ok {
			return tengo.FalseValue, nil
		}
		s.scene.RemoveEntity(b.Body)
		return tengo.TrueValue, nil
	}}

	values["teleport"] = &tengo.UserFunction{Name: "teleport", Value: func(args ...tengo.Object) (tengo.Object, error) {
		b, ok := s.binding(args, 3)
		if !ok {
			return tengo.FalseValue, nil
		}
		x, okX := tengo.ToFloat64(args[1])
		y, okY := tengo.ToFloat64(args[2])
		if !okX || !okY {
			return tengo.FalseValue, nil
		}
		s.scene.Sync.Teleport(b.Body, cp.Vector{X: x, Y: y})
		return tengo.TrueValue, nil
	}}

	values["grounded"] = &tengo.UserFunction{Name: "grounded", Value: func(args ...tengo.Object) (tengo.Object, error) {
		b, ok := s.binding(args, 1)
		if !ok || !s.scene.Contacts.Grounded(b.Entity) {
			return tengo.FalseValue, nil
		}
		return tengo.TrueValue, nil
	}}

	values["log"] = &tengo.UserFunction{Name: "log", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 {
			return tengo.UndefinedValue, nil
		}
		msg, _ := tengo.ToString(args[0])
		log.Printf("contacts: %s: %s", s.name, msg)
		return tengo.UndefinedValue, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

// binding resolves args[0] as an entity handle. Stale handles fail.
func (s *ContactScript) binding(args []tengo.Object, want int) (*ecs.Binding, bool) {
	if len(args) < want {
		return nil, false
	}
	id, ok := tengo.ToInt64(args[0])
	if !ok {
		return nil, false
	}
	return s.scene.World.Binding(ecs.Entity(id))
}
