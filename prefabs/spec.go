package prefabs

import (
	"fmt"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/physlayer/ecs"
	"gopkg.in/yaml.v3"
)

const PhysicsFile = "physics.yaml"

type VectorSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// PhysicsSpec is the on-disk form of the scene's physics settings.
type PhysicsSpec struct {
	Gravity       VectorSpec `yaml:"gravity"`
	FixedStep     float64    `yaml:"fixed_step"`
	MaxDelta      float64    `yaml:"max_delta"`
	Iterations    int        `yaml:"iterations"`
	PlayerSpeed   float64    `yaml:"player_speed"`
	JumpSpeed     float64    `yaml:"jump_speed"`
	DebugDraw     bool       `yaml:"debug_draw"`
	ContactScript string     `yaml:"contact_script"`
}

// LoadPhysicsSpec loads physics.yaml. Fields missing from the file keep the
// stepper defaults.
func LoadPhysicsSpec() (*PhysicsSpec, error) {
	data, err := Load(PhysicsFile)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", PhysicsFile, err)
	}
	return DecodePhysicsSpec(data)
}

func DecodePhysicsSpec(data []byte) (*PhysicsSpec, error) {
	def := ecs.DefaultConfig()
	spec := PhysicsSpec{
		FixedStep:  def.FixedStep,
		MaxDelta:   def.MaxDelta,
		Iterations: def.Iterations,
	}
	if err := yaml.Unmarshal(data, &spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", PhysicsFile, err)
	}
	if _, err := spec.Config(); err != nil {
		return nil, fmt.Errorf("prefabs: %s: %w", PhysicsFile, err)
	}
	if spec.PlayerSpeed < 0 || spec.JumpSpeed < 0 {
		return nil, fmt.Errorf("prefabs: %s: negative speed", PhysicsFile)
	}
	return &spec, nil
}

// Config converts the spec into a validated stepper config.
func (s PhysicsSpec) Config() (ecs.Config, error) {
	cfg := ecs.Config{
		FixedStep:  s.FixedStep,
		MaxDelta:   s.MaxDelta,
		Iterations: s.Iterations,
	}
	if err := cfg.Validate(); err != nil {
		return ecs.Config{}, err
	}
	return cfg, nil
}

func (s PhysicsSpec) GravityVector() cp.Vector {
	return cp.Vector{X: s.Gravity.X, Y: s.Gravity.Y}
}
