package prefabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/milk9111/physlayer/ecs"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadPhysicsSpecEmbedded(t *testing.T) {
	spec, err := LoadPhysicsSpec()
	require.NoError(t, err)

	assert.Equal(t, 900.0, spec.Gravity.Y)
	assert.Equal(t, 20, spec.Iterations)
	assert.Equal(t, "contacts.tengo", spec.ContactScript)

	cfg, err := spec.Config()
	require.NoError(t, err)
	assert.Equal(t, 0.25, cfg.MaxDelta)
	assert.Equal(t, 15, cfg.MaxSubSteps())
}

func TestDecodePhysicsSpec(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
	}{
		{name: "empty keeps defaults", yaml: ""},
		{name: "gravity only", yaml: "gravity: {x: 0, y: -10}\n"},
		{name: "zero step", yaml: "fixed_step: 0\n", wantErr: true},
		{name: "max delta below step", yaml: "fixed_step: 0.1\nmax_delta: 0.05\n", wantErr: true},
		{name: "zero iterations", yaml: "iterations: 0\n", wantErr: true},
		{name: "negative speed", yaml: "player_speed: -1\n", wantErr: true},
		{name: "bad yaml", yaml: "gravity: [\n", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec, err := DecodePhysicsSpec([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			cfg, err := spec.Config()
			require.NoError(t, err)
			assert.Equal(t, ecs.DefaultConfig().FixedStep, cfg.FixedStep)
		})
	}
}

func TestConfigWrapsInvalidConfig(t *testing.T) {
	_, err := PhysicsSpec{FixedStep: -1, MaxDelta: 1, Iterations: 1}.Config()
	assert.ErrorIs(t, err, ecs.ErrInvalidConfig)
}

func TestLoadPrefersDisk(t *testing.T) {
	dir := t.TempDir()
	old := Dir
	Dir = dir
	t.Cleanup(func() { Dir = old })

	require.NoError(t, os.WriteFile(filepath.Join(dir, PhysicsFile), []byte("iterations: 3\n"), 0o644))
	spec, err := LoadPhysicsSpec()
	require.NoError(t, err)
	assert.Equal(t, 3, spec.Iterations)
}

func TestLoadScript(t *testing.T) {
	for _, name := range []string{"contacts.tengo", "scripts/contacts.tengo", "prefabs/scripts/contacts.tengo"} {
		data, err := LoadScript(name)
		require.NoError(t, err, name)
		assert.Contains(t, string(data), "on_contact")
	}
}

func TestFileKinds(t *testing.T) {
	assert.True(t, IsSpecFile("prefabs/physics.yaml"))
	assert.True(t, IsSpecFile("a.YML"))
	assert.False(t, IsSpecFile("a.tengo"))
	assert.True(t, IsScriptFile("scripts/contacts.tengo"))
	assert.False(t, IsScriptFile("contacts.go"))
}
