package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), DefaultFile)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestDefault(t *testing.T) {
	c := Default()
	require.NoError(t, c.Validate())
	assert.True(t, c.VM.OutputFallback)
	assert.Equal(t, []int64{5, 6, 7, 8, 9}, c.Amp.Phases)
	assert.Equal(t, "info", c.Log.Level)
}

func TestLoad_Overrides(t *testing.T) {
	path := writeConfig(t, `
[vm]
max_steps = 100000
max_memory = 4096
output_fallback = false

[amp]
phases = [0, 1, 2, 3, 4]

[log]
level = "debug"
`)

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), c.VM.MaxSteps)
	assert.Equal(t, 4096, c.VM.MaxMemory)
	assert.False(t, c.VM.OutputFallback)
	assert.Equal(t, []int64{0, 1, 2, 3, 4}, c.Amp.Phases)
	assert.Equal(t, 5, c.Amp.Top, "absent key keeps default")
	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, path, c.Path)
}

func TestLoad_Partial(t *testing.T) {
	c, err := Load(writeConfig(t, "[amp]\ntop = 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 3, c.Amp.Top)
	assert.True(t, c.VM.OutputFallback)
	assert.Equal(t, Default().Amp.Phases, c.Amp.Phases)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		msg     string
	}{
		{"syntax", "[vm\nmax_steps = 1", "parse error"},
		{"type", "[vm]\nmax_steps = \"lots\"", "parse error"},
		{"negative steps", "[vm]\nmax_steps = -1", "vm.max_steps"},
		{"negative memory", "[vm]\nmax_memory = -1", "vm.max_memory"},
		{"empty phases", "[amp]\nphases = []", "amp.phases"},
		{"duplicate phase", "[amp]\nphases = [1, 1]", "duplicate phase"},
		{"bad level", "[log]\nlevel = \"loud\"", "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load("/nonexistent/intcode.toml")
	assert.Error(t, err)
}

func TestLoadOptional(t *testing.T) {
	c, err := LoadOptional(filepath.Join(t.TempDir(), DefaultFile))
	require.NoError(t, err)
	assert.Equal(t, Default(), c)

	c, err = LoadOptional(writeConfig(t, "[log]\nlevel = \"warn\"\n"))
	require.NoError(t, err)
	assert.Equal(t, "warn", c.Log.Level)
}
