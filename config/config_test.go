package config

import (
	"os"
	"path/filepath"
	"testing"

	mgl "github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/xopoww/go-volcloud/cloud"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, cloud.DefaultParams(), cfg.Cloud)
	assert.Equal(t, cloud.DefaultAtmosphere(), cfg.Atmosphere)
	assert.Equal(t, cloud.DefaultNoiseSizes(), cfg.Noise)
}

func TestParseOverridesDefaults(t *testing.T) {
	cfg, err := Parse([]byte(`
window:
  width: 800
cloud:
  coverage: 0.65
  sky_color_top: [0.1, 0.2, 0.3]
atmosphere:
  light_direction: [0, 1, 0]
log:
  level: debug
`))
	require.NoError(t, err)

	assert.Equal(t, 800, cfg.Window.Width)
	assert.Equal(t, 720, cfg.Window.Height)
	assert.Equal(t, float32(0.65), cfg.Cloud.Coverage)
	assert.Equal(t, float32(450), cfg.Cloud.Speed)
	assert.Equal(t, mgl.Vec3{0.1, 0.2, 0.3}, cfg.Cloud.SkyColorTop)
	assert.Equal(t, cloud.DefaultParams().SkyColorBottom, cfg.Cloud.SkyColorBottom)
	assert.Equal(t, mgl.Vec3{0, 1, 0}, cfg.Atmosphere.LightDirection)
	assert.Equal(t, "debug", cfg.Log.Level)
}

func TestParseEmpty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		invalid bool
	}{
		{"unknown key", "cloud:\n  fluffiness: 3\n", false},
		{"short vector", "cloud:\n  sky_color_top: [1, 2]\n", false},
		{"coverage", "cloud:\n  coverage: 1.5\n", true},
		{"negative density", "cloud:\n  density: -1\n", true},
		{"clip planes", "camera:\n  near: 10\n  far: 5\n", true},
		{"cloud layer", "atmosphere:\n  sphere_outer_radius: 100\n", true},
		{"zero light", "atmosphere:\n  light_direction: [0, 0, 0]\n", true},
		{"noise size", "noise:\n  worley: 0\n", true},
		{"window", "window:\n  height: 0\n", true},
		{"log level", "log:\n  level: loud\n", true},
		{"negative color", "cloud:\n  cloud_color_top: [-1, 0, 0]\n", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			if tt.invalid {
				assert.ErrorIs(t, err, ErrInvalid)
			} else {
				assert.NotErrorIs(t, err, ErrInvalid)
			}
		})
	}
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := Default()
	cfg.Window.Width = 0
	cfg.Cloud.Coverage = -1
	cfg.Shaders.Dir = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window size 0x720")
	assert.Contains(t, err.Error(), "cloud coverage -1 not in [0, 1]")
	assert.Contains(t, err.Error(), "empty shader dir")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "clouds.yaml")
	require.NoError(t, os.WriteFile(path, []byte("cloud:\n  density: 0.04\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, float32(0.04), cfg.Cloud.Density)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	require.NoError(t, os.WriteFile(path, []byte("noise:\n  weather: -4\n"), 0o644))
	_, err = Load(path)
	assert.ErrorIs(t, err, ErrInvalid)
	assert.Contains(t, err.Error(), path)
}

func TestMarshalLoadsBack(t *testing.T) {
	cfg := Default()
	cfg.Cloud.Coverage = 0.55
	cfg.Camera.Position = mgl.Vec3{1, 2, 3}

	data, err := cfg.Marshal()
	require.NoError(t, err)
	assert.Contains(t, string(data), "coverage: 0.55")

	back, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, cfg, back)
}

func TestNewLogger(t *testing.T) {
	logger, err := Log{Level: "warn"}.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, logger.Core().Enabled(zapcore.InfoLevel))

	logger, err = Log{Level: "debug", Development: true}.NewLogger()
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(zapcore.DebugLevel))

	_, err = Log{Level: "chatty"}.NewLogger()
	assert.ErrorIs(t, err, ErrInvalid)
}
