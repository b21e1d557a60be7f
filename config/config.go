// Package config loads the renderer configuration from YAML.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	mgl "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"

	"github.com/xopoww/go-volcloud/cloud"
)

var ErrInvalid = errors.New("invalid configuration")

type Config struct {
	Window      Window           `yaml:"window"`
	Camera      Camera           `yaml:"camera"`
	Cloud       cloud.Params     `yaml:"cloud"`
	Atmosphere  cloud.Atmosphere `yaml:"atmosphere"`
	Noise       cloud.NoiseSizes `yaml:"noise"`
	Shaders     Shaders          `yaml:"shaders"`
	Screenshots Screenshots      `yaml:"screenshots"`
	Log         Log              `yaml:"log"`
}

type Window struct {
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Title     string `yaml:"title"`
	VSync     bool   `yaml:"vsync"`
	Resizable bool   `yaml:"resizable"`
}

type Camera struct {
	Position mgl.Vec3 `yaml:"position,flow"`
	LookAt   mgl.Vec3 `yaml:"look_at,flow"`
	FOV      float32  `yaml:"fov"`
	Near     float32  `yaml:"near"`
	Far      float32  `yaml:"far"`
	Speed    float32  `yaml:"speed"`
}

type Shaders struct {
	Dir   string `yaml:"dir"`
	Watch bool   `yaml:"watch"`
}

type Screenshots struct {
	Dir string `yaml:"dir"`
}

type Log struct {
	Level       string `yaml:"level"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Window: Window{
			Width:     1280,
			Height:    720,
			Title:     "Volumetric Clouds",
			VSync:     true,
			Resizable: true,
		},
		Camera: Camera{
			Position: mgl.Vec3{0, 0, 0},
			LookAt:   mgl.Vec3{0, 0.3, -1},
			FOV:      45,
			Near:     0.1,
			Far:      1000000,
			Speed:    20,
		},
		Cloud:      cloud.DefaultParams(),
		Atmosphere: cloud.DefaultAtmosphere(),
		Noise:      cloud.DefaultNoiseSizes(),
		Shaders: Shaders{
			Dir:   "shader",
			Watch: true,
		},
		Screenshots: Screenshots{
			Dir: ".",
		},
		Log: Log{
			Level: "info",
		},
	}
}

// Load reads the file at path over the defaults and validates the result.
// Unknown keys are an error.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func Parse(data []byte) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}

func (c Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...interface{}) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalid}, args...)...))
		}
	}

	w := c.Window
	check(w.Width > 0 && w.Height > 0, "window size %dx%d", w.Width, w.Height)

	cam := c.Camera
	check(cam.FOV > 0 && cam.FOV < 180, "camera fov %g", cam.FOV)
	check(cam.Near > 0 && cam.Far > cam.Near, "camera clip planes near=%g far=%g", cam.Near, cam.Far)
	check(cam.Speed >= 0, "camera speed %g", cam.Speed)
	check(cam.LookAt != cam.Position, "camera looks at its own position")

	p := c.Cloud
	check(p.Coverage >= 0 && p.Coverage <= 1, "cloud coverage %g not in [0, 1]", p.Coverage)
	check(p.Density >= 0, "cloud density %g", p.Density)
	check(p.Absorption >= 0, "cloud absorption %g", p.Absorption)
	check(p.Crispiness >= 0, "cloud crispiness %g", p.Crispiness)
	check(p.Curliness >= 0, "cloud curliness %g", p.Curliness)
	for _, color := range []struct {
		name  string
		value mgl.Vec3
	}{
		{"cloud_color_top", p.CloudColorTop},
		{"cloud_color_bottom", p.CloudColorBottom},
		{"sky_color_top", p.SkyColorTop},
		{"sky_color_bottom", p.SkyColorBottom},
	} {
		v := color.value
		check(v.X() >= 0 && v.Y() >= 0 && v.Z() >= 0, "negative %s %v", color.name, v)
	}

	a := c.Atmosphere
	check(a.EarthRadius > 0, "earth radius %g", a.EarthRadius)
	check(a.SphereInnerRadius > 0 && a.SphereOuterRadius > a.SphereInnerRadius,
		"cloud layer %g..%g", a.SphereInnerRadius, a.SphereOuterRadius)
	check(a.LightDirection.Len() > 0, "zero light direction")

	n := c.Noise
	check(n.PerlinWorley > 0 && n.Worley > 0 && n.Weather > 0,
		"noise sizes %d/%d/%d", n.PerlinWorley, n.Worley, n.Weather)

	check(c.Shaders.Dir != "", "empty shader dir")

	_, err := zapcore.ParseLevel(c.Log.Level)
	check(err == nil, "log level %q", c.Log.Level)

	return errors.Join(errs...)
}
