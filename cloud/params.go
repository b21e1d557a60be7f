package cloud

import (
	mgl "github.com/go-gl/mathgl/mgl32"
)

// Params are the tunable parameters copied into the ray-march program on
// every Render.
type Params struct {
	Speed      float32 `yaml:"speed"`
	Coverage   float32 `yaml:"coverage"`
	Crispiness float32 `yaml:"crispiness"`
	Curliness  float32 `yaml:"curliness"`
	Density    float32 `yaml:"density"`
	Absorption float32 `yaml:"absorption"`

	CloudColorTop    mgl.Vec3 `yaml:"cloud_color_top,flow"`
	CloudColorBottom mgl.Vec3 `yaml:"cloud_color_bottom,flow"`
	SkyColorTop      mgl.Vec3 `yaml:"sky_color_top,flow"`
	SkyColorBottom   mgl.Vec3 `yaml:"sky_color_bottom,flow"`
}

func DefaultParams() Params {
	return Params{
		Speed:      450.0,
		Coverage:   0.4,
		Crispiness: 45.0,
		Curliness:  0.1,
		Density:    0.02,
		Absorption: 0.0035,

		CloudColorTop:    mgl.Vec3{169, 149, 149}.Mul(1.5 / 255.0),
		CloudColorBottom: mgl.Vec3{65, 70, 80}.Mul(1.5 / 255.0),
		SkyColorTop:      mgl.Vec3{0.5, 0.7, 0.8}.Mul(1.05),
		SkyColorBottom:   mgl.Vec3{0.9, 0.9, 0.95}.Mul(1.05),
	}
}

// Atmosphere holds the planet geometry and the sun direction. Distances are
// in world units (meters).
type Atmosphere struct {
	EarthRadius       float32  `yaml:"earth_radius"`
	SphereInnerRadius float32  `yaml:"sphere_inner_radius"`
	SphereOuterRadius float32  `yaml:"sphere_outer_radius"`
	LightDirection    mgl.Vec3 `yaml:"light_direction,flow"`
}

func DefaultAtmosphere() Atmosphere {
	return Atmosphere{
		EarthRadius:       600000,
		SphereInnerRadius: 5000,
		SphereOuterRadius: 17000,
		LightDirection:    mgl.Vec3{-0.5, 0.5, 1.0},
	}
}

// sun sits this far along the light direction from the camera
const lightDistance = 1e6

// LightPosition returns the point light position used for a camera at eye.
func (a Atmosphere) LightPosition(eye mgl.Vec3) mgl.Vec3 {
	return a.LightDirection.Normalize().Mul(lightDistance).Add(eye)
}

// NoiseSizes are the edge lengths of the precomputed maps.
type NoiseSizes struct {
	PerlinWorley int `yaml:"perlin_worley"`
	Worley       int `yaml:"worley"`
	Weather      int `yaml:"weather"`
}

func DefaultNoiseSizes() NoiseSizes {
	return NoiseSizes{
		PerlinWorley: 128,
		Worley:       32,
		Weather:      1024,
	}
}
