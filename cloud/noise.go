package cloud

import (
	"github.com/xopoww/go-volcloud/gpu"
)

// Shader file names, relative to the shader source root.
const (
	PerlinWorleyShader = "perlinworley.comp"
	WorleyShader       = "worley.comp"
	WeatherShader      = "weather.comp"
	RayMarchShader     = "RayMarch.comp"
)

const (
	perlinWorleyStage = iota
	worleyStage
	weatherStage

	numStages
)

// Texture units the ray-march program samples the noise maps from.
const (
	perlinWorleyUnit = 11
	worleyUnit       = 12
	weatherUnit      = 13
)

// Image and texture unit the output is written through.
const outputUnit = 0

var rayMarchLocal = gpu.Size{X: 16, Y: 16, Z: 1}

// stage is one precomputed noise map and the program that fills it.
type stage struct {
	shader  string
	sampler string
	unit    uint32
	desc    gpu.TextureDesc
	local   gpu.Size
}

func (s stage) groups() gpu.Groups {
	return gpu.GroupsFor(s.desc.Size(), s.local)
}

func noiseStages(sizes NoiseSizes) [numStages]stage {
	return [numStages]stage{
		perlinWorleyStage: {
			shader:  PerlinWorleyShader,
			sampler: "cloud",
			unit:    perlinWorleyUnit,
			desc: gpu.TextureDesc{
				Target:  gpu.Texture3D,
				Width:   sizes.PerlinWorley,
				Height:  sizes.PerlinWorley,
				Depth:   sizes.PerlinWorley,
				Format:  gpu.RGBA8,
				Mipmaps: true,
			},
			local: gpu.Size{X: 4, Y: 4, Z: 4},
		},
		worleyStage: {
			shader:  WorleyShader,
			sampler: "worley32",
			unit:    worleyUnit,
			desc: gpu.TextureDesc{
				Target:  gpu.Texture3D,
				Width:   sizes.Worley,
				Height:  sizes.Worley,
				Depth:   sizes.Worley,
				Format:  gpu.RGBA8,
				Mipmaps: true,
			},
			local: gpu.Size{X: 4, Y: 4, Z: 4},
		},
		weatherStage: {
			shader:  WeatherShader,
			sampler: "weatherTex",
			unit:    weatherUnit,
			desc: gpu.TextureDesc{
				Target: gpu.Texture2D,
				Width:  sizes.Weather,
				Height: sizes.Weather,
				Format: gpu.RGBA32F,
			},
			local: gpu.Size{X: 8, Y: 8, Z: 1},
		},
	}
}

func outputDesc(width, height int) gpu.TextureDesc {
	return gpu.TextureDesc{
		Target: gpu.Texture2D,
		Width:  width,
		Height: height,
		Format: gpu.RGBA32F,
	}
}
