// Package cloud renders volumetric clouds with compute programs: three noise
// maps are generated once, then a ray-march pass writes the clouds into an
// RGBA32F image every frame.
package cloud

import (
	"errors"
	"fmt"

	mgl "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/xopoww/go-volcloud/gpu"
)

// Camera is what the ray-march pass needs to know about the viewer.
type Camera interface {
	Eye() mgl.Vec3
	ViewMatrix() mgl.Mat4
	// FieldOfView is the vertical field of view in degrees.
	FieldOfView() float32
}

// SourceLoader provides compute shader sources by file name. local is the
// work-group size the host dispatches with.
type SourceLoader interface {
	Load(name string, local gpu.Size) (string, error)
}

type Options struct {
	Width, Height int
	Near, Far     float32

	Params     Params
	Atmosphere Atmosphere
	NoiseSizes NoiseSizes

	Sources SourceLoader
	Logger  *zap.Logger
}

// DefaultOptions returns options with every parameter at its default. Sources
// must still be set.
func DefaultOptions(width, height int, near, far float32) Options {
	return Options{
		Width:      width,
		Height:     height,
		Near:       near,
		Far:        far,
		Params:     DefaultParams(),
		Atmosphere: DefaultAtmosphere(),
		NoiseSizes: DefaultNoiseSizes(),
	}
}

type Cloud struct {
	dev     gpu.Device
	sources SourceLoader
	log     *zap.Logger

	width, height int
	near, far     float32

	params     Params
	atmosphere Atmosphere
	stages     [numStages]stage

	noisePrograms [numStages]gpu.Program
	rayMarch      gpu.Program

	noiseMaps [numStages]gpu.Texture
	cloudMap  gpu.Texture
}

// New compiles the cloud programs and generates all textures.
func New(dev gpu.Device, opts Options) (*Cloud, error) {
	if opts.Sources == nil {
		return nil, errors.New("cloud: no shader sources")
	}
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("cloud: invalid output size %dx%d", opts.Width, opts.Height)
	}
	if opts.Near <= 0 || opts.Far <= opts.Near {
		return nil, fmt.Errorf("cloud: invalid clip planes near=%g far=%g", opts.Near, opts.Far)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	c := &Cloud{
		dev:        dev,
		sources:    opts.Sources,
		log:        log,
		width:      opts.Width,
		height:     opts.Height,
		near:       opts.Near,
		far:        opts.Far,
		params:     opts.Params,
		atmosphere: opts.Atmosphere,
		stages:     noiseStages(opts.NoiseSizes),
	}
	for _, s := range c.stages {
		if err := s.desc.Validate(); err != nil {
			return nil, fmt.Errorf("cloud: %s: %w", s.shader, err)
		}
	}

	noise, rayMarch, err := c.compilePrograms()
	if err != nil {
		return nil, err
	}
	c.setPrograms(noise, rayMarch)

	if err := c.generateTextures(); err != nil {
		c.Delete()
		return nil, err
	}
	c.log.Info("clouds ready",
		zap.Int("width", c.width),
		zap.Int("height", c.height),
	)
	return c, nil
}

func (c *Cloud) compilePrograms() (noise [numStages]gpu.Program, rayMarch gpu.Program, err error) {
	var compiled []gpu.Program
	compile := func(name string, local gpu.Size) (gpu.Program, error) {
		src, err := c.sources.Load(name, local)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		p, err := c.dev.NewComputeProgram(name, src)
		if err != nil {
			return nil, fmt.Errorf("compile %s: %w", name, err)
		}
		compiled = append(compiled, p)
		return p, nil
	}
	defer func() {
		if err != nil {
			for _, p := range compiled {
				p.Delete()
			}
		}
	}()

	for i, s := range c.stages {
		if noise[i], err = compile(s.shader, s.local); err != nil {
			return noise, nil, err
		}
	}
	rayMarch, err = compile(RayMarchShader, rayMarchLocal)
	return noise, rayMarch, err
}

func (c *Cloud) setPrograms(noise [numStages]gpu.Program, rayMarch gpu.Program) {
	c.noisePrograms = noise
	c.rayMarch = rayMarch

	c.rayMarch.Use()
	for _, s := range c.stages {
		c.rayMarch.SetInt(s.sampler, int32(s.unit))
	}
}

// generateTextures creates every texture that does not exist yet.
func (c *Cloud) generateTextures() error {
	for i := range c.stages {
		if c.noiseMaps[i] != nil {
			continue
		}
		tex, err := c.generateNoise(i, c.noisePrograms[i])
		if err != nil {
			return err
		}
		c.noiseMaps[i] = tex
	}

	if c.cloudMap == nil {
		tex, err := c.dev.NewTexture(outputDesc(c.width, c.height))
		if err != nil {
			return fmt.Errorf("cloud: allocate output: %w", err)
		}
		c.cloudMap = tex
	}
	return nil
}

// generateNoise allocates the map of stage i and fills it with prog.
func (c *Cloud) generateNoise(i int, prog gpu.Program) (gpu.Texture, error) {
	s := c.stages[i]
	tex, err := c.dev.NewTexture(s.desc)
	if err != nil {
		return nil, fmt.Errorf("cloud: allocate %s map: %w", s.sampler, err)
	}

	groups := s.groups()
	prog.Use()
	tex.BindSampler(0)
	tex.BindImage(0)
	prog.Dispatch(groups)
	c.dev.ImageBarrier()
	if s.desc.Mipmaps {
		tex.GenerateMipmap()
	}
	c.log.Debug("generated noise map",
		zap.String("program", prog.Name()),
		zap.Stringer("size", s.desc.Size()),
		zap.Stringer("format", s.desc.Format),
		zap.Uint32s("groups", []uint32{groups.X, groups.Y, groups.Z}),
	)
	return tex, nil
}

// ErrNotReady is returned by Render when a texture or program is missing,
// either after Delete or after a failed regeneration.
var ErrNotReady = errors.New("cloud: renderer not ready")

func (c *Cloud) ready() bool {
	if c.rayMarch == nil || c.cloudMap == nil {
		return false
	}
	for _, tex := range c.noiseMaps {
		if tex == nil {
			return false
		}
	}
	return true
}

// Render runs the ray-march pass for the given camera. t is the animation
// time in seconds.
func (c *Cloud) Render(cam Camera, t float32) error {
	if !c.ready() {
		return ErrNotReady
	}
	eye := cam.Eye()
	projection := mgl.Perspective(
		mgl.DegToRad(cam.FieldOfView()),
		float32(c.width)/float32(c.height),
		c.near, c.far,
	)
	p := c.params
	a := c.atmosphere

	rm := c.rayMarch
	rm.Use()
	rm.SetVec2("Resolution", mgl.Vec2{float32(c.width), float32(c.height)})
	rm.SetFloat("absorption", p.Absorption)
	rm.SetFloat("coverage", p.Coverage)
	rm.SetFloat("crispiness", p.Crispiness)
	rm.SetFloat("curliness", p.Curliness)
	rm.SetFloat("densityFactor", p.Density)
	rm.SetFloat("speed", p.Speed)
	rm.SetVec3("lightDirection", a.LightDirection.Normalize())
	rm.SetVec3("lightPosition", a.LightPosition(eye))
	rm.SetVec3("cloudColorTop", p.CloudColorTop)
	rm.SetVec3("cloudColorBottom", p.CloudColorBottom)
	rm.SetVec3("skyColorTop", p.SkyColorTop)
	rm.SetVec3("skyColorBottom", p.SkyColorBottom)

	rm.SetFloat("earthRadius", a.EarthRadius)
	rm.SetFloat("sphereInnerRadius", a.SphereInnerRadius)
	rm.SetFloat("sphereOuterRadius", a.SphereOuterRadius)

	rm.SetFloat("iTime", t)
	rm.SetVec3("cameraPosition", eye)
	rm.SetMat4("inv_projection", projection.Inv())
	rm.SetMat4("inv_view", cam.ViewMatrix().Inv())

	for i, s := range c.stages {
		c.noiseMaps[i].BindSampler(s.unit)
	}

	c.cloudMap.BindSampler(outputUnit)
	c.cloudMap.BindImage(outputUnit)
	rm.Dispatch(gpu.GroupsFor(gpu.Size{X: c.width, Y: c.height, Z: 1}, rayMarchLocal))
	c.dev.ImageBarrier()
	return nil
}

// Resize reallocates the output texture. The noise maps are kept.
func (c *Cloud) Resize(width, height int) error {
	if width <= 0 || height <= 0 {
		return fmt.Errorf("cloud: invalid output size %dx%d", width, height)
	}
	if width == c.width && height == c.height {
		return nil
	}
	if c.cloudMap != nil {
		c.cloudMap.Delete()
		c.cloudMap = nil
	}
	c.width, c.height = width, height
	c.log.Debug("resized output", zap.Int("width", width), zap.Int("height", height))
	return c.generateTextures()
}

// ReloadShaders recompiles all programs and regenerates the noise maps with
// them. If any program fails to compile or any map fails to generate, the
// current programs and maps are kept.
func (c *Cloud) ReloadShaders() error {
	noise, rayMarch, err := c.compilePrograms()
	if err != nil {
		return fmt.Errorf("cloud: reload shaders: %w", err)
	}

	var maps [numStages]gpu.Texture
	for i := range c.stages {
		if maps[i], err = c.generateNoise(i, noise[i]); err != nil {
			for _, tex := range maps {
				if tex != nil {
					tex.Delete()
				}
			}
			for _, p := range noise {
				p.Delete()
			}
			rayMarch.Delete()
			return fmt.Errorf("cloud: reload shaders: %w", err)
		}
	}

	c.deletePrograms()
	for _, tex := range c.noiseMaps {
		if tex != nil {
			tex.Delete()
		}
	}
	c.setPrograms(noise, rayMarch)
	c.noiseMaps = maps
	c.log.Info("reloaded cloud shaders")
	return nil
}

func (c *Cloud) deletePrograms() {
	for i, p := range c.noisePrograms {
		if p != nil {
			p.Delete()
			c.noisePrograms[i] = nil
		}
	}
	if c.rayMarch != nil {
		c.rayMarch.Delete()
		c.rayMarch = nil
	}
}

// Delete releases every GPU object owned by c. It is safe to call twice.
func (c *Cloud) Delete() {
	for i, tex := range c.noiseMaps {
		if tex != nil {
			tex.Delete()
			c.noiseMaps[i] = nil
		}
	}
	if c.cloudMap != nil {
		c.cloudMap.Delete()
		c.cloudMap = nil
	}
	c.deletePrograms()
}

// CloudTexture is the texture the clouds are rendered into.
func (c *Cloud) CloudTexture() gpu.Texture {
	return c.cloudMap
}

func (c *Cloud) Size() (width, height int) {
	return c.width, c.height
}

func (c *Cloud) Params() Params {
	return c.params
}

func (c *Cloud) SetParams(p Params) {
	c.params = p
}

func (c *Cloud) Atmosphere() Atmosphere {
	return c.atmosphere
}

func (c *Cloud) SetAtmosphere(a Atmosphere) {
	c.atmosphere = a
}

func (c *Cloud) SetSpeed(v float32) {
	c.params.Speed = v
}

func (c *Cloud) SetCoverage(v float32) {
	c.params.Coverage = v
}

func (c *Cloud) SetCrispiness(v float32) {
	c.params.Crispiness = v
}

func (c *Cloud) SetCurliness(v float32) {
	c.params.Curliness = v
}

func (c *Cloud) SetDensity(v float32) {
	c.params.Density = v
}

func (c *Cloud) SetAbsorption(v float32) {
	c.params.Absorption = v
}

func (c *Cloud) SetCloudColorTop(v mgl.Vec3) {
	c.params.CloudColorTop = v
}

func (c *Cloud) SetCloudColorBottom(v mgl.Vec3) {
	c.params.CloudColorBottom = v
}

func (c *Cloud) SetSkyColorTop(v mgl.Vec3) {
	c.params.SkyColorTop = v
}

func (c *Cloud) SetSkyColorBottom(v mgl.Vec3) {
	c.params.SkyColorBottom = v
}
