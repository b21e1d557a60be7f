package cloud

import (
	"errors"
	"fmt"

	mgl "github.com/go-gl/mathgl/mgl32"

	"github.com/xopoww/go-volcloud/gpu"
)

// fakeDevice records GPU commands as strings so tests can assert on order.
type fakeDevice struct {
	ops      []string
	nextID   uint32
	programs []*fakeProgram
	textures []*fakeTexture

	failCompile map[string]bool
	failTexture bool
	// when limitTextures is set, only textureBudget more allocations succeed
	limitTextures bool
	textureBudget int
}

func newFakeDevice() *fakeDevice {
	return &fakeDevice{failCompile: make(map[string]bool)}
}

func (d *fakeDevice) record(format string, args ...interface{}) {
	d.ops = append(d.ops, fmt.Sprintf(format, args...))
}

func (d *fakeDevice) reset() {
	d.ops = nil
}

func (d *fakeDevice) NewComputeProgram(name, source string) (gpu.Program, error) {
	if d.failCompile[name] {
		return nil, errors.New("syntax error")
	}
	d.nextID++
	p := &fakeProgram{
		dev:      d,
		id:       d.nextID,
		name:     name,
		source:   source,
		ints:     make(map[string]int32),
		floats:   make(map[string]float32),
		vec2s:    make(map[string]mgl.Vec2),
		vec3s:    make(map[string]mgl.Vec3),
		mat4s:    make(map[string]mgl.Mat4),
		uniforms: make(map[string]int),
	}
	d.programs = append(d.programs, p)
	d.record("compile %s", name)
	return p, nil
}

func (d *fakeDevice) NewTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if d.failTexture || (d.limitTextures && d.textureBudget <= 0) {
		return nil, errors.New("out of memory")
	}
	d.textureBudget--
	d.nextID++
	t := &fakeTexture{dev: d, id: d.nextID, desc: desc}
	d.textures = append(d.textures, t)
	d.record("texture %s %s %s", desc.Target, desc.Size(), desc.Format)
	return t, nil
}

func (d *fakeDevice) ImageBarrier() {
	d.record("barrier")
}

func (d *fakeDevice) live() (programs, textures int) {
	for _, p := range d.programs {
		if !p.deleted {
			programs++
		}
	}
	for _, t := range d.textures {
		if !t.deleted {
			textures++
		}
	}
	return programs, textures
}

type fakeProgram struct {
	dev     *fakeDevice
	id      uint32
	name    string
	source  string
	deleted bool

	ints     map[string]int32
	floats   map[string]float32
	vec2s    map[string]mgl.Vec2
	vec3s    map[string]mgl.Vec3
	mat4s    map[string]mgl.Mat4
	uniforms map[string]int
}

func (p *fakeProgram) Name() string { return p.name }

func (p *fakeProgram) Use() { p.dev.record("use %s", p.name) }

func (p *fakeProgram) SetInt(name string, v int32) {
	p.ints[name] = v
	p.uniforms[name]++
}

func (p *fakeProgram) SetFloat(name string, v float32) {
	p.floats[name] = v
	p.uniforms[name]++
}

func (p *fakeProgram) SetVec2(name string, v mgl.Vec2) {
	p.vec2s[name] = v
	p.uniforms[name]++
}

func (p *fakeProgram) SetVec3(name string, v mgl.Vec3) {
	p.vec3s[name] = v
	p.uniforms[name]++
}

func (p *fakeProgram) SetMat4(name string, v mgl.Mat4) {
	p.mat4s[name] = v
	p.uniforms[name]++
}

func (p *fakeProgram) Dispatch(g gpu.Groups) {
	p.dev.record("dispatch %s %d %d %d", p.name, g.X, g.Y, g.Z)
}

func (p *fakeProgram) Delete() {
	if p.deleted {
		panic("program deleted twice: " + p.name)
	}
	p.deleted = true
}

type fakeTexture struct {
	dev     *fakeDevice
	id      uint32
	desc    gpu.TextureDesc
	deleted bool
}

func (t *fakeTexture) ID() uint32 { return t.id }

func (t *fakeTexture) Desc() gpu.TextureDesc { return t.desc }

func (t *fakeTexture) BindSampler(unit uint32) {
	t.dev.record("sampler %d %s", unit, t.desc.Size())
}

func (t *fakeTexture) BindImage(unit uint32) {
	t.dev.record("image %d %s", unit, t.desc.Size())
}

func (t *fakeTexture) GenerateMipmap() {
	t.dev.record("mipmap %s", t.desc.Size())
}

func (t *fakeTexture) Delete() {
	if t.deleted {
		panic("texture deleted twice")
	}
	t.deleted = true
}

// fakeSources serves "// <name> <local size>" as the source of every shader.
type fakeSources struct {
	missing map[string]bool
}

func (s fakeSources) Load(name string, local gpu.Size) (string, error) {
	if s.missing[name] {
		return "", fmt.Errorf("open %s: file does not exist", name)
	}
	return fmt.Sprintf("// %s %s", name, local), nil
}

type fakeCamera struct {
	eye  mgl.Vec3
	view mgl.Mat4
	fov  float32
}

func (c fakeCamera) Eye() mgl.Vec3 { return c.eye }

func (c fakeCamera) ViewMatrix() mgl.Mat4 { return c.view }

func (c fakeCamera) FieldOfView() float32 { return c.fov }
