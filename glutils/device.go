package glutils

import (
	"fmt"

	"github.com/go-gl/gl/v4.6-core/gl"
	"go.uber.org/zap"

	"github.com/xopoww/go-volcloud/gpu"
)

// Device implements gpu.Device on the current OpenGL 4.3+ context. All
// methods must be called from the thread that owns the context.
type Device struct {
	log *zap.Logger
}

var _ gpu.Device = (*Device)(nil)

func NewDevice(log *zap.Logger) *Device {
	if log == nil {
		log = zap.NewNop()
	}
	return &Device{log: log}
}

func (d *Device) NewComputeProgram(name, source string) (gpu.Program, error) {
	p, err := NewComputeProgram(name, source, d.log)
	if err != nil {
		return nil, err
	}
	d.log.Debug("compiled compute program", zap.String("name", name), zap.Uint32("id", p.ID()))
	return p, nil
}

func (d *Device) NewTexture(desc gpu.TextureDesc) (gpu.Texture, error) {
	if err := desc.Validate(); err != nil {
		return nil, err
	}
	internal, err := internalFormat(desc.Format)
	if err != nil {
		return nil, err
	}

	t := &Texture{desc: desc, target: glTarget(desc.Target), internal: internal}
	gl.GenTextures(1, &t.id)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(t.target, t.id)

	switch desc.Target {
	case gpu.Texture3D:
		gl.TexImage3D(
			t.target, 0, int32(internal),
			int32(desc.Width), int32(desc.Height), int32(desc.Depth),
			0, gl.RGBA, gl.FLOAT, nil,
		)
		gl.TexParameteri(t.target, gl.TEXTURE_WRAP_R, gl.REPEAT)
	default:
		gl.TexImage2D(
			t.target, 0, int32(internal),
			int32(desc.Width), int32(desc.Height),
			0, gl.RGBA, gl.FLOAT, nil,
		)
	}
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_S, gl.REPEAT)
	gl.TexParameteri(t.target, gl.TEXTURE_WRAP_T, gl.REPEAT)
	gl.TexParameteri(t.target, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	if desc.Mipmaps {
		gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
	} else {
		gl.TexParameteri(t.target, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	}
	gl.BindTexture(t.target, 0)

	if err := CheckError(); err != nil {
		gl.DeleteTextures(1, &t.id)
		return nil, fmt.Errorf("allocate %s %s texture %s: %w", desc.Format, desc.Target, desc.Size(), err)
	}
	return t, nil
}

// Image stores must be visible to later image loads, to sampler fetches and
// to glGetTexImage readback (screenshots).
const imageBarrierBits = gl.SHADER_IMAGE_ACCESS_BARRIER_BIT |
	gl.TEXTURE_FETCH_BARRIER_BIT |
	gl.TEXTURE_UPDATE_BARRIER_BIT

func (d *Device) ImageBarrier() {
	gl.MemoryBarrier(imageBarrierBits)
}

func glTarget(t gpu.Target) uint32 {
	if t == gpu.Texture3D {
		return gl.TEXTURE_3D
	}
	return gl.TEXTURE_2D
}

func internalFormat(f gpu.Format) (uint32, error) {
	switch f {
	case gpu.RGBA8:
		return gl.RGBA8, nil
	case gpu.RGBA32F:
		return gl.RGBA32F, nil
	}
	return 0, fmt.Errorf("unsupported texture format %s", f)
}

type Texture struct {
	id       uint32
	target   uint32
	internal uint32
	desc     gpu.TextureDesc
}

func (t *Texture) ID() uint32 {
	return t.id
}

func (t *Texture) Desc() gpu.TextureDesc {
	return t.desc
}

func (t *Texture) BindSampler(unit uint32) {
	gl.ActiveTexture(gl.TEXTURE0 + unit)
	gl.BindTexture(t.target, t.id)
}

func (t *Texture) BindImage(unit uint32) {
	layered := t.desc.Target == gpu.Texture3D
	gl.BindImageTexture(unit, t.id, 0, layered, 0, gl.READ_WRITE, t.internal)
}

func (t *Texture) GenerateMipmap() {
	gl.BindTexture(t.target, t.id)
	gl.GenerateMipmap(t.target)
}

func (t *Texture) Delete() {
	gl.DeleteTextures(1, &t.id)
	t.id = 0
}
