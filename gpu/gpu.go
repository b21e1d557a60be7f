// Package gpu describes the small set of GPU operations the cloud renderer
// needs: compute programs, textures and image barriers.
package gpu

import (
	"fmt"

	mgl "github.com/go-gl/mathgl/mgl32"
)

type Target int

const (
	Texture2D Target = iota
	Texture3D
)

func (t Target) String() string {
	switch t {
	case Texture2D:
		return "2D"
	case Texture3D:
		return "3D"
	}
	return fmt.Sprintf("Target(%d)", int(t))
}

type Format int

const (
	RGBA8 Format = iota
	RGBA32F
)

func (f Format) String() string {
	switch f {
	case RGBA8:
		return "RGBA8"
	case RGBA32F:
		return "RGBA32F"
	}
	return fmt.Sprintf("Format(%d)", int(f))
}

// TextureDesc describes a texture to allocate. Depth is ignored for 2D textures.
type TextureDesc struct {
	Target  Target
	Width   int
	Height  int
	Depth   int
	Format  Format
	Mipmaps bool
}

func (d TextureDesc) Size() Size {
	if d.Target == Texture2D {
		return Size{d.Width, d.Height, 1}
	}
	return Size{d.Width, d.Height, d.Depth}
}

func (d TextureDesc) Validate() error {
	s := d.Size()
	if s.X <= 0 || s.Y <= 0 || s.Z <= 0 {
		return fmt.Errorf("invalid %s texture size %v", d.Target, s)
	}
	return nil
}

// Size is a 3D extent, used both for texture sizes and work-group sizes.
type Size struct {
	X, Y, Z int
}

func (s Size) String() string {
	return fmt.Sprintf("%dx%dx%d", s.X, s.Y, s.Z)
}

// Groups is the number of work-groups of a compute dispatch.
type Groups struct {
	X, Y, Z uint32
}

// CeilDiv returns the smallest n such that n*b >= a.
func CeilDiv(a, b int) int {
	if b <= 0 {
		panic(fmt.Sprintf("gpu: CeilDiv by %d", b))
	}
	return (a + b - 1) / b
}

// GroupsFor returns how many work-groups of the given local size cover size.
func GroupsFor(size, local Size) Groups {
	return Groups{
		X: uint32(CeilDiv(size.X, local.X)),
		Y: uint32(CeilDiv(size.Y, local.Y)),
		Z: uint32(CeilDiv(size.Z, local.Z)),
	}
}

type Device interface {
	NewComputeProgram(name, source string) (Program, error)
	NewTexture(desc TextureDesc) (Texture, error)
	// ImageBarrier makes image stores of previous dispatches visible to
	// later image loads, texture fetches and texture readback.
	ImageBarrier()
}

type Program interface {
	Name() string
	Use()
	SetInt(name string, v int32)
	SetFloat(name string, v float32)
	SetVec2(name string, v mgl.Vec2)
	SetVec3(name string, v mgl.Vec3)
	SetMat4(name string, v mgl.Mat4)
	// Dispatch runs the program, which must be in use.
	Dispatch(g Groups)
	Delete()
}

type Texture interface {
	ID() uint32
	Desc() TextureDesc
	// BindSampler binds the texture to texture unit `unit`.
	BindSampler(unit uint32)
	// BindImage binds level 0 to image unit `unit` for read-write access.
	// 3D textures are bound layered.
	BindImage(unit uint32)
	GenerateMipmap()
	Delete()
}
