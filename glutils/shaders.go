package glutils

import (
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.6-core/gl"
	mgl "github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/xopoww/go-volcloud/gpu"
)

// Simple struct to hold information needed to compile a shader
type ShaderSource struct {
	name       string
	source     string
	shaderType uint32
}

func NewShaderSource(name, source string, shaderType uint32) ShaderSource {
	return ShaderSource{
		name:       name,
		source:     source + "\x00",
		shaderType: shaderType,
	}
}

func (ss ShaderSource) compile() (uint32, error) {
	shader := gl.CreateShader(ss.shaderType)

	csources, free := gl.Strs(ss.source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		gllog := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(gllog))
		gl.DeleteShader(shader)

		return 0, fmt.Errorf("failed to compile %s:\n%v", ss.name, strings.TrimRight(gllog, "\x00"))
	}

	return shader, nil
}

// Compile and link OpenGL program with shaders compiled from shaderSrcs
func CreateProgram(shaderSrcs ...ShaderSource) (uint32, error) {
	program := gl.CreateProgram()

	var shaders []uint32
	defer func() {
		for _, shader := range shaders {
			gl.DeleteShader(shader)
		}
	}()
	for _, shaderSrc := range shaderSrcs {
		shader, err := shaderSrc.compile()
		if err != nil {
			gl.DeleteProgram(program)
			return 0, err
		}
		gl.AttachShader(program, shader)
		shaders = append(shaders, shader)
	}

	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		gllog := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(gllog))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("link error: %s", strings.TrimRight(gllog, "\x00"))
	}

	return program, nil
}

// ComputeProgram is a linked program with a single compute shader. Uniform
// locations are looked up by name once and cached.
type ComputeProgram struct {
	id        uint32
	name      string
	locations map[string]int32
	log       *zap.Logger
}

var _ gpu.Program = (*ComputeProgram)(nil)

func NewComputeProgram(name, source string, log *zap.Logger) (*ComputeProgram, error) {
	id, err := CreateProgram(NewShaderSource(name, source, gl.COMPUTE_SHADER))
	if err != nil {
		return nil, err
	}
	return &ComputeProgram{
		id:        id,
		name:      name,
		locations: make(map[string]int32),
		log:       log,
	}, nil
}

func (p *ComputeProgram) ID() uint32 {
	return p.id
}

func (p *ComputeProgram) Name() string {
	return p.name
}

func (p *ComputeProgram) Use() {
	gl.UseProgram(p.id)
}

// location returns -1 for uniforms the compiler optimized out; GL ignores
// writes to -1.
func (p *ComputeProgram) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := GetUniformLocation(p.id, name)
	if loc == -1 {
		p.log.Debug("uniform not active", zap.String("program", p.name), zap.String("uniform", name))
	}
	p.locations[name] = loc
	return loc
}

func (p *ComputeProgram) SetInt(name string, v int32) {
	gl.Uniform1i(p.location(name), v)
}

func (p *ComputeProgram) SetFloat(name string, v float32) {
	gl.Uniform1f(p.location(name), v)
}

func (p *ComputeProgram) SetVec2(name string, v mgl.Vec2) {
	gl.Uniform2f(p.location(name), v.X(), v.Y())
}

func (p *ComputeProgram) SetVec3(name string, v mgl.Vec3) {
	gl.Uniform3f(p.location(name), v.X(), v.Y(), v.Z())
}

func (p *ComputeProgram) SetMat4(name string, v mgl.Mat4) {
	gl.UniformMatrix4fv(p.location(name), 1, false, &v[0])
}

func (p *ComputeProgram) Dispatch(g gpu.Groups) {
	gl.DispatchCompute(g.X, g.Y, g.Z)
}

func (p *ComputeProgram) Delete() {
	gl.DeleteProgram(p.id)
	p.id = 0
}
