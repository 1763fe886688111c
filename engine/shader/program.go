package shader

import (
	"errors"
	"fmt"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

var (
	ErrShaderCompile = errors.New("shader: compile failed")
	ErrShaderLink    = errors.New("shader: link failed")
)

// CompileError carries the failing stage and the compiler log.
type CompileError struct {
	Asset string
	Stage gpu.Stage
	Log   string
}

func (e *CompileError) Error() string {
	return fmt.Sprintf("shader %q: %s stage: %s", e.Asset, e.Stage, e.Log)
}

func (e *CompileError) Is(target error) bool { return target == ErrShaderCompile }

// LinkError carries the linker log.
type LinkError struct {
	Asset string
	Log   string
}

func (e *LinkError) Error() string {
	return fmt.Sprintf("shader %q: link: %s", e.Asset, e.Log)
}

func (e *LinkError) Is(target error) bool { return target == ErrShaderLink }

type boundTexture struct {
	id      gpu.TextureID
	uniform string
}

// Program is a linked GPU program plus the bindings applied every time it is
// bound. It is immutable once created.
type Program struct {
	desc     Descriptor
	id       gpu.ProgramID
	textures []boundTexture
	colors   []UniformColor
}

// ID and Descriptor identify the program.
func (p *Program) ID() gpu.ProgramID      { return p.id }
func (p *Program) Descriptor() Descriptor { return p.desc }

// Bind makes p current and re-applies its textures and colours. Nothing is
// assumed to survive a switch to another program.
func (p *Program) Bind(dev gpu.Device) {
	dev.UseProgram(p.id)
	for unit, t := range p.textures {
		dev.BindTexture(unit, t.id, t.uniform)
	}
	for _, c := range p.colors {
		dev.SetUniformVec4(c.Name, mgl32.Vec4{float32(c.R), float32(c.G), float32(c.B), float32(c.A)})
	}
}
