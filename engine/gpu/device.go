// Package gpu defines the command surface the rendering core drives. It
// mirrors a GLES-style state machine: a program is made current with
// UseProgram and uniform setters apply to that program.
//
// Every method must be called from the goroutine that owns the graphics
// context (the render thread).
package gpu

import (
	"image"

	"github.com/go-gl/mathgl/mgl32"
)

// Stage identifies a programmable pipeline stage.
type Stage int

const (
	StageVertex Stage = iota
	StageFragment
)

func (s Stage) String() string {
	switch s {
	case StageVertex:
		return "vertex"
	case StageFragment:
		return "fragment"
	}
	return "unknown"
}

// Handles are opaque, non-zero for live objects.
type (
	ShaderID  uint32
	ProgramID uint32
	BufferID  uint32
	TextureID uint32
)

// Uniform names shared by the core and every shader asset.
const (
	UniformCamPos     = "CamPos"
	UniformView       = "View"
	UniformProjection = "Projection"
	UniformModel      = "Model"
	UniformTransform  = "Transform"
	UniformPressed    = "Pressed"
)

// Attribute names shared by the core and every vertex stage.
const (
	AttribPosition = "Position"
	AttribNormal   = "Normal"
	AttribTexCoord = "TexCoord"
)

// Device is a graphics context.
type Device interface {
	// CompileShader compiles one stage. On failure the error text is the
	// compiler diagnostic.
	CompileShader(stage Stage, src []byte) (ShaderID, error)
	// LinkProgram links a vertex and a fragment stage. On failure the error
	// text is the linker diagnostic.
	LinkProgram(vs, fs ShaderID) (ProgramID, error)
	DeleteShader(id ShaderID)
	DeleteProgram(id ProgramID)
	UseProgram(id ProgramID)

	SetUniformMat4(name string, m mgl32.Mat4)
	SetUniformVec3(name string, v mgl32.Vec3)
	SetUniformVec4(name string, v mgl32.Vec4)
	SetUniformInt(name string, v int32)

	CreateTexture(img image.Image) (TextureID, error)
	// BindTexture attaches tex to sampler unit and names it uniform in the
	// current program.
	BindTexture(unit int, tex TextureID, uniform string)
	DeleteTexture(id TextureID)

	CreateVertexBuffer(data []float32) (BufferID, error)
	CreateIndexBuffer(indices []uint32) (BufferID, error)
	DeleteBuffer(id BufferID)

	// EnableAttrib feeds buf to the named attribute of the current program,
	// components floats per vertex. It returns the attribute location, or -1
	// when the program does not consume the attribute (nothing is enabled).
	EnableAttrib(name string, buf BufferID, components int) int
	DisableAttrib(location int)
	// DrawElements draws count indices from buf as a triangle list.
	DrawElements(indices BufferID, count int)

	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	Clear()
	SetDepthTest(enabled bool)
	SetBlend(enabled bool)
}
