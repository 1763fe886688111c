// Package gputest provides a gpu.Device that records commands instead of
// rendering, for tests that assert draw sequences without a GPU.
package gputest

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
)

// Call is one recorded device command.
type Call struct {
	Op   string
	Name string
	ID   uint32
	Arg  any
}

func (c Call) String() string {
	if c.Name != "" {
		return fmt.Sprintf("%s(%s)", c.Op, c.Name)
	}
	return fmt.Sprintf("%s(%d)", c.Op, c.ID)
}

// Device records every call. Stage sources containing FailMarker fail to
// compile, and LinkError, when set, makes every link fail with that log.
type Device struct {
	mu sync.Mutex

	FailMarker string
	LinkError  string
	// Attribs lists the attributes every program consumes; nil means all.
	Attribs map[string]bool

	calls    []Call
	next     uint32
	current  gpu.ProgramID
	uniforms map[gpu.ProgramID]map[string]any
	textures map[gpu.TextureID]bool
	buffers  map[gpu.BufferID][]float32
	indices  map[gpu.BufferID][]uint32
	enabled  map[int]bool
	depth    bool
	viewport [4]int
}

// New returns a device that fails stages containing "#error".
func New() *Device {
	return &Device{
		FailMarker: "#error",
		uniforms:   make(map[gpu.ProgramID]map[string]any),
		textures:   make(map[gpu.TextureID]bool),
		buffers:    make(map[gpu.BufferID][]float32),
		indices:    make(map[gpu.BufferID][]uint32),
		enabled:    make(map[int]bool),
	}
}

func (d *Device) record(c Call) {
	d.calls = append(d.calls, c)
}

func (d *Device) id() uint32 {
	d.next++
	return d.next
}

func (d *Device) CompileShader(stage gpu.Stage, src []byte) (gpu.ShaderID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "CompileShader", Name: stage.String(), Arg: string(src)})
	if d.FailMarker != "" && bytes.Contains(src, []byte(d.FailMarker)) {
		return 0, fmt.Errorf("0:1: %s stage rejected", stage)
	}
	return gpu.ShaderID(d.id()), nil
}

func (d *Device) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "LinkProgram", ID: uint32(vs), Arg: fs})
	if d.LinkError != "" {
		return 0, errors.New(d.LinkError)
	}
	p := gpu.ProgramID(d.id())
	d.uniforms[p] = make(map[string]any)
	return p, nil
}

func (d *Device) DeleteShader(id gpu.ShaderID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "DeleteShader", ID: uint32(id)})
}

func (d *Device) DeleteProgram(id gpu.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.uniforms, id)
	d.record(Call{Op: "DeleteProgram", ID: uint32(id)})
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.current = id
	d.record(Call{Op: "UseProgram", ID: uint32(id)})
}

func (d *Device) setUniform(op, name string, v any) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if u, ok := d.uniforms[d.current]; ok {
		u[name] = v
	}
	d.record(Call{Op: op, Name: name, ID: uint32(d.current), Arg: v})
}

func (d *Device) SetUniformMat4(name string, m mgl32.Mat4) { d.setUniform("SetUniformMat4", name, m) }
func (d *Device) SetUniformVec3(name string, v mgl32.Vec3) { d.setUniform("SetUniformVec3", name, v) }
func (d *Device) SetUniformVec4(name string, v mgl32.Vec4) { d.setUniform("SetUniformVec4", name, v) }
func (d *Device) SetUniformInt(name string, v int32)       { d.setUniform("SetUniformInt", name, v) }

func (d *Device) CreateTexture(img image.Image) (gpu.TextureID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if img == nil {
		return 0, errors.New("nil image")
	}
	id := gpu.TextureID(d.id())
	d.textures[id] = true
	d.record(Call{Op: "CreateTexture", ID: uint32(id), Arg: img.Bounds()})
	return id, nil
}

func (d *Device) DeleteTexture(id gpu.TextureID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.textures, id)
	d.record(Call{Op: "DeleteTexture", ID: uint32(id)})
}

func (d *Device) BindTexture(unit int, tex gpu.TextureID, uniform string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "BindTexture", Name: uniform, ID: uint32(tex), Arg: unit})
}

func (d *Device) CreateVertexBuffer(data []float32) (gpu.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpu.BufferID(d.id())
	d.buffers[id] = append([]float32(nil), data...)
	d.record(Call{Op: "CreateVertexBuffer", ID: uint32(id), Arg: len(data)})
	return id, nil
}

func (d *Device) CreateIndexBuffer(indices []uint32) (gpu.BufferID, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	id := gpu.BufferID(d.id())
	d.indices[id] = append([]uint32(nil), indices...)
	d.record(Call{Op: "CreateIndexBuffer", ID: uint32(id), Arg: len(indices)})
	return id, nil
}

func (d *Device) DeleteBuffer(id gpu.BufferID) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.buffers, id)
	delete(d.indices, id)
	d.record(Call{Op: "DeleteBuffer", ID: uint32(id)})
}

func (d *Device) EnableAttrib(name string, buf gpu.BufferID, components int) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.Attribs != nil && !d.Attribs[name] {
		d.record(Call{Op: "EnableAttrib", Name: name, ID: uint32(buf), Arg: -1})
		return -1
	}
	loc := attribLocation(name)
	d.enabled[loc] = true
	d.record(Call{Op: "EnableAttrib", Name: name, ID: uint32(buf), Arg: components})
	return loc
}

func attribLocation(name string) int {
	switch name {
	case gpu.AttribPosition:
		return 0
	case gpu.AttribNormal:
		return 1
	case gpu.AttribTexCoord:
		return 2
	}
	return 3
}

func (d *Device) DisableAttrib(location int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.enabled, location)
	d.record(Call{Op: "DisableAttrib", ID: uint32(location)})
}

func (d *Device) DrawElements(indices gpu.BufferID, count int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "DrawElements", ID: uint32(indices), Arg: drawState{count: count, depth: d.depth, program: d.current}})
}

type drawState struct {
	count   int
	depth   bool
	program gpu.ProgramID
}

func (d *Device) Viewport(x, y, width, height int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.viewport = [4]int{x, y, width, height}
	d.record(Call{Op: "Viewport", Arg: d.viewport})
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "ClearColor", Arg: [4]float32{r, g, b, a}})
}

func (d *Device) Clear() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "Clear"})
}

func (d *Device) SetDepthTest(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.depth = enabled
	d.record(Call{Op: "SetDepthTest", Arg: enabled})
}

func (d *Device) SetBlend(enabled bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.record(Call{Op: "SetBlend", Arg: enabled})
}

// Calls returns a copy of the recorded commands.
func (d *Device) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Ops returns the recorded commands whose Op equals op.
func (d *Device) Ops(op string) []Call {
	var out []Call
	for _, c := range d.Calls() {
		if c.Op == op {
			out = append(out, c)
		}
	}
	return out
}

// Count returns how many times op was recorded.
func (d *Device) Count(op string) int { return len(d.Ops(op)) }

// Reset forgets recorded commands but keeps live objects.
func (d *Device) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = nil
}

// Uniform returns the last value set for name on program p.
func (d *Device) Uniform(p gpu.ProgramID, name string) (any, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	v, ok := d.uniforms[p][name]
	return v, ok
}

// LiveBuffers returns how many vertex and index buffers have not been deleted.
func (d *Device) LiveBuffers() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.buffers) + len(d.indices)
}

// LivePrograms returns how many linked programs have not been deleted.
func (d *Device) LivePrograms() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.uniforms)
}

// LiveTextures returns how many textures have not been deleted.
func (d *Device) LiveTextures() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.textures)
}

// EnabledAttribs returns how many attribute locations are still enabled.
func (d *Device) EnabledAttribs() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.enabled)
}

// DrawDepth reports whether the i-th DrawElements call ran with depth testing.
func (d *Device) DrawDepth(i int) bool {
	return d.Ops("DrawElements")[i].Arg.(drawState).depth
}

// DrawProgram returns the program current for the i-th DrawElements call.
func (d *Device) DrawProgram(i int) gpu.ProgramID {
	return d.Ops("DrawElements")[i].Arg.(drawState).program
}

var _ gpu.Device = (*Device)(nil)
