// Package ebitengpu implements gpu.Device on top of ebiten. Fragment stages
// are Kage programs; vertex stages are declarative (see VertexStage) and run
// on the CPU, producing screen-space triangles drawn with
// DrawTrianglesShader.
//
// Ebiten offers no depth buffer. While depth testing is enabled triangles
// are collected instead of drawn, and Flush paints them back to front across
// every draw call. With depth testing disabled draws happen immediately in
// call order.
package ebitengpu

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"maps"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// ErrNoTarget is reported through the logger when a draw happens before
// SetTarget.
var ErrNoTarget = errors.New("ebitengpu: no render target")

type shaderObject struct {
	stage    gpu.Stage
	vertex   *VertexStage
	fragment *ebiten.Shader
}

type program struct {
	vertex   *VertexStage
	fragment *ebiten.Shader
	mats     map[string]mgl32.Mat4
	vec4s    map[string]mgl32.Vec4
	uniforms map[string]any
	images   [4]gpu.TextureID
}

type attrib struct {
	name  string
	buf   gpu.BufferID
	comps int
}

// Device is a gpu.Device drawing into an ebiten image. It must only be used
// from ebiten's Draw callback goroutine.
type Device struct {
	// Light shades lambert vertex stages.
	Light Lighting

	target   *ebiten.Image
	next     uint32
	shaders  map[gpu.ShaderID]*shaderObject
	programs map[gpu.ProgramID]*program
	vertices map[gpu.BufferID][]float32
	indices  map[gpu.BufferID][]uint32
	textures map[gpu.TextureID]*texture
	current  *program
	attribs  map[int]attrib

	queue    drawList
	clear    color.RGBA
	depth    bool
	blend    bool
	viewport image.Rectangle
}

var _ gpu.Device = (*Device)(nil)

// New returns a device with default lighting and blending on. Call
// SetTarget before drawing.
func New() *Device {
	return &Device{
		Light:    DefaultLighting(),
		shaders:  make(map[gpu.ShaderID]*shaderObject),
		programs: make(map[gpu.ProgramID]*program),
		vertices: make(map[gpu.BufferID][]float32),
		indices:  make(map[gpu.BufferID][]uint32),
		textures: make(map[gpu.TextureID]*texture),
		attribs:  make(map[int]attrib),
		blend:    true,
	}
}

// SetTarget selects the image the following commands draw into. Call it at
// the start of every ebiten Draw. Triangles still queued for the previous
// target are painted first.
func (d *Device) SetTarget(img *ebiten.Image) {
	if img != d.target {
		d.Flush()
	}
	d.target = img
}

// Flush paints the triangles queued under depth testing. Call it once the
// frame is complete.
func (d *Device) Flush() {
	if d.queue.len() == 0 {
		return
	}
	if d.target == nil {
		d.queue.reset()
		return
	}
	d.queue.flush(true, d.paint)
}

func (d *Device) paint(call *drawCall, vertices []ebiten.Vertex, indices []uint16) {
	d.target.DrawTrianglesShader(vertices, indices, call.shader, &call.options)
}

func (d *Device) handle() uint32 {
	d.next++
	return d.next
}

func (d *Device) CompileShader(stage gpu.Stage, src []byte) (gpu.ShaderID, error) {
	obj := &shaderObject{stage: stage}
	switch stage {
	case gpu.StageVertex:
		vs, err := ParseVertexStage(src)
		if err != nil {
			return 0, err
		}
		obj.vertex = vs
	case gpu.StageFragment:
		s, err := ebiten.NewShader(src)
		if err != nil {
			return 0, err
		}
		obj.fragment = s
	default:
		return 0, fmt.Errorf("unsupported stage %v", stage)
	}
	id := gpu.ShaderID(d.handle())
	d.shaders[id] = obj
	return id, nil
}

func (d *Device) LinkProgram(vs, fs gpu.ShaderID) (gpu.ProgramID, error) {
	v, ok := d.shaders[vs]
	if !ok || v.stage != gpu.StageVertex {
		return 0, fmt.Errorf("shader %d is not a vertex stage", vs)
	}
	f, ok := d.shaders[fs]
	if !ok || f.stage != gpu.StageFragment {
		return 0, fmt.Errorf("shader %d is not a fragment stage", fs)
	}
	id := gpu.ProgramID(d.handle())
	d.programs[id] = &program{
		vertex:   v.vertex,
		fragment: f.fragment,
		mats:     make(map[string]mgl32.Mat4),
		vec4s:    make(map[string]mgl32.Vec4),
		uniforms: make(map[string]any),
	}
	return id, nil
}

// DeleteShader forgets the stage. Linked programs keep their own reference.
func (d *Device) DeleteShader(id gpu.ShaderID) {
	delete(d.shaders, id)
}

// DeleteProgram forgets the program. Triangles already queued keep drawing
// with it until the next Flush.
func (d *Device) DeleteProgram(id gpu.ProgramID) {
	if p, ok := d.programs[id]; ok && p == d.current {
		d.current = nil
	}
	delete(d.programs, id)
}

func (d *Device) UseProgram(id gpu.ProgramID) {
	d.current = d.programs[id]
}

func (d *Device) SetUniformMat4(name string, m mgl32.Mat4) {
	if p := d.current; p != nil {
		p.mats[name] = m
		p.uniforms[name] = m[:]
	}
}

func (d *Device) SetUniformVec3(name string, v mgl32.Vec3) {
	if p := d.current; p != nil {
		p.uniforms[name] = v[:]
	}
}

func (d *Device) SetUniformVec4(name string, v mgl32.Vec4) {
	if p := d.current; p != nil {
		p.vec4s[name] = v
		p.uniforms[name] = v[:]
	}
}

func (d *Device) SetUniformInt(name string, v int32) {
	if p := d.current; p != nil {
		p.uniforms[name] = int(v)
	}
}

func (d *Device) CreateTexture(img image.Image) (gpu.TextureID, error) {
	if img == nil || img.Bounds().Empty() {
		return 0, errors.New("ebitengpu: empty texture")
	}
	id := gpu.TextureID(d.handle())
	d.textures[id] = &texture{src: img}
	return id, nil
}

// BindTexture attaches tex to image slot unit of the current program. Kage
// addresses images by slot, so the uniform name is not used.
func (d *Device) BindTexture(unit int, tex gpu.TextureID, _ string) {
	p := d.current
	if p == nil || unit < 0 || unit >= len(p.images) {
		return
	}
	p.images[unit] = tex
}

func (d *Device) DeleteTexture(id gpu.TextureID) {
	if t, ok := d.textures[id]; ok {
		t.dispose()
		delete(d.textures, id)
	}
}

func (d *Device) CreateVertexBuffer(data []float32) (gpu.BufferID, error) {
	id := gpu.BufferID(d.handle())
	d.vertices[id] = append([]float32(nil), data...)
	return id, nil
}

func (d *Device) CreateIndexBuffer(indices []uint32) (gpu.BufferID, error) {
	id := gpu.BufferID(d.handle())
	d.indices[id] = append([]uint32(nil), indices...)
	return id, nil
}

func (d *Device) DeleteBuffer(id gpu.BufferID) {
	delete(d.vertices, id)
	delete(d.indices, id)
}

func (d *Device) EnableAttrib(name string, buf gpu.BufferID, components int) int {
	p := d.current
	if p == nil {
		return -1
	}
	loc := p.vertex.Location(name)
	if loc < 0 {
		return -1
	}
	d.attribs[loc] = attrib{name: name, buf: buf, comps: components}
	return loc
}

func (d *Device) DisableAttrib(location int) {
	delete(d.attribs, location)
}

func (d *Device) streams() streams {
	var s streams
	for _, a := range d.attribs {
		data := d.vertices[a.buf]
		switch a.name {
		case gpu.AttribPosition:
			s.positions, s.posComps = data, a.comps
		case gpu.AttribNormal:
			s.normals, s.normComps = data, a.comps
		case gpu.AttribTexCoord:
			s.texCoords, s.texComps = data, a.comps
		}
	}
	return s
}

// images resolves the bound textures at the size of the first one.
func (d *Device) images(p *program) ([4]*ebiten.Image, image.Point) {
	var out [4]*ebiten.Image
	var size image.Point
	for i, id := range p.images {
		t, ok := d.textures[id]
		if !ok {
			continue
		}
		if size == (image.Point{}) {
			size = t.size()
		}
		out[i] = t.at(size)
	}
	return out, size
}

func (d *Device) DrawElements(buf gpu.BufferID, count int) {
	p := d.current
	if p == nil {
		return
	}
	if d.target == nil {
		core.Logger().Error("draw skipped", "err", ErrNoTarget)
		return
	}
	idx := d.indices[buf]
	if count < len(idx) {
		idx = idx[:count]
	}
	s := d.streams()
	if s.posComps == 0 {
		return
	}

	base := mgl32.Vec4{1, 1, 1, 1}
	if p.vertex.Color != "" {
		if c, ok := p.vec4s[p.vertex.Color]; ok {
			base = c
		}
	}
	imgs, texSize := d.images(p)
	params := rasterParams{
		mvp:       p.vertex.Matrix(p.mats),
		normalMat: p.vertex.NormalMatrix(p.mats),
		lambert:   p.vertex.Lighting == LightingLambert,
		light:     d.Light,
		base:      base,
		viewport:  d.viewportRect(),
		texSize:   texSize,
	}
	tris := rasterize(s, idx, params)

	call := &drawCall{
		shader: p.fragment,
		options: ebiten.DrawTrianglesShaderOptions{
			Uniforms: maps.Clone(p.uniforms),
			Images:   imgs,
		},
	}
	if !d.blend {
		call.options.Blend = ebiten.BlendCopy
	}
	if d.depth {
		d.queue.add(call, tris)
		return
	}
	var now drawList
	now.add(call, tris)
	now.flush(false, d.paint)
}

// viewportRect converts the bottom-left based viewport to target pixels.
func (d *Device) viewportRect() image.Rectangle {
	if d.viewport.Empty() {
		return d.target.Bounds()
	}
	h := d.target.Bounds().Dy()
	v := d.viewport
	return image.Rect(v.Min.X, h-v.Max.Y, v.Max.X, h-v.Min.Y)
}

func (d *Device) Viewport(x, y, width, height int) {
	d.viewport = image.Rect(x, y, x+width, y+height)
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.clear = color.RGBA{R: channel(r * a), G: channel(g * a), B: channel(b * a), A: channel(a)}
}

func channel(f float32) uint8 {
	return uint8(min(max(f, 0), 1)*255 + 0.5)
}

// Clear fills the target and drops any queued triangles.
func (d *Device) Clear() {
	d.queue.reset()
	if d.target != nil {
		d.target.Fill(d.clear)
	}
}

// SetDepthTest toggles depth sorting. Turning it off paints what was queued
// so that later draws land on top.
func (d *Device) SetDepthTest(enabled bool) {
	if d.depth && !enabled {
		d.Flush()
	}
	d.depth = enabled
}

func (d *Device) SetBlend(enabled bool) { d.blend = enabled }
