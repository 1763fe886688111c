package geometry

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/linalg"
	"github.com/axehen/hengine/engine/shader"
	"github.com/go-gl/mathgl/mgl32"
)

// ErrInvalidGeometry is returned by constructors for buffers that cannot form
// a triangle list.
var ErrInvalidGeometry = errors.New("geometry: invalid geometry")

const (
	coordsPerVertex    = 3
	texCoordsPerVertex = 2
)

// Resolver turns a descriptor into a compiled program. *shader.Cache
// implements it.
type Resolver interface {
	Resolve(desc shader.Descriptor) (*shader.Program, error)
}

// MeshData is decoded CPU-side geometry.
type MeshData struct {
	Positions []float32 // 3 per vertex
	Normals   []float32 // 3 per vertex, optional
	TexCoords []float32 // 2 per vertex
	Indices   []uint32  // triangle list
}

// Validate checks that the buffers describe a triangle list.
func (d MeshData) Validate() error {
	if len(d.Positions)%coordsPerVertex != 0 {
		return fmt.Errorf("%w: %d position values is not divisible by %d", ErrInvalidGeometry, len(d.Positions), coordsPerVertex)
	}
	if d.Normals != nil && len(d.Normals)%coordsPerVertex != 0 {
		return fmt.Errorf("%w: %d normal values is not divisible by %d", ErrInvalidGeometry, len(d.Normals), coordsPerVertex)
	}
	if len(d.Indices)%coordsPerVertex != 0 {
		return fmt.Errorf("%w: %d indices is not divisible by %d", ErrInvalidGeometry, len(d.Indices), coordsPerVertex)
	}
	vertices := len(d.Positions) / coordsPerVertex
	if d.Normals != nil && len(d.Normals)/coordsPerVertex != vertices {
		return fmt.Errorf("%w: %d normals for %d vertices", ErrInvalidGeometry, len(d.Normals)/coordsPerVertex, vertices)
	}
	if d.TexCoords != nil && len(d.TexCoords) != vertices*texCoordsPerVertex {
		return fmt.Errorf("%w: %d texture coordinates for %d vertices", ErrInvalidGeometry, len(d.TexCoords), vertices)
	}
	for _, idx := range d.Indices {
		if int(idx) >= vertices {
			return fmt.Errorf("%w: index %d out of range for %d vertices", ErrInvalidGeometry, idx, vertices)
		}
	}
	return nil
}

// Mesh is a single triangle list drawn with one program. CPU arrays are kept
// immutable; GPU buffers are created by Load and freed by Release.
type Mesh struct {
	data MeshData
	desc shader.Descriptor

	mu      sync.Mutex
	loaded  bool
	holders int // drawables that acquired the mesh
	program *shader.Program
	buffers struct {
		positions, normals, texCoords, indices gpu.BufferID
	}
}

// NewMesh validates data and takes ownership of it.
func NewMesh(data MeshData, desc shader.Descriptor) (*Mesh, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}
	return &Mesh{data: data, desc: desc}, nil
}

// Descriptor, VertexCount and IndexCount describe the CPU-side data.
func (m *Mesh) Descriptor() shader.Descriptor { return m.desc }
func (m *Mesh) VertexCount() int               { return len(m.data.Positions) / coordsPerVertex }
func (m *Mesh) IndexCount() int                { return len(m.data.Indices) }

// Loaded reports whether GPU buffers are allocated.
func (m *Mesh) Loaded() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loaded
}

// Load resolves the program and allocates GPU buffers. Calling it again on a
// loaded mesh does nothing. A failed load leaves nothing allocated.
func (m *Mesh) Load(dev gpu.Device, r Resolver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.load(dev, r)
}

// acquire loads the mesh on behalf of one drawable. A mesh shared by several
// drawables stays loaded until every one of them has called drop.
func (m *Mesh) acquire(dev gpu.Device, r Resolver) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.load(dev, r); err != nil {
		return err
	}
	m.holders++
	return nil
}

// drop undoes one acquire and frees the buffers once no drawable holds the
// mesh.
func (m *Mesh) drop(dev gpu.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.holders > 0 {
		m.holders--
	}
	if m.holders == 0 {
		m.free(dev)
	}
}

func (m *Mesh) load(dev gpu.Device, r Resolver) (err error) {
	if m.loaded {
		return nil
	}
	program, err := r.Resolve(m.desc)
	if err != nil {
		return err
	}

	var created []gpu.BufferID
	defer func() {
		if err != nil {
			for _, id := range created {
				dev.DeleteBuffer(id)
			}
		}
	}()
	vertex := func(data []float32) (gpu.BufferID, error) {
		id, err := dev.CreateVertexBuffer(data)
		if err == nil {
			created = append(created, id)
		}
		return id, err
	}

	if m.buffers.positions, err = vertex(m.data.Positions); err != nil {
		return fmt.Errorf("geometry: position buffer: %w", err)
	}
	if m.data.Normals != nil {
		if m.buffers.normals, err = vertex(m.data.Normals); err != nil {
			return fmt.Errorf("geometry: normal buffer: %w", err)
		}
	}
	if m.data.TexCoords != nil {
		if m.buffers.texCoords, err = vertex(m.data.TexCoords); err != nil {
			return fmt.Errorf("geometry: texcoord buffer: %w", err)
		}
	}
	if m.buffers.indices, err = dev.CreateIndexBuffer(m.data.Indices); err != nil {
		return fmt.Errorf("geometry: index buffer: %w", err)
	}

	m.program = program
	m.loaded = true
	core.Logger().Debug("mesh loaded",
		slog.String("shader", m.desc.Asset),
		slog.Int("vertices", m.VertexCount()),
		slog.Int("indices", m.IndexCount()))
	return nil
}

// Release frees the GPU buffers whoever holds them. The mesh may be loaded
// again afterwards.
func (m *Mesh) Release(dev gpu.Device) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.holders = 0
	m.free(dev)
}

func (m *Mesh) free(dev gpu.Device) {
	if !m.loaded {
		return
	}
	for _, id := range []gpu.BufferID{m.buffers.positions, m.buffers.normals, m.buffers.texCoords, m.buffers.indices} {
		if id != 0 {
			dev.DeleteBuffer(id)
		}
	}
	m.buffers.positions, m.buffers.normals, m.buffers.texCoords, m.buffers.indices = 0, 0, 0, 0
	m.program = nil
	m.loaded = false
}

// Draw renders the mesh translated by position and then rotated by rotation
// (axis x/y/z, angle w in degrees) about the origin. Unloaded meshes are
// skipped.
func (m *Mesh) Draw(dev gpu.Device, position, rotation linalg.Vector) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.loaded {
		return
	}
	m.program.Bind(dev)
	dev.SetUniformMat4(gpu.UniformModel, ModelMatrix(position, rotation))

	enabled := make([]int, 0, 3)
	enable := func(name string, buf gpu.BufferID, components int) {
		if buf == 0 {
			return
		}
		if loc := dev.EnableAttrib(name, buf, components); loc >= 0 {
			enabled = append(enabled, loc)
		}
	}
	enable(gpu.AttribPosition, m.buffers.positions, coordsPerVertex)
	enable(gpu.AttribNormal, m.buffers.normals, coordsPerVertex)
	enable(gpu.AttribTexCoord, m.buffers.texCoords, texCoordsPerVertex)

	dev.DrawElements(m.buffers.indices, len(m.data.Indices))

	for _, loc := range enabled {
		dev.DisableAttrib(loc)
	}
}

// ModelMatrix builds translate(position) · rotate(angle, axis). Missing
// components count as zero; a zero axis or angle means no rotation.
func ModelMatrix(position, rotation linalg.Vector) mgl32.Mat4 {
	model := mgl32.Translate3D(component(position, 0), component(position, 1), component(position, 2))
	axis := mgl32.Vec3{component(rotation, 0), component(rotation, 1), component(rotation, 2)}
	angle := component(rotation, 3)
	if angle == 0 || axis.Len() == 0 {
		return model
	}
	return model.Mul4(mgl32.HomogRotate3D(mgl32.DegToRad(angle), axis.Normalize()))
}

func component(v linalg.Vector, i int) float32 {
	if i < len(v) {
		return float32(v[i])
	}
	return 0
}
