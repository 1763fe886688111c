package ebitengpu

import (
	"image"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

// maxBatchVertices keeps a batch addressable by uint16 indices.
const maxBatchVertices = 65000

// streams are the enabled attribute arrays of one draw call. Normals and
// texCoords may be nil.
type streams struct {
	positions []float32
	posComps  int
	normals   []float32
	normComps int
	texCoords []float32
	texComps  int
}

func (s streams) vertexCount() int {
	if s.posComps <= 0 {
		return 0
	}
	return len(s.positions) / s.posComps
}

func (s streams) position(i int) mgl32.Vec4 {
	p := mgl32.Vec4{0, 0, 0, 1}
	copy(p[:min(s.posComps, 3)], s.positions[i*s.posComps:])
	return p
}

func (s streams) normal(i int) mgl32.Vec3 {
	var n mgl32.Vec3
	if s.normComps > 0 && (i+1)*s.normComps <= len(s.normals) {
		copy(n[:min(s.normComps, 3)], s.normals[i*s.normComps:])
	}
	return n
}

func (s streams) texCoord(i int) (u, v float32) {
	if s.texComps < 2 || (i+1)*s.texComps > len(s.texCoords) {
		return 0, 0
	}
	return s.texCoords[i*s.texComps], s.texCoords[i*s.texComps+1]
}

// rasterParams carries the per-draw state of the CPU vertex stage.
type rasterParams struct {
	mvp       mgl32.Mat4
	normalMat mgl32.Mat3
	lambert   bool
	light     Lighting
	base      mgl32.Vec4
	viewport  image.Rectangle
	texSize   image.Point
}

type triangle struct {
	v     [3]ebiten.Vertex
	depth float32
}

type projected struct {
	x, y, z float32
	ok      bool
}

// project maps a clip-space position to viewport pixels. Vertices at or
// behind the eye plane are rejected.
func project(clip mgl32.Vec4, vp image.Rectangle) projected {
	if clip[3] <= 1e-6 {
		return projected{}
	}
	ndc := clip.Vec3().Mul(1 / clip[3])
	w, h := float32(vp.Dx()), float32(vp.Dy())
	return projected{
		x:  float32(vp.Min.X) + (ndc[0]*0.5+0.5)*w,
		y:  float32(vp.Min.Y) + (0.5-ndc[1]*0.5)*h,
		z:  ndc[2],
		ok: true,
	}
}

// rasterize runs the vertex stage over an indexed triangle list.
func rasterize(s streams, indices []uint32, p rasterParams) []triangle {
	n := s.vertexCount()
	cache := make(map[uint32]ebiten.Vertex, n)
	depth := make(map[uint32]projected, n)

	vertex := func(idx uint32) (ebiten.Vertex, projected, bool) {
		if v, ok := cache[idx]; ok {
			return v, depth[idx], true
		}
		i := int(idx)
		if i >= n {
			return ebiten.Vertex{}, projected{}, false
		}
		pr := project(p.mvp.Mul4x1(s.position(i)), p.viewport)
		if !pr.ok {
			return ebiten.Vertex{}, pr, false
		}
		rgb := p.base.Vec3()
		if p.lambert {
			rgb = p.light.Shade(p.normalMat.Mul3x1(s.normal(i)), rgb)
		}
		u, v := s.texCoord(i)
		out := ebiten.Vertex{
			DstX:   pr.x,
			DstY:   pr.y,
			SrcX:   u * float32(p.texSize.X),
			SrcY:   v * float32(p.texSize.Y),
			ColorR: rgb[0],
			ColorG: rgb[1],
			ColorB: rgb[2],
			ColorA: p.base[3],
		}
		cache[idx] = out
		depth[idx] = pr
		return out, pr, true
	}

	tris := make([]triangle, 0, len(indices)/3)
	for i := 0; i+2 < len(indices); i += 3 {
		var t triangle
		var pr [3]projected
		ok := true
		for k := 0; k < 3; k++ {
			var vok bool
			t.v[k], pr[k], vok = vertex(indices[i+k])
			ok = ok && vok
		}
		if !ok || offscreen(pr, p.viewport) {
			continue
		}
		t.depth = (pr[0].z + pr[1].z + pr[2].z) / 3
		tris = append(tris, t)
	}
	return tris
}

func offscreen(pr [3]projected, vp image.Rectangle) bool {
	minX, maxX := float32(vp.Min.X), float32(vp.Max.X)
	minY, maxY := float32(vp.Min.Y), float32(vp.Max.Y)
	left, right, above, below := true, true, true, true
	for _, q := range pr {
		left = left && q.x < minX
		right = right && q.x > maxX
		above = above && q.y < minY
		below = below && q.y > maxY
	}
	return left || right || above || below
}

// drawCall is the draw state a triangle was submitted with.
type drawCall struct {
	shader  *ebiten.Shader
	options ebiten.DrawTrianglesShaderOptions
}

type queued struct {
	tri  triangle
	call *drawCall
}

// drawList collects triangles so that several draw calls can be sorted
// against each other.
type drawList struct {
	items []queued
}

func (l *drawList) add(call *drawCall, tris []triangle) {
	for _, t := range tris {
		l.items = append(l.items, queued{tri: t, call: call})
	}
}

func (l *drawList) len() int { return len(l.items) }

func (l *drawList) reset() { l.items = l.items[:0] }

// flush emits the collected triangles in chunks addressable by uint16
// indices and empties the list. With sortByDepth the farthest triangles come
// first; otherwise submission order is kept.
func (l *drawList) flush(sortByDepth bool, emit func(*drawCall, []ebiten.Vertex, []uint16)) {
	if sortByDepth {
		sort.SliceStable(l.items, func(i, j int) bool { return l.items[i].tri.depth > l.items[j].tri.depth })
	}
	var cur *drawCall
	vertices := make([]ebiten.Vertex, 0, min(len(l.items)*3, maxBatchVertices+3))
	indices := make([]uint16, 0, cap(vertices))
	send := func() {
		if len(vertices) > 0 {
			emit(cur, vertices, indices)
			vertices = vertices[:0]
			indices = indices[:0]
		}
	}
	for _, it := range l.items {
		if it.call != cur || len(vertices)+3 > maxBatchVertices {
			send()
			cur = it.call
		}
		base := uint16(len(vertices))
		vertices = append(vertices, it.tri.v[:]...)
		indices = append(indices, base, base+1, base+2)
	}
	send()
	l.reset()
}
