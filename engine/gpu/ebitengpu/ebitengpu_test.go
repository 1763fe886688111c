package ebitengpu

import (
	"image"
	"image/color"
	"math"
	"strings"
	"testing"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/hajimehoshi/ebiten/v2"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-4
}

func TestParseVertexStage(t *testing.T) {
	vs, err := ParseVertexStage([]byte(`
attributes: [Position, Normal, TexCoord]
transform: [Projection, View, Model]
lighting: lambert
color: Kd
`))
	if err != nil {
		t.Fatalf("ParseVertexStage: %v", err)
	}
	if vs.Location(gpu.AttribNormal) != 1 || vs.Location(gpu.AttribTexCoord) != 2 {
		t.Errorf("locations = %v", vs.Attributes)
	}
	if vs.Location("Tangent") != -1 {
		t.Error("undeclared attribute has a location")
	}

	unlit, err := ParseVertexStage([]byte("attributes: [Position]\ntransform: [Transform]\n"))
	if err != nil {
		t.Fatalf("ParseVertexStage: %v", err)
	}
	if unlit.Lighting != LightingUnlit {
		t.Errorf("default lighting = %q", unlit.Lighting)
	}
}

func TestParseVertexStageErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want string
	}{
		{"syntax", "attributes: [Position", ""},
		{"unknown field", "attributes: [Position]\ntransform: [Model]\nshade: flat\n", "shade"},
		{"no position", "attributes: [Normal]\ntransform: [Model]\n", "Position"},
		{"unknown attribute", "attributes: [Position, Tangent]\ntransform: [Model]\n", "Tangent"},
		{"duplicate", "attributes: [Position, Normal, Normal]\ntransform: [Model]\n", "twice"},
		{"no transform", "attributes: [Position]\n", "transform"},
		{"lambert without normal", "attributes: [Position]\ntransform: [Model]\nlighting: lambert\n", "Normal"},
		{"bad lighting", "attributes: [Position]\ntransform: [Model]\nlighting: phong\n", "phong"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseVertexStage([]byte(tt.src))
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("err = %v, want mention of %q", err, tt.want)
			}
		})
	}
}

func TestVertexStageMatrix(t *testing.T) {
	vs := &VertexStage{Transform: []string{gpu.UniformProjection, gpu.UniformView, gpu.UniformModel}}
	mats := map[string]mgl32.Mat4{
		gpu.UniformView:  mgl32.Translate3D(0, 0, -5),
		gpu.UniformModel: mgl32.Scale3D(2, 2, 2),
	}
	got := vs.Matrix(mats).Mul4x1(mgl32.Vec4{1, 0, 0, 1})
	if got != (mgl32.Vec4{2, 0, -5, 1}) {
		t.Errorf("transformed = %v", got)
	}

	n := vs.NormalMatrix(mats).Mul3x1(mgl32.Vec3{0, 0, 1})
	if !near(n[2], 0.5) {
		t.Errorf("normal = %v, want inverse-transpose scaling", n)
	}
}

func TestShade(t *testing.T) {
	l := DefaultLighting()
	white := mgl32.Vec3{1, 1, 1}

	lit := l.Shade(l.Sun.Direction, white)
	away := l.Shade(l.Sun.Direction.Mul(-1), white)
	for i := 0; i < 3; i++ {
		if lit[i] < away[i] {
			t.Errorf("channel %d: facing the sun %v darker than facing away %v", i, lit[i], away[i])
		}
		if lit[i] > 1 {
			t.Errorf("channel %d not clamped: %v", i, lit[i])
		}
	}

	flat := Lighting{Ambient: mgl32.Vec3{1, 1, 1}, AmbientIntensity: 0.5}
	if got := flat.Shade(mgl32.Vec3{0, 0, 1}, mgl32.Vec3{1, 0.5, 0}); got != (mgl32.Vec3{0.5, 0.25, 0}) {
		t.Errorf("ambient only = %v", got)
	}
}

func TestProject(t *testing.T) {
	vp := image.Rect(0, 0, 100, 50)
	tests := []struct {
		name   string
		clip   mgl32.Vec4
		x, y   float32
		reject bool
	}{
		{"centre", mgl32.Vec4{0, 0, 0, 1}, 50, 25, false},
		{"top right", mgl32.Vec4{1, 1, 0, 1}, 100, 0, false},
		{"perspective divide", mgl32.Vec4{-2, -2, 0, 2}, 0, 50, false},
		{"behind eye", mgl32.Vec4{0, 0, 0, -1}, 0, 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := project(tt.clip, vp)
			if p.ok == tt.reject {
				t.Fatalf("ok = %v", p.ok)
			}
			if !tt.reject && (!near(p.x, tt.x) || !near(p.y, tt.y)) {
				t.Errorf("pixel = (%v, %v), want (%v, %v)", p.x, p.y, tt.x, tt.y)
			}
		})
	}
}

func TestRasterize(t *testing.T) {
	s := streams{
		positions: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0},
		posComps:  3,
		texCoords: []float32{0, 0, 1, 0, 0, 1},
		texComps:  2,
	}
	p := rasterParams{
		mvp:      mgl32.Ident4(),
		base:     mgl32.Vec4{1, 0, 0, 0.5},
		viewport: image.Rect(0, 0, 100, 100),
		texSize:  image.Pt(16, 8),
	}
	tris := rasterize(s, []uint32{0, 1, 2}, p)
	if len(tris) != 1 {
		t.Fatalf("triangles = %d", len(tris))
	}
	v := tris[0].v
	if v[0].DstX != 50 || v[0].DstY != 50 || v[1].DstX != 100 || v[2].DstY != 0 {
		t.Errorf("positions = %+v", v)
	}
	if v[1].SrcX != 16 || v[2].SrcY != 8 {
		t.Errorf("texture coordinates = %+v", v)
	}
	if v[0].ColorR != 1 || v[0].ColorG != 0 || v[0].ColorA != 0.5 {
		t.Errorf("colour = %+v", v[0])
	}

	if got := rasterize(s, []uint32{0, 1, 7}, p); len(got) != 0 {
		t.Errorf("out of range index kept %d triangles", len(got))
	}
	p.mvp = mgl32.Translate3D(5, 0, 0)
	if got := rasterize(s, []uint32{0, 1, 2}, p); len(got) != 0 {
		t.Errorf("offscreen triangle kept")
	}
}

func TestDrawListBatches(t *testing.T) {
	var l drawList
	call := &drawCall{}
	tris := make([]triangle, 30000)
	for i := range tris {
		tris[i].depth = float32(i)
	}
	l.add(call, tris)

	var sizes []int
	first := uint16(1)
	l.flush(true, func(c *drawCall, vs []ebiten.Vertex, is []uint16) {
		if c != call {
			t.Errorf("call = %p, want %p", c, call)
		}
		if len(sizes) == 0 {
			first = is[0]
		}
		sizes = append(sizes, len(vs))
		if len(is) != len(vs) {
			t.Errorf("indices %d != vertices %d", len(is), len(vs))
		}
	})
	if len(sizes) != 2 || sizes[0]+sizes[1] != 90000 || sizes[0] > maxBatchVertices {
		t.Errorf("batches = %v", sizes)
	}
	if first != 0 {
		t.Errorf("first index = %v", first)
	}
	if l.len() != 0 {
		t.Errorf("list not emptied: %d", l.len())
	}
}

func TestDrawListSortsAcrossCalls(t *testing.T) {
	near, far := &drawCall{}, &drawCall{}
	var l drawList
	l.add(near, []triangle{{depth: 0.1}, {depth: 0.2}})
	l.add(far, []triangle{{depth: 0.9}, {depth: 0.15}})

	var order []*drawCall
	var counts []int
	l.flush(true, func(c *drawCall, vs []ebiten.Vertex, _ []uint16) {
		order = append(order, c)
		counts = append(counts, len(vs)/3)
	})
	// 0.9 far, 0.2 near, 0.15 far, 0.1 near
	want := []*drawCall{far, near, far, near}
	if len(order) != len(want) {
		t.Fatalf("calls = %d, want %d", len(order), len(want))
	}
	for i := range want {
		if order[i] != want[i] || counts[i] != 1 {
			t.Errorf("batch %d = %p with %d triangles", i, order[i], counts[i])
		}
	}

	l.add(near, []triangle{{depth: 0.1}, {depth: 0.2}})
	l.add(far, []triangle{{depth: 0.9}})
	order = order[:0]
	l.flush(false, func(c *drawCall, _ []ebiten.Vertex, _ []uint16) { order = append(order, c) })
	if len(order) != 2 || order[0] != near || order[1] != far {
		t.Errorf("submission order not kept: %v", order)
	}
}

func TestResample(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	for y := 0; y < 2; y++ {
		for x := 0; x < 2; x++ {
			src.Set(x, y, color.RGBA{R: 200, A: 255})
		}
	}
	if got := resample(src, image.Pt(2, 2)); got != image.Image(src) {
		t.Error("same-size image was copied")
	}
	got := resample(src, image.Pt(8, 4))
	if got.Bounds().Size() != image.Pt(8, 4) {
		t.Fatalf("size = %v", got.Bounds().Size())
	}
	if r, _, _, a := got.At(4, 2).RGBA(); r>>8 < 199 || r>>8 > 200 || a>>8 < 254 {
		t.Errorf("pixel = %v", got.At(4, 2))
	}
}

func TestDeviceBookkeeping(t *testing.T) {
	d := New()
	if _, err := d.CompileShader(gpu.StageVertex, []byte("attributes: [Normal]\ntransform: [Model]\n")); err == nil {
		t.Error("invalid vertex stage compiled")
	}
	vs, err := d.CompileShader(gpu.StageVertex, []byte("attributes: [Position, Normal]\ntransform: [Model]\n"))
	if err != nil {
		t.Fatalf("CompileShader: %v", err)
	}
	if _, err := d.LinkProgram(vs, vs); err == nil {
		t.Error("linked two vertex stages")
	}

	buf, _ := d.CreateVertexBuffer([]float32{1, 2, 3})
	if loc := d.EnableAttrib(gpu.AttribPosition, buf, 3); loc != -1 {
		t.Errorf("EnableAttrib without a program = %d", loc)
	}
	d.DeleteBuffer(buf)
	if _, ok := d.vertices[buf]; ok {
		t.Error("buffer not deleted")
	}
	if _, err := d.CreateTexture(image.NewRGBA(image.Rectangle{})); err == nil {
		t.Error("empty texture accepted")
	}
	tex, err := d.CreateTexture(image.NewRGBA(image.Rect(0, 0, 2, 2)))
	if err != nil {
		t.Fatalf("CreateTexture: %v", err)
	}
	d.DeleteTexture(tex)
	if _, ok := d.textures[tex]; ok {
		t.Error("texture not deleted")
	}
	d.DeleteProgram(99)

	d.ClearColor(1, 0.5, 0, 1)
	if d.clear != (color.RGBA{R: 255, G: 128, B: 0, A: 255}) {
		t.Errorf("clear = %v", d.clear)
	}
}
