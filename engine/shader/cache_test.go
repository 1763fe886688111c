package shader

import (
	"errors"
	"image"
	"sync"
	"testing"
	"testing/fstest"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/axehen/hengine/engine/gpu/gputest"
)

func testAssets() fstest.MapFS {
	return fstest.MapFS{
		"shaders/floor.vert":  {Data: []byte("vertex floor")},
		"shaders/floor.frag":  {Data: []byte("fragment floor")},
		"shaders/mtl.vert":    {Data: []byte("vertex mtl")},
		"shaders/mtl.frag":    {Data: []byte("fragment mtl")},
		"shaders/broken.vert": {Data: []byte("vertex ok")},
		"shaders/broken.frag": {Data: []byte("#error here")},
		"shaders/badvs.vert":  {Data: []byte("#error")},
		"shaders/badvs.frag":  {Data: []byte("fragment")},
	}
}

func TestDescriptorKey(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	tests := []struct {
		name  string
		a, b  Descriptor
		equal bool
	}{
		{"same asset", Descriptor{Asset: "a"}, Descriptor{Asset: "a"}, true},
		{"different asset", Descriptor{Asset: "a"}, Descriptor{Asset: "b"}, false},
		{
			"same colours",
			Descriptor{Asset: "a", Colors: []UniformColor{{Name: "Kd", R: 0.5, G: 0.5, B: 0.5, A: 1}}},
			Descriptor{Asset: "a", Colors: []UniformColor{{Name: "Kd", R: 0.5, G: 0.5, B: 0.5, A: 1}}},
			true,
		},
		{
			"colour value differs",
			Descriptor{Asset: "a", Colors: []UniformColor{{Name: "Kd", R: 0.5}}},
			Descriptor{Asset: "a", Colors: []UniformColor{{Name: "Kd", R: 0.50000001}}},
			false,
		},
		{
			"texture identity",
			Descriptor{Asset: "a", Textures: []TextureBinding{{Source: "wood.png", Uniform: "Tex", Image: img}}},
			Descriptor{Asset: "a", Textures: []TextureBinding{{Source: "wood.png", Uniform: "Tex", Image: img}}},
			true,
		},
		{
			"texture uniform differs",
			Descriptor{Asset: "a", Textures: []TextureBinding{{Source: "wood.png", Uniform: "Tex"}}},
			Descriptor{Asset: "a", Textures: []TextureBinding{{Source: "wood.png", Uniform: "Tex2"}}},
			false,
		},
		{
			"separator in names",
			Descriptor{Asset: `a"|c"b`},
			Descriptor{Asset: "a", Colors: []UniformColor{{Name: "b"}}},
			false,
		},
		{
			"colour versus texture",
			Descriptor{Asset: "a", Colors: []UniformColor{{Name: "x"}}},
			Descriptor{Asset: "a", Textures: []TextureBinding{{Source: "x"}}},
			false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equal(tt.b); got != tt.equal {
				t.Errorf("Equal = %v, want %v (keys %s / %s)", got, tt.equal, tt.a.Key(), tt.b.Key())
			}
		})
	}
}

func TestResolveDedupes(t *testing.T) {
	dev := gputest.New()
	c := NewCache(dev, testAssets())

	mk := func() Descriptor {
		return Descriptor{Asset: "shaders/mtl", Colors: []UniformColor{{Name: "Kd", R: 0.8, G: 0.2, B: 0.1, A: 1}}}
	}
	p1, err := c.Resolve(mk())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	p2, err := c.Resolve(mk())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p1 != p2 {
		t.Fatal("equal descriptors resolved to different programs")
	}
	if n := dev.Count("LinkProgram"); n != 1 {
		t.Errorf("LinkProgram calls = %d, want 1", n)
	}

	other := mk()
	other.Colors[0].R = 0.9
	p3, err := c.Resolve(other)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if p3 == p1 || p3.ID() == p1.ID() {
		t.Error("distinct descriptors collided")
	}
	if c.Len() != 2 {
		t.Errorf("Len = %d, want 2", c.Len())
	}
	if progs := c.Programs(); progs[0] != p1 || progs[1] != p3 {
		t.Errorf("Programs not in compile order")
	}
}

func TestResolveConcurrent(t *testing.T) {
	dev := gputest.New()
	c := NewCache(dev, testAssets())

	var wg sync.WaitGroup
	got := make([]*Program, 16)
	for i := range got {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p, err := c.Resolve(Descriptor{Asset: "shaders/floor"})
			if err != nil {
				t.Errorf("Resolve: %v", err)
			}
			got[i] = p
		}(i)
	}
	wg.Wait()
	for _, p := range got {
		if p != got[0] {
			t.Fatal("concurrent resolves produced different programs")
		}
	}
	if n := dev.Count("LinkProgram"); n != 1 {
		t.Errorf("LinkProgram calls = %d, want 1", n)
	}
}

func TestResolveCompileErrors(t *testing.T) {
	tests := []struct {
		asset string
		stage gpu.Stage
	}{
		{"shaders/broken", gpu.StageFragment},
		{"shaders/badvs", gpu.StageVertex},
		{"shaders/missing", gpu.StageVertex},
	}
	for _, tt := range tests {
		t.Run(tt.asset, func(t *testing.T) {
			c := NewCache(gputest.New(), testAssets())
			_, err := c.Resolve(Descriptor{Asset: tt.asset})
			if !errors.Is(err, ErrShaderCompile) {
				t.Fatalf("err = %v, want ErrShaderCompile", err)
			}
			var ce *CompileError
			if !errors.As(err, &ce) {
				t.Fatalf("err is %T, want *CompileError", err)
			}
			if ce.Stage != tt.stage || ce.Asset != tt.asset || ce.Log == "" {
				t.Errorf("CompileError = %+v", ce)
			}
			if c.Len() != 0 {
				t.Errorf("failed program was cached")
			}
		})
	}
}

func TestResolveLinkError(t *testing.T) {
	dev := gputest.New()
	dev.LinkError = "varying Normal not written by vertex stage"
	c := NewCache(dev, testAssets())

	_, err := c.Resolve(Descriptor{Asset: "shaders/floor"})
	var le *LinkError
	if !errors.As(err, &le) || !errors.Is(err, ErrShaderLink) {
		t.Fatalf("err = %v, want *LinkError", err)
	}
	if le.Log != dev.LinkError {
		t.Errorf("Log = %q", le.Log)
	}
	if n := dev.Count("DeleteShader"); n != 2 {
		t.Errorf("DeleteShader calls = %d, want 2", n)
	}
}

func TestBindReappliesState(t *testing.T) {
	dev := gputest.New()
	c := NewCache(dev, testAssets())
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	p, err := c.Resolve(Descriptor{
		Asset:    "shaders/mtl",
		Colors:   []UniformColor{{Name: "Kd", R: 1, A: 1}},
		Textures: []TextureBinding{{Source: "crate.png", Uniform: "Tex", Image: img}},
	})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	other, err := c.Resolve(Descriptor{Asset: "shaders/floor"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}

	dev.Reset()
	p.Bind(dev)
	other.Bind(dev)
	p.Bind(dev)

	if n := dev.Count("BindTexture"); n != 2 {
		t.Errorf("BindTexture calls = %d, want 2", n)
	}
	if n := dev.Count("SetUniformVec4"); n != 2 {
		t.Errorf("colour uploads = %d, want 2", n)
	}
	if v, ok := dev.Uniform(p.ID(), "Kd"); !ok || v == nil {
		t.Errorf("Kd not set on program")
	}
}

func TestResolveTextureFailureFreesProgram(t *testing.T) {
	dev := gputest.New()
	c := NewCache(dev, testAssets())
	desc := Descriptor{Asset: "shaders/floor", Textures: []TextureBinding{
		{Source: "grass.png", Uniform: "Tex0", Image: image.NewRGBA(image.Rect(0, 0, 4, 4))},
		{Source: "missing.png", Uniform: "Tex1"},
	}}
	if _, err := c.Resolve(desc); err == nil {
		t.Fatal("expected texture error")
	}
	if dev.LiveTextures() != 0 || dev.LivePrograms() != 0 {
		t.Errorf("leaked textures = %d, programs = %d", dev.LiveTextures(), dev.LivePrograms())
	}
	if c.Len() != 0 {
		t.Errorf("failed program cached: %d", c.Len())
	}
}
