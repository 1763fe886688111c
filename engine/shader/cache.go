package shader

import (
	"fmt"
	"io/fs"
	"log/slog"
	"sync"

	"github.com/axehen/hengine/engine/core"
	"github.com/axehen/hengine/engine/gpu"
)

// Stage sources live next to each other as <asset>.vert and <asset>.frag.
const (
	VertexExt   = ".vert"
	FragmentExt = ".frag"
)

// Cache compiles each distinct Descriptor once and hands out the same
// *Program for every structurally equal descriptor afterwards. Entries are
// never evicted. Compilation must happen on the render thread; Programs may
// be read from anywhere.
type Cache struct {
	dev    gpu.Device
	assets fs.FS

	mu       sync.RWMutex
	programs map[string]*Program
	order    []*Program
}

// NewCache returns an empty cache compiling on dev with sources from assets.
func NewCache(dev gpu.Device, assets fs.FS) *Cache {
	return &Cache{
		dev:      dev,
		assets:   assets,
		programs: make(map[string]*Program),
	}
}

// Resolve returns the cached program for desc, compiling and linking it on
// first use.
func (c *Cache) Resolve(desc Descriptor) (*Program, error) {
	key := desc.Key()
	c.mu.RLock()
	p, ok := c.programs[key]
	c.mu.RUnlock()
	if ok {
		return p, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if p, ok := c.programs[key]; ok {
		return p, nil
	}
	p, err := c.build(desc)
	if err != nil {
		return nil, err
	}
	c.programs[key] = p
	c.order = append(c.order, p)
	core.Logger().Info("shader program compiled", slog.String("asset", desc.Asset), slog.Int("programs", len(c.order)))
	return p, nil
}

func (c *Cache) build(desc Descriptor) (_ *Program, err error) {
	vs, err := c.compile(desc.Asset, gpu.StageVertex, VertexExt)
	if err != nil {
		return nil, err
	}
	defer c.dev.DeleteShader(vs)
	fsh, err := c.compile(desc.Asset, gpu.StageFragment, FragmentExt)
	if err != nil {
		return nil, err
	}
	defer c.dev.DeleteShader(fsh)

	id, err := c.dev.LinkProgram(vs, fsh)
	if err != nil {
		return nil, &LinkError{Asset: desc.Asset, Log: err.Error()}
	}

	p := &Program{
		desc:   desc,
		id:     id,
		colors: append([]UniformColor(nil), desc.Colors...),
	}
	defer func() {
		if err != nil {
			for _, t := range p.textures {
				c.dev.DeleteTexture(t.id)
			}
			c.dev.DeleteProgram(id)
		}
	}()
	for _, t := range desc.Textures {
		tex, err := c.dev.CreateTexture(t.Image)
		if err != nil {
			return nil, fmt.Errorf("shader %q: texture %q: %w", desc.Asset, t.Source, err)
		}
		p.textures = append(p.textures, boundTexture{id: tex, uniform: t.Uniform})
	}
	return p, nil
}

func (c *Cache) compile(asset string, stage gpu.Stage, ext string) (gpu.ShaderID, error) {
	src, err := fs.ReadFile(c.assets, asset+ext)
	if err != nil {
		return 0, &CompileError{Asset: asset, Stage: stage, Log: err.Error()}
	}
	id, err := c.dev.CompileShader(stage, src)
	if err != nil {
		return 0, &CompileError{Asset: asset, Stage: stage, Log: err.Error()}
	}
	return id, nil
}

// Programs returns every compiled program in compilation order.
func (c *Cache) Programs() []*Program {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]*Program(nil), c.order...)
}

// Len returns the number of compiled programs.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.order)
}
