package ebitengpu

import (
	"bytes"
	"errors"
	"fmt"
	"slices"

	"github.com/axehen/hengine/engine/gpu"
	"github.com/go-gl/mathgl/mgl32"
	"gopkg.in/yaml.v3"
)

// Lighting modes a vertex stage may request.
const (
	LightingUnlit   = "unlit"
	LightingLambert = "lambert"
)

// VertexStage is the declarative vertex program of this backend. Ebiten has
// no programmable vertex stage, so vertices are transformed on the CPU as
// described by a YAML document such as:
//
//	attributes: [Position, Normal, TexCoord]
//	transform: [Projection, View, Model]
//	lighting: lambert
//	color: Kd
//
// Transform lists mat4 uniforms multiplied left to right; Color names an
// optional vec4 uniform that tints every vertex.
type VertexStage struct {
	Attributes []string `yaml:"attributes"`
	Transform  []string `yaml:"transform"`
	Lighting   string   `yaml:"lighting,omitempty"`
	Color      string   `yaml:"color,omitempty"`
}

var knownAttributes = []string{gpu.AttribPosition, gpu.AttribNormal, gpu.AttribTexCoord}

// ParseVertexStage decodes and validates a vertex stage source. The returned
// error text is the diagnostic reported by CompileShader.
func ParseVertexStage(src []byte) (*VertexStage, error) {
	dec := yaml.NewDecoder(bytes.NewReader(src))
	dec.KnownFields(true)
	var vs VertexStage
	if err := dec.Decode(&vs); err != nil {
		return nil, err
	}
	if len(vs.Attributes) == 0 || vs.Attributes[0] != gpu.AttribPosition {
		return nil, errors.New("attributes: the first attribute must be Position")
	}
	seen := make(map[string]bool, len(vs.Attributes))
	for _, a := range vs.Attributes {
		if !slices.Contains(knownAttributes, a) {
			return nil, fmt.Errorf("attributes: unknown attribute %q", a)
		}
		if seen[a] {
			return nil, fmt.Errorf("attributes: %q declared twice", a)
		}
		seen[a] = true
	}
	if len(vs.Transform) == 0 {
		return nil, errors.New("transform: at least one matrix uniform is required")
	}
	switch vs.Lighting {
	case "":
		vs.Lighting = LightingUnlit
	case LightingUnlit:
	case LightingLambert:
		if !seen[gpu.AttribNormal] {
			return nil, errors.New("lighting: lambert needs the Normal attribute")
		}
	default:
		return nil, fmt.Errorf("lighting: unknown mode %q", vs.Lighting)
	}
	return &vs, nil
}

// Location returns the attribute location of name, or -1.
func (vs *VertexStage) Location(name string) int {
	return slices.Index(vs.Attributes, name)
}

// Matrix multiplies the transform uniforms. Unset uniforms count as identity.
func (vs *VertexStage) Matrix(mats map[string]mgl32.Mat4) mgl32.Mat4 {
	m := mgl32.Ident4()
	for _, name := range vs.Transform {
		if u, ok := mats[name]; ok {
			m = m.Mul4(u)
		}
	}
	return m
}

// NormalMatrix maps object-space normals to world space using the Model
// uniform when the transform includes it.
func (vs *VertexStage) NormalMatrix(mats map[string]mgl32.Mat4) mgl32.Mat3 {
	model, ok := mats[gpu.UniformModel]
	if !ok || !slices.Contains(vs.Transform, gpu.UniformModel) {
		return mgl32.Ident3()
	}
	m3 := model.Mat3()
	if m3.Det() == 0 {
		return m3
	}
	return m3.Inv().Transpose()
}
