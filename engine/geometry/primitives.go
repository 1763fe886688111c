package geometry

import "math"

// builder accumulates an indexed triangle list.
type builder struct {
	data MeshData
}

func (b *builder) vertex(x, y, z, nx, ny, nz, u, v float32) uint32 {
	idx := uint32(len(b.data.Positions) / coordsPerVertex)
	b.data.Positions = append(b.data.Positions, x, y, z)
	b.data.Normals = append(b.data.Normals, nx, ny, nz)
	b.data.TexCoords = append(b.data.TexCoords, u, v)
	return idx
}

func (b *builder) triangle(i0, i1, i2 uint32) {
	b.data.Indices = append(b.data.Indices, i0, i1, i2)
}

func (b *builder) quad(i0, i1, i2, i3 uint32) {
	b.triangle(i0, i1, i2)
	b.triangle(i0, i2, i3)
}

// Box returns an axis-aligned box centred on the origin, w along X, d along Y
// and h along Z. Faces have their own vertices so normals stay flat.
func Box(w, d, h float32) MeshData {
	hw, hd, hh := w/2, d/2, h/2
	corners := [8][3]float32{
		{-hw, -hd, -hh}, {hw, -hd, -hh}, {hw, hd, -hh}, {-hw, hd, -hh},
		{-hw, -hd, hh}, {hw, -hd, hh}, {hw, hd, hh}, {-hw, hd, hh},
	}
	faces := []struct {
		idx    [4]int
		normal [3]float32
	}{
		{[4]int{3, 2, 1, 0}, [3]float32{0, 0, -1}}, // bottom
		{[4]int{4, 5, 6, 7}, [3]float32{0, 0, 1}},  // top
		{[4]int{0, 1, 5, 4}, [3]float32{0, -1, 0}}, // front
		{[4]int{2, 3, 7, 6}, [3]float32{0, 1, 0}},  // back
		{[4]int{3, 0, 4, 7}, [3]float32{-1, 0, 0}}, // left
		{[4]int{1, 2, 6, 5}, [3]float32{1, 0, 0}},  // right
	}
	uv := [4][2]float32{{0, 1}, {1, 1}, {1, 0}, {0, 0}}

	var b builder
	for _, f := range faces {
		var q [4]uint32
		for i, c := range f.idx {
			p := corners[c]
			q[i] = b.vertex(p[0], p[1], p[2], f.normal[0], f.normal[1], f.normal[2], uv[i][0], uv[i][1])
		}
		b.quad(q[0], q[1], q[2], q[3])
	}
	return b.data
}

// Cylinder returns a capped cylinder along Z centred on the origin.
func Cylinder(radius, height float32, segments int) MeshData {
	if segments < 6 {
		segments = 6
	}
	hh := height / 2
	var b builder
	topCentre := b.vertex(0, 0, hh, 0, 0, 1, 0.5, 0.5)
	botCentre := b.vertex(0, 0, -hh, 0, 0, -1, 0.5, 0.5)

	for i := 0; i < segments; i++ {
		a0 := float64(i) / float64(segments) * 2 * math.Pi
		a1 := float64(i+1) / float64(segments) * 2 * math.Pi
		c0, s0 := float32(math.Cos(a0)), float32(math.Sin(a0))
		c1, s1 := float32(math.Cos(a1)), float32(math.Sin(a1))
		u0, u1 := float32(i)/float32(segments), float32(i+1)/float32(segments)

		p0b := b.vertex(radius*c0, radius*s0, -hh, c0, s0, 0, u0, 1)
		p1b := b.vertex(radius*c1, radius*s1, -hh, c1, s1, 0, u1, 1)
		p1t := b.vertex(radius*c1, radius*s1, hh, c1, s1, 0, u1, 0)
		p0t := b.vertex(radius*c0, radius*s0, hh, c0, s0, 0, u0, 0)
		b.quad(p0b, p1b, p1t, p0t)

		t0 := b.vertex(radius*c0, radius*s0, hh, 0, 0, 1, 0.5+c0/2, 0.5-s0/2)
		t1 := b.vertex(radius*c1, radius*s1, hh, 0, 0, 1, 0.5+c1/2, 0.5-s1/2)
		b.triangle(topCentre, t0, t1)

		b0 := b.vertex(radius*c0, radius*s0, -hh, 0, 0, -1, 0.5+c0/2, 0.5+s0/2)
		b1 := b.vertex(radius*c1, radius*s1, -hh, 0, 0, -1, 0.5+c1/2, 0.5+s1/2)
		b.triangle(botCentre, b1, b0)
	}
	return b.data
}

// Plane returns a w by d rectangle in the XY plane facing +Z. The texture
// repeats every tile units.
func Plane(w, d, tile float32) MeshData {
	if tile <= 0 {
		tile = 1
	}
	hw, hd := w/2, d/2
	us, vs := w/tile, d/tile
	var b builder
	i0 := b.vertex(-hw, -hd, 0, 0, 0, 1, 0, vs)
	i1 := b.vertex(hw, -hd, 0, 0, 0, 1, us, vs)
	i2 := b.vertex(hw, hd, 0, 0, 0, 1, us, 0)
	i3 := b.vertex(-hw, hd, 0, 0, 0, 1, 0, 0)
	b.quad(i0, i1, i2, i3)
	return b.data
}

// Translate returns a copy of d moved by (dx, dy, dz).
func (d MeshData) Translate(dx, dy, dz float32) MeshData {
	out := d
	out.Positions = make([]float32, len(d.Positions))
	for i := 0; i+2 < len(d.Positions); i += coordsPerVertex {
		out.Positions[i] = d.Positions[i] + dx
		out.Positions[i+1] = d.Positions[i+1] + dy
		out.Positions[i+2] = d.Positions[i+2] + dz
	}
	return out
}

// Merge concatenates meshes into one triangle list. Normals and texture
// coordinates are kept only when every part has them.
func Merge(parts ...MeshData) MeshData {
	var out MeshData
	normals, texCoords := true, true
	for _, p := range parts {
		normals = normals && p.Normals != nil
		texCoords = texCoords && p.TexCoords != nil
	}
	for _, p := range parts {
		base := uint32(len(out.Positions) / coordsPerVertex)
		out.Positions = append(out.Positions, p.Positions...)
		if normals {
			out.Normals = append(out.Normals, p.Normals...)
		}
		if texCoords {
			out.TexCoords = append(out.TexCoords, p.TexCoords...)
		}
		for _, idx := range p.Indices {
			out.Indices = append(out.Indices, base+idx)
		}
	}
	return out
}
