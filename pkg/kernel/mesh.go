package kernel

// Mesh is a triangle mesh suitable for rendering.
// All arrays are flat: vertices has 3 floats per vertex (x,y,z),
// normals has 3 floats per vertex, indices has 3 uint32s per triangle.
type Mesh struct {
	Vertices []float32 `json:"vertices"` // [x0,y0,z0, x1,y1,z1, ...]
	Normals  []float32 `json:"normals"`  // [nx0,ny0,nz0, ...]
	Indices  []uint32  `json:"indices"`  // [i0,i1,i2, ...] triangles
	Name     string    `json:"name"`     // which result layer this came from
}

// VertexCount returns the number of vertices.
func (m *Mesh) VertexCount() int {
	return len(m.Vertices) / 3
}

// TriangleCount returns the number of triangles.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// IsEmpty returns true if the mesh has no geometry.
func (m *Mesh) IsEmpty() bool {
	return len(m.Vertices) == 0
}

// Transform maps every vertex through fp and every normal through fn in
// place.
func (m *Mesh) Transform(fp, fn func(x, y, z float64) (float64, float64, float64)) {
	for i := 0; i+2 < len(m.Vertices); i += 3 {
		x, y, z := fp(float64(m.Vertices[i]), float64(m.Vertices[i+1]), float64(m.Vertices[i+2]))
		m.Vertices[i], m.Vertices[i+1], m.Vertices[i+2] = float32(x), float32(y), float32(z)
	}
	for i := 0; i+2 < len(m.Normals); i += 3 {
		x, y, z := fn(float64(m.Normals[i]), float64(m.Normals[i+1]), float64(m.Normals[i+2]))
		m.Normals[i], m.Normals[i+1], m.Normals[i+2] = float32(x), float32(y), float32(z)
	}
}

// Bounds returns the axis-aligned bounds of the vertices. An empty mesh
// returns zero bounds.
func (m *Mesh) Bounds() (min, max [3]float32) {
	if m.IsEmpty() {
		return min, max
	}
	copy(min[:], m.Vertices[:3])
	copy(max[:], m.Vertices[:3])
	for i := 3; i+2 < len(m.Vertices); i += 3 {
		for j := 0; j < 3; j++ {
			v := m.Vertices[i+j]
			if v < min[j] {
				min[j] = v
			}
			if v > max[j] {
				max[j] = v
			}
		}
	}
	return min, max
}
