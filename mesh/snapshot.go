package mesh

import (
	"fmt"

	"github.com/soypat/orbital/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// Snapshot is an immutable copy of an engine's mesh.
type Snapshot struct {
	Vertices   []Vertex
	Tetrahedra [][4]int
}

// Positions returns the vertex positions.
func (s Snapshot) Positions() []r3.Vec {
	pos := make([]r3.Vec, len(s.Vertices))
	for i := range s.Vertices {
		pos[i] = s.Vertices[i].Pos
	}
	return pos
}

// Float32Positions returns the positions interleaved as x,y,z for GPU upload.
func (s Snapshot) Float32Positions() []float32 {
	buf := make([]float32, 0, 3*len(s.Vertices))
	for _, v := range s.Vertices {
		buf = append(buf, float32(v.Pos.X), float32(v.Pos.Y), float32(v.Pos.Z))
	}
	return buf
}

// Indices returns the tetrahedra flattened to 4 indices each.
func (s Snapshot) Indices() []uint32 {
	idx := make([]uint32, 0, 4*len(s.Tetrahedra))
	for _, t := range s.Tetrahedra {
		idx = append(idx, uint32(t[0]), uint32(t[1]), uint32(t[2]), uint32(t[3]))
	}
	return idx
}

// Tetra returns the corners of tetrahedron i.
func (s Snapshot) Tetra(i int) d3.Tetra {
	t := s.Tetrahedra[i]
	return d3.Tetra{s.Vertices[t[0]].Pos, s.Vertices[t[1]].Pos, s.Vertices[t[2]].Pos, s.Vertices[t[3]].Pos}
}

// Volume returns the summed unsigned volume of all tetrahedra.
func (s Snapshot) Volume() (vol float64) {
	for i := range s.Tetrahedra {
		vol += s.Tetra(i).Volume()
	}
	return vol
}

// Validate checks every tetrahedron references an existing vertex.
func (s Snapshot) Validate() error {
	n := len(s.Vertices)
	for i, t := range s.Tetrahedra {
		for _, v := range t {
			if v < 0 || v >= n {
				return fmt.Errorf("%w: tetrahedron %d index %d with %d vertices", ErrDanglingIndex, i, v, n)
			}
		}
	}
	return nil
}

// Nearest returns the index of the vertex closest to p. ok is false for an empty snapshot.
// Use NewLocator for repeated queries.
func (s Snapshot) Nearest(p r3.Vec) (idx int, ok bool) {
	return NewLocator(s.Vertices).Nearest(p)
}
