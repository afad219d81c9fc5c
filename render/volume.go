package render

import (
	"github.com/chewxy/math32"
	"github.com/fogleman/fauxgl"
	"github.com/soypat/glgl/math/ms3"
	"github.com/soypat/orbital"
	"github.com/soypat/orbital/mesh"
)

// VolumeVertex is one corner of a tetrahedron face as uploaded to a GPU
// volume pass. Layout is 7 consecutive float32.
type VolumeVertex struct {
	Pos ms3.Vec
	// Density is the squared modulus of the field at Pos.
	Density float32
	// Color is the phase color of the field at Pos.
	Color [3]float32
}

// faceCorners lists the four faces of a tetrahedron as corner indices.
var faceCorners = [4][3]int{{0, 1, 2}, {0, 3, 1}, {0, 2, 3}, {1, 3, 2}}

// AppendVolumeVertices appends the 12 face corners of every tetrahedron in s to dst.
func AppendVolumeVertices(dst []VolumeVertex, s mesh.Snapshot) []VolumeVertex {
	var corner [4]VolumeVertex
	for _, tet := range s.Tetrahedra {
		for i, vi := range tet {
			v := s.Vertices[vi]
			corner[i] = VolumeVertex{
				Pos:     ms3.Vec{X: float32(v.Pos.X), Y: float32(v.Pos.Y), Z: float32(v.Pos.Z)},
				Density: float32(orbital.Density(v.Value)),
				Color:   PhaseColor(orbital.Phase(v.Value)),
			}
		}
		for _, f := range faceCorners {
			dst = append(dst, corner[f[0]], corner[f[1]], corner[f[2]])
		}
	}
	return dst
}

// PhaseColor maps a phase angle in radians onto a hue wheel with components in [0,1].
func PhaseColor(phase float64) [3]float32 {
	p := float32(phase)
	const third = 2 * math32.Pi / 3
	return [3]float32{
		0.5 + 0.5*math32.Cos(p),
		0.5 + 0.5*math32.Cos(p-third),
		0.5 + 0.5*math32.Cos(p+third),
	}
}

// ColumnMajor converts m to the float32 column major layout GL uniforms expect.
func ColumnMajor(m fauxgl.Matrix) [16]float32 {
	return [16]float32{
		float32(m.X00), float32(m.X10), float32(m.X20), float32(m.X30),
		float32(m.X01), float32(m.X11), float32(m.X21), float32(m.X31),
		float32(m.X02), float32(m.X12), float32(m.X22), float32(m.X32),
		float32(m.X03), float32(m.X13), float32(m.X23), float32(m.X33),
	}
}
