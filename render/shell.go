package render

import (
	"io"
	"sort"

	"github.com/soypat/orbital"
	"github.com/soypat/orbital/mesh"
	"gonum.org/v1/gonum/spatial/r3"
)

// tetraFaces lists the corners of the face opposite each tetrahedron corner.
var tetraFaces = [4][3]int{
	{1, 2, 3},
	{0, 2, 3},
	{0, 1, 3},
	{0, 1, 2},
}

type faceKey [3]int

type shellFace struct {
	tri   Triangle3
	count int // dense tetrahedra sharing the face.
}

// ShellReader is a TriangleReader over the boundary of the region where the
// mean probability density over a tetrahedron's corners is at least a
// threshold. Faces are wound so their normals point out of the region.
type ShellReader struct {
	faces map[faceKey]*shellFace
	order []faceKey // first appearance order, for deterministic output.
}

// NewShellReader indexes the faces of the dense tetrahedra of s.
func NewShellReader(s mesh.Snapshot, threshold float64) *ShellReader {
	r := &ShellReader{faces: make(map[faceKey]*shellFace)}
	for ti, tet := range s.Tetrahedra {
		var density float64
		for _, v := range tet {
			density += orbital.Density(s.Vertices[v].Value)
		}
		if density/4 < threshold {
			continue
		}
		corners := s.Tetra(ti)
		for opp, fc := range tetraFaces {
			key := faceKey{tet[fc[0]], tet[fc[1]], tet[fc[2]]}
			sort.Ints(key[:])
			if f, ok := r.faces[key]; ok {
				f.count++
				continue
			}
			tri := Triangle3{V: [3]r3.Vec{corners[fc[0]], corners[fc[1]], corners[fc[2]]}}
			if r3.Dot(tri.Normal(), r3.Sub(corners[opp], tri.V[0])) > 0 {
				tri.V[1], tri.V[2] = tri.V[2], tri.V[1]
			}
			r.faces[key] = &shellFace{tri: tri, count: 1}
			r.order = append(r.order, key)
		}
	}
	return r
}

// ReadTriangles fills dst with boundary faces. Interior faces, shared by two
// dense tetrahedra, are skipped.
func (r *ShellReader) ReadTriangles(dst []Triangle3) (int, error) {
	var n int
	for n < len(dst) && len(r.order) > 0 {
		f := r.faces[r.order[0]]
		r.order = r.order[1:]
		if f.count == 1 {
			dst[n] = f.tri
			n++
		}
	}
	if n == 0 && len(r.order) == 0 {
		return 0, io.EOF
	}
	return n, nil
}

// ShellFaces returns every face read from NewShellReader(s, threshold).
func ShellFaces(s mesh.Snapshot, threshold float64) []Triangle3 {
	r := NewShellReader(s, threshold)
	var shell []Triangle3
	buf := make([]Triangle3, trianglesInBuffer)
	for {
		n, err := r.ReadTriangles(buf)
		shell = append(shell, buf[:n]...)
		if err != nil {
			return shell
		}
	}
}
