package mesh

import (
	"gonum.org/v1/gonum/spatial/kdtree"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	_ kdtree.Interface  = kdVertices{}
	_ kdtree.Comparable = kdVertex{}
)

// Locator answers nearest vertex queries over a fixed vertex set.
type Locator struct {
	tree *kdtree.Tree
}

// NewLocator builds a kd-tree over the vertex positions.
func NewLocator(verts []Vertex) *Locator {
	kd := make(kdVertices, len(verts))
	for i := range verts {
		kd[i] = kdVertex{pos: verts[i].Pos, idx: i}
	}
	return &Locator{tree: kdtree.New(kd, false)}
}

// Nearest returns the index of the vertex closest to p.
func (l *Locator) Nearest(p r3.Vec) (idx int, ok bool) {
	if l.tree.Root == nil {
		return -1, false
	}
	got, _ := l.tree.Nearest(kdVertex{pos: p})
	if got == nil {
		return -1, false
	}
	return got.(kdVertex).idx, true
}

type kdVertex struct {
	pos r3.Vec
	idx int
}

type kdVertices []kdVertex

func (k kdVertices) Index(i int) kdtree.Comparable { return k[i] }

// Len returns the length of the list.
func (k kdVertices) Len() int { return len(k) }

// Pivot partitions the list based on the dimension specified.
func (k kdVertices) Pivot(d kdtree.Dim) int {
	p := kdPlane{dim: int(d), verts: k}
	return kdtree.Partition(p, kdtree.MedianOfMedians(p))
}

// Slice returns a slice of the list using zero-based half
// open indexing equivalent to built-in slice indexing.
func (k kdVertices) Slice(start, end int) kdtree.Interface {
	return k[start:end]
}

// Compare returns the signed distance of a from the plane passing through
// b and perpendicular to the dimension d.
//
// Given c = a.Compare(b, d):
//
//	c = a_d - b_d
func (a kdVertex) Compare(b kdtree.Comparable, d kdtree.Dim) float64 {
	return kdComp(a.pos, b.(kdVertex).pos, int(d))
}

// Dims returns the number of dimensions described in the Comparable.
func (a kdVertex) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between the receiver and
// the parameter.
func (a kdVertex) Distance(b kdtree.Comparable) float64 {
	return r3.Norm2(r3.Sub(a.pos, b.(kdVertex).pos))
}

// c = a.dim - b.dim
func kdComp(a, b r3.Vec, dim int) float64 {
	switch dim {
	case 0:
		return a.X - b.X
	case 1:
		return a.Y - b.Y
	}
	return a.Z - b.Z
}

type kdPlane struct {
	dim   int
	verts kdVertices
}

func (p kdPlane) Less(i, j int) bool {
	return kdComp(p.verts[i].pos, p.verts[j].pos, p.dim) < 0
}
func (p kdPlane) Swap(i, j int) {
	p.verts[i], p.verts[j] = p.verts[j], p.verts[i]
}
func (p kdPlane) Len() int {
	return len(p.verts)
}
func (p kdPlane) Slice(start, end int) kdtree.SortSlicer {
	p.verts = p.verts[start:end]
	return p
}
