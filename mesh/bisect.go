package mesh

import (
	"container/heap"
	"fmt"

	"github.com/soypat/orbital/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SplitKind selects how a tetrahedron is refined.
type SplitKind int

const (
	// SplitStar inserts the worst sampled point of the tetrahedron and
	// connects it to the 4 faces. Faces of the seed are never subdivided.
	SplitStar SplitKind = iota
	// SplitBisect halves the longest edge of the tetrahedron and every leaf
	// sharing that edge, so faces shrink along with the tetrahedra.
	SplitBisect
)

func (k SplitKind) String() string {
	switch k {
	case SplitStar:
		return "star"
	case SplitBisect:
		return "bisect"
	}
	return fmt.Sprintf("SplitKind(%d)", int(k))
}

// ParseSplitKind is the inverse of SplitKind.String.
func ParseSplitKind(s string) (SplitKind, error) {
	switch s {
	case "star", "":
		return SplitStar, nil
	case "bisect":
		return SplitBisect, nil
	}
	return 0, fmt.Errorf("unknown split kind %q", s)
}

// edgeKey is a mesh edge with its lower vertex index first.
type edgeKey [2]int

func newEdgeKey(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

var tetraEdges = [6][2]int{{0, 1}, {0, 2}, {0, 3}, {1, 2}, {1, 3}, {2, 3}}

// linkEdges records leaf id in the edge ring of its 6 edges.
func (e *Engine) linkEdges(id int) {
	v := e.tets[id].v
	for _, ed := range tetraEdges {
		k := newEdgeKey(v[ed[0]], v[ed[1]])
		e.edges[k] = append(e.edges[k], id)
	}
}

func (e *Engine) unlinkEdges(id int) {
	v := e.tets[id].v
	for _, ed := range tetraEdges {
		k := newEdgeKey(v[ed[0]], v[ed[1]])
		ring := e.edges[k]
		for i, other := range ring {
			if other == id {
				ring = append(ring[:i], ring[i+1:]...)
				break
			}
		}
		if len(ring) == 0 {
			delete(e.edges, k)
		} else {
			e.edges[k] = ring
		}
	}
}

// longestEdge returns the vertex indices of the longest edge of v.
// Ties go to the first edge in tetraEdges order.
func (e *Engine) longestEdge(v [4]int) (a, b int) {
	best := -1.0
	for _, ed := range tetraEdges {
		pa, pb := e.verts[v[ed[0]]].Pos, e.verts[v[ed[1]]].Pos
		if l := r3.Norm2(r3.Sub(pa, pb)); l > best {
			best, a, b = l, v[ed[0]], v[ed[1]]
		}
	}
	return a, b
}

// bisect splits the longest edge of tetrahedron id at its midpoint. Every
// leaf around the edge is halved too so no face is left with a hanging vertex.
func (e *Engine) bisect(id int) {
	a, b := e.longestEdge(e.tets[id].v)
	key := newEdgeKey(a, b)
	ring := append([]int(nil), e.edges[key]...)
	if len(ring) == 0 {
		panic("bad mesh operation detected")
	}
	mid := r3.Scale(0.5, r3.Add(e.verts[a].Pos, e.verts[b].Pos))
	value := e.est.f.Evaluate(mid)
	nv := len(e.verts)

	children := make([]tetra, 0, 2*len(ring))
	for _, pid := range ring {
		parent := e.tets[pid]
		for _, replace := range [2]int{a, b} {
			c := tetra{v: parent.v, depth: parent.depth + 1}
			var corners d3.Tetra
			var values [4]complex128
			for j, vj := range c.v {
				if vj == replace {
					c.v[j] = nv
					corners[j], values[j] = mid, value
				} else {
					corners[j], values[j] = e.verts[vj].Pos, e.verts[vj].Value
				}
			}
			c.estimation = e.est.estimate(corners, values)
			children = append(children, c)
		}
	}

	e.mu.Lock()
	e.verts = append(e.verts, Vertex{Pos: mid, Value: value})
	for i, pid := range ring {
		ca, cb := &children[2*i], &children[2*i+1]
		ca.leaf = e.tets[pid].leaf
		e.leaves[ca.leaf] = ca.v
		cb.leaf = len(e.leaves)
		e.leaves = append(e.leaves, cb.v)
	}
	e.mu.Unlock()

	for _, pid := range ring {
		e.unlinkEdges(pid)
		p := &e.tets[pid]
		p.leaf = -1
		if p.queued {
			e.stale++
		}
	}
	base := len(e.tets)
	e.tets = append(e.tets, children...)
	for i := range children {
		e.linkEdges(base + i)
		if e.enqueue(base + i) {
			heap.Fix(&e.queue, len(e.queue)-1)
		}
	}
}
