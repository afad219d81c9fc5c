package mesh

import (
	"math"

	"github.com/soypat/orbital/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// bccLattice is the cell grid behind SeedBCC. Its tetrahedra are congruent
// and nearly regular, so refinement starts from uniform sample spacing over the
// region instead of the 6 long Kuhn slivers. Each pair of face-adjacent cells contributes 4
// tetrahedra spanning their centers, so the seed covers the hull of the cell
// centers. See Molino, Bridson and Fedkiw, Tetrahedral Mesh Generation for
// Deformable Bodies.
type bccLattice struct {
	cells      []bccCell
	div        [3]int
	resolution float64
}

type bccidx int

// BCC node indices. follow same ordering as d3.Box.Vertices.
const (
	i000 bccidx = iota
	ix00
	ixy0
	i0y0
	i00z
	ix0z
	ixyz
	i0yz
	ictr // BCC central node index.
	nBCC // number of BCC nodes.
)

var unmeshed = [nBCC]int{-1, -1, -1 /**/, -1, -1, -1 /**/, -1, -1, -1}

type bccCell struct {
	nodes [nBCC]int
	pos   r3.Vec
	xp    *bccCell
	xm    *bccCell
	yp    *bccCell
	ym    *bccCell
	zp    *bccCell
	zm    *bccCell
	l     *bccLattice
}

func (c *bccCell) nodeAt(idx bccidx) int {
	if c == nil {
		return -1
	}
	if idx >= nBCC {
		panic("bad bcc node index")
	}
	return c.nodes[idx]
}

// sharedNode returns the index of corner idx if a face neighbor already
// created it, or -1.
func (c *bccCell) sharedNode(idx bccidx) int {
	var nx, ny, nz int
	switch idx {
	case ictr:
		// central node has no junction.
		return -1
	case i000:
		nx = c.xm.nodeAt(ix00)
		ny = c.ym.nodeAt(i0y0)
		nz = c.zm.nodeAt(i00z)
	case ix00:
		nx = c.xp.nodeAt(i000)
		ny = c.ym.nodeAt(ixy0)
		nz = c.zm.nodeAt(ix0z)
	case ixy0:
		nx = c.xp.nodeAt(i0y0)
		ny = c.yp.nodeAt(ix00)
		nz = c.zm.nodeAt(ixyz)
	case i0y0:
		nx = c.xm.nodeAt(ixy0)
		ny = c.yp.nodeAt(i000)
		nz = c.zm.nodeAt(i0yz)
	case i00z:
		nx = c.xm.nodeAt(ix0z)
		ny = c.ym.nodeAt(i0yz)
		nz = c.zp.nodeAt(i000)
	case ix0z:
		nx = c.xp.nodeAt(i00z)
		ny = c.ym.nodeAt(ixyz)
		nz = c.zp.nodeAt(ix00)
	case ixyz:
		nx = c.xp.nodeAt(i0yz)
		ny = c.yp.nodeAt(ix0z)
		nz = c.zp.nodeAt(ixy0)
	case i0yz:
		nx = c.xm.nodeAt(ixyz)
		ny = c.yp.nodeAt(i00z)
		nz = c.zp.nodeAt(i0y0)
	}
	bad := nx >= 0 && ny >= 0 && nx != ny ||
		nx >= 0 && nz >= 0 && nx != nz ||
		nz >= 0 && ny >= 0 && nz != ny
	if bad {
		panic("bad mesh operation detected")
	}
	return max(nx, ny, nz)
}

// newBCCLattice lays out cells of side resolution over b. Every axis
// must fit at least 3 cells.
func newBCCLattice(b r3.Box, resolution float64) *bccLattice {
	sz := d3.Box(b).Size()
	div := [3]int{
		int(math.Ceil(sz.X/resolution - 1e-9)),
		int(math.Ceil(sz.Y/resolution - 1e-9)),
		int(math.Ceil(sz.Z/resolution - 1e-9)),
	}
	if div[0] < 3 || div[1] < 3 || div[2] < 3 {
		panic("resolution too low")
	}
	l := &bccLattice{
		resolution: resolution,
		div:        div,
		cells:      make([]bccCell, div[0]*div[1]*div[2]),
	}
	for i := 0; i < div[0]; i++ {
		x := (float64(i)+0.5)*resolution + b.Min.X
		for j := 0; j < div[1]; j++ {
			y := (float64(j)+0.5)*resolution + b.Min.Y
			for k := 0; k < div[2]; k++ {
				z := (float64(k)+0.5)*resolution + b.Min.Z
				l.set(i, j, k, bccCell{pos: r3.Vec{X: x, Y: y, Z: z}, l: l, nodes: unmeshed})
			}
		}
	}
	return l
}

// mesh numbers the lattice nodes and returns the BCC tetrahedra connecting
// the centers of face-adjacent cells.
func (l *bccLattice) mesh() (nodes []r3.Vec, tetras [][4]int) {
	n := 0
	tetras = make([][4]int, 0, 12*len(l.cells))
	l.foreach(func(_, _, _ int, c *bccCell) {
		bb := c.box()
		vert := bb.Vertices()
		c.nodes[ictr] = n
		n++
		nodes = append(nodes, bb.Center())
		for in := i000; in < ictr; in++ {
			v := c.sharedNode(in)
			if v == -1 {
				c.nodes[in] = n
				n++
				nodes = append(nodes, vert[in])
			} else {
				c.nodes[in] = v
			}
		}
		tetras = append(tetras, c.tetras()...)
	})
	return nodes, tetras
}

// exists returns true if c is initialized and part of a lattice.
// Returns false if called on nil cell.
func (c *bccCell) exists() bool {
	return c != nil && c.l != nil
}

func (c *bccCell) box() d3.Box {
	res := c.l.resolution
	return d3.CenteredBox(c.pos, d3.Elem(res))
}

func (l *bccLattice) set(i, j, k int, c bccCell) {
	if i < 0 || j < 0 || k < 0 || i >= l.div[0] || j >= l.div[1] || k >= l.div[2] {
		panic("oob lattice access")
	}
	ca := l.at(i, j, k)
	*ca = c
	// Update x neighbors
	ca.xm = l.at(i-1, j, k)
	if ca.xm.exists() {
		ca.xm.xp = ca
	}
	ca.xp = l.at(i+1, j, k)
	if ca.xp.exists() {
		ca.xp.xm = ca
	}
	// Update y neighbors.
	ca.ym = l.at(i, j-1, k)
	if ca.ym.exists() {
		ca.ym.yp = ca
	}
	ca.yp = l.at(i, j+1, k)
	if ca.yp.exists() {
		ca.yp.ym = ca
	}
	// Update z neighbors
	ca.zm = l.at(i, j, k-1)
	if ca.zm.exists() {
		ca.zm.zp = ca
	}
	ca.zp = l.at(i, j, k+1)
	if ca.zp.exists() {
		ca.zp.zm = ca
	}
}

func (l *bccLattice) at(i, j, k int) *bccCell {
	if i < 0 || j < 0 || k < 0 || i >= l.div[0] || j >= l.div[1] || k >= l.div[2] {
		return nil
	}
	return &l.cells[i*l.div[1]*l.div[2]+j*l.div[2]+k]
}

func (l *bccLattice) foreach(f func(i, j, k int, c *bccCell)) {
	for i := 0; i < l.div[0]; i++ {
		ii := i * l.div[1] * l.div[2]
		for j := 0; j < l.div[1]; j++ {
			jj := j * l.div[2]
			for k := 0; k < l.div[2]; k++ {
				f(i, j, k, &l.cells[ii+jj+k])
			}
		}
	}
}

// tetras meshes the cell against its already numbered minor neighbors.
// Each tetrahedron joins two cell centers and one edge of their shared face.
func (c *bccCell) tetras() (tetras [][4]int) {
	nctr := c.nodes[ictr]
	// z is the major dimension of the lattice so zm is likely cached.
	if c.zm.exists() && c.zm.nodes[ictr] >= 0 {
		zctr := c.zm.nodes[ictr]
		tetras = append(tetras,
			[4]int{nctr, c.nodes[i000], c.nodes[ix00], zctr},
			[4]int{nctr, c.nodes[ix00], c.nodes[ixy0], zctr},
			[4]int{nctr, c.nodes[ixy0], c.nodes[i0y0], zctr},
			[4]int{nctr, c.nodes[i0y0], c.nodes[i000], zctr},
		)
	}
	if c.ym.exists() && c.ym.nodes[ictr] >= 0 {
		yctr := c.ym.nodes[ictr]
		tetras = append(tetras,
			[4]int{nctr, c.nodes[ix00], c.nodes[i000], yctr},
			[4]int{nctr, c.nodes[ix0z], c.nodes[ix00], yctr},
			[4]int{nctr, c.nodes[i00z], c.nodes[ix0z], yctr},
			[4]int{nctr, c.nodes[i000], c.nodes[i00z], yctr},
		)
	}
	if c.xm.exists() && c.xm.nodes[ictr] >= 0 {
		xctr := c.xm.nodes[ictr]
		tetras = append(tetras,
			[4]int{nctr, c.nodes[i000], c.nodes[i0y0], xctr},
			[4]int{nctr, c.nodes[i00z], c.nodes[i000], xctr},
			[4]int{nctr, c.nodes[i0yz], c.nodes[i00z], xctr},
			[4]int{nctr, c.nodes[i0y0], c.nodes[i0yz], xctr},
		)
	}
	return tetras
}
