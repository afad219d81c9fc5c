package mesh

import (
	"fmt"

	"github.com/soypat/orbital/internal/d3"
	"gonum.org/v1/gonum/spatial/r3"
)

// SeedKind selects the initial tetrahedralization of the region.
type SeedKind int

const (
	// SeedKuhn splits the region box into 6 tetrahedra around its main diagonal.
	SeedKuhn SeedKind = iota
	// SeedBCC meshes a body centered cubic lattice of 3 cells along the
	// shortest side of the region.
	SeedBCC
)

func (k SeedKind) String() string {
	switch k {
	case SeedKuhn:
		return "kuhn"
	case SeedBCC:
		return "bcc"
	}
	return fmt.Sprintf("SeedKind(%d)", int(k))
}

// ParseSeedKind is the inverse of SeedKind.String.
func ParseSeedKind(s string) (SeedKind, error) {
	switch s {
	case "kuhn", "":
		return SeedKuhn, nil
	case "bcc":
		return SeedBCC, nil
	}
	return 0, fmt.Errorf("unknown seed kind %q", s)
}

// Kuhn tetrahedra in d3.Box.Vertices numbering. All share the 0-6 diagonal.
var kuhnTetras = [6][4]int{
	{0, 1, 2, 6},
	{0, 1, 5, 6},
	{0, 3, 2, 6},
	{0, 3, 7, 6},
	{0, 4, 5, 6},
	{0, 4, 7, 6},
}

func seedKuhn(region d3.Box) (nodes []r3.Vec, tetras [][4]int) {
	return region.Vertices(), kuhnTetras[:]
}

func seedBCC(region d3.Box) (nodes []r3.Vec, tetras [][4]int) {
	res := d3.Min(region.Size()) / 3
	return newBCCLattice(r3.Box(region), res).mesh()
}
