package render

import (
	"math"
	"testing"

	"github.com/fogleman/fauxgl"
	"github.com/soypat/orbital/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func TestAppendVolumeVertices(t *testing.T) {
	s := mesh.Snapshot{
		Vertices: []mesh.Vertex{
			{Pos: r3.Vec{}, Value: 1},
			{Pos: r3.Vec{X: 1}, Value: complex(0, 2)},
			{Pos: r3.Vec{Y: 1}, Value: -1},
			{Pos: r3.Vec{Z: 1}, Value: 0},
			{Pos: r3.Vec{X: 1, Y: 1, Z: 1}, Value: 1},
		},
		Tetrahedra: [][4]int{{0, 1, 2, 3}, {1, 2, 3, 4}},
	}
	got := AppendVolumeVertices(nil, s)
	require.Len(t, got, 24)
	assert.Equal(t, float32(4), got[1].Density)
	assert.Equal(t, float32(1), got[0].Pos.X+got[1].Pos.X+got[2].Pos.X)
	// Every corner of each tetrahedron appears in 3 of its 4 faces.
	counts := map[[3]float32]int{}
	for _, v := range got[:12] {
		counts[[3]float32{v.Pos.X, v.Pos.Y, v.Pos.Z}]++
	}
	require.Len(t, counts, 4)
	for _, c := range counts {
		assert.Equal(t, 3, c)
	}
	got = AppendVolumeVertices(got[:0], mesh.Snapshot{})
	assert.Empty(t, got)
}

func TestPhaseColor(t *testing.T) {
	red := PhaseColor(0)
	assert.InDelta(t, 1, red[0], 1e-6)
	assert.InDelta(t, 0.25, red[1], 1e-6)
	assert.InDelta(t, 0.25, red[2], 1e-6)
	opposite := PhaseColor(math.Pi)
	assert.InDelta(t, 0, opposite[0], 1e-6)
}

func TestColumnMajor(t *testing.T) {
	m := fauxgl.Translate(fauxgl.V(1, 2, 3))
	c := ColumnMajor(m)
	assert.Equal(t, [3]float32{1, 2, 3}, [3]float32{c[12], c[13], c[14]})
	assert.Equal(t, float32(1), c[0])
	assert.Equal(t, float32(1), c[15])
}
