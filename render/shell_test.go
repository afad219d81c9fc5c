package render

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/soypat/orbital/field"
	"github.com/soypat/orbital/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func refinedBlob(t *testing.T, target int) mesh.Snapshot {
	t.Helper()
	f := field.Gaussian{Sigma: 0.5}
	e, err := mesh.New(f, f.Bounds(), mesh.Config{})
	require.NoError(t, err)
	defer e.Kill()
	e.RunUntil(target)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	require.NoError(t, e.Wait(ctx))
	return e.Snapshot()
}

func triArea(tri Triangle3) float64 {
	return r3.Norm(r3.Cross(r3.Sub(tri.V[1], tri.V[0]), r3.Sub(tri.V[2], tri.V[0]))) / 2
}

func TestShellOfWholeMeshIsBox(t *testing.T) {
	s := refinedBlob(t, 200)
	shell := ShellFaces(s, 0)
	// Splits happen at interior points so the box faces are never refined.
	require.Len(t, shell, 12)
	var area float64
	for _, tri := range shell {
		area += triArea(tri)
		centroid := r3.Scale(1./3, r3.Add(r3.Add(tri.V[0], tri.V[1]), tri.V[2]))
		assert.Greater(t, r3.Dot(tri.Normal(), centroid), 0.0, "inward facing triangle %v", tri)
	}
	assert.InDelta(t, 6*4*4, area, 1e-9)
}

func TestShellIsClosed(t *testing.T) {
	s := refinedBlob(t, 1500)
	shell := ShellFaces(s, 0.25)
	require.NotEmpty(t, shell)
	edges := make(map[[2]r3.Vec]int)
	for _, tri := range shell {
		for i := range tri.V {
			a, b := tri.V[i], tri.V[(i+1)%3]
			pair := []r3.Vec{a, b}
			sort.Slice(pair, func(i, j int) bool {
				if pair[i].X != pair[j].X {
					return pair[i].X < pair[j].X
				}
				if pair[i].Y != pair[j].Y {
					return pair[i].Y < pair[j].Y
				}
				return pair[i].Z < pair[j].Z
			})
			edges[[2]r3.Vec{pair[0], pair[1]}]++
		}
	}
	for e, n := range edges {
		if n%2 != 0 {
			t.Fatalf("edge %v used by %d triangles", e, n)
		}
	}
	assert.Empty(t, ShellFaces(s, 2))
}

func TestShellReaderChunks(t *testing.T) {
	s := refinedBlob(t, 1500)
	want := ShellFaces(s, 0.25)
	require.NotEmpty(t, want)
	r := NewShellReader(s, 0.25)
	var got []Triangle3
	buf := make([]Triangle3, 7)
	for {
		n, err := r.ReadTriangles(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}
	assert.Equal(t, want, got)

	path := filepath.Join(t.TempDir(), "shell.stl")
	n, err := StreamSTL(path, NewShellReader(s, 0.25))
	require.NoError(t, err)
	assert.Equal(t, len(want), n)
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	tris, _ := decodeSTL(t, b)
	assert.Len(t, tris, n)
}
