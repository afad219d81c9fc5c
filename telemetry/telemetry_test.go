package telemetry

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/soypat/orbital/field"
	"github.com/soypat/orbital/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func runEngine(t *testing.T, target int) []Sample {
	t.Helper()
	f := field.Gaussian{Center: r3.Vec{X: 0.1}, Sigma: 0.5}
	e, err := mesh.New(f, f.Bounds(), mesh.Config{})
	require.NoError(t, err)
	defer e.Close()
	e.RunUntil(target)
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	samples, err := Record(ctx, e, time.Millisecond)
	require.NoError(t, err)
	return samples
}

func TestRecord(t *testing.T) {
	samples := runEngine(t, 400)
	require.NotEmpty(t, samples)
	last := samples[len(samples)-1]
	assert.Equal(t, 400, last.Vertices)
	assert.Equal(t, mesh.Finished.String(), last.State)
	assert.Equal(t, 392, last.Splits)
	for i := 1; i < len(samples); i++ {
		assert.GreaterOrEqual(t, samples[i].Vertices, samples[i-1].Vertices)
		assert.GreaterOrEqual(t, samples[i].Elapsed, samples[i-1].Elapsed)
	}
}

type idle struct{}

func (idle) Stats() mesh.Stats { return mesh.Stats{State: mesh.Idle, Vertices: 8} }

func TestRecordIdle(t *testing.T) {
	samples, err := Record(context.Background(), idle{}, time.Millisecond)
	require.NoError(t, err)
	require.Len(t, samples, 1)
	assert.Equal(t, "idle", samples[0].State)
	_, err = Record(context.Background(), idle{}, 0)
	assert.Error(t, err)
}

type stuck struct{}

func (stuck) Stats() mesh.Stats { return mesh.Stats{State: mesh.Running} }

func TestRecordCanceled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	samples, err := Record(ctx, stuck{}, time.Millisecond)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.NotEmpty(t, samples)
}

func TestCSV(t *testing.T) {
	samples := []Sample{
		{ElapsedMs: 0.5, Vertices: 8, Tetrahedra: 6, Queued: 6, HeadPriority: 0.25, State: "running"},
		{ElapsedMs: 2, Vertices: 11, Tetrahedra: 15, Splits: 3, Queued: 15, State: "finished"},
	}
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, samples))
	header, _, _ := strings.Cut(buf.String(), "\n")
	assert.Equal(t, "elapsed_ms,vertices,tetrahedra,splits,queued,head_priority,state", header)

	got, err := ReadCSV(&buf)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 2*time.Millisecond, got[1].Elapsed)
	assert.Equal(t, samples[1].Splits, got[1].Splits)
	assert.Equal(t, "finished", got[1].State)

	assert.ErrorIs(t, WriteCSV(&buf, nil), ErrNoSamples)
}

func TestSaveFiles(t *testing.T) {
	samples := runEngine(t, 200)
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "convergence.csv")
	plotPath := filepath.Join(dir, "convergence.png")
	require.NoError(t, SaveCSV(csvPath, samples))
	require.NoError(t, SavePlot(plotPath, samples))
	for _, path := range []string{csvPath, plotPath} {
		info, err := os.Stat(path)
		require.NoError(t, err)
		assert.NotZero(t, info.Size())
	}
	assert.ErrorIs(t, SavePlot(plotPath, nil), ErrNoSamples)
}
