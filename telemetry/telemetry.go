// Package telemetry samples subdivision engine progress over time and
// writes the convergence history as CSV and as a plot.
package telemetry

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/soypat/orbital/mesh"
)

var ErrNoSamples = errors.New("telemetry: no samples")

// Source reports engine progress. *mesh.Engine implements Source.
type Source interface {
	Stats() mesh.Stats
}

// Sample is one row of convergence history.
type Sample struct {
	Elapsed      time.Duration `csv:"-"`
	ElapsedMs    float64       `csv:"elapsed_ms"`
	Vertices     int           `csv:"vertices"`
	Tetrahedra   int           `csv:"tetrahedra"`
	Splits       int           `csv:"splits"`
	Queued       int           `csv:"queued"`
	HeadPriority float64       `csv:"head_priority"`
	State        string        `csv:"state"`
}

// Recorder accumulates samples relative to its creation time.
type Recorder struct {
	start   time.Time
	samples []Sample
}

func NewRecorder() *Recorder {
	return &Recorder{start: time.Now()}
}

// Add records s as observed now.
func (r *Recorder) Add(s mesh.Stats) Sample {
	elapsed := time.Since(r.start)
	smp := Sample{
		Elapsed:      elapsed,
		ElapsedMs:    float64(elapsed) / float64(time.Millisecond),
		Vertices:     s.Vertices,
		Tetrahedra:   s.Tetrahedra,
		Splits:       s.Splits,
		Queued:       s.Queued,
		HeadPriority: s.HeadPriority,
		State:        s.State.String(),
	}
	r.samples = append(r.samples, smp)
	return smp
}

// Samples returns the recorded history. The slice must not be modified.
func (r *Recorder) Samples() []Sample { return r.samples }

// Record polls src every interval until it stops running or ctx is done.
// The last sample is taken after the engine stopped so its counts are final.
func Record(ctx context.Context, src Source, interval time.Duration) ([]Sample, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("telemetry: non-positive interval %v", interval)
	}
	r := NewRecorder()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		s := src.Stats()
		if s.State != mesh.Running {
			r.Add(src.Stats())
			return r.Samples(), nil
		}
		r.Add(s)
		select {
		case <-ctx.Done():
			return r.Samples(), ctx.Err()
		case <-ticker.C:
		}
	}
}

// WriteCSV writes samples with a header row.
func WriteCSV(w io.Writer, samples []Sample) error {
	if len(samples) == 0 {
		return ErrNoSamples
	}
	if err := gocsv.Marshal(samples, w); err != nil {
		return fmt.Errorf("writing samples: %w", err)
	}
	return nil
}

// SaveCSV writes samples to a new file at path.
func SaveCSV(path string, samples []Sample) error {
	fp, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := WriteCSV(fp, samples); err != nil {
		fp.Close()
		return err
	}
	return fp.Close()
}

// ReadCSV parses samples written by WriteCSV.
func ReadCSV(r io.Reader) ([]Sample, error) {
	var samples []Sample
	if err := gocsv.Unmarshal(r, &samples); err != nil {
		return nil, fmt.Errorf("reading samples: %w", err)
	}
	for i := range samples {
		samples[i].Elapsed = time.Duration(samples[i].ElapsedMs * float64(time.Millisecond))
	}
	return samples, nil
}
