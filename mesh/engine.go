// Package mesh implements progressive adaptive tetrahedralization of a scalar field.
//
// An Engine seeds a coarse tetrahedral mesh over a region and refines it on a
// background goroutine, always splitting the tetrahedron where linear
// interpolation of the field is worst. Readers may copy the mesh at any time;
// vertices are append-only so an index observed once stays valid.
package mesh

import (
	"container/heap"
	"context"
	"errors"
	"fmt"
	"math"
	"math/cmplx"
	"sync"
	"sync/atomic"

	"github.com/soypat/orbital"
	"github.com/soypat/orbital/internal/d3"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"
)

var (
	ErrFieldUndefined = errors.New("field undefined at seed vertex")
	ErrBadRegion      = errors.New("degenerate mesh region")
	ErrDanglingIndex  = errors.New("tetrahedron references missing vertex")
)

// State is the lifecycle stage of an Engine.
type State int32

const (
	Idle State = iota
	Running
	Finished
	Killed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Running:
		return "running"
	case Finished:
		return "finished"
	case Killed:
		return "killed"
	}
	return fmt.Sprintf("State(%d)", int32(s))
}

// Vertex is a mesh node and the field sampled there.
type Vertex struct {
	Pos   r3.Vec
	Value complex128
}

// Config tunes refinement. The zero value is valid and selects the defaults.
type Config struct {
	Seed  SeedKind
	Split SplitKind
	// SampleDivisions is the barycentric lattice resolution of the error
	// estimator. Each tetrahedron is sampled at the (n-1)(n-2)(n-3)/6
	// interior points of its n-division lattice.
	SampleDivisions int
	// MaxDepth bounds how many times a seed tetrahedron may be split recursively.
	MaxDepth int
}

const (
	DefaultSampleDivisions = 11
	DefaultMaxDepth        = 64
	minSampleDivisions     = 4
)

func (c Config) withDefaults() Config {
	if c.SampleDivisions == 0 {
		c.SampleDivisions = DefaultSampleDivisions
	}
	if c.MaxDepth == 0 {
		c.MaxDepth = DefaultMaxDepth
	}
	return c
}

// Validate checks c after defaults are applied.
func (c Config) Validate() error {
	c = c.withDefaults()
	switch {
	case c.SampleDivisions < minSampleDivisions:
		return fmt.Errorf("sample divisions %d below minimum %d", c.SampleDivisions, minSampleDivisions)
	case c.MaxDepth < 1:
		return fmt.Errorf("max depth must be positive, got %d", c.MaxDepth)
	case c.Seed != SeedKuhn && c.Seed != SeedBCC:
		return fmt.Errorf("unknown seed %v", c.Seed)
	case c.Split != SplitStar && c.Split != SplitBisect:
		return fmt.Errorf("unknown split %v", c.Split)
	}
	return nil
}

type tetra struct {
	v      [4]int
	depth  int
	leaf   int  // index into Engine.leaves, -1 once split.
	queued bool // has an item in Engine.queue, possibly stale.
	estimation
}

// Stats is a point in time summary of refinement progress.
type Stats struct {
	State        State
	Vertices     int
	Tetrahedra   int
	Splits       int
	Queued       int
	HeadPriority float64
}

// Engine refines a tetrahedral mesh of a field in the background.
// All methods are safe for concurrent use.
type Engine struct {
	est      estimator
	maxDepth int
	split    SplitKind

	// mu guards verts and leaves. The worker is their only writer
	// so it reads them without locking.
	mu     sync.RWMutex
	verts  []Vertex
	leaves [][4]int

	// Owned by the worker goroutine while Running.
	tets  []tetra
	queue tetraQueue
	stale int               // queue items of tetrahedra split as a neighbor.
	edges map[edgeKey][]int // leaves around each edge, SplitBisect only.

	state  atomic.Int32
	target atomic.Int64
	splits atomic.Int64
	queued atomic.Int64
	head   atomic.Uint64 // float64 bits of the queue head priority.

	// ctl serializes RunUntil and Kill with the worker parking.
	ctl     sync.Mutex
	killed  bool
	running bool
	cancel  context.CancelFunc
	done    chan struct{} // closed when the last started worker returns.
}

// New seeds a mesh over region and samples f at every seed vertex.
// The returned engine is Idle; call RunUntil to start refinement.
func New(f orbital.Field, region r3.Box, cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg = cfg.withDefaults()
	box := d3.Box(region)
	if box.Empty() || !d3.IsFinite(box.Min) || !d3.IsFinite(box.Max) {
		return nil, fmt.Errorf("%w: %v", ErrBadRegion, region)
	}
	var nodes []r3.Vec
	var seeds [][4]int
	switch cfg.Seed {
	case SeedBCC:
		nodes, seeds = seedBCC(box)
	default:
		nodes, seeds = seedKuhn(box)
	}

	e := &Engine{
		est:      newEstimator(f, cfg.SampleDivisions),
		maxDepth: cfg.MaxDepth,
		split:    cfg.Split,
		verts:    make([]Vertex, len(nodes)),
		leaves:   make([][4]int, len(seeds)),
		tets:     make([]tetra, len(seeds)),
	}
	for i, p := range nodes {
		v := f.Evaluate(p)
		if cmplx.IsNaN(v) || cmplx.IsInf(v) {
			return nil, fmt.Errorf("%w: %v at %v", ErrFieldUndefined, v, p)
		}
		e.verts[i] = Vertex{Pos: p, Value: v}
	}
	if e.split == SplitBisect {
		e.edges = make(map[edgeKey][]int)
	}
	for i, s := range seeds {
		corners, values := e.corners(s)
		e.tets[i] = tetra{v: s, leaf: i, estimation: e.est.estimate(corners, values)}
		e.leaves[i] = s
		if e.edges != nil {
			e.linkEdges(i)
		}
		e.enqueue(i)
	}
	heap.Init(&e.queue)
	e.publishQueue()
	Logger().Debug("mesh seeded",
		zap.Stringer("seed", cfg.Seed),
		zap.Int("vertices", len(e.verts)),
		zap.Int("tetrahedra", len(e.leaves)),
		zap.Int("queued", e.pending()),
	)
	return e, nil
}

func (e *Engine) corners(v [4]int) (d3.Tetra, [4]complex128) {
	var t d3.Tetra
	var values [4]complex128
	for i, vi := range v {
		t[i] = e.verts[vi].Pos
		values[i] = e.verts[vi].Value
	}
	return t, values
}

// enqueue appends tetrahedron id to the queue without fixing the heap.
// Tetrahedra that are exact on the sample lattice or too deep stay leaves forever.
func (e *Engine) enqueue(id int) bool {
	t := &e.tets[id]
	if t.priority <= 0 || t.depth >= e.maxDepth {
		return false
	}
	e.queue = append(e.queue, queueItem{priority: t.priority, id: id})
	t.queued = true
	return true
}

// pending is the number of queued leaves.
func (e *Engine) pending() int { return len(e.queue) - e.stale }

// popLeaf pops the highest priority leaf, discarding stale items.
func (e *Engine) popLeaf() queueItem {
	for {
		item := heap.Pop(&e.queue).(queueItem)
		t := &e.tets[item.id]
		t.queued = false
		if t.leaf >= 0 {
			return item
		}
		e.stale--
	}
}

func (e *Engine) publishQueue() {
	for len(e.queue) > 0 && e.tets[e.queue[0].id].leaf < 0 {
		e.tets[heap.Pop(&e.queue).(queueItem).id].queued = false
		e.stale--
	}
	e.queued.Store(int64(e.pending()))
	e.head.Store(math.Float64bits(e.queue.head()))
}

// RunUntil starts or continues background refinement until the mesh has at
// least target vertices or no tetrahedron is worth splitting. A target not
// above the current vertex count does nothing, as does any call after Kill.
// A larger target while running raises the running target.
func (e *Engine) RunUntil(target int) {
	e.ctl.Lock()
	defer e.ctl.Unlock()
	if e.killed || target <= e.NumVertices() {
		return
	}
	if int64(target) > e.target.Load() {
		e.target.Store(int64(target))
	}
	if e.running {
		return // Worker observes the raised target.
	}
	if e.pending() == 0 {
		e.state.Store(int32(Finished))
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	e.cancel = cancel
	e.done = make(chan struct{})
	e.running = true
	e.state.Store(int32(Running))
	go e.work(ctx, e.done)
}

func (e *Engine) work(ctx context.Context, done chan struct{}) {
	defer close(done)
	log := Logger()
	log.Debug("refinement started", zap.Int("vertices", len(e.verts)), zap.Int64("target", e.target.Load()))
	for {
		if ctx.Err() != nil {
			log.Debug("refinement cancelled", zap.Int("vertices", len(e.verts)))
			return
		}
		if int64(len(e.verts)) >= e.target.Load() || e.pending() == 0 {
			if e.park() {
				return
			}
			continue
		}
		e.step()
	}
}

// park stops the worker unless the target was raised after the worker's last check.
func (e *Engine) park() bool {
	e.ctl.Lock()
	defer e.ctl.Unlock()
	if e.killed {
		return true
	}
	if int64(len(e.verts)) < e.target.Load() && e.pending() > 0 {
		return false
	}
	e.cancel()
	e.running = false
	e.state.Store(int32(Finished))
	Logger().Debug("refinement parked",
		zap.Int("vertices", len(e.verts)),
		zap.Int("queued", e.pending()),
	)
	return true
}

// step refines the head of the queue, adding one vertex.
func (e *Engine) step() {
	item := e.popLeaf()
	if e.split == SplitBisect {
		e.bisect(item.id)
	} else {
		e.star(item.id)
	}
	e.splits.Add(1)
	e.publishQueue()
}

// star splits tetrahedron id at its recorded split point, replacing it by
// four children that each swap one parent corner for the new vertex.
func (e *Engine) star(id int) {
	parent := e.tets[id]
	if parent.leaf < 0 {
		panic("bad mesh operation detected")
	}
	nv := len(e.verts)
	var children [4]tetra
	for i := range children {
		c := &children[i]
		c.v = parent.v
		c.v[i] = nv
		c.depth = parent.depth + 1
		var corners d3.Tetra
		var values [4]complex128
		for j, vj := range c.v {
			if vj == nv {
				corners[j], values[j] = parent.split, parent.value
			} else {
				corners[j], values[j] = e.verts[vj].Pos, e.verts[vj].Value
			}
		}
		c.estimation = e.est.estimate(corners, values)
	}

	e.mu.Lock()
	e.verts = append(e.verts, Vertex{Pos: parent.split, Value: parent.value})
	children[0].leaf = parent.leaf
	e.leaves[parent.leaf] = children[0].v
	for i := 1; i < len(children); i++ {
		children[i].leaf = len(e.leaves)
		e.leaves = append(e.leaves, children[i].v)
	}
	e.mu.Unlock()

	e.tets[id].leaf = -1
	base := len(e.tets)
	e.tets = append(e.tets, children[:]...)
	for i := range children {
		if e.enqueue(base + i) {
			heap.Fix(&e.queue, len(e.queue)-1)
		}
	}
}

// Kill stops refinement and blocks until the worker goroutine has returned.
// The mesh remains readable. Kill is idempotent.
func (e *Engine) Kill() {
	e.ctl.Lock()
	e.killed = true
	cancel, done := e.cancel, e.done
	e.ctl.Unlock()
	if done != nil {
		cancel()
		<-done
	}
	prev := State(e.state.Swap(int32(Killed)))
	if prev != Killed {
		Logger().Debug("engine killed", zap.Stringer("was", prev), zap.Int("vertices", e.NumVertices()))
	}
}

// Close kills the engine. It always returns nil.
func (e *Engine) Close() error {
	e.Kill()
	return nil
}

// Wait blocks until the worker parks or is killed, or ctx is done.
func (e *Engine) Wait(ctx context.Context) error {
	e.ctl.Lock()
	done := e.done
	e.ctl.Unlock()
	if done == nil {
		return nil
	}
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) State() State { return State(e.state.Load()) }

func (e *Engine) IsRunning() bool { return e.State() == Running }

// IsFinished reports whether refinement parked after reaching its target or
// running out of tetrahedra to split. It stays true until the next RunUntil.
func (e *Engine) IsFinished() bool { return e.State() == Finished }

// NumVertices returns the current vertex count. It never decreases.
func (e *Engine) NumVertices() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.verts)
}

// VertexPositions returns a copy of all vertex positions.
func (e *Engine) VertexPositions() []r3.Vec {
	e.mu.RLock()
	defer e.mu.RUnlock()
	pos := make([]r3.Vec, len(e.verts))
	for i := range e.verts {
		pos[i] = e.verts[i].Pos
	}
	return pos
}

// Vertices returns a copy of all vertices and their field samples.
func (e *Engine) Vertices() []Vertex {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([]Vertex(nil), e.verts...)
}

// TetrahedronVertexIndices returns a copy of the leaf tetrahedra. Every index
// is below the vertex count of any later call to Vertices or VertexPositions.
func (e *Engine) TetrahedronVertexIndices() [][4]int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return append([][4]int(nil), e.leaves...)
}

// Snapshot copies vertices and leaf tetrahedra in a single critical section.
func (e *Engine) Snapshot() Snapshot {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return Snapshot{
		Vertices:   append([]Vertex(nil), e.verts...),
		Tetrahedra: append([][4]int(nil), e.leaves...),
	}
}

// Stats returns progress counters. Fields are read independently and
// may be mutually inconsistent while running.
func (e *Engine) Stats() Stats {
	e.mu.RLock()
	nv, nt := len(e.verts), len(e.leaves)
	e.mu.RUnlock()
	return Stats{
		State:        e.State(),
		Vertices:     nv,
		Tetrahedra:   nt,
		Splits:       int(e.splits.Load()),
		Queued:       int(e.queued.Load()),
		HeadPriority: math.Float64frombits(e.head.Load()),
	}
}
