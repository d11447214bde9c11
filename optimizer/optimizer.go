package optimizer

import (
	"io"
	"math"
	"os"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/schdomin/g2o/activeset"
	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/metrics"
	"github.com/schdomin/g2o/propagator"
	"github.com/schdomin/g2o/solver"
	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the active-edge count above which
// computeActiveErrors/linearizeSystem fan out over an errgroup worker
// pool instead of running sequentially, per spec §5's "heuristic ≈ 50".
const parallelThreshold = 50

// Optimizer is the iteration driver: it owns the active vertex/edge set
// and index map, and implements solver.Graph so any solver.LinearSolver
// can read and update it.
type Optimizer struct {
	graph *hypergraph.HyperGraph

	activeVertices []hypergraph.Vertex
	activeEdges    []hypergraph.Edge
	indexMap       *activeset.IndexMap

	algorithm solver.LinearSolver

	verbose       bool
	verboseWriter io.Writer
	stopFlag      *bool

	stats        []Stats
	statsEnabled bool
	cumTime      time.Duration

	actions *actionRegistry

	recorder *metrics.Recorder
	logger   *log.Logger

	checkNaN bool
}

// NewOptimizer constructs an Optimizer bound to graph. Callers must
// still call one of the InitializeOptimization variants and
// SetAlgorithm before Optimize.
func NewOptimizer(graph *hypergraph.HyperGraph) *Optimizer {
	return &Optimizer{
		graph:         graph,
		verboseWriter: os.Stdout,
		actions:       newActionRegistry(),
		logger:        log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true}),
		checkNaN:      true,
	}
}

// --- initialization ---------------------------------------------------

// InitializeOptimization builds the active set from every vertex in the
// graph, filtered to edges at level (or every level if level < 0).
func (o *Optimizer) InitializeOptimization(level int) bool {
	return o.initFromVertexSet(o.graph.VertexSet(), level)
}

// InitializeOptimizationVertexSet builds the active set from vset at level.
func (o *Optimizer) InitializeOptimizationVertexSet(vset map[hypergraph.ID]hypergraph.Vertex, level int) bool {
	return o.initFromVertexSet(vset, level)
}

// InitializeOptimizationEdgeSet builds the active set from eset and every
// vertex it references.
func (o *Optimizer) InitializeOptimizationEdgeSet(eset map[hypergraph.ID]hypergraph.Edge) bool {
	set := activeset.FromEdgeSet(eset)
	return o.commitActiveSet(set)
}

func (o *Optimizer) initFromVertexSet(vset map[hypergraph.ID]hypergraph.Vertex, level int) bool {
	set := activeset.FromVertexSet(vset, level)
	return o.commitActiveSet(set)
}

func (o *Optimizer) commitActiveSet(set *activeset.Set) bool {
	im, err := activeset.BuildIndexMapping(set.Vertices)
	if err != nil {
		o.logger.Warn("initializeOptimization: active set rejected", "error", err)
		return false
	}
	o.activeVertices = set.Vertices
	o.activeEdges = set.Edges
	o.indexMap = im
	if o.algorithm != nil {
		o.algorithm.SetGraph(o)
	}
	return true
}

// UpdateInitialization appends vnew/enew to the active set without
// reordering existing indices, then notifies the bound algorithm of the
// structural delta.
func (o *Optimizer) UpdateInitialization(vnew []hypergraph.Vertex, enew []hypergraph.Edge) bool {
	if o.indexMap == nil {
		return false
	}
	added := o.indexMap.Append(vnew)
	o.activeVertices = append(o.activeVertices, vnew...)
	o.activeEdges = append(o.activeEdges, enew...)
	sortByID(o.activeVertices)
	sortByID(o.activeEdges)
	if o.algorithm == nil {
		return true
	}
	return o.algorithm.UpdateStructure(added, enew)
}

func sortByID[T interface{ ID() hypergraph.ID }](s []T) {
	sort.Slice(s, func(i, j int) bool { return s[i].ID() < s[j].ID() })
}

// --- solver.Graph ------------------------------------------------------

func (o *Optimizer) ActiveEdges() []hypergraph.Edge      { return o.activeEdges }
func (o *Optimizer) ActiveVertices() []hypergraph.Vertex { return o.activeVertices }
func (o *Optimizer) IndexMap() *activeset.IndexMap       { return o.indexMap }

// ComputeActiveErrors runs every registered ComputeActiveError action,
// then refreshes each active edge's error (and, if a kernel is
// attached, its robustified weight). Fanned out over an errgroup pool
// above parallelThreshold active edges; each edge only reads vertex
// estimates and writes its own error/weight storage, so no
// synchronization between edges is needed.
func (o *Optimizer) ComputeActiveErrors() {
	o.actions.Invoke(ComputeActiveError)
	if len(o.activeEdges) <= parallelThreshold {
		for _, e := range o.activeEdges {
			e.ComputeError()
			e.RobustifyError()
		}
		return
	}
	var g errgroup.Group
	for _, e := range o.activeEdges {
		e := e
		g.Go(func() error {
			e.ComputeError()
			e.RobustifyError()
			return nil
		})
	}
	_ = g.Wait() // edge computation never returns an error
}

// ActiveChi2 returns the sum of active edges' (robustified) chi2.
func (o *Optimizer) ActiveChi2() float64 {
	total := 0.0
	for _, e := range o.activeEdges {
		total += e.Chi2()
	}
	return total
}

// LinearizeSystem computes the Jacobian blocks of every active edge.
// Fanned out the same way as ComputeActiveErrors.
func (o *Optimizer) LinearizeSystem() {
	if len(o.activeEdges) <= parallelThreshold {
		for _, e := range o.activeEdges {
			e.LinearizeOplus()
		}
		return
	}
	var g errgroup.Group
	for _, e := range o.activeEdges {
		e := e
		g.Go(func() error {
			e.LinearizeOplus()
			return nil
		})
	}
	_ = g.Wait()
}

// Update applies delta, a concatenated increment vector in tempIndex
// offset order, to every active non-fixed vertex via Oplus. Segments
// for fixed vertices (tempIndex < 0) are skipped. Panics on a length
// mismatch (spec §7: contract violation, fatal).
func (o *Optimizer) Update(delta []float64) {
	if o.checkNaN {
		for _, d := range delta {
			if math.IsNaN(d) {
				o.logger.Warn("update: increment vector contains NaN")
				break
			}
		}
	}
	offset := 0
	for _, v := range o.indexMap.Vertices() {
		if v.TempIndex() < 0 {
			continue
		}
		dim := v.Dimension()
		if offset+dim > len(delta) {
			panic("optimizer: increment vector shorter than active tangent space")
		}
		v.Oplus(delta[offset : offset+dim])
		offset += dim
	}
	if offset != len(delta) {
		panic("optimizer: increment vector length does not match active tangent space")
	}
	if o.checkNaN {
		o.scanEstimatesForNaN()
	}
}

func (o *Optimizer) scanEstimatesForNaN() {
	for _, v := range o.indexMap.Vertices() {
		for _, x := range v.EstimateData() {
			if math.IsNaN(x) {
				o.logger.Warnf("update: vertex %d estimate contains NaN", v.ID())
				break
			}
		}
	}
}

// --- initial guess -------------------------------------------------

// ComputeInitialGuess propagates estimates from roots over the active
// edge set using cost. Vertices with tempIndex == -1 (outside the
// active tangent space, e.g. fixed or excluded) are saved and restored
// around the call, per spec §4.3's caller-responsibility guarantee.
func (o *Optimizer) ComputeInitialGuess(roots []hypergraph.Vertex, cost propagator.CostFunc) {
	var saved []hypergraph.Vertex
	for _, v := range o.activeVertices {
		if v.TempIndex() == -1 {
			v.Push()
			saved = append(saved, v)
		}
	}
	propagator.Propagate(roots, o.activeEdges, cost)
	for _, v := range saved {
		v.Pop()
	}
}

// --- push/pop batch --------------------------------------------------

// Push duplicates every active vertex's current estimate onto its stack.
func (o *Optimizer) Push() {
	for _, v := range o.activeVertices {
		v.Push()
	}
}

// Pop restores every active vertex's estimate from its stack.
func (o *Optimizer) Pop() {
	for _, v := range o.activeVertices {
		v.Pop()
	}
}

// DiscardTop removes the top of every active vertex's stack without
// restoring it.
func (o *Optimizer) DiscardTop() {
	for _, v := range o.activeVertices {
		v.DiscardTop()
	}
}

// --- lookup ------------------------------------------------------------

// FindActiveVertex binary-searches the (id-sorted) active vertex list.
func (o *Optimizer) FindActiveVertex(id hypergraph.ID) (hypergraph.Vertex, bool) {
	i := sort.Search(len(o.activeVertices), func(i int) bool { return o.activeVertices[i].ID() >= id })
	if i < len(o.activeVertices) && o.activeVertices[i].ID() == id {
		return o.activeVertices[i], true
	}
	return nil, false
}

// FindActiveEdge binary-searches the (id-sorted) active edge list.
func (o *Optimizer) FindActiveEdge(id hypergraph.ID) (hypergraph.Edge, bool) {
	i := sort.Search(len(o.activeEdges), func(i int) bool { return o.activeEdges[i].ID() >= id })
	if i < len(o.activeEdges) && o.activeEdges[i].ID() == id {
		return o.activeEdges[i], true
	}
	return nil, false
}

// --- gauge ---------------------------------------------------------------

// FindGauge returns a candidate gauge-fixing vertex (see the package-level
// findGauge for the exact rule). It considers the full graph, not just the
// active set: gauge freedom is a property of the graph's global symmetry
// group, not of whatever subset is currently being solved.
func (o *Optimizer) FindGauge() (hypergraph.Vertex, bool) { return findGauge(o.graph.Vertices()) }

// GaugeFreedom reports whether the graph is gauge-free, scanning every
// vertex and edge in the graph rather than only the active set, matching
// sparse_optimizer.cpp's own full-catalog scan.
func (o *Optimizer) GaugeFreedom() bool { return gaugeFreedom(o.graph.Vertices(), o.graph.Edges()) }

// --- actions -------------------------------------------------------------

func (o *Optimizer) AddComputeErrorAction(a Action) bool    { return o.actions.Add(ComputeActiveError, a) }
func (o *Optimizer) RemoveComputeErrorAction(a Action) bool { return o.actions.Remove(ComputeActiveError, a) }

// --- configuration ---------------------------------------------------

func (o *Optimizer) SetAlgorithm(algo solver.LinearSolver) {
	o.algorithm = algo
	if o.indexMap != nil {
		algo.SetGraph(o)
	}
}

func (o *Optimizer) SetVerbose(v bool) { o.verbose = v }

// SetVerboseWriter overrides the destination for per-iteration verbose
// lines; defaults to os.Stdout.
func (o *Optimizer) SetVerboseWriter(w io.Writer) { o.verboseWriter = w }

// SetForceStopFlag installs an externally-owned stop flag, polled at
// each iteration boundary.
func (o *Optimizer) SetForceStopFlag(flag *bool) { o.stopFlag = flag }

// SetStatistics installs the pre-allocated statistics slice; Optimize
// writes iteration i into stats[i] for every iteration i < len(stats).
func (o *Optimizer) SetStatistics(stats []Stats) {
	o.stats = stats
	o.statsEnabled = stats != nil
}

// SetRecorder attaches a Prometheus recorder; Optimize reports every
// completed iteration to it.
func (o *Optimizer) SetRecorder(r *metrics.Recorder) { o.recorder = r }

// SetLogger overrides the operator-diagnostics logger.
func (o *Optimizer) SetLogger(l *log.Logger) { o.logger = l }

// --- marginals -------------------------------------------------------

// ComputeMarginals returns true and the requested blocks of H^-1, or
// false if no algorithm is bound or it has none to offer.
func (o *Optimizer) ComputeMarginals(blockIndices [][2]int) (*solver.MarginalBlocks, bool) {
	if o.algorithm == nil {
		return nil, false
	}
	return o.algorithm.ComputeMarginals(blockIndices)
}

// --- the loop ----------------------------------------------------------

// Optimize runs up to iterations steps of the bound algorithm, returning
// the count actually run: -1 if initialization failed, 0 if the
// algorithm reported failure at any step, or the count completed
// so far if the stop flag fired or the algorithm reported Terminate.
func (o *Optimizer) Optimize(iterations int, online bool) int {
	if o.indexMap == nil || o.indexMap.Len() == 0 || o.algorithm == nil {
		return -1
	}
	if o.algorithm.State() == solver.Uninitialized {
		if !o.algorithm.Init(online) {
			o.logger.Warn("optimize: linear solver initialization failed")
			return -1
		}
	}

	ran := 0
	failed := false
	for i := 0; i < iterations; i++ {
		if o.stopFlag != nil && *o.stopFlag {
			break
		}
		o.actions.Invoke(PreIteration)

		start := time.Now()
		outcome := o.algorithm.Solve(i, online)
		iterTime := time.Since(start)
		o.cumTime += iterTime

		if outcome == solver.Fail {
			o.logger.Warn("optimize: solve failed, numerical failure at iteration", "iteration", i)
			failed = true
		}

		// Refresh errors at the updated estimates so the reported chi2 is
		// this step's result. ComputeActiveError actions do not fire here.
		for _, e := range o.activeEdges {
			e.ComputeError()
			e.RobustifyError()
		}
		chi2 := o.ActiveChi2()
		if o.statsEnabled && i < len(o.stats) {
			o.stats[i] = Stats{
				Iteration:     i,
				Chi2:          chi2,
				TimeIteration: iterTime,
				NumEdges:      len(o.activeEdges),
				NumVertices:   len(o.activeVertices),
			}
		}
		if o.recorder != nil {
			o.recorder.Observe(chi2, iterTime, len(o.activeEdges), len(o.activeVertices))
		}
		if o.verbose {
			writeVerboseLine(o.verboseWriter, i, chi2, iterTime, o.cumTime, len(o.activeEdges))
		}

		o.actions.Invoke(PostIteration)
		ran++

		if failed || outcome == solver.Terminate {
			break
		}
	}
	if failed {
		return 0
	}
	return ran
}
