package hypergraph

// ID identifies a vertex, edge, or parameter uniquely within a HyperGraph.
type ID int64

// Vertex is the manifold contract every state variable must satisfy.
//
// Dimension is the size of the local tangent space used for the linear
// system; EstimateDimension is the size of the ambient representation
// (EstimateDimension >= Dimension, e.g. a quaternion-based SE(3) pose has
// dimension 6 but an ambient estimate of 7 numbers).
//
// Concrete types embed BaseVertex for the id/fixed/marginalized/
// tempIndex/level/estimate-stack bookkeeping and implement Dimension,
// EstimateDimension, Oplus, EstimateData and SetEstimateData themselves.
type Vertex interface {
	ID() ID
	Dimension() int
	EstimateDimension() int

	Fixed() bool
	SetFixed(bool)
	Marginalized() bool
	SetMarginalized(bool)
	TempIndex() int
	SetTempIndex(int)
	Level() int
	SetLevel(int)

	// Version is a monotonic counter bumped whenever the estimate changes.
	// Caches compare it against the version they were computed at.
	Version() uint64

	// Oplus applies delta (length Dimension()) to the estimate via the
	// manifold retraction. Implementations must call Touch() once the
	// estimate has been mutated so caches and the push/pop stack observe
	// a consistent version.
	Oplus(delta []float64)

	// EstimateData/SetEstimateData expose the ambient estimate as a flat
	// vector of length EstimateDimension(). They back the estimate
	// push/pop stack and the debug NaN scan; they never need implement
	// anything beyond a flat copy in/out of the concrete state.
	EstimateData() []float64
	SetEstimateData(data []float64)

	Push()
	Pop()
	DiscardTop()

	// Edges returns the incident edge set, keyed by edge id. Non-owning:
	// the HyperGraph is the sole owner of edges.
	Edges() map[ID]Edge

	addEdge(e Edge)
	removeEdge(id ID)
}

// BaseVertex implements the id/fixed/marginalized/tempIndex/level/
// estimate-stack/incident-edge bookkeeping shared by every concrete
// vertex type. Embed it by value and call Init(self) from the concrete
// constructor before using Push/Pop/DiscardTop.
type BaseVertex struct {
	id           ID
	fixed        bool
	marginalized bool
	tempIndex    int
	level        int
	version      uint64

	stack [][]float64
	edges map[ID]Edge

	self Vertex // set by Init; used by Push/Pop/DiscardTop to snapshot the concrete estimate
}

// NewBaseVertex constructs a BaseVertex with the given id. tempIndex
// starts at -1, matching an unfixed-but-inactive vertex.
func NewBaseVertex(id ID) BaseVertex {
	return BaseVertex{id: id, tempIndex: -1, edges: make(map[ID]Edge)}
}

// Init records self so the base's Push/Pop/DiscardTop can read and write
// the concrete estimate through the Vertex interface. Concrete
// constructors must call this once, passing themselves.
func (b *BaseVertex) Init(self Vertex) { b.self = self }

// Touch bumps the version counter. Concrete Oplus implementations call
// this after mutating the estimate.
func (b *BaseVertex) Touch() { b.version++ }

func (b *BaseVertex) ID() ID       { return b.id }
func (b *BaseVertex) Version() uint64 { return b.version }

func (b *BaseVertex) Fixed() bool { return b.fixed }

// SetFixed marks the vertex fixed or free. Per the spec invariant, fixed
// and tempIndex >= 0 are mutually exclusive; setting fixed(true) clears
// any stale tempIndex.
func (b *BaseVertex) SetFixed(fixed bool) {
	b.fixed = fixed
	if fixed {
		b.tempIndex = -1
	}
}

func (b *BaseVertex) Marginalized() bool        { return b.marginalized }
func (b *BaseVertex) SetMarginalized(m bool)    { b.marginalized = m }
func (b *BaseVertex) TempIndex() int            { return b.tempIndex }

// SetTempIndex assigns the dense active-set index. Fatal if the vertex
// is fixed: a fixed vertex acquiring a tempIndex is a contract violation
// (spec §7).
func (b *BaseVertex) SetTempIndex(idx int) {
	if b.fixed && idx >= 0 {
		panic("hypergraph: fixed vertex cannot acquire a tempIndex")
	}
	b.tempIndex = idx
}

func (b *BaseVertex) Level() int      { return b.level }
func (b *BaseVertex) SetLevel(l int)  { b.level = l }

// Push duplicates the current estimate onto the stack.
func (b *BaseVertex) Push() {
	data := b.self.EstimateData()
	snap := make([]float64, len(data))
	copy(snap, data)
	b.stack = append(b.stack, snap)
}

// Pop restores the top of the stack into the estimate and removes it.
// Popping an empty stack is a no-op, mirroring g2o's behavior of never
// guarding callers against unbalanced push/pop at the API boundary.
func (b *BaseVertex) Pop() {
	if len(b.stack) == 0 {
		return
	}
	top := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]
	b.self.SetEstimateData(top)
	b.Touch()
}

// DiscardTop removes the top of the stack without restoring it.
func (b *BaseVertex) DiscardTop() {
	if len(b.stack) == 0 {
		return
	}
	b.stack = b.stack[:len(b.stack)-1]
}

// Edges returns the incident edge set.
func (b *BaseVertex) Edges() map[ID]Edge { return b.edges }

func (b *BaseVertex) addEdge(e Edge) { b.edges[e.ID()] = e }

func (b *BaseVertex) removeEdge(id ID) { delete(b.edges, id) }
