package optimizer

import "time"

// Stats is one iteration's record, matching spec §4.5's statistics
// requirement. The optimizer pre-allocates the backing slice (via
// SetStatistics) before a run starts and writes iteration i into
// slot i exclusively, per spec §5's resource-ownership rule.
type Stats struct {
	Iteration     int
	Chi2          float64
	TimeIteration time.Duration
	NumEdges      int
	NumVertices   int
}
