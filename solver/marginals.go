package solver

import "gonum.org/v1/gonum/mat"

// MarginalBlocks holds selected diagonal and off-diagonal blocks of
// H^-1, keyed by the (row, col) tempIndex block pair passed to
// ComputeMarginals. Blocks are stored row ahead of col; querying
// (col, row) for row != col transposes the stored block.
type MarginalBlocks struct {
	blocks map[[2]int]*mat.Dense
}

// Block returns the inverse block for the given tempIndex pair, and
// whether it was computed.
func (m *MarginalBlocks) Block(row, col int) (*mat.Dense, bool) {
	if m == nil {
		return nil, false
	}
	if b, ok := m.blocks[[2]int{row, col}]; ok {
		return b, true
	}
	if b, ok := m.blocks[[2]int{col, row}]; ok {
		var t mat.Dense
		t.CloneFrom(b.T())
		return &t, true
	}
	return nil, false
}
