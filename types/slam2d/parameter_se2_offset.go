package slam2d

import (
	"io"
	"strings"

	"github.com/schdomin/g2o/hypergraph"
	"github.com/schdomin/g2o/wire"
)

// ParameterSE2Offset is a fixed sensor-to-robot offset on SE2: three
// numbers (x, y, theta), read/written exactly as the original
// ParameterSE2Offset does.
type ParameterSE2Offset struct {
	id     hypergraph.ID
	Offset SE2
}

// NewParameterSE2Offset constructs a parameter with the given id and
// offset.
func NewParameterSE2Offset(id hypergraph.ID, offset SE2) *ParameterSE2Offset {
	return &ParameterSE2Offset{id: id, Offset: offset}
}

func (p *ParameterSE2Offset) ID() hypergraph.ID { return p.id }

// SetOffset replaces the stored offset.
func (p *ParameterSE2Offset) SetOffset(offset SE2) { p.Offset = offset }

// CacheKey identifies this parameter's contribution to an owning
// vertex's CacheStore entry; see VertexSE2.WorldPose.
func (p *ParameterSE2Offset) CacheKey() string { return "se2offset" }

// WriteTo serializes this parameter as id, x, y, theta.
func (p *ParameterSE2Offset) WriteTo(w io.Writer) error {
	return wire.WriteParameter(w, int64(p.id), p.Offset.ToVector())
}

// ReadFrom parses a wire-format parameter record (as produced by
// WriteTo) into this parameter's id and offset.
func (p *ParameterSE2Offset) ReadFrom(line string) error {
	id, values, err := wire.ReadParameterLine(strings.TrimSpace(line), 3)
	if err != nil {
		return err
	}
	p.id = hypergraph.ID(id)
	p.Offset = SE2{X: values[0], Y: values[1], Theta: values[2]}
	return nil
}
