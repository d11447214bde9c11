package wire

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// ErrFieldCount is returned when a record does not have exactly the
// number of whitespace-delimited fields its declared shape requires.
var ErrFieldCount = errors.New("wire: unexpected field count")

// ReadEdge parses fields into numParams parameter ids, a dim-length
// measurement vector, and a dim x dim symmetric information matrix
// whose upper triangle (row-major, i <= j) is read from the record
// and mirrored into the lower triangle.
func ReadEdge(fields []string, numParams, dim int) (paramIDs []int64, measurement []float64, information *mat.SymDense, err error) {
	infoCount := dim * (dim + 1) / 2
	want := numParams + dim + infoCount
	if len(fields) != want {
		return nil, nil, nil, fmt.Errorf("%w: want %d fields, got %d", ErrFieldCount, want, len(fields))
	}

	cursor := 0
	paramIDs = make([]int64, numParams)
	for i := 0; i < numParams; i++ {
		id, err := strconv.ParseInt(fields[cursor], 10, 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("wire: parameter id %d: %w", i, err)
		}
		paramIDs[i] = id
		cursor++
	}

	measurement = make([]float64, dim)
	for i := 0; i < dim; i++ {
		v, err := strconv.ParseFloat(fields[cursor], 64)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("wire: measurement component %d: %w", i, err)
		}
		measurement[i] = v
		cursor++
	}

	data := make([]float64, dim*dim)
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			v, err := strconv.ParseFloat(fields[cursor], 64)
			if err != nil {
				return nil, nil, nil, fmt.Errorf("wire: information(%d,%d): %w", i, j, err)
			}
			data[i*dim+j] = v
			data[j*dim+i] = v
			cursor++
		}
	}

	return paramIDs, measurement, mat.NewSymDense(dim, data), nil
}

// ReadEdgeLine splits a line on whitespace and delegates to ReadEdge.
func ReadEdgeLine(line string, numParams, dim int) ([]int64, []float64, *mat.SymDense, error) {
	return ReadEdge(strings.Fields(line), numParams, dim)
}

// WriteEdge writes a single edge record in the format ReadEdge
// accepts, in full float64 precision.
func WriteEdge(w io.Writer, paramIDs []int64, measurement []float64, information *mat.SymDense) error {
	var b strings.Builder
	for _, id := range paramIDs {
		fmt.Fprintf(&b, "%d ", id)
	}
	for _, m := range measurement {
		fmt.Fprintf(&b, "%s ", strconv.FormatFloat(m, 'g', -1, 64))
	}
	dim, _ := information.Dims()
	for i := 0; i < dim; i++ {
		for j := i; j < dim; j++ {
			fmt.Fprintf(&b, "%s ", strconv.FormatFloat(information.At(i, j), 'g', -1, 64))
		}
	}
	line := strings.TrimSpace(b.String())
	_, err := fmt.Fprintln(w, line)
	return err
}
