package wire

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ReadParameter parses a parameter record: an id followed by its
// value vector (e.g. three numbers, (x, y, theta), for an SE2 offset).
func ReadParameter(fields []string, valueCount int) (id int64, values []float64, err error) {
	if len(fields) != 1+valueCount {
		return 0, nil, fmt.Errorf("%w: want %d fields, got %d", ErrFieldCount, 1+valueCount, len(fields))
	}
	id, err = strconv.ParseInt(fields[0], 10, 64)
	if err != nil {
		return 0, nil, fmt.Errorf("wire: parameter id: %w", err)
	}
	values = make([]float64, valueCount)
	for i := 0; i < valueCount; i++ {
		v, err := strconv.ParseFloat(fields[1+i], 64)
		if err != nil {
			return 0, nil, fmt.Errorf("wire: parameter value %d: %w", i, err)
		}
		values[i] = v
	}
	return id, values, nil
}

// ReadParameterLine splits a line on whitespace and delegates to
// ReadParameter.
func ReadParameterLine(line string, valueCount int) (int64, []float64, error) {
	return ReadParameter(strings.Fields(line), valueCount)
}

// WriteParameter writes a single parameter record: id then its values,
// in full float64 precision.
func WriteParameter(w io.Writer, id int64, values []float64) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%d ", id)
	for _, v := range values {
		fmt.Fprintf(&b, "%s ", strconv.FormatFloat(v, 'g', -1, 64))
	}
	line := strings.TrimSpace(b.String())
	_, err := fmt.Fprintln(w, line)
	return err
}
