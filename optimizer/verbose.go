package optimizer

import (
	"fmt"
	"io"
	"time"
)

// writeVerboseLine writes the stable, whitespace-delimited per-iteration
// line from spec §6. It goes through fmt.Fprintf directly rather than
// the structured logger (optimizer.go's log.Logger), since this format
// is a consumed contract for operational tooling, not a log record, and
// must not drift if the logging library's default formatting changes.
func writeVerboseLine(w io.Writer, iteration int, chi2 float64, iterTime, cumTime time.Duration, numEdges int) {
	fmt.Fprintf(w, "iteration= %d\t chi2= %g\t time= %g\t cumTime= %g\t edges= %d\n",
		iteration, chi2, iterTime.Seconds(), cumTime.Seconds(), numEdges)
}
