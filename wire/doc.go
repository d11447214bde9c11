// Package wire implements the stable, whitespace-delimited edge and
// parameter text format: each edge record is zero or more parameter
// ids, the measurement vector, then the upper-triangular entries of
// the information matrix; each parameter record is an id followed by
// its own fixed-width value vector. Tag/vertex-id parsing and type
// dispatch belong to a higher-level collaborator; this package only
// round-trips the numeric payload a concrete vertex/edge/parameter
// type already knows the shape of.
//
// This package is intentionally built on bufio/strconv/fmt rather
// than a third-party parser: the record shape is a single line of
// fixed-arity floats with no nesting, quoting, or schema evolution to
// justify a parser library, and none of the retrieval pack's example
// repos reach for one to parse a comparably flat numeric format.
package wire
