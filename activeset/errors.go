package activeset

import "errors"

// ErrEmptyVertexList indicates BuildIndexMapping was called with no
// vertices; the caller must not attempt to solve with an empty active
// set.
var ErrEmptyVertexList = errors.New("activeset: empty vertex list")
