package optimizer

import "errors"

// ErrNoActiveSet names the case of an empty candidate vertex list, for
// which no tempIndex assignment is possible. No function in this package
// returns it: InitializeOptimization reports that case by returning false.
var ErrNoActiveSet = errors.New("optimizer: active vertex set is empty")
