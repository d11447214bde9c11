// Package metrics instruments the optimizer loop with Prometheus
// collectors: an iteration counter, a chi-squared gauge, an
// iteration-duration histogram, and active edge/vertex gauges. It is
// optional — an Optimizer with no Recorder attached runs exactly the
// same, it simply has nothing to export.
package metrics
