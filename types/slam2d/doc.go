// Package slam2d provides the 2D pose-graph vertex and edge types:
// VertexSE2 (a planar pose (x, y, theta)), EdgeSE2 (a relative pose
// measurement between two poses), and ParameterSE2Offset (a fixed
// sensor-to-robot offset), ported from the original implementation's
// types/slam2d package.
package slam2d
