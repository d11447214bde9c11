// Package slam3d provides VertexPointXYZ (a free 3D landmark) and
// EdgePointXYZ (a displacement measurement between two points),
// ported from the original implementation's types/slam3d package.
package slam3d
