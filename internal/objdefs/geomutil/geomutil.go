// Package geomutil provides the small vector/bbox primitives object types
// need to implement their Position and DrawingViews projections, grounded
// on original_source's obj-traits/src/geom.rs (offset_line, bounding-box
// union, the x_y/x_z/y_z view projections).
package geomutil

import "github.com/weaveform/weave/internal/wire"

func Add(a, b wire.Point3) wire.Point3 {
	return wire.Point3{X: a.X + b.X, Y: a.Y + b.Y, Z: a.Z + b.Z}
}

func Sub(a, b wire.Point3) wire.Point3 {
	return wire.Point3{X: a.X - b.X, Y: a.Y - b.Y, Z: a.Z - b.Z}
}

func Lerp(a, b wire.Point3, t float64) wire.Point3 {
	return wire.Point3{
		X: a.X + (b.X-a.X)*t,
		Y: a.Y + (b.Y-a.Y)*t,
		Z: a.Z + (b.Z-a.Z)*t,
	}
}

// OffsetLine returns the four corners of the rectangle formed by offsetting
// the segment (first, second) by width/2 on either side, in the XY plane.
// Mirrors geom.rs's offset_line used by Wall and Door to build their prism
// footprint.
func OffsetLine(first, second wire.Point3, width float64) (a, b, c, d wire.Point3) {
	dx := second.X - first.X
	dy := second.Y - first.Y
	length := hypot(dx, dy)
	if length == 0 {
		return first, second, second, first
	}
	nx := -dy / length * width / 2
	ny := dx / length * width / 2
	a = wire.Point3{X: first.X + nx, Y: first.Y + ny, Z: first.Z}
	b = wire.Point3{X: second.X + nx, Y: second.Y + ny, Z: second.Z}
	c = wire.Point3{X: second.X - nx, Y: second.Y - ny, Z: second.Z}
	d = wire.Point3{X: first.X - nx, Y: first.Y - ny, Z: first.Z}
	return a, b, c, d
}

// HorizontalSpan is the planar (XY) distance between two points, used to
// lay out a wall's prism faces in a 2D view's local coordinate frame.
func HorizontalSpan(a, b wire.Point3) float64 {
	return hypot(b.X-a.X, b.Y-a.Y)
}

func hypot(x, y float64) float64 {
	if x == 0 && y == 0 {
		return 0
	}
	return sqrt(x*x + y*y)
}

func sqrt(v float64) float64 {
	if v <= 0 {
		return 0
	}
	// Newton's method; avoids importing math for a single call site while
	// matching its precision to the tolerance geometry comparisons need.
	z := v
	for i := 0; i < 30; i++ {
		z -= (z*z - v) / (2 * z)
	}
	return z
}

// UnionBBox returns the smallest box containing every point in pts.
func UnionBBox(pts ...wire.Point3) *wire.BBox {
	if len(pts) == 0 {
		return nil
	}
	min, max := pts[0], pts[0]
	for _, p := range pts[1:] {
		if p.X < min.X {
			min.X = p.X
		}
		if p.Y < min.Y {
			min.Y = p.Y
		}
		if p.Z < min.Z {
			min.Z = p.Z
		}
		if p.X > max.X {
			max.X = p.X
		}
		if p.Y > max.Y {
			max.Y = p.Y
		}
		if p.Z > max.Z {
			max.Z = p.Z
		}
	}
	return &wire.BBox{Min: min, Max: max}
}

// BBoxFromWallFootprint is the axis-aligned box of a prism between first
// and second, offset by width and extruded by height — the same box
// wall.rs's get_axis_aligned_bounding_box computes from offset_line.
func BBoxFromWallFootprint(first, second wire.Point3, width, height float64) *wire.BBox {
	a, b, c, d := OffsetLine(first, second, width)
	top := func(p wire.Point3) wire.Point3 { return wire.Point3{X: p.X, Y: p.Y, Z: p.Z + height} }
	return UnionBBox(a, b, c, d, top(a), top(b), top(c), top(d))
}
