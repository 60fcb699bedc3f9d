package framepump

// Canvas is the drawing target of a paint event. Only transform control is
// needed by the coordinator; *gg.Context satisfies it.
type Canvas interface {
	// Identity resets the transformation matrix.
	Identity()

	// Scale post-multiplies the transformation matrix by a scale.
	Scale(sx, sy float64)
}

// Surface is the handle delivered with a paint event.
type Surface interface {
	// Size returns the surface dimensions in physical pixels.
	Size() (width, height int)

	// ScaleFactor returns the device-to-logical scale, 2.0 on HiDPI.
	ScaleFactor() float64

	// Canvas returns the canvas to draw into.
	Canvas() Canvas
}

// LogicalSize returns the surface dimensions in logical points.
func LogicalSize(s Surface) (width, height float64) {
	w, h := s.Size()
	sf := scaleOf(s)
	return float64(w) / sf, float64(h) / sf
}

// LogicalToPhysical maps a point in logical coordinates, such as a pointer
// position, to surface pixels.
func LogicalToPhysical(s Surface, x, y float64) (px, py float64) {
	sf := scaleOf(s)
	return x * sf, y * sf
}

// PhysicalToLogical is the inverse of [LogicalToPhysical].
func PhysicalToLogical(s Surface, px, py float64) (x, y float64) {
	sf := scaleOf(s)
	return px / sf, py / sf
}

// scaleOf returns the surface scale factor, treating unknown as 1.
func scaleOf(s Surface) float64 {
	if sf := s.ScaleFactor(); sf > 0 {
		return sf
	}
	return 1
}
