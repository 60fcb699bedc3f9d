// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggsurface

import (
	"github.com/gogpu/framepump"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gpucontext"
)

// Surface is the framepump.Surface backed by a ggcanvas.Canvas.
// Its pixel size is the canvas size; its scale factor comes from the window.
type Surface struct {
	canvas *ggcanvas.Canvas
	window gpucontext.WindowProvider
}

// Size returns the canvas size in physical pixels.
func (s *Surface) Size() (width, height int) {
	return s.canvas.Size()
}

// ScaleFactor returns the window DPI scale, 1.0 when unknown.
func (s *Surface) ScaleFactor() float64 {
	if sf := s.window.ScaleFactor(); sf > 0 {
		return sf
	}
	return 1.0
}

// Canvas returns the gg context as a framepump.Canvas, or nil once the
// canvas is closed.
func (s *Surface) Canvas() framepump.Canvas {
	dc := s.canvas.Context()
	if dc == nil {
		return nil
	}
	return dc
}

// Context returns the gg drawing context, or nil once the canvas is closed.
func (s *Surface) Context() *gg.Context {
	return s.canvas.Context()
}

// GG returns the underlying ggcanvas for GPU upload (Flush, Render).
func (s *Surface) GG() *ggcanvas.Canvas {
	return s.canvas
}

var _ framepump.Surface = (*Surface)(nil)
