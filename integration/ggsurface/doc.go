// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

// Package ggsurface connects framepump to gg canvases in gogpu windows.
//
// The data flow is:
//
//	native paint -> Host.Paint -> Coordinator (reset + DPI scale) -> Draw listeners -> gg.Context
//
// # Architecture
//
// [Host] owns a ggcanvas.Canvas sized to the window's physical pixels and
// implements two framepump capabilities:
//
//   - framepump.PaintSource: Paint delivers the [Surface] to paint listeners
//   - framepump.Platform: InvalidateSurface calls WindowProvider.RequestRedraw
//
// # Usage
//
//	host, err := ggsurface.NewHost(app.GPUContextProvider(), app)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer host.Close()
//
//	c, err := framepump.New(ticks, host, framepump.WithPlatform(host))
//	c.Draw.Add(func(s framepump.Surface) error {
//	    dc := s.(*ggsurface.Surface).Context()
//	    dc.DrawCircle(100, 100, 40) // logical coordinates
//	    return dc.Fill()
//	})
//
//	app.OnDraw(func(*gogpu.Context) { _ = host.Paint() })
//
// # Thread Safety
//
// Paint may be called from any goroutine, but not concurrently with itself.
// The canvas is only touched during Paint.
package ggsurface
