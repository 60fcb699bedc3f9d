// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggsurface

import (
	"errors"
	"fmt"
	"math"
	"sync"
	"sync/atomic"

	"github.com/gogpu/framepump"
	"github.com/gogpu/gg/integration/ggcanvas"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// Common errors returned by Host operations.
var (
	// ErrNilProvider is returned when a nil DeviceProvider is passed.
	ErrNilProvider = errors.New("ggsurface: nil DeviceProvider")

	// ErrNilWindow is returned when a nil WindowProvider is passed.
	ErrNilWindow = errors.New("ggsurface: nil WindowProvider")

	// ErrHostClosed is returned by Paint after Close.
	ErrHostClosed = errors.New("ggsurface: host is closed")
)

// Host adapts a gogpu window to the framepump paint and platform
// capabilities.
type Host struct {
	provider gpucontext.DeviceProvider
	window   gpucontext.WindowProvider
	paints   framepump.Event[framepump.Surface]

	mu      sync.Mutex
	surface *Surface
	closed  bool

	paintCount atomic.Uint64
	redraws    atomic.Uint64
}

// NewHost creates a Host for the given GPU device and window.
// The canvas is created lazily on the first Paint.
func NewHost(provider gpucontext.DeviceProvider, window gpucontext.WindowProvider) (*Host, error) {
	if provider == nil {
		return nil, ErrNilProvider
	}
	if window == nil {
		return nil, ErrNilWindow
	}
	return &Host{provider: provider, window: window}, nil
}

// OnPaint registers a paint listener.
func (h *Host) OnPaint(handler framepump.Handler[framepump.Surface]) framepump.Subscription {
	return h.paints.Add(handler)
}

// Paint handles one native paint event: it sizes the canvas to the window's
// physical pixels and delivers the surface to paint listeners. The first
// listener error is returned.
func (h *Host) Paint() error {
	s, err := h.prepare()
	if err != nil {
		return err
	}
	h.paintCount.Add(1)
	return h.paints.Fire(s)
}

func (h *Host) prepare() (*Surface, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return nil, ErrHostClosed
	}

	w, hgt := physicalSize(h.window)
	if h.surface == nil {
		canvas, err := ggcanvas.NewWithScale(h.provider, w, hgt, 1.0)
		if err != nil {
			return nil, fmt.Errorf("ggsurface: create canvas: %w", err)
		}
		h.surface = &Surface{canvas: canvas, window: h.window}
		framepump.Logger().Debug("ggsurface: canvas created", "width", w, "height", hgt)
		return h.surface, nil
	}

	if err := h.surface.canvas.Resize(w, hgt); err != nil {
		return nil, fmt.Errorf("ggsurface: resize canvas: %w", err)
	}
	return h.surface, nil
}

// physicalSize converts the window's logical size to pixels.
func physicalSize(window gpucontext.WindowProvider) (int, int) {
	w, h := window.Size()
	sf := window.ScaleFactor()
	if sf <= 0 {
		sf = 1
	}
	return int(math.Round(float64(w) * sf)), int(math.Round(float64(h) * sf))
}

// Surface returns the current surface, or nil before the first Paint.
func (h *Host) Surface() *Surface {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.surface
}

// Paints returns how many paint events were delivered.
func (h *Host) Paints() uint64 {
	return h.paintCount.Load()
}

// Redraws returns how many redraws were requested through InvalidateSurface.
func (h *Host) Redraws() uint64 {
	return h.redraws.Load()
}

// SetupSurface prepares the surface on the first paint. The canvas is
// flagged for a full upload; a provider without a surface format is
// treated as headless.
func (h *Host) SetupSurface(s framepump.Surface) error {
	format := h.provider.SurfaceFormat()
	info := h.provider.AdapterInfo()
	framepump.Logger().Info("ggsurface: surface setup",
		"format", format,
		"headless", format == gputypes.TextureFormatUndefined,
		"adapter", info.Name,
		"adapter_type", info.Type,
	)
	if gs, ok := s.(*Surface); ok {
		gs.canvas.MarkDirty()
	}
	return nil
}

// BeforeUpdate does nothing; input is delivered by the window's event source.
func (h *Host) BeforeUpdate() {}

// InvalidateSurface requests a redraw from the window.
func (h *Host) InvalidateSurface() {
	h.redraws.Add(1)
	h.window.RequestRedraw()
}

// Close releases the canvas. Close is idempotent.
func (h *Host) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return nil
	}
	h.closed = true
	if h.surface != nil {
		return h.surface.canvas.Close()
	}
	return nil
}

var (
	_ framepump.PaintSource = (*Host)(nil)
	_ framepump.Platform    = (*Host)(nil)
)
