// Copyright 2026 The gogpu Authors
// SPDX-License-Identifier: MIT

package ggsurface

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/gogpu/framepump"
	"github.com/gogpu/framepump/ticksource"
	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

// mockProvider implements gpucontext.DeviceProvider for testing.
type mockProvider struct {
	format gputypes.TextureFormat
}

func newMockProvider() *mockProvider {
	return &mockProvider{format: gputypes.TextureFormatBGRA8Unorm}
}

func (m *mockProvider) Device() gpucontext.Device             { return struct{}{} }
func (m *mockProvider) Queue() gpucontext.Queue               { return struct{}{} }
func (m *mockProvider) Adapter() gpucontext.Adapter           { return nil }
func (m *mockProvider) SurfaceFormat() gputypes.TextureFormat { return m.format }
func (m *mockProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "mock", Type: gpucontext.AdapterTypeSoftware}
}

// mockWindow is a WindowProvider whose size can change between paints.
type mockWindow struct {
	gpucontext.NullWindowProvider
	redraws atomic.Int32
}

func newMockWindow(w, h int, sf float64) *mockWindow {
	return &mockWindow{NullWindowProvider: gpucontext.NullWindowProvider{W: w, H: h, SF: sf}}
}

func (m *mockWindow) RequestRedraw() { m.redraws.Add(1) }

func newTestHost(t *testing.T, window gpucontext.WindowProvider) *Host {
	t.Helper()
	h, err := NewHost(newMockProvider(), window)
	if err != nil {
		t.Fatalf("NewHost() error = %v", err)
	}
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func TestNewHostNil(t *testing.T) {
	if _, err := NewHost(nil, newMockWindow(1, 1, 1)); !errors.Is(err, ErrNilProvider) {
		t.Errorf("NewHost(nil provider) error = %v, want ErrNilProvider", err)
	}
	if _, err := NewHost(newMockProvider(), nil); !errors.Is(err, ErrNilWindow) {
		t.Errorf("NewHost(nil window) error = %v, want ErrNilWindow", err)
	}
}

func TestHostPaintPhysicalSize(t *testing.T) {
	tests := []struct {
		name         string
		w, h         int
		sf           float64
		wantW, wantH int
	}{
		{"standard", 400, 300, 1, 400, 300},
		{"retina", 400, 300, 2, 800, 600},
		{"fractional", 400, 300, 1.5, 600, 450},
		{"unknown scale", 320, 240, 0, 320, 240},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestHost(t, newMockWindow(tt.w, tt.h, tt.sf))

			var got framepump.Surface
			h.OnPaint(func(s framepump.Surface) error { got = s; return nil })
			if err := h.Paint(); err != nil {
				t.Fatalf("Paint() error = %v", err)
			}
			if got == nil {
				t.Fatal("paint listener not called")
			}
			w, hgt := got.Size()
			if w != tt.wantW || hgt != tt.wantH {
				t.Errorf("Size() = (%d, %d), want (%d, %d)", w, hgt, tt.wantW, tt.wantH)
			}
			lw, lh := framepump.LogicalSize(got)
			if lw != float64(tt.w) || lh != float64(tt.h) {
				t.Errorf("LogicalSize() = (%v, %v), want (%d, %d)", lw, lh, tt.w, tt.h)
			}
		})
	}
}

func TestHostPaintResizes(t *testing.T) {
	window := newMockWindow(200, 100, 1)
	h := newTestHost(t, window)

	if err := h.Paint(); err != nil {
		t.Fatal(err)
	}
	first := h.Surface()

	window.W, window.H = 300, 150
	if err := h.Paint(); err != nil {
		t.Fatal(err)
	}
	if h.Surface() != first {
		t.Error("Paint replaced the surface instead of resizing it")
	}
	if w, hgt := first.Size(); w != 300 || hgt != 150 {
		t.Errorf("Size() after resize = (%d, %d), want (300, 150)", w, hgt)
	}
	if h.Paints() != 2 {
		t.Errorf("Paints() = %d, want 2", h.Paints())
	}
}

func TestHostPaintZeroSize(t *testing.T) {
	h := newTestHost(t, newMockWindow(0, 0, 1))
	if err := h.Paint(); err == nil {
		t.Error("Paint() on a zero-sized window succeeded")
	}
	if h.Surface() != nil {
		t.Error("Surface() is set after a failed Paint")
	}
}

func TestHostClose(t *testing.T) {
	h := newTestHost(t, newMockWindow(64, 64, 1))
	if err := h.Paint(); err != nil {
		t.Fatal(err)
	}
	s := h.Surface()

	if err := h.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := h.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if err := h.Paint(); !errors.Is(err, ErrHostClosed) {
		t.Errorf("Paint() after Close = %v, want ErrHostClosed", err)
	}
	if s.Canvas() != nil || s.Context() != nil {
		t.Error("closed surface still exposes a canvas")
	}
}

func TestHostInvalidateSurface(t *testing.T) {
	window := newMockWindow(64, 64, 1)
	h := newTestHost(t, window)

	h.InvalidateSurface()
	h.InvalidateSurface()

	if h.Redraws() != 2 {
		t.Errorf("Redraws() = %d, want 2", h.Redraws())
	}
	if got := window.redraws.Load(); got != 2 {
		t.Errorf("window RequestRedraw calls = %d, want 2", got)
	}
}

func TestHostSetupSurfaceMarksDirty(t *testing.T) {
	h := newTestHost(t, newMockWindow(64, 64, 1))
	if err := h.Paint(); err != nil {
		t.Fatal(err)
	}
	s := h.Surface()
	if err := s.GG().Draw(func(*gg.Context) {}); err != nil {
		t.Fatal(err)
	}
	if err := h.SetupSurface(s); err != nil {
		t.Fatalf("SetupSurface() error = %v", err)
	}
	if !s.GG().IsDirty() {
		t.Error("canvas not dirty after SetupSurface")
	}
}

func TestSurfaceScaleFactorDefault(t *testing.T) {
	h := newTestHost(t, newMockWindow(10, 10, 0))
	if err := h.Paint(); err != nil {
		t.Fatal(err)
	}
	if sf := h.Surface().ScaleFactor(); sf != 1 {
		t.Errorf("ScaleFactor() = %v, want 1", sf)
	}
}

func TestCoordinatorOnHost(t *testing.T) {
	window := newMockWindow(400, 300, 2)
	h := newTestHost(t, window)
	ticks := &ticksource.Manual{}

	c, err := framepump.New(ticks, h, framepump.WithPlatform(h))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = c.Close() })

	var transform gg.Matrix
	var drawn int
	c.Update.Add(func(framepump.Frame) error {
		c.MarkDirty()
		return nil
	})
	c.Draw.Add(func(s framepump.Surface) error {
		dc := s.(*Surface).Context()
		transform = dc.GetTransform()
		dc.ClearWithColor(gg.White)
		dc.SetRGB(1, 0, 0)
		dc.DrawRectangle(10, 10, 100, 50)
		drawn++
		return dc.Fill()
	})

	if err := h.Paint(); err != nil {
		t.Fatalf("first paint: %v", err)
	}
	if c.State() != framepump.StateRunning {
		t.Fatalf("State() = %v, want running", c.State())
	}
	if got := window.redraws.Load(); got != 1 {
		t.Errorf("redraws after bootstrap = %d, want 1", got)
	}

	if err := ticks.Tick(); err != nil {
		t.Fatal(err)
	}
	if err := h.Paint(); err != nil {
		t.Fatalf("paint: %v", err)
	}

	if drawn != 1 {
		t.Fatalf("drawn = %d, want 1", drawn)
	}
	if want := gg.Scale(2, 2); transform != want {
		t.Errorf("transform at Draw = %+v, want %+v", transform, want)
	}

	// A logical (20, 20) lies inside the red rectangle.
	px, py := framepump.LogicalToPhysical(h.Surface(), 20, 20)
	if px != 40 || py != 40 {
		t.Fatalf("LogicalToPhysical(20, 20) = (%v, %v), want (40, 40)", px, py)
	}
	img := h.Surface().Context().Image()
	r, g, b, _ := img.At(int(px), int(py)).RGBA()
	if r>>8 < 200 || g>>8 > 50 || b>>8 > 50 {
		t.Errorf("pixel (%v,%v) = (%d,%d,%d), want red", px, py, r>>8, g>>8, b>>8)
	}
}
