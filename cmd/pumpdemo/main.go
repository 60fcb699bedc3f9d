// Command pumpdemo drives a headless gg canvas through framepump.
//
// A dispatch loop owns the main goroutine. Ticks come from an interval
// source, paints from a goroutine that answers redraw requests. With -cross
// the paints run off the UI goroutine and the coordinator switches to its
// locked cross-thread regime.
//
// Usage:
//
//	pumpdemo -frames 120 -fps 60 -scale 2 -output pump.png -thumb 160
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log"
	"log/slog"
	"math"
	"os"
	"os/signal"
	"strings"
	"time"

	"golang.org/x/image/draw"
	"golang.org/x/sync/errgroup"

	"github.com/gogpu/framepump"
	"github.com/gogpu/framepump/dispatch"
	"github.com/gogpu/framepump/integration/ggsurface"
	"github.com/gogpu/framepump/ticksource"
	"github.com/gogpu/gg"
	"github.com/gogpu/gpucontext"
	"github.com/gogpu/gputypes"
)

type config struct {
	frames  int
	fps     int
	width   int
	height  int
	scale   float64
	output  string
	thumb   int
	cross   bool
	verbose bool
}

func main() {
	var cfg config
	flag.IntVar(&cfg.frames, "frames", 120, "frames to draw before exiting")
	flag.IntVar(&cfg.fps, "fps", 60, "tick rate")
	flag.IntVar(&cfg.width, "width", 400, "logical window width")
	flag.IntVar(&cfg.height, "height", 300, "logical window height")
	flag.Float64Var(&cfg.scale, "scale", 1, "window scale factor")
	flag.StringVar(&cfg.output, "output", "pump.png", "final frame output file")
	flag.IntVar(&cfg.thumb, "thumb", 160, "thumbnail width, 0 disables")
	flag.BoolVar(&cfg.cross, "cross", false, "paint from a non-UI goroutine")
	flag.BoolVar(&cfg.verbose, "v", false, "verbose logging")
	flag.Parse()

	if cfg.verbose {
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
		framepump.SetLogger(logger)
		gg.SetLogger(logger)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("pumpdemo: %v", err)
	}
}

func run(cfg config) error {
	if cfg.frames <= 0 || cfg.fps <= 0 {
		return errors.New("frames and fps must be positive")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()
	ctx, done := context.WithCancel(ctx)
	defer done()

	loop := dispatch.New(dispatch.WithLockOSThread())
	window := newWindow(cfg.width, cfg.height, cfg.scale)
	host, err := ggsurface.NewHost(headlessProvider{}, window)
	if err != nil {
		return err
	}
	defer func() { _ = host.Close() }()

	d := &demo{cfg: cfg, host: host, window: window, loop: loop, done: done}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		defer loop.Stop()
		return d.run(gctx)
	})

	// The loop owns the main goroutine until the demo finishes.
	if err := loop.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if d.coord != nil {
		_ = d.coord.Close()
		if err := d.coord.Err(); err != nil {
			return err
		}
	}
	return d.save()
}

// demo holds the animation state. Update and Draw listeners touch it only
// inside coordinator cycles, which never overlap.
type demo struct {
	cfg    config
	host   *ggsurface.Host
	window *window
	loop   *dispatch.Loop
	done   context.CancelFunc

	coord *framepump.Coordinator
	angle float64
	drawn int
}

func (d *demo) run(ctx context.Context) error {
	select {
	case <-d.loop.Started():
	case <-ctx.Done():
		return nil
	}

	interval := ticksource.NewInterval(time.Second / time.Duration(d.cfg.fps))
	var ticks framepump.TickSource = interval
	if !d.cross() {
		// Forward interval ticks onto the UI goroutine.
		manual := &ticksource.Manual{}
		interval.Subscribe(func() error {
			var err error
			if cerr := d.loop.Call(func() { err = manual.Tick() }); cerr != nil {
				return cerr
			}
			return err
		})
		ticks = manual
	}

	var err error
	if cerr := d.loop.Call(func() {
		d.coord, err = framepump.New(ticks, d.host,
			framepump.WithDispatcher(d.loop),
			framepump.WithPlatform(d.host),
		)
	}); cerr != nil {
		return cerr
	}
	if err != nil {
		return err
	}
	d.coord.Initialized.Add(func(s framepump.Surface) error {
		w, h := s.Size()
		log.Printf("initialized: %v, %dx%d px", d.coord.Mode(), w, h)
		return nil
	})
	d.coord.Update.Add(d.update)
	d.coord.Draw.Add(d.draw)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return ignoreCanceled(interval.Run(gctx)) })
	g.Go(func() error { return d.paintLoop(gctx) })

	// The native window paints once when it is first shown.
	d.window.RequestRedraw()
	return g.Wait()
}

func (d *demo) cross() bool { return d.cfg.cross }

// paintLoop answers redraw requests, on the UI goroutine unless -cross.
func (d *demo) paintLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-d.window.redraw:
		}

		var err error
		if d.cross() {
			err = d.host.Paint()
		} else if cerr := d.loop.Call(func() { err = d.host.Paint() }); cerr != nil {
			if ctx.Err() != nil {
				return nil
			}
			return cerr
		}
		if err != nil {
			return fmt.Errorf("paint: %w", err)
		}
	}
}

func (d *demo) update(f framepump.Frame) error {
	d.angle = float64(f.Seq) * 2 * math.Pi / float64(d.cfg.fps)
	d.coord.MarkDirty()
	return nil
}

func (d *demo) draw(s framepump.Surface) error {
	dc := s.(*ggsurface.Surface).Context()
	w, h := framepump.LogicalSize(s)

	dc.ClearWithColor(gg.RGB(0.1, 0.12, 0.18))

	cx, cy := w/2, h/2
	r := math.Min(w, h) / 3
	dc.SetRGBA(0.3, 0.6, 1, 0.4)
	dc.SetLineWidth(2)
	dc.DrawCircle(cx, cy, r)
	if err := dc.Stroke(); err != nil {
		return err
	}

	dc.SetColor(gg.HSL(math.Mod(d.angle*180/math.Pi, 360), 0.8, 0.6))
	dc.DrawCircle(cx+r*math.Cos(d.angle), cy+r*math.Sin(d.angle), r/6)
	if err := dc.Fill(); err != nil {
		return err
	}

	d.drawn++
	if d.drawn >= d.cfg.frames {
		d.done()
	}
	return nil
}

// save writes the last frame and its thumbnail.
func (d *demo) save() error {
	s := d.host.Surface()
	if s == nil || s.Context() == nil {
		return errors.New("no frame was painted")
	}
	dc := s.Context()
	if err := dc.SavePNG(d.cfg.output); err != nil {
		return fmt.Errorf("save %s: %w", d.cfg.output, err)
	}
	log.Printf("saved %s (%dx%d, %d frames, %d redraws)",
		d.cfg.output, dc.Width(), dc.Height(), d.drawn, d.host.Redraws())

	if d.cfg.thumb <= 0 {
		return nil
	}
	path := strings.TrimSuffix(d.cfg.output, ".png") + "_thumb.png"
	if err := writeThumbnail(path, dc.Image(), d.cfg.thumb); err != nil {
		return fmt.Errorf("thumbnail: %w", err)
	}
	log.Printf("saved %s", path)
	return nil
}

func writeThumbnail(path string, src image.Image, width int) error {
	b := src.Bounds()
	height := max(1, b.Dy()*width/max(1, b.Dx()))
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, dst); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// window is a headless gpucontext.WindowProvider. RequestRedraw coalesces
// into a single pending paint.
type window struct {
	w, h   int
	sf     float64
	redraw chan struct{}
}

func newWindow(w, h int, sf float64) *window {
	return &window{w: w, h: h, sf: sf, redraw: make(chan struct{}, 1)}
}

func (w *window) Size() (int, int)     { return w.w, w.h }
func (w *window) ScaleFactor() float64 { return w.sf }

func (w *window) RequestRedraw() {
	select {
	case w.redraw <- struct{}{}:
	default:
	}
}

// headlessProvider is a gpucontext.DeviceProvider with no GPU behind it.
type headlessProvider struct{}

func (headlessProvider) Device() gpucontext.Device             { return nil }
func (headlessProvider) Queue() gpucontext.Queue               { return nil }
func (headlessProvider) Adapter() gpucontext.Adapter           { return nil }
func (headlessProvider) SurfaceFormat() gputypes.TextureFormat { return gputypes.TextureFormatUndefined }
func (headlessProvider) AdapterInfo() gpucontext.AdapterInfo {
	return gpucontext.AdapterInfo{Name: "headless", Type: gpucontext.AdapterTypeSoftware}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

var (
	_ gpucontext.WindowProvider = (*window)(nil)
	_ gpucontext.DeviceProvider = headlessProvider{}
)
