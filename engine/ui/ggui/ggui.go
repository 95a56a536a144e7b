// Package ggui is the ui.Session adapter rasterizing the engine's overlay widgets with gogpu/gg.
package ggui

import (
	"fmt"
	"image"
	"image/color"
	"time"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/draw"
	"golang.org/x/image/font/gofont/goregular"
)

// DefaultFontSize is the text size used when no size is configured.
const DefaultFontSize = 14.0

// CameraControls is the camera state the Camera panel shows and edits.
type CameraControls interface {
	AutoRotate() bool
	SetAutoRotate(enabled bool)
	ScrollSpeed() float32
	DragSpeed() float32
}

// SessionOption is a functional option applied to a Session during construction via New.
type SessionOption func(*Session)

// WithFontSize sets the text size in pixels.
//
// Parameters:
//   - size: the font size; non-positive values keep DefaultFontSize
//
// Returns:
//   - SessionOption: a function that applies the font size option
func WithFontSize(size float64) SessionOption {
	return func(s *Session) {
		if size > 0 {
			s.fontSize = size
		}
	}
}

// WithFPS sets the source of the frame rate shown in the top-right label.
//
// Parameters:
//   - fps: returns the latest frames-per-second measurement
//
// Returns:
//   - SessionOption: a function that applies the FPS option
func WithFPS(fps func() float64) SessionOption {
	return func(s *Session) {
		s.fps = fps
	}
}

// WithCameraControls connects the Camera panel to the camera controller.
//
// Parameters:
//   - controls: the controller state
//
// Returns:
//   - SessionOption: a function that applies the camera option
func WithCameraControls(controls CameraControls) SessionOption {
	return func(s *Session) {
		s.camera = controls
	}
}

// Session draws an FPS label, a bottom bar with a slider, and a Camera panel into a
// screen-sized transparent canvas.
type Session struct {
	canvas   *gg.Context
	font     *text.FontSource
	face     text.Face
	fontSize float64

	fps    func() float64
	camera CameraControls

	width  int
	height int
	cursor image.Point

	slider         float64
	draggingSlider bool

	fpsLabel string
	dirty    bool
	frame    *image.RGBA
}

var _ ui.Session = &Session{}

// New creates a Session for a width x height framebuffer.
//
// Parameters:
//   - width: framebuffer width in pixels
//   - height: framebuffer height in pixels
//   - opts: a variadic list of SessionOption functions
//
// Returns:
//   - *Session: the session
//   - error: error if the UI font cannot be loaded
func New(width, height int, opts ...SessionOption) (*Session, error) {
	gg.SetLogger(common.Logger())

	s := &Session{
		fontSize: DefaultFontSize,
		fps:      func() float64 { return 0 },
		width:    max(width, 1),
		height:   max(height, 1),
		cursor:   image.Pt(-1, -1),
		dirty:    true,
	}
	for _, opt := range opts {
		opt(s)
	}

	font, err := text.NewFontSource(goregular.TTF)
	if err != nil {
		return nil, fmt.Errorf("failed to load UI font: %w", err)
	}
	s.font = font
	s.face = font.Face(s.fontSize)
	s.canvas = gg.NewContext(s.width, s.height)
	s.canvas.SetFont(s.face)
	return s, nil
}

// Slider returns the value of the bottom bar slider in [0, 100].
func (s *Session) Slider() float64 {
	return s.slider
}

func (s *Session) BeginFrame(time.Duration) {
	label := fmt.Sprintf("%.0f fps", s.fps())
	if label != s.fpsLabel {
		s.fpsLabel = label
		s.dirty = true
	}
}

func (s *Session) DispatchInput(ev ui.Event) bool {
	switch ev.Kind {
	case ui.EventResize:
		s.resize(int(ev.Width), int(ev.Height))
		return false

	case ui.EventCursorMoved:
		s.cursor = image.Pt(int(ev.X), int(ev.Y))
		if s.draggingSlider {
			s.setSliderFromCursor()
			return true
		}
		return s.overUI(s.cursor)

	case ui.EventMouseButton:
		if ev.Button != common.MouseButtonLeft {
			return s.overUI(s.cursor)
		}
		if !ev.Pressed {
			was := s.draggingSlider
			s.draggingSlider = false
			return was || s.overUI(s.cursor)
		}
		l := s.layout()
		switch {
		case s.camera != nil && s.cursor.In(l.checkbox.Inset(-2)):
			s.camera.SetAutoRotate(!s.camera.AutoRotate())
			s.dirty = true
			return true
		case s.cursor.In(l.sliderHit):
			s.draggingSlider = true
			s.setSliderFromCursor()
			return true
		}
		return s.overUI(s.cursor)

	case ui.EventScroll:
		return s.overUI(s.cursor)

	default:
		return false
	}
}

func (s *Session) EndFrame() ui.PaintList {
	changed := s.dirty || s.frame == nil
	if changed {
		s.paint()
		s.dirty = false
	}
	return ui.PaintList{
		ScreenSize: image.Pt(s.width, s.height),
		Overlay:    s.frame,
		Changed:    changed,
	}
}

// Close releases the font and canvas.
func (s *Session) Close() error {
	if s.canvas != nil {
		_ = s.canvas.Close()
		s.canvas = nil
	}
	if s.font != nil {
		err := s.font.Close()
		s.font = nil
		return err
	}
	return nil
}

func (s *Session) resize(width, height int) {
	if width <= 0 || height <= 0 || (width == s.width && height == s.height) {
		return
	}
	if err := s.canvas.Resize(width, height); err != nil {
		common.Logger().Warn("ui canvas resize failed", "error", err)
		return
	}
	s.width, s.height = width, height
	s.dirty = true
}

func (s *Session) setSliderFromCursor() {
	track := s.layout().sliderTrack
	t := float64(s.cursor.X-track.Min.X) / float64(track.Dx())
	value := min(max(t, 0), 1) * 100
	if value != s.slider {
		s.slider = value
		s.dirty = true
	}
}

func (s *Session) overUI(p image.Point) bool {
	l := s.layout()
	return p.In(l.bottomBar) || (s.camera != nil && p.In(l.cameraPanel))
}

func (s *Session) paint() {
	c := s.canvas
	c.Clear()
	l := s.layout()

	c.SetRGBA(0.9, 0.9, 0.9, 1)
	c.DrawStringAnchored(s.fpsLabel, float64(s.width-8), 8, 1, 1)

	fillRect(c, l.bottomBar, color.NRGBA{R: 27, G: 27, B: 27, A: 230})
	c.SetRGBA(0.9, 0.9, 0.9, 1)
	c.DrawStringAnchored("abc", float64(l.bottomBar.Min.X+8), float64(l.bottomBar.Min.Y+l.bottomBar.Dy()/2), 0, 0.5)
	fillRect(c, l.sliderTrack, color.NRGBA{R: 80, G: 80, B: 80, A: 255})
	handleX := float64(l.sliderTrack.Min.X) + float64(l.sliderTrack.Dx())*s.slider/100
	c.SetRGBA(0.35, 0.55, 0.9, 1)
	c.DrawCircle(handleX, float64(l.sliderTrack.Min.Y+l.sliderTrack.Dy()/2), 7)
	_ = c.Fill()
	c.SetRGBA(0.9, 0.9, 0.9, 1)
	c.DrawStringAnchored(fmt.Sprintf("%.0f", s.slider), float64(l.sliderTrack.Max.X+12), float64(l.sliderTrack.Min.Y+l.sliderTrack.Dy()/2), 0, 0.5)

	if s.camera != nil {
		s.paintCameraPanel(l)
	}

	s.frame = toRGBA(c.Image())
}

func (s *Session) paintCameraPanel(l layout) {
	c := s.canvas
	panel := l.cameraPanel
	c.SetColor(color.NRGBA{R: 27, G: 27, B: 27, A: 240})
	c.DrawRoundedRectangle(float64(panel.Min.X), float64(panel.Min.Y), float64(panel.Dx()), float64(panel.Dy()), 4)
	_ = c.Fill()

	c.SetRGBA(1, 1, 1, 1)
	c.DrawString("Camera", float64(panel.Min.X+8), float64(panel.Min.Y+18))

	box := l.checkbox
	fillRect(c, box, color.NRGBA{R: 60, G: 60, B: 60, A: 255})
	if s.camera.AutoRotate() {
		fillRect(c, box.Inset(3), color.NRGBA{R: 90, G: 140, B: 230, A: 255})
	}
	c.SetRGBA(0.9, 0.9, 0.9, 1)
	c.DrawString("Auto-rotate", float64(box.Max.X+6), float64(box.Max.Y-2))
	c.DrawString(fmt.Sprintf("Scroll speed: %g", s.camera.ScrollSpeed()), float64(panel.Min.X+8), float64(panel.Min.Y+70))
	c.DrawString(fmt.Sprintf("Drag speed: %g", s.camera.DragSpeed()), float64(panel.Min.X+8), float64(panel.Min.Y+90))
}

// layout is the widget geometry for the current framebuffer size.
type layout struct {
	bottomBar   image.Rectangle
	sliderTrack image.Rectangle
	sliderHit   image.Rectangle
	cameraPanel image.Rectangle
	checkbox    image.Rectangle
}

func (s *Session) layout() layout {
	bar := image.Rect(0, s.height-32, s.width, s.height)
	track := image.Rect(48, bar.Min.Y+14, 248, bar.Min.Y+18)
	panel := image.Rect(210, 5, 410, 105)
	return layout{
		bottomBar:   bar,
		sliderTrack: track,
		sliderHit:   image.Rect(track.Min.X-8, bar.Min.Y, track.Max.X+8, bar.Max.Y),
		cameraPanel: panel,
		checkbox:    image.Rect(panel.Min.X+8, panel.Min.Y+30, panel.Min.X+22, panel.Min.Y+44),
	}
}

func fillRect(c *gg.Context, r image.Rectangle, col color.Color) {
	c.SetColor(col)
	c.DrawRectangle(float64(r.Min.X), float64(r.Min.Y), float64(r.Dx()), float64(r.Dy()))
	_ = c.Fill()
}

func toRGBA(img image.Image) *image.RGBA {
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	b := img.Bounds()
	rgba := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(rgba, rgba.Rect, img, b.Min, draw.Src)
	return rgba
}
