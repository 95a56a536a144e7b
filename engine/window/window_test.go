package window

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-boids/common"
	"github.com/Carmen-Shannon/oxy-boids/engine/ui"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recordingWindow() (*engineWindow, *[]ui.Event) {
	var events []ui.Event
	w := &engineWindow{}
	w.SetEventCallback(func(ev ui.Event) { events = append(events, ev) })
	return w, &events
}

func TestCallbacksBecomeEvents(t *testing.T) {
	w, events := recordingWindow()

	w.cursorMoved(10, 20)
	w.mouseButton(common.MouseButtonMiddle, true)
	w.scrolled(0, -1)
	w.key(common.KeyEscape, true)
	w.resized(800, 600)

	require.Len(t, *events, 5)
	assert.Equal(t, ui.Event{Kind: ui.EventCursorMoved, X: 10, Y: 20}, (*events)[0])
	assert.Equal(t, ui.Event{Kind: ui.EventMouseButton, Button: common.MouseButtonMiddle, Pressed: true, X: 10, Y: 20}, (*events)[1])
	assert.Equal(t, ui.Event{Kind: ui.EventScroll, ScrollY: -1}, (*events)[2])
	assert.Equal(t, ui.Event{Kind: ui.EventKey, Key: common.KeyEscape, Pressed: true}, (*events)[3])
	assert.Equal(t, ui.Event{Kind: ui.EventResize, Width: 800, Height: 600}, (*events)[4])
	assert.Equal(t, 800, w.Width())
	assert.Equal(t, 600, w.Height())
}

func TestMinimiseReportsZeroSize(t *testing.T) {
	w, events := recordingWindow()

	w.resized(0, 0)

	require.Len(t, *events, 1)
	assert.Equal(t, uint32(0), (*events)[0].Width)
	assert.Equal(t, uint32(0), (*events)[0].Height)
}

func TestEventsWithoutCallbackAreDropped(t *testing.T) {
	w := &engineWindow{}

	assert.NotPanics(t, func() {
		w.cursorMoved(1, 1)
		w.resized(2, 2)
	})
	assert.Equal(t, 2, w.Width())
}

func TestUninitializedWindow(t *testing.T) {
	w := &engineWindow{}

	assert.False(t, w.IsRunning())
	assert.Nil(t, w.SurfaceDescriptor())
	assert.NotPanics(t, w.RequestClose)
	assert.ErrorIs(t, w.Close(), errNotInitialized)
}
