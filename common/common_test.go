package common

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCoalesce(t *testing.T) {
	assert.Equal(t, 3, Coalesce(0, 3, 4))
	assert.Equal(t, "a", Coalesce("", "a"))
	assert.Equal(t, 0, Coalesce[int]())
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestMapRangeBuildsEveryElementInOrder(t *testing.T) {
	var calls []int
	out := MapRange(4, func(i int) int {
		calls = append(calls, i)
		return i * i
	})
	assert.Equal(t, []int{0, 1, 4, 9}, out)
	assert.Equal(t, []int{0, 1, 2, 3}, calls)
}

func TestMapRangeEmpty(t *testing.T) {
	for _, n := range []int{0, -2} {
		out := MapRange(n, func(int) int { panic("not called") })
		assert.NotNil(t, out)
		assert.Empty(t, out)
	}
}

func TestOpenGLToWGPUMapsDepthRange(t *testing.T) {
	near := OpenGLToWGPU.Mul4x1(mgl32.Vec4{0, 0, -1, 1})
	far := OpenGLToWGPU.Mul4x1(mgl32.Vec4{0, 0, 1, 1})
	assert.InDelta(t, 0, near.Z()/near.W(), 1e-6)
	assert.InDelta(t, 1, far.Z()/far.W(), 1e-6)

	p := OpenGLToWGPU.Mul4x1(mgl32.Vec4{0.25, -0.5, 0, 1})
	assert.Equal(t, float32(0.25), p.X())
	assert.Equal(t, float32(-0.5), p.Y())
}

func TestSliceToBytes(t *testing.T) {
	assert.Nil(t, SliceToBytes([]uint32{}))
	assert.Equal(t, []byte{1, 0, 0, 0, 0, 1, 0, 0}, SliceToBytes([]uint32{1, 256}))
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError), "silent by default")

	var buf bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&buf, nil)))
	Logger().Info("hello", "k", 1)
	require.Contains(t, buf.String(), "msg=hello")
	assert.Contains(t, buf.String(), "k=1")

	SetLogger(nil)
	assert.False(t, Logger().Enabled(t.Context(), slog.LevelError))
}
