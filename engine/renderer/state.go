package renderer

import (
	"errors"

	"github.com/Carmen-Shannon/oxy-boids/engine/renderer/surface"
)

// State is the position of the FrameRenderer in its per-frame sequence.
type State int

const (
	StateIdle State = iota
	StateAcquiring
	StateEncoding
	StateSubmitted
	StatePresented
)

func (s State) String() string {
	switch s {
	case StateAcquiring:
		return "acquiring"
	case StateEncoding:
		return "encoding"
	case StateSubmitted:
		return "submitted"
	case StatePresented:
		return "presented"
	default:
		return "idle"
	}
}

// Recovery is what the caller does after RenderFrame fails.
type Recovery int

const (
	// RecoverySkip drops the frame and renders the next tick as usual.
	RecoverySkip Recovery = iota
	// RecoveryReconfigure reconfigures the surface once at its current size.
	RecoveryReconfigure
	// RecoveryExit stops the render loop.
	RecoveryExit
)

func (r Recovery) String() string {
	switch r {
	case RecoveryReconfigure:
		return "reconfigure"
	case RecoveryExit:
		return "exit"
	default:
		return "skip"
	}
}

// RecoveryFor maps a RenderFrame error to the caller's recovery. A lost surface or stale frame
// resources are reconfigured, running out of memory or losing the device is fatal, and every other
// failure skips the frame.
//
// Parameters:
//   - err: the error returned by RenderFrame
//
// Returns:
//   - Recovery: the recovery to apply
func RecoveryFor(err error) Recovery {
	if err == nil {
		return RecoverySkip
	}
	if errors.Is(err, ErrStaleResources) {
		return RecoveryReconfigure
	}
	kind, ok := surface.KindOf(err)
	if !ok {
		return RecoverySkip
	}
	switch kind {
	case surface.KindLost:
		return RecoveryReconfigure
	case surface.KindOutOfMemory, surface.KindDeviceLost:
		return RecoveryExit
	default:
		return RecoverySkip
	}
}
