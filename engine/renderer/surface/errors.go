package surface

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a failure to acquire the next swapchain image.
type Kind int

const (
	// KindOther is any failure not covered by the other kinds. It is treated as transient.
	KindOther Kind = iota

	// KindLost means the surface must be reconfigured before it can be used again.
	KindLost

	// KindOutOfMemory means the device ran out of memory. It is not recoverable.
	KindOutOfMemory

	// KindOutdated means the surface no longer matches the window. A resize event follows.
	KindOutdated

	// KindTimeout means no image became available in time.
	KindTimeout

	// KindDeviceLost means the device behind the surface is gone. It is not recoverable.
	KindDeviceLost
)

var (
	ErrLost        = errors.New("surface lost")
	ErrOutOfMemory = errors.New("surface out of memory")
	ErrOutdated    = errors.New("surface outdated")
	ErrTimeout     = errors.New("surface timeout")
	ErrDeviceLost  = errors.New("surface device lost")
	ErrOther       = errors.New("surface acquire failed")

	// ErrNoCompatibleFormat is returned by Initialize when the surface reports no formats.
	ErrNoCompatibleFormat = errors.New("surface: no compatible format")
)

func (k Kind) String() string {
	switch k {
	case KindLost:
		return "lost"
	case KindOutOfMemory:
		return "out of memory"
	case KindOutdated:
		return "outdated"
	case KindTimeout:
		return "timeout"
	case KindDeviceLost:
		return "device lost"
	default:
		return "other"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindLost:
		return ErrLost
	case KindOutOfMemory:
		return ErrOutOfMemory
	case KindOutdated:
		return ErrOutdated
	case KindTimeout:
		return ErrTimeout
	case KindDeviceLost:
		return ErrDeviceLost
	default:
		return ErrOther
	}
}

// Error is a classified acquire failure. errors.Is matches it against the sentinel of its kind.
type Error struct {
	Kind Kind
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Kind.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Classify wraps err in an *Error. Errors that already carry a kind keep it; anything else is
// classified by the status text the driver reports. Device loss is matched before surface loss,
// since both messages contain "lost".
//
// Parameters:
//   - err: the acquire error
//
// Returns:
//   - *Error: the classified error, or nil if err is nil
func Classify(err error) *Error {
	if err == nil {
		return nil
	}
	var se *Error
	if errors.As(err, &se) {
		return se
	}
	for _, k := range []Kind{KindLost, KindOutOfMemory, KindOutdated, KindTimeout, KindDeviceLost} {
		if errors.Is(err, k.sentinel()) {
			return &Error{Kind: k, Err: err}
		}
	}

	msg := strings.ToLower(err.Error())
	kind := KindOther
	switch {
	case strings.Contains(msg, "device lost"), strings.Contains(msg, "device-lost"), strings.Contains(msg, "devicelost"):
		kind = KindDeviceLost
	case strings.Contains(msg, "lost"):
		kind = KindLost
	case strings.Contains(msg, "outofmemory"), strings.Contains(msg, "out of memory"):
		kind = KindOutOfMemory
	case strings.Contains(msg, "outdated"):
		kind = KindOutdated
	case strings.Contains(msg, "timeout"):
		kind = KindTimeout
	}
	return &Error{Kind: kind, Err: err}
}

// KindOf reports the kind of a classified error anywhere in err's chain.
//
// Parameters:
//   - err: the error to inspect
//
// Returns:
//   - Kind: the acquire failure kind
//   - bool: false if err carries no *Error
func KindOf(err error) (Kind, bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return KindOther, false
}
