package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace  = 32  // Space bar: toggles camera auto-rotate
	KeyEscape = 256 // Escape key: closes the window
)

// Mouse buttons as reported by the window layer. Values match GLFW.
const (
	MouseButtonLeft   = 0
	MouseButtonRight  = 1
	MouseButtonMiddle = 2
)
