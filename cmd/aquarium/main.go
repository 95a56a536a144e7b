// Command aquarium renders a school of instanced fish swimming in a glass box.
package main

import (
	"fmt"
	"os"
	"runtime"
)

// GLFW and the wgpu surface must stay on the main OS thread.
func init() {
	runtime.LockOSThread()
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "aquarium:", err)
		os.Exit(1)
	}
}
