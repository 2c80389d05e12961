//go:build windows

package main

import "os"

// notifyResize never fires: there is no resize signal on Windows.
func notifyResize() (<-chan os.Signal, func()) {
	return nil, func() {}
}
