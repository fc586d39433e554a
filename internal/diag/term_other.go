//go:build !linux && !darwin

package diag

// IsTerminal reports whether fd refers to a terminal. Terminal
// detection is not available on this platform.
func IsTerminal(fd int) bool {
	return false
}
