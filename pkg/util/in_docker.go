// Package util contains small helpers that don't fit anywhere else
package util

import "os"

// IsRunningInContainer detects docker and podman by the marker files they
// drop in the root of a container
func IsRunningInContainer() bool {
	for _, p := range []string{"/.dockerenv", "/run/.containerenv"} {
		if _, err := os.Stat(p); err == nil {
			return true
		}
	}

	return false
}
