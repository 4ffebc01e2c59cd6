package util

import "os"

// EnsureDir creates path and its parents when missing.
func EnsureDir(path string) error {
	return os.MkdirAll(path, 0o755)
}
