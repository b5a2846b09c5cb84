// Package utils holds small filesystem helpers shared by the driver.
package utils

import "path/filepath"

// GetPathInfo resolves relPath to an absolute path.
func GetPathInfo(relPath string) (fullPath string, err error) {
	return filepath.Abs(relPath)
}
