// Package platform provides cross-platform filesystem operations: permission
// management and atomic file replacement. On Windows, Chmod is a no-op since
// Unix permission bits are not supported there.
package platform
