//go:build linux

package platform

const (
	isWindows    = false
	isDarwin     = false
	isLinux      = true
	sharedLibExt = ".so"
)
