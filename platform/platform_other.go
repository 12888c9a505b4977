//go:build !windows && !darwin && !linux

package platform

const (
	isWindows    = false
	isDarwin     = false
	isLinux      = false
	sharedLibExt = ".so"
)
