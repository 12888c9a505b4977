//go:build windows

package platform

const (
	isWindows    = true
	isDarwin     = false
	isLinux      = false
	sharedLibExt = ".dll"
)
