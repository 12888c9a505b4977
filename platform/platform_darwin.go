//go:build darwin

package platform

const (
	isWindows    = false
	isDarwin     = true
	isLinux      = false
	sharedLibExt = ".dylib"
)
