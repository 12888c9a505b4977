// Package platform is the compile-time capability table describing the host
// operating system. It replaces runtime probing: every value is fixed by the
// build configuration of the target platform.
package platform

import (
	"runtime"
	"strconv"
)

// Flags describes an operating system as far as native library lookup is
// concerned.
type Flags struct {
	// GOOS value the flags were built for.
	OS string

	IsWindows bool
	IsDarwin  bool
	IsLinux   bool

	// Pointer width of the host in bits.
	WordSize int

	// Conventional shared library extension, with the leading dot.
	SharedLibExt string
}

// Host is the capability table for the platform this binary was built for.
var Host = Flags{
	OS:           runtime.GOOS,
	IsWindows:    isWindows,
	IsDarwin:     isDarwin,
	IsLinux:      isLinux,
	WordSize:     strconv.IntSize,
	SharedLibExt: sharedLibExt,
}

// Windows, Darwin and Linux are the tables of the three platforms with
// dedicated lookup rules. They let callers and tests reason about another
// platform than the host.
var (
	Windows = Flags{OS: "windows", IsWindows: true, WordSize: 64, SharedLibExt: ".dll"}
	Darwin  = Flags{OS: "darwin", IsDarwin: true, WordSize: 64, SharedLibExt: ".dylib"}
	Linux   = Flags{OS: "linux", IsLinux: true, WordSize: 64, SharedLibExt: ".so"}
)

// LibraryFileName returns the file name a library called name conventionally
// has on this platform: "name.dll", "libname.dylib" or "libname.so".
func (f Flags) LibraryFileName(name string) string {
	if f.IsWindows {
		return name + f.SharedLibExt
	}
	return "lib" + name + f.SharedLibExt
}

// PathListSeparator is the separator of search path variables such as PATH.
func (f Flags) PathListSeparator() string {
	if f.IsWindows {
		return ";"
	}
	return ":"
}
