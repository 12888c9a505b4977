package platform

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHostMatchesGOOS(t *testing.T) {
	require.Equal(t, runtime.GOOS, Host.OS)
	require.Equal(t, runtime.GOOS == "windows", Host.IsWindows)
	require.Equal(t, runtime.GOOS == "darwin", Host.IsDarwin)
	require.Equal(t, runtime.GOOS == "linux", Host.IsLinux)
	require.Contains(t, []int{32, 64}, Host.WordSize)
}

func TestLibraryFileName(t *testing.T) {
	require.Equal(t, "MdsShr.dll", Windows.LibraryFileName("MdsShr"))
	require.Equal(t, "libMdsShr.dylib", Darwin.LibraryFileName("MdsShr"))
	require.Equal(t, "libMdsShr.so", Linux.LibraryFileName("MdsShr"))
}

func TestPathListSeparator(t *testing.T) {
	require.Equal(t, ";", Windows.PathListSeparator())
	require.Equal(t, ":", Darwin.PathListSeparator())
	require.Equal(t, ":", Linux.PathListSeparator())
}
