package dynlib

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mdsplus/mdsgo/errors"
	"github.com/mdsplus/mdsgo/platform"
)

func TestPrepareIgnoredOffDarwin(t *testing.T) {
	for _, flags := range []platform.Flags{platform.Linux, platform.Windows} {
		env := newMapEnvironment("MDSPLUS_DIR", "/opt/mdsplus")
		require.NoError(t, NewPreparer(flags, env).Prepare())
		_, ok := env.get(DyldLibraryPathVar)
		require.False(t, ok)
	}
}

func TestPrepareUsesMdsplusDir(t *testing.T) {
	env := newMapEnvironment("MDSPLUS_DIR", "/opt/mdsplus")
	require.NoError(t, NewPreparer(platform.Darwin, env).Prepare())
	value, _ := env.get(DyldLibraryPathVar)
	require.Equal(t, "/opt/mdsplus/lib", value)
}

func TestPrepareDefaultDir(t *testing.T) {
	env := newMapEnvironment()
	require.NoError(t, NewPreparer(platform.Darwin, env).Prepare())
	value, _ := env.get(DyldLibraryPathVar)
	require.Equal(t, DefaultMdsplusLibDir, value)
}

func TestPrepareKeepsExistingValue(t *testing.T) {
	env := newMapEnvironment(DyldLibraryPathVar, "/custom/lib", "MDSPLUS_DIR", "/opt/mdsplus")
	require.NoError(t, NewPreparer(platform.Darwin, env).Prepare())
	value, _ := env.get(DyldLibraryPathVar)
	require.Equal(t, "/custom/lib", value)
	require.Equal(t, 0, env.sets)
}

func TestPrepareTreatsEmptyAsUnset(t *testing.T) {
	env := newMapEnvironment(DyldLibraryPathVar, "")
	require.NoError(t, NewPreparer(platform.Darwin, env).Prepare())
	value, _ := env.get(DyldLibraryPathVar)
	require.Equal(t, DefaultMdsplusLibDir, value)
}

func TestPrepareTwiceNeverOverwrites(t *testing.T) {
	env := newMapEnvironment("MDSPLUS_DIR", "/first")
	p := NewPreparer(platform.Darwin, env)
	require.NoError(t, p.Prepare())

	env.vars["MDSPLUS_DIR"] = "/second"
	require.NoError(t, p.Prepare())
	require.NoError(t, NewPreparer(platform.Darwin, env).Prepare())

	value, _ := env.get(DyldLibraryPathVar)
	require.Equal(t, "/first/lib", value)
	require.Equal(t, 1, env.sets)
}

func TestPrepareReportsSetenvFailure(t *testing.T) {
	env := newMapEnvironment()
	env.setErr = errors.New("read-only environment")
	p := NewPreparer(platform.Darwin, env)
	require.Error(t, p.Prepare())
	require.Error(t, p.Prepare())
}

func TestLoadConfig(t *testing.T) {
	env := newMapEnvironment(
		"MDSPLUS_DIR", "/opt/mdsplus",
		"LD_LIBRARY_PATH", "/a:/b",
		"PATH", `C:\mdsplus\bin`,
		"HOME", "/home/user",
		"UNRELATED", "x")
	cfg, err := LoadConfig(platform.Linux, env)
	require.NoError(t, err)
	require.Equal(t, Config{
		MdsplusDir:              "/opt/mdsplus",
		DyldFallbackLibraryPath: "/home/user/lib:/usr/local/lib:/lib:/usr/lib",
		LdLibraryPath:           "/a:/b",
		Path:                    `C:\mdsplus\bin`,
		Home:                    "/home/user",
	}, cfg)
}

func TestLoadConfigExplicitFallbackPath(t *testing.T) {
	env := newMapEnvironment(
		"HOME", "/home/user",
		"DYLD_FALLBACK_LIBRARY_PATH", "/opt/lib:${HOME}/mds")
	cfg, err := LoadConfig(platform.Darwin, env)
	require.NoError(t, err)
	require.Equal(t, "/opt/lib:/home/user/mds", cfg.DyldFallbackLibraryPath)
}

func TestLoadConfigFoldsCaseOnWindows(t *testing.T) {
	env := newMapEnvironment(
		"Path", `C:\mdsplus\bin`,
		"MdsPlus_Dir", `C:\mdsplus`)
	cfg, err := LoadConfig(platform.Windows, env)
	require.NoError(t, err)
	require.Equal(t, `C:\mdsplus\bin`, cfg.Path)
	require.Equal(t, `C:\mdsplus`, cfg.MdsplusDir)

	// Variable names are case sensitive elsewhere.
	cfg, err = LoadConfig(platform.Linux, env)
	require.NoError(t, err)
	require.Empty(t, cfg.Path)
	require.Empty(t, cfg.MdsplusDir)
}

func TestFoldKeysPrefersUpperCase(t *testing.T) {
	for i := 0; i < 10; i++ {
		folded := foldKeys(map[string]string{"Path": "mixed", "PATH": "upper"})
		require.Equal(t, map[string]string{"PATH": "upper"}, folded)
	}
}
