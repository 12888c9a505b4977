package dynlib

import (
	"os"
	"strings"

	"github.com/caarlos0/env/v11"

	"github.com/mdsplus/mdsgo/errors"
	"github.com/mdsplus/mdsgo/platform"
)

const (
	// Variable naming the MDSplus installation root.
	MdsplusDirVar = "MDSPLUS_DIR"

	// Search path variable of the macOS dynamic loader.
	DyldLibraryPathVar = "DYLD_LIBRARY_PATH"

	// Library directory used on macOS when MDSPLUS_DIR is not set.
	DefaultMdsplusLibDir = "/usr/local/mdsplus/lib"
)

// Config is the part of the process environment that drives library
// lookup. DyldFallbackLibraryPath defaults to the search path of the macOS
// dynamic loader; without HOME its first entry expands to /lib, never to a
// relative path.
type Config struct {
	MdsplusDir              string `env:"MDSPLUS_DIR"`
	DyldLibraryPath         string `env:"DYLD_LIBRARY_PATH"`
	DyldFallbackLibraryPath string `env:"DYLD_FALLBACK_LIBRARY_PATH,expand" envDefault:"${HOME}/lib:/usr/local/lib:/lib:/usr/lib"`
	LdLibraryPath           string `env:"LD_LIBRARY_PATH"`
	Path                    string `env:"PATH"`
	Home                    string `env:"HOME"`
}

// Environment is the process environment as seen by the resolver.
type Environment interface {
	// Returns "key=value" pairs, like os.Environ.
	Environ() []string

	Setenv(key, value string) error
}

// OSEnvironment is the real process environment.
type OSEnvironment struct{}

func (OSEnvironment) Environ() []string {
	return os.Environ()
}

func (OSEnvironment) Setenv(key, value string) error {
	return os.Setenv(key, value)
}

// LoadConfig parses the lookup configuration out of e. Variable names are
// case-insensitive on Windows, where PATH is usually spelled "Path".
func LoadConfig(flags platform.Flags, e Environment) (Config, error) {
	vars := env.ToMap(e.Environ())
	if flags.IsWindows {
		vars = foldKeys(vars)
	}

	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: vars}); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	return cfg, nil
}

// Upper-cases every key. A key already in upper case wins over other
// spellings of the same name.
func foldKeys(vars map[string]string) map[string]string {
	folded := make(map[string]string, len(vars))
	for key, value := range vars {
		upper := strings.ToUpper(key)
		if _, dup := folded[upper]; dup && key != upper {
			continue
		}
		folded[upper] = value
	}
	return folded
}
