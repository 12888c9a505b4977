package dynlib

import (
	"path"
	"sync"

	"go.uber.org/zap"

	"github.com/mdsplus/mdsgo/platform"
)

// Preparer performs the environment set up that must precede any library
// load. It runs at most once; later calls return the first call's result.
type Preparer struct {
	flags platform.Flags
	env   Environment

	once sync.Once
	err  error
}

// NewPreparer returns a preparer for the platform described by flags that
// reads and writes the environment e.
func NewPreparer(flags platform.Flags, e Environment) *Preparer {
	return &Preparer{flags: flags, env: e}
}

var defaultPreparer = NewPreparer(platform.Host, OSEnvironment{})

// PrepareEnvironment prepares the real process environment for the host
// platform.
func PrepareEnvironment() error {
	return defaultPreparer.Prepare()
}

// Prepare points DYLD_LIBRARY_PATH at the MDSplus libraries on macOS,
// unless the variable already holds a value. It does nothing on other
// platforms. The write is logged through the package logger.
func (p *Preparer) Prepare() error {
	return p.prepareLogged(Logger())
}

// Only the logger of the first call is used.
func (p *Preparer) prepareLogged(log *zap.Logger) error {
	p.once.Do(func() {
		p.err = p.prepare(log)
	})
	return p.err
}

func (p *Preparer) prepare(log *zap.Logger) error {
	if !p.flags.IsDarwin {
		return nil
	}
	cfg, err := LoadConfig(p.flags, p.env)
	if err != nil {
		return err
	}
	if cfg.DyldLibraryPath != "" {
		return nil
	}

	dir := DefaultMdsplusLibDir
	if cfg.MdsplusDir != "" {
		dir = path.Join(cfg.MdsplusDir, "lib")
	}
	log.Info("Setting library search path",
		zap.String("variable", DyldLibraryPathVar),
		zap.String("value", dir))
	return p.env.Setenv(DyldLibraryPathVar, dir)
}
