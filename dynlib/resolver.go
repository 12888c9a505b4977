// Package dynlib locates and loads the native MDSplus shared libraries.
//
// Resolution of a logical name such as "TreeShr" first prepares the process
// environment, then asks the platform's canonical lookup (Finder) for the
// library file. When the lookup fails, the conventional file name for the
// platform is loaded directly and a failure there is a
// *LibraryNotFoundError. When the lookup succeeds, the found path, the bare
// name, and the base name of the path are tried in turn; if none loads, a
// warning is logged and ResolveAndLoad returns neither a library nor an
// error, unless the resolver is Strict.
package dynlib

import (
	"path/filepath"
	"sync"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/mdsplus/mdsgo/errors"
	"github.com/mdsplus/mdsgo/platform"
)

// Resolver turns logical library names into loaded libraries. Nil fields
// fall back to the defaults documented on each; NewResolver returns a
// resolver for the host.
type Resolver struct {
	// Platform whose conventions drive resolution.
	Flags platform.Flags

	// Environment read for lookup configuration.
	Env Environment

	// Environment set up run before the first load. Nil runs a preparer
	// for Flags and Env, created on first use.
	Preparer *Preparer

	// Canonical lookup. Nil uses NewFinder with the configuration read
	// from Env at resolution time.
	Finder Finder

	// Nil uses SystemLoader.
	Loader Loader

	// Receives load diagnostics and the environment write made by the
	// preparer. Nil uses the package logger.
	Logger *zap.Logger

	// When set, a library that is found but cannot be loaded under any
	// of its names is reported as a *LibraryNotFoundError instead of a
	// nil library.
	Strict bool

	prepareOnce sync.Once
	cache       libraryCache
}

// NewResolver returns a resolver for the host platform and the real process
// environment.
func NewResolver() *Resolver {
	return &Resolver{
		Flags:    platform.Host,
		Env:      OSEnvironment{},
		Preparer: defaultPreparer,
	}
}

var defaultResolver = NewResolver()

// ResolveAndLoad resolves name with the default resolver.
func ResolveAndLoad(name string) (*Library, error) {
	return defaultResolver.ResolveAndLoad(name)
}

// ResolveAndLoad returns the loaded library for the logical name. Libraries
// are loaded once per resolver; later calls return the same *Library.
// Failed resolutions are retried on the next call.
//
// The returned library is nil with a nil error when the library was found
// but could not be loaded; see the package documentation.
func (r *Resolver) ResolveAndLoad(name string) (*Library, error) {
	return r.cache.get(name, func() (*Library, error) {
		return r.load(name)
	})
}

// Release closes the library loaded for name and forgets it, so the next
// ResolveAndLoad loads it anew. Releasing a name that is not loaded is a
// no-op.
func (r *Resolver) Release(name string) error {
	lib := r.cache.remove(name)
	if lib == nil {
		return nil
	}
	return lib.Close()
}

func (r *Resolver) logger() *zap.Logger {
	if r.Logger != nil {
		return r.Logger
	}
	return Logger()
}

func (r *Resolver) loader() Loader {
	if r.Loader != nil {
		return r.Loader
	}
	return SystemLoader()
}

func (r *Resolver) environment() Environment {
	if r.Env != nil {
		return r.Env
	}
	return OSEnvironment{}
}

func (r *Resolver) prepare() error {
	r.prepareOnce.Do(func() {
		if r.Preparer == nil {
			r.Preparer = NewPreparer(r.Flags, r.environment())
		}
	})
	return r.Preparer.prepareLogged(r.logger())
}

func (r *Resolver) finder() (Finder, error) {
	if r.Finder != nil {
		return r.Finder, nil
	}
	cfg, err := LoadConfig(r.Flags, r.environment())
	if err != nil {
		return nil, err
	}
	return NewFinder(r.Flags, cfg), nil
}

func (r *Resolver) load(name string) (*Library, error) {
	if err := r.prepare(); err != nil {
		return nil, errors.Wrapf(err, "Failed to prepare environment for %s", name)
	}
	finder, err := r.finder()
	if err != nil {
		return nil, err
	}

	path, found := finder.Find(name)
	if !found {
		return r.loadConventional(name)
	}

	log := r.logger().With(zap.String("library", name), zap.String("path", path))
	loader := r.loader()
	attempts := []string{path, name, filepath.Base(path)}
	failures := make([]error, 0, len(attempts))
	causes := make([]string, 0, len(attempts))
	for _, target := range attempts {
		handle, err := loader.Open(target)
		if err == nil {
			log.Debug("Loaded library", zap.String("target", target))
			return &Library{
				Name:   name,
				Path:   path,
				Target: target,
				handle: handle,
				loader: loader,
			}, nil
		}
		cause := errors.GetMessage(errors.RootError(err))
		log.Debug("Load attempt failed",
			zap.String("target", target),
			zap.String("cause", cause))
		failures = append(failures, err)
		causes = append(causes, cause)
	}

	log.Warn("Could not load library",
		zap.Strings("attempts", attempts),
		zap.Strings("causes", causes))
	if r.Strict {
		return nil, newLibraryNotFoundError(name, attempts, failures)
	}
	return nil, nil
}

func (r *Resolver) loadConventional(name string) (*Library, error) {
	target := r.Flags.LibraryFileName(name)
	loader := r.loader()
	handle, err := loader.Open(target)
	if err != nil {
		return nil, newLibraryNotFoundError(name, []string{target}, []error{err})
	}
	r.logger().Debug("Loaded library",
		zap.String("library", name),
		zap.String("target", target))
	return &Library{
		Name:   name,
		Target: target,
		handle: handle,
		loader: loader,
	}, nil
}

type cacheEntry struct {
	sync.Mutex

	lib *Library
	// Non-zero once lib holds a loaded library.
	loaded int32
}

// Holds one library per name. A load runs under the entry's lock, so
// concurrent requests for one name load it only once; a load that yields no
// library leaves the entry empty for the next caller to retry.
type libraryCache struct {
	mu      sync.Mutex
	entries map[string]*cacheEntry
}

func (c *libraryCache) entry(name string) *cacheEntry {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.entries == nil {
		c.entries = make(map[string]*cacheEntry)
	}
	e, ok := c.entries[name]
	if !ok {
		e = &cacheEntry{}
		c.entries[name] = e
	}
	return e
}

func (c *libraryCache) get(
	name string,
	load func() (*Library, error)) (*Library, error) {

	e := c.entry(name)
	// Don't lock in the common case
	if atomic.LoadInt32(&e.loaded) > 0 {
		return e.lib, nil
	}

	e.Lock()
	defer e.Unlock()

	if atomic.LoadInt32(&e.loaded) > 0 {
		return e.lib, nil
	}

	lib, err := load()
	if err != nil || lib == nil {
		return nil, err
	}
	e.lib = lib
	atomic.StoreInt32(&e.loaded, 1)
	return lib, nil
}

func (c *libraryCache) remove(name string) *Library {
	c.mu.Lock()
	e, ok := c.entries[name]
	delete(c.entries, name)
	c.mu.Unlock()

	if !ok {
		return nil
	}
	e.Lock()
	defer e.Unlock()
	if atomic.LoadInt32(&e.loaded) == 0 {
		return nil
	}
	return e.lib
}
