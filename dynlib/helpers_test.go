package dynlib

import (
	"sort"
	"sync"

	"github.com/mdsplus/mdsgo/errors"
)

// mapEnvironment is an in-memory Environment.
type mapEnvironment struct {
	mu     sync.Mutex
	vars   map[string]string
	setErr error
	sets   int
}

func newMapEnvironment(pairs ...string) *mapEnvironment {
	e := &mapEnvironment{vars: make(map[string]string)}
	for i := 0; i+1 < len(pairs); i += 2 {
		e.vars[pairs[i]] = pairs[i+1]
	}
	return e
}

func (e *mapEnvironment) Environ() []string {
	e.mu.Lock()
	defer e.mu.Unlock()
	environ := make([]string, 0, len(e.vars))
	for k, v := range e.vars {
		environ = append(environ, k+"="+v)
	}
	sort.Strings(environ)
	return environ
}

func (e *mapEnvironment) Setenv(key, value string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.setErr != nil {
		return e.setErr
	}
	e.sets++
	e.vars[key] = value
	return nil
}

func (e *mapEnvironment) get(key string) (string, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	v, ok := e.vars[key]
	return v, ok
}

// fakeLoader opens only the targets it was told about.
type fakeLoader struct {
	mu       sync.Mutex
	loadable map[string]uintptr
	symbols  map[string]uintptr
	opened   []string
	closed   []uintptr
}

func newFakeLoader(targets ...string) *fakeLoader {
	l := &fakeLoader{
		loadable: make(map[string]uintptr),
		symbols:  map[string]uintptr{"MdsEvent": 0xbeef},
	}
	for _, target := range targets {
		l.allow(target)
	}
	return l
}

func (l *fakeLoader) allow(target string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.loadable[target] = uintptr(0x1000 + len(l.loadable))
}

func (l *fakeLoader) Open(target string) (uintptr, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.opened = append(l.opened, target)
	if handle, ok := l.loadable[target]; ok {
		return handle, nil
	}
	return 0, errors.Newf("%s: cannot open shared object file", target)
}

func (l *fakeLoader) Symbol(handle uintptr, name string) (uintptr, error) {
	if sym, ok := l.symbols[name]; ok {
		return sym, nil
	}
	return 0, errors.Newf("undefined symbol: %s", name)
}

func (l *fakeLoader) Close(handle uintptr) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.closed = append(l.closed, handle)
	return nil
}

func (l *fakeLoader) openedTargets() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.opened...)
}

// wrappingLoader wraps load failures the way the system loaders do.
type wrappingLoader struct {
	*fakeLoader
}

func (l *wrappingLoader) Open(target string) (uintptr, error) {
	handle, err := l.fakeLoader.Open(target)
	if err != nil {
		return 0, errors.Wrapf(err, "dlopen %s", target)
	}
	return handle, nil
}

func notFound() Finder {
	return FinderFunc(func(string) (string, bool) { return "", false })
}

func foundAt(path string) Finder {
	return FinderFunc(func(string) (string, bool) { return path, true })
}
