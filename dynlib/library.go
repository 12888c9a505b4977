package dynlib

import (
	stderrors "errors"

	"go.uber.org/multierr"

	"github.com/mdsplus/mdsgo/errors"
)

// Library is a loaded native shared library.
type Library struct {
	// Logical name the library was requested by, e.g. "MdsShr".
	Name string

	// File found by canonical resolution. Empty when the library was
	// loaded by its conventional file name without being found first.
	Path string

	// What was handed to the loader: Path, Name, the base name of Path,
	// or the conventional file name.
	Target string

	handle uintptr
	loader Loader
}

// Handle returns the native handle of the library.
func (l *Library) Handle() uintptr {
	return l.handle
}

// Symbol returns the address of an exported function or variable.
func (l *Library) Symbol(name string) (uintptr, error) {
	return l.loader.Symbol(l.handle, name)
}

// Close unloads the library. The Library must not be used afterwards.
func (l *Library) Close() error {
	return l.loader.Close(l.handle)
}

// LibraryNotFoundError reports that no candidate for a library could be
// loaded.
type LibraryNotFoundError struct {
	errors.MdsError

	// Logical name of the library.
	Name string

	// Every target the loader was given, in order.
	Attempts []string
}

func newLibraryNotFoundError(
	name string,
	attempts []string,
	failures []error) *LibraryNotFoundError {

	return &LibraryNotFoundError{
		MdsError: errors.Wrapf(
			multierr.Combine(failures...),
			"Error finding library: %s",
			name),
		Name:     name,
		Attempts: attempts,
	}
}

// IsLibraryNotFound reports whether err is or wraps a LibraryNotFoundError.
func IsLibraryNotFound(err error) bool {
	var notFound *LibraryNotFoundError
	return stderrors.As(err, &notFound)
}
