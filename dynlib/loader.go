package dynlib

// Loader opens native shared libraries and looks up their symbols.
type Loader interface {
	// Open loads the library identified by target, a path or a bare file
	// name left to the platform loader's own search.
	Open(target string) (uintptr, error)

	Symbol(handle uintptr, name string) (uintptr, error)

	Close(handle uintptr) error
}

// SystemLoader returns the host platform's native loader.
func SystemLoader() Loader {
	return systemLoader{}
}
