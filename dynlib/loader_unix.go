//go:build darwin || freebsd || linux

package dynlib

import (
	"github.com/ebitengine/purego"

	"github.com/mdsplus/mdsgo/errors"
)

type systemLoader struct{}

func (systemLoader) Open(target string) (uintptr, error) {
	handle, err := purego.Dlopen(target, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return 0, errors.Wrapf(err, "dlopen %s", target)
	}
	return handle, nil
}

func (systemLoader) Symbol(handle uintptr, name string) (uintptr, error) {
	sym, err := purego.Dlsym(handle, name)
	if err != nil {
		return 0, errors.Wrapf(err, "dlsym %s", name)
	}
	return sym, nil
}

func (systemLoader) Close(handle uintptr) error {
	return purego.Dlclose(handle)
}
