//go:build windows

package dynlib

import (
	"golang.org/x/sys/windows"

	"github.com/mdsplus/mdsgo/errors"
)

type systemLoader struct{}

func (systemLoader) Open(target string) (uintptr, error) {
	handle, err := windows.LoadLibrary(target)
	if err != nil {
		return 0, errors.Wrapf(err, "LoadLibrary %s", target)
	}
	return uintptr(handle), nil
}

func (systemLoader) Symbol(handle uintptr, name string) (uintptr, error) {
	proc, err := windows.GetProcAddress(windows.Handle(handle), name)
	if err != nil {
		return 0, errors.Wrapf(err, "GetProcAddress %s", name)
	}
	return proc, nil
}

func (systemLoader) Close(handle uintptr) error {
	return windows.FreeLibrary(windows.Handle(handle))
}
