//go:build !darwin && !freebsd && !linux && !windows

package dynlib

import (
	"github.com/mdsplus/mdsgo/errors"
	"github.com/mdsplus/mdsgo/platform"
)

type systemLoader struct{}

func (systemLoader) Open(target string) (uintptr, error) {
	return 0, errors.Newf("loading %s: native libraries are not supported on %s",
		target, platform.Host.OS)
}

func (systemLoader) Symbol(handle uintptr, name string) (uintptr, error) {
	return 0, errors.Newf("symbol %s: native libraries are not supported on %s",
		name, platform.Host.OS)
}

func (systemLoader) Close(handle uintptr) error {
	return nil
}
