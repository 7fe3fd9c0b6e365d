//go:build !linux

package transport

import (
	"runtime"
	"time"

	"github.com/pkg/errors"
)

func DialRFCOMM(addr BDAddr, channel uint8, slice time.Duration) (*Polled, error) {
	return nil, errors.Errorf("rfcomm sockets are not supported on %s", runtime.GOOS)
}
