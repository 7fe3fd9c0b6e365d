//go:build linux

package transport

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"golang.org/x/sys/unix"
)

// DialRFCOMM connects a Bluetooth RFCOMM socket to addr on the given channel.
func DialRFCOMM(addr BDAddr, channel uint8, slice time.Duration) (*Polled, error) {
	fd, err := unix.Socket(unix.AF_BLUETOOTH, unix.SOCK_STREAM|unix.SOCK_CLOEXEC, unix.BTPROTO_RFCOMM)
	if err != nil {
		return nil, errors.Wrap(err, "creating rfcomm socket")
	}
	sa := &unix.SockaddrRFCOMM{Addr: addr.littleEndian(), Channel: channel}
	if err := unix.Connect(fd, sa); err != nil {
		unix.Close(fd)
		return nil, errors.Wrapf(err, "connecting to %v channel %d", addr, channel)
	}
	// a non-blocking descriptor lets os.File use the runtime poller, which is what makes read deadlines work
	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, errors.Wrap(err, "setting rfcomm socket non-blocking")
	}
	f := os.NewFile(uintptr(fd), "rfcomm:"+addr.String())
	return NewPolled(f, slice), nil
}
