// Package devices resolves human readable device names to Bluetooth addresses.
package devices

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"

	"go.linkcheck.dev/linkcheck/pkg/transport"
)

// ErrNotFound is returned when no device has the requested name.
type ErrNotFound struct {
	Name string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("device %q not found", e.Name)
}

func IsErrNotFound(err error) bool {
	return errors.As(err, &ErrNotFound{})
}

type Lookup interface {
	Find(ctx context.Context, name string) (transport.BDAddr, error)
}

// AddressBook is a static table of device names.
type AddressBook map[string]transport.BDAddr

var _ Lookup = AddressBook{}

// Find returns the address for name.
// A name which is itself a valid address resolves to that address.
func (ab AddressBook) Find(ctx context.Context, name string) (transport.BDAddr, error) {
	if addr, exists := ab[name]; exists {
		return addr, nil
	}
	if addr, err := transport.ParseBDAddr(name); err == nil {
		return addr, nil
	}
	return transport.BDAddr{}, ErrNotFound{Name: name}
}

// List returns the device names in sorted order.
func (ab AddressBook) List() []string {
	names := maps.Keys(ab)
	slices.Sort(names)
	return names
}
