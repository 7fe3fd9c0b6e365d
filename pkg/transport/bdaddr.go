package transport

import (
	"encoding/hex"
	"strings"

	"github.com/pkg/errors"
)

// BDAddr is a Bluetooth device address, most significant byte first,
// as it is usually written: AA:BB:CC:DD:EE:FF.
type BDAddr [6]byte

func ParseBDAddr(x string) (BDAddr, error) {
	parts := strings.Split(x, ":")
	if len(parts) != 6 {
		return BDAddr{}, errors.Errorf("invalid bluetooth address %q", x)
	}
	var a BDAddr
	for i, p := range parts {
		if len(p) != 2 {
			return BDAddr{}, errors.Errorf("invalid bluetooth address %q", x)
		}
		if _, err := hex.Decode(a[i:i+1], []byte(p)); err != nil {
			return BDAddr{}, errors.Wrapf(err, "invalid bluetooth address %q", x)
		}
	}
	return a, nil
}

func (a BDAddr) String() string {
	sb := strings.Builder{}
	for i, b := range a {
		if i > 0 {
			sb.WriteByte(':')
		}
		sb.WriteString(strings.ToUpper(hex.EncodeToString([]byte{b})))
	}
	return sb.String()
}

func (a BDAddr) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

func (a *BDAddr) UnmarshalText(data []byte) error {
	x, err := ParseBDAddr(string(data))
	if err != nil {
		return err
	}
	*a = x
	return nil
}

// littleEndian returns the address in the byte order used by the kernel.
func (a BDAddr) littleEndian() (ret [6]byte) {
	for i := range a {
		ret[i] = a[len(a)-1-i]
	}
	return ret
}
