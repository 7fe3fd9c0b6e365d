package transport

import (
	"strings"
	"time"

	"github.com/pkg/errors"
	"go.bug.st/serial"
)

// SerialConfig describes how to configure a serial port.
type SerialConfig struct {
	BaudRate int    `yaml:"baud_rate"`
	Parity   string `yaml:"parity"`
	DataBits int    `yaml:"data_bits,omitempty"`
	StopBits int    `yaml:"stop_bits,omitempty"`
	// ReadTimeout bounds a single Read; zero uses DefaultPollSlice.
	ReadTimeout time.Duration `yaml:"read_timeout,omitempty"`
}

func DefaultSerialConfig() SerialConfig {
	return SerialConfig{
		BaudRate:    19200,
		Parity:      "even",
		DataBits:    8,
		StopBits:    1,
		ReadTimeout: DefaultPollSlice,
	}
}

func (c SerialConfig) mode() (*serial.Mode, error) {
	m := &serial.Mode{
		BaudRate: c.BaudRate,
		DataBits: c.DataBits,
	}
	if m.DataBits == 0 {
		m.DataBits = 8
	}
	switch strings.ToLower(c.Parity) {
	case "", "none", "n":
		m.Parity = serial.NoParity
	case "even", "e":
		m.Parity = serial.EvenParity
	case "odd", "o":
		m.Parity = serial.OddParity
	case "mark", "m":
		m.Parity = serial.MarkParity
	case "space", "s":
		m.Parity = serial.SpaceParity
	default:
		return nil, errors.Errorf("unknown parity %q", c.Parity)
	}
	switch c.StopBits {
	case 0, 1:
		m.StopBits = serial.OneStopBit
	case 2:
		m.StopBits = serial.TwoStopBits
	default:
		return nil, errors.Errorf("unsupported stop bits %d", c.StopBits)
	}
	return m, nil
}

// Serial is a serial port Transport.
// The port's read timeout provides the polling: a Read which times out returns (0, nil).
type Serial struct {
	port serial.Port
}

var _ Conn = &Serial{}

func OpenSerial(name string, cfg SerialConfig) (*Serial, error) {
	mode, err := cfg.mode()
	if err != nil {
		return nil, err
	}
	port, err := serial.Open(name, mode)
	if err != nil {
		return nil, errors.Wrapf(err, "opening serial port %s", name)
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultPollSlice
	}
	if err := port.SetReadTimeout(timeout); err != nil {
		port.Close()
		return nil, err
	}
	// drop anything left over from a previous run
	if err := port.ResetInputBuffer(); err != nil {
		port.Close()
		return nil, err
	}
	return &Serial{port: port}, nil
}

func (s *Serial) Read(p []byte) (int, error) {
	return s.port.Read(p)
}

func (s *Serial) Write(p []byte) (int, error) {
	return s.port.Write(p)
}

func (s *Serial) Close() error {
	return s.port.Close()
}

// ListSerialPorts returns the names of the serial ports on this system.
func ListSerialPorts() ([]string, error) {
	return serial.GetPortsList()
}
