package linkcheckcmd

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"go.linkcheck.dev/linkcheck/pkg/devices"
	"go.linkcheck.dev/linkcheck/pkg/payload"
	"go.linkcheck.dev/linkcheck/pkg/transport"
)

// ExactSpec configures fixed length echo tests over sockets.
type ExactSpec struct {
	Channel      uint8         `yaml:"channel"`
	MaxLen       int           `yaml:"max_len"`
	MaxOffset    int           `yaml:"max_offset"`
	IdleTimeout  time.Duration `yaml:"idle_timeout"`
	PollInterval time.Duration `yaml:"poll_interval"`
	PollSlice    time.Duration `yaml:"poll_slice"`
	ReportBytes  int64         `yaml:"report_bytes"`
}

// SerialSpec configures framed echo tests over serial ports.
type SerialSpec struct {
	Port       transport.SerialConfig `yaml:"port"`
	MaxLen     int                    `yaml:"max_len"`
	ChunkMax   int                    `yaml:"chunk_max"`
	Timeout    time.Duration          `yaml:"timeout"`
	Delay      time.Duration          `yaml:"delay"`
	Terminator string                 `yaml:"terminator"`
}

func (s SerialSpec) TerminatorByte() (byte, error) {
	if len(s.Terminator) != 1 {
		return 0, errors.Errorf("terminator must be a single byte, have %q", s.Terminator)
	}
	t := s.Terminator[0]
	if payload.IsFrameByte(t) {
		return 0, errors.Errorf("terminator %q can appear inside a frame", t)
	}
	return t, nil
}

type Config struct {
	// Seed seeds payload generation. Zero picks a seed from the clock.
	Seed        int64               `yaml:"seed,omitempty"`
	MetricsAddr string              `yaml:"metrics_addr,omitempty"`
	Devices     devices.AddressBook `yaml:"devices,omitempty"`
	Exact       ExactSpec           `yaml:"exact"`
	Serial      SerialSpec          `yaml:"serial"`
}

func DefaultConfig() Config {
	return Config{
		Exact: ExactSpec{
			Channel:      1,
			MaxLen:       17 * 1024,
			MaxOffset:    1024,
			IdleTimeout:  5 * time.Second,
			PollInterval: time.Millisecond,
			PollSlice:    10 * time.Millisecond,
			ReportBytes:  1_000_000,
		},
		Serial: SerialSpec{
			Port:       transport.DefaultSerialConfig(),
			MaxLen:     512,
			ChunkMax:   512,
			Timeout:    time.Second,
			Delay:      100 * time.Millisecond,
			Terminator: "\n",
		},
	}
}

func (c Config) Validate() error {
	if c.Exact.MaxLen < 0 || c.Exact.MaxOffset < 0 {
		return errors.New("exact: max_len and max_offset must not be negative")
	}
	if c.Exact.IdleTimeout <= 0 {
		return errors.New("exact: idle_timeout must be positive")
	}
	if c.Serial.MaxLen < 1 {
		return errors.New("serial: max_len must be at least 1")
	}
	if c.Serial.ChunkMax < 1 {
		return errors.New("serial: chunk_max must be at least 1")
	}
	if _, err := c.Serial.TerminatorByte(); err != nil {
		return errors.Wrap(err, "serial")
	}
	return nil
}

// LoadConfig reads a config from p. Fields missing from the file keep their defaults.
func LoadConfig(p string) (*Config, error) {
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, err
	}
	c := DefaultConfig()
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", p)
	}
	return &c, nil
}

func SaveConfig(p string, c Config) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(p, data, 0o644)
}
