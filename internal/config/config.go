package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Variant selects which member of the controller family is run.
const (
	// VariantElaborate runs the independent tone sequencer and idle indicator.
	VariantElaborate = "elaborate"
	// VariantSimple drives the buzzer as a second digital output tied to the LED phase.
	VariantSimple = "simple"
)

// Config holds the controller and trigger settings shared by the binaries.
type Config struct {
	// SerialPort is the command port device path. Empty means autodetect.
	SerialPort string `yaml:"serial_port"`
	// BaudRate is the serial line speed.
	BaudRate int `yaml:"baud_rate"`
	// Variant picks the controller behavior: "elaborate" or "simple".
	Variant string `yaml:"variant"`
	// LEDPin is the BCM pin number of the primary LED.
	LEDPin int `yaml:"led_pin"`
	// IdlePin is the BCM pin number of the idle indicator LED (elaborate variant).
	IdlePin int `yaml:"idle_pin"`
	// BuzzerPin is the BCM pin number of the buzzer output.
	BuzzerPin int `yaml:"buzzer_pin"`
	// ListenAddress is the status HTTP listen address. Empty disables the web surface.
	ListenAddress string `yaml:"listen_addr"`
	// PollInterval is the control loop yield between iterations.
	PollInterval time.Duration `yaml:"poll_interval"`
	// LEDInterval is the LED blink half-period.
	LEDInterval time.Duration `yaml:"led_interval"`
	// ToneInterval is the tone sequencer base interval.
	ToneInterval time.Duration `yaml:"tone_interval"`
	// ToneSilence is the extra hold added to the pause states.
	ToneSilence time.Duration `yaml:"tone_silence"`
	// BeepFrequency is the BEEP tone in Hz.
	BeepFrequency int `yaml:"beep_frequency"`
	// BooFrequency is the BOO tone in Hz.
	BooFrequency int `yaml:"boo_frequency"`
}

const (
	// DefaultConfigFilename is the default filename for controller settings.
	DefaultConfigFilename = "alarm-controller-settings.yaml"

	// DefaultBaudRate matches the host side of the serial link.
	DefaultBaudRate = 9600

	// DefaultPollInterval is the control loop yield.
	DefaultPollInterval = time.Millisecond

	// DefaultLEDInterval is the elaborate variant blink half-period.
	DefaultLEDInterval = 100 * time.Millisecond

	// DefaultSimpleLEDInterval is the simple variant blink half-period.
	DefaultSimpleLEDInterval = 250 * time.Millisecond

	// DefaultToneInterval is the tone sequencer base interval.
	DefaultToneInterval = 300 * time.Millisecond

	// DefaultToneSilence is the extra hold in the pause states.
	DefaultToneSilence = 200 * time.Millisecond

	// DefaultBeepFrequency is the BEEP tone in Hz.
	DefaultBeepFrequency = 1000

	// DefaultBooFrequency is the BOO tone in Hz.
	DefaultBooFrequency = 600

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600

	defaultLEDPin    = 13
	defaultIdlePin   = 19
	defaultBuzzerPin = 18
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errUnknownVariant is returned when the variant field holds an unsupported value.
	errUnknownVariant = errors.New(`variant must be "elaborate" or "simple"`)
	// errBadBaudRate is returned when the baud rate is not positive.
	errBadBaudRate = errors.New("baud rate must be positive")
	// errBadFrequency is returned when a tone frequency is not positive.
	errBadFrequency = errors.New("tone frequencies must be positive")
)

// Default returns settings for the elaborate variant with the stock timings.
func Default() *Config {
	return &Config{
		BaudRate:      DefaultBaudRate,
		Variant:       VariantElaborate,
		LEDPin:        defaultLEDPin,
		IdlePin:       defaultIdlePin,
		BuzzerPin:     defaultBuzzerPin,
		PollInterval:  DefaultPollInterval,
		LEDInterval:   DefaultLEDInterval,
		ToneInterval:  DefaultToneInterval,
		ToneSilence:   DefaultToneSilence,
		BeepFrequency: DefaultBeepFrequency,
		BooFrequency:  DefaultBooFrequency,
	}
}

// Load reads configuration from the provided path, fills unset fields with
// defaults and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	applyDefaults(&cfg)

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// LoadOrDefault behaves like Load but returns the default configuration when
// the settings file does not exist, so a freshly flashed device runs with the
// stock timings without any setup.
func LoadOrDefault(path string) (*Config, error) {
	cfg, err := Load(path)
	if err != nil && errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}

	return cfg, err
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks required fields and format validations for the settings.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if cfg.Variant != VariantElaborate && cfg.Variant != VariantSimple {
		return errUnknownVariant
	}

	if cfg.BaudRate <= 0 {
		return errBadBaudRate
	}

	if cfg.BeepFrequency <= 0 || cfg.BooFrequency <= 0 {
		return errBadFrequency
	}

	if cfg.ListenAddress != "" {
		if _, _, err := net.SplitHostPort(cfg.ListenAddress); err != nil {
			return fmt.Errorf("invalid listen address %q: %w", cfg.ListenAddress, err)
		}
	}

	return nil
}

// applyDefaults fills zero-valued fields so a partial settings file works.
func applyDefaults(cfg *Config) {
	if cfg.Variant == "" {
		cfg.Variant = VariantElaborate
	}

	if cfg.BaudRate == 0 {
		cfg.BaudRate = DefaultBaudRate
	}

	if cfg.LEDPin == 0 {
		cfg.LEDPin = defaultLEDPin
	}

	if cfg.IdlePin == 0 {
		cfg.IdlePin = defaultIdlePin
	}

	if cfg.BuzzerPin == 0 {
		cfg.BuzzerPin = defaultBuzzerPin
	}

	if cfg.PollInterval == 0 {
		cfg.PollInterval = DefaultPollInterval
	}

	if cfg.LEDInterval == 0 {
		if cfg.Variant == VariantSimple {
			cfg.LEDInterval = DefaultSimpleLEDInterval
		} else {
			cfg.LEDInterval = DefaultLEDInterval
		}
	}

	if cfg.ToneInterval == 0 {
		cfg.ToneInterval = DefaultToneInterval
	}

	if cfg.ToneSilence == 0 {
		cfg.ToneSilence = DefaultToneSilence
	}

	if cfg.BeepFrequency == 0 {
		cfg.BeepFrequency = DefaultBeepFrequency
	}

	if cfg.BooFrequency == 0 {
		cfg.BooFrequency = DefaultBooFrequency
	}
}
