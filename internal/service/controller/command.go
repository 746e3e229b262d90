package controller

import (
	"context"
	"fmt"

	"github.com/AlbertDoesNothing/Myriad/internal/api/web"
	"github.com/AlbertDoesNothing/Myriad/internal/config"
	alarm "github.com/AlbertDoesNothing/Myriad/internal/domain/alarm"
	"github.com/AlbertDoesNothing/Myriad/internal/gpio"
	"github.com/AlbertDoesNothing/Myriad/internal/logger"
	"github.com/AlbertDoesNothing/Myriad/internal/serialport"
)

// Options controls the alarm-controller process and configuration.
type Options struct {
	// ConfigPath specifies the path to the settings YAML file.
	ConfigPath string
	// SerialPort overrides the command port device path from config.
	SerialPort string
	// ListenAddress overrides the status server listen address from config.
	ListenAddress string
}

// Run wires the hardware, the command port and the status surface together
// and drives the control loop until the context is cancelled.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-controller")

	// Missing settings file means stock timings, not an error: a freshly
	// provisioned device must come up with the canonical behavior.
	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	if opts.SerialPort != "" {
		cfg.SerialPort = opts.SerialPort
	}

	if opts.ListenAddress != "" {
		cfg.ListenAddress = opts.ListenAddress
	}

	if err := config.Validate(cfg); err != nil {
		return err
	}

	machine, cleanup := buildMachine(ctx, cfg)
	defer cleanup()

	svc := newService(machine, cfg.PollInterval)

	// The serial link is the primary control path. Without it the daemon is
	// only useful when the HTTP surface can inject commands instead.
	var serial poller

	recv, err := serialport.Open(ctx, cfg.SerialPort, cfg.BaudRate)
	switch {
	case err == nil:
		defer func() {
			_ = recv.Close()
		}()

		serial = recv

		logger.InfoKV(ctx, "Command port open", "port", recv.Path(), "baud_rate", cfg.BaudRate)
	case cfg.ListenAddress != "":
		logger.WarnKV(ctx, "No command port, accepting commands over HTTP only", "error", err)
	default:
		return fmt.Errorf("open command port: %w", err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if cfg.ListenAddress != "" {
		srv := web.NewServer(svc, web.DefaultPushInterval)

		go func() {
			if err := srv.Run(ctx, cfg.ListenAddress); err != nil {
				logger.ErrorKV(ctx, "Status server failed", "error", err)
				cancel()
			}
		}()
	}

	logger.InfoKV(ctx, "Controller running",
		"variant", cfg.Variant,
		"led_interval", cfg.LEDInterval,
		"listen_address", cfg.ListenAddress,
	)

	return svc.loop(ctx, serial)
}

// buildMachine constructs the state machine for the configured variant on
// real GPIO outputs, or on the no-op fallbacks when the GPIO range cannot be
// mapped (refuge-style development mode). The returned cleanup releases the
// GPIO mapping after the loop has quiesced the outputs.
func buildMachine(ctx context.Context, cfg *config.Config) (*alarm.Machine, func()) {
	real := true
	cleanup := func() {
		_ = gpio.Close()
	}

	if err := gpio.Open(); err != nil {
		logger.WarnKV(ctx, "Unable to use real pins, falling back to fake outputs", "error", err)

		real = false
		cleanup = func() {}
	}

	clock := alarm.NewWallClock()

	if cfg.Variant == config.VariantSimple {
		var led, buzzer alarm.Pin = &gpio.FallbackPin{Name: "led"}, &gpio.FallbackPin{Name: "buzzer"}
		if real {
			led = gpio.NewOutputPin(cfg.LEDPin)
			buzzer = gpio.NewOutputPin(cfg.BuzzerPin)
		}

		return alarm.NewSimple(clock, led, buzzer, uint32(cfg.LEDInterval.Milliseconds())), cleanup
	}

	var (
		led, idle alarm.Pin     = &gpio.FallbackPin{Name: "led"}, &gpio.FallbackPin{Name: "idle"}
		sounder   alarm.Sounder = &gpio.FallbackSounder{}
	)

	if real {
		led = gpio.NewOutputPin(cfg.LEDPin)
		idle = gpio.NewOutputPin(cfg.IdlePin)
		sounder = gpio.NewPWMBuzzer(cfg.BuzzerPin)
	}

	timings := alarm.Timings{
		LEDInterval:   uint32(cfg.LEDInterval.Milliseconds()),
		ToneInterval:  uint32(cfg.ToneInterval.Milliseconds()),
		ToneSilence:   uint32(cfg.ToneSilence.Milliseconds()),
		BeepFrequency: cfg.BeepFrequency,
		BooFrequency:  cfg.BooFrequency,
	}

	return alarm.NewElaborate(clock, led, idle, sounder, timings), cleanup
}
