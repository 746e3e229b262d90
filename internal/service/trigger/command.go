package trigger

import (
	"context"
	"fmt"

	"github.com/AlbertDoesNothing/Myriad/internal/config"
	alarm "github.com/AlbertDoesNothing/Myriad/internal/domain/alarm"
	"github.com/AlbertDoesNothing/Myriad/internal/logger"
	"github.com/AlbertDoesNothing/Myriad/internal/serialport"
)

// Options configures the host-side trigger binaries.
type Options struct {
	// ConfigPath to the YAML settings file, defaults to standard filename if empty.
	ConfigPath string

	// SerialPort overrides the controller port from config when specified.
	SerialPort string

	// DesiredState represents the target alarm state (true=on, false=off).
	DesiredState bool
}

// Run pushes the desired alarm state to the controller as a single command
// byte over the serial link. The protocol is fire-and-forget: the controller
// sends nothing back, so success here means the byte left the port.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "alarm-on/off")

	cfg, err := config.LoadOrDefault(opts.ConfigPath)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}

	port := cfg.SerialPort
	if opts.SerialPort != "" {
		port = opts.SerialPort
	}

	command := alarm.CommandDeactivate
	if opts.DesiredState {
		command = alarm.CommandActivate
	}

	logger.InfoKV(ctx, "Pushing desired alarm state",
		"port", port,
		"desired_state", opts.DesiredState,
	)

	if err := serialport.Send(ctx, port, cfg.BaudRate, command); err != nil {
		return fmt.Errorf("send command: %w", err)
	}

	logger.Info(ctx, "Command sent")

	return nil
}
