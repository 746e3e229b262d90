package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AlbertDoesNothing/Myriad/internal/config"
	"github.com/AlbertDoesNothing/Myriad/internal/logger"
	"github.com/AlbertDoesNothing/Myriad/internal/service/controller"
	"github.com/AlbertDoesNothing/Myriad/internal/version"
)

var (
	// configPath to the configuration YAML file.
	configPath string
	// serialPort overrides the command port device path.
	serialPort string
	// listenAddress overrides the status server listen address.
	listenAddress string
	// logLevel sets the logging verbosity.
	logLevel string

	// rootCmd represents the base command for running the controller daemon.
	rootCmd = &cobra.Command{
		Use:   "alarm-controller [serial-port]",
		Short: "Run the alarm controller loop and drive the LED and buzzer outputs.",
		Long: `Starts the alarm controller: a non-blocking control loop that listens for
single-byte commands on the serial port ('1' activates, '0' deactivates,
everything else is ignored) and drives the alarm LED blink pattern and the
buzzer tone sequence on GPIO outputs.

The serial port can be provided as argument to override config; when neither
is set, the first available port is used. Timings and pin assignments come
from the settings file and default to the stock firmware constants. Setting
a listen address additionally serves a JSON/websocket status page with
activate/deactivate endpoints mirroring the serial protocol.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			if lvl, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(lvl)
			}

			// Use serial port argument if provided, otherwise rely on config.
			port := serialPort
			if len(args) > 0 {
				port = args[0]
			}

			options := &controller.Options{
				ConfigPath:    configPath,
				SerialPort:    port,
				ListenAddress: listenAddress,
			}

			return controller.Run(ctx, options)
		},
	}
)

// Execute runs the alarm-controller CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&configPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serialPort, "port", "p", "", "serial command port (default: autodetect)")
	rootCmd.Flags().StringVarP(&listenAddress, "listen", "l", "", "status server listen address (default: disabled)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "logging level (debug, info, warn, error)")
}
