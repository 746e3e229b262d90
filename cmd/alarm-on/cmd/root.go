package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/AlbertDoesNothing/Myriad/internal/config"
	"github.com/AlbertDoesNothing/Myriad/internal/service/trigger"
	"github.com/AlbertDoesNothing/Myriad/internal/version"
)

var (
	// cfgPath stores the configuration file path.
	cfgPath string
	// serialPort overrides the controller port.
	serialPort string

	// rootCmd represents the base command for activating the alarm.
	rootCmd = &cobra.Command{
		Use:   "alarm-on [serial-port]",
		Short: "Activate the alarm.",
		Long: `Writes the activation byte '1' to the controller's serial port, starting
the LED blink pattern and the buzzer tone sequence.

The serial port can be provided as argument or loaded from the configuration
file; when neither is set, the first available port is used. The protocol is
write-only: the controller sends no acknowledgment.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			// Use serial port argument if provided, otherwise rely on config.
			port := serialPort
			if len(args) > 0 {
				port = args[0]
			}

			return trigger.Run(ctx, &trigger.Options{
				ConfigPath:   cfgPath,
				SerialPort:   port,
				DesiredState: true,
			})
		},
	}
)

// Execute runs the alarm-on CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.Flags().StringVarP(&cfgPath, "config", "c", config.DefaultConfigFilename, "path to configuration file")
	rootCmd.Flags().StringVarP(&serialPort, "port", "p", "", "controller serial port (default: autodetect)")
}
