package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"ami-go/ami"
	"ami-go/config"
	"ami-go/logging"
)

var (
	configFlag string
	addrFlag   string
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "amictl",
		Short:         "Talk to a manager interface over TCP",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.Configure("amictl", logging.ProfileRuntime)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Path to amictl.toml (default $AMI_CONFIG)")
	rootCmd.PersistentFlags().StringVarP(&addrFlag, "addr", "a", "", "Manager address host:port, overrides the config")

	rootCmd.AddCommand(
		sendCmd(),
		listenCmd(),
		mockCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "amictl:", err)
		os.Exit(1)
	}
}

func loadConfig() (config.Config, error) {
	cfg, err := config.Load(configFlag)
	if err != nil {
		return config.Config{}, err
	}
	if addrFlag != "" {
		cfg.Addr = addrFlag
		if err := cfg.Validate(); err != nil {
			return config.Config{}, err
		}
	}
	return cfg, nil
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

// parseFields turns key=value arguments into action fields.
func parseFields(args []string) ([]ami.Field, error) {
	fields := make([]ami.Field, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("expected key=value, got %q", arg)
		}
		fields = append(fields, ami.Field{Key: strings.TrimSpace(key), Value: value})
	}
	return fields, nil
}

func printMessage(w io.Writer, msg *ami.Message) {
	fmt.Fprint(w, msg.String())
}
