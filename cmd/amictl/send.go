package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	amigo "ami-go"
	"ami-go/ami"
)

func sendCmd() *cobra.Command {
	var (
		list bool
		id   string
	)
	cmd := &cobra.Command{
		Use:   "send ACTION [key=value ...]",
		Short: "Send one action and print its response",
		Long: "Send one action and print its response. The action \"Command\" takes the CLI\n" +
			"command as the remaining arguments, e.g. `amictl send Command core show uptime`.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			action, err := buildAction(args, list)
			if err != nil {
				return err
			}
			if id != "" {
				action.WithID(id)
			}

			ctx, cancel := signalContext()
			defer cancel()

			cli := amigo.NewClient(cfg, nil)
			defer cli.Close()
			if err := cli.Connect(ctx); err != nil {
				return err
			}

			resp, err := cli.Call(ctx, action)
			if err != nil {
				return fmt.Errorf("%s: %w", action.Name, err)
			}
			for _, msg := range resp.Messages {
				printMessage(cmd.OutOrStdout(), msg)
			}
			if msg := resp.Message(); msg.IsResponse() && !msg.Success() {
				return fmt.Errorf("%s: %s", action.Name, msg.Get("Message"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&list, "list", "l", false, "Collect events until EventList: Complete")
	cmd.Flags().StringVar(&id, "id", "", "Explicit ActionID")
	return cmd
}

func buildAction(args []string, list bool) (*ami.Action, error) {
	name := args[0]
	if strings.EqualFold(name, "command") {
		if len(args) < 2 {
			return nil, fmt.Errorf("command: missing CLI command")
		}
		return ami.NewCommand(strings.Join(args[1:], " ")), nil
	}

	fields, err := parseFields(args[1:])
	if err != nil {
		return nil, err
	}
	if list {
		return ami.NewListAction(name, fields...), nil
	}
	return ami.NewAction(name, fields...), nil
}
