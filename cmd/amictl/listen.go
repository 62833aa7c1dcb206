package main

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	amigo "ami-go"
	"ami-go/ami"
	"ami-go/config"
	"ami-go/gonet"
)

func listenCmd() *cobra.Command {
	var filter []string
	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Print events until interrupted, reconnecting when the manager goes away",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			ctx, cancel := signalContext()
			defer cancel()
			return runListen(ctx, cfg, filter, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringSliceVarP(&filter, "event", "e", nil, "Only print these event names (repeatable)")
	return cmd
}

// runListen prints matching events to out until ctx is cancelled.
func runListen(ctx context.Context, cfg config.Config, filter []string, out io.Writer) error {
	// Handed off, the handler runs on the read goroutine.
	events := make(chan *ami.Message, 256)
	handler := gonet.EventHandlerFunc(func(msg *ami.Message) {
		if !matches(filter, msg) {
			return
		}
		select {
		case events <- msg:
		case <-ctx.Done():
		}
	})

	cli := amigo.NewClient(cfg, handler)
	if err := cli.Connect(ctx); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for {
			select {
			case msg := <-events:
				printMessage(out, msg)
			case <-gctx.Done():
				return nil
			}
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		cli.Close()
		return nil
	})
	return ignoreCanceled(g.Wait())
}

func matches(filter []string, msg *ami.Message) bool {
	if len(filter) == 0 {
		return true
	}
	name := msg.Get(ami.KeyEvent)
	for _, f := range filter {
		if strings.EqualFold(f, name) {
			return true
		}
	}
	return false
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
