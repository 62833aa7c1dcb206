package main

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"ami-go/ami"
	"ami-go/gonet"
)

func mockCmd() *cobra.Command {
	var (
		listen   string
		username string
		secret   string
		interval time.Duration
	)
	cmd := &cobra.Command{
		Use:   "mock",
		Short: "Run a manager peer answering Ping, Login, Command and list actions",
		RunE: func(cmd *cobra.Command, args []string) error {
			sigCtx, cancel := signalContext()
			defer cancel()

			h := gonet.NewMockHandler()
			h.Username = username
			h.Secret = secret
			srv := gonet.NewServer(h, log.Logger)
			l := gonet.NewListenerForAddr(listen, srv)
			if err := l.Start(sigCtx); err != nil {
				return err
			}
			log.Info().Str("addr", l.Address().String()).Msg("mock manager listening")

			g, ctx := errgroup.WithContext(sigCtx)
			if interval > 0 {
				g.Go(func() error {
					return tick(ctx, srv, interval)
				})
			}
			g.Go(func() error {
				<-ctx.Done()
				srv.DropAll()
				return l.Close()
			})
			return ignoreCanceled(g.Wait())
		},
	}
	cmd.Flags().StringVar(&listen, "listen", "127.0.0.1:5038", "Address to listen on")
	cmd.Flags().StringVar(&username, "username", "", "Require this Login username")
	cmd.Flags().StringVar(&secret, "secret", "", "Require this Login secret")
	cmd.Flags().DurationVar(&interval, "event-interval", 5*time.Second, "Broadcast a periodic event, 0 disables")
	return cmd
}

// tick broadcasts a heartbeat-like event to every connected client.
func tick(ctx context.Context, srv *gonet.Server, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case now := <-t.C:
			srv.Broadcast(ami.NewMessage(
				ami.Field{Key: ami.KeyEvent, Value: "Heartbeat"},
				ami.Field{Key: "Privilege", Value: "system,all"},
				ami.Field{Key: "Timestamp", Value: now.UTC().Format(time.RFC3339)},
			))
		}
	}
}
