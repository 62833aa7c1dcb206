package ami_go

import (
	"context"
	"errors"
	"fmt"

	"ami-go/ami"
	"ami-go/config"
	"ami-go/gonet"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var ErrAuthFailed = errors.New("manager login failed")

// Client is a manager connection built from a Config: it logs in after every
// (re)connect when credentials are configured.
type Client struct {
	cfg config.Config
	cli *gonet.Client
}

func NewClient(cfg config.Config, events gonet.EventHandler) *Client {
	return NewClientWithLogger(cfg, events, log.Logger)
}

func NewClientWithLogger(cfg config.Config, events gonet.EventHandler, logger zerolog.Logger) *Client {
	c := &Client{cfg: cfg}
	c.cli = gonet.NewClient(cfg.Addr, gonet.Options{
		Encoding:       cfg.Encoding,
		MaxFrameSize:   cfg.MaxFrameSize,
		SaveStream:     cfg.SaveStream,
		DialTimeout:    cfg.DialTimeout.Duration,
		ReconnectDelay: cfg.ReconnectDelay.Duration,
		Events:         events,
		OnConnect:      c.login,
		Logger:         &logger,
	})
	return c
}

func (c *Client) login(ctx context.Context, conn *gonet.Connection) error {
	if c.cfg.Username == "" {
		return nil
	}
	action := ami.Login(c.cfg.Username, c.cfg.Secret)
	if c.cfg.Events != "" {
		action.Fields = append(action.Fields, ami.Field{Key: "Events", Value: c.cfg.Events})
	}
	resp, err := conn.Call(ctx, action)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}
	if msg := resp.Message(); !msg.Success() {
		return fmt.Errorf("%w: %s", ErrAuthFailed, msg.Get("Message"))
	}
	return nil
}

func (c *Client) Connect(ctx context.Context) error {
	return c.cli.Connect(ctx)
}

func (c *Client) Close() {
	c.cli.Close()
}

func (c *Client) State() gonet.State {
	return c.cli.State()
}

// Send submits action without waiting for its response.
func (c *Client) Send(ctx context.Context, action *ami.Action) (*gonet.Future, error) {
	return c.cli.Send(ctx, action)
}

// Call submits action and waits for its response, bounded by the configured
// request timeout when there is one.
func (c *Client) Call(ctx context.Context, action *ami.Action) (*gonet.Response, error) {
	if d := c.cfg.RequestTimeout.Duration; d > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d)
		defer cancel()
	}
	return c.cli.Call(ctx, action)
}
