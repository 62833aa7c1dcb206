package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"

	"ami-go/ami"
)

const (
	EnvConfig   = "AMI_CONFIG"
	EnvAddr     = "AMI_ADDR"
	EnvUsername = "AMI_USERNAME"
	EnvSecret   = "AMI_SECRET"
	EnvEncoding = "AMI_ENCODING"
)

// Duration reads "2s" style strings from toml.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Config is the client configuration loaded from amictl.toml.
type Config struct {
	// Manager address, host:port.
	Addr string `toml:"addr"`

	// Credentials for the Login sent after every connect. Empty skips login.
	Username string `toml:"username"`
	Secret   string `toml:"secret"`
	// Events is the Login event mask ("on", "off", "system,call").
	Events string `toml:"events"`

	Encoding string `toml:"encoding"`
	// MaxFrameSize bounds an incomplete frame. -1 disables the bound.
	MaxFrameSize int `toml:"max_frame_size"`
	// SaveStream appends the raw received stream to this file.
	SaveStream string `toml:"save_stream"`

	DialTimeout    Duration `toml:"dial_timeout"`
	ReconnectDelay Duration `toml:"reconnect_delay"`
	// RequestTimeout bounds Call; zero waits until the connection drops.
	RequestTimeout Duration `toml:"request_timeout"`
}

func Default() Config {
	return Config{
		Addr:           "127.0.0.1:5038",
		Events:         "on",
		Encoding:       ami.DefaultEncoding,
		MaxFrameSize:   1 << 20,
		DialTimeout:    Duration{5 * time.Second},
		ReconnectDelay: Duration{2 * time.Second},
	}
}

// Load reads path over the defaults, applies environment overrides and
// validates the result. An empty path uses AMI_CONFIG, and no file at all
// when that is unset too.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	}
	applyEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAddr); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Username = v
	}
	if v := os.Getenv(EnvSecret); v != "" {
		cfg.Secret = v
	}
	if v := os.Getenv(EnvEncoding); v != "" {
		cfg.Encoding = v
	}
}

func (c Config) Validate() error {
	var errs []error
	if _, port, err := net.SplitHostPort(c.Addr); err != nil {
		errs = append(errs, fmt.Errorf("addr %q: %w", c.Addr, err))
	} else if _, err := strconv.ParseUint(port, 10, 16); err != nil {
		errs = append(errs, fmt.Errorf("addr %q: invalid port", c.Addr))
	}
	if c.Username != "" && c.Secret == "" {
		errs = append(errs, errors.New("username set without secret"))
	}
	if _, err := ami.NewDecoder(c.Encoding); err != nil {
		errs = append(errs, fmt.Errorf("encoding: %w", err))
	}
	if c.MaxFrameSize < -1 {
		errs = append(errs, fmt.Errorf("max_frame_size must be -1 (unbounded) or more, got %d", c.MaxFrameSize))
	}
	if c.ReconnectDelay.Duration <= 0 {
		errs = append(errs, fmt.Errorf("reconnect_delay must be positive, got %s", c.ReconnectDelay))
	}
	if c.DialTimeout.Duration <= 0 {
		errs = append(errs, fmt.Errorf("dial_timeout must be positive, got %s", c.DialTimeout))
	}
	if c.RequestTimeout.Duration < 0 {
		errs = append(errs, fmt.Errorf("request_timeout must not be negative, got %s", c.RequestTimeout))
	}
	return errors.Join(errs...)
}
