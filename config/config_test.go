package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"ami-go/testutil"

	"github.com/stretchr/testify/suite"
)

type ConfigSuite struct {
	testutil.BaseSuite
}

func TestConfigSuite(t *testing.T) {
	suite.Run(t, new(ConfigSuite))
}

func (s *ConfigSuite) SetupTest() {
	for _, env := range []string{EnvConfig, EnvAddr, EnvUsername, EnvSecret, EnvEncoding} {
		s.T().Setenv(env, "")
	}
}

func (s *ConfigSuite) write(content string) string {
	path := filepath.Join(s.T().TempDir(), "amictl.toml")
	s.Require().NoError(os.WriteFile(path, []byte(content), 0o600))
	return path
}

func (s *ConfigSuite) TestDefaults() {
	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal(Default(), cfg)
	s.Equal(2*time.Second, cfg.ReconnectDelay.Duration)
}

func (s *ConfigSuite) TestFile() {
	path := s.write(`
addr = "pbx.local:5038"
username = "admin"
secret = "s3cret"
encoding = "utf-8"
reconnect_delay = "500ms"
request_timeout = "10s"
save_stream = "/tmp/ami.log"
`)
	cfg, err := Load(path)
	s.Require().NoError(err)
	s.Equal("pbx.local:5038", cfg.Addr)
	s.Equal("admin", cfg.Username)
	s.Equal("utf-8", cfg.Encoding)
	s.Equal(500*time.Millisecond, cfg.ReconnectDelay.Duration)
	s.Equal(10*time.Second, cfg.RequestTimeout.Duration)
	s.Equal("/tmp/ami.log", cfg.SaveStream)
	s.Equal(5*time.Second, cfg.DialTimeout.Duration, "unset keys keep defaults")
}

func (s *ConfigSuite) TestEnvOverrides() {
	path := s.write(`addr = "pbx.local:5038"`)
	s.T().Setenv(EnvConfig, path)
	s.T().Setenv(EnvAddr, "10.0.0.1:5039")
	s.T().Setenv(EnvUsername, "ops")
	s.T().Setenv(EnvSecret, "pw")

	cfg, err := Load("")
	s.Require().NoError(err)
	s.Equal("10.0.0.1:5039", cfg.Addr)
	s.Equal("ops", cfg.Username)
	s.Equal("pw", cfg.Secret)
}

func (s *ConfigSuite) TestInvalid() {
	path := s.write(`
addr = "no-port"
username = "admin"
encoding = "klingon"
reconnect_delay = "0s"
`)
	_, err := Load(path)
	s.Require().Error(err)
	s.ErrorContains(err, "addr")
	s.ErrorContains(err, "secret")
	s.ErrorContains(err, "encoding")
	s.ErrorContains(err, "reconnect_delay")
}

func (s *ConfigSuite) TestUnboundedFrameSize() {
	cfg, err := Load(s.write(`max_frame_size = -1`))
	s.Require().NoError(err)
	s.Equal(-1, cfg.MaxFrameSize)

	_, err = Load(s.write(`max_frame_size = -2`))
	s.ErrorContains(err, "max_frame_size")
}

func (s *ConfigSuite) TestBadDuration() {
	_, err := Load(s.write(`dial_timeout = "soon"`))
	s.Error(err)
}

func (s *ConfigSuite) TestMissingFile() {
	_, err := Load(filepath.Join(s.T().TempDir(), "absent.toml"))
	s.Error(err)
}
