package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"ami-go/testutil"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type LoggingSuite struct {
	testutil.BaseSuite
}

func TestLoggingSuite(t *testing.T) {
	suite.Run(t, new(LoggingSuite))
}

func (s *LoggingSuite) TestParseLevel() {
	cases := map[string]zerolog.Level{
		"trace":    zerolog.TraceLevel,
		" DEBUG ":  zerolog.DebugLevel,
		"warning":  zerolog.WarnLevel,
		"off":      zerolog.Disabled,
		"frames":   zerolog.TraceLevel,
		"error":    zerolog.ErrorLevel,
		"info":     zerolog.InfoLevel,
		"disabled": zerolog.Disabled,
	}
	for raw, want := range cases {
		got, ok := ParseLevel(raw)
		s.True(ok, raw)
		s.Equal(want, got, raw)
	}
	_, ok := ParseLevel("")
	s.False(ok)
	_, ok = ParseLevel("loud")
	s.False(ok)
}

func (s *LoggingSuite) TestEnvOverrides() {
	s.T().Setenv(EnvLogLevel, "error")
	s.T().Setenv(EnvLogJSON, "true")
	s.T().Setenv(EnvLogNoColor, "maybe")

	cfg := defaultConfig(ProfileTest)
	applyEnvOverrides(&cfg)
	s.Equal(zerolog.ErrorLevel, cfg.Level)
	s.True(cfg.JSON)
	s.True(cfg.NoColor, "unparseable values keep the profile default")
}

func (s *LoggingSuite) TestJSONOutput() {
	var buf bytes.Buffer
	logger := New("amictl", &buf, Config{Level: zerolog.InfoLevel, JSON: true})
	logger.Debug().Msg("hidden")
	logger.Info().Str("addr", "127.0.0.1:5038").Msg("connected")

	var line map[string]any
	s.Require().NoError(json.Unmarshal(buf.Bytes(), &line))
	s.Equal("amictl", line["app"])
	s.Equal("connected", line["message"])
	s.Equal("127.0.0.1:5038", line["addr"])
}

func (s *LoggingSuite) TestConsoleOutput() {
	var buf bytes.Buffer
	logger := New("amictl", &buf, Config{Level: zerolog.InfoLevel, NoColor: true})
	logger.Warn().Msg("connection lost")
	s.Contains(buf.String(), "connection lost")
	s.Contains(buf.String(), "WRN")
}
