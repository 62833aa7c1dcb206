package testutil

import (
	"os"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/suite"
)

type BaseSuite struct {
	suite.Suite
}

func (s *BaseSuite) StrEnv(env string, defaultValue string) string {
	strValue := os.Getenv(env)
	if strValue == "" {
		return defaultValue
	}

	return strValue
}

func (s *BaseSuite) IntEnv(env string, defaultValue int) int {
	strValue := os.Getenv(env)
	if strValue == "" {
		return defaultValue
	}

	i, err := strconv.Atoi(strValue)
	s.Require().NoError(err)
	return i
}

func (s *BaseSuite) DurationEnv(env string, defaultValue time.Duration) time.Duration {
	strValue := os.Getenv(env)
	if strValue == "" {
		return defaultValue
	}

	d, err := time.ParseDuration(strValue)
	s.Require().NoError(err)
	return d
}

// Logger writes through the running test, so output is attached to it. Level
// defaults to debug, AMI_TEST_LOG_LEVEL overrides.
func (s *BaseSuite) Logger() zerolog.Logger {
	level, err := zerolog.ParseLevel(s.StrEnv("AMI_TEST_LOG_LEVEL", "debug"))
	s.Require().NoError(err)
	return zerolog.New(zerolog.NewTestWriter(s.T())).Level(level).With().Timestamp().Logger()
}

// WaitFor polls cond until it holds or the wait expires.
func (s *BaseSuite) WaitFor(cond func() bool, wait time.Duration, msg string) {
	s.Require().Eventually(cond, wait, 5*time.Millisecond, msg)
}
