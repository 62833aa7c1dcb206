package ami

import (
	"testing"

	"ami-go/testutil"

	"github.com/stretchr/testify/suite"
)

type ActionSuite struct {
	testutil.BaseSuite
}

func TestActionSuite(t *testing.T) {
	suite.Run(t, new(ActionSuite))
}

func (s *ActionSuite) TestWireForm() {
	a := NewAction("Originate", Field{Key: "Channel", Value: "SIP/100"}, Field{Key: "Variable", Value: "a=1\r\nb=2"})
	s.Equal("Action: Originate\r\nChannel: SIP/100\r\nVariable: a=1 b=2\r\n\r\n", a.String())

	a.SetID("42")
	s.Equal("Action: Originate\r\nActionID: 42\r\nChannel: SIP/100\r\nVariable: a=1 b=2\r\n\r\n", a.String())
}

func (s *ActionSuite) TestCommand() {
	c := NewCommand("core show uptime").WithID("7")
	s.Equal("7", c.CommandID())
	s.False(c.ListStyle())
	s.Equal("Action: Command\r\nActionID: 7\r\nCommandID: 7\r\nCommand: core show uptime\r\n\r\n", c.String())

	s.Empty(Ping().WithID("8").CommandID())
}

func (s *ActionSuite) TestListTerminal() {
	a := NewListAction("SIPpeers")
	s.True(a.ListStyle())
	s.False(a.Terminal(ParseMessage("Response: Success\r\nEventList: start")))
	s.False(a.Terminal(ParseMessage("Event: PeerEntry\r\nObjectName: 100")))
	s.True(a.Terminal(ParseMessage("Event: PeerlistComplete\r\nEventList: Complete")))
	s.True(a.Terminal(ParseMessage("Response: Error\r\nMessage: Permission denied")))
}

func (s *ActionSuite) TestSingleTerminal() {
	s.True(Ping().Terminal(ParseMessage("Response: Success")))
}

func (s *ActionSuite) TestParsesBack() {
	msg := ParseMessage(Login("admin", "s3cret").WithID("1").String())
	s.Require().NotNil(msg)
	s.Equal(map[string]string{"Action": "Login", "ActionID": "1", "Username": "admin", "Secret": "s3cret"}, msg.Map())
}
