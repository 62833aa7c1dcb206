package ami

import (
	"testing"

	"ami-go/testutil"

	"github.com/stretchr/testify/suite"
)

type MessageSuite struct {
	testutil.BaseSuite
}

func TestMessageSuite(t *testing.T) {
	suite.Run(t, new(MessageSuite))
}

func (s *MessageSuite) TestParseResponse() {
	msg := ParseMessage("Response: Success\r\nActionID: 42")
	s.Require().NotNil(msg)
	s.Equal(map[string]string{"Response": "Success", "ActionID": "42"}, msg.Map())
	s.Equal(KindResponse, msg.Kind())
	s.Equal("Success", msg.Name())
	s.Equal("42", msg.ActionID())
	s.True(msg.IsResponse())
	s.False(msg.IsEvent())
	s.True(msg.Success())
}

func (s *MessageSuite) TestCaseInsensitiveLookup() {
	msg := ParseMessage("Event: Hangup\r\nactionid: 7\r\nCommandId: 9")
	s.Require().NotNil(msg)
	s.Equal("7", msg.Get("ActionID"))
	s.Equal("7", msg.ActionID())
	s.Equal("9", msg.CommandID())
	s.True(msg.Has("EVENT"))
	s.Equal([]string{"Event", "actionid", "CommandId"}, msg.Keys())
	s.Equal(KindEvent, msg.Kind())
}

func (s *MessageSuite) TestDuplicateKeys() {
	msg := ParseMessage("Response: Follows\r\nOutput: one\r\noutput: two\r\nOutput: three")
	s.Require().NotNil(msg)
	s.Equal("three", msg.Get("Output"))
	s.Equal([]string{"one", "two", "three"}, msg.Values("OUTPUT"))
	s.Equal([]string{"Response", "Output"}, msg.Keys())
	s.Equal(4, msg.Len())
}

func (s *MessageSuite) TestIgnoresNonFieldLines() {
	msg := ParseMessage("Asterisk Call Manager/5.0.1\nResponse: Error\n: orphan\nMessage: Permission denied\n--END COMMAND--")
	s.Require().NotNil(msg)
	s.Equal([]string{"Response", "Message"}, msg.Keys())
	s.Equal(KindResponse, msg.Kind())
	s.False(msg.Success())
}

func (s *MessageSuite) TestValueKeepsColons() {
	msg := ParseMessage("Event: Newexten\r\nAppData: SIP/100,30,tT\r\nTime: 12:30:01\r\nEmpty:")
	s.Require().NotNil(msg)
	s.Equal("12:30:01", msg.Get("Time"))
	v, ok := msg.Lookup("Empty")
	s.True(ok)
	s.Equal("", v)
	_, ok = msg.Lookup("Missing")
	s.False(ok)
}

func (s *MessageSuite) TestEmptyFrame() {
	s.Nil(ParseMessage(""))
	s.Nil(ParseMessage("\r\n"))
	s.Nil(ParseMessage("no separator here"))
}

func (s *MessageSuite) TestOtherKind() {
	msg := ParseMessage("ActionID: 5\r\nResponse: Success")
	s.Require().NotNil(msg)
	s.Equal(KindOther, msg.Kind())
	s.True(msg.IsResponse())
	s.Equal("other", msg.Kind().String())
}

func (s *MessageSuite) TestString() {
	msg := NewMessage(Field{Key: "Event", Value: "FullyBooted"}, Field{Key: "Status", Value: "Fully Booted"})
	s.Equal("Event: FullyBooted\r\nStatus: Fully Booted\r\n\r\n", msg.String())

	again := ParseMessage(msg.String())
	s.Require().NotNil(again)
	s.Equal(msg.Fields(), again.Fields())
}
