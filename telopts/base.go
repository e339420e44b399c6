package telopts

import (
	"fmt"
	"strings"

	telnet "github.com/moodclient/teleconsole"
)

// BaseTelOpt carries the parts of telnet.TelnetOption every telopt shares. Telopts embed
// it and override the hooks they care about.
type BaseTelOpt struct {
	code     telnet.TelOptCode
	name     string
	terminal *telnet.Terminal
	usage    telnet.TelOptUsage
}

func NewBaseTelOpt(code telnet.TelOptCode, name string, usage telnet.TelOptUsage) BaseTelOpt {
	return BaseTelOpt{
		code:  code,
		name:  name,
		usage: usage,
	}
}

func (o *BaseTelOpt) Code() telnet.TelOptCode {
	return o.code
}

func (o *BaseTelOpt) String() string {
	return o.name
}

func (o *BaseTelOpt) Usage() telnet.TelOptUsage {
	return o.usage
}

func (o *BaseTelOpt) Initialize(terminal *telnet.Terminal) {
	o.terminal = terminal
}

func (o *BaseTelOpt) Terminal() *telnet.Terminal {
	return o.terminal
}

// LocalState returns the state of this option on our side of the connection
func (o *BaseTelOpt) LocalState() telnet.TelOptState {
	return o.terminal.OptionState(telnet.TelOptSideLocal, o.code)
}

// RemoteState returns the state of this option on the remote's side of the connection
func (o *BaseTelOpt) RemoteState() telnet.TelOptState {
	return o.terminal.OptionState(telnet.TelOptSideRemote, o.code)
}

func (o *BaseTelOpt) OnEnabled(side telnet.TelOptSide) {}

func (o *BaseTelOpt) OnDisabled(side telnet.TelOptSide) {}

func (o *BaseTelOpt) Subnegotiate(subnegotiation []byte) error {
	return fmt.Errorf("%s: unexpected subnegotiation %+v", strings.ToLower(o.name), subnegotiation)
}

func (o *BaseTelOpt) SubnegotiationString(subnegotiation []byte) (string, error) {
	return "", fmt.Errorf("%s: unexpected subnegotiation %+v", strings.ToLower(o.name), subnegotiation)
}

// BaseTelOptEvent is embedded by events raised by telopts
type BaseTelOptEvent struct {
	option telnet.TelnetOption
}

func (e BaseTelOptEvent) Option() telnet.TelnetOption {
	return e.option
}
