package telopts

import (
	telnet "github.com/moodclient/teleconsole"
)

const transmitbinary telnet.TelOptCode = 0

func RegisterTRANSMITBINARY(usage telnet.TelOptUsage) telnet.TelnetOption {
	return &TRANSMITBINARY{
		NewBaseTelOpt(transmitbinary, "TRANSMIT-BINARY", usage),
	}
}

// TRANSMITBINARY records in the terminal's Charset whether 8-bit data is flowing in
// each direction. While it is registered, text in a direction without binary mode is
// limited to 7-bit ASCII.
type TRANSMITBINARY struct {
	BaseTelOpt
}

func (o *TRANSMITBINARY) Initialize(terminal *telnet.Terminal) {
	o.BaseTelOpt.Initialize(terminal)
	terminal.Charset().RequireBinary()
}

func (o *TRANSMITBINARY) OnEnabled(side telnet.TelOptSide) {
	o.setBinary(side, true)
}

func (o *TRANSMITBINARY) OnDisabled(side telnet.TelOptSide) {
	o.setBinary(side, false)
}

func (o *TRANSMITBINARY) setBinary(side telnet.TelOptSide, binary bool) {
	if side == telnet.TelOptSideLocal {
		o.Terminal().Charset().SetBinaryEncode(binary)
	} else {
		o.Terminal().Charset().SetBinaryDecode(binary)
	}
}
