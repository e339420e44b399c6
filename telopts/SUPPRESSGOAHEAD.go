package telopts

import (
	telnet "github.com/moodclient/teleconsole"
)

const suppressgoahead telnet.TelOptCode = 3

func RegisterSUPPRESSGOAHEAD(usage telnet.TelOptUsage) telnet.TelnetOption {
	return &SUPPRESSGOAHEAD{
		NewBaseTelOpt(suppressgoahead, "SUPPRESS-GO-AHEAD", usage),
	}
}

// SUPPRESSGOAHEAD switches off the half-duplex IAC GA handshake. Together with ECHO it
// puts the client in character-at-a-time mode.
type SUPPRESSGOAHEAD struct {
	BaseTelOpt
}

// GoAheadSuppressed reports whether we have agreed not to send IAC GA
func (o *SUPPRESSGOAHEAD) GoAheadSuppressed() bool {
	return o.LocalState() == telnet.TelOptActive
}

// SendPromptHint writes IAC GA after a prompt unless go-ahead is suppressed
func (o *SUPPRESSGOAHEAD) SendPromptHint() {
	if o.GoAheadSuppressed() {
		return
	}

	o.Terminal().WriteCommand(telnet.Command{OpCode: telnet.GA})
}
