package telopts

import (
	"fmt"
	"strings"

	telnet "github.com/moodclient/teleconsole"
)

const ttype telnet.TelOptCode = 24

const (
	ttypeIS   byte = 0
	ttypeSEND byte = 1
)

// TTYPERemoteTypeEvent is raised when the remote reports its terminal type
type TTYPERemoteTypeEvent struct {
	BaseTelOptEvent
	TerminalType string
}

func (e TTYPERemoteTypeEvent) String() string {
	return fmt.Sprintf("TTYPE Remote Type- %s", e.TerminalType)
}

func RegisterTTYPE(usage telnet.TelOptUsage) telnet.TelnetOption {
	return &TTYPE{
		BaseTelOpt: NewBaseTelOpt(ttype, "TTYPE", usage),
	}
}

// TTYPE asks the remote for its terminal type as soon as the remote agrees to the
// option. The type is stored lower-cased, ready to be used as a terminfo name.
type TTYPE struct {
	BaseTelOpt

	awaitingType bool
	remoteType   string
}

func (o *TTYPE) OnEnabled(side telnet.TelOptSide) {
	if side != telnet.TelOptSideRemote {
		return
	}

	o.Terminal().WriteCommand(telnet.Command{
		OpCode:         telnet.SB,
		Option:         ttype,
		Subnegotiation: []byte{ttypeSEND},
	})

	if !o.awaitingType {
		o.awaitingType = true
		o.Terminal().IncrementPending()
	}
}

func (o *TTYPE) Subnegotiate(subnegotiation []byte) error {
	if len(subnegotiation) == 0 || subnegotiation[0] != ttypeIS {
		return fmt.Errorf("ttype: unexpected subnegotiation %+v", subnegotiation)
	}

	o.remoteType = strings.ToLower(string(subnegotiation[1:]))
	o.Terminal().RaiseTelOptEvent(TTYPERemoteTypeEvent{
		BaseTelOptEvent: BaseTelOptEvent{o},
		TerminalType:    o.remoteType,
	})

	if o.awaitingType {
		o.awaitingType = false
		o.Terminal().DecrementPending()
	}

	return nil
}

func (o *TTYPE) SubnegotiationString(subnegotiation []byte) (string, error) {
	if len(subnegotiation) == 0 {
		return "", fmt.Errorf("ttype: empty subnegotiation")
	}

	switch subnegotiation[0] {
	case ttypeSEND:
		return "SEND", nil
	case ttypeIS:
		return fmt.Sprintf("IS %q", subnegotiation[1:]), nil
	}

	return "", fmt.Errorf("ttype: unknown subcommand %d", subnegotiation[0])
}

// RemoteTerminalType returns the lower-cased terminal type reported by the remote, or ""
// if none was received
func (o *TTYPE) RemoteTerminalType() string {
	return o.remoteType
}
