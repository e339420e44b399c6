package telopts

import (
	telnet "github.com/moodclient/teleconsole"
)

const echo telnet.TelOptCode = 1

func RegisterECHO(usage telnet.TelOptUsage) telnet.TelnetOption {
	return &ECHO{
		NewBaseTelOpt(echo, "ECHO", usage),
	}
}

// ECHO indicates whether the local will repeat text sent from the remote back to the remote.  In practice,
// clients will tend to echo locally if the remote is not set to echo, so a server that draws its own
// input line activates ECHO locally to stop the client from echoing.
type ECHO struct {
	BaseTelOpt
}

// Echoing reports whether we have agreed to echo the remote's input back to it
func (o *ECHO) Echoing() bool {
	return o.LocalState() == telnet.TelOptActive
}
