package telopts

import (
	"fmt"

	telnet "github.com/moodclient/teleconsole"
)

const naws telnet.TelOptCode = 31

// NAWSRemoteSizeChangedEvent is raised when the remote reports a new window size after
// setup has completed. Sizes reported during setup are only stored.
type NAWSRemoteSizeChangedEvent struct {
	BaseTelOptEvent
	NewRemoteWidth  int
	NewRemoteHeight int
}

func (e NAWSRemoteSizeChangedEvent) String() string {
	return fmt.Sprintf("NAWS Remote Size Changed- Width: %d, Height: %d", e.NewRemoteWidth, e.NewRemoteHeight)
}

func RegisterNAWS(usage telnet.TelOptUsage) telnet.TelnetOption {
	return &NAWS{
		BaseTelOpt: NewBaseTelOpt(naws, "NAWS", usage),
	}
}

// NAWS receives the remote's window size. Once the remote agrees to the option it is
// expected to send its size straight away, so setup waits for the first report.
type NAWS struct {
	BaseTelOpt

	awaitingSize bool
	remoteWidth  int
	remoteHeight int
}

func (o *NAWS) OnEnabled(side telnet.TelOptSide) {
	if side != telnet.TelOptSideRemote || o.awaitingSize {
		return
	}

	o.awaitingSize = true
	o.Terminal().IncrementPending()
}

func (o *NAWS) Subnegotiate(subnegotiation []byte) error {
	if len(subnegotiation) != 4 {
		// Malformed sizes are ignored
		return nil
	}

	o.remoteWidth = (int(subnegotiation[0]) << 8) | int(subnegotiation[1])
	o.remoteHeight = (int(subnegotiation[2]) << 8) | int(subnegotiation[3])

	if o.Terminal().SetupComplete() {
		o.Terminal().RaiseTelOptEvent(NAWSRemoteSizeChangedEvent{
			BaseTelOptEvent: BaseTelOptEvent{o},
			NewRemoteWidth:  o.remoteWidth,
			NewRemoteHeight: o.remoteHeight,
		})
	}

	if o.awaitingSize {
		o.awaitingSize = false
		o.Terminal().DecrementPending()
	}

	return nil
}

func (o *NAWS) SubnegotiationString(subnegotiation []byte) (string, error) {
	if len(subnegotiation) != 4 {
		return "", fmt.Errorf("naws: expected a four byte subnegotiation but received %d", len(subnegotiation))
	}

	width := (int(subnegotiation[0]) << 8) | int(subnegotiation[1])
	height := (int(subnegotiation[2]) << 8) | int(subnegotiation[3])
	return fmt.Sprintf("%dx%d", width, height), nil
}

// GetRemoteSize returns the last size reported by the remote, or zeroes if it never sent one
func (o *NAWS) GetRemoteSize() (width, height int) {
	return o.remoteWidth, o.remoteHeight
}
