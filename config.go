package telnet

import "time"

// DefaultSetupTimeout is how long the terminal waits for answers to its startup
// negotiations before declaring setup complete anyway
const DefaultSetupTimeout = 500 * time.Millisecond

type TerminalConfig struct {
	// CharsetName is the registered IANA name of the 8-bit character set spoken on the wire.
	// Text written with WriteText is encoded into it, and DecodeText turns received bytes
	// back into UTF-8. Runes the character set cannot represent are replaced. Leave it
	// empty for ISO-8859-1, which maps every byte to the code point of the same value.
	CharsetName string

	// TelOpts indicates which TelOpts the terminal should request from the remote, and which the remote
	// should be permitted to request from us. Options that are not listed are refused.
	TelOpts []TelnetOption

	// SetupTimeout bounds the startup negotiation. Once every request sent by Start and
	// every reply a telopt is waiting for has arrived, setup completes immediately;
	// otherwise it completes when this much time has passed without the pending count
	// reaching zero. The timer is re-armed each time a new request is sent during setup.
	// Zero means DefaultSetupTimeout.
	SetupTimeout time.Duration

	// EventHooks is a set of callbacks that the terminal will call when the relevant
	// event occurs.  You can register additional callbacks after creation with
	// Terminal.Register* methods.
	EventHooks EventHooks
}
