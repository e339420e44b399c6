package telnet

import (
	"fmt"
)

// TelOptUsage indicates how a particular TelnetOption is supposed to be used by the
// terminal.  Whether it is permitted to be activated locally or on the remote, and
// whether we should request activation locally or on the remote when the Terminal starts.
type TelOptUsage byte

// There's no situation where we'd want to request usage of a telopt but not allow the remote to
// propose it, so the TelOptRequestRemote/Local exposed to consumers includes both flags

const (
	// TelOptAllowRemote - if the remote requests to activate this telopt on their side,
	// we will permit it
	TelOptAllowRemote TelOptUsage = 1 << iota
	telOptOnlyRequestRemote
	// TelOptAllowLocal - if the remote requests that we activate this telopt on our side,
	// we will comply
	TelOptAllowLocal
	telOptOnlyRequestLocal
)

const (
	// TelOptRequestRemote - we will request that the remote activate this telopt during
	// Terminal startup
	TelOptRequestRemote TelOptUsage = TelOptAllowRemote | telOptOnlyRequestRemote
	// TelOptRequestLocal - we will request that the remote allow us to activate this
	// telopt on our side during Terminal startup
	TelOptRequestLocal TelOptUsage = TelOptAllowLocal | telOptOnlyRequestLocal
)

// TelOptCode - each telopt has a unique identification number between 0 and 255
type TelOptCode byte

// TelOptSide indicates which end of the connection an option state belongs to
type TelOptSide byte

const (
	TelOptSideUnknown TelOptSide = iota
	// TelOptSideLocal is our side: DO and DONT from the remote address it, we answer with WILL and WONT
	TelOptSideLocal
	// TelOptSideRemote is the peer's side: WILL and WONT from the remote address it, we answer with DO and DONT
	TelOptSideRemote
)

func (s TelOptSide) String() string {
	switch s {
	case TelOptSideLocal:
		return "Local"
	case TelOptSideRemote:
		return "Remote"
	default:
		return "Unknown"
	}
}

// TelnetOption is a plug-in consumer of one negotiated telopt. The Terminal owns all
// negotiation state; options are told when they become enabled or disabled and receive
// the subnegotiations addressed to them.
type TelnetOption interface {
	// Code returns the code this option should be registered under. This method is expected to run
	// successfully before Initialize is called.
	Code() TelOptCode
	// String should return the short name used to refer to this option. This method is expected to run
	// successfully before Initialize is called.
	String() string
	// Usage indicates the way in which this TelOpt is permitted to be used. This method
	// is expected to run successfully before Initialize is called.
	Usage() TelOptUsage

	// Initialize sets the terminal used by this telopt and performs any other necessary
	// business before other methods may be called.
	Initialize(terminal *Terminal)
	// Terminal returns the current terminal, or nil before Initialize is called
	Terminal() *Terminal

	// OnEnabled is called when the option becomes enabled on one side of the connection.
	// It may send subnegotiations and raise the terminal's pending count for replies
	// it expects to receive.
	OnEnabled(side TelOptSide)
	// OnDisabled is called when a previously enabled option is switched off
	OnDisabled(side TelOptSide)

	// Subnegotiate is called when a subnegotiation arrives from the remote party for an
	// option that is enabled on at least one side
	Subnegotiate(subnegotiation []byte) error
	// SubnegotiationString creates a legible string for a subnegotiation request
	SubnegotiationString(subnegotiation []byte) (string, error)
}

// WantState is our policy for an option on one side of the connection
type WantState byte

const (
	// WantDisabled - requests to enable the option are refused
	WantDisabled WantState = iota
	// WantAccepted - we do not ask for the option but agree when the remote proposes it
	WantAccepted
	// WantWanted - we ask for the option and agree when the remote proposes it
	WantWanted
)

// RequestState tracks whether a negotiation we started is still waiting for an answer
type RequestState byte

const (
	RequestNone RequestState = iota
	RequestSent
	RequestAcknowledged
)

// TelOptState is the coarse state of an option on one side, as reported in
// TelOptStateChangeEvent
type TelOptState byte

const (
	// TelOptInactive indicates that the option is not currently active
	TelOptInactive TelOptState = iota
	// TelOptRequested indicates that this terminal has sent a request to activate the telopt to
	// the other party but has not yet heard back
	TelOptRequested
	// TelOptActive indicates that the option is active
	TelOptActive
)

func (s TelOptState) String() string {
	switch s {
	case TelOptInactive:
		return "Inactive"
	case TelOptRequested:
		return "Requested"
	case TelOptActive:
		return "Active"
	default:
		return "Unknown"
	}
}

// optionInfo is the negotiation state of one option on one side. It is created lazily
// the first time the option is referenced and lives for the connection.
type optionInfo struct {
	want    WantState
	request RequestState
	enabled bool
}

func (i *optionInfo) state() TelOptState {
	if i.enabled {
		return TelOptActive
	}
	if i.request == RequestSent {
		return TelOptRequested
	}
	return TelOptInactive
}

type optionKey struct {
	side TelOptSide
	code TelOptCode
}

func (t *Terminal) info(side TelOptSide, code TelOptCode) *optionInfo {
	key := optionKey{side: side, code: code}
	info, ok := t.states[key]
	if ok {
		return info
	}

	info = &optionInfo{}
	if option, hasOption := t.options[code]; hasOption {
		info.want = wantFromUsage(option.Usage(), side)
	}

	t.states[key] = info
	return info
}

func wantFromUsage(usage TelOptUsage, side TelOptSide) WantState {
	allow, request := TelOptAllowRemote, telOptOnlyRequestRemote
	if side == TelOptSideLocal {
		allow, request = TelOptAllowLocal, telOptOnlyRequestLocal
	}

	switch {
	case usage&request != 0:
		return WantWanted
	case usage&allow != 0:
		return WantAccepted
	default:
		return WantDisabled
	}
}

func (t *Terminal) initTelopts(options []TelnetOption) error {
	for _, option := range options {
		oldOption, hasOldOption := t.options[option.Code()]
		if hasOldOption {
			return fmt.Errorf("telopt collision: TelOpt %d is already registered to an option of type %T. it cannot be registered to an option of type %T", option.Code(), oldOption, option)
		}

		option.Initialize(t)
		t.options[option.Code()] = option
	}

	return nil
}

// TypedTelnetOption - this is used as a bit of a hack for GetTelOpt. It allows
// the generic semantic below to work
type TypedTelnetOption[OptionStruct any] interface {
	*OptionStruct
	TelnetOption
}

// GetTelOpt retrieves a live telopt from a terminal. It is used like this:
//
//	telnet.GetTelOpt[telopts.NAWS](terminal)
//
// The above will return a value of type *telopts.NAWS, or nil if no NAWS telopt is registered.
func GetTelOpt[OptionStruct any, T TypedTelnetOption[OptionStruct]](terminal *Terminal) T {
	for _, option := range terminal.options {
		if typed, ok := option.(T); ok {
			return typed
		}
	}

	return nil
}
