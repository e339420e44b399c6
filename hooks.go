package telnet

import (
	"fmt"
	"sync"
)

// EventHook is a type for function pointers that are registered to receive events
type EventHook[T any] func(terminal *Terminal, data T)

// EventPublisher is a type used to register and fire arbitrary events
type EventPublisher[U any] struct {
	lock sync.Mutex

	registeredHooks []EventHook[U]
}

// NewPublisher creates a new EventPublisher for a particular EventHook. A slice of
// hooks can be passed in- in which case the hooks will be registered to receive events
// from the publisher.  Otherwise, nil can be passed in.
func NewPublisher[U any, T ~func(terminal *Terminal, data U)](hooks []T) *EventPublisher[U] {
	var convertedHooks []EventHook[U]

	for _, hook := range hooks {
		convertedHooks = append(convertedHooks, EventHook[U](hook))
	}

	return &EventPublisher[U]{
		registeredHooks: convertedHooks,
	}
}

// Register registers a single EventHook to receive events from this publisher.
func (e *EventPublisher[U]) Register(hook EventHook[U]) {
	e.lock.Lock()
	defer e.lock.Unlock()

	e.registeredHooks = append(e.registeredHooks, hook)
}

// Fire calls the event for all EventHook instances registered to this publisher with
// the provided parameters. Hooks registered while the event is being fired will not
// receive it.
func (e *EventPublisher[U]) Fire(terminal *Terminal, eventData U) {
	e.lock.Lock()
	hooks := append([]EventHook[U](nil), e.registeredHooks...)
	e.lock.Unlock()

	for _, hook := range hooks {
		hook(terminal, eventData)
	}
}

// TelOptEvent is an event raised by a telopt with Terminal.RaiseTelOptEvent
type TelOptEvent interface {
	Option() TelnetOption
	String() string
}

// TelOptStateChangeEvent is raised by the terminal whenever the state of a registered
// telopt changes on either side of the connection
type TelOptStateChangeEvent struct {
	TelnetOption TelnetOption
	Side         TelOptSide
	OldState     TelOptState
	NewState     TelOptState
}

func (e TelOptStateChangeEvent) Option() TelnetOption {
	return e.TelnetOption
}

func (e TelOptStateChangeEvent) String() string {
	return fmt.Sprintf("%s %s: %s -> %s", e.TelnetOption, e.Side, e.OldState, e.NewState)
}

// SetupCompleteEvent is delivered once per terminal, when every negotiation started
// during startup has been answered or the setup timeout expired
type SetupCompleteEvent struct {
	// TimedOut is true when some negotiations were still unanswered at the deadline.
	// Those options stay disabled.
	TimedOut bool
}

// ErrorHandler is an event hook type that receives errors
type ErrorHandler func(t *Terminal, err error)

// DataHandler is an event hook type that receives application bytes, with all telnet
// framing removed
type DataHandler func(t *Terminal, data []byte)

// CommandHandler is an event hook type that receives commands
type CommandHandler func(t *Terminal, c Command)

// TelOptEventHandler is an event hook type that receives arbitrary events raised by telopts
// with Terminal.RaiseTelOptEvent
type TelOptEventHandler func(t *Terminal, event TelOptEvent)

// SetupCompleteHandler is an event hook type that is called once option setup is finished
type SetupCompleteHandler func(t *Terminal, event SetupCompleteEvent)

// EventHooks is used to pass in a set of pre-registered event hooks to a Terminal
// when calling NewTerminal.  See TerminalConfig for more info.
type EventHooks struct {
	EncounteredError []ErrorHandler
	IncomingData     []DataHandler
	IncomingCommand  []CommandHandler
	// Notification receives the commands that carry no option: NOP, DM, BRK, IP, AO, AYT,
	// EC, EL and GA
	Notification    []CommandHandler
	OutboundData    []DataHandler
	OutboundCommand []CommandHandler

	TelOptEvent   []TelOptEventHandler
	SetupComplete []SetupCompleteHandler
}
