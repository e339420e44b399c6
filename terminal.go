package telnet

import (
	"time"

	"github.com/moodclient/teleconsole/eventloop"
	"github.com/moodclient/teleconsole/internal/fifo"
)

// Terminal is the telnet protocol engine for one connection. Telnet's base protocol
// doesn't distinguish between client and server, so the terminal only knows about
// the local and remote sides of each option.
//
// The terminal does no I/O of its own. Bytes read from the connection are handed to
// Receive; decoded application bytes are delivered to the IncomingData hooks, and
// commands drive option negotiation. Everything the terminal wants to send, whether
// quoted application data or commands, accumulates in an unbounded output queue that the
// owner drains with TakeOutput.
//
// A Terminal is not safe for concurrent use. All methods, hooks and the setup timer
// callback are expected to run on the goroutine of the eventloop.Clock passed to
// NewTerminal. Hooks are called synchronously, so blocking calls made in hook methods
// will block functioning of the terminal altogether.
//
// Negotiation proceeds like this: Start sends a request for every telopt registered with
// TelOptRequestLocal or TelOptRequestRemote, and arms the setup timer. Each request, and
// each reply a telopt waits for (such as the terminal type), counts as pending. When the
// pending count reaches zero, or the timer expires first, the SetupComplete hooks fire
// exactly once. Options that were never answered stay disabled.
type Terminal struct {
	charset *Charset
	options map[TelOptCode]TelnetOption
	states  map[optionKey]*optionInfo
	printer printer
	output  *fifo.Queue[byte]

	setupTimeout eventloop.Timer
	setupPeriod  time.Duration
	pending      int
	started      bool
	setupDone    bool

	encounteredErrorHooks *EventPublisher[error]
	incomingDataHooks     *EventPublisher[[]byte]
	incomingCommandHooks  *EventPublisher[Command]
	notificationHooks     *EventPublisher[Command]
	outboundDataHooks     *EventPublisher[[]byte]
	outboundCommandHooks  *EventPublisher[Command]
	telOptEventHooks      *EventPublisher[TelOptEvent]
	setupCompleteHooks    *EventPublisher[SetupCompleteEvent]
}

// NewTerminal creates a terminal whose setup timer is created from clock. No bytes are
// queued until Start is called.
//
// All functioning of this terminal is determined by the properties passed in the TerminalConfig
// object.  See that type for more information.
func NewTerminal(clock eventloop.Clock, config TerminalConfig) (*Terminal, error) {
	charset, err := NewCharset(config.CharsetName)
	if err != nil {
		return nil, err
	}

	terminal := &Terminal{
		charset: charset,
		options: make(map[TelOptCode]TelnetOption),
		states:  make(map[optionKey]*optionInfo),
		output:  fifo.New[byte](256),

		encounteredErrorHooks: NewPublisher(config.EventHooks.EncounteredError),
		incomingDataHooks:     NewPublisher(config.EventHooks.IncomingData),
		incomingCommandHooks:  NewPublisher(config.EventHooks.IncomingCommand),
		notificationHooks:     NewPublisher(config.EventHooks.Notification),
		outboundDataHooks:     NewPublisher(config.EventHooks.OutboundData),
		outboundCommandHooks:  NewPublisher(config.EventHooks.OutboundCommand),
		telOptEventHooks:      NewPublisher(config.EventHooks.TelOptEvent),
		setupCompleteHooks:    NewPublisher(config.EventHooks.SetupComplete),
	}

	terminal.setupPeriod = config.SetupTimeout
	if terminal.setupPeriod <= 0 {
		terminal.setupPeriod = DefaultSetupTimeout
	}
	terminal.setupTimeout = clock.NewTimer(terminal.setupExpired)

	err = terminal.initTelopts(config.TelOpts)
	if err != nil {
		return nil, err
	}

	return terminal, nil
}

// Start kicks off negotiation by writing requests for the telopts registered to be
// requested. Setup may complete before Start returns when there is nothing to request.
func (t *Terminal) Start() {
	if t.started {
		return
	}
	t.started = true

	t.armSetupTimer()

	for _, option := range t.options {
		usage := option.Usage()
		if usage&telOptOnlyRequestLocal != 0 {
			t.Request(TelOptSideLocal, option.Code(), true)
		}

		if usage&telOptOnlyRequestRemote != 0 {
			t.Request(TelOptSideRemote, option.Code(), true)
		}
	}

	t.checkSetup()
}

// Charset returns the character set used by WriteText and DecodeText
func (t *Terminal) Charset() *Charset {
	return t.charset
}

// DecodeText converts received application bytes to a UTF-8 string using the terminal's
// character set
func (t *Terminal) DecodeText(data []byte) (string, error) {
	return t.charset.Decode(data)
}

// IsEnabled reports whether an option is currently active on a side of the connection
func (t *Terminal) IsEnabled(side TelOptSide, code TelOptCode) bool {
	info, ok := t.states[optionKey{side: side, code: code}]
	return ok && info.enabled
}

// OptionState returns the coarse state of an option on a side of the connection
func (t *Terminal) OptionState(side TelOptSide, code TelOptCode) TelOptState {
	info, ok := t.states[optionKey{side: side, code: code}]
	if !ok {
		return TelOptInactive
	}

	return info.state()
}

// Request asks to enable or disable an option on one side of the connection. Our
// policy for the option follows the request. A command is only sent when the option
// is not already in the requested state; in that case the request counts as pending
// until the remote answers or setup times out.
func (t *Terminal) Request(side TelOptSide, code TelOptCode, enable bool) {
	info := t.info(side, code)
	if enable {
		info.want = WantWanted
	} else {
		info.want = WantDisabled
	}

	if info.enabled == enable {
		return
	}

	oldState := info.state()
	info.request = RequestSent
	t.WriteCommand(negotiationCommand(side, code, enable))
	t.stateChanged(side, code, oldState, info.state())
	t.IncrementPending()
}

// response applies a negotiation command received from the remote
func (t *Terminal) response(side TelOptSide, code TelOptCode, enable bool) {
	info := t.info(side, code)
	oldState := info.state()

	if info.request == RequestSent {
		// The answer to our own request: accept whatever the remote decided
		wasEnabled := info.enabled
		info.request = RequestAcknowledged
		info.enabled = enable
		t.stateChanged(side, code, oldState, info.state())

		t.pending--
		if t.pending < 0 {
			t.pending = 0
		}

		t.notifyOption(side, code, wasEnabled, enable)
		t.checkSetup()
		return
	}

	if enable && info.want == WantDisabled {
		t.WriteCommand(negotiationCommand(side, code, false))
		return
	}

	if info.enabled == enable {
		return
	}

	info.enabled = enable
	t.WriteCommand(negotiationCommand(side, code, enable))
	t.stateChanged(side, code, oldState, info.state())
	t.notifyOption(side, code, !enable, enable)
}

func (t *Terminal) notifyOption(side TelOptSide, code TelOptCode, wasEnabled, enabled bool) {
	option, hasOption := t.options[code]
	if !hasOption || wasEnabled == enabled {
		return
	}

	if enabled {
		option.OnEnabled(side)
	} else {
		option.OnDisabled(side)
	}
}

func (t *Terminal) stateChanged(side TelOptSide, code TelOptCode, oldState, newState TelOptState) {
	option, hasOption := t.options[code]
	if !hasOption || oldState == newState {
		return
	}

	t.RaiseTelOptEvent(TelOptStateChangeEvent{
		TelnetOption: option,
		Side:         side,
		OldState:     oldState,
		NewState:     newState,
	})
}

func (t *Terminal) processSubnegotiation(c Command) {
	option, hasOption := t.options[c.Option]
	if !hasOption {
		// Getting subnegotiations for stuff we haven't agreed to
		return
	}

	if !t.IsEnabled(TelOptSideLocal, c.Option) && !t.IsEnabled(TelOptSideRemote, c.Option) {
		return
	}

	if err := option.Subnegotiate(c.Subnegotiation); err != nil {
		t.encounteredError(err)
	}
}

// IncrementPending is called by telopts that expect a reply from the remote before
// setup can be considered complete
func (t *Terminal) IncrementPending() {
	t.pending++

	if t.started && !t.setupDone {
		t.armSetupTimer()
	}
}

// DecrementPending is called by telopts when an expected reply arrives. Setup completes
// when the count reaches zero.
func (t *Terminal) DecrementPending() {
	t.pending--
	if t.pending < 0 {
		t.pending = 0
	}

	t.checkSetup()
}

// Pending returns the number of negotiations still waiting for an answer
func (t *Terminal) Pending() int {
	return t.pending
}

// SetupComplete reports whether the startup negotiation has finished
func (t *Terminal) SetupComplete() bool {
	return t.setupDone
}

func (t *Terminal) armSetupTimer() {
	t.setupTimeout.Arm(t.setupPeriod)
}

func (t *Terminal) checkSetup() {
	if !t.started || t.setupDone || t.pending > 0 {
		return
	}

	t.completeSetup(false)
}

func (t *Terminal) setupExpired() {
	if t.setupDone {
		return
	}

	// Unanswered requests are abandoned and the options stay disabled
	for key, info := range t.states {
		if info.request != RequestSent {
			continue
		}

		oldState := info.state()
		info.request = RequestNone
		t.stateChanged(key.side, key.code, oldState, info.state())
	}

	t.pending = 0
	t.completeSetup(true)
}

func (t *Terminal) completeSetup(timedOut bool) {
	t.setupDone = true
	t.setupTimeout.Disable()
	t.setupCompleteHooks.Fire(t, SetupCompleteEvent{TimedOut: timedOut})
}

func (t *Terminal) encounteredError(err error) {
	t.encounteredErrorHooks.Fire(t, err)
}

// RaiseTelOptEvent is called by telopt implementations to inject an event
// into the terminal event stream. Telopts can use this method to fire arbitrary events
// that can be interpreted by the consumer, such as NAWS alerting the consumer
// that the remote window size changed.
func (t *Terminal) RaiseTelOptEvent(event TelOptEvent) {
	t.telOptEventHooks.Fire(t, event)
}

// RegisterEncounteredErrorHook will register an event to be called when an error
// was encountered by the terminal or one of its telopts. Errors from telopt
// subnegotiations are delivered here rather than ending the connection.
func (t *Terminal) RegisterEncounteredErrorHook(encounteredError ErrorHandler) {
	t.encounteredErrorHooks.Register(EventHook[error](encounteredError))
}

// RegisterIncomingDataHook will register an event to be called with application bytes
// decoded from the remote's stream
func (t *Terminal) RegisterIncomingDataHook(incomingData DataHandler) {
	t.incomingDataHooks.Register(EventHook[[]byte](incomingData))
}

// RegisterIncomingCommandHook will register an event to be called for every command
// received from the remote. This is primarily useful for debug logging.
func (t *Terminal) RegisterIncomingCommandHook(incomingCommand CommandHandler) {
	t.incomingCommandHooks.Register(EventHook[Command](incomingCommand))
}

// RegisterNotificationHook will register an event to be called when the remote sends a
// command that carries no option, such as IAC IP or IAC AYT
func (t *Terminal) RegisterNotificationHook(notification CommandHandler) {
	t.notificationHooks.Register(EventHook[Command](notification))
}

// RegisterOutboundDataHook will register an event to be called when application bytes
// are queued for the remote. This is primarily useful for debug logging.
func (t *Terminal) RegisterOutboundDataHook(outboundData DataHandler) {
	t.outboundDataHooks.Register(EventHook[[]byte](outboundData))
}

// RegisterOutboundCommandHook will register an event to be called when a command
// has been queued for the remote. This is primarily useful for debug logging.
func (t *Terminal) RegisterOutboundCommandHook(outboundCommand CommandHandler) {
	t.outboundCommandHooks.Register(EventHook[Command](outboundCommand))
}

// RegisterTelOptEventHook will register an event to be called when a telopt delivers
// an event via RaiseTelOptEvent, or when a telopt's state changes.
func (t *Terminal) RegisterTelOptEventHook(telOptEvent TelOptEventHandler) {
	t.telOptEventHooks.Register(EventHook[TelOptEvent](telOptEvent))
}

// RegisterSetupCompleteHook will register an event to be called once startup negotiation
// is over. Hooks registered after setup completed are never called.
func (t *Terminal) RegisterSetupCompleteHook(setupComplete SetupCompleteHandler) {
	t.setupCompleteHooks.Register(EventHook[SetupCompleteEvent](setupComplete))
}
