package telnet

// decoderState is the position of the inbound decoder within telnet framing
type decoderState byte

const (
	stateNormal decoderState = iota
	stateIACSeen
	stateExpectOption
	stateCRSeen
	stateSBOption
	stateSBData
	stateSBIACSeen
)

// printer decodes the inbound byte stream. Application bytes are batched and
// delivered to the IncomingData hooks before any command is dispatched and at the end
// of each Receive call, so hooks always see data and commands in wire order.
type printer struct {
	state  decoderState
	verb   byte
	option TelOptCode
	sbData []byte
	text   []byte
}

// Receive decodes bytes read from the remote. Malformed framing never produces an
// error: stray bytes after IAC are passed through as data and decoding resumes.
func (t *Terminal) Receive(data []byte) {
	for _, b := range data {
		t.receiveByte(b)
	}

	t.flushText()
}

func (t *Terminal) emit(b byte) {
	t.printer.text = append(t.printer.text, b)
}

func (t *Terminal) flushText() {
	if len(t.printer.text) == 0 {
		return
	}

	text := t.printer.text
	t.printer.text = nil
	t.incomingDataHooks.Fire(t, text)
}

func (t *Terminal) receiveByte(b byte) {
	p := &t.printer

	switch p.state {
	case stateNormal:
		switch b {
		case '\r':
			p.state = stateCRSeen
		case IAC:
			p.state = stateIACSeen
		default:
			t.emit(b)
		}

	case stateCRSeen:
		p.state = stateNormal
		switch b {
		case 0:
			t.emit('\r')
		case '\n':
			t.emit('\n')
		default:
			t.emit('\r')
			t.receiveByte(b)
		}

	case stateIACSeen:
		p.state = stateNormal
		switch b {
		case SE:
			// Stray SE outside a subnegotiation
		case NOP, DM, BRK, IP, AO, AYT, EC, EL, GA:
			t.dispatchCommand(Command{OpCode: b})
		case SB:
			p.state = stateSBOption
		case WILL, WONT, DO, DONT:
			p.verb = b
			p.state = stateExpectOption
		case IAC:
			t.emit(IAC)
		default:
			t.emit(IAC)
			t.receiveByte(b)
		}

	case stateExpectOption:
		p.state = stateNormal
		t.dispatchCommand(Command{OpCode: p.verb, Option: TelOptCode(b)})

	case stateSBOption:
		p.option = TelOptCode(b)
		p.sbData = p.sbData[:0]
		p.state = stateSBData

	case stateSBData:
		if b == IAC {
			p.state = stateSBIACSeen
		} else {
			p.sbData = append(p.sbData, b)
		}

	case stateSBIACSeen:
		switch b {
		case IAC:
			p.sbData = append(p.sbData, IAC)
			p.state = stateSBData
		case SE:
			p.state = stateNormal
			data := append([]byte(nil), p.sbData...)
			t.dispatchCommand(Command{OpCode: SB, Option: p.option, Subnegotiation: data})
		default:
			// Unterminated subnegotiation: drop it and treat this as a fresh command
			p.state = stateIACSeen
			t.receiveByte(b)
		}
	}
}

func (t *Terminal) dispatchCommand(c Command) {
	t.flushText()
	t.incomingCommandHooks.Fire(t, c)

	switch {
	case c.OpCode == SB:
		t.processSubnegotiation(c)
	case c.isNegotiation():
		t.response(c.side(), c.Option, c.isActivateNegotiation())
	default:
		t.notificationHooks.Fire(t, c)
	}
}
