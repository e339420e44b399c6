package telnet

// Outbound data is quoted and queued in the terminal's output FIFO. Nothing is written
// to the connection here: the owner drains the queue with TakeOutput whenever
// OutputLen is non-zero and the connection is writable.

// Write queues application bytes for the remote. Carriage returns are sent as CR NUL,
// line feeds as CR LF and IAC bytes are doubled.
func (t *Terminal) Write(b []byte) {
	if len(b) == 0 {
		return
	}

	t.outboundDataHooks.Fire(t, b)

	for _, value := range b {
		switch value {
		case '\r':
			t.output.Queue('\r', 0)
		case '\n':
			t.output.Queue('\r', '\n')
		case IAC:
			t.output.Queue(IAC, IAC)
		default:
			t.output.Queue(value)
		}
	}
}

// WriteString queues a string of wire bytes, see Write
func (t *Terminal) WriteString(s string) {
	t.Write([]byte(s))
}

// WriteText encodes UTF-8 text into the wire character set and queues it
func (t *Terminal) WriteText(text string) error {
	b, err := t.charset.Encode(text)
	if err != nil {
		return err
	}

	t.Write(b)
	return nil
}

// WriteCommand queues a command. Subnegotiation data is escaped as needed.
func (t *Terminal) WriteCommand(c Command) {
	t.outboundCommandHooks.Fire(t, c)
	t.output.Queue(c.Bytes()...)
}

// OutputLen returns the number of bytes waiting to be sent
func (t *Terminal) OutputLen() int {
	return t.output.Len()
}

// TakeOutput removes and returns every byte waiting to be sent
func (t *Terminal) TakeOutput() []byte {
	return t.output.Take()
}
