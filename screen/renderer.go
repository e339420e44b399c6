// Package screen draws into a small region of a remote terminal through its terminfo
// entry, and turns the bytes the terminal sends back into key codes.
package screen

import (
	"bytes"
	"strings"
	"time"

	"github.com/pkg/errors"

	"github.com/moodclient/teleconsole/eventloop"
	"github.com/moodclient/teleconsole/internal/fifo"
	"github.com/moodclient/teleconsole/keys"
	"github.com/moodclient/teleconsole/terminfo"
)

const (
	// DefaultKeyTimeout is how long an unfinished key sequence waits for more bytes
	DefaultKeyTimeout = 500 * time.Millisecond

	defaultWidth  = 80
	defaultHeight = 24
)

// ErrInsufficientTerminal is returned by Init when the terminal cannot be driven in
// full-screen mode: its entry is missing or unreadable, or it lacks the capabilities
// needed to clear a line and move the cursor sideways
var ErrInsufficientTerminal = errors.New("insufficient terminal")

// Transport is the connection the renderer draws into
type Transport interface {
	// Write sends bytes to the terminal. A "\n" is expected to arrive as CR LF.
	Write(b []byte)
	// TerminalType is the negotiated terminal name, "" if none was received
	TerminalType() string
	// Width and Height return the negotiated window size, or 0 when it is not known
	Width() int
	Height() int
}

// KeyHandler receives every key the renderer decodes
type KeyHandler interface {
	OnKey(code keys.KeyCode)
}

// Resizer is implemented by key handlers that want to know about window size changes
type Resizer interface {
	WindowSizeChanged()
}

// Config tunes a Renderer. The zero value searches the default terminfo path and uses
// DefaultKeyTimeout.
type Config struct {
	// SearchPath lists the terminfo directories to load the terminal entry from. Nil
	// means terminfo.DefaultSearchPath().
	SearchPath []string
	// KeyTimeout is how long to wait for the rest of a key sequence before the buffered
	// bytes are delivered as literal keys
	KeyTimeout time.Duration
}

// Renderer tracks the cursor inside a region that starts one line tall at the line the
// cursor was on when the region was reset, and grows downward as lines below it are used.
// All methods must be called from the goroutine that owns the clock.
type Renderer struct {
	transport Transport
	config    Config

	db      *terminfo.Database
	table   *keys.Table
	handler KeyHandler

	input    *fifo.Queue[byte]
	keyTimer eventloop.Timer

	column        int
	line          int
	displayHeight int
}

// NewRenderer creates a renderer drawing into transport. Init must succeed before any
// drawing method is used.
func NewRenderer(transport Transport, clock eventloop.Clock, config Config) *Renderer {
	if config.SearchPath == nil {
		config.SearchPath = terminfo.DefaultSearchPath()
	}
	if config.KeyTimeout <= 0 {
		config.KeyTimeout = DefaultKeyTimeout
	}

	r := &Renderer{
		transport:     transport,
		config:        config,
		input:         fifo.New[byte](16),
		displayHeight: 1,
	}
	r.keyTimer = clock.NewTimer(r.keyTimeout)

	return r
}

// Init loads the terminfo entry for the negotiated terminal type and switches the
// keypad into transmit mode. Errors wrap ErrInsufficientTerminal; a load failure is
// described in the message.
func (r *Renderer) Init() error {
	db, err := terminfo.Load(r.transport.TerminalType(), r.config.SearchPath)
	if err != nil {
		return errors.Wrapf(ErrInsufficientTerminal, "%v", err)
	}

	var missing []string
	if !db.HasString(terminfo.ClrEol) {
		missing = append(missing, terminfo.ClrEol.String())
	}
	if !db.HasString(terminfo.ParmRightCursor) && !db.HasString(terminfo.CursorRight) {
		missing = append(missing, terminfo.CursorRight.String())
	}
	if !db.HasString(terminfo.ParmLeftCursor) && !db.HasString(terminfo.CursorLeft) {
		missing = append(missing, terminfo.CursorLeft.String())
	}
	if len(missing) > 0 {
		return errors.Wrapf(ErrInsufficientTerminal, "%s lacks %s", db.Name(), strings.Join(missing, ", "))
	}

	r.db = db
	r.table = keys.NewTable(db)
	r.emit(terminfo.KeypadXmit)

	return nil
}

// Initialized reports whether Init has succeeded
func (r *Renderer) Initialized() bool {
	return r.db != nil
}

// Database returns the loaded terminfo entry, nil before Init
func (r *Renderer) Database() *terminfo.Database {
	return r.db
}

// SetKeyHandler sets the receiver of decoded keys
func (r *Renderer) SetKeyHandler(handler KeyHandler) {
	r.handler = handler
}

// Close restores the keypad mode changed by Init
func (r *Renderer) Close() {
	if r.db == nil {
		return
	}

	r.keyTimer.Disable()
	r.emit(terminfo.ExitAttributeMode)
	r.emit(terminfo.KeypadLocal)
}

// Width is the negotiated window width, the entry's cols, or 80
func (r *Renderer) Width() int {
	if w := r.transport.Width(); w > 0 {
		return w
	}
	if r.db != nil {
		if w := r.db.Number(terminfo.Columns); w > 0 {
			return w
		}
	}

	return defaultWidth
}

// Height is the negotiated window height, the entry's lines, or 24
func (r *Renderer) Height() int {
	if h := r.transport.Height(); h > 0 {
		return h
	}
	if r.db != nil {
		if h := r.db.Number(terminfo.Lines); h > 0 {
			return h
		}
	}

	return defaultHeight
}

func (r *Renderer) Column() int {
	return r.column
}

func (r *Renderer) Line() int {
	return r.line
}

// DisplayHeight is the number of lines the region currently spans
func (r *Renderer) DisplayHeight() int {
	return r.displayHeight
}

// CharReceived feeds one byte typed on the terminal into the key decoder
func (r *Renderer) CharReceived(b byte) {
	r.input.Queue(b)

	if r.table == nil {
		r.flushLiterals()
		return
	}

	r.keyTimer.Arm(r.config.KeyTimeout)
	r.processKeys()
}

// Receive feeds a run of bytes typed on the terminal into the key decoder
func (r *Renderer) Receive(data []byte) {
	for _, b := range data {
		r.CharReceived(b)
	}
}

func (r *Renderer) processKeys() {
	for r.input.Len() > 0 {
		code, length := r.table.Lookup(r.input.Buffer())
		if code == keys.Incomplete {
			return
		}

		r.input.DropElements(length)
		r.dispatch(code)
	}

	r.keyTimer.Disable()
}

// keyTimeout gives up on the buffered prefix and delivers it byte by byte
func (r *Renderer) keyTimeout() {
	r.flushLiterals()
}

func (r *Renderer) flushLiterals() {
	for r.input.Len() > 0 {
		r.dispatch(keys.KeyCode(r.input.Dequeue()))
	}
	r.keyTimer.Disable()
}

func (r *Renderer) dispatch(code keys.KeyCode) {
	if r.handler != nil {
		r.handler.OnKey(code)
	}
}

// WindowSizeChanged clamps the tracked cursor to the new size and tells the key handler
func (r *Renderer) WindowSizeChanged() {
	width, height := r.Width(), r.Height()

	r.column = min(r.column, width-1)
	r.line = min(r.line, height-1)
	r.displayHeight = max(1, min(r.displayHeight, height))

	if resizer, ok := r.handler.(Resizer); ok {
		resizer.WindowSizeChanged()
	}
}

func (r *Renderer) emit(id terminfo.StringCap, args ...int) bool {
	if r.db == nil || !r.db.HasString(id) {
		return false
	}

	out := r.db.Format(id, args...)
	r.transport.Write([]byte(out))
	if strings.IndexByte(out, '\n') >= 0 {
		r.column = 0
	}

	return true
}

// move runs a relative movement of n steps, using the parameterized capability when
// the entry has one
func (r *Renderer) move(parm, single terminfo.StringCap, n int) {
	if n <= 0 {
		return
	}

	if r.emit(parm, n) {
		return
	}

	for i := 0; i < n; i++ {
		r.emit(single)
	}
}

// ToColumn moves the cursor to column c of the current line
func (r *Renderer) ToColumn(c int) {
	c = max(0, min(c, r.Width()-1))

	switch {
	case c > r.column:
		r.move(terminfo.ParmRightCursor, terminfo.CursorRight, c-r.column)
	case c < r.column:
		r.move(terminfo.ParmLeftCursor, terminfo.CursorLeft, r.column-c)
	}

	r.column = c
}

// ToLine moves the cursor to line l of the region, growing the region when l is below
// its last line
func (r *Renderer) ToLine(l int) {
	l = max(0, min(l, r.Height()-1))

	last := min(l, r.displayHeight-1)

	switch {
	case last > r.line:
		if r.db != nil && r.db.HasString(terminfo.ParmDownCursor) {
			r.emit(terminfo.ParmDownCursor, last-r.line)
		} else {
			for i := r.line; i < last; i++ {
				r.emit(terminfo.CursorDown)
			}
		}
	case last < r.line:
		r.move(terminfo.ParmUpCursor, terminfo.CursorUp, r.line-last)
	}
	r.line = last

	for r.line < l {
		r.transport.Write([]byte("\n"))
		r.emit(terminfo.ClrEol)
		r.line++
		r.displayHeight++
		r.column = 0
	}
}

// Reset blanks every line of the region, bottom first, and collapses it back to its
// first line with the cursor at column 0
func (r *Renderer) Reset() {
	r.ToLine(r.displayHeight - 1)
	for {
		r.ToColumn(0)
		r.emit(terminfo.ClrEol)
		if r.line == 0 {
			break
		}
		r.ToLine(r.line - 1)
	}

	r.displayHeight = 1
}

// Put writes text at the cursor. The text must fit on the current line.
func (r *Renderer) Put(text []byte) {
	r.transport.Write(text)
	r.column = min(r.column+len(text), r.Width()-1)
}

// ClearEol clears from the cursor to the end of the line
func (r *Renderer) ClearEol() {
	r.emit(terminfo.ClrEol)
}

// Bold switches bold rendering on or off, when the terminal supports it
func (r *Renderer) Bold(on bool) {
	if on {
		r.emit(terminfo.EnterBoldMode)
	} else {
		r.emit(terminfo.ExitAttributeMode)
	}
}

// Bell rings the terminal bell
func (r *Renderer) Bell() {
	if !r.emit(terminfo.Bell) {
		r.transport.Write([]byte{0x07})
	}
}

// ClearScreen clears the whole terminal and starts a new region at its top line
func (r *Renderer) ClearScreen() {
	r.emit(terminfo.ClearScreen)
	r.column, r.line, r.displayHeight = 0, 0, 1
}

// Newline moves below the region and starts a new one there
func (r *Renderer) Newline() {
	r.ToLine(r.displayHeight - 1)
	r.transport.Write([]byte("\n"))
	r.column, r.line, r.displayHeight = 0, 0, 1
}

// Print writes text below the start of the region, which must have been Reset. A
// trailing newline is added when missing, and a new region starts after the text.
func (r *Renderer) Print(text []byte) {
	r.transport.Write(text)
	if !bytes.HasSuffix(text, []byte("\n")) {
		r.transport.Write([]byte("\n"))
	}
	r.column, r.line, r.displayHeight = 0, 0, 1
}
