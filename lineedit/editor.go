// Package lineedit implements a single-line editor with history and completion that
// draws through a screen.Renderer.
package lineedit

import (
	"github.com/moodclient/teleconsole/keys"
)

// DefaultHistorySize is the number of accepted lines kept when Config.HistorySize is 0
const DefaultHistorySize = 100

// Screen is the drawing surface the editor needs. *screen.Renderer implements it.
type Screen interface {
	Width() int
	Height() int
	DisplayHeight() int
	ToColumn(column int)
	ToLine(line int)
	Reset()
	Put(text []byte)
	ClearEol()
	Bold(on bool)
	Bell()
	ClearScreen()
	Newline()
	Print(text []byte)
}

// Action is a function bound to a key
type Action func(e *Editor)

// Completer returns the candidate replacements for prefix, the text before the point
type Completer func(prefix []byte) []string

// Config tunes an Editor. Every field is optional.
type Config struct {
	// HistorySize caps the number of remembered lines, DefaultHistorySize when 0
	HistorySize int
	// Accept is called with each line the user enters
	Accept func(e *Editor, line []byte)
	// Completer supplies candidates for the Tab key
	Completer Completer
	// EOF is called when Ctrl-D is pressed on an empty line
	EOF func(e *Editor)
}

// Editor holds the text being edited and draws it on the first line of the screen's
// region as the prompt, a one column gutter, a window onto the text and a one column
// overflow marker. Lines below the first show auxiliary text such as completion lists.
type Editor struct {
	screen Screen
	config Config

	prompt      []byte
	promptWidth int
	editWidth   int

	text       []byte
	point      int
	displayPos int

	enabled     bool
	dirty       bool
	dispatching bool

	history       [][]byte
	historyCursor int

	aux      map[int][]byte
	bindings map[keys.KeyCode]Action
	lastKey  keys.KeyCode
}

// New creates a hidden editor with the default key bindings
func New(screen Screen, config Config) *Editor {
	if config.HistorySize <= 0 {
		config.HistorySize = DefaultHistorySize
	}

	e := &Editor{
		screen:   screen,
		config:   config,
		aux:      map[int][]byte{},
		bindings: map[keys.KeyCode]Action{},
	}

	for code, action := range defaultBindings {
		e.bindings[code] = action
	}
	e.Prompt("")

	return e
}

// Prompt replaces the prompt. A prompt too wide for the screen loses its leftmost
// characters.
func (e *Editor) Prompt(prompt string) {
	width := e.screen.Width()

	p := []byte(prompt)
	if limit := max(0, width-4); len(p) > limit {
		p = p[len(p)-limit:]
	}

	e.prompt = p
	e.promptWidth = len(p)
	e.editWidth = max(1, width-e.promptWidth-3)

	e.scroll()
	e.dirty = true
	e.refresh()
}

// Set replaces the text and moves the point to pos, clamped to the text
func (e *Editor) Set(text []byte, pos int) {
	e.text = append(e.text[:0], text...)
	e.point = max(0, min(pos, len(e.text)))

	e.scroll()
	e.dirty = true
	e.refresh()
}

// Text returns a copy of the text being edited
func (e *Editor) Text() []byte {
	return append([]byte(nil), e.text...)
}

// Point returns the offset of the cursor in the text
func (e *Editor) Point() int {
	return e.point
}

// DisplayPos returns the offset of the first text byte shown on screen
func (e *Editor) DisplayPos() int {
	return e.displayPos
}

func (e *Editor) EditWidth() int {
	return e.editWidth
}

func (e *Editor) PromptWidth() int {
	return e.promptWidth
}

// Enabled reports whether the editor is shown and accepting keys
func (e *Editor) Enabled() bool {
	return e.enabled
}

// LastKey returns the key currently or most recently dispatched
func (e *Editor) LastKey() keys.KeyCode {
	return e.lastKey
}

// Show draws the editor, including any auxiliary lines, and starts accepting keys
func (e *Editor) Show() {
	e.enabled = true
	e.dirty = true
	e.refresh()
}

// Hide erases the editor from the screen and stops accepting keys
func (e *Editor) Hide() {
	if !e.enabled {
		return
	}

	e.screen.Reset()
	e.enabled = false
}

// Clear empties the text and returns the history cursor to the end of the history
func (e *Editor) Clear() {
	e.text = e.text[:0]
	e.point = 0
	e.displayPos = 0
	e.historyCursor = len(e.history)

	e.dirty = true
	e.refresh()
}

// Accept finishes the current line: it is left on screen, remembered in the history and
// passed to the Accept callback, and the editor is hidden and cleared. The callback
// usually calls Show once it is done with the line.
func (e *Editor) Accept() {
	line := e.Text()

	if e.enabled {
		e.displayPos = 0
		e.dirty = true
		e.draw()
		e.screen.Newline()
		e.enabled = false
	}

	e.push(line)
	if e.config.Accept != nil {
		e.config.Accept(e, line)
	}

	e.Clear()
}

// Print writes text above the editor, which is redrawn below it if it was shown
func (e *Editor) Print(text []byte) {
	shown := e.enabled

	e.Hide()
	e.screen.Print(text)

	if shown {
		e.Show()
	}
}

// SetAux sets auxiliary display line n, counted from 1 below the edit line. An empty
// text removes the line. Text wider than the screen is shown cut short.
func (e *Editor) SetAux(n int, text []byte) {
	if n < 1 || n > e.maxAuxDisplayHeight() {
		return
	}

	if len(text) == 0 {
		delete(e.aux, n)
	} else {
		e.aux[n] = append([]byte(nil), text...)
	}

	e.dirty = true
	e.refresh()
}

// ClearAux removes every auxiliary line
func (e *Editor) ClearAux() {
	if len(e.aux) == 0 {
		return
	}

	clear(e.aux)
	e.dirty = true
	e.refresh()
}

func (e *Editor) maxAuxDisplayHeight() int {
	return max(1, e.screen.Height()-2)
}

// DefineKey binds action to code, replacing any earlier binding
func (e *Editor) DefineKey(code keys.KeyCode, action Action) {
	e.bindings[code] = action
}

// UnsetKey removes the binding for code
func (e *Editor) UnsetKey(code keys.KeyCode) {
	delete(e.bindings, code)
}

// OnKey handles one decoded key. Unbound codes from 0x20 to 0xFF are inserted as text.
func (e *Editor) OnKey(code keys.KeyCode) {
	if !e.enabled {
		return
	}

	if len(e.aux) > 0 || e.screen.DisplayHeight() > 1 {
		clear(e.aux)
		e.screen.Reset()
		e.dirty = true
	}

	e.lastKey = code
	e.dispatching = true
	if action, ok := e.bindings[code]; ok {
		action(e)
	} else if code >= 0x20 && code < 0x100 {
		e.Insert(byte(code))
	}
	e.dispatching = false

	e.refresh()
}

// WindowSizeChanged lays the editor out again for the new screen width
func (e *Editor) WindowSizeChanged() {
	for n := range e.aux {
		if n > e.maxAuxDisplayHeight() {
			delete(e.aux, n)
		}
	}

	e.Prompt(string(e.prompt))
}

// scroll moves the edit window so it contains the point and wastes no columns at the end
func (e *Editor) scroll() {
	if e.displayPos > len(e.text)-e.editWidth {
		e.displayPos = max(0, len(e.text)-e.editWidth)
	}
	if e.point < e.displayPos {
		e.displayPos = e.point
	}
	if e.point > e.displayPos+e.editWidth {
		e.displayPos = e.point - e.editWidth
	}
}

// moved rescrolls after a point change, redrawing only when the window moved
func (e *Editor) moved() {
	displayPos := e.displayPos
	e.scroll()
	if e.displayPos != displayPos {
		e.dirty = true
	}
}

func (e *Editor) cursorColumn() int {
	return e.promptWidth + 1 + e.point - e.displayPos
}

func (e *Editor) refresh() {
	if !e.enabled || e.dispatching {
		return
	}

	if e.dirty {
		e.draw()
		return
	}

	e.screen.ToLine(0)
	e.screen.ToColumn(e.cursorColumn())
}

func (e *Editor) draw() {
	s := e.screen

	s.ToLine(0)
	s.ToColumn(0)

	s.Bold(true)
	s.Put(e.prompt)
	s.Bold(false)

	if e.displayPos > 0 {
		s.Put([]byte{'<'})
	} else {
		s.Put([]byte{' '})
	}

	end := min(len(e.text), e.displayPos+e.editWidth)
	s.Put(e.text[e.displayPos:end])
	if end < len(e.text) {
		s.Put([]byte{'>'})
	}
	s.ClearEol()

	for n := 1; n <= e.maxAuxDisplayHeight(); n++ {
		line, ok := e.aux[n]
		if !ok {
			continue
		}

		// Aux lines are cut short so the terminal never wraps them
		if limit := max(0, s.Width()-1); len(line) > limit {
			line = line[:limit]
		}

		s.ToLine(n)
		s.ToColumn(0)
		s.Put(line)
		s.ClearEol()
	}

	s.ToLine(0)
	s.ToColumn(e.cursorColumn())
	e.dirty = false
}
