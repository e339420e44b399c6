package lineedit

import (
	"github.com/moodclient/teleconsole/keys"
)

var defaultBindings = map[keys.KeyCode]Action{
	keys.KeyLeft:      (*Editor).Backward,
	keys.Ctrl('B'):    (*Editor).Backward,
	keys.KeyRight:     (*Editor).Forward,
	keys.Ctrl('F'):    (*Editor).Forward,
	keys.KeyHome:      (*Editor).BeginningOfLine,
	keys.Ctrl('A'):    (*Editor).BeginningOfLine,
	keys.KeyEnd:       (*Editor).EndOfLine,
	keys.Ctrl('E'):    (*Editor).EndOfLine,
	keys.KeyUp:        (*Editor).PrevHistory,
	keys.Ctrl('P'):    (*Editor).PrevHistory,
	keys.KeyDown:      (*Editor).NextHistory,
	keys.Ctrl('N'):    (*Editor).NextHistory,
	keys.KeyBackspace: (*Editor).DeleteBackward,
	keys.Ctrl('H'):    (*Editor).DeleteBackward,
	0x7f:              (*Editor).DeleteBackward,
	keys.KeyDelete:    (*Editor).DeleteForward,
	keys.Ctrl('D'):    (*Editor).DeleteOrEOF,
	keys.Ctrl('K'):    (*Editor).KillToEnd,
	keys.Ctrl('U'):    (*Editor).KillToStart,
	keys.Ctrl('W'):    (*Editor).KillWord,
	keys.Ctrl('C'):    (*Editor).Restart,
	keys.Ctrl('L'):    (*Editor).Redisplay,
	keys.Ctrl('I'):    (*Editor).CompleteWithConfig,
	keys.Ctrl('M'):    (*Editor).Accept,
	keys.Ctrl('J'):    (*Editor).Accept,
	keys.KeyEnter:     (*Editor).Accept,
}

// Insert adds b at the point
func (e *Editor) Insert(b byte) {
	e.text = append(e.text, 0)
	copy(e.text[e.point+1:], e.text[e.point:])
	e.text[e.point] = b
	e.point++

	e.scroll()
	e.dirty = true
	e.refresh()
}

func (e *Editor) Backward() {
	if e.point > 0 {
		e.point--
		e.moved()
	}
	e.refresh()
}

func (e *Editor) Forward() {
	if e.point < len(e.text) {
		e.point++
		e.moved()
	}
	e.refresh()
}

func (e *Editor) BeginningOfLine() {
	e.point = 0
	e.moved()
	e.refresh()
}

func (e *Editor) EndOfLine() {
	e.point = len(e.text)
	e.moved()
	e.refresh()
}

// DeleteBackward removes the byte before the point
func (e *Editor) DeleteBackward() {
	if e.point == 0 {
		return
	}

	e.point--
	e.text = append(e.text[:e.point], e.text[e.point+1:]...)
	e.scroll()
	e.dirty = true
	e.refresh()
}

// DeleteForward removes the byte under the point
func (e *Editor) DeleteForward() {
	if e.point >= len(e.text) {
		return
	}

	e.text = append(e.text[:e.point], e.text[e.point+1:]...)
	e.scroll()
	e.dirty = true
	e.refresh()
}

// DeleteOrEOF deletes forward, or calls the EOF callback when the line is empty
func (e *Editor) DeleteOrEOF() {
	if len(e.text) > 0 {
		e.DeleteForward()
		return
	}

	if e.config.EOF != nil {
		e.config.EOF(e)
	}
}

func (e *Editor) KillToEnd() {
	e.text = e.text[:e.point]
	e.scroll()
	e.dirty = true
	e.refresh()
}

func (e *Editor) KillToStart() {
	e.text = append(e.text[:0], e.text[e.point:]...)
	e.point = 0
	e.scroll()
	e.dirty = true
	e.refresh()
}

// KillWord removes the word before the point along with the spaces after it
func (e *Editor) KillWord() {
	start := e.point
	for start > 0 && e.text[start-1] == ' ' {
		start--
	}
	for start > 0 && e.text[start-1] != ' ' {
		start--
	}

	e.text = append(e.text[:start], e.text[e.point:]...)
	e.point = start
	e.scroll()
	e.dirty = true
	e.refresh()
}

// Restart abandons the line being edited
func (e *Editor) Restart() {
	e.Clear()
}

// Redisplay clears the terminal and draws the editor at its top
func (e *Editor) Redisplay() {
	e.screen.ClearScreen()
	e.dirty = true
	e.refresh()
}

// CompleteWithConfig completes using Config.Completer, ringing the bell without one
func (e *Editor) CompleteWithConfig() {
	if e.config.Completer == nil {
		e.screen.Bell()
		return
	}

	e.Complete(e.config.Completer)
}
