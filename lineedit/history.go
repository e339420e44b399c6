package lineedit

import "bytes"

// History returns the remembered lines, oldest first
func (e *Editor) History() []string {
	lines := make([]string, len(e.history))
	for i, line := range e.history {
		lines[i] = string(line)
	}

	return lines
}

// push remembers line unless it is empty or repeats the entry at the history cursor or
// the newest entry
func (e *Editor) push(line []byte) {
	if len(line) == 0 {
		return
	}
	if e.historyCursor < len(e.history) && bytes.Equal(e.history[e.historyCursor], line) {
		return
	}
	if n := len(e.history); n > 0 && bytes.Equal(e.history[n-1], line) {
		return
	}

	e.history = append(e.history, append([]byte(nil), line...))
	if len(e.history) > e.config.HistorySize {
		e.history = e.history[1:]
		e.historyCursor = max(0, e.historyCursor-1)
	}
}

// PrevHistory saves the line being edited and recalls the entry before the cursor
func (e *Editor) PrevHistory() {
	e.push(e.text)
	if e.historyCursor == 0 {
		return
	}

	e.historyCursor--
	e.recall()
}

// NextHistory saves the line being edited and recalls the entry after the cursor. Moving
// past the newest entry leaves an empty line.
func (e *Editor) NextHistory() {
	e.push(e.text)
	if e.historyCursor >= len(e.history) {
		return
	}

	e.historyCursor++
	e.recall()
}

func (e *Editor) recall() {
	var line []byte
	if e.historyCursor < len(e.history) {
		line = e.history[e.historyCursor]
	}

	e.Set(line, len(line))
}
