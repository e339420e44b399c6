package lineedit

import (
	"bytes"
	"strings"
)

const tooManyCompletions = "(too many completions)"

// Complete asks completer for candidates replacing the text before the point. The common
// prefix of the candidates is inserted when that changes the text; otherwise several
// candidates are listed below the edit line.
func (e *Editor) Complete(completer Completer) {
	candidates := completer(e.text[:e.point])
	if len(candidates) == 0 {
		e.screen.Bell()
		return
	}

	prefix := commonPrefix(candidates)
	if !bytes.Equal([]byte(prefix), e.text[:e.point]) {
		text := make([]byte, 0, len(prefix)+len(e.text)-e.point)
		text = append(text, prefix...)
		text = append(text, e.text[e.point:]...)
		e.Set(text, len(prefix))
		return
	}

	if len(candidates) == 1 {
		return
	}

	e.listCompletions(candidates)
}

func commonPrefix(candidates []string) string {
	prefix := candidates[0]
	for _, c := range candidates[1:] {
		n := 0
		for n < len(prefix) && n < len(c) && prefix[n] == c[n] {
			n++
		}
		prefix = prefix[:n]
	}

	return prefix
}

// listCompletions lays the candidates out in columns, filled top to bottom
func (e *Editor) listCompletions(candidates []string) {
	clear(e.aux)

	longest := 0
	for _, c := range candidates {
		longest = max(longest, len(c))
	}

	columnWidth := longest + 2
	columns := max(1, (e.screen.Width()-1)/columnWidth)
	rows := (len(candidates) + columns - 1) / columns

	if rows > e.maxAuxDisplayHeight() {
		e.SetAux(1, []byte(tooManyCompletions))
		return
	}

	for row := 0; row < rows; row++ {
		var line strings.Builder
		for column := 0; column < columns; column++ {
			i := column*rows + row
			if i >= len(candidates) {
				break
			}

			if line.Len() > 0 {
				line.WriteString(strings.Repeat(" ", column*columnWidth-line.Len()))
			}
			line.WriteString(candidates[i])
		}

		e.aux[row+1] = []byte(line.String())
	}

	e.dirty = true
	e.refresh()
}
