// Package keys turns the escape sequences a terminal sends for its special keys into key
// codes, using the key capabilities of the terminal's terminfo entry.
package keys

import (
	"strconv"
)

// KeyCode identifies a decoded key. Values 0-255 are literal bytes, values from 0x100 up
// are symbolic keys.
type KeyCode int

// Incomplete is returned by Table.Lookup when the buffer is a prefix of a known sequence
const Incomplete KeyCode = -1

const (
	KeyUp KeyCode = 0x100 + iota
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyInsert
	KeyDelete
	KeyPageUp
	KeyPageDown
	KeyBackspace
	KeyBackTab
	KeyEnter
	KeyBegin
	KeyUpperLeft
	KeyUpperRight
	KeyCenter
	KeyLowerLeft
	KeyLowerRight
)

// KeyF0 is function key 0. Function key n is KeyF0+n, see KeyF.
const KeyF0 KeyCode = 0x180

const maxFunctionKey = 63

// KeyF returns the code of function key n
func KeyF(n int) KeyCode {
	return KeyF0 + KeyCode(n)
}

// Ctrl returns the code sent for the control chord of c, so Ctrl('a') is 0x01
func Ctrl(c byte) KeyCode {
	return KeyCode(c & 0x1f)
}

// Literal reports whether the code is a plain byte rather than a symbolic key
func (k KeyCode) Literal() bool {
	return k >= 0 && k < 0x100
}

// Function reports whether the code is a function key, and which one
func (k KeyCode) Function() (int, bool) {
	if k >= KeyF0 && k <= KeyF0+maxFunctionKey {
		return int(k - KeyF0), true
	}

	return 0, false
}

var keyNames = map[KeyCode]string{
	KeyUp:         "Up",
	KeyDown:       "Down",
	KeyLeft:       "Left",
	KeyRight:      "Right",
	KeyHome:       "Home",
	KeyEnd:        "End",
	KeyInsert:     "Insert",
	KeyDelete:     "Delete",
	KeyPageUp:     "PageUp",
	KeyPageDown:   "PageDown",
	KeyBackspace:  "Backspace",
	KeyBackTab:    "BackTab",
	KeyEnter:      "Enter",
	KeyBegin:      "Begin",
	KeyUpperLeft:  "UpperLeft",
	KeyUpperRight: "UpperRight",
	KeyCenter:     "Center",
	KeyLowerLeft:  "LowerLeft",
	KeyLowerRight: "LowerRight",
}

// Describe renders a key code for humans: control bytes as ^X, printable bytes as
// themselves, symbolic keys by name and anything else as a bracketed number.
func Describe(k KeyCode) string {
	switch {
	case k == 0x7f:
		return "^?"
	case k >= 0 && k < 0x20:
		return "^" + string(rune(k+0x40))
	case k >= 0x20 && k < 0x7f:
		return string(rune(k))
	}

	if name, ok := keyNames[k]; ok {
		return name
	}

	if n, ok := k.Function(); ok {
		return "F" + strconv.Itoa(n)
	}

	return "[" + strconv.Itoa(int(k)) + "]"
}

func (k KeyCode) String() string {
	return Describe(k)
}
