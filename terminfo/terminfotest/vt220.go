// Package terminfotest provides compiled terminfo fixtures for tests in packages that
// render through a terminfo database.
package terminfotest

import (
	"testing"

	"github.com/moodclient/teleconsole/terminfo"
)

// VT220 returns a vt220-class entry with the cursor, editing and keypad capabilities the
// renderer and key decoder use
func VT220() *terminfo.Entry {
	return &terminfo.Entry{
		Names: []string{"vt220", "vt200", "dec vt220"},
		Flags: map[terminfo.BoolCap]bool{
			terminfo.AutoRightMargin:  true,
			terminfo.MoveInsertMode:   true,
			terminfo.MoveStandoutMode: true,
		},
		Numbers: map[terminfo.NumberCap]int{
			terminfo.Columns: 80,
			terminfo.Lines:   24,
		},
		Strings: map[terminfo.StringCap]string{
			terminfo.Bell:              terminfo.Unescape("^G"),
			terminfo.CarriageReturn:    terminfo.Unescape("\\r"),
			terminfo.ClearScreen:       terminfo.Unescape("\\E[H\\E[J"),
			terminfo.ClrEol:            terminfo.Unescape("\\E[K"),
			terminfo.CursorAddress:     terminfo.Unescape("\\E[%i%p1%d;%p2%dH"),
			terminfo.CursorDown:        terminfo.Unescape("^J"),
			terminfo.CursorLeft:        terminfo.Unescape("^H"),
			terminfo.CursorRight:       terminfo.Unescape("\\E[C"),
			terminfo.CursorUp:          terminfo.Unescape("\\E[A"),
			terminfo.EnterBoldMode:     terminfo.Unescape("\\E[1m"),
			terminfo.ExitAttributeMode: terminfo.Unescape("\\E[m"),
			terminfo.KeyBackspace:      terminfo.Unescape("^H"),
			terminfo.KeyDc:             terminfo.Unescape("\\E[3~"),
			terminfo.KeyDown:           terminfo.Unescape("\\E[B"),
			terminfo.KeyF1:             terminfo.Unescape("\\EOP"),
			terminfo.KeyF2:             terminfo.Unescape("\\EOQ"),
			terminfo.KeyF2 + 1:         terminfo.Unescape("\\EOR"),
			terminfo.KeyF2 + 2:         terminfo.Unescape("\\EOS"),
			terminfo.KeyF10:            terminfo.Unescape("\\E[21~"),
			terminfo.KeyHome:           terminfo.Unescape("\\E[1~"),
			terminfo.KeyIc:             terminfo.Unescape("\\E[2~"),
			terminfo.KeyLeft:           terminfo.Unescape("\\E[D"),
			terminfo.KeyNpage:          terminfo.Unescape("\\E[6~"),
			terminfo.KeyPpage:          terminfo.Unescape("\\E[5~"),
			terminfo.KeyRight:          terminfo.Unescape("\\E[C"),
			terminfo.KeyUp:             terminfo.Unescape("\\E[A"),
			terminfo.KeyEnd:            terminfo.Unescape("\\E[4~"),
			terminfo.KeypadLocal:       terminfo.Unescape("\\E[?1l\\E>"),
			terminfo.KeypadXmit:        terminfo.Unescape("\\E[?1h\\E="),
			terminfo.Newline:           terminfo.Unescape("\\EE"),
			terminfo.ParmDownCursor:    terminfo.Unescape("\\E[%p1%dB"),
			terminfo.ParmLeftCursor:    terminfo.Unescape("\\E[%p1%dD"),
			terminfo.ParmRightCursor:   terminfo.Unescape("\\E[%p1%dC"),
			terminfo.ParmUpCursor:      terminfo.Unescape("\\E[%p1%dA"),
		},
	}
}

// Dumb returns an entry with no cursor movement, which the renderer must refuse
func Dumb() *terminfo.Entry {
	return &terminfo.Entry{
		Names: []string{"dumb", "80-column dumb tty"},
		Flags: map[terminfo.BoolCap]bool{
			terminfo.AutoRightMargin: true,
		},
		Numbers: map[terminfo.NumberCap]int{
			terminfo.Columns: 80,
		},
		Strings: map[terminfo.StringCap]string{
			terminfo.Bell:           terminfo.Unescape("^G"),
			terminfo.CarriageReturn: terminfo.Unescape("\\r"),
			terminfo.CursorDown:     terminfo.Unescape("^J"),
		},
	}
}

// SearchPath compiles the entries into a temporary directory and returns a search path
// containing only that directory
func SearchPath(t testing.TB, entries ...*terminfo.Entry) []string {
	t.Helper()

	dir := t.TempDir()
	for _, entry := range entries {
		if _, err := entry.WriteTo(dir); err != nil {
			t.Fatalf("compile %s: %v", entry.Names[0], err)
		}
	}

	return []string{dir}
}

// Load compiles the entry and loads it back through the search path
func Load(t testing.TB, entry *terminfo.Entry) *terminfo.Database {
	t.Helper()

	db, err := terminfo.Load(entry.Names[0], SearchPath(t, entry))
	if err != nil {
		t.Fatalf("load %s: %v", entry.Names[0], err)
	}

	return db
}
