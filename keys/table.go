package keys

import (
	"bytes"
	"sort"

	"github.com/moodclient/teleconsole/terminfo"
)

type binding struct {
	cap  terminfo.StringCap
	code KeyCode
}

// bindings lists the key capabilities the table is built from. Function keys are added
// separately. When two capabilities carry the same sequence the earlier one wins.
var bindings = []binding{
	{terminfo.KeyUp, KeyUp},
	{terminfo.KeyDown, KeyDown},
	{terminfo.KeyLeft, KeyLeft},
	{terminfo.KeyRight, KeyRight},
	{terminfo.KeyHome, KeyHome},
	{terminfo.KeyEnd, KeyEnd},
	{terminfo.KeyIc, KeyInsert},
	{terminfo.KeyDc, KeyDelete},
	{terminfo.KeyPpage, KeyPageUp},
	{terminfo.KeyNpage, KeyPageDown},
	{terminfo.KeyBackspace, KeyBackspace},
	{terminfo.KeyBtab, KeyBackTab},
	{terminfo.KeyEnter, KeyEnter},
	{terminfo.KeyBeg, KeyBegin},
	{terminfo.KeyA1, KeyUpperLeft},
	{terminfo.KeyA3, KeyUpperRight},
	{terminfo.KeyB2, KeyCenter},
	{terminfo.KeyC1, KeyLowerLeft},
	{terminfo.KeyC3, KeyLowerRight},
}

type entry struct {
	seq  []byte
	code KeyCode
}

// Table maps the escape sequences of one terminal type to key codes. It is immutable and
// sorted by sequence.
type Table struct {
	entries []entry
}

// NewTable builds the key table from the key capabilities defined by db
func NewTable(db *terminfo.Database) *Table {
	var entries []entry

	add := func(cap terminfo.StringCap, code KeyCode) {
		seq := db.String(cap)
		if seq == "" {
			return
		}
		entries = append(entries, entry{seq: []byte(seq), code: code})
	}

	for _, b := range bindings {
		add(b.cap, b.code)
	}

	for n := 0; n <= terminfo.MaxFunctionKey; n++ {
		cap, _ := terminfo.FunctionKey(n)
		add(cap, KeyF(n))
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return bytes.Compare(entries[i].seq, entries[j].seq) < 0
	})

	deduped := entries[:0]
	for _, e := range entries {
		if len(deduped) > 0 && bytes.Equal(deduped[len(deduped)-1].seq, e.seq) {
			continue
		}
		deduped = append(deduped, e)
	}

	return &Table{entries: deduped}
}

// Lookup decodes the key at the front of buf. It returns the key and the number of bytes
// it used, or (Incomplete, 0) when buf is the start of a longer sequence and more bytes
// are needed. Bytes that begin no known sequence decode as a single literal byte. An
// empty buffer yields (0, 0).
func (t *Table) Lookup(buf []byte) (KeyCode, int) {
	if len(buf) == 0 {
		return 0, 0
	}

	i := sort.Search(len(t.entries), func(i int) bool {
		return bytes.Compare(t.entries[i].seq, buf) > 0
	})

	if i < len(t.entries) && bytes.HasPrefix(t.entries[i].seq, buf) {
		return Incomplete, 0
	}

	if i > 0 {
		prev := t.entries[i-1]
		if bytes.HasPrefix(buf, prev.seq) {
			return prev.code, len(prev.seq)
		}
	}

	return KeyCode(buf[0]), 1
}

// Len returns the number of distinct sequences in the table
func (t *Table) Len() int {
	return len(t.entries)
}
