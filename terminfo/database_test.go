package terminfo_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/moodclient/teleconsole/terminfo"
	"github.com/moodclient/teleconsole/terminfo/terminfotest"
)

func TestLoadRoundTrip(t *testing.T) {
	db := terminfotest.Load(t, terminfotest.VT220())

	if db.Name() != "vt220" {
		t.Errorf("Name expect %q, got %q", "vt220", db.Name())
	}

	names := db.Names()
	if len(names) != 3 || names[2] != "dec vt220" {
		t.Errorf("Names expect 3 entries ending in %q, got %q", "dec vt220", names)
	}

	if !db.Flag(terminfo.AutoRightMargin) {
		t.Errorf("Flag(am) expect true")
	}
	if db.Flag(terminfo.AutoLeftMargin) {
		t.Errorf("Flag(bw) expect false")
	}

	if got := db.Number(terminfo.Columns); got != 80 {
		t.Errorf("Number(cols) expect %d, got %d", 80, got)
	}
	if got := db.Number(terminfo.InitTabs); got != terminfo.Absent {
		t.Errorf("Number(it) expect absent, got %d", got)
	}

	if got := db.String(terminfo.ClrEol); got != "\x1b[K" {
		t.Errorf("String(el) expect %q, got %q", "\x1b[K", got)
	}
	if db.HasString(terminfo.BackTab) {
		t.Errorf("HasString(cbt) expect false")
	}
}

func TestLookupBeyondVectors(t *testing.T) {
	db := terminfotest.Load(t, terminfotest.Dumb())

	tc := []struct {
		label string
		check func() bool
	}{
		{"flag past end", func() bool { return !db.Flag(terminfo.BackColorErase) }},
		{"negative flag", func() bool { return !db.Flag(-1) }},
		{"number past end", func() bool { return db.Number(terminfo.MaxColors) == terminfo.Absent }},
		{"negative number", func() bool { return db.Number(-3) == terminfo.Absent }},
		{"string past end", func() bool { return !db.HasString(terminfo.KeyF63) && db.String(terminfo.KeyF63) == "" }},
		{"format past end", func() bool { return db.Format(terminfo.CursorAddress, 1, 2) == "" }},
	}

	for _, v := range tc {
		t.Run(v.label, func(t *testing.T) {
			if !v.check() {
				t.Errorf("%s: expect absent", v.label)
			}
		})
	}
}

func TestDecodeErrors(t *testing.T) {
	good, err := terminfotest.VT220().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	badMagic := append([]byte(nil), good...)
	badMagic[0] = 0x1b

	tc := []struct {
		label string
		data  []byte
	}{
		{"empty", nil},
		{"short header", good[:5]},
		{"bad magic", badMagic},
		{"short names", good[:14]},
		{"short pool", good[:len(good)-1]},
	}

	for _, v := range tc {
		t.Run(v.label, func(t *testing.T) {
			_, err := terminfo.Decode(v.data)
			if !errors.Is(err, terminfo.ErrInvalidTerminfo) {
				t.Errorf("%s: expect ErrInvalidTerminfo, got %v", v.label, err)
			}
		})
	}
}

func TestDecodeExtendedNumbers(t *testing.T) {
	var buf bytes.Buffer
	header := []int16{0o1036, 2, 0, 1, 0, 0}
	_ = binary.Write(&buf, binary.LittleEndian, header)
	buf.WriteString("x\x00")
	_ = binary.Write(&buf, binary.LittleEndian, int32(100000))

	db, err := terminfo.Decode(buf.Bytes())
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	if got := db.Number(terminfo.Columns); got != 100000 {
		t.Errorf("Number(cols) expect %d, got %d", 100000, got)
	}
}

func TestLoadSearchPath(t *testing.T) {
	data, err := terminfotest.VT220().Encode()
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	corrupt := t.TempDir()
	writeFile(t, filepath.Join(corrupt, "v", "vt220"), []byte("not terminfo"))

	hashed := t.TempDir()
	writeFile(t, filepath.Join(hashed, "76", "vt220"), data)

	db, err := terminfo.Load("vt220", []string{"", corrupt, hashed})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if db.Name() != "vt220" {
		t.Errorf("Name expect %q, got %q", "vt220", db.Name())
	}

	_, err = terminfo.Load("vt220", []string{corrupt})
	if !errors.Is(err, terminfo.ErrInvalidTerminfo) {
		t.Errorf("corrupt only: expect ErrInvalidTerminfo, got %v", err)
	}

	for _, name := range []string{"xterm", "", "../vt220"} {
		_, err = terminfo.Load(name, []string{hashed})
		if !errors.Is(err, terminfo.ErrInvalidTerminfo) {
			t.Errorf("Load(%q): expect ErrInvalidTerminfo, got %v", name, err)
		}
	}
}

func TestDefaultSearchPath(t *testing.T) {
	t.Setenv("TERMINFO", "/opt/terminfo")

	path := terminfo.DefaultSearchPath()
	expect := []string{"/opt/terminfo", "/etc/terminfo", "/lib/terminfo", "/usr/share/terminfo"}
	if len(path) != len(expect) {
		t.Fatalf("DefaultSearchPath expect %q, got %q", expect, path)
	}
	for i := range expect {
		if path[i] != expect[i] {
			t.Errorf("DefaultSearchPath[%d] expect %q, got %q", i, expect[i], path[i])
		}
	}
}

func TestEncodeRejectsNamelessEntry(t *testing.T) {
	if _, err := (&terminfo.Entry{}).Encode(); err == nil {
		t.Errorf("Encode without names expect error")
	}
}

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}
}
