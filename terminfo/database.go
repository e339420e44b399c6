// Package terminfo decodes compiled terminfo entries and expands their parameterized
// capability strings.
package terminfo

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

const (
	magicLegacy   = 0o432  // 0x011A: numbers are 16 bits wide
	magicExtended = 0o1036 // 0x021E: numbers are 32 bits wide

	// Absent is returned by Number for capabilities the entry does not define
	Absent = -1
)

// ErrInvalidTerminfo is returned when no readable, well-formed compiled entry could be
// found for a terminal name. Errors returned by this package wrap it.
var ErrInvalidTerminfo = errors.New("invalid terminfo")

// Database is a single decoded terminfo entry. It is immutable after loading apart from
// the static variables used by %P and %g, which persist across Format calls like they do
// in curses.
type Database struct {
	name    string
	names   []string
	flags   []bool
	numbers []int
	offsets []int
	pool    []byte

	staticVars [26]stackElem
}

type header struct {
	Magic     int16
	NameSize  int16
	BoolCount int16
	NumCount  int16
	StrCount  int16
	PoolSize  int16
}

// Load finds the compiled entry for the terminal name in the search path and decodes it.
// Each directory is searched as dir/<first char>/<name> and dir/<hex of first char>/<name>.
// Directories that are empty strings are skipped.
func Load(name string, searchPath []string) (*Database, error) {
	if name == "" || strings.ContainsAny(name, "/\\") || name == "." || name == ".." {
		return nil, errors.Wrapf(ErrInvalidTerminfo, "terminfo: bad terminal name %q", name)
	}

	lastErr := errors.Wrapf(ErrInvalidTerminfo, "terminfo: no entry for %q", name)

	for _, dir := range searchPath {
		if dir == "" {
			continue
		}

		for _, candidate := range entryPaths(dir, name) {
			data, err := os.ReadFile(candidate)
			if err != nil {
				continue
			}

			db, err := Decode(data)
			if err != nil {
				lastErr = errors.Wrapf(err, "terminfo: %s", candidate)
				continue
			}

			return db, nil
		}
	}

	return nil, lastErr
}

func entryPaths(dir, name string) []string {
	first := name[:1]
	return []string{
		filepath.Join(dir, first, name),
		filepath.Join(dir, strconv.FormatInt(int64(name[0]), 16), name),
	}
}

// DefaultSearchPath returns the directories curses would search: $TERMINFO when it is set,
// followed by the system directories.
func DefaultSearchPath() []string {
	var path []string
	if dir := os.Getenv("TERMINFO"); dir != "" {
		path = append(path, dir)
	}

	return append(path, "/etc/terminfo", "/lib/terminfo", "/usr/share/terminfo")
}

// Decode parses a compiled terminfo entry. Any short read or malformed header results in
// an error wrapping ErrInvalidTerminfo. Extended (user-defined) capabilities that follow
// the standard sections are ignored.
func Decode(data []byte) (*Database, error) {
	r := bytes.NewReader(data)

	var h header
	if err := binary.Read(r, binary.LittleEndian, &h); err != nil {
		return nil, errors.Wrap(ErrInvalidTerminfo, "short header")
	}

	numberWidth := 2
	switch h.Magic {
	case magicLegacy:
	case magicExtended:
		numberWidth = 4
	default:
		return nil, errors.Wrapf(ErrInvalidTerminfo, "bad magic %#o", h.Magic)
	}

	if h.NameSize < 0 || h.BoolCount < 0 || h.NumCount < 0 || h.StrCount < 0 || h.PoolSize < 0 {
		return nil, errors.Wrap(ErrInvalidTerminfo, "negative section size")
	}

	names := make([]byte, h.NameSize)
	if _, err := io.ReadFull(r, names); err != nil {
		return nil, errors.Wrap(ErrInvalidTerminfo, "short names section")
	}

	rawFlags := make([]byte, h.BoolCount)
	if _, err := io.ReadFull(r, rawFlags); err != nil {
		return nil, errors.Wrap(ErrInvalidTerminfo, "short boolean section")
	}

	// Numbers start on an even offset
	if (int(h.NameSize)+int(h.BoolCount))%2 != 0 {
		if _, err := r.ReadByte(); err != nil {
			return nil, errors.Wrap(ErrInvalidTerminfo, "short padding")
		}
	}

	db := &Database{
		flags:   make([]bool, h.BoolCount),
		numbers: make([]int, h.NumCount),
		offsets: make([]int, h.StrCount),
	}

	for i, value := range rawFlags {
		db.flags[i] = value == 1
	}

	numberBuf := make([]byte, numberWidth)
	for i := range db.numbers {
		if _, err := io.ReadFull(r, numberBuf); err != nil {
			return nil, errors.Wrap(ErrInvalidTerminfo, "short number section")
		}

		var value int
		if numberWidth == 2 {
			value = int(int16(binary.LittleEndian.Uint16(numberBuf)))
		} else {
			value = int(int32(binary.LittleEndian.Uint32(numberBuf)))
		}

		if value < 0 {
			value = Absent
		}
		db.numbers[i] = value
	}

	offsetBuf := make([]byte, 2)
	for i := range db.offsets {
		if _, err := io.ReadFull(r, offsetBuf); err != nil {
			return nil, errors.Wrap(ErrInvalidTerminfo, "short string section")
		}

		offset := int(int16(binary.LittleEndian.Uint16(offsetBuf)))
		if offset < 0 || offset >= int(h.PoolSize) {
			offset = -1
		}
		db.offsets[i] = offset
	}

	db.pool = make([]byte, h.PoolSize)
	if _, err := io.ReadFull(r, db.pool); err != nil {
		return nil, errors.Wrap(ErrInvalidTerminfo, "short string table")
	}

	db.names = strings.Split(strings.TrimRight(string(names), "\x00"), "|")
	db.name = db.names[0]

	return db, nil
}

// Name returns the primary name of the entry
func (d *Database) Name() string {
	return d.name
}

// Names returns the primary name, aliases and description, in the order they are stored
func (d *Database) Names() []string {
	return append([]string(nil), d.names...)
}

// Flag returns the boolean capability, or false when it is absent
func (d *Database) Flag(id BoolCap) bool {
	if id < 0 || int(id) >= len(d.flags) {
		return false
	}

	return d.flags[id]
}

// Number returns the numeric capability, or Absent when it is not defined
func (d *Database) Number(id NumberCap) int {
	if id < 0 || int(id) >= len(d.numbers) {
		return Absent
	}

	return d.numbers[id]
}

// HasString reports whether the entry defines the string capability
func (d *Database) HasString(id StringCap) bool {
	return id >= 0 && int(id) < len(d.offsets) && d.offsets[id] >= 0
}

// String returns the raw (unexpanded) string capability, or "" when it is absent
func (d *Database) String(id StringCap) string {
	if !d.HasString(id) {
		return ""
	}

	start := d.offsets[id]
	end := bytes.IndexByte(d.pool[start:], 0)
	if end < 0 {
		return string(d.pool[start:])
	}

	return string(d.pool[start : start+end])
}
