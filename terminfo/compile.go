package terminfo

import (
	"bytes"
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// Entry is an uncompiled terminfo description. It is the inverse of Database: Encode
// produces the legacy compiled format that Decode and Load read back.
type Entry struct {
	// Names holds the primary name first, then aliases; the last element is
	// conventionally a description
	Names   []string
	Flags   map[BoolCap]bool
	Numbers map[NumberCap]int
	// Strings holds capability values with escapes already decoded, see Unescape
	Strings map[StringCap]string
}

// Encode compiles the entry into the legacy (16-bit number) binary format
func (e *Entry) Encode() ([]byte, error) {
	if len(e.Names) == 0 || e.Names[0] == "" {
		return nil, errors.New("terminfo: entry has no name")
	}

	names := strings.Join(e.Names, "|") + "\x00"

	boolCount := 0
	for id := range e.Flags {
		if int(id)+1 > boolCount {
			boolCount = int(id) + 1
		}
	}

	numCount := 0
	for id, value := range e.Numbers {
		if value > math.MaxInt16 {
			return nil, errors.Errorf("terminfo: number %d does not fit the legacy format", id)
		}
		if int(id)+1 > numCount {
			numCount = int(id) + 1
		}
	}

	strCount := 0
	for id := range e.Strings {
		if int(id)+1 > strCount {
			strCount = int(id) + 1
		}
	}

	offsets := make([]int16, strCount)
	var pool bytes.Buffer
	for i := range offsets {
		value, ok := e.Strings[StringCap(i)]
		if !ok {
			offsets[i] = -1
			continue
		}

		offsets[i] = int16(pool.Len())
		pool.WriteString(value)
		pool.WriteByte(0)
	}

	if pool.Len() > math.MaxInt16 || len(names) > math.MaxInt16 {
		return nil, errors.New("terminfo: entry too large for the legacy format")
	}

	var out bytes.Buffer
	h := header{
		Magic:     magicLegacy,
		NameSize:  int16(len(names)),
		BoolCount: int16(boolCount),
		NumCount:  int16(numCount),
		StrCount:  int16(strCount),
		PoolSize:  int16(pool.Len()),
	}
	_ = binary.Write(&out, binary.LittleEndian, h)
	out.WriteString(names)

	for i := 0; i < boolCount; i++ {
		if e.Flags[BoolCap(i)] {
			out.WriteByte(1)
		} else {
			out.WriteByte(0)
		}
	}

	if (len(names)+boolCount)%2 != 0 {
		out.WriteByte(0)
	}

	for i := 0; i < numCount; i++ {
		value, ok := e.Numbers[NumberCap(i)]
		if !ok {
			value = Absent
		}
		_ = binary.Write(&out, binary.LittleEndian, int16(value))
	}

	_ = binary.Write(&out, binary.LittleEndian, offsets)
	out.Write(pool.Bytes())

	return out.Bytes(), nil
}

// WriteTo compiles the entry into dir using the dir/<first char>/<name> layout
func (e *Entry) WriteTo(dir string) (string, error) {
	data, err := e.Encode()
	if err != nil {
		return "", err
	}

	name := e.Names[0]
	path := filepath.Join(dir, name[:1], name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "terminfo")
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", errors.Wrap(err, "terminfo")
	}

	return path, nil
}

const (
	none = iota
	control
	escaped
)

// Unescape decodes the escapes used in terminfo source: \E and \e for escape, ^X for
// control characters, \0 and three digit octal, and the C style \n \l \r \t \b \f \s.
func Unescape(s string) string {
	var buf bytes.Buffer
	esc := none

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch esc {
		case none:
			switch c {
			case '\\':
				esc = escaped
			case '^':
				esc = control
			default:
				buf.WriteByte(c)
			}
		case control:
			if c == '?' {
				buf.WriteByte(0x7f)
			} else {
				buf.WriteByte(c ^ 1<<6)
			}
			esc = none
		case escaped:
			switch c {
			case 'E', 'e':
				buf.WriteByte(0x1b)
			case '0', '1', '2', '3', '4', '5', '6', '7':
				if i+2 < len(s) && s[i+1] >= '0' && s[i+1] <= '7' && s[i+2] >= '0' && s[i+2] <= '7' {
					buf.WriteByte(((c - '0') * 64) + ((s[i+1] - '0') * 8) + (s[i+2] - '0'))
					i = i + 2
				} else if c == '0' {
					// \0 is stored as \200 so it survives NUL termination
					buf.WriteByte(0x80)
				}
			case 'n', 'l':
				buf.WriteByte('\n')
			case 'r':
				buf.WriteByte('\r')
			case 't':
				buf.WriteByte('\t')
			case 'b':
				buf.WriteByte('\b')
			case 'f':
				buf.WriteByte('\f')
			case 's':
				buf.WriteByte(' ')
			default:
				buf.WriteByte(c)
			}
			esc = none
		}
	}

	return buf.String()
}
