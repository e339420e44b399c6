package telnet

import (
	"errors"
	"strings"
	"sync/atomic"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/ianaindex"
)

// Charset converts between the UTF-8 strings used by consumers and the 8-bit bytes
// spoken on the wire. It also records whether TRANSMIT-BINARY is active in each
// direction, which the TRANSMIT-BINARY telopt keeps up to date. Once binary mode is
// required, a direction without it is 7-bit: bytes above 0x7F become '?'.
type Charset struct {
	name     string
	encoding encoding.Encoding

	requireBinary atomic.Bool
	binaryEncode  atomic.Bool
	binaryDecode  atomic.Bool
}

// NewCharset looks up a character set by its registered IANA name. An empty name
// selects ISO-8859-1.
func NewCharset(codePage string) (*Charset, error) {
	if codePage == "" || strings.EqualFold(codePage, "iso-8859-1") {
		return &Charset{name: "ISO-8859-1", encoding: charmap.ISO8859_1}, nil
	}

	charset, err := ianaindex.IANA.Encoding(codePage)
	if err != nil {
		return nil, err
	}
	if charset == nil {
		return nil, errors.New("ianaindex: unsupported encoding")
	}

	name, err := ianaindex.IANA.Name(charset)
	if err != nil {
		return nil, err
	}

	return &Charset{name: name, encoding: charset}, nil
}

// Name returns the IANA name of the character set
func (c *Charset) Name() string {
	return c.name
}

// Encode accepts a string of UTF-8 text and returns it encoded in the wire character set.
// Runes that have no representation are replaced.
func (c *Charset) Encode(utf8Text string) ([]byte, error) {
	encoded, err := encoding.ReplaceUnsupported(c.encoding.NewEncoder()).Bytes([]byte(utf8Text))
	if err != nil {
		return nil, err
	}

	if c.requireBinary.Load() && !c.binaryEncode.Load() {
		sevenBit(encoded)
	}

	return encoded, nil
}

// Decode converts bytes in the wire character set to a UTF-8 string
func (c *Charset) Decode(data []byte) (string, error) {
	if c.requireBinary.Load() && !c.binaryDecode.Load() {
		data = append([]byte(nil), data...)
		sevenBit(data)
	}

	decoded, err := c.encoding.NewDecoder().Bytes(data)
	if err != nil {
		return "", err
	}

	return string(decoded), nil
}

func sevenBit(b []byte) {
	for i, value := range b {
		if value > 0x7f {
			b[i] = '?'
		}
	}
}

// RequireBinary makes 8-bit text depend on TRANSMIT-BINARY being active in each
// direction. The TRANSMIT-BINARY telopt calls it when it is registered.
func (c *Charset) RequireBinary() {
	c.requireBinary.Store(true)
}

// SetBinaryEncode is used by the TRANSMIT-BINARY telopt to record whether we
// send in binary mode
func (c *Charset) SetBinaryEncode(encode bool) {
	c.binaryEncode.Store(encode)
}

// SetBinaryDecode is used by the TRANSMIT-BINARY telopt to record whether the
// remote sends in binary mode
func (c *Charset) SetBinaryDecode(decode bool) {
	c.binaryDecode.Store(decode)
}

// BinaryEncode returns a bool indicating whether we send in binary mode
func (c *Charset) BinaryEncode() bool {
	return c.binaryEncode.Load()
}

// BinaryDecode returns a bool indicating whether the remote sends in binary mode
func (c *Charset) BinaryDecode() bool {
	return c.binaryDecode.Load()
}
