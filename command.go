package telnet

import (
	"strconv"
	"strings"
)

// Telnet opcodes
const (
	// EOR - End Of Record. Sent by some peers after a prompt in place of GA
	EOR byte = 239
	// SE - Subnegotiation End. IAC SE is used to mark the end of a subnegotiation command
	SE byte = 240
	// NOP - No-Op. IAC NOP doesn't indicate anything at all
	NOP byte = 241
	// DM - Data Mark. The data stream portion of a Synch
	DM byte = 242
	// BRK - Break. Indicates the break or attention key was hit
	BRK byte = 243
	// IP - Interrupt Process. Sent by clients when the user hits their interrupt key
	IP byte = 244
	// AO - Abort Output. Asks that output be discarded up to the next prompt
	AO byte = 245
	// AYT - Are You There. The peer expects visible evidence that we are alive
	AYT byte = 246
	// EC - Erase Character
	EC byte = 247
	// EL - Erase Line
	EL byte = 248
	// GA - Go Ahead. Historically used by half-duplex terminals to hand the line over
	GA byte = 249
	// SB - Subnegotiation Begin. IAC SB is used to indicate the beginning of a subnegotiation
	// command. These are telopt-specific commands that have telopt-specific meanings.
	SB byte = 250
	// WILL - IAC WILL is used to indicate that this terminal intends to activate a telopt
	WILL byte = 251
	// WONT - IAC WONT is used to indicate that this terminal refuses to activate a telopt
	WONT byte = 252
	// DO - IAC DO is used to request that the remote terminal activates a telopt
	DO byte = 253
	// DONT - IAC DONT is used to demand that the remote terminal do not activate a telopt
	DONT byte = 254
	// IAC - This opcode indicates the beginning of a new command
	IAC byte = 255
)

var commandCodes = map[byte]string{
	EOR:  "EOR",
	SE:   "SE",
	NOP:  "NOP",
	DM:   "DM",
	BRK:  "BRK",
	IP:   "IP",
	AO:   "AO",
	AYT:  "AYT",
	EC:   "EC",
	EL:   "EL",
	GA:   "GA",
	SB:   "SB",
	WILL: "WILL",
	WONT: "WONT",
	DO:   "DO",
	DONT: "DONT",
	IAC:  "IAC",
}

// Command is a struct that indicates some sort of IAC command either received from
// or sent to the remote. Any possible command can be represented by this struct.
type Command struct {
	// OpCode is the code that comes after IAC in this command. Subnegotiations, which come
	// in the form of IAC SB <bytes> IAC SE, are represented as a single command object
	// with the OpCode of SB. IAC SE is never sent in its own command.
	OpCode byte
	// Option indicates which telopt this command is referring to, if the command has one.
	// IAC WILL/WONT/DO/DONT/SB are always followed by a byte indicating a telopt.
	Option TelOptCode
	// Subnegotiation contains the unescaped bytes, if any, that came between IAC SB <option>
	// and IAC SE. For non-SB commands, this slice is empty.
	Subnegotiation []byte
}

// hasOption indicates whether the opcode is followed by an option byte on the wire
func (c Command) hasOption() bool {
	return c.OpCode == SB || c.isNegotiation()
}

func (c Command) isNegotiation() bool {
	return c.OpCode == DO || c.OpCode == DONT || c.OpCode == WILL || c.OpCode == WONT
}

// isActivateNegotiation indicates whether this command is a negotiation requesting activation
// of a telopt (DO/WILL).
func (c Command) isActivateNegotiation() bool {
	return c.OpCode == DO || c.OpCode == WILL
}

// side returns the side of the connection a negotiation command refers to: DO/DONT
// address our side, WILL/WONT the remote's
func (c Command) side() TelOptSide {
	if c.OpCode == DO || c.OpCode == DONT {
		return TelOptSideLocal
	}

	return TelOptSideRemote
}

// negotiationCommand builds the command we send to announce or request a state for
// an option on one side of the connection
func negotiationCommand(side TelOptSide, code TelOptCode, enable bool) Command {
	var opCode byte
	switch {
	case side == TelOptSideLocal && enable:
		opCode = WILL
	case side == TelOptSideLocal:
		opCode = WONT
	case enable:
		opCode = DO
	default:
		opCode = DONT
	}

	return Command{OpCode: opCode, Option: code}
}

// Bytes renders the command as it appears on the wire, doubling any IAC in the
// subnegotiation data
func (c Command) Bytes() []byte {
	size := 3
	if c.OpCode == SB {
		size += len(c.Subnegotiation) + 2
	}

	b := make([]byte, 0, size)
	b = append(b, IAC, c.OpCode)

	if !c.hasOption() {
		return b
	}

	b = append(b, byte(c.Option))

	if c.OpCode != SB {
		return b
	}

	for _, value := range c.Subnegotiation {
		if value == IAC {
			b = append(b, IAC)
		}
		b = append(b, value)
	}

	return append(b, IAC, SE)
}

func commandName(opCode byte) string {
	name, hasName := commandCodes[opCode]
	if !hasName {
		return strconv.Itoa(int(opCode))
	}

	return name
}

// CommandString converts a Command object into a legible stream. This can be useful
// when logging a received command object
func (t *Terminal) CommandString(c Command) string {
	var sb strings.Builder
	sb.WriteString("IAC ")
	sb.WriteString(commandName(c.OpCode))

	if !c.hasOption() {
		return sb.String()
	}

	sb.WriteByte(' ')

	option, hasOption := t.options[c.Option]
	if !hasOption {
		sb.WriteString("? Unknown Option ")
		sb.WriteString(strconv.Itoa(int(c.Option)))
		sb.WriteString("?")
	} else {
		sb.WriteString(option.String())
	}

	if c.OpCode != SB {
		return sb.String()
	}

	sb.WriteByte(' ')

	str := ""
	var err error
	if hasOption {
		str, err = option.SubnegotiationString(c.Subnegotiation)
	}
	if !hasOption || err != nil {
		str = commandStream(c.Subnegotiation)
	}
	sb.WriteString(str)

	sb.WriteString(" IAC SE")
	return sb.String()
}

func commandStream(b []byte) string {
	var sb strings.Builder

	for i := 0; i < len(b); i++ {
		if i > 0 {
			sb.WriteRune(' ')
		}

		sb.WriteString(strconv.Itoa(int(b[i])))
	}

	return sb.String()
}
