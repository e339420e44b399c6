package terminfo

import "strconv"

// BoolCap is the index of a boolean capability in a compiled entry
type BoolCap int

// NumberCap is the index of a numeric capability in a compiled entry
type NumberCap int

// StringCap is the index of a string capability in a compiled entry
type StringCap int

// Boolean capabilities. Indices follow the standard compiled order.
const (
	AutoLeftMargin   BoolCap = 0
	AutoRightMargin  BoolCap = 1
	NoEscCtlc        BoolCap = 2
	EatNewlineGlitch BoolCap = 4
	HasMetaKey       BoolCap = 9
	MoveInsertMode   BoolCap = 12
	MoveStandoutMode BoolCap = 14
	BackColorErase   BoolCap = 28
)

// Numeric capabilities
const (
	Columns   NumberCap = 0
	InitTabs  NumberCap = 1
	Lines     NumberCap = 2
	MaxColors NumberCap = 13
)

// String capabilities
const (
	BackTab           StringCap = 0
	Bell              StringCap = 1
	CarriageReturn    StringCap = 2
	ClearScreen       StringCap = 5
	ClrEol            StringCap = 6
	ClrEos            StringCap = 7
	ColumnAddress     StringCap = 8
	CursorAddress     StringCap = 10
	CursorDown        StringCap = 11
	CursorHome        StringCap = 12
	CursorInvisible   StringCap = 13
	CursorLeft        StringCap = 14
	CursorNormal      StringCap = 16
	CursorRight       StringCap = 17
	CursorUp          StringCap = 19
	EnterBoldMode     StringCap = 27
	EnterReverseMode  StringCap = 34
	EnterUnderline    StringCap = 36
	ExitAttributeMode StringCap = 39
	KeyBackspace      StringCap = 55
	KeyDc             StringCap = 59
	KeyDown           StringCap = 61
	KeyF0             StringCap = 65
	KeyF1             StringCap = 66
	KeyF10            StringCap = 67
	KeyF2             StringCap = 68
	KeyF9             StringCap = 75
	KeyHome           StringCap = 76
	KeyIc             StringCap = 77
	KeyLeft           StringCap = 79
	KeyNpage          StringCap = 81
	KeyPpage          StringCap = 82
	KeyRight          StringCap = 83
	KeyUp             StringCap = 87
	KeypadLocal       StringCap = 88
	KeypadXmit        StringCap = 89
	Newline           StringCap = 103
	ParmDownCursor    StringCap = 107
	ParmLeftCursor    StringCap = 111
	ParmRightCursor   StringCap = 112
	ParmUpCursor      StringCap = 114
	RowAddress        StringCap = 127
	KeyA1             StringCap = 139
	KeyA3             StringCap = 140
	KeyB2             StringCap = 141
	KeyC1             StringCap = 142
	KeyC3             StringCap = 143
	KeyBtab           StringCap = 148
	KeyBeg            StringCap = 158
	KeyEnd            StringCap = 164
	KeyEnter          StringCap = 165
	KeyF11            StringCap = 216
	KeyF63            StringCap = 268
)

// MaxFunctionKey is the highest numbered function key with a standard capability
const MaxFunctionKey = 63

// FunctionKey returns the capability holding the sequence sent by function key n, for
// n in [0, MaxFunctionKey]. The compiled order is not monotonic in n: F0, F1, F10, F2..F9,
// and then F11 onwards in a separate block.
func FunctionKey(n int) (StringCap, bool) {
	switch {
	case n == 0:
		return KeyF0, true
	case n == 1:
		return KeyF1, true
	case n == 10:
		return KeyF10, true
	case n >= 2 && n <= 9:
		return KeyF2 + StringCap(n-2), true
	case n >= 11 && n <= MaxFunctionKey:
		return KeyF11 + StringCap(n-11), true
	}

	return 0, false
}

var stringCapNames = map[StringCap]string{
	BackTab:           "cbt",
	Bell:              "bel",
	CarriageReturn:    "cr",
	ClearScreen:       "clear",
	ClrEol:            "el",
	ClrEos:            "ed",
	ColumnAddress:     "hpa",
	CursorAddress:     "cup",
	CursorDown:        "cud1",
	CursorHome:        "home",
	CursorInvisible:   "civis",
	CursorLeft:        "cub1",
	CursorNormal:      "cnorm",
	CursorRight:       "cuf1",
	CursorUp:          "cuu1",
	EnterBoldMode:     "bold",
	EnterReverseMode:  "rev",
	EnterUnderline:    "smul",
	ExitAttributeMode: "sgr0",
	KeyBackspace:      "kbs",
	KeyDc:             "kdch1",
	KeyDown:           "kcud1",
	KeyHome:           "khome",
	KeyIc:             "kich1",
	KeyLeft:           "kcub1",
	KeyNpage:          "knp",
	KeyPpage:          "kpp",
	KeyRight:          "kcuf1",
	KeyUp:             "kcuu1",
	KeypadLocal:       "rmkx",
	KeypadXmit:        "smkx",
	Newline:           "nel",
	ParmDownCursor:    "cud",
	ParmLeftCursor:    "cub",
	ParmRightCursor:   "cuf",
	ParmUpCursor:      "cuu",
	RowAddress:        "vpa",
	KeyA1:             "ka1",
	KeyA3:             "ka3",
	KeyB2:             "kb2",
	KeyC1:             "kc1",
	KeyC3:             "kc3",
	KeyBtab:           "kcbt",
	KeyBeg:            "kbeg",
	KeyEnd:            "kend",
	KeyEnter:          "kent",
}

func (c StringCap) String() string {
	if name, ok := stringCapNames[c]; ok {
		return name
	}

	for n := 0; n <= MaxFunctionKey; n++ {
		if key, _ := FunctionKey(n); key == c {
			return "kf" + strconv.Itoa(n)
		}
	}

	return "str#" + strconv.Itoa(int(c))
}
