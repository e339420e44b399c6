package terminfo

import (
	"strconv"
	"strings"
)

// MaxParams is the number of numeric arguments a capability program can reference
const MaxParams = 9

type stackElem struct {
	s     string
	i     int
	isStr bool
}

type stack []stackElem

func (st stack) Push(v string) stack {
	return append(st, stackElem{s: v, isStr: true})
}

func (st stack) PushInt(i int) stack {
	return append(st, stackElem{i: i})
}

func (st stack) PushBool(b bool) stack {
	if b {
		return st.PushInt(1)
	}
	return st.PushInt(0)
}

func (st stack) Pop() (string, stack) {
	if len(st) == 0 {
		return "", st
	}

	e := st[len(st)-1]
	st = st[:len(st)-1]
	if e.isStr {
		return e.s, st
	}
	return strconv.Itoa(e.i), st
}

func (st stack) PopInt() (int, stack) {
	if len(st) == 0 {
		return 0, st
	}

	e := st[len(st)-1]
	st = st[:len(st)-1]
	if e.isStr {
		i, _ := strconv.Atoi(e.s)
		return i, st
	}
	return e.i, st
}

// program walks a capability string one byte at a time
type program struct {
	src string
	pos int
}

func (p *program) next() (byte, bool) {
	if p.pos >= len(p.src) {
		return 0, false
	}

	ch := p.src[p.pos]
	p.pos++
	return ch, true
}

func (p *program) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

// skipConditional consumes input until the %e or %; that closes the current branch.
// With stopAtElse false only %; ends the skip.
func (p *program) skipConditional(stopAtElse bool) {
	nest := 0
	for {
		ch, ok := p.next()
		if !ok {
			return
		}
		if ch != '%' {
			continue
		}

		ch, _ = p.next()
		switch ch {
		case '?':
			nest++
		case ';':
			if nest == 0 {
				return
			}
			nest--
		case 'e':
			if nest == 0 && stopAtElse {
				return
			}
		}
	}
}

// Format expands the string capability id with up to MaxParams numeric arguments. An absent
// capability expands to "". Padding specifications ($<n>) are removed from the result.
func (d *Database) Format(id StringCap, args ...int) string {
	if !d.HasString(id) {
		return ""
	}

	return d.Expand(d.String(id), args...)
}

// Expand interprets a capability string as a stack program.
//
// Binary operators pop the right operand first, so "%p1%p2%-" computes p1-p2. Division and
// modulo by zero divide by one instead.
func (d *Database) Expand(capability string, args ...int) string {
	var params [MaxParams]int
	copy(params[:], args)

	var dynamicVars [26]stackElem
	var stk stack
	var out strings.Builder
	var a, b int
	var s string

	p := &program{src: capability}

	for {
		ch, ok := p.next()
		if !ok {
			break
		}

		if ch != '%' {
			out.WriteByte(ch)
			continue
		}

		ch, ok = p.next()
		if !ok {
			break
		}

		switch ch {
		case '%':
			out.WriteByte('%')

		case 'i':
			params[0]++
			params[1]++

		case 'c':
			a, stk = stk.PopInt()
			out.WriteByte(byte(a))

		case 'd':
			a, stk = stk.PopInt()
			out.WriteString(strconv.Itoa(a))

		case 's':
			s, stk = stk.Pop()
			out.WriteString(s)

		case ':', '#', ' ', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9', '.', 'x', 'X', 'o':
			p.pos--
			stk = d.printf(p, stk, &out)

		case 'p':
			ch, _ = p.next()
			index := int(ch) - '1'
			if index >= 0 && index < MaxParams {
				stk = stk.PushInt(params[index])
			} else {
				stk = stk.PushInt(0)
			}

		case 'P':
			ch, _ = p.next()
			var elem stackElem
			if len(stk) > 0 {
				elem = stk[len(stk)-1]
				stk = stk[:len(stk)-1]
			}
			if ch >= 'A' && ch <= 'Z' {
				d.staticVars[ch-'A'] = elem
			} else if ch >= 'a' && ch <= 'z' {
				dynamicVars[ch-'a'] = elem
			}

		case 'g':
			ch, _ = p.next()
			if ch >= 'A' && ch <= 'Z' {
				stk = append(stk, d.staticVars[ch-'A'])
			} else if ch >= 'a' && ch <= 'z' {
				stk = append(stk, dynamicVars[ch-'a'])
			}

		case '\'':
			ch, _ = p.next()
			stk = stk.PushInt(int(ch))
			if p.peek() == '\'' {
				p.next()
			}

		case '{':
			a = 0
			for {
				ch, ok = p.next()
				if !ok || ch < '0' || ch > '9' {
					break
				}
				a = a*10 + int(ch-'0')
			}
			stk = stk.PushInt(a)

		case 'l':
			s, stk = stk.Pop()
			stk = stk.PushInt(len(s))

		case '+', '-', '*', '/', 'm', '&', '|', '^', '=', '>', '<', 'A', 'O':
			b, stk = stk.PopInt()
			a, stk = stk.PopInt()
			stk = stk.PushInt(binaryOp(ch, a, b))

		case '!':
			a, stk = stk.PopInt()
			stk = stk.PushBool(a == 0)

		case '~':
			a, stk = stk.PopInt()
			stk = stk.PushInt(^a)

		case '?', ';':

		case 't':
			a, stk = stk.PopInt()
			if a == 0 {
				p.skipConditional(true)
			}

		case 'e':
			// Reaching %e means the then-branch ran, so the else-branch is skipped
			p.skipConditional(false)
		}
	}

	return stripPadding(out.String())
}

func binaryOp(op byte, a, b int) int {
	switch op {
	case '+':
		return a + b
	case '-':
		return a - b
	case '*':
		return a * b
	case '/':
		if b == 0 {
			b = 1
		}
		return a / b
	case 'm':
		if b == 0 {
			b = 1
		}
		return a % b
	case '&':
		return a & b
	case '|':
		return a | b
	case '^':
		return a ^ b
	case '=':
		return boolInt(a == b)
	case '>':
		return boolInt(a > b)
	case '<':
		return boolInt(a < b)
	case 'A':
		return boolInt(a != 0 && b != 0)
	case 'O':
		return boolInt(a != 0 || b != 0)
	}

	return 0
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// printf handles %[[:]flags][width[.precision]][doxXs]. Numeric conversions with a width
// are zero padded unless the - flag asks for left alignment.
func (d *Database) printf(p *program, stk stack, out *strings.Builder) stack {
	var leftAlign, alternate, plus, space bool

	if p.peek() == ':' {
		p.next()
	}

flags:
	for {
		switch p.peek() {
		case '-':
			leftAlign = true
		case '#':
			alternate = true
		case '+':
			plus = true
		case ' ':
			space = true
		default:
			break flags
		}
		p.next()
	}

	width := 0
	for p.peek() >= '0' && p.peek() <= '9' {
		ch, _ := p.next()
		width = width*10 + int(ch-'0')
	}

	precision := -1
	if p.peek() == '.' {
		p.next()
		precision = 0
		for p.peek() >= '0' && p.peek() <= '9' {
			ch, _ := p.next()
			precision = precision*10 + int(ch-'0')
		}
	}

	conv, ok := p.next()
	if !ok {
		return stk
	}

	var text string
	numeric := true

	switch conv {
	case 'd', 'x', 'X', 'o':
		var value int
		value, stk = stk.PopInt()

		negative := value < 0
		if negative {
			value = -value
		}

		base := 10
		prefix := ""
		switch conv {
		case 'x':
			base = 16
			if alternate {
				prefix = "0x"
			}
		case 'X':
			base = 16
			if alternate {
				prefix = "0X"
			}
		case 'o':
			base = 8
			if alternate {
				prefix = "0"
			}
		}

		text = strconv.FormatInt(int64(value), base)
		if conv == 'X' {
			text = strings.ToUpper(text)
		}
		for precision > len(text) {
			text = "0" + text
		}
		text = prefix + text

		sign := ""
		if negative {
			sign = "-"
		} else if plus {
			sign = "+"
		} else if space {
			sign = " "
		}

		if !leftAlign {
			for len(sign)+len(text) < width {
				text = "0" + text
			}
		}
		text = sign + text

	case 's', 'c':
		numeric = false
		if conv == 'c' {
			var value int
			value, stk = stk.PopInt()
			text = string([]byte{byte(value)})
		} else {
			text, stk = stk.Pop()
		}

		if precision >= 0 && precision < len(text) {
			text = text[:precision]
		}

	default:
		return stk
	}

	padding := width - len(text)
	if padding > 0 && (leftAlign || !numeric) {
		pad := strings.Repeat(" ", padding)
		if leftAlign {
			text += pad
		} else {
			text = pad + text
		}
	}

	out.WriteString(text)
	return stk
}

// stripPadding removes $<delay> padding specifications, which only matter to hardware
// terminals on slow serial lines
func stripPadding(s string) string {
	if !strings.Contains(s, "$<") {
		return s
	}

	var out strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] == '$' && i+1 < len(s) && s[i+1] == '<' {
			end := i + 2
			for end < len(s) && strings.IndexByte("0123456789.*/", s[end]) >= 0 {
				end++
			}

			if end < len(s) && s[end] == '>' && end > i+2 {
				i = end
				continue
			}
		}

		out.WriteByte(s[i])
	}

	return out.String()
}
