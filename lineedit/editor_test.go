package lineedit

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/moodclient/teleconsole/keys"
)

// fakeScreen keeps the text of the region so tests can check what the user would see
type fakeScreen struct {
	width, height int

	lines  []string
	line   int
	column int

	scrollback []string
	bells      int
	clears     int
}

func newFakeScreen(width, height int) *fakeScreen {
	return &fakeScreen{width: width, height: height, lines: []string{""}}
}

func (s *fakeScreen) Width() int         { return s.width }
func (s *fakeScreen) Height() int        { return s.height }
func (s *fakeScreen) DisplayHeight() int { return len(s.lines) }
func (s *fakeScreen) Bold(bool)          {}
func (s *fakeScreen) Bell()              { s.bells++ }

func (s *fakeScreen) ToColumn(c int) {
	s.column = max(0, min(c, s.width-1))
}

func (s *fakeScreen) ToLine(l int) {
	l = max(0, min(l, s.height-1))
	for len(s.lines) <= l {
		s.lines = append(s.lines, "")
		s.column = 0
	}
	s.line = l
}

func (s *fakeScreen) Reset() {
	s.lines = []string{""}
	s.line, s.column = 0, 0
}

func (s *fakeScreen) Put(text []byte) {
	current := s.lines[s.line]
	if len(current) < s.column {
		current += strings.Repeat(" ", s.column-len(current))
	}

	tail := ""
	if end := s.column + len(text); end < len(current) {
		tail = current[end:]
	}
	s.lines[s.line] = current[:s.column] + string(text) + tail
	s.column = min(s.column+len(text), s.width-1)
}

func (s *fakeScreen) ClearEol() {
	if s.column < len(s.lines[s.line]) {
		s.lines[s.line] = s.lines[s.line][:s.column]
	}
}

func (s *fakeScreen) ClearScreen() {
	s.clears++
	s.Reset()
}

func (s *fakeScreen) Newline() {
	s.scrollback = append(s.scrollback, s.lines...)
	s.Reset()
}

func (s *fakeScreen) Print(text []byte) {
	s.scrollback = append(s.scrollback, strings.TrimSuffix(string(text), "\n"))
	s.Reset()
}

func typeString(e *Editor, s string) {
	for i := 0; i < len(s); i++ {
		e.OnKey(keys.KeyCode(s[i]))
	}
}

func newEditor(width, height int, config Config) (*Editor, *fakeScreen) {
	screen := newFakeScreen(width, height)
	e := New(screen, config)
	e.Prompt("> ")
	e.Show()
	return e, screen
}

func checkWindow(t *testing.T, e *Editor) {
	t.Helper()

	if e.DisplayPos() > e.Point() || e.Point() > e.DisplayPos()+e.EditWidth() {
		t.Errorf("window expect displayPos %d <= point %d <= %d", e.DisplayPos(), e.Point(), e.DisplayPos()+e.EditWidth())
	}
}

func TestTypingDraws(t *testing.T) {
	e, screen := newEditor(80, 24, Config{})
	typeString(e, "hello")

	if screen.lines[0] != ">  hello" {
		t.Errorf("line expect %q, got %q", ">  hello", screen.lines[0])
	}
	if screen.column != 8 {
		t.Errorf("cursor expect column 8, got %d", screen.column)
	}

	e.OnKey(keys.KeyLeft)
	e.OnKey(keys.KeyLeft)
	if screen.column != 6 || e.Point() != 3 {
		t.Errorf("after two lefts expect column 6 point 3, got column %d point %d", screen.column, e.Point())
	}

	e.OnKey('X')
	if screen.lines[0] != ">  helXlo" {
		t.Errorf("insert expect %q, got %q", ">  helXlo", screen.lines[0])
	}
}

func TestPromptTruncation(t *testing.T) {
	e, _ := newEditor(20, 24, Config{})
	e.Prompt(strings.Repeat("p", 10) + "0123456789abcdefghij")

	if e.PromptWidth() != 16 {
		t.Errorf("prompt width expect 16, got %d", e.PromptWidth())
	}
	if string(e.prompt) != "456789abcdefghij" {
		t.Errorf("prompt expect the rightmost characters, got %q", e.prompt)
	}
	if e.EditWidth() != 1 {
		t.Errorf("edit width expect 1, got %d", e.EditWidth())
	}
}

func TestScrolling(t *testing.T) {
	e, screen := newEditor(20, 24, Config{})
	if e.EditWidth() != 15 {
		t.Fatalf("edit width expect 15, got %d", e.EditWidth())
	}

	text := "abcdefghijklmnopqrst"
	for i := 0; i < len(text); i++ {
		e.OnKey(keys.KeyCode(text[i]))
		checkWindow(t, e)
	}

	if screen.lines[0] != "> <fghijklmnopqrst" {
		t.Errorf("scrolled line expect %q, got %q", "> <fghijklmnopqrst", screen.lines[0])
	}

	e.OnKey(keys.KeyHome)
	checkWindow(t, e)
	if screen.lines[0] != ">  abcdefghijklmno>" {
		t.Errorf("line at home expect %q, got %q", ">  abcdefghijklmno>", screen.lines[0])
	}
	if screen.column >= screen.width {
		t.Errorf("cursor column %d outside width %d", screen.column, screen.width)
	}

	for _, code := range []keys.KeyCode{keys.KeyEnd, keys.KeyLeft, keys.Ctrl('A'), keys.Ctrl('K'), keys.KeyRight} {
		e.OnKey(code)
		checkWindow(t, e)
	}
}

func TestEditingKeys(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		keys   []keys.KeyCode
		expect string
		point  int
	}{
		{"backspace", "abc", []keys.KeyCode{keys.KeyBackspace}, "ab", 2},
		{"delete char", "abc", []keys.KeyCode{0x7f, keys.Ctrl('H')}, "a", 1},
		{"delete forward", "abc", []keys.KeyCode{keys.KeyHome, keys.KeyDelete}, "bc", 0},
		{"ctrl-d deletes", "abc", []keys.KeyCode{keys.Ctrl('A'), keys.Ctrl('D')}, "bc", 0},
		{"kill to end", "abc def", []keys.KeyCode{keys.Ctrl('B'), keys.Ctrl('B'), keys.Ctrl('K')}, "abc d", 5},
		{"kill to start", "abc def", []keys.KeyCode{keys.Ctrl('B'), keys.Ctrl('U')}, "f", 0},
		{"kill word", "abc def  ", []keys.KeyCode{keys.Ctrl('W')}, "abc ", 4},
		{"restart", "abc", []keys.KeyCode{keys.Ctrl('C')}, "", 0},
		{"unbound control ignored", "ab", []keys.KeyCode{keys.Ctrl('G'), keys.KeyF(1)}, "ab", 2},
		{"high byte inserted", "ab", []keys.KeyCode{0xe9}, "ab\xe9", 3},
		{"forward at end", "ab", []keys.KeyCode{keys.Ctrl('F'), keys.Ctrl('E')}, "ab", 2},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			e, _ := newEditor(80, 24, Config{})
			typeString(e, test.input)
			for _, code := range test.keys {
				e.OnKey(code)
			}

			if string(e.Text()) != test.expect {
				t.Errorf("text expect %q, got %q", test.expect, e.Text())
			}
			if e.Point() != test.point {
				t.Errorf("point expect %d, got %d", test.point, e.Point())
			}
			checkWindow(t, e)
		})
	}
}

func TestEOF(t *testing.T) {
	eof := 0
	e, _ := newEditor(80, 24, Config{EOF: func(*Editor) { eof++ }})

	e.OnKey(keys.Ctrl('D'))
	if eof != 1 {
		t.Errorf("EOF calls expect 1, got %d", eof)
	}

	typeString(e, "x")
	e.OnKey(keys.Ctrl('A'))
	e.OnKey(keys.Ctrl('D'))
	if eof != 1 {
		t.Errorf("Ctrl-D on a non-empty line expect no EOF, got %d", eof)
	}
}

func TestAccept(t *testing.T) {
	var accepted []string
	e, screen := newEditor(80, 24, Config{
		Accept: func(editor *Editor, line []byte) {
			accepted = append(accepted, string(line))
			if editor.Enabled() {
				t.Errorf("editor expect hidden during accept")
			}
		},
	})

	typeString(e, "hello")
	e.OnKey(keys.Ctrl('A'))
	e.OnKey('\r')

	if len(accepted) != 1 || accepted[0] != "hello" {
		t.Fatalf("accepted expect [hello], got %v", accepted)
	}
	if len(screen.scrollback) != 1 || screen.scrollback[0] != ">  hello" {
		t.Errorf("scrollback expect the accepted line, got %q", screen.scrollback)
	}
	if e.Enabled() {
		t.Errorf("editor expect hidden after accept")
	}
	if len(e.Text()) != 0 || e.Point() != 0 {
		t.Errorf("editor expect cleared, got %q at %d", e.Text(), e.Point())
	}

	e.OnKey('x')
	if len(e.Text()) != 0 {
		t.Errorf("hidden editor expect keys ignored, got %q", e.Text())
	}

	e.Show()
	if screen.lines[0] != ">  " {
		t.Errorf("shown editor expect an empty line, got %q", screen.lines[0])
	}

	for _, code := range []keys.KeyCode{'\n', keys.KeyEnter} {
		e.Show()
		typeString(e, "again")
		e.OnKey(code)
	}
	if len(accepted) != 3 {
		t.Errorf("accept calls expect 3, got %d", len(accepted))
	}
}

func acceptLines(e *Editor, lines ...string) {
	for _, line := range lines {
		e.Show()
		typeString(e, line)
		e.OnKey('\r')
	}
	e.Show()
}

func TestHistorySkipRules(t *testing.T) {
	e, _ := newEditor(80, 24, Config{})
	acceptLines(e, "a", "a", "", "b", "a")

	expect := []string{"a", "b", "a"}
	got := e.History()
	if strings.Join(got, ",") != strings.Join(expect, ",") {
		t.Errorf("history expect %v, got %v", expect, got)
	}
}

func TestHistoryNavigation(t *testing.T) {
	e, _ := newEditor(80, 24, Config{})
	acceptLines(e, "a", "b")

	typeString(e, "c")
	e.OnKey(keys.KeyUp)
	if string(e.Text()) != "b" || e.Point() != 1 {
		t.Errorf("up expect %q at 1, got %q at %d", "b", e.Text(), e.Point())
	}

	e.OnKey(keys.Ctrl('P'))
	if string(e.Text()) != "a" {
		t.Errorf("second up expect %q, got %q", "a", e.Text())
	}

	e.OnKey(keys.KeyUp)
	if string(e.Text()) != "a" {
		t.Errorf("up at the oldest entry expect %q, got %q", "a", e.Text())
	}

	e.OnKey(keys.KeyDown)
	e.OnKey(keys.KeyDown)
	if string(e.Text()) != "c" {
		t.Errorf("down expect the saved line %q, got %q", "c", e.Text())
	}

	e.OnKey(keys.Ctrl('N'))
	if len(e.Text()) != 0 {
		t.Errorf("down past the newest entry expect an empty line, got %q", e.Text())
	}

	expect := []string{"a", "b", "c"}
	if strings.Join(e.History(), ",") != strings.Join(expect, ",") {
		t.Errorf("history expect %v, got %v", expect, e.History())
	}
}

func TestHistorySize(t *testing.T) {
	e, _ := newEditor(80, 24, Config{HistorySize: 3})
	acceptLines(e, "1", "2", "3", "4", "5")

	expect := []string{"3", "4", "5"}
	if strings.Join(e.History(), ",") != strings.Join(expect, ",") {
		t.Errorf("history expect %v, got %v", expect, e.History())
	}

	e.OnKey(keys.KeyUp)
	if string(e.Text()) != "5" {
		t.Errorf("up expect %q, got %q", "5", e.Text())
	}
}

func fixedCompleter(candidates ...string) Completer {
	return func(prefix []byte) []string {
		var out []string
		for _, c := range candidates {
			if strings.HasPrefix(c, string(prefix)) {
				out = append(out, c)
			}
		}
		return out
	}
}

func TestCompleteCommonPrefix(t *testing.T) {
	e, screen := newEditor(80, 24, Config{Completer: fixedCompleter("start", "stop", "status")})

	typeString(e, "s")
	e.OnKey('\t')
	if string(e.Text()) != "st" || e.Point() != 2 {
		t.Errorf("completion expect %q at 2, got %q at %d", "st", e.Text(), e.Point())
	}
	if screen.DisplayHeight() != 1 {
		t.Errorf("applying a prefix expect no list, got %d lines", screen.DisplayHeight())
	}

	e.OnKey('\t')
	if string(e.Text()) != "st" {
		t.Errorf("second tab expect text unchanged, got %q", e.Text())
	}
	if screen.DisplayHeight() != 2 || screen.lines[1] != "start   stop    status" {
		t.Errorf("list expect %q, got %q", "start   stop    status", screen.lines)
	}
	if screen.line != 0 || screen.column != 5 {
		t.Errorf("cursor expect back on the edit line, got line %d column %d", screen.line, screen.column)
	}

	e.OnKey('o')
	if screen.DisplayHeight() != 1 {
		t.Errorf("next key expect the list cleared, got %q", screen.lines)
	}
	if string(e.Text()) != "sto" {
		t.Errorf("text expect %q, got %q", "sto", e.Text())
	}
}

func TestCompleteStartStop(t *testing.T) {
	e, _ := newEditor(80, 24, Config{Completer: fixedCompleter("start", "stop")})
	typeString(e, "s")
	e.OnKey('\t')
	if string(e.Text()) != "st" {
		t.Errorf("completion expect %q, got %q", "st", e.Text())
	}

	e.Set([]byte("sta rest"), 3)
	e.OnKey('\t')
	if string(e.Text()) != "start rest" || e.Point() != 5 {
		t.Errorf("completion before the point expect %q at 5, got %q at %d", "start rest", e.Text(), e.Point())
	}
}

func TestCompleteColumnMajor(t *testing.T) {
	e, screen := newEditor(13, 24, Config{Completer: fixedCompleter("aa", "ab", "ac", "ad", "ae")})
	typeString(e, "a")
	e.OnKey(keys.Ctrl('I'))

	expect := []string{"aa  ac  ae", "ab  ad"}
	if len(screen.lines) != 3 || screen.lines[1] != expect[0] || screen.lines[2] != expect[1] {
		t.Errorf("list expect %q, got %q", expect, screen.lines)
	}
}

func TestCompleteTooMany(t *testing.T) {
	candidates := fixedCompleter("alphabet1", "alphabet2", "alphabet3", "alphabet4", "alphabet5")

	tt := []struct {
		width  int
		expect string
	}{
		{30, tooManyCompletions},
		{20, tooManyCompletions[:19]},
	}

	for _, v := range tt {
		e, screen := newEditor(v.width, 4, Config{Completer: candidates})
		typeString(e, "alphabet")
		e.OnKey('\t')

		if len(screen.lines) != 2 || screen.lines[1] != v.expect {
			t.Errorf("width %d list expect %q, got %q", v.width, v.expect, screen.lines)
		}
	}
}

func TestAuxLinesFitScreen(t *testing.T) {
	e, screen := newEditor(12, 24, Config{})

	e.SetAux(1, []byte("0123456789abcdef"))
	if screen.lines[1] != "0123456789a" {
		t.Errorf("aux expect %q, got %q", "0123456789a", screen.lines[1])
	}

	screen.width = 30
	e.WindowSizeChanged()
	e.Redisplay()
	if screen.lines[1] != "0123456789abcdef" {
		t.Errorf("aux after widening expect %q, got %q", "0123456789abcdef", screen.lines[1])
	}
}

func TestCompleteNothing(t *testing.T) {
	e, screen := newEditor(80, 24, Config{Completer: fixedCompleter("start")})

	typeString(e, "x")
	e.OnKey('\t')
	if screen.bells != 1 {
		t.Errorf("no candidates expect a bell, got %d", screen.bells)
	}

	e.Set([]byte("start"), 5)
	e.OnKey('\t')
	if screen.DisplayHeight() != 1 || string(e.Text()) != "start" {
		t.Errorf("single exact candidate expect nothing shown, got %q", screen.lines)
	}

	e, screen = newEditor(80, 24, Config{})
	e.OnKey('\t')
	if screen.bells != 1 {
		t.Errorf("no completer expect a bell, got %d", screen.bells)
	}
}

func TestDefineKey(t *testing.T) {
	e, _ := newEditor(80, 24, Config{})

	e.DefineKey(keys.KeyF(1), func(e *Editor) { e.Set([]byte("help"), 4) })
	e.OnKey(keys.KeyF(1))
	if string(e.Text()) != "help" {
		t.Errorf("bound key expect %q, got %q", "help", e.Text())
	}
	if e.LastKey() != keys.KeyF(1) {
		t.Errorf("last key expect F1, got %v", e.LastKey())
	}

	e.UnsetKey(keys.KeyBackspace)
	e.OnKey(keys.KeyBackspace)
	if string(e.Text()) != "help" {
		t.Errorf("unbound backspace expect no change, got %q", e.Text())
	}
}

func TestPrintRedraws(t *testing.T) {
	e, screen := newEditor(80, 24, Config{})
	typeString(e, "abc")

	e.Print([]byte("notice\n"))
	if len(screen.scrollback) != 1 || screen.scrollback[0] != "notice" {
		t.Errorf("scrollback expect [notice], got %q", screen.scrollback)
	}
	if screen.lines[0] != ">  abc" || !e.Enabled() {
		t.Errorf("editor expect redrawn after print, got %q", screen.lines[0])
	}

	e.Hide()
	e.Print([]byte("quiet"))
	if e.Enabled() {
		t.Errorf("hidden editor expect to stay hidden after print")
	}
}

func TestRedisplayAndResize(t *testing.T) {
	e, screen := newEditor(80, 24, Config{})
	typeString(e, "abc")

	e.OnKey(keys.Ctrl('L'))
	if screen.clears != 1 || screen.lines[0] != ">  abc" {
		t.Errorf("Ctrl-L expect a cleared screen and redraw, got %d %q", screen.clears, screen.lines[0])
	}

	screen.width = 10
	e.WindowSizeChanged()
	if e.EditWidth() != 5 {
		t.Errorf("edit width after resize expect 5, got %d", e.EditWidth())
	}
	checkWindow(t, e)
}

func TestWindowInvariantRandom(t *testing.T) {
	e, screen := newEditor(10, 24, Config{
		Accept: func(e *Editor, _ []byte) { e.Show() },
	})

	moves := []keys.KeyCode{
		keys.KeyLeft, keys.KeyRight, keys.KeyHome, keys.KeyEnd,
		keys.KeyBackspace, keys.KeyDelete, keys.KeyUp, keys.KeyDown,
		keys.Ctrl('K'), keys.Ctrl('U'), keys.Ctrl('W'), keys.Ctrl('L'),
	}

	r := rand.New(rand.NewSource(1))
	for step := 0; step < 5000; step++ {
		var op string
		switch n := r.Intn(20); {
		case n < 9:
			op = "insert"
			e.OnKey(keys.KeyCode(' ' + r.Intn(95)))
		case n < 18:
			code := moves[r.Intn(len(moves))]
			op = code.String()
			e.OnKey(code)
		case n == 18:
			text := strings.Repeat("w ", r.Intn(20))
			pos := r.Intn(len(text)+3) - 1
			op = "set"
			e.Set([]byte(text), pos)
		default:
			op = "enter"
			e.OnKey(keys.KeyEnter)
		}

		if e.Point() < 0 || e.Point() > len(e.Text()) {
			t.Fatalf("step %d %s: point %d outside text of %d", step, op, e.Point(), len(e.Text()))
		}
		if e.DisplayPos() > e.Point() || e.Point() > e.DisplayPos()+e.EditWidth() {
			t.Fatalf("step %d %s: window expect displayPos %d <= point %d <= %d",
				step, op, e.DisplayPos(), e.Point(), e.DisplayPos()+e.EditWidth())
		}
		if len(screen.lines[0]) >= screen.width {
			t.Fatalf("step %d %s: line %q does not fit width %d", step, op, screen.lines[0], screen.width)
		}
		if screen.column != e.cursorColumn() {
			t.Fatalf("step %d %s: cursor expect column %d, got %d", step, op, e.cursorColumn(), screen.column)
		}
	}
}
