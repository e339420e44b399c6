package main

import (
	"flag"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/moodclient/teleconsole/utils"
)

func TestParseFlags(t *testing.T) {
	conf, _, err := parseFlags("teleconsole", []string{
		"-listen", "127.0.0.1:2424", "-terminfo", "/a:/b", "-prompt", "# ",
		"-history", "5", "-key-timeout", "250ms", "-v", "2",
	})
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if conf.listen != "127.0.0.1:2424" {
		t.Errorf("listen expect %q, got %q", "127.0.0.1:2424", conf.listen)
	}
	if path := conf.searchPath(); len(path) != 2 || path[0] != "/a" || path[1] != "/b" {
		t.Errorf("searchPath expect [/a /b], got %q", path)
	}
	if conf.prompt != "# " || conf.history != 5 || conf.keyTimeout != 250*time.Millisecond {
		t.Errorf("unexpected config %+v", conf)
	}
	if level := conf.logLevel(); level != utils.LevelTrace {
		t.Errorf("logLevel expect %v, got %v", utils.LevelTrace, level)
	}
}

func TestParseFlagsDefaults(t *testing.T) {
	conf, _, err := parseFlags("teleconsole", nil)
	if err != nil {
		t.Fatalf("parseFlags: %v", err)
	}

	if conf.searchPath() != nil {
		t.Errorf("searchPath expect nil, got %q", conf.searchPath())
	}
	if level := conf.logLevel(); level != slog.LevelInfo {
		t.Errorf("logLevel expect %v, got %v", slog.LevelInfo, level)
	}
}

func TestParseFlagsErrors(t *testing.T) {
	tt := []struct {
		label string
		args  []string
	}{
		{"unknown flag", []string{"-bogus"}},
		{"extra argument", []string{"extra"}},
		{"cert without key", []string{"-tls-cert", "cert.pem"}},
	}

	for _, v := range tt {
		if _, _, err := parseFlags("teleconsole", v.args); err == nil {
			t.Errorf("%s expect an error", v.label)
		}
	}
}

func TestParseFlagsHelp(t *testing.T) {
	_, output, err := parseFlags("/usr/bin/teleconsole", []string{"-help"})
	if err != flag.ErrHelp {
		t.Fatalf("expect flag.ErrHelp, got %v", err)
	}

	if !strings.Contains(output, "teleconsole [-listen addr]") || !strings.Contains(output, "-history") {
		t.Errorf("unexpected usage %q", output)
	}
}

type recordingConsole struct {
	printed []string
	prompt  string
	closed  bool
}

func (c *recordingConsole) Print(text string)       { c.printed = append(c.printed, text) }
func (c *recordingConsole) Notify(text string) bool { c.Print(text); return true }
func (c *recordingConsole) SetPrompt(prompt string) { c.prompt = prompt }
func (c *recordingConsole) History() []string       { return []string{"echo hi", "help"} }
func (c *recordingConsole) Close()                  { c.closed = true }

func TestCommands(t *testing.T) {
	tt := []struct {
		line    string
		printed string
	}{
		{`echo "a  b" c`, "a  b c"},
		{"history", "   1  echo hi\n   2  help"},
		{"prompt", "prompt: wrong number of arguments"},
		{"after x hi", `after: invalid delay "x"`},
		{"help", "  after    print a message after some seconds\n" +
			"  echo     print the arguments\n" +
			"  help     list the commands\n" +
			"  history  list the lines entered so far\n" +
			"  prompt   change the prompt\n" +
			"  quit     close the connection\n" +
			"  time     print the server time"},
	}

	for _, v := range tt {
		c := &recordingConsole{}
		newCommands().Execute(c, v.line)

		if strings.Join(c.printed, "|") != v.printed {
			t.Errorf("%s expect %q, got %q", v.line, v.printed, c.printed)
		}
	}
}

func TestCommandsPromptAndQuit(t *testing.T) {
	c := &recordingConsole{}
	commands := newCommands()

	commands.Execute(c, "prompt '$ '")
	if c.prompt != "$ " {
		t.Errorf("prompt expect %q, got %q", "$ ", c.prompt)
	}

	commands.Execute(c, "quit")
	if !c.closed {
		t.Errorf("quit should close the console")
	}

	if got := commands.Complete([]byte("help h")); len(got) != 2 || got[0] != "help help" || got[1] != "help history" {
		t.Errorf("complete expect [help help, help history], got %q", got)
	}
}
