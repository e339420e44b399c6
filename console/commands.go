package console

import (
	"fmt"
	"sort"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/mattn/go-shellwords"
)

// Console is what commands can do to the session that ran them. *Session implements it.
type Console interface {
	Print(text string)
	Notify(text string) bool
	SetPrompt(prompt string)
	History() []string
	Close()
}

var _ Console = &Session{}

// Command is one entry of a CommandTree. A command either runs or holds subcommands.
type Command struct {
	Name string
	Help string

	// Run executes the command with the words after its name
	Run func(c Console, args []string) error
	// Sub holds subcommands, selected by the next word
	Sub *CommandTree
	// Complete returns candidates for the word after args
	Complete func(args []string) []string
}

// CommandTree dispatches shell-style command lines and completes them
type CommandTree struct {
	commands map[string]*Command
}

func NewCommandTree(commands ...Command) *CommandTree {
	t := &CommandTree{commands: map[string]*Command{}}
	for _, cmd := range commands {
		t.Add(cmd)
	}

	return t
}

// Add registers cmd, replacing any command of the same name
func (t *CommandTree) Add(cmd Command) {
	t.commands[cmd.Name] = &cmd
}

// Names returns the command names in order
func (t *CommandTree) Names() []string {
	names := make([]string, 0, len(t.commands))
	for name := range t.commands {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// Help renders the commands and their help text as an aligned table
func (t *CommandTree) Help() string {
	width := 0
	for name := range t.commands {
		width = max(width, runewidth.StringWidth(name))
	}

	var sb strings.Builder
	for i, name := range t.Names() {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("  ")
		sb.WriteString(runewidth.FillRight(name, width))
		sb.WriteString("  ")
		sb.WriteString(t.commands[name].Help)
	}

	return sb.String()
}

// Accept is an AcceptFunc running each line as a command
func (t *CommandTree) Accept(s *Session, line string) {
	t.Execute(s, line)
}

// Execute splits line into words and runs the command they name. Errors are printed.
func (t *CommandTree) Execute(c Console, line string) {
	words, err := shellwords.Parse(line)
	if err != nil {
		c.Print(err.Error())
		return
	}
	if len(words) == 0 {
		return
	}

	tree := t
	for i, word := range words {
		cmd, ok := tree.commands[word]
		if !ok {
			c.Print(fmt.Sprintf("%s: command not found", strings.Join(words[:i+1], " ")))
			return
		}

		if cmd.Run != nil && (cmd.Sub == nil || i == len(words)-1) {
			if err := cmd.Run(c, words[i+1:]); err != nil {
				c.Print(fmt.Sprintf("%s: %v", strings.Join(words[:i+1], " "), err))
			}
			return
		}

		if cmd.Sub == nil {
			return
		}

		if i == len(words)-1 {
			c.Print(cmd.Sub.Help())
			return
		}
		tree = cmd.Sub
	}
}

// Complete is a lineedit.Completer for command lines. The candidates replace the whole
// prefix; a single candidate is followed by a space.
func (t *CommandTree) Complete(prefix []byte) []string {
	line := string(prefix)
	start := strings.LastIndexByte(line, ' ') + 1

	words, err := shellwords.Parse(line[:start])
	if err != nil {
		return nil
	}

	partial := line[start:]
	var candidates []string
	for _, name := range t.candidates(words) {
		if strings.HasPrefix(name, partial) {
			candidates = append(candidates, line[:start]+name)
		}
	}

	if len(candidates) == 1 {
		candidates[0] += " "
	}

	return candidates
}

func (t *CommandTree) candidates(words []string) []string {
	tree := t
	for i, word := range words {
		cmd, ok := tree.commands[word]
		if !ok {
			return nil
		}

		if cmd.Sub != nil {
			tree = cmd.Sub
			continue
		}

		if cmd.Complete != nil {
			return cmd.Complete(words[i+1:])
		}
		return nil
	}

	return tree.Names()
}
