package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/moodclient/teleconsole/console"
)

var errUsage = errors.New("wrong number of arguments")

func newCommands() *console.CommandTree {
	tree := console.NewCommandTree(
		console.Command{
			Name: "echo",
			Help: "print the arguments",
			Run: func(c console.Console, args []string) error {
				c.Print(strings.Join(args, " "))
				return nil
			},
		},
		console.Command{
			Name: "history",
			Help: "list the lines entered so far",
			Run: func(c console.Console, args []string) error {
				history := c.History()
				if len(history) == 0 {
					c.Print("no history")
					return nil
				}

				var sb strings.Builder
				for i, line := range history {
					if i > 0 {
						sb.WriteByte('\n')
					}
					fmt.Fprintf(&sb, "%4d  %s", i+1, line)
				}
				c.Print(sb.String())
				return nil
			},
		},
		console.Command{
			Name: "prompt",
			Help: "change the prompt",
			Run: func(c console.Console, args []string) error {
				if len(args) != 1 {
					return errUsage
				}

				c.SetPrompt(args[0])
				return nil
			},
		},
		console.Command{
			Name: "time",
			Help: "print the server time",
			Run: func(c console.Console, args []string) error {
				c.Print(time.Now().Format(time.RFC1123))
				return nil
			},
		},
		console.Command{
			Name: "after",
			Help: "print a message after some seconds",
			Run: func(c console.Console, args []string) error {
				if len(args) < 2 {
					return errUsage
				}

				seconds, err := strconv.Atoi(args[0])
				if err != nil || seconds < 0 {
					return fmt.Errorf("invalid delay %q", args[0])
				}

				text := strings.Join(args[1:], " ")
				time.AfterFunc(time.Duration(seconds)*time.Second, func() {
					c.Notify(text)
				})
				return nil
			},
		},
		console.Command{
			Name: "quit",
			Help: "close the connection",
			Run: func(c console.Console, args []string) error {
				c.Print("bye")
				c.Close()
				return nil
			},
		},
	)

	tree.Add(console.Command{
		Name: "help",
		Help: "list the commands",
		Run: func(c console.Console, args []string) error {
			c.Print(tree.Help())
			return nil
		},
		Complete: func(args []string) []string {
			if len(args) > 0 {
				return nil
			}
			return tree.Names()
		},
	})

	return tree
}
