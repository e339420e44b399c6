// Command teleconsole serves a demonstration command console over telnet
package main

import (
	"bytes"
	"context"
	"crypto/tls"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/moodclient/teleconsole/console"
	"github.com/moodclient/teleconsole/utils"
)

const usage = `Usage:
  %s [-listen addr] [-terminfo dir[:dir...]] [-prompt text] [-history n]
     [-charset name] [-tls-cert file -tls-key file] [-verbose n]

Serves a line-editing command console to telnet clients.

Options:
`

type Config struct {
	listen       string        // listen address
	terminfo     string        // terminfo search path, colon separated
	prompt       string        // edit line prompt
	greeting     string        // text printed to each client
	charset      string        // wire character set
	history      int           // history entries kept per session
	maxLine      int           // plain mode line limit
	setupTimeout time.Duration // negotiation timeout
	keyTimeout   time.Duration // escape sequence timeout
	tlsCert      string        // TLS certificate file
	tlsKey       string        // TLS key file
	verbose      int           // 0 info, 1 debug, 2 trace
}

// parseFlags parses the command-line arguments. With -h or -help it returns flag.ErrHelp
// and output holds the usage message.
func parseFlags(progname string, args []string) (config *Config, output string, err error) {
	flagSet := flag.NewFlagSet(progname, flag.ContinueOnError)
	var buf bytes.Buffer
	flagSet.SetOutput(&buf)
	flagSet.Usage = func() {
		fmt.Fprintf(&buf, usage, filepath.Base(progname))
		flagSet.PrintDefaults()
	}

	var conf Config
	flagSet.StringVar(&conf.listen, "listen", ":2323", "listen address")
	flagSet.StringVar(&conf.terminfo, "terminfo", "", "terminfo search path, colon separated")
	flagSet.StringVar(&conf.prompt, "prompt", console.DefaultPrompt, "prompt text")
	flagSet.StringVar(&conf.greeting, "greeting", "Welcome. Type help for a list of commands.", "greeting printed on connect")
	flagSet.StringVar(&conf.charset, "charset", "", "wire character set, ISO-8859-1 when empty")
	flagSet.IntVar(&conf.history, "history", 0, "history entries kept per session")
	flagSet.IntVar(&conf.maxLine, "max-line", 1024, "longest line accepted from plain clients")
	flagSet.DurationVar(&conf.setupTimeout, "setup-timeout", 0, "option negotiation timeout")
	flagSet.DurationVar(&conf.keyTimeout, "key-timeout", 0, "escape sequence timeout")
	flagSet.StringVar(&conf.tlsCert, "tls-cert", "", "TLS certificate file")
	flagSet.StringVar(&conf.tlsKey, "tls-key", "", "TLS key file")
	flagSet.IntVar(&conf.verbose, "verbose", 0, "verbose output, 1 debug 2 protocol trace")
	flagSet.IntVar(&conf.verbose, "v", 0, "verbose output, 1 debug 2 protocol trace")

	err = flagSet.Parse(args)
	if err != nil {
		return nil, buf.String(), err
	}

	if flagSet.NArg() > 0 {
		return nil, buf.String(), fmt.Errorf("unexpected argument %q", flagSet.Arg(0))
	}

	if (conf.tlsCert == "") != (conf.tlsKey == "") {
		return nil, buf.String(), fmt.Errorf("-tls-cert and -tls-key must be used together")
	}

	return &conf, buf.String(), nil
}

func (conf *Config) logLevel() slog.Level {
	switch {
	case conf.verbose >= 2:
		return utils.LevelTrace
	case conf.verbose == 1:
		return slog.LevelDebug
	}

	return slog.LevelInfo
}

func (conf *Config) searchPath() []string {
	if conf.terminfo == "" {
		return nil
	}

	return filepath.SplitList(conf.terminfo)
}

func (conf *Config) server(logger *slog.Logger) (*console.Server, error) {
	commands := newCommands()

	srv := &console.Server{
		Config: console.Config{
			Logger:        logger,
			Prompt:        conf.prompt,
			Greeting:      conf.greeting,
			CharsetName:   conf.charset,
			SearchPath:    conf.searchPath(),
			SetupTimeout:  conf.setupTimeout,
			KeyTimeout:    conf.keyTimeout,
			HistorySize:   conf.history,
			MaxLineLength: conf.maxLine,
			Completer:     commands.Complete,
			Accept:        commands.Accept,
		},
	}

	if conf.tlsCert != "" {
		cert, err := tls.LoadX509KeyPair(conf.tlsCert, conf.tlsKey)
		if err != nil {
			return nil, err
		}
		srv.TLSConfig = &tls.Config{Certificates: []tls.Certificate{cert}}
	}

	return srv, nil
}

func printUsage(hint, output string) {
	if hint != "" {
		fmt.Fprintln(os.Stderr, hint)
	}
	fmt.Fprint(os.Stderr, output)
}

func main() {
	conf, output, err := parseFlags(os.Args[0], os.Args[1:])
	if err == flag.ErrHelp {
		printUsage("", output)
		return
	} else if err != nil {
		printUsage(err.Error(), output)
		os.Exit(2)
	}

	logger := utils.NewLogger(os.Stderr, conf.logLevel())

	srv, err := conf.server(logger)
	if err != nil {
		logger.Error("Unable to configure server", slog.Any("error", err))
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := srv.ListenAndServe(ctx, conf.listen); err != nil {
		logger.Error("Server failed", slog.Any("error", err))
		os.Exit(1)
	}

	logger.Info("Server stopped")
}
