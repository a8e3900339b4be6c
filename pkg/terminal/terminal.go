package terminal

import (
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/go-delve/liner"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/sirupsen/logrus"

	"github.com/deet-dbg/deet/pkg/config"
	"github.com/deet-dbg/deet/pkg/logflags"
	"github.com/deet-dbg/deet/service/debugger"
)

const (
	terminalHighlightEscapeCode string = "\033[%2dm"
	terminalResetEscapeCode     string = "\033[0m"
)

const (
	ansiRed    = 31
	ansiGreen  = 32
	ansiYellow = 33
)

// Term represents the terminal running deet.
type Term struct {
	debugger *debugger.Debugger
	conf     *config.Config
	prompt   string
	line     *liner.State
	cmds     *Commands
	stdout   io.Writer
	colorize bool
	InitFile string

	// If RunOnStart is set the target is started with RunArgs before the
	// first prompt.
	RunOnStart bool
	RunArgs    []string
	log        *logrus.Entry
}

// New returns a new Term.
func New(d *debugger.Debugger, conf *config.Config) *Term {
	t := newTerm(d, conf, os.Stdout)
	if strings.ToLower(os.Getenv("TERM")) != "dumb" && isatty.IsTerminal(os.Stdout.Fd()) {
		t.stdout = colorable.NewColorableStdout()
		t.colorize = true
	}
	t.line = liner.NewLiner()
	return t
}

func newTerm(d *debugger.Debugger, conf *config.Config, stdout io.Writer) *Term {
	if conf == nil {
		conf = &config.Config{}
	}
	cmds := DebugCommands()
	if conf.Aliases != nil {
		cmds.Merge(conf.Aliases)
	}
	return &Term{
		debugger: d,
		conf:     conf,
		prompt:   "(deet) ",
		cmds:     cmds,
		stdout:   stdout,
		log:      logflags.TerminalLogger(),
	}
}

// Close returns the terminal to its previous mode.
func (t *Term) Close() {
	if t.line != nil {
		t.line.Close()
	}
}

// sigintGuard keeps deet alive when SIGINT arrives while a command is
// blocked on the target. The target runs in its own process group and
// does not see the signal.
func (t *Term) sigintGuard(ch <-chan os.Signal) {
	for range ch {
		fmt.Fprintln(os.Stderr, "received SIGINT, the program can only be stopped from outside the debugger")
	}
}

// Run begins running deet in the terminal.
func (t *Term) Run() (int, error) {
	defer t.Close()

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, syscall.SIGINT)
	defer signal.Stop(ch)
	go t.sigintGuard(ch)

	t.line.SetCtrlCAborts(true)
	t.line.SetCompleter(t.cmds.complete)
	t.loadHistory()

	fmt.Fprintln(t.stdout, "Type 'help' for list of commands.")

	if t.InitFile != "" {
		err := t.cmds.executeFile(t, t.InitFile)
		if err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return 0, nil
			}
			fmt.Fprintf(os.Stderr, "Error executing init file: %s\n", err)
		}
	}

	if t.RunOnStart {
		if err := t.runTarget(t.RunArgs); err != nil {
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}

	for {
		cmdstr, err := t.promptForInput()
		if err != nil {
			switch err {
			case liner.ErrPromptAborted:
				fmt.Fprintln(t.stdout, `Type "quit" to exit`)
				continue
			case io.EOF:
				fmt.Fprintln(t.stdout, "quit")
				// Nothing else can be read, a failed quit ends deet anyway.
				if err := t.cmds.Call("quit", t); err != nil {
					if _, ok := err.(ExitRequestError); ok {
						return 0, nil
					}
					return 1, fmt.Errorf("could not quit: %v", err)
				}
				return 0, nil
			default:
				return 1, fmt.Errorf("prompt for input failed: %v", err)
			}
		}
		if cmdstr == "" {
			continue
		}

		if err := t.cmds.Call(cmdstr, t); err != nil {
			if _, ok := err.(ExitRequestError); ok {
				return 0, nil
			}
			fmt.Fprintf(os.Stderr, "Command failed: %s\n", err)
		}
	}
}

func (t *Term) promptForInput() (string, error) {
	l, err := t.line.Prompt(t.prompt)
	if err != nil {
		return "", err
	}

	l = strings.TrimSpace(l)
	if l != "" {
		t.line.AppendHistory(l)
		t.saveHistory()
	}

	return l, nil
}

func (t *Term) loadHistory() {
	f, err := os.Open(t.conf.HistoryFilePath())
	if err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "Unable to open history file: %v.\n", err)
		}
		return
	}
	defer f.Close()
	if _, err := t.line.ReadHistory(f); err != nil {
		t.log.Errorf("reading history: %v", err)
	}
}

func (t *Term) saveHistory() {
	f, err := os.Create(t.conf.HistoryFilePath())
	if err != nil {
		t.log.Errorf("saving history: %v", err)
		return
	}
	defer f.Close()
	if _, err := t.line.WriteHistory(f); err != nil {
		t.log.Errorf("saving history: %v", err)
	}
}

// highlight wraps str in the escape codes for color when the output is a
// terminal.
func (t *Term) highlight(color int, str string) string {
	if !t.colorize {
		return str
	}
	return fmt.Sprintf(terminalHighlightEscapeCode, color) + str + terminalResetEscapeCode
}
