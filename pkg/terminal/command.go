// Package terminal implements functions for responding to user
// input and dispatching to appropriate backend commands.
package terminal

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/cosiner/argv"
	"github.com/derekparker/trie"
)

type cmdfunc func(t *Term, args string) error

type command struct {
	aliases        []string
	builtinAliases []string
	helpMsg        string
	cmdFn          cmdfunc
}

// Returns true if the command string matches one of the aliases for this command
func (c command) match(cmdstr string) bool {
	for _, v := range c.aliases {
		if v == cmdstr {
			return true
		}
	}
	return false
}

// Commands represents the commands for the deet terminal.
type Commands struct {
	cmds []command
	// names holds every alias for completion.
	names *trie.Trie
}

// DebugCommands returns a Commands struct with default commands defined.
func DebugCommands() *Commands {
	c := &Commands{}

	c.cmds = []command{
		{aliases: []string{"help", "h"}, cmdFn: c.help, helpMsg: `Prints the help message.

	help [command]

Type "help" followed by the name of a command for more information about it.`},
		{aliases: []string{"run", "r"}, cmdFn: run, helpMsg: `Starts the program.

	run [arg...]

Kills the program being debugged, if any, and starts a new instance with
the given arguments. Arguments are split like a shell would, quotes
included. The program runs until it stops on a signal or terminates.`},
		{aliases: []string{"continue", "cont", "c"}, cmdFn: cont, helpMsg: `Resumes the program.

	continue

The program runs until it stops on a signal or terminates.`},
		{aliases: []string{"backtrace", "bt", "back", "where"}, cmdFn: backtrace, helpMsg: `Prints the current location.

	backtrace

Only the program counter and the instruction there are known.`},
		{aliases: []string{"quit", "q"}, cmdFn: exitCommand, helpMsg: `Exits the debugger.

	quit

Kills the program being debugged, if any.`},
	}

	sort.Sort(ByFirstAlias(c.cmds))
	c.buildNames()
	return c
}

// ByFirstAlias will sort by the first
// alias of a command.
type ByFirstAlias []command

func (a ByFirstAlias) Len() int           { return len(a) }
func (a ByFirstAlias) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a ByFirstAlias) Less(i, j int) bool { return a[i].aliases[0] < a[j].aliases[0] }

func (c *Commands) buildNames() {
	c.names = trie.New()
	for _, cmd := range c.cmds {
		for _, alias := range cmd.aliases {
			c.names.Add(alias, nil)
		}
	}
}

// complete returns the command names starting with line. Arguments are
// not completed.
func (c *Commands) complete(line string) []string {
	if strings.ContainsAny(line, " \t") {
		return nil
	}
	names := c.names.PrefixSearch(strings.ToLower(line))
	sort.Strings(names)
	return names
}

// Find will look up the command function for the given command input.
// If it cannot find the command it will default to noCmdAvailable().
func (c *Commands) Find(cmdstr string) cmdfunc {
	for _, v := range c.cmds {
		if v.match(cmdstr) {
			return v.cmdFn
		}
	}

	return noCmdAvailable(cmdstr)
}

// Call takes a command to execute.
func (c *Commands) Call(cmdstr string, t *Term) error {
	vals := strings.SplitN(strings.TrimSpace(cmdstr), " ", 2)
	cmdname := vals[0]
	var args string
	if len(vals) > 1 {
		args = strings.TrimSpace(vals[1])
	}
	t.log.Debugf("command %q args %q", cmdname, args)
	return c.Find(cmdname)(t, args)
}

// Merge takes aliases defined in the config struct and merges them with the default aliases.
func (c *Commands) Merge(allAliases map[string][]string) {
	for i := range c.cmds {
		if c.cmds[i].builtinAliases != nil {
			c.cmds[i].aliases = append(c.cmds[i].aliases[:0], c.cmds[i].builtinAliases...)
		}
	}
	for i := range c.cmds {
		if aliases, ok := allAliases[c.cmds[i].aliases[0]]; ok {
			if c.cmds[i].builtinAliases == nil {
				c.cmds[i].builtinAliases = make([]string, len(c.cmds[i].aliases))
				copy(c.cmds[i].builtinAliases, c.cmds[i].aliases)
			}
			c.cmds[i].aliases = append(c.cmds[i].aliases, aliases...)
		}
	}
	c.buildNames()
}

var noCmdError = errors.New("command not available")

func noCmdAvailable(cmdname string) cmdfunc {
	return func(t *Term, args string) error {
		return fmt.Errorf("unrecognized command %q", cmdname)
	}
}

func (c *Commands) help(t *Term, args string) error {
	if args != "" {
		for _, cmd := range c.cmds {
			if cmd.match(args) {
				fmt.Fprintln(t.stdout, cmd.helpMsg)
				return nil
			}
		}
		return noCmdError
	}

	fmt.Fprintln(t.stdout, "The following commands are available:")
	w := new(tabwriter.Writer)
	w.Init(t.stdout, 0, 8, 0, '-', 0)
	for _, cmd := range c.cmds {
		h := cmd.helpMsg
		if idx := strings.Index(h, "\n"); idx >= 0 {
			h = h[:idx]
		}
		if len(cmd.aliases) > 1 {
			fmt.Fprintf(w, "    %s (alias: %s) \t %s\n", cmd.aliases[0], strings.Join(cmd.aliases[1:], " | "), h)
		} else {
			fmt.Fprintf(w, "    %s \t %s\n", cmd.aliases[0], h)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintln(t.stdout)
	fmt.Fprintln(t.stdout, "Type help followed by a command for full documentation.")
	return nil
}

func parseArgs(args string) ([]string, error) {
	if args == "" {
		return nil, nil
	}
	v, err := argv.Argv(args,
		func(s string) (string, error) {
			return "", fmt.Errorf("Backtick not supported in '%s'", s)
		},
		nil)
	if err != nil {
		return nil, err
	}
	if len(v) != 1 {
		return nil, fmt.Errorf("illegal commandline '%s'", args)
	}
	return v[0], nil
}

func run(t *Term, args string) error {
	newArgs, err := parseArgs(args)
	if err != nil {
		return err
	}
	return t.runTarget(newArgs)
}

func (t *Term) runTarget(args []string) error {
	if pid := t.debugger.ProcessPid(); pid != 0 {
		fmt.Fprintf(t.stdout, "Killing running inferior (pid %d)\n", pid)
	}
	state, err := t.debugger.Run(args)
	if err != nil {
		return err
	}
	t.printState(state)
	return nil
}

func cont(t *Term, args string) error {
	state, err := t.debugger.Continue()
	if err != nil {
		return err
	}
	t.printState(state)
	return nil
}

func backtrace(t *Term, args string) error {
	loc, err := t.debugger.Location()
	if err != nil {
		return err
	}
	t.printLocation(loc)
	return nil
}

// ExitRequestError is returned when the user
// exits deet.
type ExitRequestError struct{}

func (ere ExitRequestError) Error() string {
	return ""
}

func exitCommand(t *Term, args string) error {
	if pid := t.debugger.ProcessPid(); pid != 0 {
		fmt.Fprintf(t.stdout, "Killing running inferior (pid %d)\n", pid)
	}
	if err := t.debugger.Quit(); err != nil {
		return err
	}
	return ExitRequestError{}
}

func (c *Commands) executeFile(t *Term, name string) error {
	fh, err := os.Open(name)
	if err != nil {
		return err
	}
	defer fh.Close()

	scanner := bufio.NewScanner(fh)
	lineno := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		lineno++

		if line == "" || line[0] == '#' {
			continue
		}

		if err := c.Call(line, t); err != nil {
			if _, isExitRequest := err.(ExitRequestError); isExitRequest {
				return err
			}
			fmt.Fprintf(t.stdout, "%s:%d: %v\n", name, lineno, err)
		}
	}

	return scanner.Err()
}
