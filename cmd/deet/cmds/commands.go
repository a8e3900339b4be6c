package cmds

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/deet-dbg/deet/pkg/config"
	"github.com/deet-dbg/deet/pkg/logflags"
	"github.com/deet-dbg/deet/pkg/proc"
	"github.com/deet-dbg/deet/pkg/terminal"
	"github.com/deet-dbg/deet/pkg/version"
	"github.com/deet-dbg/deet/service/debugger"
)

var (
	// log is whether to log debug statements.
	log bool
	// logOutput is a comma separated list of components that should produce debug output.
	logOutput string
	// logDest is the file path or file descriptor where logs should go.
	logDest string
	// initFile is the path to initialization file.
	initFile string
	// workingDir is the working directory for running the program.
	workingDir string
	// tty is used to provide an alternate TTY for the program you wish to debug.
	tty string
	// disableASLR disables address space randomization of the program.
	disableASLR bool
	// runOnStart starts the program before the first prompt.
	runOnStart bool

	// rootCommand is the root of the command tree.
	rootCommand *cobra.Command
)

const deetCommandLongDesc = `deet is a minimal debugger for native programs.

deet starts the program under trace control and lets you run it, continue
it after every stop and inspect where it stopped. It reports the signal
that stopped the program, its exit status or the signal that killed it.

Pass arguments to the program you are debugging using ` + "`--`" + `, for example:

` + "`deet --run ./server -- --config conf/config.toml`"

// New returns an initialized command tree.
func New() *cobra.Command {
	// Main deet root command.
	rootCommand = &cobra.Command{
		Use:   "deet [flags] <path/to/binary> [-- args]",
		Short: "deet is a minimal debugger for native programs.",
		Long:  deetCommandLongDesc,
		Args: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return errors.New("you must provide a path to a binary")
			}
			return nil
		},
		Run: func(cmd *cobra.Command, args []string) {
			os.Exit(execute(args, cmd.Flags()))
		},
	}

	rootCommand.PersistentFlags().BoolVarP(&log, "log", "", false, "Enable debugger logging.")
	rootCommand.PersistentFlags().StringVarP(&logOutput, "log-output", "", "", `Comma separated list of components that should produce debug output: debugger, proc, terminal.`)
	rootCommand.PersistentFlags().StringVarP(&logDest, "log-dest", "", "", "Writes logs to the specified file or file descriptor.")
	rootCommand.PersistentFlags().StringVar(&initFile, "init", "", "Init file, executed by the terminal before the first prompt.")
	rootCommand.PersistentFlags().StringVar(&workingDir, "wd", "", "Working directory for running the program.")
	rootCommand.PersistentFlags().StringVar(&tty, "tty", "", "TTY to use for the target program.")
	rootCommand.PersistentFlags().BoolVar(&disableASLR, "disable-aslr", false, "Disables address space randomization of the program.")
	rootCommand.PersistentFlags().BoolVar(&runOnStart, "run", false, "Start the program with the arguments after the binary before the first prompt.")

	// 'version' subcommand.
	versionCommand := &cobra.Command{
		Use:   "version",
		Short: "Prints version.",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "deet debugger\n%s\n", version.DeetVersion)
			if log {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\n", version.BuildInfo())
			}
		},
	}
	rootCommand.AddCommand(versionCommand)

	return rootCommand
}

// newDebuggerConfig merges the config file with the command line flags,
// flags take precedence when they are set.
func newDebuggerConfig(conf *config.Config, flags *pflag.FlagSet) (*debugger.Config, error) {
	flavour, err := proc.ParseAssemblyFlavour(conf.DisassembleFlavor)
	if err != nil {
		return nil, err
	}
	aslr := conf.DisableASLR
	if flags != nil && flags.Changed("disable-aslr") {
		aslr = disableASLR
	}
	return &debugger.Config{
		WorkingDir:      workingDir,
		TTY:             tty,
		DisableASLR:     aslr,
		Flavour:         flavour,
		DisasmCacheSize: conf.DisasmCacheSize,
	}, nil
}

func execute(processArgs []string, flags *pflag.FlagSet) int {
	if err := logflags.Setup(log, logOutput, logDest); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}
	defer logflags.Close()

	conf, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: %v, using the default configuration\n", err)
		conf = &config.Config{}
	}

	dconf, err := newDebuggerConfig(conf, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if len(processArgs) > 1 && !runOnStart {
		fmt.Fprint(os.Stderr, "Warning: program arguments are only used with --run\n")
	}

	d := debugger.New(processArgs[0], dconf)
	term := terminal.New(d, conf)
	term.InitFile = initFile
	term.RunOnStart = runOnStart
	term.RunArgs = processArgs[1:]
	status, err := term.Run()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
	}
	return status
}
