package proc

// WaitOption selects between a blocking wait and a poll.
type WaitOption int

const (
	// WaitBlock blocks until the process changes state.
	WaitBlock WaitOption = iota
	// WaitNoHang returns ErrNoStatusChange if nothing happened.
	WaitNoHang
)

// Process is a child process running under trace control.
//
// Implementations are not safe for concurrent use; a Process is owned by
// exactly one debugger session.
type Process interface {
	// Pid returns the OS process identifier.
	Pid() int
	// Wait queries the OS for a change in the process state.
	Wait(opt WaitOption) (Status, error)
	// Resume lets the stopped process continue and blocks until the
	// next stop or termination.
	Resume() (Status, error)
	// Kill forcibly terminates the process and reaps it.
	Kill() (Status, error)
	// PC returns the program counter of the stopped process.
	PC() (uint64, error)
	// ReadMemory reads len(data) bytes at addr from the stopped process.
	ReadMemory(addr uint64, data []byte) (int, error)
	// Exited reports whether the process has been reaped.
	Exited() bool
}

// LaunchConfig holds the options used to start a target.
type LaunchConfig struct {
	// WorkingDir is the working directory of the new process.
	WorkingDir string
	// TTY, if set, is the terminal the new process uses for its standard
	// streams and as controlling terminal.
	TTY string
	// DisableASLR disables address space randomization for the target.
	DisableASLR bool
}

// Launcher starts cmd[0] with arguments cmd[1:] under trace control and
// returns it stopped at its first instruction.
type Launcher func(cmd []string, cfg LaunchConfig) (Process, error)

// Location describes where a stopped process is.
type Location struct {
	PC   uint64
	Inst *Instruction
}
