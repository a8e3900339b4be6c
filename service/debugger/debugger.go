package debugger

import (
	"errors"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/deet-dbg/deet/pkg/logflags"
	"github.com/deet-dbg/deet/pkg/proc"
	"github.com/deet-dbg/deet/pkg/proc/native"
)

// ErrNoProcess is returned by operations that need a running program.
var ErrNoProcess = errors.New("no program is running")

// State is the status of a process after a run or continue.
type State struct {
	// Pid of the process the status belongs to.
	Pid int
	proc.Status
}

// Debugger owns at most one traced process of a fixed target executable
// and serializes the run, continue and quit operations against it.
//
// A Debugger is used from a single goroutine.
type Debugger struct {
	config *Config
	target string
	// process is nil when no program is running.
	process proc.Process
	disasm  *proc.Disassembler
	log     *logrus.Entry
}

// Config provides the configuration to start a Debugger.
type Config struct {
	// WorkingDir is working directory of the new process.
	WorkingDir string

	// TTY is passed to the launcher, see proc.LaunchConfig.
	TTY string

	// DisableASLR disables address space randomization of the target.
	DisableASLR bool

	// Flavour is the syntax of decoded instructions.
	Flavour proc.AssemblyFlavour

	// DisasmCacheSize is the number of decoded instructions to keep.
	DisasmCacheSize int

	// Launcher starts the target, native.Launch if nil.
	Launcher proc.Launcher
}

// New creates a new Debugger for the executable at target.
func New(target string, config *Config) *Debugger {
	if config == nil {
		config = &Config{}
	}
	d := &Debugger{
		config: config,
		target: target,
		log:    logflags.DebuggerLogger(),
	}
	if d.config.Launcher == nil {
		d.config.Launcher = native.Launch
	}
	disasm, err := proc.NewDisassembler(runtime.GOARCH, config.Flavour, config.DisasmCacheSize)
	if err != nil {
		d.log.Warnf("instruction decoding disabled: %v", err)
	}
	d.disasm = disasm
	return d
}

// ProcessPid returns the PID of the process
// the debugger is debugging, 0 if there is none.
func (d *Debugger) ProcessPid() int {
	if d.process == nil {
		return 0
	}
	return d.process.Pid()
}

// Running returns true if the debugger owns a process.
func (d *Debugger) Running() bool {
	return d.process != nil
}

// Run starts a new instance of the target with args, killing the current
// one first, and resumes it until its first stop or exit.
//
// If the current process can not be killed it is kept and nothing is
// launched. If the launch fails no process is owned afterwards.
func (d *Debugger) Run(args []string) (State, error) {
	if d.process != nil {
		if err := d.kill(); err != nil {
			return State{}, err
		}
	}

	cmd := append([]string{d.target}, args...)
	d.log.Infof("launching process with args: %v", cmd)
	p, err := d.config.Launcher(cmd, proc.LaunchConfig{
		WorkingDir:  d.config.WorkingDir,
		TTY:         d.config.TTY,
		DisableASLR: d.config.DisableASLR,
	})
	if err != nil {
		return State{}, launchErrorMessage(err)
	}
	d.process = p
	return d.resume()
}

// Continue resumes the current process and returns its next status.
func (d *Debugger) Continue() (State, error) {
	if d.process == nil {
		return State{}, ErrNoProcess
	}
	return d.resume()
}

// Quit kills the current process, if any. When it returns an error the
// process is still owned and the session must not end.
func (d *Debugger) Quit() error {
	if d.process == nil {
		return nil
	}
	return d.kill()
}

// Location returns the program counter of the stopped process and, when
// it can be decoded, the instruction there.
func (d *Debugger) Location() (proc.Location, error) {
	if d.process == nil {
		return proc.Location{}, ErrNoProcess
	}
	pc, err := d.process.PC()
	if err != nil {
		return proc.Location{}, &proc.WaitError{Pid: d.process.Pid(), Op: "read registers of", Err: err}
	}
	loc := proc.Location{PC: pc}
	loc.Inst, err = d.Disassemble(pc)
	if err != nil {
		d.log.Debugf("could not decode instruction at %#x: %v", pc, err)
	}
	return loc, nil
}

// Disassemble decodes the instruction at pc in the current process.
func (d *Debugger) Disassemble(pc uint64) (*proc.Instruction, error) {
	if d.process == nil {
		return nil, ErrNoProcess
	}
	if d.disasm == nil {
		return nil, proc.ErrUnsupportedArch
	}
	return d.disasm.Decode(d.process.Pid(), d.process, pc)
}

func (d *Debugger) resume() (State, error) {
	pid := d.process.Pid()
	status, err := d.process.Resume()
	if err != nil {
		var unexpected *proc.UnexpectedWaitStatusError
		if errors.As(err, &unexpected) {
			// The state of the process is unknown, give up on it.
			d.log.Errorf("abandoning pid %d: %v", pid, err)
			if _, kerr := d.process.Kill(); kerr != nil {
				d.log.Errorf("killing pid %d: %v", pid, kerr)
			}
			d.drop()
			return State{}, err
		}
		// The handle is kept: the process may still exist.
		d.log.Errorf("resuming pid %d: %v", pid, err)
		return State{}, err
	}
	d.log.Debugf("pid %d %s", pid, status)
	if status.Terminal() {
		d.drop()
	}
	return State{Pid: pid, Status: status}, nil
}

func (d *Debugger) kill() error {
	pid := d.process.Pid()
	d.log.Infof("killing pid %d", pid)
	status, err := d.process.Kill()
	if err != nil {
		return err
	}
	d.log.Debugf("pid %d %s", pid, status)
	d.drop()
	return nil
}

func (d *Debugger) drop() {
	if d.disasm != nil {
		d.disasm.Forget(d.process.Pid())
	}
	d.process = nil
}
