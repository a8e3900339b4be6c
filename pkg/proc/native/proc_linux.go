package native

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"os/signal"
	"syscall"

	isatty "github.com/mattn/go-isatty"
	sys "golang.org/x/sys/unix"

	"github.com/deet-dbg/deet/pkg/proc"
)

const (
	personalityGetPersonality = 0xffffffff // argument to pass to personality syscall to get the current personality
	_ADDR_NO_RANDOMIZE        = 0x0040000  // ADDR_NO_RANDOMIZE linux constant
)

var _ proc.Process = (*nativeProcess)(nil)

// Launch creates and begins debugging a new process. First entry in
// `cmd` is the program to run, and then rest are the arguments
// to be supplied to that process. The returned process is stopped at
// the trap delivered after execve.
func Launch(cmd []string, cfg proc.LaunchConfig) (proc.Process, error) {
	if len(cmd) == 0 {
		return nil, &proc.SpawnError{Err: errors.New("no command")}
	}
	if err := verifyBinaryFormat(cmd[0]); err != nil {
		return nil, &proc.SpawnError{Path: cmd[0], Err: err}
	}

	var (
		process *exec.Cmd
		err     error
	)

	// exec.(*Process).Start will fail if we try to send a process to
	// foreground but we are not attached to a terminal.
	foreground := cfg.TTY == "" && isatty.IsTerminal(os.Stdin.Fd())

	dbp := newProcess(0)
	dbp.foreground = foreground
	dbp.ttyFd = int(os.Stdin.Fd())
	dbp.execPtraceFunc(func() {
		if cfg.DisableASLR {
			oldPersonality, _, err := syscall.Syscall(sys.SYS_PERSONALITY, personalityGetPersonality, 0, 0)
			if err == syscall.Errno(0) {
				newPersonality := oldPersonality | _ADDR_NO_RANDOMIZE
				syscall.Syscall(sys.SYS_PERSONALITY, newPersonality, 0, 0)
				defer syscall.Syscall(sys.SYS_PERSONALITY, oldPersonality, 0, 0)
			}
		}

		process = exec.Command(cmd[0])
		process.Args = cmd
		process.Stdin = os.Stdin
		process.Stdout = os.Stdout
		process.Stderr = os.Stderr
		process.SysProcAttr = &syscall.SysProcAttr{
			Ptrace:     true,
			Setpgid:    true,
			Foreground: foreground,
		}
		if foreground {
			signal.Ignore(syscall.SIGTTOU, syscall.SIGTTIN)
		}
		if cfg.TTY != "" {
			dbp.ctty, err = attachProcessToTTY(process, cfg.TTY)
			if err != nil {
				return
			}
		}
		if cfg.WorkingDir != "" {
			process.Dir = cfg.WorkingDir
		}
		err = process.Start()
	})
	if err != nil {
		dbp.restoreForeground()
		dbp.release()
		return nil, &proc.SpawnError{Path: cmd[0], Err: err}
	}
	dbp.pid = process.Process.Pid
	dbp.osProc = process.Process
	dbp.log.Debugf("launched %q as pid %d", cmd, dbp.pid)

	status, err := dbp.Wait(proc.WaitBlock)
	dbp.restoreForeground()
	if err != nil {
		dbp.abandon()
		return nil, &proc.TraceInitError{Pid: dbp.pid, Err: err}
	}
	if err := checkInitialStop(dbp.pid, status); err != nil {
		// Stopped by something other than the exec trap: nobody else
		// will reap it.
		dbp.abandon()
		return nil, err
	}
	return dbp, nil
}

// checkInitialStop returns a TraceInitError unless status is the trap
// delivered after execve.
func checkInitialStop(pid int, status proc.Status) error {
	if status.Stopped() && status.Signal == sys.SIGTRAP {
		return nil
	}
	return &proc.TraceInitError{Pid: pid, Status: status}
}

// giveForeground makes the process group of the target the foreground
// group of the terminal, so that it can read from it.
func (dbp *nativeProcess) giveForeground() {
	if !dbp.foreground {
		return
	}
	if err := sys.IoctlSetPointerInt(dbp.ttyFd, sys.TIOCSPGRP, dbp.pid); err != nil {
		dbp.log.Errorf("could not move pid %d to the foreground: %v", dbp.pid, err)
	}
}

// restoreForeground takes the terminal back for deet.
func (dbp *nativeProcess) restoreForeground() {
	if !dbp.foreground {
		return
	}
	if err := sys.IoctlSetPointerInt(dbp.ttyFd, sys.TIOCSPGRP, sys.Getpgrp()); err != nil {
		dbp.log.Errorf("could not take back the terminal: %v", err)
	}
}

// abandon kills and reaps a process that will not be handed to a caller.
func (dbp *nativeProcess) abandon() {
	if dbp.exited {
		return
	}
	if _, err := dbp.Kill(); err != nil {
		dbp.log.Errorf("could not kill pid %d after failed launch: %v", dbp.pid, err)
		dbp.postExit(proc.Status{})
	}
}

// Wait waits for the process to change state and translates the result.
func (dbp *nativeProcess) Wait(opt proc.WaitOption) (proc.Status, error) {
	if dbp.exited {
		return proc.Status{}, &proc.WaitError{Pid: dbp.pid, Op: "wait", Err: dbp.errExited()}
	}
	options := sys.WALL
	if opt == proc.WaitNoHang {
		options |= sys.WNOHANG
	}
	var (
		ws   sys.WaitStatus
		wpid int
		err  error
	)
	dbp.execPtraceFunc(func() { wpid, err = sys.Wait4(dbp.pid, &ws, options, nil) })
	if err != nil {
		return proc.Status{}, &proc.WaitError{Pid: dbp.pid, Op: "wait", Err: err}
	}
	if wpid == 0 {
		return proc.Status{}, proc.ErrNoStatusChange
	}
	return dbp.translateWaitStatus(ws)
}

func (dbp *nativeProcess) translateWaitStatus(ws sys.WaitStatus) (proc.Status, error) {
	switch {
	case ws.Exited():
		status := proc.Exited(ws.ExitStatus())
		dbp.postExit(status)
		return status, nil
	case ws.Signaled():
		status := proc.Signaled(ws.Signal())
		dbp.postExit(status)
		return status, nil
	case ws.Stopped():
		pc, err := dbp.PC()
		if err != nil {
			return proc.Status{}, &proc.WaitError{Pid: dbp.pid, Op: "read registers of", Err: err}
		}
		return proc.Stopped(ws.StopSignal(), pc), nil
	}
	return proc.Status{}, &proc.UnexpectedWaitStatusError{Pid: dbp.pid, Raw: uint32(ws)}
}

// Resume continues the process without delivering a signal and waits for
// the next event.
func (dbp *nativeProcess) Resume() (proc.Status, error) {
	if dbp.exited {
		return proc.Status{}, &proc.WaitError{Pid: dbp.pid, Op: "continue", Err: dbp.errExited()}
	}
	dbp.giveForeground()
	defer dbp.restoreForeground()
	var err error
	dbp.execPtraceFunc(func() { err = ptraceCont(dbp.pid, 0) })
	if err != nil {
		return proc.Status{}, &proc.WaitError{Pid: dbp.pid, Op: "continue", Err: err}
	}
	return dbp.Wait(proc.WaitBlock)
}

// Kill sends SIGKILL to the process group and reaps the process.
func (dbp *nativeProcess) Kill() (proc.Status, error) {
	if dbp.exited {
		return proc.Status{}, &proc.KillError{Pid: dbp.pid, Err: dbp.errExited()}
	}
	if err := sys.Kill(-dbp.pid, sys.SIGKILL); err != nil {
		// The group may be gone while the leader is still around.
		if err := sys.Kill(dbp.pid, sys.SIGKILL); err != nil {
			return proc.Status{}, &proc.KillError{Pid: dbp.pid, Err: fmt.Errorf("could not deliver signal: %v", err)}
		}
	}
	for {
		var (
			ws  sys.WaitStatus
			err error
		)
		dbp.execPtraceFunc(func() { _, err = sys.Wait4(dbp.pid, &ws, sys.WALL, nil) })
		if err != nil {
			return proc.Status{}, &proc.KillError{Pid: dbp.pid, Err: err}
		}
		// Stops reported before the kill lands are skipped.
		if ws.Exited() || ws.Signaled() {
			status, _ := dbp.translateWaitStatus(ws)
			return status, nil
		}
	}
}

// PC returns the value of the program counter.
func (dbp *nativeProcess) PC() (uint64, error) {
	if dbp.exited {
		return 0, dbp.errExited()
	}
	var (
		regs sys.PtraceRegs
		err  error
	)
	dbp.execPtraceFunc(func() { err = sys.PtraceGetRegs(dbp.pid, &regs) })
	if err != nil {
		return 0, err
	}
	return registersPC(&regs), nil
}

// ReadMemory reads len(data) bytes at addr.
func (dbp *nativeProcess) ReadMemory(addr uint64, data []byte) (int, error) {
	if dbp.exited {
		return 0, dbp.errExited()
	}
	if len(data) == 0 {
		return 0, nil
	}
	var (
		n   int
		err error
	)
	dbp.execPtraceFunc(func() { n, err = sys.PtracePeekData(dbp.pid, uintptr(addr), data) })
	return n, err
}
