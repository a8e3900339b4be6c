package proc

import (
	"fmt"
	"syscall"

	sys "golang.org/x/sys/unix"
)

// StatusKind identifies which variant of Status a wait produced.
type StatusKind uint8

const (
	// StatusStopped means the process is paused under trace control.
	StatusStopped StatusKind = iota + 1
	// StatusExited means the process terminated normally.
	StatusExited
	// StatusSignaled means the process was terminated by an uncaught signal.
	StatusSignaled
)

func (k StatusKind) String() string {
	switch k {
	case StatusStopped:
		return "stopped"
	case StatusExited:
		return "exited"
	case StatusSignaled:
		return "signaled"
	}
	return fmt.Sprintf("StatusKind(%d)", uint8(k))
}

// Status is the result of waiting on a traced process.
// Only the fields relevant to Kind are set:
//   - StatusStopped: Signal and PC
//   - StatusExited: ExitCode
//   - StatusSignaled: Signal
type Status struct {
	Kind     StatusKind
	Signal   syscall.Signal
	PC       uint64
	ExitCode int
}

// Stopped returns a Status for a process stopped by sig at pc.
func Stopped(sig syscall.Signal, pc uint64) Status {
	return Status{Kind: StatusStopped, Signal: sig, PC: pc}
}

// Exited returns a Status for a process that exited with code.
func Exited(code int) Status {
	return Status{Kind: StatusExited, ExitCode: code}
}

// Signaled returns a Status for a process killed by sig.
func Signaled(sig syscall.Signal) Status {
	return Status{Kind: StatusSignaled, Signal: sig}
}

// Stopped reports whether the process is paused under trace control.
func (s Status) Stopped() bool { return s.Kind == StatusStopped }

// Exited reports whether the process terminated normally.
func (s Status) Exited() bool { return s.Kind == StatusExited }

// Signaled reports whether the process was killed by a signal.
func (s Status) Signaled() bool { return s.Kind == StatusSignaled }

// Terminal returns true if the process no longer exists.
func (s Status) Terminal() bool { return s.Exited() || s.Signaled() }

func (s Status) String() string {
	switch s.Kind {
	case StatusStopped:
		return fmt.Sprintf("stopped (signal %s) at %#x", SignalName(s.Signal), s.PC)
	case StatusExited:
		return fmt.Sprintf("exited with status %d", s.ExitCode)
	case StatusSignaled:
		return fmt.Sprintf("killed by signal %s", SignalName(s.Signal))
	}
	return "unknown status"
}

// SignalName returns the conventional name of sig, e.g. "SIGTRAP".
func SignalName(sig syscall.Signal) string {
	if name := sys.SignalName(sig); name != "" {
		return name
	}
	return fmt.Sprintf("signal %d", int(sig))
}
