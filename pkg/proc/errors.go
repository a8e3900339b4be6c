package proc

import (
	"errors"
	"fmt"
)

var (
	// ErrNotExecutable is returned when the target is not an executable file.
	ErrNotExecutable = errors.New("not an executable file")

	// ErrNoStatusChange is returned by a non-blocking wait when the process
	// has not changed state.
	ErrNoStatusChange = errors.New("process state has not changed")
)

// ErrProcessExited is returned by operations on a process that has already
// been reaped.
type ErrProcessExited struct {
	Pid    int
	Status Status
}

func (pe ErrProcessExited) Error() string {
	return fmt.Sprintf("Process %d has %s", pe.Pid, pe.Status)
}

// SpawnError indicates the target could not be created as an OS process.
type SpawnError struct {
	Path string
	Err  error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("could not spawn %s: %v", e.Path, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

// TraceInitError indicates the child was created but did not reach the
// post-exec trace stop. Either Err is set (the initial wait failed) or
// Status holds the unexpected initial status.
type TraceInitError struct {
	Pid    int
	Status Status
	Err    error
}

func (e *TraceInitError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("waiting for target execve failed (pid %d): %v", e.Pid, e.Err)
	}
	return fmt.Sprintf("unexpected initial status for pid %d: %s", e.Pid, e.Status)
}

func (e *TraceInitError) Unwrap() error { return e.Err }

// WaitError indicates that querying or resuming the process failed.
type WaitError struct {
	Pid int
	Op  string
	Err error
}

func (e *WaitError) Error() string {
	return fmt.Sprintf("%s pid %d: %v", e.Op, e.Pid, e.Err)
}

func (e *WaitError) Unwrap() error { return e.Err }

// KillError indicates the forcible termination or the final reap failed.
type KillError struct {
	Pid int
	Err error
}

func (e *KillError) Error() string {
	return fmt.Sprintf("could not kill pid %d: %v", e.Pid, e.Err)
}

func (e *KillError) Unwrap() error { return e.Err }

// UnexpectedWaitStatusError is returned when the OS reports a wait status
// that is neither an exit, a termination by signal nor a signal stop.
// It is not a WaitError: the process state is unknown and the handle
// must not be used again.
type UnexpectedWaitStatusError struct {
	Pid int
	Raw uint32
}

func (e *UnexpectedWaitStatusError) Error() string {
	return fmt.Sprintf("wait returned unexpected status %#x for pid %d", e.Raw, e.Pid)
}
