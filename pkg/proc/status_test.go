package proc

import (
	"errors"
	"fmt"
	"syscall"
	"testing"
)

func TestStatusVariants(t *testing.T) {
	tests := []struct {
		status                    Status
		stopped, exited, signaled bool
		terminal                  bool
		str                       string
	}{
		{Stopped(syscall.SIGTRAP, 0x401000), true, false, false, false, "stopped (signal SIGTRAP) at 0x401000"},
		{Exited(3), false, true, false, true, "exited with status 3"},
		{Signaled(syscall.SIGKILL), false, false, true, true, "killed by signal SIGKILL"},
	}
	for _, tc := range tests {
		if tc.status.Stopped() != tc.stopped || tc.status.Exited() != tc.exited || tc.status.Signaled() != tc.signaled {
			t.Errorf("%v: wrong variant predicates", tc.status)
		}
		if tc.status.Terminal() != tc.terminal {
			t.Errorf("%v: Terminal() = %v", tc.status, tc.status.Terminal())
		}
		if got := tc.status.String(); got != tc.str {
			t.Errorf("expected %q got %q", tc.str, got)
		}
	}
	if (Status{}).String() != "unknown status" {
		t.Errorf("zero Status should not render as a variant")
	}
}

func TestErrorsUnwrap(t *testing.T) {
	base := errors.New("boom")
	for _, err := range []error{
		&SpawnError{Path: "/bin/x", Err: base},
		&TraceInitError{Pid: 1, Err: base},
		&WaitError{Pid: 1, Op: "wait", Err: base},
		&KillError{Pid: 1, Err: base},
	} {
		if !errors.Is(fmt.Errorf("wrapped: %w", err), base) {
			t.Errorf("%T does not unwrap to its cause", err)
		}
	}

	exited := ErrProcessExited{Pid: 12, Status: Exited(0)}
	if got := exited.Error(); got != "Process 12 has exited with status 0" {
		t.Errorf("unexpected message %q", got)
	}
	initErr := &TraceInitError{Pid: 3, Status: Stopped(syscall.SIGSEGV, 0x10)}
	if got := initErr.Error(); got != "unexpected initial status for pid 3: stopped (signal SIGSEGV) at 0x10" {
		t.Errorf("unexpected message %q", got)
	}
}
