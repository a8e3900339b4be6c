// Package native implements proc.Process on top of the operating system's
// process tracing facility.
package native

import (
	"os"
	"runtime"

	"github.com/sirupsen/logrus"

	"github.com/deet-dbg/deet/pkg/logflags"
	"github.com/deet-dbg/deet/pkg/proc"
)

// nativeProcess represents a child process launched under trace control.
type nativeProcess struct {
	pid    int
	osProc *os.Process
	ctty   *os.File

	ptraceChan     chan func()
	ptraceDoneChan chan interface{}

	// foreground is set when the process shares deet's terminal and is
	// made its foreground process group while it runs.
	foreground bool
	ttyFd      int

	exited     bool
	exitStatus proc.Status

	log *logrus.Entry
}

// newProcess returns an initialized nativeProcess. Before returning,
// it will also launch a goroutine in order to handle ptrace(2)
// functions. For more information, see the documentation on
// `handlePtraceFuncs`.
func newProcess(pid int) *nativeProcess {
	dbp := &nativeProcess{
		pid:            pid,
		ptraceChan:     make(chan func()),
		ptraceDoneChan: make(chan interface{}),
		log:            logflags.ProcLogger(),
	}
	go dbp.handlePtraceFuncs()
	return dbp
}

// Pid returns the process pid.
func (dbp *nativeProcess) Pid() int {
	return dbp.pid
}

// Exited returns true if the process has been reaped.
func (dbp *nativeProcess) Exited() bool {
	return dbp.exited
}

func (dbp *nativeProcess) handlePtraceFuncs() {
	// We must ensure here that we are running on the same thread during
	// while invoking the ptrace(2) syscall. This is due to the fact that ptrace(2) expects
	// all commands after PTRACE_TRACEME to come from the thread that forked the tracee.
	runtime.LockOSThread()

	for fn := range dbp.ptraceChan {
		fn()
		dbp.ptraceDoneChan <- nil
	}
	runtime.UnlockOSThread()
}

func (dbp *nativeProcess) execPtraceFunc(fn func()) {
	dbp.ptraceChan <- fn
	<-dbp.ptraceDoneChan
}

// postExit records the final status of the process and stops the ptrace
// goroutine. It must not be called from inside execPtraceFunc.
func (dbp *nativeProcess) postExit(status proc.Status) {
	if dbp.exited {
		return
	}
	dbp.exited = true
	dbp.exitStatus = status
	dbp.release()
	dbp.log.Debugf("process %d %s", dbp.pid, status)
}

// release stops the ptrace goroutine and closes the resources held on
// behalf of the process.
func (dbp *nativeProcess) release() {
	close(dbp.ptraceChan)
	if dbp.osProc != nil {
		dbp.osProc.Release()
	}
	if dbp.ctty != nil {
		dbp.ctty.Close()
	}
}

func (dbp *nativeProcess) errExited() error {
	return proc.ErrProcessExited{Pid: dbp.pid, Status: dbp.exitStatus}
}
