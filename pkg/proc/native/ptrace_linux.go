package native

import (
	sys "golang.org/x/sys/unix"
)

// ptraceCont executes ptrace PTRACE_CONT
func ptraceCont(tid, sig int) error {
	return sys.PtraceCont(tid, sig)
}

// registersPC returns the program counter held in regs.
func registersPC(regs *sys.PtraceRegs) uint64 {
	return regs.PC()
}
