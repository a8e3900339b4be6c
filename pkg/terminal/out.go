package terminal

import (
	"fmt"

	"github.com/deet-dbg/deet/pkg/proc"
	"github.com/deet-dbg/deet/service/debugger"
)

// printState prints the status a process reached after run or continue.
func (t *Term) printState(state debugger.State) {
	switch {
	case state.Stopped():
		line := fmt.Sprintf("Process %d stopped (signal %s) at %#x", state.Pid, proc.SignalName(state.Signal), state.PC)
		fmt.Fprintln(t.stdout, t.highlight(ansiYellow, line))
		if t.conf.DisassembleOnStop {
			inst, err := t.debugger.Disassemble(state.PC)
			if err != nil {
				t.log.Debugf("could not decode instruction at %#x: %v", state.PC, err)
				return
			}
			fmt.Fprintln(t.stdout, formatInstruction(inst))
		}
	case state.Exited():
		line := fmt.Sprintf("Process %d has exited with status %d", state.Pid, state.ExitCode)
		color := ansiGreen
		if state.ExitCode != 0 {
			color = ansiRed
		}
		fmt.Fprintln(t.stdout, t.highlight(color, line))
	case state.Signaled():
		line := fmt.Sprintf("Process %d was killed by signal %s", state.Pid, proc.SignalName(state.Signal))
		fmt.Fprintln(t.stdout, t.highlight(ansiRed, line))
	default:
		fmt.Fprintf(t.stdout, "Process %d %s\n", state.Pid, state.Status)
	}
}

// printLocation prints the stop location of the current process.
func (t *Term) printLocation(loc proc.Location) {
	if loc.Inst == nil {
		fmt.Fprintf(t.stdout, "=> %#x\n", loc.PC)
		return
	}
	fmt.Fprintf(t.stdout, "=> %s\n", formatInstruction(loc.Inst))
}

func formatInstruction(inst *proc.Instruction) string {
	return fmt.Sprintf("%#x:\t% x\t%s", inst.PC, inst.Bytes, inst.Text)
}
