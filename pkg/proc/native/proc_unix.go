//go:build linux || darwin || freebsd

package native

import (
	"bytes"
	"debug/elf"
	"fmt"
	"io"
	"os"
	"os/exec"

	isatty "github.com/mattn/go-isatty"

	"github.com/deet-dbg/deet/pkg/proc"
)

func attachProcessToTTY(process *exec.Cmd, tty string) (*os.File, error) {
	f, err := os.OpenFile(tty, os.O_RDWR, 0)
	if err != nil {
		return nil, err
	}
	if !isatty.IsTerminal(f.Fd()) {
		f.Close()
		return nil, fmt.Errorf("%s is not a terminal", f.Name())
	}
	process.Stdin = f
	process.Stdout = f
	process.Stderr = f
	process.SysProcAttr.Setpgid = false
	process.SysProcAttr.Setsid = true
	process.SysProcAttr.Setctty = true

	return f, nil
}

// verifyBinaryFormat checks that exePath is a file with an execute bit
// that the kernel can load: an ELF image or an interpreter script.
func verifyBinaryFormat(exePath string) error {
	f, err := os.Open(exePath)
	if err != nil {
		return err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return err
	}
	if fi.IsDir() || (fi.Mode()&0111) == 0 {
		return proc.ErrNotExecutable
	}

	magic := make([]byte, 2)
	if _, err := io.ReadFull(f, magic); err == nil && bytes.Equal(magic, []byte("#!")) {
		return nil
	}
	if _, err := elf.NewFile(f); err != nil {
		return proc.ErrNotExecutable
	}
	return nil
}
