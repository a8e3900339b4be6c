package debugger

import (
	"errors"
	"fmt"
	"io/ioutil"
	"syscall"
)

//lint:file-ignore ST1005 errors here can be capitalized

var ptraceScopeFile = "/proc/sys/kernel/yama/ptrace_scope"

func launchErrorMessage(err error) error {
	fallbackerr := fmt.Errorf("could not start process: %w", err)
	var serr syscall.Errno
	if errors.As(err, &serr) && serr == syscall.EPERM {
		bs, rerr := ioutil.ReadFile(ptraceScopeFile)
		if rerr == nil && len(bs) >= 1 && bs[0] == '3' {
			// Yama documentation: https://www.kernel.org/doc/Documentation/security/Yama.txt
			return fmt.Errorf("Could not start process: tracing is disabled by a kernel security setting, check %s: %w", ptraceScopeFile, err)
		}
	}
	return fallbackerr
}
