//go:build !linux

package native

import (
	"errors"

	"github.com/deet-dbg/deet/pkg/proc"
)

var ErrNativeBackendDisabled = errors.New("native backend not available on this operating system")

// Launch returns ErrNativeBackendDisabled.
func Launch(_ []string, _ proc.LaunchConfig) (proc.Process, error) {
	return nil, ErrNativeBackendDisabled
}
