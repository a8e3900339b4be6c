//go:build !linux

package debugger

import "fmt"

func launchErrorMessage(err error) error {
	return fmt.Errorf("could not start process: %w", err)
}
