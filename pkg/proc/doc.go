// Package proc is a low-level package that provides methods to manipulate
// the process we are debugging.
//
// proc defines:
// * the Process interface implemented by the tracing backends
// * the Status reported every time the process stops or terminates
// * the errors returned by launch, wait and kill
// * a cached instruction decoder for the stop location
package proc
