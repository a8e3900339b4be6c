package main

import (
	"runtime"
	"syscall"
	"time"
)

func init() {
	runtime.LockOSThread()
}

func main() {
	// Only the main thread is traced.
	pid := syscall.Getpid()
	syscall.Tgkill(pid, pid, syscall.SIGUSR1)
	time.Sleep(time.Hour)
}
