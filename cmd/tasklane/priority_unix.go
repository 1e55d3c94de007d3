//go:build linux || darwin || freebsd || netbsd || openbsd

package main

import "golang.org/x/sys/unix"

// setPriority sets the nice value of the current process.
func setPriority(prio int) error {
	return unix.Setpriority(unix.PRIO_PROCESS, 0, prio)
}
