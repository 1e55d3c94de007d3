//go:build !(linux || darwin || freebsd || netbsd || openbsd)

package main

import "errors"

func setPriority(int) error {
	return errors.New("process priority is not supported on this platform")
}
