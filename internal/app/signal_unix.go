//go:build !windows

package app

import "golang.org/x/sys/unix"

const supported = true

func terminate(pid int) error {
	return unix.Kill(pid, unix.SIGTERM)
}
