//go:build darwin || freebsd || netbsd || openbsd || dragonfly

package cli

import "golang.org/x/sys/unix"

const (
	echoGetRequest = unix.TIOCGETA
	echoSetRequest = unix.TIOCSETA
)
