//go:build linux

package cli

import "golang.org/x/sys/unix"

const (
	echoGetRequest = unix.TCGETS
	echoSetRequest = unix.TCSETS
)
