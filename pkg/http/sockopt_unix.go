//go:build unix

package http

import (
	"syscall"

	"golang.org/x/sys/unix"
)

func setReuseAddr(rawConn syscall.RawConn) (err error) {
	cerr := rawConn.Control(func(fd uintptr) {
		err = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if cerr != nil {
		return cerr
	}
	return err
}
