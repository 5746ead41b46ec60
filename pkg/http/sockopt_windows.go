//go:build windows

package http

import "syscall"

func setReuseAddr(rawConn syscall.RawConn) (err error) {
	cerr := rawConn.Control(func(fd uintptr) {
		err = syscall.SetsockoptInt(syscall.Handle(fd), syscall.SOL_SOCKET, syscall.SO_REUSEADDR, 1)
	})
	if cerr != nil {
		return cerr
	}
	return err
}
