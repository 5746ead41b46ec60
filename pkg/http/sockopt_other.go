//go:build !unix && !windows

package http

import "syscall"

func setReuseAddr(rawConn syscall.RawConn) error { return nil }
