//go:build windows

package main

import "syscall"

func init() {
	// Chat logs and results are mostly Chinese; switch the console to UTF-8
	// so log echo stays readable
	kernel32 := syscall.NewLazyDLL("kernel32.dll")
	setConsoleOutputCP := kernel32.NewProc("SetConsoleOutputCP")
	setConsoleOutputCP.Call(uintptr(65001)) // 65001 is UTF-8
}
