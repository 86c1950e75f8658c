// Package console handles the Windows console: detecting whether the program
// was started from a terminal, and Ctrl+C handling that survives SDL's own
// console handler.
package console

import (
	"log"
	"sync/atomic"
	"syscall"
)

var (
	kernel32                  = syscall.NewLazyDLL("kernel32.dll")
	procGetConsoleWindow      = kernel32.NewProc("GetConsoleWindow")
	procSetConsoleCtrlHandler = kernel32.NewProc("SetConsoleCtrlHandler")
)

const (
	ctrlCEvent     = 0
	ctrlBreakEvent = 1
)

// IsRunningFromConsole reports whether the process has a console window. A
// GUI build started from Explorer has none.
func IsRunningFromConsole() bool {
	hwnd, _, _ := procGetConsoleWindow.Call()
	return hwnd != 0
}

type handlerState struct {
	closed   atomic.Bool
	shutdown chan struct{}
	callback uintptr
}

// Referenced by the callback, so it must outlive SetupConsoleHandler.
var state *handlerState

// SetupConsoleHandler closes shutdown on Ctrl+C or Ctrl+Break. The returned
// function re-registers the handler; call it after SDL is initialised, since
// SDL installs its own.
func SetupConsoleHandler(shutdown chan struct{}) func() {
	state = &handlerState{shutdown: shutdown}
	state.callback = syscall.NewCallback(func(ctrlType uint32) uintptr {
		if ctrlType == ctrlCEvent || ctrlType == ctrlBreakEvent {
			if state.closed.CompareAndSwap(false, true) {
				close(state.shutdown)
			}
			return 1
		}
		return 0
	})

	register := func() {
		if ret, _, _ := procSetConsoleCtrlHandler.Call(state.callback, 1); ret == 0 {
			log.Printf("Warning: Failed to set Windows console control handler")
		}
	}
	register()
	return register
}
