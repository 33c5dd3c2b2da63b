//go:build windows

package window

import (
	"fmt"
	"strings"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32                       = windows.NewLazySystemDLL("user32.dll")
	procGetForegroundWindow      = user32.NewProc("GetForegroundWindow")
	procSetForegroundWindow      = user32.NewProc("SetForegroundWindow")
	procShowWindow               = user32.NewProc("ShowWindow")
	procEnumWindows              = user32.NewProc("EnumWindows")
	procGetWindowThreadProcessId = user32.NewProc("GetWindowThreadProcessId")
	procIsWindowVisible          = user32.NewProc("IsWindowVisible")
	procGetWindowTextLengthW     = user32.NewProc("GetWindowTextLengthW")
	procAttachThreadInput        = user32.NewProc("AttachThreadInput")
)

const (
	swRestore = 9
	swShow    = 5
)

// New returns the Windows window manager.
func New() Manager {
	return win32{}
}

type win32 struct{}

func (win32) Supported() bool { return true }

func (win32) Foreground() Handle {
	h, _, _ := procGetForegroundWindow.Call()
	return Handle(h)
}

// Find walks the process table for the named executable, then enumerates
// top-level windows until it hits a visible, titled one owned by any of those
// processes.
func (win32) Find(processName string) (Handle, error) {
	pids, err := findProcessIDs(processName)
	if err != nil {
		return 0, err
	}
	if len(pids) == 0 {
		return 0, fmt.Errorf("%w: no process named %s", ErrNotFound, processName)
	}

	var found Handle
	cb := windows.NewCallback(func(hwnd uintptr, lparam uintptr) uintptr {
		var pid uint32
		procGetWindowThreadProcessId.Call(hwnd, uintptr(unsafe.Pointer(&pid)))
		if !pids[pid] {
			return 1 // keep enumerating
		}

		visible, _, _ := procIsWindowVisible.Call(hwnd)
		if visible == 0 {
			return 1
		}
		titleLen, _, _ := procGetWindowTextLengthW.Call(hwnd)
		if titleLen == 0 {
			return 1
		}

		found = Handle(hwnd)
		return 0 // stop
	})
	procEnumWindows.Call(cb, 0)

	if found == 0 {
		return 0, fmt.Errorf("%w: process %s has no visible window", ErrNotFound, processName)
	}
	return found, nil
}

// Raise restores the window if minimized and forces it to the foreground.
// Windows refuses SetForegroundWindow from a background process, so the
// calling thread's input is briefly attached to the window's thread to make
// the call count as foreground-initiated.
func (m win32) Raise(h Handle) bool {
	if h == 0 {
		return false
	}

	procShowWindow.Call(uintptr(h), swRestore)

	targetThread, _, _ := procGetWindowThreadProcessId.Call(uintptr(h), 0)
	currentThread := uintptr(windows.GetCurrentThreadId())

	attached := false
	if targetThread != 0 && targetThread != currentThread {
		ret, _, _ := procAttachThreadInput.Call(currentThread, targetThread, 1)
		attached = ret != 0
	}

	ok, _, _ := procSetForegroundWindow.Call(uintptr(h))

	if attached {
		procAttachThreadInput.Call(currentThread, targetThread, 0)
	}

	return ok != 0 && m.Foreground() == h
}

func (m win32) Restore(h Handle) bool {
	if h == 0 {
		return false
	}
	procShowWindow.Call(uintptr(h), swShow)
	ok, _, _ := procSetForegroundWindow.Call(uintptr(h))
	return ok != 0
}

// findProcessIDs returns the PIDs of every running process whose executable
// name matches, case-insensitively.
func findProcessIDs(processName string) (map[uint32]bool, error) {
	snapshot, err := windows.CreateToolhelp32Snapshot(windows.TH32CS_SNAPPROCESS, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to snapshot process table: %w", err)
	}
	defer windows.CloseHandle(snapshot)

	pids := make(map[uint32]bool)
	var entry windows.ProcessEntry32
	entry.Size = uint32(unsafe.Sizeof(entry))

	if err := windows.Process32First(snapshot, &entry); err != nil {
		return nil, fmt.Errorf("failed to read process table: %w", err)
	}
	for {
		name := windows.UTF16ToString(entry.ExeFile[:])
		if strings.EqualFold(name, processName) {
			pids[entry.ProcessID] = true
		}
		if err := windows.Process32Next(snapshot, &entry); err != nil {
			break
		}
	}
	return pids, nil
}
