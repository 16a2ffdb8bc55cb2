// Packshim
// Copyright (c) 2026 The Packshim Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Packshim.
//
// Packshim is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Packshim is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Packshim.  If not, see <http://www.gnu.org/licenses/>.

//go:build windows

package launcher

import (
	"errors"
	"runtime"
	"strings"
	"syscall"
	"time"
	"unsafe"

	ole "github.com/go-ole/go-ole"
	"golang.org/x/sys/windows"
)

var (
	user32               = windows.NewLazySystemDLL("user32.dll")
	shell32              = windows.NewLazySystemDLL("shell32.dll")
	procWaitForInputIdle = user32.NewProc("WaitForInputIdle")
	procShellExecuteExW  = shell32.NewProc("ShellExecuteExW")
)

const (
	seeMaskNoCloseProcess   = 0x00000040
	seeMaskWaitForInputIdle = 0x02000000
)

// shellExecuteInfo mirrors SHELLEXECUTEINFOW.
type shellExecuteInfo struct {
	cbSize        uint32
	mask          uint32
	hwnd          windows.HWND
	verb          *uint16
	file          *uint16
	parameters    *uint16
	directory     *uint16
	show          int32
	instApp       windows.Handle
	idList        uintptr
	class         *uint16
	keyClass      windows.Handle
	hotKey        uint32
	iconOrMonitor windows.Handle
	process       windows.Handle
}

func platformRuntime() Runtime {
	return winRuntime{}
}

type winRuntime struct{}

func (winRuntime) StartProcess(exePath, cmdLine, workDir string, show int) (Process, *SysError) {
	var app *uint16
	if exePath != "" {
		p, err := windows.UTF16PtrFromString(exePath)
		if err != nil {
			return nil, newSysError(err)
		}
		app = p
	}

	cmd, err := windows.UTF16PtrFromString(cmdLine)
	if err != nil {
		return nil, newSysError(err)
	}

	var dir *uint16
	if workDir != "" {
		p, err := windows.UTF16PtrFromString(workDir)
		if err != nil {
			return nil, newSysError(err)
		}
		dir = p
	}

	var si windows.StartupInfo
	si.Cb = uint32(unsafe.Sizeof(si))
	si.Flags = windows.STARTF_USESHOWWINDOW
	si.ShowWindow = uint16(show) //nolint:gosec // show is a small SW_* value

	var pi windows.ProcessInformation
	err = windows.CreateProcess(
		app, cmd,
		nil, nil, // process/thread attributes
		true, // inherit handles
		0,    // creation flags
		nil,  // environment
		dir,
		&si, &pi,
	)
	if err != nil {
		return nil, newSysError(err)
	}

	_ = windows.CloseHandle(pi.Thread)
	return &winProcess{handle: pi.Process}, nil
}

func (winRuntime) ShellExecute(req ShellRequest) (*ShellLaunch, *SysError) {
	// The shell call needs an apartment-threaded COM context on the calling
	// thread, so pin it for the duration.
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// Already-initialized and mode-changed results are fine to ignore here.
	_ = ole.CoInitializeEx(0, ole.COINIT_APARTMENTTHREADED|ole.COINIT_DISABLE_OLE1DDE)

	info := shellExecuteInfo{
		mask: seeMaskNoCloseProcess,
		show: int32(req.Show), //nolint:gosec // show is a small SW_* value
	}
	info.cbSize = uint32(unsafe.Sizeof(info))
	if req.WaitInputIdle {
		info.mask |= seeMaskWaitForInputIdle
	}

	var err error
	if info.verb, err = utf16PtrOrNil(req.Verb); err != nil {
		return nil, newSysError(err)
	}
	if info.file, err = utf16PtrOrNil(req.File); err != nil {
		return nil, newSysError(err)
	}
	if info.parameters, err = utf16PtrOrNil(req.Params); err != nil {
		return nil, newSysError(err)
	}
	if info.directory, err = utf16PtrOrNil(req.Dir); err != nil {
		return nil, newSysError(err)
	}

	ret, _, callErr := procShellExecuteExW.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 {
		return nil, newSysError(callErr)
	}

	return &ShellLaunch{
		Process:  &winProcess{handle: info.process},
		Instance: uintptr(info.instApp),
	}, nil
}

func (winRuntime) Sleep(d time.Duration) {
	time.Sleep(d)
}

type winProcess struct {
	handle windows.Handle
}

func (p *winProcess) Wait() WaitResult {
	event, err := windows.WaitForSingleObject(p.handle, windows.INFINITE)
	switch event {
	case windows.WAIT_OBJECT_0:
		return WaitResult{Status: WaitSignaled}
	case uint32(windows.WAIT_FAILED):
		return WaitResult{Status: WaitFailed, Err: newSysError(err)}
	default:
		return WaitResult{Status: WaitUnknown}
	}
}

func (p *winProcess) ExitCode() (uint32, *SysError) {
	var code uint32
	if err := windows.GetExitCodeProcess(p.handle, &code); err != nil {
		return 0, newSysError(err)
	}
	return code, nil
}

func (p *winProcess) WaitIdle(timeout time.Duration) {
	_, _, _ = procWaitForInputIdle.Call(
		uintptr(p.handle),
		uintptr(timeout.Milliseconds()),
	)
}

func (p *winProcess) Close() {
	_ = windows.CloseHandle(p.handle)
}

func utf16PtrOrNil(s string) (*uint16, error) {
	if s == "" {
		return nil, nil
	}
	//nolint:wrapcheck // code path converts to SysError at the caller
	return windows.UTF16PtrFromString(s)
}

func newSysError(err error) *SysError {
	var errno syscall.Errno
	if errors.As(err, &errno) {
		// Strip the trailing period and line terminators the system
		// message formatter appends.
		msg := strings.TrimRight(errno.Error(), ".\r\n")
		return &SysError{Code: uint32(errno), Msg: msg} //nolint:gosec // Win32 codes are 32-bit
	}
	return &SysError{Code: ErrorUnhandledException, Msg: err.Error()}
}

// StartupShow returns the initial window visibility the parent process
// requested for the launcher, forwarded unchanged into the child's startup
// attributes.
func StartupShow() int {
	var si windows.StartupInfo
	if err := windows.GetStartupInfo(&si); err != nil {
		return swShowNormal
	}
	if si.Flags&windows.STARTF_USESHOWWINDOW != 0 {
		return int(si.ShowWindow)
	}
	return swShowNormal
}
