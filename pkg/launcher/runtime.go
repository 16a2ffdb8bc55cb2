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

package launcher

import (
	"fmt"
	"time"
)

// Win32-style result codes surfaced by the launcher. These mirror the
// platform's own error numbering so the launcher's exit status reads the
// same as any other process-creation failure.
const (
	ErrorInvalidHandle      uint32 = 6
	ErrorCallNotImplemented uint32 = 120
	ErrorUnhandledException uint32 = 574
	ErrorElevationRequired  uint32 = 740
	ErrorNotFound           uint32 = 1168
)

// SysError is a platform error: the numeric code plus its rendered message,
// trailing line terminators stripped.
type SysError struct {
	Msg  string
	Code uint32
}

func (e *SysError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Msg, e.Code)
}

// WaitStatus classifies the outcome of waiting on a process handle.
type WaitStatus int

const (
	// WaitSignaled means the process exited and its exit code can be read.
	WaitSignaled WaitStatus = iota
	// WaitFailed means the wait call itself failed.
	WaitFailed
	// WaitUnknown is any other wait result.
	WaitUnknown
)

type WaitResult struct {
	// Err is set when Status is WaitFailed.
	Err    *SysError
	Status WaitStatus
}

// Process is an exclusively owned handle to a started process. The owner
// must call Close once it is done waiting.
type Process interface {
	// Wait blocks until the process exits.
	Wait() WaitResult

	// ExitCode returns the process exit code after a signaled wait.
	ExitCode() (uint32, *SysError)

	// WaitIdle blocks up to timeout for the process to finish initializing
	// and start waiting for input. Best effort.
	WaitIdle(timeout time.Duration)

	Close()
}

// ShellRequest describes a launch through the OS shell's file-type
// association. An empty Verb selects the file type's default action.
type ShellRequest struct {
	Verb   string
	File   string
	Params string
	Dir    string
	Show   int

	// WaitInputIdle asks the shell to wait for the started process to go
	// input-idle before returning.
	WaitInputIdle bool
}

// ShellLaunch is the result of a successful shell launch. Instance mirrors
// the shell's hInstApp status value: values above 32 mean the shell handled
// the request, values at or below 32 are shell error codes.
type ShellLaunch struct {
	Process  Process
	Instance uintptr
}

// Runtime abstracts the platform's process-creation facilities so launch
// behavior can be tested without spawning real processes.
type Runtime interface {
	// StartProcess creates a process directly. An empty exePath lets the OS
	// resolve the image from the command line's first token. An empty
	// workDir inherits the launcher's own working directory.
	StartProcess(exePath, cmdLine, workDir string, show int) (Process, *SysError)

	// ShellExecute launches a target through the shell, returning an open
	// process handle alongside the shell's status value.
	ShellExecute(req ShellRequest) (*ShellLaunch, *SysError)

	Sleep(d time.Duration)
}
