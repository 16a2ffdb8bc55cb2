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

//go:build !windows

package launcher

import "time"

// Process launching targets Windows. The stub keeps the package compiling
// everywhere so the orchestration logic stays testable on any platform.
func platformRuntime() Runtime {
	return stubRuntime{}
}

type stubRuntime struct{}

func (stubRuntime) StartProcess(_, _, _ string, _ int) (Process, *SysError) {
	return nil, notImplemented()
}

func (stubRuntime) ShellExecute(_ ShellRequest) (*ShellLaunch, *SysError) {
	return nil, notImplemented()
}

func (stubRuntime) Sleep(d time.Duration) {
	time.Sleep(d)
}

func notImplemented() *SysError {
	return &SysError{
		Code: ErrorCallNotImplemented,
		Msg:  "process launch is only supported on Windows",
	}
}
