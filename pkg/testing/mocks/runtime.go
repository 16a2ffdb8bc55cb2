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

package mocks

import (
	"time"

	"github.com/packshim/packshim/pkg/launcher"
	"github.com/stretchr/testify/mock"
)

// MockRuntime is a testify mock for launcher.Runtime. It allows launch
// behavior to be tested without creating real processes.
type MockRuntime struct {
	mock.Mock
}

// StartProcess mocks direct process creation.
//
// Example:
//
//	rt := &MockRuntime{}
//	rt.On("StartProcess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
//		Return(proc, (*launcher.SysError)(nil))
func (m *MockRuntime) StartProcess(exePath, cmdLine, workDir string, show int) (launcher.Process, *launcher.SysError) {
	called := m.Called(exePath, cmdLine, workDir, show)
	proc, _ := called.Get(0).(launcher.Process)
	serr, _ := called.Get(1).(*launcher.SysError)
	return proc, serr
}

// ShellExecute mocks a shell-association launch.
func (m *MockRuntime) ShellExecute(req launcher.ShellRequest) (*launcher.ShellLaunch, *launcher.SysError) {
	called := m.Called(req)
	sh, _ := called.Get(0).(*launcher.ShellLaunch)
	serr, _ := called.Get(1).(*launcher.SysError)
	return sh, serr
}

// Sleep mocks the fixed elevated-monitor start delay.
func (m *MockRuntime) Sleep(d time.Duration) {
	m.Called(d)
}

// MockProcess is a testify mock for launcher.Process.
type MockProcess struct {
	mock.Mock
}

func (m *MockProcess) Wait() launcher.WaitResult {
	called := m.Called()
	res, _ := called.Get(0).(launcher.WaitResult)
	return res
}

func (m *MockProcess) ExitCode() (uint32, *launcher.SysError) {
	called := m.Called()
	code, _ := called.Get(0).(uint32)
	serr, _ := called.Get(1).(*launcher.SysError)
	return code, serr
}

func (m *MockProcess) WaitIdle(timeout time.Duration) {
	m.Called(timeout)
}

func (m *MockProcess) Close() {
	m.Called()
}

// MockReporter is a testify mock for launcher.Reporter.
type MockReporter struct {
	mock.Mock
}

func (m *MockReporter) Report(msg string) {
	m.Called(msg)
}
