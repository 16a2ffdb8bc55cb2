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

package launcher_test

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/packshim/packshim/pkg/config"
	"github.com/packshim/packshim/pkg/launcher"
	"github.com/packshim/packshim/pkg/testing/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestConfig(t *testing.T, content string) *config.Instance {
	t.Helper()

	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, config.CfgFile), []byte(content), 0o600)
	require.NoError(t, err)

	cfg, err := config.NewConfig(dir, config.BaseDefaults)
	require.NoError(t, err)
	return cfg
}

const directAppConfig = `
config_schema = 1

[[applications]]
id = "main"
executable = "bin/app.exe"
arguments = "--flag"
`

const shellAppConfig = `
config_schema = 1

[[applications]]
id = "doc"
executable = "manual.pdf"
arguments = "--page 3"
`

func signaledProcess(exitCode uint32) *mocks.MockProcess {
	proc := &mocks.MockProcess{}
	proc.On("Wait").Return(launcher.WaitResult{Status: launcher.WaitSignaled})
	proc.On("ExitCode").Return(exitCode, nil)
	proc.On("Close").Return()
	return proc
}

func TestRunDirectPropagatesExitCode(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, directAppConfig)
	root := filepath.Join("/pkg", "root")

	proc := signaledProcess(42)
	rt := &mocks.MockRuntime{}
	rt.On("StartProcess",
		filepath.Join(root, "bin", "app.exe"),
		`"app.exe" --flag --extra`,
		filepath.Join(root, "bin"),
		5,
	).Return(proc, nil)

	l := launcher.New(cfg, root, launcher.WithRuntime(rt))
	code := l.Run("main", "--extra", 5)

	assert.Equal(t, uint32(42), code)
	rt.AssertExpectations(t)
	proc.AssertExpectations(t)
}

func TestRunDirectStartFailure(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, directAppConfig)

	rt := &mocks.MockRuntime{}
	rt.On("StartProcess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, &launcher.SysError{Code: 5, Msg: "Access is denied"})

	reporter := &mocks.MockReporter{}
	reporter.On("Report", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "(5)") && strings.Contains(msg, "app.exe")
	})).Return()

	l := launcher.New(cfg, "/pkg",
		launcher.WithRuntime(rt),
		launcher.WithReporter(reporter),
	)
	code := l.Run("main", "", 1)

	assert.Equal(t, uint32(5), code)
	reporter.AssertNumberOfCalls(t, "Report", 1)
}

func TestRunDirectWaitOutcomes(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		wait     launcher.WaitResult
		expected uint32
	}{
		{
			name: "wait failure returns its code",
			wait: launcher.WaitResult{
				Status: launcher.WaitFailed,
				Err:    &launcher.SysError{Code: 21, Msg: "The device is not ready"},
			},
			expected: 21,
		},
		{
			name:     "unexpected wait result returns invalid handle",
			wait:     launcher.WaitResult{Status: launcher.WaitUnknown},
			expected: launcher.ErrorInvalidHandle,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newTestConfig(t, directAppConfig)

			proc := &mocks.MockProcess{}
			proc.On("Wait").Return(tt.wait)
			proc.On("Close").Return()

			rt := &mocks.MockRuntime{}
			rt.On("StartProcess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(proc, nil)

			reporter := &mocks.MockReporter{}

			l := launcher.New(cfg, "/pkg",
				launcher.WithRuntime(rt),
				launcher.WithReporter(reporter),
			)
			code := l.Run("main", "", 1)

			assert.Equal(t, tt.expected, code)
			// Wait failures are returned without a diagnostic report.
			reporter.AssertNotCalled(t, "Report", mock.Anything)
			proc.AssertCalled(t, "Close")
		})
	}
}

func TestRunAppNotFound(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, directAppConfig)

	rt := &mocks.MockRuntime{}
	reporter := &mocks.MockReporter{}
	reporter.On("Report", mock.Anything).Return()

	l := launcher.New(cfg, "/pkg",
		launcher.WithRuntime(rt),
		launcher.WithReporter(reporter),
	)
	code := l.Run("missing", "", 1)

	assert.Equal(t, launcher.ErrorNotFound, code)
	reporter.AssertNumberOfCalls(t, "Report", 1)
	rt.AssertNotCalled(t, "StartProcess",
		mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunShellInstanceValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		instance uintptr
		expected uint32
	}{
		{
			name:     "shell error code surfaces as-is",
			instance: 20,
			expected: 20,
		},
		{
			name:     "boundary value is still an error code",
			instance: 32,
			expected: 32,
		},
		{
			name:     "above threshold means handled",
			instance: 33,
			expected: 0,
		},
		{
			name:     "large instance value means handled",
			instance: 0xFFFF,
			expected: 0,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := newTestConfig(t, shellAppConfig)
			root := filepath.Join("/pkg", "root")

			proc := &mocks.MockProcess{}
			proc.On("Wait").Return(launcher.WaitResult{Status: launcher.WaitSignaled})
			proc.On("Close").Return()

			rt := &mocks.MockRuntime{}
			rt.On("ShellExecute", mock.MatchedBy(func(req launcher.ShellRequest) bool {
				return req.Verb == "" &&
					req.File == filepath.Join(root, "manual.pdf") &&
					req.Params == "--page 3 --docview" &&
					req.Dir == root &&
					req.Show == 3
			})).Return(&launcher.ShellLaunch{Process: proc, Instance: tt.instance}, nil)

			l := launcher.New(cfg, root, launcher.WithRuntime(rt))
			code := l.Run("doc", "--docview", 3)

			assert.Equal(t, tt.expected, code)
			rt.AssertExpectations(t)
			proc.AssertCalled(t, "Close")
		})
	}
}

func TestRunShellStartFailure(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, shellAppConfig)

	rt := &mocks.MockRuntime{}
	rt.On("ShellExecute", mock.Anything).
		Return(nil, &launcher.SysError{Code: 1155, Msg: "No application is associated with the specified file"})

	reporter := &mocks.MockReporter{}
	reporter.On("Report", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "(1155)")
	})).Return()

	l := launcher.New(cfg, "/pkg",
		launcher.WithRuntime(rt),
		launcher.WithReporter(reporter),
	)
	code := l.Run("doc", "", 1)

	assert.Equal(t, uint32(1155), code)
	reporter.AssertNumberOfCalls(t, "Report", 1)
}

func TestRunRecoversFromPanic(t *testing.T) {
	t.Parallel()

	cfg := newTestConfig(t, directAppConfig)

	proc := &mocks.MockProcess{}
	proc.On("Wait").Run(func(_ mock.Arguments) {
		panic(fmt.Errorf("wait exploded"))
	}).Return(launcher.WaitResult{})
	proc.On("Close").Return()

	rt := &mocks.MockRuntime{}
	rt.On("StartProcess", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(proc, nil)

	reporter := &mocks.MockReporter{}
	reporter.On("Report", mock.MatchedBy(func(msg string) bool {
		return strings.Contains(msg, "wait exploded")
	})).Return()

	l := launcher.New(cfg, "/pkg",
		launcher.WithRuntime(rt),
		launcher.WithReporter(reporter),
	)
	code := l.Run("main", "", 1)

	assert.Equal(t, launcher.ErrorUnhandledException, code)
	reporter.AssertNumberOfCalls(t, "Report", 1)
}
