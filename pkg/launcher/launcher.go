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

// Package launcher resolves an application profile into a concrete
// invocation and starts it through the platform's process facilities,
// propagating the child's exit code back to the caller.
package launcher

import (
	"fmt"
	"time"

	"github.com/packshim/packshim/pkg/config"
	"github.com/rs/zerolog/log"
)

// Reporter receives a single formatted diagnostic when a launch fails. It is
// a side-channel: nothing consumes it programmatically.
type Reporter interface {
	Report(msg string)
}

type logReporter struct{}

func (logReporter) Report(msg string) {
	log.Error().Msg(msg)
}

type Launcher struct {
	cfg         *config.Instance
	rt          Runtime
	reporter    Reporter
	packageRoot string

	monitorIdleTimeout time.Duration
	// elevatedStartDelay is a heuristic, not a synchronization primitive:
	// elevation relaunches the monitor through an intermediary that exits
	// almost immediately, so an input-idle wait alone cannot confirm the
	// real elevated process has started.
	elevatedStartDelay time.Duration
}

type Option func(*Launcher)

// WithRuntime replaces the platform runtime, used in tests.
func WithRuntime(rt Runtime) Option {
	return func(l *Launcher) { l.rt = rt }
}

// WithReporter replaces the diagnostic sink for launch failures.
func WithReporter(r Reporter) Option {
	return func(l *Launcher) { l.reporter = r }
}

// WithElevatedStartDelay tunes the fixed delay granted to an elevated
// monitor on the non-waiting path.
func WithElevatedStartDelay(d time.Duration) Option {
	return func(l *Launcher) { l.elevatedStartDelay = d }
}

func New(cfg *config.Instance, packageRoot string, opts ...Option) *Launcher {
	l := &Launcher{
		cfg:                cfg,
		rt:                 platformRuntime(),
		reporter:           logReporter{},
		packageRoot:        packageRoot,
		monitorIdleTimeout: time.Second,
		elevatedStartDelay: 5 * time.Second,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Run launches the application profile matching appID and blocks until the
// started process exits. The returned code is either the child's real exit
// code or the platform error code that stopped the launch. Nothing escapes
// Run: unexpected failures are reported and converted to a code.
func (l *Launcher) Run(appID, runtimeArgs string, show int) (code uint32) {
	defer func() {
		if r := recover(); r != nil {
			l.reporter.Report(fmt.Sprintf("ERROR: unhandled failure during launch: %v", r))
			code = ErrorUnhandledException
		}
	}()

	log.Debug().Msgf("launcher starting, app id: %q", appID)

	app, err := l.cfg.LookupApp(appID)
	if err != nil {
		l.reporter.Report(fmt.Sprintf("ERROR: %s", err))
		return ErrorNotFound
	}

	// The monitor, when configured, always starts strictly before the
	// primary process.
	if mon := l.cfg.Monitor(); mon != nil {
		log.Debug().Msgf("creating the monitor: %s", mon.Executable)
		l.launchMonitor(mon.Executable, mon.Arguments, mon.Wait, mon.AsAdmin)
	}

	inv := Resolve(&app, runtimeArgs, l.packageRoot)

	if inv.Mechanism == MechanismDirect {
		return l.launchDirect(&inv, show)
	}
	return l.launchShell(&inv, show)
}

func (l *Launcher) launchDirect(inv *Invocation, show int) uint32 {
	log.Debug().Msgf("creating process: %s", inv.CommandLine)

	proc, serr := l.rt.StartProcess(inv.ExePath, inv.CommandLine, inv.WorkDir, show)
	if serr != nil {
		l.reportLaunchFailure("failed to create process", inv.ExePath, serr)
		return serr.Code
	}
	defer proc.Close()

	switch res := proc.Wait(); res.Status {
	case WaitSignaled:
		// handled below
	case WaitFailed:
		return res.Err.Code
	default:
		return ErrorInvalidHandle
	}

	exitCode, serr := proc.ExitCode()
	if serr != nil {
		return serr.Code
	}
	return exitCode
}

func (l *Launcher) launchShell(inv *Invocation, show int) uint32 {
	log.Debug().Msgf("using shell launch: %s %s", inv.ExePath, inv.Args)

	// The shell resolves the target itself, so parameters carry only the
	// argument string, without the quoted filename prefix.
	sh, serr := l.rt.ShellExecute(ShellRequest{
		File:   inv.ExePath,
		Params: inv.Args,
		Dir:    inv.WorkDir,
		Show:   show,
	})
	if serr != nil {
		l.reportLaunchFailure("failed to create shell process", inv.ExePath, serr)
		return serr.Code
	}
	defer sh.Process.Close()

	switch res := sh.Process.Wait(); res.Status {
	case WaitSignaled:
		// An instance value above 32 means the shell handled the request
		// without handing back a true process handle.
		if sh.Instance > 32 {
			return 0
		}
		return uint32(sh.Instance)
	case WaitFailed:
		return res.Err.Code
	default:
		return ErrorInvalidHandle
	}
}

func (l *Launcher) reportLaunchFailure(what, path string, serr *SysError) {
	l.reporter.Report(fmt.Sprintf(
		"ERROR: %s\n  Path: %q\n  Error: %s (%d)",
		what, path, serr.Msg, serr.Code,
	))
}
