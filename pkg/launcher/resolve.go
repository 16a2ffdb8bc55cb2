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
	"path/filepath"
	"strings"

	"github.com/packshim/packshim/pkg/config"
)

// Mechanism selects how the primary process is started.
type Mechanism int

const (
	// MechanismDirect creates the process from its executable image.
	MechanismDirect Mechanism = iota
	// MechanismShell asks the OS shell to invoke the default handler
	// registered for the target's file type.
	MechanismShell
)

// Invocation is a fully resolved launch: absolute paths, the final command
// line, and the mechanism to start it with. Computed once per launch
// attempt, never persisted.
type Invocation struct {
	ExePath     string
	WorkDir     string
	CommandLine string
	Args        string
	Mechanism   Mechanism
}

// Resolve builds the invocation for an application profile. All relative
// paths resolve against packageRoot, never against the launcher's own
// working directory. Declared arguments always precede runtime arguments.
func Resolve(app *config.App, runtimeArgs, packageRoot string) Invocation {
	exePath := filepath.Join(packageRoot, app.Executable)

	var workDir string
	if app.WorkingDirectory != "" {
		workDir = filepath.Join(packageRoot, app.WorkingDirectory)
	} else {
		// Default to the executable's own folder.
		workDir = filepath.Dir(exePath)
	}
	workDir = trimTrailingSeparators(workDir)

	args := app.Arguments + " " + runtimeArgs
	cmdLine := `"` + filepath.Base(exePath) + `" ` + args

	mechanism := MechanismShell
	if strings.EqualFold(filepath.Ext(app.Executable), ".exe") {
		mechanism = MechanismDirect
	}

	return Invocation{
		ExePath:     exePath,
		WorkDir:     workDir,
		CommandLine: cmdLine,
		Args:        args,
		Mechanism:   mechanism,
	}
}

func trimTrailingSeparators(path string) string {
	return strings.TrimRight(path, `\/`)
}
