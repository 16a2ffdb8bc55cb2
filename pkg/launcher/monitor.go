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

	"github.com/rs/zerolog/log"
)

const swShowNormal = 1

// launchMonitor starts the optional secondary process. Failures are logged
// and never abort the primary launch. The monitor runs in the launcher's own
// working directory, not the package-relative one.
func (l *Launcher) launchMonitor(executable, arguments string, wait, asAdmin bool) {
	cmd := `"` + filepath.Join(l.packageRoot, executable) + `"`

	if asAdmin {
		l.launchMonitorElevated(cmd, arguments, wait)
		return
	}

	// No explicit image path: the OS resolves it from the command string.
	proc, serr := l.rt.StartProcess("", cmd+" "+arguments, "", swShowNormal)
	if serr != nil {
		if serr.Code == ErrorElevationRequired {
			log.Error().Msg("monitor requires elevation, set asadmin in the monitor config")
		} else {
			log.Error().Msgf("error starting monitor: %s", serr)
		}
		return
	}
	defer proc.Close()

	if wait {
		proc.Wait()
	}
}

func (l *Launcher) launchMonitorElevated(cmd, arguments string, wait bool) {
	sh, serr := l.rt.ShellExecute(ShellRequest{
		Verb:          "runas",
		File:          cmd,
		Params:        arguments,
		Show:          swShowNormal,
		WaitInputIdle: !wait,
	})
	if serr != nil {
		log.Error().Msgf("error starting elevated monitor: %s", serr)
		return
	}
	defer sh.Process.Close()

	if wait {
		sh.Process.Wait()
		return
	}

	sh.Process.WaitIdle(l.monitorIdleTimeout)
	// The idle wait observes the elevation intermediary, not the real
	// monitor, so grant the relaunched process a fixed head start.
	l.rt.Sleep(l.elevatedStartDelay)
}
