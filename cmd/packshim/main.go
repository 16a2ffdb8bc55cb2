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

package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/packshim/packshim/pkg/config"
	"github.com/packshim/packshim/pkg/helpers"
	"github.com/packshim/packshim/pkg/launcher"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	appID := flag.String(
		"app",
		"",
		"id of the application profile to launch",
	)
	version := flag.Bool(
		"version",
		false,
		"print version and exit",
	)
	flag.Parse()

	if *version {
		_, _ = fmt.Printf("Packshim v%s\n", config.AppVersion)
		os.Exit(0)
	}

	err := helpers.InitLogging(helpers.LogDir(), nil)
	if err != nil {
		_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
		os.Exit(1)
	}

	cfg, err := config.NewConfig(helpers.ConfigDir(), config.BaseDefaults)
	if err != nil {
		log.Error().Err(err).Msg("error loading config")
		_, _ = fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	if cfg.DebugLogging() {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		err = helpers.InitLogging(
			helpers.LogDir(),
			[]io.Writer{zerolog.ConsoleWriter{Out: os.Stderr}},
		)
		if err != nil {
			_, _ = fmt.Fprintf(os.Stderr, "Error initializing logging: %v\n", err)
			os.Exit(1)
		}
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	id := *appID
	if id == "" {
		id = os.Getenv(config.AppEnv)
	}

	// Anything left on the command line is passed through to the child,
	// after the profile's own declared arguments.
	runtimeArgs := strings.Join(flag.Args(), " ")

	l := launcher.New(cfg, helpers.PackageRoot())
	code := l.Run(id, runtimeArgs, launcher.StartupShow())

	os.Exit(int(code)) //nolint:gosec // exit codes are 32-bit on Windows
}
