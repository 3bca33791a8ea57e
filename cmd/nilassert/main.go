//  Copyright (c) 2025 Uber Technologies, Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// main package makes it possible to run the nilassert checkers and the IR materializer on unit
// files from the command line, and to inspect the assertion stores they export.
package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/driver"
)

// globalFlags are the flags shared by every command.
type globalFlags struct {
	color    string
	verbose  bool
	jobs     int
	settings string
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	flags := &globalFlags{}
	root := &cobra.Command{
		Use:   "nilassert",
		Short: "Find the runtime not-null assertions code generation must insert",
		Long: "nilassert checks compilation units described by unit files and reports where values " +
			"annotated non-null by another language must be asserted at runtime.\n\n" +
			"Library: " + config.NilAssertPkgPathPrefix,
		SilenceUsage: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			switch flags.color {
			case "auto":
			case "on":
				color.NoColor = false
			case "off":
				color.NoColor = true
			default:
				return fmt.Errorf("invalid --color %q: want auto, on, or off", flags.color)
			}
			return nil
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	pf := root.PersistentFlags()
	pf.StringVar(&flags.color, "color", "auto", "colorize output (auto|on|off)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "log debug traces to stderr")
	pf.IntVarP(&flags.jobs, "jobs", "j", config.DefaultJobs, "number of parallel jobs, 0 means GOMAXPROCS")
	pf.StringVar(&flags.settings, "settings", "", "TOML language settings file, overriding the features of the unit files")

	root.AddCommand(newCheckCmd(flags), newIRCmd(flags), newDumpCmd())
	return root
}

// driverOptions builds the driver options from the global flags, logging to w.
func (f *globalFlags) driverOptions(w io.Writer) driver.Options {
	level := slog.LevelInfo
	if f.verbose {
		level = slog.LevelDebug
	}
	return driver.Options{
		Jobs:   f.jobs,
		Logger: slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})),
	}
}

// languageSettings loads the --settings file, or returns nil if there is none.
func (f *globalFlags) languageSettings() (config.LanguageVersionSettings, error) {
	if f.settings == "" {
		return nil, nil
	}
	s, err := config.LoadLanguageSettings(f.settings)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
