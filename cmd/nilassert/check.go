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

package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/nilassert"
	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/unitfile"
)

// errDuplicateSite is reported when two unit files require an assertion in the same slot of the
// same site.
var errDuplicateSite = errors.New("duplicate assertion site")

type checkFlags struct {
	includeSites string
	excludeSites string
	out          string
}

func newCheckCmd(global *globalFlags) *cobra.Command {
	flags := &checkFlags{}
	cmd := &cobra.Command{
		Use:   "check [flags] UNIT_FILE...",
		Short: "Report the assertions required in unit files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, global, flags, args)
		},
	}
	cmd.Flags().StringVar(&flags.includeSites, "include-sites", "", "A comma-separated list of site prefixes to report assertions for, default is every site.")
	cmd.Flags().StringVar(&flags.excludeSites, "exclude-sites", "", "A comma-separated list of site prefixes to exclude from reporting. This takes precedence over include-sites.")
	cmd.Flags().StringVarP(&flags.out, "out", "o", "", "write the compressed assertion store of all units to this file")
	return cmd
}

func runCheck(cmd *cobra.Command, global *globalFlags, flags *checkFlags, paths []string) error {
	settings, err := global.languageSettings()
	if err != nil {
		return err
	}
	opts := global.driverOptions(cmd.ErrOrStderr())
	filter := siteFilter(parseSitePrefixes(flags.includeSites), parseSitePrefixes(flags.excludeSites))

	// Each unit is checked into its own store and merged into combined, so --out exports them
	// all and a site claimed by two units is reported instead of silently dropped.
	combined := annotation.NewStore()
	owners := make(map[annotation.Key]string)
	var errs []error
	for _, path := range paths {
		u, err := unitfile.Load(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		s, err := nilassert.Analyze(cmd.Context(), u, settings, opts)
		if err != nil {
			errs = append(errs, fmt.Errorf("check %q: %w", path, err))
		}
		if s == nil {
			continue
		}
		for _, e := range s.Entries() {
			if !combined.Record(e.Kind, e.Site, &e.Info) {
				errs = append(errs, fmt.Errorf("%w: %s %s in %q, already recorded from %q", errDuplicateSite, e.Kind, e.Site, path, owners[e.Key]))
				continue
			}
			owners[e.Key] = path
		}
	}

	report := nilassert.NewReport(strings.Join(paths, ","), combined).Filter(filter)
	if err := report.Print(cmd.OutOrStdout(), !color.NoColor); err != nil {
		return err
	}
	if flags.out != "" {
		if err := writeStore(flags.out, combined); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// parseSitePrefixes parses the comma-separated list of site prefixes.
func parseSitePrefixes(s string) []string {
	if s == "" {
		return nil
	}
	var prefixes []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			prefixes = append(prefixes, p)
		}
	}
	return prefixes
}

// siteFilter keeps entries whose site starts with one of includes (or every entry, if includes is
// empty) and with none of excludes.
func siteFilter(includes, excludes []string) func(annotation.Entry) bool {
	return func(e annotation.Entry) bool {
		site := string(e.Site)
		for _, p := range excludes {
			if strings.HasPrefix(site, p) {
				return false
			}
		}
		if len(includes) == 0 {
			return true
		}
		for _, p := range includes {
			if strings.HasPrefix(site, p) {
				return true
			}
		}
		return false
	}
}

func writeStore(path string, s *annotation.Store) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create store file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("close store file: %w", cerr)
		}
	}()
	return annotation.Write(f, s)
}
