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

// Package main implements the golden tests for the nilassert checkers: it runs the checkers on
// every golden archive of a directory and compares the requirements they record with the `want`
// section of the archive, or rewrites that section with the current results.
package main

import (
	"cmp"
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/nilassert/driver"
	"go.uber.org/nilassert/nilasserttest"
	"golang.org/x/tools/txtar"
)

// Requirement is one requirement line of a golden archive.
type Requirement struct {
	// Site is the site the requirement was recorded for.
	Site string
	// Line is the full listing line.
	Line string
}

// CaseResult stores the expected and actual requirements of one golden archive.
type CaseResult struct {
	// Path is the path of the archive.
	Path string
	// Want is the set of requirements listed in the archive.
	Want map[Requirement]bool
	// Got is the set of requirements the checkers recorded.
	Got map[Requirement]bool
}

// Run runs the checkers on every golden archive in dir and writes the summary and diff to the
// writer. If update is set, the `want` section of every differing archive is rewritten. It
// returns true if every archive matched.
func Run(ctx context.Context, writer io.Writer, dir string, update bool) (bool, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.txtar"))
	if err != nil {
		return false, fmt.Errorf("list golden archives: %w", err)
	}
	if len(paths) == 0 {
		return false, fmt.Errorf("no golden archives in %q", dir)
	}
	slices.Sort(paths)

	results := make([]*CaseResult, 0, len(paths))
	for _, path := range paths {
		result, got, err := runCase(ctx, path)
		if err != nil {
			return false, err
		}
		results = append(results, result)
		if update && !sameRequirements(result) {
			log.Printf("updating %q", path)
			if err := rewriteWant(path, got); err != nil {
				return false, err
			}
		}
	}

	return WriteDiff(writer, results), nil
}

func runCase(ctx context.Context, path string) (*CaseResult, []string, error) {
	golden, err := nilasserttest.LoadGolden(path)
	if err != nil {
		return nil, nil, err
	}
	u := golden.Unit
	store, err := driver.Check(ctx, u.Unit, u.Facts, u.Settings, driver.Options{})
	if err != nil {
		return nil, nil, fmt.Errorf("check %q: %w", path, err)
	}
	got := nilasserttest.Listing(store)
	return &CaseResult{Path: path, Want: ParseRequirements(golden.Want), Got: ParseRequirements(got)}, got, nil
}

// ParseRequirements converts listing lines into a set of requirements.
func ParseRequirements(lines []string) map[Requirement]bool {
	reqs := make(map[Requirement]bool, len(lines))
	for _, line := range lines {
		// Lines look like `<kind> <site>: <message>`.
		site := line
		if _, rest, ok := strings.Cut(line, " "); ok {
			site, _, _ = strings.Cut(rest, ": ")
		}
		reqs[Requirement{Site: site, Line: line}] = true
	}
	return reqs
}

func sameRequirements(r *CaseResult) bool {
	return len(Diff(r.Want, r.Got)) == 0 && len(Diff(r.Got, r.Want)) == 0
}

func rewriteWant(path string, got []string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read golden archive: %w", err)
	}
	archive := txtar.Parse(data)
	want := "# nothing\n"
	if len(got) > 0 {
		want = strings.Join(got, "\n") + "\n"
	}
	for i := range archive.Files {
		if archive.Files[i].Name == nilasserttest.WantSection {
			archive.Files[i].Data = []byte(want)
		}
	}
	if err := os.WriteFile(path, txtar.Format(archive), 0o644); err != nil {
		return fmt.Errorf("write golden archive: %w", err)
	}
	return nil
}

// WriteDiff writes the summary and the diff (if the expected and actual requirements differ)
// of every archive to the writer. If the writer is os.Stdout, it will write the diff in color.
// It returns true if there is no diff.
func WriteDiff(writer io.Writer, results []*CaseResult) bool {
	var want, got int
	identical := true
	for _, r := range results {
		want, got = want+len(r.Want), got+len(r.Got)
		identical = identical && sameRequirements(r)
	}

	MustFprint(fmt.Fprintf(writer, "## Golden Test\n\n"))
	if identical {
		MustFprint(fmt.Fprint(writer, "> [!NOTE]  \n"))
		MustFprint(fmt.Fprintf(writer, "> ✅ Recorded assertions are **identical** to the golden files.\n"))
	} else {
		MustFprint(fmt.Fprintf(writer, "> [!WARNING]  \n"))
		MustFprint(fmt.Fprintf(writer, "> ❌ Recorded assertions are **different** from the golden files"))
		if want < got {
			MustFprint(fmt.Fprintf(writer, " 📈"))
		} else if want > got {
			MustFprint(fmt.Fprintf(writer, " 📉"))
		}
		MustFprint(fmt.Fprint(writer, ".\n"))
	}
	MustFprint(fmt.Fprint(writer, "> \n"))
	MustFprint(fmt.Fprintf(writer, "> **%d** archives, **%d** expected and **%d** recorded assertions\n", len(results), want, got))

	if identical {
		return true
	}

	color.NoColor = true
	if f, ok := writer.(*os.File); ok && f == os.Stdout {
		color.NoColor = false
	}

	MustFprint(fmt.Fprintf(writer, "\n<details>\n"))
	MustFprint(fmt.Fprintf(writer, "<summary>Diffs</summary>\n\n"))
	MustFprint(fmt.Fprintf(writer, "```diff\n"))
	for _, r := range results {
		if sameRequirements(r) {
			continue
		}
		MustFprint(fmt.Fprintf(writer, "@@ %s\n", r.Path))
		for i, diff := range [...][]Requirement{Diff(r.Got, r.Want), Diff(r.Want, r.Got)} {
			prefix, c := "+", color.FgGreen
			if i == 1 {
				prefix, c = "-", color.FgRed
			}
			for _, req := range diff {
				MustFprint(color.New(c).Fprintln(writer, prefix+" "+req.Line))
			}
		}
	}
	MustFprint(fmt.Fprintf(writer, "```\n\n"))
	MustFprint(fmt.Fprintf(writer, "</details>\n"))
	return false
}

// Diff computes the requirements in first but not in second, ordered by site and then by line.
func Diff(first, second map[Requirement]bool) []Requirement {
	var diff []Requirement
	for r := range first {
		if !second[r] {
			diff = append(diff, r)
		}
	}
	// Sort the diff such that we have stable ordering for the same runs.
	slices.SortFunc(diff, func(i, j Requirement) int {
		if n := cmp.Compare(i.Site, j.Site); n != 0 {
			return n
		}
		return cmp.Compare(i.Line, j.Line)
	})
	return diff
}

// MustFprint is a helper function that takes the result of the family of Fprint functions and
// panics if the error is nonnil.
func MustFprint(_ int, err error) {
	if err != nil {
		panic(err)
	}
}

func main() {
	var dir, resultFile string
	var update bool
	cmd := &cobra.Command{
		Use:          "golden-test",
		Short:        "Compare the recorded assertions with the golden archives",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			writer := io.Writer(os.Stdout)
			if resultFile != "" {
				f, err := os.OpenFile(resultFile, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
				if err != nil {
					return fmt.Errorf("open result file: %w", err)
				}
				defer f.Close()
				writer = f
			}
			identical, err := Run(cmd.Context(), writer, dir, update)
			if err != nil {
				return err
			}
			if !identical && !update {
				return fmt.Errorf("golden archives in %q are out of date, rerun with --update", dir)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", filepath.Join("driver", "testdata"), "the directory of the golden archives")
	cmd.Flags().BoolVar(&update, "update", false, "rewrite the want sections with the recorded assertions")
	cmd.Flags().StringVar(&resultFile, "result-file", "", "the file to write the diff to, default stdout")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
