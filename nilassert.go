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

// Package nilassert implements the top-level entry point that checks a compilation unit for the
// runtime not-null assertions code generation must insert, and reports them.
package nilassert

import (
	"context"
	"fmt"
	"io"
	"regexp"

	"github.com/fatih/color"
	"go.uber.org/nilassert/annotation"
	"go.uber.org/nilassert/config"
	"go.uber.org/nilassert/driver"
	"go.uber.org/nilassert/unitfile"
)

// Analyze runs every checker over u. If settings is nil, the settings declared by the unit file
// are used.
func Analyze(ctx context.Context, u *unitfile.Unit, settings config.LanguageVersionSettings, opts driver.Options) (*annotation.Store, error) {
	if settings == nil {
		settings = u.Settings
	}
	return driver.Check(ctx, u.Unit, u.Facts, settings, opts)
}

// Report is the list of assertions required in a unit.
type Report struct {
	Unit    string
	Entries []annotation.Entry
}

// NewReport builds the report of the requirements in s, ordered by slot kind and then by site.
func NewReport(unit string, s *annotation.Store) *Report {
	return &Report{Unit: unit, Entries: s.Sorted()}
}

// Filter returns a report with the entries for which keep returns true.
func (r *Report) Filter(keep func(annotation.Entry) bool) *Report {
	filtered := &Report{Unit: r.Unit}
	for _, e := range r.Entries {
		if keep(e) {
			filtered.Entries = append(filtered.Entries, e)
		}
	}
	return filtered
}

// Print writes one line per entry to w, colored if pretty is set.
func (r *Report) Print(w io.Writer, pretty bool) error {
	for _, e := range r.Entries {
		msg := message(e)
		if pretty {
			msg = prettyPrintMessage(msg)
		}
		if _, err := fmt.Fprintln(w, msg); err != nil {
			return err
		}
	}
	return nil
}

func message(e annotation.Entry) string {
	return fmt.Sprintf("%s: assert not-null: `%s` (%s)", e.Site, e.Info.Message, e.Kind)
}

var (
	codeReferencePattern = regexp.MustCompile("`(.*?)`")
	sitePattern          = regexp.MustCompile(`^([^\s]+):\s`)
	slotPattern          = regexp.MustCompile(`\((\w+)\)$`)
)

var (
	_codeColor = color.New(color.FgHiMagenta)
	_siteColor = color.New(color.FgCyan)
	_slotColor = color.New(color.Bold)
	_headColor = color.New(color.FgYellow)
)

// prettyPrintMessage post-processes a report line to color the site, the asserted code, and the
// slot kind.
func prettyPrintMessage(msg string) string {
	msg = codeReferencePattern.ReplaceAllStringFunc(msg, func(s string) string {
		return _codeColor.Sprint(s)
	})
	msg = sitePattern.ReplaceAllStringFunc(msg, func(s string) string {
		return _siteColor.Sprint(s[:len(s)-2]) + ": "
	})
	msg = slotPattern.ReplaceAllStringFunc(msg, func(s string) string {
		return "(" + _slotColor.Sprint(s[1:len(s)-1]) + ")"
	})
	return _headColor.Sprint("assert: ") + msg
}
