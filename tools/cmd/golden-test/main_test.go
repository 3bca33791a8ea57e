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
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/nilassert/nilasserttest"
)

const _archive = `A local variable under strict assertions.

-- unit.yaml --
name: A.kt
features: [StrictJavaNullabilityAssertions]
expressions:
  - {site: "A.kt:1:9", text: "j.name()", type: "String$"}
declarations:
  - {kind: local_variable, site: "A.kt:1:5", name: x, type: String, initializer: "A.kt:1:9"}
-- want --
`

func TestParseRequirements(t *testing.T) {
	t.Parallel()

	reqs := ParseRequirements([]string{`body A.kt:1:9: "j.name()"`, "garbage"})
	require.Equal(t, map[Requirement]bool{
		{Site: "A.kt:1:9", Line: `body A.kt:1:9: "j.name()"`}: true,
		{Site: "garbage", Line: "garbage"}:                     true,
	}, reqs)
}

func TestWriteDiff(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	result := &CaseResult{
		Path: "a.txtar",
		Want: ParseRequirements([]string{`body A.kt:1:9: "x"`}),
		Got:  ParseRequirements([]string{`body A.kt:1:9: "x"`}),
	}
	require.True(t, WriteDiff(&buf, []*CaseResult{result}))
	require.Contains(t, buf.String(), "## Golden Test") // Must contain the title.
	require.Contains(t, buf.String(), "are **identical**")

	result.Want[Requirement{Site: "A.kt:2:1", Line: `expression A.kt:2:1: "y"`}] = true
	result.Got[Requirement{Site: "A.kt:3:1", Line: `receiver A.kt:3:1: "z"`}] = true
	buf.Reset()
	require.False(t, WriteDiff(&buf, []*CaseResult{result}))
	s := buf.String()
	require.Contains(t, s, "are **different**")
	require.Contains(t, s, "@@ a.txtar")
	require.Contains(t, s, `- expression A.kt:2:1: "y"`)
	require.Contains(t, s, `+ receiver A.kt:3:1: "z"`)
}

func TestDiff(t *testing.T) {
	t.Parallel()

	base := ParseRequirements([]string{`body A.kt:1:1: "a"`, `body A.kt:2:1: "b"`, `body A.kt:4:1: "c"`})
	test := ParseRequirements([]string{`body A.kt:1:1: "a"`, `body A.kt:3:1: "b"`, `body A.kt:4:1: "d"`})

	require.Equal(t, []Requirement{
		{Site: "A.kt:2:1", Line: `body A.kt:2:1: "b"`},
		{Site: "A.kt:4:1", Line: `body A.kt:4:1: "c"`},
	}, Diff(base, test))
	require.Equal(t, []Requirement{
		{Site: "A.kt:3:1", Line: `body A.kt:3:1: "b"`},
		{Site: "A.kt:4:1", Line: `body A.kt:4:1: "d"`},
	}, Diff(test, base))
}

// TestRun_Update does not run in parallel with TestWriteDiff: both write the color setting.
func TestRun_Update(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txtar")
	require.NoError(t, os.WriteFile(path, []byte(_archive), 0o600))

	var buf bytes.Buffer
	identical, err := Run(context.Background(), &buf, dir, false)
	require.NoError(t, err)
	require.False(t, identical)
	require.Contains(t, buf.String(), `+ body A.kt:1:9: "j.name()"`)

	_, err = Run(context.Background(), &buf, dir, true)
	require.NoError(t, err)
	golden, err := nilasserttest.LoadGolden(path)
	require.NoError(t, err)
	require.Equal(t, []string{`body A.kt:1:9: "j.name()"`}, golden.Want)
	require.Equal(t, "A local variable under strict assertions.", golden.Comment)

	buf.Reset()
	identical, err = Run(context.Background(), &buf, dir, false)
	require.NoError(t, err)
	require.True(t, identical)
}

func TestRun_NoArchives(t *testing.T) {
	t.Parallel()

	_, err := Run(context.Background(), &bytes.Buffer{}, t.TempDir(), false)
	require.ErrorContains(t, err, "no golden archives")
}

func TestMustFprint(t *testing.T) {
	t.Parallel()

	require.Panics(t, func() {
		MustFprint(0, errors.New("test"))
	})
	require.NotPanics(t, func() {
		MustFprint(0, nil)
	})
}

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
