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

package syntax

import (
	"strings"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/require"
	"go.uber.org/nilassert/typesys"
)

func TestTrimMiddle(t *testing.T) {
	t.Parallel()

	require.Equal(t, "short", TrimMiddle("short", 50))
	exact := strings.Repeat("x", 50)
	require.Equal(t, exact, TrimMiddle(exact, 50))

	long := strings.Repeat("a", 30) + strings.Repeat("b", 30)
	trimmed := TrimMiddle(long, 50)
	require.Equal(t, 50, utf8.RuneCountInString(trimmed))
	require.Equal(t, strings.Repeat("a", 24)+"…"+strings.Repeat("b", 25), trimmed)

	// Runes, not bytes, are counted.
	wide := strings.Repeat("é", 60)
	require.Equal(t, 50, utf8.RuneCountInString(TrimMiddle(wide, 50)))
}

func TestSiteID_Compare(t *testing.T) {
	t.Parallel()

	tests := []struct {
		a, b SiteID
		want int
	}{
		{"A.kt:2:1", "A.kt:10:1", -1},
		{"A.kt:3:9", "A.kt:3:12", -1},
		{"A.kt:3:12", "A.kt:3:12", 0},
		{"B.kt:1:1", "A.kt:99:1", 1},
		{"dir/x:y.kt:4:2", "dir/x:y.kt:30:1", -1},
		{"synthetic", "synthetic", 0},
		{"A.kt:x:1", "A.kt:1:1", 1},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, tt.a.Compare(tt.b), "%s vs %s", tt.a, tt.b)
		require.Equal(t, -tt.want, tt.b.Compare(tt.a), "%s vs %s", tt.b, tt.a)
	}
}

func TestExpression_PresentableText(t *testing.T) {
	t.Parallel()

	e := &Expression{Site: "A.kt:1:1", Text: "javaObject.getDescriptionThatIsMuchLongerThanFiftyCharacters()"}
	require.Equal(t, "javaObject.getDescriptio…ngerThanFiftyCharacters()", e.PresentableText())
}

func TestParseScopeKind(t *testing.T) {
	t.Parallel()

	for _, k := range []ScopeKind{ScopeOther, ScopeCodeBlock, ScopeFunctionInner, ScopePropertyInitializer, ScopePropertyDelegateMethod} {
		parsed, ok := ParseScopeKind(k.String())
		require.True(t, ok)
		require.Equal(t, k, parsed)
	}
	parsed, ok := ParseScopeKind("")
	require.True(t, ok)
	require.Equal(t, ScopeOther, parsed)
	_, ok = ParseScopeKind("nowhere")
	require.False(t, ok)
	require.Equal(t, "unknown", ScopeKind(42).String())
}

func TestTypeMap(t *testing.T) {
	t.Parallel()

	env := typesys.NewEnv()
	m := NewTypeMap()
	exprs := make([]*Expression, 32)
	var wg sync.WaitGroup
	for i := range exprs {
		exprs[i] = &Expression{Site: SiteID(strings.Repeat("s", i+1))}
		wg.Add(1)
		go func(e *Expression) {
			defer wg.Done()
			m.Record(e, env.MustParse("String$"))
		}(exprs[i])
	}
	wg.Wait()

	for _, e := range exprs {
		typ, ok := m.TypeOf(e)
		require.True(t, ok)
		require.Equal(t, "String$", typ.String())
	}
	_, ok := m.TypeOf(&Expression{Site: "other"})
	require.False(t, ok)
}

func TestDeclarationSite(t *testing.T) {
	t.Parallel()

	decls := []Declaration{
		&LocalVariable{Site: "a"},
		&Property{Site: "b"},
		&Function{Site: "c"},
		&PropertyAccessor{Site: "d"},
	}
	var sites []SiteID
	for _, d := range decls {
		sites = append(sites, d.DeclarationSite())
	}
	require.Equal(t, []SiteID{"a", "b", "c", "d"}, sites)
}
