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

// Package config hosts the language settings that gate the nullability checkers, as well as
// development constants.
package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/BurntSushi/toml"
)

// Feature is an opt-in language feature that changes what the checkers do.
type Feature string

// The features the checkers know about.
const (
	// StrictJavaNullabilityAssertions enables assertions on the bodies of declarations whose type
	// is inferred from an expression with enhanced nullability.
	StrictJavaNullabilityAssertions Feature = "StrictJavaNullabilityAssertions"
	// GenerateNullChecksForGenericTypeReturningFunctions asks for null checks on calls to generic
	// functions whose nullable type-parameter return type was substituted with a non-null type.
	// The generic-return checker currently records such calls regardless of this flag; code
	// generation consults it when deciding whether to emit the recorded checks.
	GenerateNullChecksForGenericTypeReturningFunctions Feature = "GenerateNullChecksForGenericTypeReturningFunctions"
)

// KnownFeatures lists every Feature in a stable order.
var KnownFeatures = []Feature{
	StrictJavaNullabilityAssertions,
	GenerateNullChecksForGenericTypeReturningFunctions,
}

// LanguageVersionSettings answers whether a language feature is enabled.
type LanguageVersionSettings interface {
	SupportsFeature(f Feature) bool
}

// LanguageSettings is a fixed set of enabled features. The zero value enables nothing.
type LanguageSettings struct {
	features map[Feature]bool
}

// NewLanguageSettings returns settings with exactly the given features enabled.
func NewLanguageSettings(features ...Feature) *LanguageSettings {
	s := &LanguageSettings{features: make(map[Feature]bool, len(features))}
	for _, f := range features {
		s.features[f] = true
	}
	return s
}

// SupportsFeature implements LanguageVersionSettings.
func (s *LanguageSettings) SupportsFeature(f Feature) bool {
	return s != nil && s.features[f]
}

// Features returns the enabled features in the order of KnownFeatures.
func (s *LanguageSettings) Features() []Feature {
	var enabled []Feature
	for _, f := range KnownFeatures {
		if s.SupportsFeature(f) {
			enabled = append(enabled, f)
		}
	}
	return enabled
}

func (s *LanguageSettings) String() string {
	names := make([]string, 0, len(s.Features()))
	for _, f := range s.Features() {
		names = append(names, "+"+string(f))
	}
	return strings.Join(names, " ")
}

// settingsFile is the on-disk layout of a settings file:
//
//	[language]
//	features = ["StrictJavaNullabilityAssertions"]
type settingsFile struct {
	Language struct {
		Features []string `toml:"features"`
	} `toml:"language"`
}

// LoadLanguageSettings reads language settings from a TOML file. Unknown feature names are
// rejected so that typos do not silently disable a checker.
func LoadLanguageSettings(path string) (*LanguageSettings, error) {
	var f settingsFile
	md, err := toml.DecodeFile(path, &f)
	if err != nil {
		return nil, fmt.Errorf("decode settings file %q: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, fmt.Errorf("settings file %q: unknown keys %v", path, undecoded)
	}
	return ParseFeatures(f.Language.Features)
}

// ParseFeatures builds settings from feature names.
func ParseFeatures(names []string) (*LanguageSettings, error) {
	features := make([]Feature, 0, len(names))
	for _, name := range names {
		f := Feature(strings.TrimPrefix(strings.TrimSpace(name), "+"))
		if !slices.Contains(KnownFeatures, f) {
			return nil, fmt.Errorf("unknown language feature %q", name)
		}
		features = append(features, f)
	}
	return NewLanguageSettings(features...), nil
}
