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

package config

// This file hosts non-user-configurable parameters --- these are for development and testing purposes only.

// PresentableTextLimit is the maximum number of runes of source text carried in a runtime
// assertion message. Longer texts are trimmed in the middle, since both the beginning (the
// receiver) and the end (the called member) are usually what identifies an expression.
const PresentableTextLimit = 50

// StoreSchemaVersion is the version of the exported annotation store format. It must be bumped
// whenever the encoded layout of annotation.Info or of the store keys changes, so that code
// generation never decodes a store produced by an incompatible checker.
const StoreSchemaVersion uint16 = 1

// DefaultJobs is the number of concurrent checker jobs used when none is configured. Zero means
// runtime.GOMAXPROCS(0).
const DefaultJobs = 0

const uberPkgPathPrefix = "go.uber.org"

// NilAssertPkgPathPrefix is the module path of this project.
const NilAssertPkgPathPrefix = uberPkgPathPrefix + "/nilassert"
