// Copyright 2025 anthill Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// See the License for the specific language governing permissions and
// limitations under the License.

package object

// Matcher tests handles against an expectation. Value handles match by
// value, atoms by name, actors and continuations by identity.
type Matcher struct {
	want Ref
}

// Eq returns a matcher that matches handles equal to want.
func Eq(want Ref) Matcher {
	return Matcher{want: want}
}

// EqInt returns a matcher that matches the given integer value.
func EqInt(v int64) Matcher {
	return Matcher{want: IntRef(v)}
}

// EqAtom returns a matcher that matches the atom with the given name.
func EqAtom(name string) Matcher {
	return Matcher{want: Atom(name)}
}

// Matches reports whether subject satisfies the matcher.
func (m Matcher) Matches(subject Ref) bool {
	return m.want == subject
}
