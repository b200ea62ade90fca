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

import "sync"

// atoms is the process-wide interning table. It is populated lazily,
// a name is immutable once inserted and entries are never evicted, so
// an atom handle stays valid for the lifetime of the process and two
// atoms with the same name always compare equal.
var atoms = &internTable{index: make(map[string]uint32)}

type internTable struct {
	mu    sync.RWMutex
	index map[string]uint32
	names []string
}

// Atom returns the handle of the atom with the given name, interning
// the name on first use. Safe for concurrent callers.
func Atom(name string) Ref {
	atoms.mu.RLock()
	i, ok := atoms.index[name]
	atoms.mu.RUnlock()
	if !ok {
		atoms.mu.Lock()
		i, ok = atoms.index[name]
		if !ok {
			i = uint32(len(atoms.names))
			atoms.names = append(atoms.names, name)
			atoms.index[name] = i
		}
		atoms.mu.Unlock()
	}
	return Ref{kind: KindAtom, slot: i}
}

func atomName(i uint32) string {
	atoms.mu.RLock()
	defer atoms.mu.RUnlock()
	return atoms.names[i]
}
