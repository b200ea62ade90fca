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

package runtime

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pingcap/errors"

	"github.com/anthill-io/anthill/pkg/object"
)

// Format renders a handle for diagnostics. The noop object renders as
// "_", atoms by name, scalars by value, actors as their address and a
// live continuation as its address with the frame spelled out. The
// caller must hold a reference while formatting a continuation.
func (rt *Runtime) Format(ref object.Ref) string {
	if ref.IsContinuation() {
		if payload, err := rt.reg.Get(ref); err == nil {
			c := payload.(*continuation)
			var sb strings.Builder
			sb.WriteString(ref.Address().String())
			sb.WriteByte('[')
			for i, f := range c.frame {
				if i > 0 {
					sb.WriteByte(' ')
				}
				sb.WriteString(f.String())
			}
			sb.WriteByte(']')
			return sb.String()
		}
	}
	return ref.String()
}

// Fdump writes the rendering of a handle to w, followed by a newline.
func (rt *Runtime) Fdump(w io.Writer, ref object.Ref) error {
	_, err := fmt.Fprintln(w, rt.Format(ref))
	return errors.Trace(err)
}

// Print dumps a handle to stdout.
func (rt *Runtime) Print(ref object.Ref) {
	_ = rt.Fdump(os.Stdout, ref)
}
