// Copyright 2023-2026 the mutbuf authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mutbuf

import (
	"errors"
	"fmt"

	"github.com/mutbuf/mutbuf/internal/arena"
)

// Sentinel errors. Callers match them with [errors.Is]; most are returned
// wrapped with position or path context.
var (
	// ErrSchema covers all schema validation failures: a missing required
	// property, an unknown type, a violated constraint, or a non-sortable
	// child inside a sorted tuple.
	ErrSchema = errors.New("invalid schema")

	// ErrTypecast is returned when a typed read or write does not match
	// the schema governing the addressed value.
	ErrTypecast = errors.New("typecast mismatch")

	// ErrPath is returned for structurally impossible paths: a non-integer
	// segment into a list or tuple, an unknown column name, or a tuple
	// index out of range.
	ErrPath = errors.New("bad path")

	// ErrTooLarge is returned when a value exceeds a schema-imposed size:
	// a map key of 255 bytes or more, a string or bytes value longer than
	// its declared size, or an option choice not present in the schema.
	ErrTooLarge = errors.New("value out of bounds")

	// ErrOverflow is returned when the arena cannot represent the offset a
	// new allocation would need. The buffer is unusable for further writes.
	ErrOverflow = arena.ErrOverflow
)

func schemaErrf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrSchema, fmt.Sprintf(format, args...))
}

func pathErrf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrPath, fmt.Sprintf(format, args...))
}

func typecastErrf(want *Schema, got TypeKey) error {
	return fmt.Errorf("%w: schema holds %s, caller asked for %s", ErrTypecast, want.Key, got)
}
