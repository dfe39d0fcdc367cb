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
	"fmt"
	"math"

	set3 "github.com/TomTonic/Set3"
)

// Choice is the value type of option schemas. Only strings present in the
// schema's choices are storable; the wire form is the choice's index, so
// the declared order is the sort order.
type Choice string

var optionCodec = &scalarCodec{
	width: func(*Schema) int { return 1 },
	encode: func(s *Schema, v any) ([]byte, error) {
		c := string(v.(Choice))
		for i, choice := range s.Choices {
			if choice == c {
				return []byte{byte(i)}, nil
			}
		}
		return nil, fmt.Errorf("%w: %q is not one of the schema's choices", ErrTooLarge, c)
	},
	decode: func(s *Schema, raw []byte) any {
		if int(raw[0]) >= len(s.Choices) {
			return Choice("")
		}
		return Choice(s.Choices[raw[0]])
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		str, ok := v.(string)
		if !ok {
			return nil, schemaErrf("option value must be a JSON string")
		}
		return Choice(str), nil
	},
	toJSON: func(_ *Schema, v any) any { return string(v.(Choice)) },
}

func parseOptionSchema(obj map[string]any, _ string) (*Schema, error) {
	s := &Schema{Key: TypeOption, Sortable: true}
	raw, ok := obj["choices"].([]any)
	if !ok {
		return nil, schemaErrf("option needs a 'choices' array of strings")
	}
	if len(raw) == 0 || len(raw) > math.MaxUint8 {
		return nil, schemaErrf("option takes between 1 and 255 choices, got %d", len(raw))
	}
	seen := set3.Empty[string]()
	for i, c := range raw {
		str, okStr := c.(string)
		if !okStr {
			return nil, schemaErrf("choice %d is not a string", i)
		}
		if len(str) > math.MaxUint8 {
			return nil, schemaErrf("choice %q is longer than 255 bytes", str)
		}
		if seen.Contains(str) {
			return nil, schemaErrf("duplicate choice %q", str)
		}
		seen.Add(str)
		s.Choices = append(s.Choices, str)
	}
	if d, ok := obj["default"]; ok {
		v, err := optionCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		if _, err := optionCodec.encode(s, v); err != nil {
			return nil, schemaErrf("default %q is not one of the choices", v)
		}
		s.Default = v
	}
	return s, nil
}
