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

var boolCodec = &scalarCodec{
	width: func(*Schema) int { return 1 },
	encode: func(_ *Schema, v any) ([]byte, error) {
		if v.(bool) {
			return []byte{1}, nil
		}
		return []byte{0}, nil
	},
	decode: func(_ *Schema, raw []byte) any { return raw[0] != 0 },
	fromJSON: func(_ *Schema, v any) (any, error) {
		b, ok := v.(bool)
		if !ok {
			return nil, schemaErrf("bool value must be a JSON boolean, got %T", v)
		}
		return b, nil
	},
	toJSON: func(_ *Schema, v any) any { return v },
}

func parseBoolSchema(obj map[string]any, _ string) (*Schema, error) {
	s := &Schema{Key: TypeBool, Sortable: true}
	if d, ok := obj["default"]; ok {
		v, err := boolCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}
