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

// jsonValue rebuilds the JSON object form of a schema node. Feeding the
// result back through parseSchemaNode yields a structurally equal tree.
func (s *Schema) jsonValue() map[string]any {
	out := map[string]any{"type": s.typeName()}
	switch s.Key {
	case TypeString, TypeBytes:
		if s.Size > 0 {
			out["size"] = jsonNumber(s.Size)
		}
	case TypeDecimal:
		out["exp"] = jsonNumber(s.Exp)
	case TypeOption:
		choices := make([]any, len(s.Choices))
		for i, c := range s.Choices {
			choices[i] = c
		}
		out["choices"] = choices
	case TypeTable:
		cols := make([]any, len(s.Columns))
		for i, col := range s.Columns {
			cols[i] = []any{col.Name, col.Schema.jsonValue()}
		}
		out["columns"] = cols
	case TypeMap:
		out["value"] = s.Value.jsonValue()
	case TypeList:
		out["of"] = s.Of.jsonValue()
	case TypeTuple:
		values := make([]any, len(s.Values))
		for i, v := range s.Values {
			values[i] = v.jsonValue()
		}
		out["values"] = values
		if s.Sorted {
			out["sorted"] = true
		}
	}
	if s.Default != nil {
		out["default"] = scalarCodecs[s.Key].toJSON(s, s.Default)
	}
	return out
}

// typeName picks the JSON spelling, resolving the geo size aliases.
func (s *Schema) typeName() string {
	if s.Key == TypeGeo {
		switch s.GeoSize {
		case 4:
			return "geo4"
		case 16:
			return "geo16"
		}
	}
	return s.Key.String()
}
