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

// The compiled byte-schema is a flat pre-order walk of the tree: one type
// tag per node, the node's variant fields, then its children. It carries
// everything JSON parsing validated, so rebuilding a tree from bytes needs
// only length checks.

// Bytes compiles the schema tree into its byte form.
func (s *Schema) Bytes() []byte {
	return appendSchemaBytes(nil, s)
}

func appendSchemaBytes(dst []byte, s *Schema) []byte {
	dst = append(dst, byte(s.Key))
	switch s.Key {
	case TypeAny, TypeUUID, TypeULID:
		// Tag only.
	case TypeString, TypeBytes:
		dst = append(dst, beBytes16(s.Size)...)
		dst = appendSizedDefault(dst, s)
	case TypeDecimal:
		dst = append(dst, s.Exp)
		dst = appendScalarDefault(dst, s)
	case TypeGeo:
		dst = append(dst, s.GeoSize)
		dst = appendScalarDefault(dst, s)
	case TypeOption:
		idx := byte(0)
		if s.Default != nil {
			raw, _ := optionCodec.encode(s, s.Default)
			idx = raw[0] + 1
		}
		dst = append(dst, idx, byte(len(s.Choices)))
		for _, c := range s.Choices {
			dst = append(dst, byte(len(c)))
			dst = append(dst, c...)
		}
	case TypeTable:
		dst = append(dst, byte(len(s.Columns)))
		for _, col := range s.Columns {
			dst = append(dst, byte(len(col.Name)))
			dst = append(dst, col.Name...)
			dst = appendSchemaBytes(dst, col.Schema)
		}
	case TypeMap:
		dst = appendSchemaBytes(dst, s.Value)
	case TypeList:
		dst = appendSchemaBytes(dst, s.Of)
	case TypeTuple:
		sorted := byte(0)
		if s.Sorted {
			sorted = 1
		}
		dst = append(dst, sorted, byte(len(s.Values)))
		for _, v := range s.Values {
			dst = appendSchemaBytes(dst, v)
		}
	default:
		// Fixed-width scalars: int, uint, float, double, bool, date.
		dst = appendScalarDefault(dst, s)
	}
	return dst
}

func appendScalarDefault(dst []byte, s *Schema) []byte {
	if s.Default == nil {
		return append(dst, 0)
	}
	raw, _ := scalarCodecs[s.Key].encode(s, s.Default)
	return append(append(dst, 1), raw...)
}

// appendSizedDefault encodes a string/bytes default as a u16 length+1 (zero
// meaning absent) followed by the payload.
func appendSizedDefault(dst []byte, s *Schema) []byte {
	if s.Default == nil {
		return append(dst, beBytes16(0)...)
	}
	var raw []byte
	if s.Key == TypeString {
		raw = []byte(s.Default.(string))
	} else {
		raw = s.Default.([]byte)
	}
	dst = append(dst, beBytes16(uint16(len(raw)+1))...)
	return append(dst, raw...)
}

// SchemaFromBytes rebuilds a parsed schema tree from its compiled byte
// form. The bytes are assumed to have been produced by [Schema.Bytes]; only
// truncation, unknown type tags and trailing bytes are detected.
func SchemaFromBytes(data []byte) (*Schema, error) {
	s, n, err := parseSchemaBytes(data, 0)
	if err != nil {
		return nil, err
	}
	if n != len(data) {
		return nil, schemaErrf("%d trailing bytes after schema", len(data)-n)
	}
	return s, nil
}

func parseSchemaBytes(data []byte, off int) (*Schema, int, error) {
	if off >= len(data) {
		return nil, 0, schemaErrf("truncated byte schema")
	}
	key := TypeKey(data[off])
	off++
	if key == TypeNone || key >= numTypeKeys {
		return nil, 0, schemaErrf("byte schema has unknown tag %d", key)
	}
	s := &Schema{Key: key}
	var err error
	switch key {
	case TypeAny:
	case TypeUUID, TypeULID:
		s.Sortable = true
	case TypeString, TypeBytes:
		if off+4 > len(data) {
			return nil, 0, schemaErrf("truncated byte schema")
		}
		s.Size = uint16(data[off])<<8 | uint16(data[off+1])
		dlen := int(data[off+2])<<8 | int(data[off+3])
		off += 4
		s.Sortable = s.Size > 0
		if dlen > 0 {
			dlen--
			if off+dlen > len(data) {
				return nil, 0, schemaErrf("truncated byte schema")
			}
			if key == TypeString {
				s.Default = string(data[off : off+dlen])
			} else {
				s.Default = append([]byte(nil), data[off:off+dlen]...)
			}
			off += dlen
		}
	case TypeDecimal:
		if off >= len(data) {
			return nil, 0, schemaErrf("truncated byte schema")
		}
		s.Exp = data[off]
		s.Sortable = true
		off, err = parseScalarDefault(s, data, off+1)
		if err != nil {
			return nil, 0, err
		}
	case TypeGeo:
		if off >= len(data) {
			return nil, 0, schemaErrf("truncated byte schema")
		}
		s.GeoSize = data[off]
		s.Sortable = true
		off, err = parseScalarDefault(s, data, off+1)
		if err != nil {
			return nil, 0, err
		}
	case TypeOption:
		if off+2 > len(data) {
			return nil, 0, schemaErrf("truncated byte schema")
		}
		defaultIdx := data[off]
		count := int(data[off+1])
		off += 2
		for range count {
			if off >= len(data) {
				return nil, 0, schemaErrf("truncated byte schema")
			}
			n := int(data[off])
			off++
			if off+n > len(data) {
				return nil, 0, schemaErrf("truncated byte schema")
			}
			s.Choices = append(s.Choices, string(data[off:off+n]))
			off += n
		}
		s.Sortable = true
		if defaultIdx > 0 {
			s.Default = Choice(s.Choices[defaultIdx-1])
		}
	case TypeTable:
		if off >= len(data) {
			return nil, 0, schemaErrf("truncated byte schema")
		}
		count := int(data[off])
		off++
		for i := range count {
			if off >= len(data) {
				return nil, 0, schemaErrf("truncated byte schema")
			}
			n := int(data[off])
			off++
			if off+n > len(data) {
				return nil, 0, schemaErrf("truncated byte schema")
			}
			name := string(data[off : off+n])
			off += n
			var child *Schema
			child, off, err = parseSchemaBytes(data, off)
			if err != nil {
				return nil, 0, err
			}
			s.Columns = append(s.Columns, Column{Index: uint8(i), Name: name, Schema: child})
		}
	case TypeMap:
		s.Value, off, err = parseSchemaBytes(data, off)
		if err != nil {
			return nil, 0, err
		}
	case TypeList:
		s.Of, off, err = parseSchemaBytes(data, off)
		if err != nil {
			return nil, 0, err
		}
	case TypeTuple:
		if off+2 > len(data) {
			return nil, 0, schemaErrf("truncated byte schema")
		}
		s.Sorted = data[off] == 1
		count := int(data[off+1])
		off += 2
		for range count {
			var child *Schema
			child, off, err = parseSchemaBytes(data, off)
			if err != nil {
				return nil, 0, err
			}
			s.Values = append(s.Values, child)
		}
		s.Sortable = s.Sorted
	case TypeFloat, TypeDouble:
		off, err = parseScalarDefault(s, data, off)
		if err != nil {
			return nil, 0, err
		}
	default:
		// int, uint, bool, date
		s.Sortable = true
		off, err = parseScalarDefault(s, data, off)
		if err != nil {
			return nil, 0, err
		}
	}
	return s, off, nil
}

func parseScalarDefault(s *Schema, data []byte, off int) (int, error) {
	if off >= len(data) {
		return 0, schemaErrf("truncated byte schema")
	}
	has := data[off]
	off++
	if has == 0 {
		return off, nil
	}
	co := scalarCodecs[s.Key]
	w := co.width(s)
	if off+w > len(data) {
		return 0, schemaErrf("truncated byte schema")
	}
	s.Default = co.decode(s, data[off:off+w])
	return off + w, nil
}
