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
	"bytes"
	"fmt"
	"math"
)

// String and bytes values share one layout. With a declared size the value
// occupies exactly that many bytes, zero padded, which keeps the wire form
// memcmp-ordered; without one it is stored as a u16 length prefix plus
// payload, and updates that change the length allocate a fresh record.

var stringCodec = &scalarCodec{
	width: sizedWidth,
	encode: func(s *Schema, v any) ([]byte, error) {
		return encodeSized(s, []byte(v.(string)))
	},
	decode: func(s *Schema, raw []byte) any {
		return string(trimSized(s, raw))
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		str, ok := v.(string)
		if !ok {
			return nil, schemaErrf("string value must be a JSON string, got %T", v)
		}
		return str, nil
	},
	toJSON: func(_ *Schema, v any) any { return v },
}

var bytesCodec = &scalarCodec{
	width: sizedWidth,
	encode: func(s *Schema, v any) ([]byte, error) {
		return encodeSized(s, v.([]byte))
	},
	decode: func(s *Schema, raw []byte) any {
		out := trimSized(s, raw)
		return append([]byte(nil), out...)
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		switch bv := v.(type) {
		case string:
			return []byte(bv), nil
		case []any:
			out := make([]byte, len(bv))
			for i, e := range bv {
				n, ok := asUint64(e)
				if !ok || n > math.MaxUint8 {
					return nil, schemaErrf("bytes literal element %d is not a byte", i)
				}
				out[i] = byte(n)
			}
			return out, nil
		}
		return nil, schemaErrf("bytes value must be a JSON string or byte array, got %T", v)
	},
	toJSON: func(_ *Schema, v any) any {
		raw := v.([]byte)
		out := make([]any, len(raw))
		for i, b := range raw {
			out[i] = jsonNumber(b)
		}
		return out
	},
}

func sizedWidth(s *Schema) int {
	if s.Size > 0 {
		return int(s.Size)
	}
	return -1
}

func encodeSized(s *Schema, raw []byte) ([]byte, error) {
	if s.Size > 0 {
		if len(raw) > int(s.Size) {
			return nil, fmt.Errorf("%w: %d bytes exceeds declared size %d", ErrTooLarge, len(raw), s.Size)
		}
		padded := make([]byte, s.Size)
		copy(padded, raw)
		return padded, nil
	}
	if len(raw) > math.MaxUint16 {
		return nil, fmt.Errorf("%w: %d bytes exceeds the u16 length prefix", ErrTooLarge, len(raw))
	}
	return raw, nil
}

func trimSized(s *Schema, raw []byte) []byte {
	if s.Size > 0 {
		return bytes.TrimRight(raw, "\x00")
	}
	return raw
}

func parseStringSchema(obj map[string]any, _ string) (*Schema, error) {
	s := &Schema{Key: TypeString}
	if err := parseSizedProps(s, obj); err != nil {
		return nil, err
	}
	if d, ok := obj["default"]; ok {
		v, err := stringCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}

func parseBytesSchema(obj map[string]any, _ string) (*Schema, error) {
	s := &Schema{Key: TypeBytes}
	if err := parseSizedProps(s, obj); err != nil {
		return nil, err
	}
	if d, ok := obj["default"]; ok {
		v, err := bytesCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}

// parseSizedProps reads the optional `size` property shared by string and
// bytes. A declared size makes the value fixed width and therefore sortable.
func parseSizedProps(s *Schema, obj map[string]any) error {
	d, ok := obj["size"]
	if !ok {
		return nil
	}
	n, okN := asUint64(d)
	if !okN || n == 0 || n > math.MaxUint16 {
		return schemaErrf("'size' must be an integer between 1 and %d", math.MaxUint16)
	}
	s.Size = uint16(n)
	s.Sortable = true
	return nil
}
