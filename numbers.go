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
	"encoding/binary"
	"math"
)

// Integers are stored big-endian. Signed integers additionally have their
// sign bit flipped so that an unsigned byte compare orders them numerically;
// floats are plain IEEE-754 big-endian and are not byte-order comparable.

var intCodec = &scalarCodec{
	width: intWidth,
	encode: func(s *Schema, v any) ([]byte, error) {
		switch s.Key {
		case TypeInt8:
			return []byte{uint8(v.(int8)) ^ 0x80}, nil
		case TypeInt16:
			return beBytes16(uint16(v.(int16)) ^ 0x8000), nil
		case TypeInt32:
			return beBytes32(uint32(v.(int32)) ^ 0x8000_0000), nil
		default:
			return beBytes64(uint64(v.(int64)) ^ 0x8000_0000_0000_0000), nil
		}
	},
	decode: func(s *Schema, raw []byte) any {
		switch s.Key {
		case TypeInt8:
			return int8(raw[0] ^ 0x80)
		case TypeInt16:
			return int16(binary.BigEndian.Uint16(raw) ^ 0x8000)
		case TypeInt32:
			return int32(binary.BigEndian.Uint32(raw) ^ 0x8000_0000)
		default:
			return int64(binary.BigEndian.Uint64(raw) ^ 0x8000_0000_0000_0000)
		}
	},
	fromJSON: func(s *Schema, v any) (any, error) {
		n, ok := asInt64(v)
		if !ok {
			return nil, schemaErrf("%s value must be a JSON integer, got %v", s.Key, v)
		}
		lo, hi := intRange(s.Key)
		if n < lo || n > hi {
			return nil, schemaErrf("%d out of range for %s", n, s.Key)
		}
		switch s.Key {
		case TypeInt8:
			return int8(n), nil
		case TypeInt16:
			return int16(n), nil
		case TypeInt32:
			return int32(n), nil
		default:
			return n, nil
		}
	},
	toJSON: func(_ *Schema, v any) any { return jsonNumber(v) },
}

var uintCodec = &scalarCodec{
	width: intWidth,
	encode: func(s *Schema, v any) ([]byte, error) {
		switch s.Key {
		case TypeUint8:
			return []byte{v.(uint8)}, nil
		case TypeUint16:
			return beBytes16(v.(uint16)), nil
		case TypeUint32:
			return beBytes32(v.(uint32)), nil
		default:
			return beBytes64(v.(uint64)), nil
		}
	},
	decode: func(s *Schema, raw []byte) any {
		switch s.Key {
		case TypeUint8:
			return raw[0]
		case TypeUint16:
			return binary.BigEndian.Uint16(raw)
		case TypeUint32:
			return binary.BigEndian.Uint32(raw)
		default:
			return binary.BigEndian.Uint64(raw)
		}
	},
	fromJSON: func(s *Schema, v any) (any, error) {
		n, ok := asUint64(v)
		if !ok {
			return nil, schemaErrf("%s value must be a JSON integer >= 0, got %v", s.Key, v)
		}
		if hi := uintMax(s.Key); n > hi {
			return nil, schemaErrf("%d out of range for %s", n, s.Key)
		}
		switch s.Key {
		case TypeUint8:
			return uint8(n), nil
		case TypeUint16:
			return uint16(n), nil
		case TypeUint32:
			return uint32(n), nil
		default:
			return n, nil
		}
	},
	toJSON: func(_ *Schema, v any) any { return jsonNumber(v) },
}

var floatCodec = &scalarCodec{
	width: func(s *Schema) int {
		if s.Key == TypeFloat {
			return 4
		}
		return 8
	},
	encode: func(s *Schema, v any) ([]byte, error) {
		if s.Key == TypeFloat {
			return beBytes32(math.Float32bits(v.(float32))), nil
		}
		return beBytes64(math.Float64bits(v.(float64))), nil
	},
	decode: func(s *Schema, raw []byte) any {
		if s.Key == TypeFloat {
			return math.Float32frombits(binary.BigEndian.Uint32(raw))
		}
		return math.Float64frombits(binary.BigEndian.Uint64(raw))
	},
	fromJSON: func(s *Schema, v any) (any, error) {
		f, ok := asFloat64(v)
		if !ok {
			return nil, schemaErrf("%s value must be a JSON number, got %v", s.Key, v)
		}
		if s.Key == TypeFloat {
			return float32(f), nil
		}
		return f, nil
	},
	toJSON: func(s *Schema, v any) any {
		if s.Key == TypeFloat {
			return float64(v.(float32))
		}
		return v
	},
}

func intWidth(s *Schema) int {
	switch s.Key {
	case TypeInt8, TypeUint8:
		return 1
	case TypeInt16, TypeUint16:
		return 2
	case TypeInt32, TypeUint32:
		return 4
	default:
		return 8
	}
}

func intRange(k TypeKey) (int64, int64) {
	switch k {
	case TypeInt8:
		return math.MinInt8, math.MaxInt8
	case TypeInt16:
		return math.MinInt16, math.MaxInt16
	case TypeInt32:
		return math.MinInt32, math.MaxInt32
	default:
		return math.MinInt64, math.MaxInt64
	}
}

func uintMax(k TypeKey) uint64 {
	switch k {
	case TypeUint8:
		return math.MaxUint8
	case TypeUint16:
		return math.MaxUint16
	case TypeUint32:
		return math.MaxUint32
	default:
		return math.MaxUint64
	}
}

func beBytes16(v uint16) []byte {
	return []byte{byte(v >> 8), byte(v)}
}

func beBytes32(v uint32) []byte {
	return binary.BigEndian.AppendUint32(nil, v)
}

func beBytes64(v uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, v)
}

func parseIntSchema(obj map[string]any, name string) (*Schema, error) {
	s := &Schema{Key: typeKeyByName[name], Sortable: true}
	if d, ok := obj["default"]; ok {
		v, err := intCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}

func parseUintSchema(obj map[string]any, name string) (*Schema, error) {
	s := &Schema{Key: typeKeyByName[name], Sortable: true}
	if d, ok := obj["default"]; ok {
		v, err := uintCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}

func parseFloatSchema(obj map[string]any, name string) (*Schema, error) {
	s := &Schema{Key: typeKeyByName[name]}
	if d, ok := obj["default"]; ok {
		v, err := floatCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}
