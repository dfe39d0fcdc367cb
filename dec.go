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
	"encoding/json"
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

// Decimal is the value type of dec schemas.
type Decimal = decimal.Decimal

// A dec value is a fixed-point number whose scale is pinned by the schema's
// `exp`. On the wire it is the unscaled 64-bit integer, sign flipped and
// big-endian, so dec stays byte-order comparable where float is not.

var decimalCodec = &scalarCodec{
	width: func(*Schema) int { return 8 },
	encode: func(s *Schema, v any) ([]byte, error) {
		d := v.(Decimal)
		unscaled := d.Shift(int32(s.Exp))
		if !unscaled.IsInteger() {
			return nil, fmt.Errorf("%w: %s does not fit scale %d", ErrTooLarge, d, s.Exp)
		}
		return beBytes64(uint64(unscaled.IntPart()) ^ 0x8000_0000_0000_0000), nil
	},
	decode: func(s *Schema, raw []byte) any {
		unscaled := int64(binary.BigEndian.Uint64(raw) ^ 0x8000_0000_0000_0000)
		return decimal.New(unscaled, -int32(s.Exp))
	},
	fromJSON: func(s *Schema, v any) (any, error) {
		num, ok := v.(json.Number)
		if !ok {
			if f, okf := asFloat64(v); okf {
				return decimal.NewFromFloat(f), nil
			}
			return nil, schemaErrf("dec value must be a JSON number, got %T", v)
		}
		d, err := decimal.NewFromString(num.String())
		if err != nil {
			return nil, schemaErrf("dec value %q: %v", num, err)
		}
		return d, nil
	},
	toJSON: func(s *Schema, v any) any {
		return json.Number(v.(Decimal).StringFixed(int32(s.Exp)))
	},
}

func parseDecimalSchema(obj map[string]any, _ string) (*Schema, error) {
	s := &Schema{Key: TypeDecimal, Sortable: true}
	e, ok := obj["exp"]
	if !ok {
		return nil, schemaErrf("dec needs an 'exp' property")
	}
	n, okN := asUint64(e)
	if !okN || n > math.MaxUint8 {
		return nil, schemaErrf("'exp' must be an integer between 0 and 255")
	}
	s.Exp = uint8(n)
	if d, ok := obj["default"]; ok {
		v, err := decimalCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		// Surface a scale mismatch at schema build time, not first write,
		// and snap the default to the declared scale's representation.
		raw, err := decimalCodec.encode(s, v)
		if err != nil {
			return nil, schemaErrf("default %v does not fit scale %d", v, s.Exp)
		}
		s.Default = decimalCodec.decode(s, raw)
	}
	return s, nil
}
