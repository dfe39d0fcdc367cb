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

// scalarCodec is the per-scalar vtable. Codecs are selected by indexing
// [scalarCodecs] with the schema's type tag; collections and `any` have no
// codec and are handled by the engines and the cursor driver directly.
type scalarCodec struct {
	// width is the fixed encoded width for this schema, or -1 when values
	// are stored as a length-prefixed variable record.
	width func(s *Schema) int

	// encode turns a typed value into its wire bytes. For variable-width
	// codecs the length prefix is the cursor's job, not the codec's.
	encode func(s *Schema, v any) ([]byte, error)

	// decode turns wire bytes back into the typed value.
	decode func(s *Schema, raw []byte) any

	// fromJSON coerces a JSON literal (as decoded by the JSON codec) into
	// the typed value. Used for schema defaults and untyped writes.
	fromJSON func(s *Schema, v any) (any, error)

	// toJSON turns the typed value into a JSON-encodable value.
	toJSON func(s *Schema, v any) any
}

var scalarCodecs = [numTypeKeys]*scalarCodec{
	TypeString:  stringCodec,
	TypeBytes:   bytesCodec,
	TypeInt8:    intCodec,
	TypeInt16:   intCodec,
	TypeInt32:   intCodec,
	TypeInt64:   intCodec,
	TypeUint8:   uintCodec,
	TypeUint16:  uintCodec,
	TypeUint32:  uintCodec,
	TypeUint64:  uintCodec,
	TypeFloat:   floatCodec,
	TypeDouble:  floatCodec,
	TypeDecimal: decimalCodec,
	TypeBool:    boolCodec,
	TypeGeo:     geoCodec,
	TypeUUID:    uuidCodec,
	TypeULID:    ulidCodec,
	TypeDate:    dateCodec,
	TypeOption:  optionCodec,
}

// typeKeyOf maps a Go value to the type tag its codec produces. It is the
// typed read/write side of the typecast check.
func typeKeyOf(v any) TypeKey {
	switch v.(type) {
	case string:
		return TypeString
	case []byte:
		return TypeBytes
	case int8:
		return TypeInt8
	case int16:
		return TypeInt16
	case int32:
		return TypeInt32
	case int64:
		return TypeInt64
	case uint8:
		return TypeUint8
	case uint16:
		return TypeUint16
	case uint32:
		return TypeUint32
	case uint64:
		return TypeUint64
	case float32:
		return TypeFloat
	case float64:
		return TypeDouble
	case Decimal:
		return TypeDecimal
	case bool:
		return TypeBool
	case Geo:
		return TypeGeo
	case UUID:
		return TypeUUID
	case ULID:
		return TypeULID
	case Date:
		return TypeDate
	case Choice:
		return TypeOption
	}
	return TypeNone
}
