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

// TypeKey is the 8-bit tag that discriminates every schema variant. The tag
// is the first byte of each node in the byte-schema and the index into the
// engine's dispatch tables.
type TypeKey uint8

// The exhaustive set of schema variants.
const (
	TypeNone TypeKey = iota
	TypeAny
	TypeString
	TypeBytes
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat
	TypeDouble
	TypeDecimal
	TypeBool
	TypeGeo
	TypeUUID
	TypeULID
	TypeDate
	TypeOption
	TypeTable
	TypeMap
	TypeList
	TypeTuple

	numTypeKeys
)

// typeNames maps each key to its JSON schema "type" spelling. Geo is the
// one key with several spellings; geo8 is the canonical one and the schema
// emitter picks the right variant from the node's geo size.
var typeNames = [numTypeKeys]string{
	TypeNone:    "none",
	TypeAny:     "any",
	TypeString:  "string",
	TypeBytes:   "bytes",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeFloat:   "float",
	TypeDouble:  "double",
	TypeDecimal: "dec",
	TypeBool:    "bool",
	TypeGeo:     "geo8",
	TypeUUID:    "uuid",
	TypeULID:    "ulid",
	TypeDate:    "date",
	TypeOption:  "option",
	TypeTable:   "table",
	TypeMap:     "map",
	TypeList:    "list",
	TypeTuple:   "tuple",
}

// String returns the JSON spelling of the type key.
func (k TypeKey) String() string {
	if k >= numTypeKeys {
		return "invalid"
	}
	return typeNames[k]
}

// typeKeyByName resolves a JSON "type" string, including the geo aliases.
// "none" is an internal spelling, not part of the schema language.
var typeKeyByName = func() map[string]TypeKey {
	m := make(map[string]TypeKey, numTypeKeys+2)
	for k := TypeAny; k < numTypeKeys; k++ {
		m[typeNames[k]] = k
	}
	m["geo4"] = TypeGeo
	m["geo16"] = TypeGeo
	return m
}()

// collection reports whether values of this type are collections rather
// than scalars.
func (k TypeKey) collection() bool {
	switch k {
	case TypeTable, TypeMap, TypeList, TypeTuple:
		return true
	}
	return false
}
