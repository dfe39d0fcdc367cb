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

	"github.com/tiendc/go-deepcopy"
)

// Schema is one node of the parsed schema tree. A schema is built once,
// either from its JSON form by [ParseSchema] or from its compiled byte form
// by [SchemaFromBytes], and is immutable for the lifetime of every buffer
// minted from it.
//
// Only the fields that apply to a node's Key are populated; the rest stay
// zero.
type Schema struct {
	// Key is the type tag discriminating this node.
	Key TypeKey

	// Sortable reports whether the wire bytes of values of this schema,
	// compared lexicographically, agree with the logical value order.
	Sortable bool

	// Size is the declared fixed width for string and bytes nodes;
	// zero means variable width.
	Size uint16

	// GeoSize is 4, 8 or 16 for geo nodes.
	GeoSize uint8

	// Exp is the fixed decimal scale for dec nodes.
	Exp uint8

	// Sorted marks a tuple declared byte-order comparable.
	Sorted bool

	// Default is the declared default value, typed the way the codec
	// returns values, or nil when absent.
	Default any

	// Choices holds the option strings of an option node, in declared
	// order.
	Choices []string

	// Columns holds the ordered column set of a table node.
	Columns []Column

	// Value is the value schema of a map node.
	Value *Schema

	// Of is the element schema of a list node.
	Of *Schema

	// Values holds the element schemas of a tuple node.
	Values []*Schema
}

// Column is one named, indexed column of a table schema.
type Column struct {
	Index  uint8
	Name   string
	Schema *Schema
}

// ParseSchema parses and validates a JSON schema document, returning the
// root of the parsed tree. The compiled byte form is available from
// [Schema.Bytes].
func ParseSchema(data []byte) (*Schema, error) {
	var doc any
	if err := jsonCodec.Unmarshal(data, &doc); err != nil {
		return nil, schemaErrf("not valid JSON: %v", err)
	}
	return parseSchemaNode(doc)
}

// parseSchemaNode dispatches one JSON schema object on its "type" property.
func parseSchemaNode(v any) (*Schema, error) {
	obj, ok := v.(map[string]any)
	if !ok {
		return nil, schemaErrf("schema must be a JSON object, got %T", v)
	}
	name, ok := obj["type"].(string)
	if !ok {
		return nil, schemaErrf("schema needs a string 'type' property")
	}
	key, ok := typeKeyByName[name]
	if !ok {
		return nil, schemaErrf("unknown type %q", name)
	}
	parse := schemaParsers[key]
	node, err := parse(obj, name)
	if err != nil {
		return nil, err
	}
	return node, nil
}

// schemaParsers is the JSON-side dispatch table, one entry per type tag.
// The parser functions live next to their codecs.
//
// Populated from init rather than a composite literal: several of these
// functions (e.g. parseListSchema) call parseSchemaNode, which reads
// schemaParsers, so a direct initializer creates an initialization cycle.
var schemaParsers [numTypeKeys]func(obj map[string]any, name string) (*Schema, error)

func init() {
	schemaParsers = [numTypeKeys]func(obj map[string]any, name string) (*Schema, error){
		TypeAny:     parseAnySchema,
		TypeString:  parseStringSchema,
		TypeBytes:   parseBytesSchema,
		TypeInt8:    parseIntSchema,
		TypeInt16:   parseIntSchema,
		TypeInt32:   parseIntSchema,
		TypeInt64:   parseIntSchema,
		TypeUint8:   parseUintSchema,
		TypeUint16:  parseUintSchema,
		TypeUint32:  parseUintSchema,
		TypeUint64:  parseUintSchema,
		TypeFloat:   parseFloatSchema,
		TypeDouble:  parseFloatSchema,
		TypeDecimal: parseDecimalSchema,
		TypeBool:    parseBoolSchema,
		TypeGeo:     parseGeoSchema,
		TypeUUID:    parseUUIDSchema,
		TypeULID:    parseULIDSchema,
		TypeDate:    parseDateSchema,
		TypeOption:  parseOptionSchema,
		TypeTable:   parseTableSchema,
		TypeMap:     parseMapSchema,
		TypeList:    parseListSchema,
		TypeTuple:   parseTupleSchema,
	}
}

// JSON re-emits the canonical JSON form of the schema. The output
// round-trips through [ParseSchema] for every accepted schema.
func (s *Schema) JSON() ([]byte, error) {
	return jsonCodec.Marshal(s.jsonValue())
}

// Clone returns an independent deep copy of the schema tree.
func (s *Schema) Clone() (*Schema, error) {
	dst := new(Schema)
	if err := deepcopy.Copy(dst, s); err != nil {
		return nil, fmt.Errorf("clone schema: %w", err)
	}
	return dst, nil
}

// fixedWidth returns the fixed encoded width of values of this schema, or
// -1 when values are variable width, or 0 for collections and any.
func (s *Schema) fixedWidth() int {
	c := scalarCodecs[s.Key]
	if c == nil {
		return 0
	}
	return c.width(s)
}
