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
	"github.com/google/uuid"
	"github.com/oklog/ulid/v2"
)

// UUID is the value type of uuid schemas.
type UUID = uuid.UUID

// ULID is the value type of ulid schemas. ULIDs byte-compare by their
// embedded timestamp, which is what makes the schema sortable.
type ULID = ulid.ULID

// Neither identifier type carries a schema default; a generated identifier
// baked into a schema would repeat across buffers.

var uuidCodec = &scalarCodec{
	width: func(*Schema) int { return 16 },
	encode: func(_ *Schema, v any) ([]byte, error) {
		u := v.(UUID)
		return u[:], nil
	},
	decode: func(_ *Schema, raw []byte) any {
		var u UUID
		copy(u[:], raw)
		return u
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		str, ok := v.(string)
		if !ok {
			return nil, schemaErrf("uuid value must be a JSON string")
		}
		u, err := uuid.Parse(str)
		if err != nil {
			return nil, schemaErrf("uuid value %q: %v", str, err)
		}
		return u, nil
	},
	toJSON: func(_ *Schema, v any) any { return v.(UUID).String() },
}

var ulidCodec = &scalarCodec{
	width: func(*Schema) int { return 16 },
	encode: func(_ *Schema, v any) ([]byte, error) {
		u := v.(ULID)
		return u[:], nil
	},
	decode: func(_ *Schema, raw []byte) any {
		var u ULID
		copy(u[:], raw)
		return u
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		str, ok := v.(string)
		if !ok {
			return nil, schemaErrf("ulid value must be a JSON string")
		}
		u, err := ulid.Parse(str)
		if err != nil {
			return nil, schemaErrf("ulid value %q: %v", str, err)
		}
		return u, nil
	},
	toJSON: func(_ *Schema, v any) any { return v.(ULID).String() },
}

func parseUUIDSchema(map[string]any, string) (*Schema, error) {
	return &Schema{Key: TypeUUID, Sortable: true}, nil
}

func parseULIDSchema(map[string]any, string) (*Schema, error) {
	return &Schema{Key: TypeULID, Sortable: true}, nil
}
