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
	"time"
)

// Date is a timestamp in milliseconds since the Unix epoch, stored as a
// big-endian uint64.
type Date uint64

// NewDate converts a [time.Time] to a Date.
func NewDate(t time.Time) Date { return Date(t.UnixMilli()) }

// Time converts the Date back to a [time.Time] in UTC.
func (d Date) Time() time.Time { return time.UnixMilli(int64(d)).UTC() }

var dateCodec = &scalarCodec{
	width: func(*Schema) int { return 8 },
	encode: func(_ *Schema, v any) ([]byte, error) {
		return beBytes64(uint64(v.(Date))), nil
	},
	decode: func(_ *Schema, raw []byte) any {
		return Date(binary.BigEndian.Uint64(raw))
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		n, ok := asUint64(v)
		if !ok {
			return nil, schemaErrf("date value must be epoch milliseconds, got %v", v)
		}
		return Date(n), nil
	},
	toJSON: func(_ *Schema, v any) any { return jsonNumber(uint64(v.(Date))) },
}

func parseDateSchema(obj map[string]any, _ string) (*Schema, error) {
	s := &Schema{Key: TypeDate, Sortable: true}
	if d, ok := obj["default"]; ok {
		v, err := dateCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		s.Default = v
	}
	return s, nil
}
