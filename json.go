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
	"encoding/json"
	"fmt"
	"math"
	"strconv"

	jsoniter "github.com/json-iterator/go"
)

// jsonCodec is the engine's JSON configuration: std-compatible output with
// sorted object keys (so schema stringification is deterministic) and
// json.Number decoding (so 64-bit defaults survive parsing intact).
var jsonCodec = jsoniter.Config{
	EscapeHTML:             true,
	SortMapKeys:            true,
	ValidateJsonRawMessage: true,
	UseNumber:              true,
}.Froze()

// MarshalJSON encodes v with the engine's JSON configuration: sorted
// object keys, numbers preserved via json.Number.
func MarshalJSON(v any) ([]byte, error) { return jsonCodec.Marshal(v) }

// UnmarshalJSON decodes data with the engine's JSON configuration; numbers
// come out as json.Number, which [Buffer.SetLiteral] coerces losslessly.
func UnmarshalJSON(data []byte, v any) error { return jsonCodec.Unmarshal(data, v) }

func asInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case json.Number:
		i, err := n.Int64()
		return i, err == nil
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		if n == math.Trunc(n) {
			return int64(n), true
		}
	}
	return 0, false
}

func asUint64(v any) (uint64, bool) {
	switch n := v.(type) {
	case json.Number:
		u, err := strconv.ParseUint(n.String(), 10, 64)
		return u, err == nil
	case uint64:
		return n, true
	case int64:
		if n >= 0 {
			return uint64(n), true
		}
	case int:
		if n >= 0 {
			return uint64(n), true
		}
	case float64:
		if n >= 0 && n == math.Trunc(n) {
			return uint64(n), true
		}
	}
	return 0, false
}

func asFloat64(v any) (float64, bool) {
	switch n := v.(type) {
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	case float64:
		return n, true
	case int64:
		return float64(n), true
	case int:
		return float64(n), true
	}
	return 0, false
}

// jsonNumber renders an integer as a json.Number so values above 2^53
// stringify without float rounding.
func jsonNumber(v any) json.Number {
	return json.Number(fmt.Sprintf("%d", v))
}
