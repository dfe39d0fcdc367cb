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

// The any type reserves a slot whose concrete type the schema does not pin
// down. It has no codec: reads and writes through it fail with a typecast
// error, it JSON-encodes as null, and compaction skips it.

func parseAnySchema(map[string]any, string) (*Schema, error) {
	return &Schema{Key: TypeAny}, nil
}
