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

// Package mutbuf is a schema-driven, zero-copy, mutable binary
// serialization engine.
//
// A producer declares a JSON schema; [NewFactory] compiles it into a parsed
// tree and a compact byte schema. The factory mints buffers: contiguous
// byte arrays whose internal layout is a self-referential graph of
// fixed-width pointer cells addressing values and collection items by byte
// offset. Values are read, written and deleted in place by structural
// path, without ever deserializing the whole buffer:
//
//	factory, _ := mutbuf.NewFactory([]byte(`{"type":"map","value":{"type":"string"}}`))
//	buf := factory.NewBuffer()
//	_ = buf.Set("hello, world", "name")
//	v, _, _ := mutbuf.Get[string](buf, "name")
//
// Four collection shapes nest freely: maps (string keys stored in the
// buffer), tables (fixed column set, only indices stored), lists (sparse
// integer indices) and tuples (fixed arity). Tuples declared sorted keep
// their values in one contiguous fixed-width run whose raw bytes compare
// like the values, for order-preserving keys.
//
// Deletes and overwrites orphan bytes rather than moving anything;
// [Buffer.Compact] rebuilds a buffer from just its reachable values, and
// [Buffer.CalcBytes] predicts the outcome without writing.
//
// Buffers are exclusively owned by their holder: no operation is safe to
// call concurrently with a mutation of the same buffer.
package mutbuf
