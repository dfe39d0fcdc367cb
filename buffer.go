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

	"github.com/mutbuf/mutbuf/internal/arena"
)

// Buffer is one mutable, contiguous byte buffer bound to the schema that
// minted it. A buffer is exclusively owned: it is not safe for concurrent
// use, and iterators over a collection are invalidated by mutating it.
//
// All access methods address a value by a path of segments, one per
// collection level: a key for maps, a column name for tables, a decimal
// index for lists and tuples. The empty path addresses the root value.
type Buffer struct {
	mem    *arena.Arena
	schema *Schema
}

// Sizes is the report returned by [Buffer.CalcBytes].
type Sizes struct {
	// Current is the byte length of the buffer right now.
	Current uint64

	// AfterCompaction is the byte length a compacted copy would have.
	// Never larger than Current.
	AfterCompaction uint64
}

// Set writes a typed scalar value at the path, materializing every
// collection item along the way. The value's Go type must match the schema
// at the path.
func (b *Buffer) Set(v any, path ...string) error {
	c, err := b.selectForWrite(path)
	if err != nil {
		return err
	}
	return setCursorValue(b, c, v)
}

// SetLiteral writes a JSON-shaped literal (as produced by a JSON decoder)
// at the path, coercing it through the schema's codec: numbers for
// integers, strings for uuid/ulid/option, objects for geo.
func (b *Buffer) SetLiteral(v any, path ...string) error {
	c, err := b.selectForWrite(path)
	if err != nil {
		return err
	}
	if c.schema.Key.collection() || c.schema.Key == TypeAny {
		return fmt.Errorf("%w: cannot set a %s directly, set its members", ErrTypecast, c.schema.Key)
	}
	typed, err := scalarCodecs[c.schema.Key].fromJSON(c.schema, v)
	if err != nil {
		return err
	}
	return setCursorValue(b, c, typed)
}

func (b *Buffer) selectForWrite(path []string) (cursor, error) {
	c, consumed, err := selectPath(b, b.rootCursor(), path, true)
	if err != nil {
		return cursor{}, err
	}
	if consumed < len(path) {
		return cursor{}, pathErrf("segment %q descends into a %s scalar", path[consumed], c.schema.Key)
	}
	return c, nil
}

// Get reads the scalar value at the path. It returns the schema default
// when no value is set, and ok=false when there is neither.
func (b *Buffer) Get(path ...string) (v any, ok bool, err error) {
	c, consumed, err := selectPath(b, b.rootCursor(), path, false)
	if err != nil {
		return nil, false, err
	}
	if consumed < len(path) {
		return nil, false, nil
	}
	return getCursorValue(b, c)
}

// Get is the statically typed read. It fails with [ErrTypecast] when T does
// not match the schema at the path, whether or not a value is set.
func Get[T any](b *Buffer, path ...string) (T, bool, error) {
	var zero T
	c, consumed, err := selectPath(b, b.rootCursor(), path, false)
	if err != nil {
		return zero, false, err
	}
	if consumed < len(path) {
		return zero, false, nil
	}
	if want := typeKeyOf(any(zero)); want != c.schema.Key {
		return zero, false, typecastErrf(c.schema, want)
	}
	v, ok, err := getCursorValue(b, c)
	if err != nil || !ok {
		return zero, ok, err
	}
	return v.(T), true, nil
}

// Set is the statically typed write; it is [Buffer.Set] with the type
// pinned at the call site.
func Set[T any](b *Buffer, v T, path ...string) error {
	return b.Set(any(v), path...)
}

// Del clears the value at the path by zeroing its pointer cell. The value
// bytes remain in the buffer until compaction. A slot of a sorted tuple is
// the exception: its pointer is kept and its value bytes are zeroed in
// place. Reports whether a set value was actually cleared.
func (b *Buffer) Del(path ...string) (bool, error) {
	c, consumed, err := selectPath(b, b.rootCursor(), path, false)
	if err != nil {
		return false, err
	}
	if consumed < len(path) {
		return false, nil
	}
	return clearCursor(b, c), nil
}

// SetDefault writes the schema's declared default (or the type's zero
// value) at the path. No-op for collections.
func (b *Buffer) SetDefault(path ...string) error {
	c, err := b.selectForWrite(path)
	if err != nil {
		return err
	}
	return setDefaultCursor(b, c)
}

// Push appends a typed value after the tail of the list at the path.
func (b *Buffer) Push(v any, path ...string) error {
	c, err := b.selectForWrite(path)
	if err != nil {
		return err
	}
	if c.schema.Key != TypeList {
		return fmt.Errorf("%w: push needs a list, schema holds %s", ErrTypecast, c.schema.Key)
	}
	item, err := listPush(b, c)
	if err != nil {
		return err
	}
	return setCursorValue(b, item, v)
}

// Length counts the live items of the list at the path.
func (b *Buffer) Length(path ...string) (int, error) {
	c, consumed, err := selectPath(b, b.rootCursor(), path, false)
	if err != nil {
		return 0, err
	}
	if consumed < len(path) || c.schema.Key != TypeList {
		return 0, fmt.Errorf("%w: length needs a list at the path", ErrTypecast)
	}
	return listLength(b, c), nil
}

// ToJSON renders the whole buffer as JSON. Unset values come out as null.
func (b *Buffer) ToJSON() ([]byte, error) {
	return jsonCodec.Marshal(jsonEncodeCursor(b, b.rootCursor()))
}

// CalcBytes reports the buffer's current size alongside the size a
// compacted copy would have. The prediction is a read-only size walk that
// counts what compaction keeps; nothing is written.
func (b *Buffer) CalcBytes() Sizes {
	return Sizes{
		Current:         uint64(b.mem.Len()),
		AfterCompaction: calcSizeCursor(b, b.rootCursor()),
	}
}

// Compact rebuilds the buffer into a fresh arena by walking only reachable
// values, dropping everything orphaned by deletes and overwrites. The
// source is never mutated; on error the partial destination is discarded.
func (b *Buffer) Compact() (*Buffer, error) {
	to := &Buffer{
		mem:    arena.New(b.mem.Width(), int(b.CalcBytes().AfterCompaction)),
		schema: b.schema,
	}
	if err := compactValue(b, b.rootCursor(), to, to.rootCursor()); err != nil {
		return nil, err
	}
	return to, nil
}

// Bytes returns the raw buffer contents. The slice aliases the buffer;
// copy it before the next mutation if it needs to outlive one.
func (b *Buffer) Bytes() []byte {
	return b.mem.Raw()
}

// TupleRaw returns the contiguous value area of the sorted tuple at the
// path. Two such areas, byte-compared, order like the tuple values.
// Returns nil when the tuple was never written.
func (b *Buffer) TupleRaw(path ...string) ([]byte, error) {
	c, consumed, err := selectPath(b, b.rootCursor(), path, false)
	if err != nil {
		return nil, err
	}
	if consumed < len(path) || c.schema.Key != TypeTuple {
		return nil, fmt.Errorf("%w: path does not address a tuple", ErrTypecast)
	}
	return tupleRaw(b, c)
}
