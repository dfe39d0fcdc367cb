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
	"strconv"
)

// cursor is the ephemeral navigation record: the address of a pointer cell,
// the value address read from it, and the schema node governing that
// position. Cursors are created by select and iterate operations, never
// stored in the buffer, and invalidated by any mutation of the collection
// they came from.
//
// A virtual cursor stands in for a child that was never allocated. It has
// no cell address yet; instead it carries the metadata (key, index, column
// or slot) a commit needs to materialize it in its parent.
type cursor struct {
	addr      uint32
	valueAddr uint32
	schema    *Schema
	parent    uint32
	kind      cellKind
	virtual   bool

	// Commit metadata, populated per kind.
	parentSchema *Schema
	key          string
	index        uint16
	column       uint8
	slot         uint8
}

// itemCursor builds a cursor over an existing cell, resolving its stored
// value address.
func (b *Buffer) itemCursor(addr uint32, kind cellKind, schema *Schema, parent uint32) cursor {
	return cursor{
		addr:      addr,
		valueAddr: cellValue(b.mem, addr),
		schema:    schema,
		parent:    parent,
		kind:      kind,
	}
}

// rootCursor is the cursor over the reserved root cell at offset zero.
func (b *Buffer) rootCursor() cursor {
	return cursor{valueAddr: b.mem.ReadAddr(0), schema: b.schema, kind: cellStandard}
}

// selectPath walks the schema and buffer in lockstep, consuming one path
// segment per collection level. It returns the reached cursor and how many
// segments were consumed; a walk that reaches a scalar early stops there,
// and the caller tells the two cases apart by comparing the consumed count
// against the path length.
//
// With commit set, every intermediate item is materialized as it is
// crossed; without it the walk allocates nothing and hands back virtual
// cursors for missing children.
func selectPath(b *Buffer, c cursor, path []string, commit bool) (cursor, int, error) {
	for i, seg := range path {
		var (
			next cursor
			err  error
		)
		switch c.schema.Key {
		case TypeMap:
			next, err = mapSelect(b, c, seg, commit)
		case TypeTable:
			next, err = tableSelect(b, c, seg, commit)
		case TypeList:
			idx, perr := strconv.ParseUint(seg, 10, 16)
			if perr != nil {
				return cursor{}, i, pathErrf("list index %q is not an integer between 0 and 65535", seg)
			}
			next, err = listSelect(b, c, uint16(idx), commit)
		case TypeTuple:
			idx, perr := strconv.ParseUint(seg, 10, 8)
			if perr != nil {
				return cursor{}, i, pathErrf("tuple index %q is not an integer between 0 and 255", seg)
			}
			next, err = tupleSelect(b, c, uint8(idx), commit)
		default:
			// Reached a scalar with path left over; stop short.
			return c, i, nil
		}
		if err != nil {
			return cursor{}, i, err
		}
		c = next
	}
	return c, len(path), nil
}

// commitCursor materializes a virtual cursor in its parent collection.
// Parents are always committed before their children during a commit walk,
// so the parent cell address is valid here.
func commitCursor(b *Buffer, c cursor) (cursor, error) {
	if !c.virtual {
		return c, nil
	}
	parent := b.itemCursor(c.parent, cellStandard, c.parentSchema, 0)
	switch c.kind {
	case cellMapItem:
		return mapInsert(b, parent, c.key)
	case cellListItem:
		return listCommit(b, parent, c)
	case cellTableItem:
		return tableCommit(b, parent, c)
	case cellTupleSlot:
		return tupleSelect(b, parent, c.slot, true)
	}
	return cursor{}, fmt.Errorf("%w: cannot commit a root cursor", ErrPath)
}

// clearCursor zeroes the cell's value address. The value bytes stay behind
// as garbage until compaction. Reports whether a set value was cleared.
//
// Slots of a sorted tuple are the one exception: their pointer must keep
// addressing the contiguous value area, so clearing zeroes the value bytes
// in place instead.
func clearCursor(b *Buffer, c cursor) bool {
	if c.virtual || c.valueAddr == 0 {
		return false
	}
	if c.kind == cellTupleSlot && c.parentSchema != nil && c.parentSchema.Sorted {
		b.mem.Write(c.valueAddr, make([]byte, c.schema.fixedWidth()))
		return true
	}
	setCellValue(b.mem, c.addr, 0)
	return true
}

// setCursorValue writes a typed scalar value through the cursor, committing
// it first when virtual. Fixed-width values overwrite in place; variable
// ones reuse their record only when the length matches.
func setCursorValue(b *Buffer, c cursor, v any) error {
	if c.schema.Key.collection() || c.schema.Key == TypeAny {
		return fmt.Errorf("%w: cannot set a %s directly, set its members", ErrTypecast, c.schema.Key)
	}
	if got := typeKeyOf(v); got != c.schema.Key {
		return typecastErrf(c.schema, got)
	}
	co := scalarCodecs[c.schema.Key]
	raw, err := co.encode(c.schema, v)
	if err != nil {
		return err
	}
	c, err = commitCursor(b, c)
	if err != nil {
		return err
	}
	if co.width(c.schema) >= 0 {
		if c.valueAddr != 0 {
			b.mem.Write(c.valueAddr, raw)
			return nil
		}
		addr, allocErr := b.mem.Alloc(raw)
		if allocErr != nil {
			return allocErr
		}
		setCellValue(b.mem, c.addr, addr)
		return nil
	}
	if c.valueAddr != 0 && int(b.mem.ReadU16(c.valueAddr)) == len(raw) {
		b.mem.Write(c.valueAddr+2, raw)
		return nil
	}
	record := append(beBytes16(uint16(len(raw))), raw...)
	addr, allocErr := b.mem.Alloc(record)
	if allocErr != nil {
		return allocErr
	}
	setCellValue(b.mem, c.addr, addr)
	return nil
}

// getCursorValue reads the typed scalar at the cursor, falling back to the
// schema default when nothing is set.
func getCursorValue(b *Buffer, c cursor) (any, bool, error) {
	if c.schema.Key.collection() || c.schema.Key == TypeAny {
		return nil, false, fmt.Errorf("%w: %s is not a scalar, read its members", ErrTypecast, c.schema.Key)
	}
	if c.virtual || c.valueAddr == 0 {
		if c.schema.Default != nil {
			return cloneDefault(c.schema.Default), true, nil
		}
		return nil, false, nil
	}
	co := scalarCodecs[c.schema.Key]
	return co.decode(c.schema, scalarBytes(b, c, co)), true, nil
}

// scalarBytes returns the wire bytes of the set value at the cursor.
func scalarBytes(b *Buffer, c cursor, co *scalarCodec) []byte {
	if w := co.width(c.schema); w >= 0 {
		return b.mem.Bytes(c.valueAddr, uint32(w))
	}
	n := b.mem.ReadU16(c.valueAddr)
	return b.mem.Bytes(c.valueAddr+2, uint32(n))
}

func cloneDefault(v any) any {
	if raw, ok := v.([]byte); ok {
		return append([]byte(nil), raw...)
	}
	return v
}

// jsonEncodeCursor renders the value under the cursor as a JSON-encodable
// Go value. Unset values are null; defaults do not apply here.
func jsonEncodeCursor(b *Buffer, c cursor) any {
	if c.virtual || c.valueAddr == 0 {
		return nil
	}
	switch c.schema.Key {
	case TypeMap:
		return mapJSON(b, c)
	case TypeList:
		return listJSON(b, c)
	case TypeTable:
		return tableJSON(b, c)
	case TypeTuple:
		return tupleJSON(b, c)
	case TypeAny, TypeNone:
		return nil
	}
	co := scalarCodecs[c.schema.Key]
	return co.toJSON(c.schema, co.decode(c.schema, scalarBytes(b, c, co)))
}

// calcSizeCursor returns the bytes a compaction would spend on this cursor:
// its own cell plus, when set, its value payload, recursively for
// collections.
func calcSizeCursor(b *Buffer, c cursor) uint64 {
	if c.virtual {
		return 0
	}
	base := uint64(c.kind.size(b.mem.Width()))
	if c.valueAddr == 0 {
		return base
	}
	return base + valuePayloadSize(b, c)
}

// valuePayloadSize is the value's own footprint, excluding the pointer
// cell.
func valuePayloadSize(b *Buffer, c cursor) uint64 {
	switch c.schema.Key {
	case TypeMap:
		return mapSize(b, c)
	case TypeList:
		return listSize(b, c)
	case TypeTable:
		return tableSize(b, c)
	case TypeTuple:
		return tupleSize(b, c)
	case TypeAny, TypeNone:
		return 0
	}
	co := scalarCodecs[c.schema.Key]
	if w := co.width(c.schema); w >= 0 {
		return uint64(w)
	}
	return 2 + uint64(b.mem.ReadU16(c.valueAddr))
}

// compactValue copies the value under fc into the destination buffer at tc,
// dispatching on the type tag. Unset values copy nothing, which is what
// makes compaction drop garbage.
func compactValue(from *Buffer, fc cursor, to *Buffer, tc cursor) error {
	if fc.virtual || fc.valueAddr == 0 {
		return nil
	}
	tc, err := commitCursor(to, tc)
	if err != nil {
		return err
	}
	switch fc.schema.Key {
	case TypeMap:
		return mapCompact(from, fc, to, tc)
	case TypeList:
		return listCompact(from, fc, to, tc)
	case TypeTable:
		return tableCompact(from, fc, to, tc)
	case TypeTuple:
		return tupleCompact(from, fc, to, tc)
	case TypeAny, TypeNone:
		return nil
	}
	co := scalarCodecs[fc.schema.Key]
	return setCursorValue(to, tc, co.decode(fc.schema, scalarBytes(from, fc, co)))
}

// setDefaultCursor writes the declared default, or the type's zero value,
// at the cursor. Collections have no default; this is a no-op for them.
func setDefaultCursor(b *Buffer, c cursor) error {
	if c.schema.Key.collection() || c.schema.Key == TypeAny {
		return nil
	}
	v := c.schema.Default
	if v == nil {
		v = zeroValue(c.schema)
	}
	return setCursorValue(b, c, v)
}

// zeroValue is the written-when-no-default value per scalar type.
func zeroValue(s *Schema) any {
	switch s.Key {
	case TypeString:
		return ""
	case TypeBytes:
		return []byte{}
	case TypeInt8:
		return int8(0)
	case TypeInt16:
		return int16(0)
	case TypeInt32:
		return int32(0)
	case TypeInt64:
		return int64(0)
	case TypeUint8:
		return uint8(0)
	case TypeUint16:
		return uint16(0)
	case TypeUint32:
		return uint32(0)
	case TypeUint64:
		return uint64(0)
	case TypeFloat:
		return float32(0)
	case TypeDouble:
		return float64(0)
	case TypeDecimal:
		return Decimal{}
	case TypeBool:
		return false
	case TypeGeo:
		return Geo{}
	case TypeUUID:
		return UUID{}
	case TypeULID:
		return ULID{}
	case TypeDate:
		return Date(0)
	default: // option
		return Choice(s.Choices[0])
	}
}
