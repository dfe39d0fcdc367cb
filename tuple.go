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
	"math"
)

// The tuple engine.
//
// A tuple's value is a contiguous array of arity value-address slots; the
// position in the array is the only per-slot metadata. A sorted tuple
// additionally reserves the full fixed-width value area right behind the
// slot array and points every slot into it up front, so the value area is
// one contiguous byte run whose memcmp order is the lexicographic tuple
// order.

func parseTupleSchema(obj map[string]any, _ string) (*Schema, error) {
	raw, ok := obj["values"].([]any)
	if !ok {
		return nil, schemaErrf("tuple needs a 'values' array of schemas")
	}
	if len(raw) == 0 || len(raw) > math.MaxUint8 {
		return nil, schemaErrf("tuple takes between 1 and 255 values, got %d", len(raw))
	}
	s := &Schema{Key: TypeTuple}
	if sorted, okSorted := obj["sorted"].(bool); okSorted {
		s.Sorted = sorted
	}
	for i, v := range raw {
		child, err := parseSchemaNode(v)
		if err != nil {
			return nil, err
		}
		if s.Sorted {
			if !child.Sortable {
				return nil, schemaErrf("sorted tuple value %d (%s) is not byte-order comparable", i, child.Key)
			}
			if child.fixedWidth() <= 0 {
				return nil, schemaErrf("sorted tuple value %d (%s) is not fixed width", i, child.Key)
			}
		}
		s.Values = append(s.Values, child)
	}
	s.Sortable = s.Sorted
	return s, nil
}

// arity returns the slot count of a tuple schema.
func (s *Schema) arity() int { return len(s.Values) }

// sortedArea returns the total fixed width of a sorted tuple's value area.
func (s *Schema) sortedArea() int {
	total := 0
	for _, v := range s.Values {
		total += v.fixedWidth()
	}
	return total
}

// tupleMaterialize allocates the slot array on first write. Sorted tuples
// also get their value area, zeroed, with every slot pre-pointed at its
// fixed region.
func tupleMaterialize(b *Buffer, t *cursor) error {
	if t.valueAddr != 0 {
		return nil
	}
	w := uint32(b.mem.Width())
	slots := uint32(t.schema.arity()) * w
	size := slots
	if t.schema.Sorted {
		size += uint32(t.schema.sortedArea())
	}
	block, err := b.mem.AllocEmpty(int(size))
	if err != nil {
		return err
	}
	if t.schema.Sorted {
		at := block + slots
		for i, v := range t.schema.Values {
			b.mem.WriteAddr(block+uint32(i)*w, at)
			at += uint32(v.fixedWidth())
		}
	}
	setCellValue(b.mem, t.addr, block)
	t.valueAddr = block
	return nil
}

// tupleSelect resolves slot i. Slot cursors always have a cell address once
// the tuple is materialized; before that, reads get a virtual stand-in.
func tupleSelect(b *Buffer, t cursor, i uint8, commit bool) (cursor, error) {
	if int(i) >= t.schema.arity() {
		return cursor{}, pathErrf("tuple index %d out of range, arity is %d", i, t.schema.arity())
	}
	if t.valueAddr == 0 {
		if !commit {
			return cursor{
				virtual:      true,
				kind:         cellTupleSlot,
				schema:       t.schema.Values[i],
				parent:       t.addr,
				parentSchema: t.schema,
				slot:         i,
			}, nil
		}
		if err := tupleMaterialize(b, &t); err != nil {
			return cursor{}, err
		}
	}
	slot := t.valueAddr + uint32(i)*uint32(b.mem.Width())
	c := b.itemCursor(slot, cellTupleSlot, t.schema.Values[i], t.addr)
	c.slot = i
	c.parentSchema = t.schema
	return c, nil
}

// tupleIterate yields all slots in order, virtual or not.
func tupleIterate(b *Buffer, t cursor, fn func(i uint8, item cursor) error) error {
	for i := range t.schema.arity() {
		item, err := tupleSelect(b, t, uint8(i), false)
		if err != nil {
			return err
		}
		if err := fn(uint8(i), item); err != nil {
			return err
		}
	}
	return nil
}

func tupleJSON(b *Buffer, t cursor) any {
	if t.valueAddr == 0 {
		return nil
	}
	out := make([]any, t.schema.arity())
	_ = tupleIterate(b, t, func(i uint8, item cursor) error {
		out[i] = jsonEncodeCursor(b, item)
		return nil
	})
	return out
}

func tupleSize(b *Buffer, t cursor) uint64 {
	acc := uint64(t.schema.arity()) * uint64(b.mem.Width())
	_ = tupleIterate(b, t, func(_ uint8, item cursor) error {
		if !item.virtual && item.valueAddr != 0 {
			acc += valuePayloadSize(b, item) // slot base already counted above
		}
		return nil
	})
	return acc
}

func tupleCompact(from *Buffer, fc cursor, to *Buffer, tc cursor) error {
	if err := tupleMaterialize(to, &tc); err != nil {
		return err
	}
	return tupleIterate(from, fc, func(i uint8, item cursor) error {
		if item.virtual || item.valueAddr == 0 {
			return nil
		}
		dst, err := tupleSelect(to, tc, i, true)
		if err != nil {
			return err
		}
		return compactValue(from, item, to, dst)
	})
}

// tupleRaw returns the contiguous value area of a materialized sorted
// tuple; two such areas memcmp in lexicographic tuple order.
func tupleRaw(b *Buffer, t cursor) ([]byte, error) {
	if !t.schema.Sorted {
		return nil, pathErrf("tuple is not declared sorted")
	}
	if t.valueAddr == 0 {
		return nil, nil
	}
	slots := uint32(t.schema.arity()) * uint32(b.mem.Width())
	return b.mem.Bytes(t.valueAddr+slots, uint32(t.schema.sortedArea())), nil
}
