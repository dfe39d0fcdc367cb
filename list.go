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
	"math"
)

// The list engine.
//
// A list's pointer cell addresses a two-field header record holding the
// head and tail item addresses. Items form a singly linked chain kept
// sorted by index ascending; indices may have holes, and an index that was
// never written costs nothing.

func parseListSchema(obj map[string]any, _ string) (*Schema, error) {
	v, ok := obj["of"]
	if !ok {
		return nil, schemaErrf("list needs an 'of' property holding the element schema")
	}
	child, err := parseSchemaNode(v)
	if err != nil {
		return nil, err
	}
	return &Schema{Key: TypeList, Of: child}, nil
}

func listHead(b *Buffer, l cursor) uint32 {
	if l.valueAddr == 0 {
		return 0
	}
	return b.mem.ReadAddr(l.valueAddr)
}

func listTail(b *Buffer, l cursor) uint32 {
	if l.valueAddr == 0 {
		return 0
	}
	return b.mem.ReadAddr(l.valueAddr + uint32(b.mem.Width()))
}

// listSelect walks from the head looking for the index. A miss produces a
// virtual cursor remembering the index; listCommit splices it in later.
func listSelect(b *Buffer, l cursor, index uint16, commit bool) (cursor, error) {
	for item := listHead(b, l); item != 0; item = cellNext(b.mem, item) {
		at := cellIndex(b.mem, item)
		if at == index {
			c := b.itemCursor(item, cellListItem, l.schema.Of, l.addr)
			c.index = index
			return c, nil
		}
		if at > index {
			break
		}
	}
	c := cursor{
		virtual:      true,
		kind:         cellListItem,
		schema:       l.schema.Of,
		parent:       l.addr,
		parentSchema: l.schema,
		index:        index,
	}
	if commit {
		return listCommit(b, l, c)
	}
	return c, nil
}

// listCommit materializes a virtual item: it allocates the header on first
// use, then splices a fresh cell so index order stays ascending, updating
// head and tail as needed.
func listCommit(b *Buffer, l cursor, v cursor) (cursor, error) {
	w := uint32(b.mem.Width())
	if l.valueAddr == 0 {
		header, err := b.mem.AllocEmpty(int(2 * w))
		if err != nil {
			return cursor{}, err
		}
		setCellValue(b.mem, l.addr, header)
		l.valueAddr = header
	}
	item, err := b.mem.AllocEmpty(int(cellListItem.size(b.mem.Width())))
	if err != nil {
		return cursor{}, err
	}
	setCellIndex(b.mem, item, v.index)

	var prev uint32
	for cur := listHead(b, l); cur != 0; cur = cellNext(b.mem, cur) {
		if cellIndex(b.mem, cur) > v.index {
			break
		}
		prev = cur
	}
	if prev == 0 {
		setCellNext(b.mem, item, listHead(b, l))
		b.mem.WriteAddr(l.valueAddr, item)
	} else {
		setCellNext(b.mem, item, cellNext(b.mem, prev))
		setCellNext(b.mem, prev, item)
	}
	if cellNext(b.mem, item) == 0 {
		b.mem.WriteAddr(l.valueAddr+w, item)
	}

	c := b.itemCursor(item, cellListItem, l.schema.Of, l.addr)
	c.index = v.index
	return c, nil
}

// listPush appends after the current tail without the caller naming an
// index.
func listPush(b *Buffer, l cursor) (cursor, error) {
	var index uint16
	if tail := listTail(b, l); tail != 0 {
		at := cellIndex(b.mem, tail)
		if at == math.MaxUint16 {
			return cursor{}, fmt.Errorf("%w: list is at its maximum index", ErrTooLarge)
		}
		index = at + 1
	}
	return listCommit(b, l, cursor{index: index})
}

// listIterate yields only real items, in ascending index order.
func listIterate(b *Buffer, l cursor, fn func(index uint16, item cursor) error) error {
	for item := listHead(b, l); item != 0; item = cellNext(b.mem, item) {
		c := b.itemCursor(item, cellListItem, l.schema.Of, l.addr)
		c.index = cellIndex(b.mem, item)
		if err := fn(c.index, c); err != nil {
			return err
		}
	}
	return nil
}

// listLength counts the live items.
func listLength(b *Buffer, l cursor) int {
	n := 0
	_ = listIterate(b, l, func(uint16, cursor) error { n++; return nil })
	return n
}

// listJSON renders the list as a dense JSON array up to the tail index,
// with null holes.
func listJSON(b *Buffer, l cursor) any {
	if l.valueAddr == 0 {
		return nil
	}
	tail := listTail(b, l)
	if tail == 0 {
		return []any{}
	}
	out := make([]any, int(cellIndex(b.mem, tail))+1)
	_ = listIterate(b, l, func(index uint16, item cursor) error {
		out[index] = jsonEncodeCursor(b, item)
		return nil
	})
	return out
}

func listSize(b *Buffer, l cursor) uint64 {
	if l.valueAddr == 0 {
		return 0
	}
	acc := 2 * uint64(b.mem.Width()) // head+tail header
	_ = listIterate(b, l, func(_ uint16, item cursor) error {
		if item.valueAddr != 0 {
			acc += calcSizeCursor(b, item)
		}
		return nil
	})
	return acc
}

// listCompact rebuilds only the items that still hold a value, preserving
// index order; cleared indices vanish from the destination. The header is
// carried over even when every item was cleared, mirroring the size walk.
func listCompact(from *Buffer, fc cursor, to *Buffer, tc cursor) error {
	if tc.valueAddr == 0 {
		header, err := to.mem.AllocEmpty(2 * to.mem.Width())
		if err != nil {
			return err
		}
		setCellValue(to.mem, tc.addr, header)
		tc.valueAddr = header
	}
	return listIterate(from, fc, func(index uint16, item cursor) error {
		if item.valueAddr == 0 {
			return nil
		}
		dst, err := listSelect(to, tc, index, true)
		if err != nil {
			return err
		}
		return compactValue(from, item, to, dst)
	})
}
