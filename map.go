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

import "fmt"

// The map engine.
//
// A map's own pointer cell holds the address of the head item; an empty map
// stores zero there and occupies no space at all. Each item is a map-item
// cell followed (wherever the allocator put it) by a length-prefixed key
// record. Insertion prepends at the head, so iteration yields entries
// newest first.

const maxMapKey = 254

func parseMapSchema(obj map[string]any, _ string) (*Schema, error) {
	v, ok := obj["value"]
	if !ok {
		return nil, schemaErrf("map needs a 'value' property holding the value schema")
	}
	child, err := parseSchemaNode(v)
	if err != nil {
		return nil, err
	}
	return &Schema{Key: TypeMap, Value: child}, nil
}

// mapSelect finds the first item with the given key. When absent it either
// inserts a fresh item (commit) or hands back a virtual cursor carrying the
// key (read-only paths).
func mapSelect(b *Buffer, m cursor, key string, commit bool) (cursor, error) {
	for item := m.valueAddr; item != 0; item = cellNext(b.mem, item) {
		if cellKey(b.mem, item) == key {
			return b.itemCursor(item, cellMapItem, m.schema.Value, m.addr), nil
		}
	}
	if commit {
		return mapInsert(b, m, key)
	}
	return cursor{
		virtual:      true,
		kind:         cellMapItem,
		schema:       m.schema.Value,
		parent:       m.addr,
		parentSchema: m.schema,
		key:          key,
	}, nil
}

// mapInsert allocates an item cell plus key record and prepends it to the
// head. It never deduplicates; select-before-insert is what keeps the
// buffer free of duplicate keys.
func mapInsert(b *Buffer, m cursor, key string) (cursor, error) {
	if len(key) > maxMapKey {
		return cursor{}, fmt.Errorf("%w: map key is %d bytes, max is %d", ErrTooLarge, len(key), maxMapKey)
	}
	item, err := b.mem.AllocEmpty(int(cellMapItem.size(b.mem.Width())))
	if err != nil {
		return cursor{}, err
	}
	keyAddr, err := b.mem.Alloc(append([]byte{byte(len(key))}, key...))
	if err != nil {
		return cursor{}, err
	}
	setCellKeyAddr(b.mem, item, keyAddr)

	head := cellValue(b.mem, m.addr)
	setCellValue(b.mem, m.addr, item)
	if head != 0 {
		setCellNext(b.mem, item, head)
	}
	c := b.itemCursor(item, cellMapItem, m.schema.Value, m.addr)
	c.key = key
	return c, nil
}

// mapIterate walks the items head to tail. Insertions invalidate the walk;
// callers must not mutate the map while iterating.
func mapIterate(b *Buffer, m cursor, fn func(key string, item cursor) error) error {
	for item := m.valueAddr; item != 0; item = cellNext(b.mem, item) {
		err := fn(cellKey(b.mem, item), b.itemCursor(item, cellMapItem, m.schema.Value, m.addr))
		if err != nil {
			return err
		}
	}
	return nil
}

func mapJSON(b *Buffer, m cursor) any {
	if m.valueAddr == 0 {
		return nil
	}
	out := make(map[string]any)
	_ = mapIterate(b, m, func(key string, item cursor) error {
		if _, dup := out[key]; !dup {
			out[key] = jsonEncodeCursor(b, item)
		}
		return nil
	})
	return out
}

// mapSize counts only entries that still hold a value; cleared entries are
// what compaction drops, and the size walk must predict that.
func mapSize(b *Buffer, m cursor) uint64 {
	var acc uint64
	_ = mapIterate(b, m, func(key string, item cursor) error {
		if item.valueAddr != 0 {
			acc += 1 + uint64(len(key)) + calcSizeCursor(b, item)
		}
		return nil
	})
	return acc
}

// mapCompact re-inserts every live entry of the source map into the
// destination and recursively compacts each value. Keys whose value was
// cleared vanish. The logical multiset of live entries is preserved;
// insertion order is not.
func mapCompact(from *Buffer, fc cursor, to *Buffer, tc cursor) error {
	return mapIterate(from, fc, func(key string, item cursor) error {
		if item.valueAddr == 0 {
			return nil
		}
		dst, err := mapInsert(to, tc, key)
		if err != nil {
			return err
		}
		return compactValue(from, item, to, dst)
	})
}
