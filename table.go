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

	set3 "github.com/TomTonic/Set3"
)

// The table engine.
//
// A table is a map whose key space is pinned by the schema: items carry a
// one-byte column index instead of key bytes, and the column names never
// enter the buffer. The head pointer lives in the table's own cell, items
// are prepended, and there is at most one item per column.

func parseTableSchema(obj map[string]any, _ string) (*Schema, error) {
	raw, ok := obj["columns"].([]any)
	if !ok {
		return nil, schemaErrf("table needs a 'columns' array of [name, schema] pairs")
	}
	if len(raw) == 0 || len(raw) > math.MaxUint8 {
		return nil, schemaErrf("table takes between 1 and 255 columns, got %d", len(raw))
	}
	s := &Schema{Key: TypeTable}
	names := set3.Empty[string]()
	for i, c := range raw {
		pair, okPair := c.([]any)
		if !okPair || len(pair) != 2 {
			return nil, schemaErrf("column %d must be a [name, schema] pair", i)
		}
		name, okName := pair[0].(string)
		if !okName {
			return nil, schemaErrf("column %d name must be a string", i)
		}
		if len(name) > math.MaxUint8 {
			return nil, schemaErrf("column name %q is longer than 255 bytes", name)
		}
		if names.Contains(name) {
			return nil, schemaErrf("duplicate column name %q", name)
		}
		names.Add(name)
		child, err := parseSchemaNode(pair[1])
		if err != nil {
			return nil, err
		}
		s.Columns = append(s.Columns, Column{Index: uint8(i), Name: name, Schema: child})
	}
	return s, nil
}

// column resolves a column name against the schema's declared columns.
// The scan is linear and case sensitive.
func (s *Schema) column(name string) (Column, bool) {
	for _, col := range s.Columns {
		if col.Name == name {
			return col, true
		}
	}
	return Column{}, false
}

func tableSelect(b *Buffer, t cursor, name string, commit bool) (cursor, error) {
	col, ok := t.schema.column(name)
	if !ok {
		return cursor{}, pathErrf("table has no column %q", name)
	}
	for item := t.valueAddr; item != 0; item = cellNext(b.mem, item) {
		if cellColumn(b.mem, item) == col.Index {
			c := b.itemCursor(item, cellTableItem, col.Schema, t.addr)
			c.column = col.Index
			return c, nil
		}
	}
	c := cursor{
		virtual:      true,
		kind:         cellTableItem,
		schema:       col.Schema,
		parent:       t.addr,
		parentSchema: t.schema,
		column:       col.Index,
	}
	if commit {
		return tableCommit(b, t, c)
	}
	return c, nil
}

// tableCommit materializes a virtual item by prepending a fresh cell. A
// column that already has an item is reused rather than duplicated, so a
// committed table never holds two items for one column index.
func tableCommit(b *Buffer, t cursor, v cursor) (cursor, error) {
	for item := t.valueAddr; item != 0; item = cellNext(b.mem, item) {
		if cellColumn(b.mem, item) == v.column {
			c := b.itemCursor(item, cellTableItem, v.schema, t.addr)
			c.column = v.column
			return c, nil
		}
	}
	item, err := b.mem.AllocEmpty(int(cellTableItem.size(b.mem.Width())))
	if err != nil {
		return cursor{}, err
	}
	setCellColumn(b.mem, item, v.column)
	head := cellValue(b.mem, t.addr)
	setCellValue(b.mem, t.addr, item)
	if head != 0 {
		setCellNext(b.mem, item, head)
	}
	c := b.itemCursor(item, cellTableItem, v.schema, t.addr)
	c.column = v.column
	return c, nil
}

// tableItem finds the item for a column index, if any.
func tableItem(b *Buffer, t cursor, col Column) (cursor, bool) {
	for item := t.valueAddr; item != 0; item = cellNext(b.mem, item) {
		if cellColumn(b.mem, item) == col.Index {
			c := b.itemCursor(item, cellTableItem, col.Schema, t.addr)
			c.column = col.Index
			return c, true
		}
	}
	return cursor{}, false
}

// tableIterate yields items in linked-list order, newest first. Consumers
// that need declared order walk the schema columns instead; tableJSON and
// tableCompact do.
func tableIterate(b *Buffer, t cursor, fn func(col uint8, item cursor) error) error {
	for item := t.valueAddr; item != 0; item = cellNext(b.mem, item) {
		idx := cellColumn(b.mem, item)
		var sub *Schema
		if int(idx) < len(t.schema.Columns) {
			sub = t.schema.Columns[idx].Schema
		}
		c := b.itemCursor(item, cellTableItem, sub, t.addr)
		c.column = idx
		if err := fn(idx, c); err != nil {
			return err
		}
	}
	return nil
}

// tableJSON emits every declared column in schema order, null where no
// value is set.
func tableJSON(b *Buffer, t cursor) any {
	if t.valueAddr == 0 {
		return nil
	}
	out := make(map[string]any, len(t.schema.Columns))
	for _, col := range t.schema.Columns {
		if item, ok := tableItem(b, t, col); ok {
			out[col.Name] = jsonEncodeCursor(b, item)
		} else {
			out[col.Name] = nil
		}
	}
	return out
}

// tableSize counts only columns that still hold a value, matching what
// compaction carries over.
func tableSize(b *Buffer, t cursor) uint64 {
	var acc uint64
	_ = tableIterate(b, t, func(_ uint8, item cursor) error {
		if item.valueAddr != 0 {
			acc += calcSizeCursor(b, item)
		}
		return nil
	})
	return acc
}

// tableCompact walks the columns in declared order so the rebuilt linked
// list is deterministic for identical contents.
func tableCompact(from *Buffer, fc cursor, to *Buffer, tc cursor) error {
	for _, col := range fc.schema.Columns {
		item, ok := tableItem(from, fc, col)
		if !ok || item.valueAddr == 0 {
			continue
		}
		dst, err := tableCommit(to, tc, cursor{column: col.Index, schema: col.Schema})
		if err != nil {
			return err
		}
		if err := compactValue(from, item, to, dst); err != nil {
			return err
		}
	}
	return nil
}
