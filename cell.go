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

import "github.com/mutbuf/mutbuf/internal/arena"

// cellKind discriminates the four pointer-cell shapes plus tuple slots.
//
// Every cell starts with one address-width value offset. Collection item
// cells follow it with a next pointer and one kind-specific field:
//
//	standard    [value]
//	map item    [value][next][key addr]
//	table item  [value][next][column:u8]
//	list item   [value][next][index:u16]
//	tuple slot  [value]                   (position is implicit)
type cellKind uint8

const (
	cellStandard cellKind = iota
	cellMapItem
	cellTableItem
	cellListItem
	cellTupleSlot
)

// size returns the encoded size of a cell of this kind at the given
// address width. Cells are byte-aligned; no padding is ever inserted.
func (k cellKind) size(width int) uint32 {
	w := uint32(width)
	switch k {
	case cellMapItem:
		return 3 * w
	case cellTableItem:
		return 2*w + 1
	case cellListItem:
		return 2*w + 2
	default:
		return w
	}
}

// The field accessors below take the cell's base offset. Only the fields
// that exist for a kind may be touched; offsets are fixed per kind.

func cellValue(m *arena.Arena, cell uint32) uint32     { return m.ReadAddr(cell) }
func setCellValue(m *arena.Arena, cell, v uint32)      { m.WriteAddr(cell, v) }
func cellNext(m *arena.Arena, cell uint32) uint32      { return m.ReadAddr(cell + uint32(m.Width())) }
func setCellNext(m *arena.Arena, cell, next uint32)    { m.WriteAddr(cell+uint32(m.Width()), next) }
func cellKeyAddr(m *arena.Arena, cell uint32) uint32   { return m.ReadAddr(cell + 2*uint32(m.Width())) }
func setCellKeyAddr(m *arena.Arena, cell, key uint32)  { m.WriteAddr(cell+2*uint32(m.Width()), key) }
func cellColumn(m *arena.Arena, cell uint32) uint8     { return m.Bytes(cell+2*uint32(m.Width()), 1)[0] }
func setCellColumn(m *arena.Arena, cell uint32, c byte) { m.Write(cell+2*uint32(m.Width()), []byte{c}) }
func cellIndex(m *arena.Arena, cell uint32) uint16     { return m.ReadU16(cell + 2*uint32(m.Width())) }
func setCellIndex(m *arena.Arena, cell uint32, i uint16) {
	m.WriteU16(cell+2*uint32(m.Width()), i)
}

// cellKey reads the length-prefixed key record a map item points at.
func cellKey(m *arena.Arena, cell uint32) string {
	keyAddr := cellKeyAddr(m, cell)
	if keyAddr == 0 {
		return ""
	}
	n := uint32(m.Bytes(keyAddr, 1)[0])
	return string(m.Bytes(keyAddr+1, n))
}
