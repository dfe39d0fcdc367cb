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
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMapIterationIsNewestFirst(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("v1", "k1"))
	require.NoError(t, buf.Set("v2", "k2"))

	var keys []string
	root := buf.rootCursor()
	require.NoError(t, mapIterate(buf, root, func(key string, _ cursor) error {
		keys = append(keys, key)
		return nil
	}))
	require.Equal(t, []string{"k2", "k1"}, keys, "insertion prepends at the head")
}

func TestMapSelectFindsFirstOccurrence(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"uint8"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set(uint8(1), "k"))
	require.NoError(t, buf.Set(uint8(2), "k"))

	// Set reuses the existing item, so no duplicate was produced.
	n := 0
	require.NoError(t, mapIterate(buf, buf.rootCursor(), func(string, cursor) error {
		n++
		return nil
	}))
	require.Equal(t, 1, n)

	v, _, err := Get[uint8](buf, "k")
	require.NoError(t, err)
	require.Equal(t, uint8(2), v)
}

func TestMapKeyTooLong(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"uint8"}}`)
	buf := f.NewBuffer()
	long := make([]byte, 255)
	for i := range long {
		long[i] = 'k'
	}
	require.ErrorIs(t, buf.Set(uint8(1), string(long)), ErrTooLarge)
	require.NoError(t, buf.Set(uint8(1), string(long[:254])))
}

func TestListAscendingIteration(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"list","of":{"type":"uint16"}}`)
	buf := f.NewBuffer()
	// Insert out of order, with holes.
	for _, i := range []uint16{40, 7, 900, 0, 41} {
		require.NoError(t, Set(buf, i, strconv.Itoa(int(i))))
	}

	var indices []uint16
	require.NoError(t, listIterate(buf, buf.rootCursor(), func(index uint16, _ cursor) error {
		indices = append(indices, index)
		return nil
	}))
	require.Equal(t, []uint16{0, 7, 40, 41, 900}, indices)
	require.IsIncreasing(t, indices)

	n, err := buf.Length()
	require.NoError(t, err)
	require.Equal(t, 5, n)
}

func TestListHeadAndTailMaintained(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"list","of":{"type":"uint8"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set(uint8(5), "5"))
	require.NoError(t, buf.Set(uint8(1), "1"))
	require.NoError(t, buf.Set(uint8(9), "9"))

	root := buf.rootCursor()
	head := listHead(buf, root)
	tail := listTail(buf, root)
	require.Equal(t, uint16(1), cellIndex(buf.mem, head))
	require.Equal(t, uint16(9), cellIndex(buf.mem, tail))
}

func TestListPush(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"list","of":{"type":"string"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Push("first"))
	require.NoError(t, buf.Push("second"))
	require.NoError(t, buf.Set("tenth", "9"))
	require.NoError(t, buf.Push("eleventh"))

	v, _, err := Get[string](buf, "10")
	require.NoError(t, err)
	require.Equal(t, "eleventh", v)

	out, err := buf.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t,
		`["first","second",null,null,null,null,null,null,null,"tenth","eleventh"]`,
		string(out))
}

func TestTableLastWriteWins(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"table","columns":[["a",{"type":"string"}],["b",{"type":"string"}]]}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("one", "a"))
	require.NoError(t, buf.Set("two", "b"))
	require.NoError(t, buf.Set("three", "a"))

	v, _, err := Get[string](buf, "a")
	require.NoError(t, err)
	require.Equal(t, "three", v)

	// One item per column, ever.
	n := 0
	require.NoError(t, tableIterate(buf, buf.rootCursor(), func(uint8, cursor) error {
		n++
		return nil
	}))
	require.Equal(t, 2, n)
}

func TestTableUnknownColumn(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"table","columns":[["a",{"type":"string"}]]}`)
	buf := f.NewBuffer()
	require.ErrorIs(t, buf.Set("x", "nope"), ErrPath)
	_, _, err := buf.Get("A") // case sensitive
	require.ErrorIs(t, err, ErrPath)
}

func TestTupleIndexOutOfRange(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"tuple","values":[{"type":"uint8"},{"type":"string"}]}`)
	buf := f.NewBuffer()
	require.ErrorIs(t, buf.Set(uint8(1), "2"), ErrPath)
	_, _, err := buf.Get("abc")
	require.ErrorIs(t, err, ErrPath)

	require.NoError(t, buf.Set(uint8(1), "0"))
	require.NoError(t, buf.Set("x", "1"))
	v, _, err := Get[string](buf, "1")
	require.NoError(t, err)
	require.Equal(t, "x", v)
}

func TestTupleJSONIncludesUnsetSlots(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"tuple","values":[{"type":"uint8"},{"type":"string"}]}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set(uint8(3), "0"))
	out, err := buf.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t, `[3,null]`, string(out))
}

func TestDeepNesting(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{
		"type":"table","columns":[
			["meta",{"type":"map","value":{"type":"list","of":{"type":"tuple","values":[{"type":"string"},{"type":"uint32"}]}}}]
		]}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("deep", "meta", "tags", "3", "0"))
	require.NoError(t, buf.Set(uint32(99), "meta", "tags", "3", "1"))

	v, ok, err := Get[uint32](buf, "meta", "tags", "3", "1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint32(99), v)

	compacted, err := buf.Compact()
	require.NoError(t, err)
	v, _, err = Get[uint32](compacted, "meta", "tags", "3", "1")
	require.NoError(t, err)
	require.Equal(t, uint32(99), v)
}
