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
	"testing"

	"github.com/stretchr/testify/require"
)

// requireCompactInvariants checks the compaction contract on an arbitrary
// buffer: JSON is preserved, the predicted size is exact, and the result
// never grows.
func requireCompactInvariants(t *testing.T, buf *Buffer) *Buffer {
	t.Helper()
	sizes := buf.CalcBytes()
	require.LessOrEqual(t, sizes.AfterCompaction, sizes.Current)

	before, err := buf.ToJSON()
	require.NoError(t, err)
	sourceLen := buf.CalcBytes().Current

	compacted, err := buf.Compact()
	require.NoError(t, err)

	// The source was not touched.
	require.Equal(t, sourceLen, buf.CalcBytes().Current)

	after, err := compacted.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t, string(before), string(after))
	require.Equal(t, sizes.AfterCompaction, compacted.CalcBytes().Current)
	return compacted
}

func TestCompactDropsClearedListItems(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"list","of":{"type":"string"}}`)
	buf := f.NewBuffer()
	for _, i := range []string{"0", "1", "2"} {
		require.NoError(t, buf.Set("item "+i, i))
	}
	_, err := buf.Del("1")
	require.NoError(t, err)

	compacted := requireCompactInvariants(t, buf)

	n, err := compacted.Length()
	require.NoError(t, err)
	require.Equal(t, 2, n)

	// The hole stays a hole: index 1 is unset, 0 and 2 keep their values.
	_, ok, err := Get[string](compacted, "1")
	require.NoError(t, err)
	require.False(t, ok)
	v, _, err := Get[string](compacted, "2")
	require.NoError(t, err)
	require.Equal(t, "item 2", v)
}

func TestCompactDropsOverwrittenStrings(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("a short one", "k"))
	require.NoError(t, buf.Set("a much longer value than before", "k"))

	sizes := buf.CalcBytes()
	require.Less(t, sizes.AfterCompaction, sizes.Current)
	requireCompactInvariants(t, buf)
}

func TestCompactTable(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"table","columns":[["a",{"type":"string"}],["b",{"type":"uint8"}],["c",{"type":"string"}]]}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("left", "a"))
	require.NoError(t, buf.Set(uint8(8), "b"))
	require.NoError(t, buf.Set("right", "c"))
	_, err := buf.Del("a")
	require.NoError(t, err)

	compacted := requireCompactInvariants(t, buf)
	_, ok, err := Get[string](compacted, "a")
	require.NoError(t, err)
	require.False(t, ok)
	v, _, err := Get[uint8](compacted, "b")
	require.NoError(t, err)
	require.Equal(t, uint8(8), v)
}

func TestCompactSortedTuple(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"tuple","sorted":true,"values":[{"type":"uint8"},{"type":"uint16"}]}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set(uint8(1), "0"))
	require.NoError(t, buf.Set(uint16(500), "1"))

	compacted := requireCompactInvariants(t, buf)

	rawSrc, err := buf.TupleRaw()
	require.NoError(t, err)
	rawDst, err := compacted.TupleRaw()
	require.NoError(t, err)
	require.Equal(t, rawSrc, rawDst)
}

func TestCompactIdempotentWhenClean(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"list","of":{"type":"uint8"}}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set(uint8(1), "xs", "0"))
	require.NoError(t, buf.Set(uint8(2), "xs", "1"))

	// Never deleted, never overwritten: compaction changes nothing.
	sizes := buf.CalcBytes()
	require.Equal(t, sizes.Current, sizes.AfterCompaction)
	compacted := requireCompactInvariants(t, buf)
	second := requireCompactInvariants(t, compacted)
	require.Equal(t, compacted.CalcBytes(), second.CalcBytes())
}

func TestCompactEmptyBuffer(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)
	buf := f.NewBuffer()
	compacted := requireCompactInvariants(t, buf)
	require.Equal(t, uint64(2), compacted.CalcBytes().Current)
}
