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
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"
)

func mustFactory(t *testing.T, schema string, opts ...FactoryOption) *Factory {
	t.Helper()
	f, err := NewFactory([]byte(schema), opts...)
	require.NoError(t, err)
	return f
}

func TestMapRoundTripAndCompaction(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)

	buf := f.NewBuffer()
	require.NoError(t, buf.Set("hello, world", "name"))

	v, ok, err := Get[string](buf, "name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "hello, world", v)

	sizes := buf.CalcBytes()
	require.Equal(t, uint64(27), sizes.Current)
	require.Equal(t, sizes.Current, sizes.AfterCompaction)

	cleared, err := buf.Del()
	require.NoError(t, err)
	require.True(t, cleared)

	compacted, err := buf.Compact()
	require.NoError(t, err)
	require.Equal(t, uint64(2), compacted.CalcBytes().Current)
}

func TestMapPreservesValuesThroughCompaction(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)

	buf := f.NewBuffer()
	require.NoError(t, buf.Set("hello, world", "name"))
	require.NoError(t, buf.Set("hello, world2", "name2"))
	require.Equal(t, uint64(54), buf.CalcBytes().Current)

	compacted, err := buf.Compact()
	require.NoError(t, err)
	for _, tc := range []struct{ key, want string }{
		{"name", "hello, world"},
		{"name2", "hello, world2"},
	} {
		v, ok, err := Get[string](compacted, tc.key)
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, tc.want, v)
	}
	require.Equal(t, uint64(54), compacted.CalcBytes().Current)
}

func TestTypecastRejection(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"int32"}`)
	buf := f.NewBuffer()

	_, _, err := Get[string](buf)
	require.ErrorIs(t, err, ErrTypecast)

	require.ErrorIs(t, buf.Set("nope"), ErrTypecast)
	require.NoError(t, buf.Set(int32(42)))
	v, ok, err := Get[int32](buf)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, int32(42), v)
}

func TestNestedListOfMaps(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"list","of":{"type":"map","value":{"type":"uint8"}}}`)
	buf := f.NewBuffer()

	require.NoError(t, buf.Set(uint8(7), "2", "k"))
	v, ok, err := Get[uint8](buf, "2", "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, uint8(7), v)

	_, _, err = buf.Get("abc", "k")
	require.ErrorIs(t, err, ErrPath)

	// A never-written sibling index reads as unset, not as an error.
	_, ok, err = Get[uint8](buf, "1", "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestSortedTupleByteOrder(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"tuple","sorted":true,"values":[{"type":"uint8"},{"type":"uint16"}]}`)

	a := f.NewBuffer()
	require.NoError(t, a.Set(uint8(1), "0"))
	require.NoError(t, a.Set(uint16(500), "1"))

	b := f.NewBuffer()
	require.NoError(t, b.Set(uint8(1), "0"))
	require.NoError(t, b.Set(uint16(501), "1"))

	rawA, err := a.TupleRaw()
	require.NoError(t, err)
	rawB, err := b.TupleRaw()
	require.NoError(t, err)
	require.Len(t, rawA, 3)
	require.Negative(t, bytes.Compare(rawA, rawB))
}

func TestPathIntoScalarStopsShort(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"uint8"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set(uint8(1), "k"))

	// Reads that walk through a scalar find nothing.
	_, ok, err := buf.Get("k", "deeper")
	require.NoError(t, err)
	require.False(t, ok)

	// Writes there are an error.
	require.ErrorIs(t, buf.Set(uint8(2), "k", "deeper"), ErrPath)
}

func TestDelSemantics(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)
	buf := f.NewBuffer()

	// Deleting something that never existed clears nothing and allocates
	// nothing.
	before := buf.CalcBytes().Current
	cleared, err := buf.Del("ghost")
	require.NoError(t, err)
	require.False(t, cleared)
	require.Equal(t, before, buf.CalcBytes().Current)

	require.NoError(t, buf.Set("v", "k"))
	cleared, err = buf.Del("k")
	require.NoError(t, err)
	require.True(t, cleared)

	_, ok, err := Get[string](buf, "k")
	require.NoError(t, err)
	require.False(t, ok)

	// Second delete is a no-op.
	cleared, err = buf.Del("k")
	require.NoError(t, err)
	require.False(t, cleared)
}

func TestGetOnUnsetReturnsDefault(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string","default":"n/a"}}`)
	buf := f.NewBuffer()

	v, ok, err := Get[string](buf, "missing")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "n/a", v)

	// A read never allocates: the miss above left no trace.
	require.Equal(t, uint64(2), buf.CalcBytes().Current)
}

func TestToJSON(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"table","columns":[["name",{"type":"string"}],["age",{"type":"uint8"}]]}`)
	buf := f.NewBuffer()

	// Nothing set: the root is null.
	out, err := buf.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t, `null`, string(out))

	require.NoError(t, buf.Set("ada", "name"))
	out, err = buf.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t, `{"name":"ada","age":null}`, string(out))
}

func TestCalcBytesNeverBelowCompaction(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("one", "a"))
	require.NoError(t, buf.Set("two", "b"))
	// Overwrite with a different length orphans the old record.
	require.NoError(t, buf.Set("three!", "a"))

	sizes := buf.CalcBytes()
	require.Less(t, sizes.AfterCompaction, sizes.Current)

	compacted, err := buf.Compact()
	require.NoError(t, err)
	require.Equal(t, sizes.AfterCompaction, compacted.CalcBytes().Current)

	want, err := buf.ToJSON()
	require.NoError(t, err)
	got, err := compacted.ToJSON()
	require.NoError(t, err)
	require.JSONEq(t, string(want), string(got))
}

func TestAddressWidths(t *testing.T) {
	t.Parallel()
	for _, width := range []int{1, 2, 4} {
		f := mustFactory(t, `{"type":"map","value":{"type":"uint8"}}`, WithAddressWidth(width))
		buf := f.NewBuffer()
		require.Equal(t, uint64(width), buf.CalcBytes().Current)
		require.NoError(t, buf.Set(uint8(9), "k"))
		v, ok, err := Get[uint8](buf, "k")
		require.NoError(t, err)
		require.True(t, ok)
		require.Equal(t, uint8(9), v, "width %d", width)
	}
}

func TestWidth1Overflow(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`, WithAddressWidth(1))
	buf := f.NewBuffer()
	var err error
	for i := 0; err == nil && i < 64; i++ {
		err = buf.Set("some value that eats space", string(rune('a'+i)))
	}
	require.ErrorIs(t, err, ErrOverflow)
}

func TestOpenBufferRoundTrip(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"map","value":{"type":"string"}}`)
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("persisted", "k"))

	reopened, err := f.OpenBuffer(append([]byte(nil), buf.Bytes()...))
	require.NoError(t, err)
	v, ok, err := Get[string](reopened, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "persisted", v)
}
