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

package arena

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewReservesRootCell(t *testing.T) {
	t.Parallel()
	for _, width := range []int{Width1, Width2, Width4} {
		a := New(width, 0)
		require.Equal(t, width, a.Len())
		require.Equal(t, uint32(0), a.ReadAddr(0))
	}
}

func TestAllocNeverReturnsZero(t *testing.T) {
	t.Parallel()
	a := New(Width2, 0)
	off, err := a.Alloc([]byte{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, uint32(2), off)
	require.Equal(t, 5, a.Len())
}

func TestAllocIsMonotonic(t *testing.T) {
	t.Parallel()
	a := New(Width2, 0)
	var last uint32
	for range 16 {
		off, err := a.AllocEmpty(7)
		require.NoError(t, err)
		require.Greater(t, off, last)
		last = off
	}
}

func TestAddrRoundTrip(t *testing.T) {
	t.Parallel()
	cases := []struct {
		width int
		value uint32
	}{
		{Width1, 0xAB},
		{Width2, 0xABCD},
		{Width4, 0xABCDEF01},
	}
	for _, tc := range cases {
		a := New(tc.width, 0)
		off, err := a.AllocEmpty(tc.width)
		require.NoError(t, err)
		a.WriteAddr(off, tc.value)
		require.Equal(t, tc.value, a.ReadAddr(off))
	}
}

func TestAllocOverflow(t *testing.T) {
	t.Parallel()
	a := New(Width1, 0)
	_, err := a.AllocEmpty(255)
	require.NoError(t, err)
	// The arena is past its largest representable offset now.
	_, err = a.AllocEmpty(1)
	require.ErrorIs(t, err, ErrOverflow)
}

func TestWriteDoesNotMoveBytes(t *testing.T) {
	t.Parallel()
	a := New(Width2, 0)
	off, err := a.Alloc([]byte("abcd"))
	require.NoError(t, err)
	_, err = a.Alloc(make([]byte, 100))
	require.NoError(t, err)
	require.Equal(t, []byte("abcd"), a.Bytes(off, 4))
	a.Write(off, []byte("xy"))
	require.Equal(t, []byte("xycd"), a.Bytes(off, 4))
}

func TestU16RoundTrip(t *testing.T) {
	t.Parallel()
	a := New(Width1, 0)
	off, err := a.AllocEmpty(2)
	require.NoError(t, err)
	a.WriteU16(off, 0xBEEF)
	require.Equal(t, uint16(0xBEEF), a.ReadU16(off))
}
