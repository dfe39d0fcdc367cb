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

func TestSnapshotRoundTrip(t *testing.T) {
	t.Parallel()
	f := mustFactory(t, `{"type":"table","columns":[["name",{"type":"string"}],["age",{"type":"uint8"}]]}`, WithAddressWidth(4))
	buf := f.NewBuffer()
	require.NoError(t, buf.Set("grace", "name"))
	require.NoError(t, buf.Set(uint8(85), "age"))

	var file bytes.Buffer
	require.NoError(t, buf.Snapshot(&file))

	f2, buf2, err := OpenSnapshot(&file)
	require.NoError(t, err)

	// The embedded schema round-tripped.
	require.Equal(t, f.SchemaBytes(), f2.SchemaBytes())

	v, ok, err := Get[string](buf2, "name")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "grace", v)

	// The restored buffer is mutable like any other.
	require.NoError(t, buf2.Set(uint8(86), "age"))
	age, _, err := Get[uint8](buf2, "age")
	require.NoError(t, err)
	require.Equal(t, uint8(86), age)
}

func TestOpenSnapshotRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, _, err := OpenSnapshot(bytes.NewReader([]byte("not a snapshot")))
	require.Error(t, err)
}
