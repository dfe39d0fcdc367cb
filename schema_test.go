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
	"os"
	"testing"

	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type schemaCorpus struct {
	Roundtrip []schemaCase `yaml:"roundtrip"`
	Invalid   []schemaCase `yaml:"invalid"`
}

type schemaCase struct {
	Name   string `yaml:"name"`
	Schema string `yaml:"schema"`
	Error  string `yaml:"error"`
}

func loadSchemaCorpus(t *testing.T) schemaCorpus {
	t.Helper()
	data, err := os.ReadFile("testdata/schemas.yaml")
	require.NoError(t, err)
	var corpus schemaCorpus
	require.NoError(t, yaml.Unmarshal(data, &corpus))
	require.NotEmpty(t, corpus.Roundtrip)
	require.NotEmpty(t, corpus.Invalid)
	return corpus
}

func TestSchemaJSONRoundTrip(t *testing.T) {
	t.Parallel()
	for _, tc := range loadSchemaCorpus(t).Roundtrip {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			tree, err := ParseSchema([]byte(tc.Schema))
			require.NoError(t, err)

			emitted, err := tree.JSON()
			require.NoError(t, err)
			again, err := ParseSchema(emitted)
			require.NoError(t, err)
			require.Equal(t, tree, again, "JSON -> tree -> JSON -> tree drifted")
		})
	}
}

func TestSchemaBytesRoundTrip(t *testing.T) {
	t.Parallel()
	for _, tc := range loadSchemaCorpus(t).Roundtrip {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			tree, err := ParseSchema([]byte(tc.Schema))
			require.NoError(t, err)

			decoded, err := SchemaFromBytes(tree.Bytes())
			require.NoError(t, err)
			require.Equal(t, tree, decoded, "JSON tree and bytes tree disagree")
		})
	}
}

func TestSchemaInvalid(t *testing.T) {
	t.Parallel()
	for _, tc := range loadSchemaCorpus(t).Invalid {
		t.Run(tc.Name, func(t *testing.T) {
			t.Parallel()
			_, err := ParseSchema([]byte(tc.Schema))
			require.Error(t, err)
			require.ErrorIs(t, err, ErrSchema)
			require.Contains(t, err.Error(), tc.Error)
		})
	}
}

func TestSchemaStringifyExact(t *testing.T) {
	t.Parallel()
	const schema = `{"type":"map","value":{"type":"string"}}`
	f, err := NewFactory([]byte(schema))
	require.NoError(t, err)
	out, err := f.SchemaJSON()
	require.NoError(t, err)
	require.Equal(t, schema, string(out))
}

func TestSchemaFromBytesRejectsGarbage(t *testing.T) {
	t.Parallel()
	_, err := SchemaFromBytes(nil)
	require.ErrorIs(t, err, ErrSchema)
	_, err = SchemaFromBytes([]byte{0xFF})
	require.ErrorIs(t, err, ErrSchema)
	// A map tag with its child chopped off.
	_, err = SchemaFromBytes([]byte{byte(TypeMap)})
	require.ErrorIs(t, err, ErrSchema)
}

func TestSchemaSortability(t *testing.T) {
	t.Parallel()
	cases := []struct {
		schema   string
		sortable bool
	}{
		{`{"type":"int32"}`, true},
		{`{"type":"uint64"}`, true},
		{`{"type":"float"}`, false},
		{`{"type":"double"}`, false},
		{`{"type":"dec","exp":2}`, true},
		{`{"type":"bool"}`, true},
		{`{"type":"option","choices":["a"]}`, true},
		{`{"type":"date"}`, true},
		{`{"type":"uuid"}`, true},
		{`{"type":"ulid"}`, true},
		{`{"type":"geo8"}`, true},
		{`{"type":"string"}`, false},
		{`{"type":"string","size":8}`, true},
		{`{"type":"bytes"}`, false},
		{`{"type":"bytes","size":8}`, true},
		{`{"type":"map","value":{"type":"uint8"}}`, false},
		{`{"type":"list","of":{"type":"uint8"}}`, false},
		{`{"type":"tuple","values":[{"type":"uint8"}]}`, false},
		{`{"type":"tuple","sorted":true,"values":[{"type":"uint8"}]}`, true},
	}
	for _, tc := range cases {
		tree, err := ParseSchema([]byte(tc.schema))
		require.NoError(t, err, tc.schema)
		require.Equal(t, tc.sortable, tree.Sortable, tc.schema)
	}
}

func TestMetaSchemaAcceptsCorpus(t *testing.T) {
	t.Parallel()
	for _, tc := range loadSchemaCorpus(t).Roundtrip {
		require.NoError(t, validateSchemaDoc([]byte(tc.Schema)), tc.Name)
	}
}

func TestSchemaClone(t *testing.T) {
	t.Parallel()
	tree, err := ParseSchema([]byte(`{"type":"table","columns":[["a",{"type":"string"}],["b",{"type":"uint8"}]]}`))
	require.NoError(t, err)
	clone, err := tree.Clone()
	require.NoError(t, err)
	require.Equal(t, tree, clone)
	clone.Columns[0].Name = "mutated"
	require.Equal(t, "a", tree.Columns[0].Name)
}
