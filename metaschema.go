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
	"encoding/json"

	"github.com/google/jsonschema-go/jsonschema"
)

// MetaSchema returns a JSON Schema describing the schema language itself:
// the shape every document accepted by [ParseSchema] has. It is useful for
// editor tooling and for validating schema documents with standard
// JSON-Schema machinery; [WithSchemaValidation] runs it before compiling.
//
// The meta-schema checks shape, not cross-field rules; the compiler still
// enforces constraints like sorted-tuple child sortability.
func MetaSchema() *jsonschema.Schema {
	names := make([]any, 0, len(typeKeyByName))
	for name := range typeKeyByName {
		names = append(names, name)
	}
	return &jsonschema.Schema{
		Title: "mutbuf schema",
		Type:  "object",
		Required: []string{
			"type",
		},
		Properties: map[string]*jsonschema.Schema{
			"type":    {Type: "string", Enum: names},
			"size":    {Type: "integer"},
			"exp":     {Type: "integer"},
			"sorted":  {Type: "boolean"},
			"default": {},
			"choices": {
				Type:  "array",
				Items: &jsonschema.Schema{Type: "string"},
			},
			"columns": {
				Type: "array",
				Items: &jsonschema.Schema{
					Type: "array",
				},
			},
			"value":  {Ref: "#"},
			"of":     {Ref: "#"},
			"values": {Type: "array", Items: &jsonschema.Schema{Ref: "#"}},
		},
	}
}

// validateSchemaDoc checks a raw schema document against the meta-schema.
// The document is decoded with plain float64 numbers; the validator's
// integer checks expect that, not json.Number.
func validateSchemaDoc(data []byte) error {
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}
	resolved, err := MetaSchema().Resolve(nil)
	if err != nil {
		return err
	}
	return resolved.Validate(doc)
}
