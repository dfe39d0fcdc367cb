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
	"fmt"

	"github.com/mutbuf/mutbuf/internal/arena"
)

// Factory is a compiled schema that mints buffers. Compile once, create and
// open as many buffers as needed; every buffer stays bound to the schema
// that created it.
type Factory struct {
	schema *Schema
	bytes  []byte
	width  int
}

// FactoryOption configures schema compilation.
type FactoryOption func(*factoryOptions)

type factoryOptions struct {
	width    int
	validate bool
}

// WithAddressWidth selects the buffer address width in bytes: 1, 2 or 4.
// The width fixes the size of every pointer cell and the maximum buffer
// size (256 bytes, 64 KiB, 4 GiB). The default is 2.
func WithAddressWidth(w int) FactoryOption {
	return func(o *factoryOptions) { o.width = w }
}

// WithSchemaValidation additionally validates the schema document against
// [MetaSchema] before compiling, surfacing shape errors with JSON-Schema
// wording.
func WithSchemaValidation() FactoryOption {
	return func(o *factoryOptions) { o.validate = true }
}

// NewFactory parses, validates and compiles a JSON schema document.
func NewFactory(schemaJSON []byte, opts ...FactoryOption) (*Factory, error) {
	o := applyOptions(opts)
	if o.validate {
		if err := validateSchemaDoc(schemaJSON); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrSchema, err)
		}
	}
	s, err := ParseSchema(schemaJSON)
	if err != nil {
		return nil, err
	}
	return newFactory(s, o)
}

// NewFactoryFromBytes compiles a factory from a byte schema previously
// produced by [Schema.Bytes] or [Factory.SchemaBytes]. No validation beyond
// length checks is performed.
func NewFactoryFromBytes(schemaBytes []byte, opts ...FactoryOption) (*Factory, error) {
	s, err := SchemaFromBytes(schemaBytes)
	if err != nil {
		return nil, err
	}
	return newFactory(s, applyOptions(opts))
}

func applyOptions(opts []FactoryOption) *factoryOptions {
	o := &factoryOptions{width: arena.Width2}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func newFactory(s *Schema, o *factoryOptions) (*Factory, error) {
	switch o.width {
	case arena.Width1, arena.Width2, arena.Width4:
	default:
		return nil, fmt.Errorf("%w: address width must be 1, 2 or 4, got %d", ErrSchema, o.width)
	}
	return &Factory{schema: s, bytes: s.Bytes(), width: o.width}, nil
}

// Schema returns a deep copy of the parsed schema tree; the factory's own
// tree stays immutable.
func (f *Factory) Schema() (*Schema, error) {
	return f.schema.Clone()
}

// SchemaJSON re-emits the canonical JSON form of the compiled schema.
func (f *Factory) SchemaJSON() ([]byte, error) {
	return f.schema.JSON()
}

// SchemaBytes returns a copy of the compiled byte schema.
func (f *Factory) SchemaBytes() []byte {
	return append([]byte(nil), f.bytes...)
}

// NewBuffer creates an empty buffer: just the reserved root cell.
func (f *Factory) NewBuffer() *Buffer {
	return f.NewBufferWithCapacity(0)
}

// NewBufferWithCapacity creates an empty buffer with an arena
// pre-allocation hint, for callers that know roughly how much they will
// write.
func (f *Factory) NewBufferWithCapacity(n int) *Buffer {
	return &Buffer{mem: arena.New(f.width, n), schema: f.schema}
}

// OpenBuffer wraps bytes previously obtained from [Buffer.Bytes]. The
// bytes must have been produced with this factory's schema and address
// width; the buffer format itself is headerless and carries no means to
// check.
func (f *Factory) OpenBuffer(raw []byte) (*Buffer, error) {
	mem, err := arena.From(f.width, raw)
	if err != nil {
		return nil, err
	}
	return &Buffer{mem: mem, schema: f.schema}, nil
}
