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
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/s2"
)

// A snapshot is the self-contained file form of a buffer: the address
// width, the compiled byte schema and the raw buffer bytes, s2-compressed.
// It is the one place a buffer travels together with the schema it depends
// on.
//
// Container layout before compression:
//
//	width:u8  schemaLen:u32  schema bytes  buffer bytes

// Snapshot writes the buffer and its schema to w.
func (b *Buffer) Snapshot(w io.Writer) error {
	schema := b.schema.Bytes()
	plain := make([]byte, 0, 5+len(schema)+b.mem.Len())
	plain = append(plain, byte(b.mem.Width()))
	plain = binary.BigEndian.AppendUint32(plain, uint32(len(schema)))
	plain = append(plain, schema...)
	plain = append(plain, b.mem.Raw()...)

	_, err := w.Write(s2.Encode(nil, plain))
	return err
}

// OpenSnapshot reads a snapshot back into a live buffer, rebuilding the
// factory from the embedded schema. The returned factory mints further
// buffers compatible with the snapshot.
func OpenSnapshot(r io.Reader) (*Factory, *Buffer, error) {
	compressed, err := io.ReadAll(r)
	if err != nil {
		return nil, nil, fmt.Errorf("read snapshot: %w", err)
	}
	plain, err := s2.Decode(nil, compressed)
	if err != nil {
		return nil, nil, fmt.Errorf("decompress snapshot: %w", err)
	}
	if len(plain) < 5 {
		return nil, nil, fmt.Errorf("snapshot too short: %d bytes", len(plain))
	}
	width := int(plain[0])
	schemaLen := int(binary.BigEndian.Uint32(plain[1:5]))
	if len(plain) < 5+schemaLen {
		return nil, nil, fmt.Errorf("snapshot truncated inside schema")
	}
	f, err := NewFactoryFromBytes(plain[5:5+schemaLen], WithAddressWidth(width))
	if err != nil {
		return nil, nil, err
	}
	buf, err := f.OpenBuffer(append([]byte(nil), plain[5+schemaLen:]...))
	if err != nil {
		return nil, nil, err
	}
	return f, buf, nil
}
