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
	"math"
)

// Geo is a geographic coordinate. The schema's geo size trades space for
// resolution: geo4 keeps two decimal places (city scale), geo8 seven
// (marble scale), geo16 nine.
type Geo struct {
	Lat float64
	Lng float64
}

// geoScale returns the fixed-point multiplier for each geo size.
func geoScale(size uint8) float64 {
	switch size {
	case 4:
		return 1e2
	case 8:
		return 1e7
	default:
		return 1e9
	}
}

var geoCodec = &scalarCodec{
	width: func(s *Schema) int { return int(s.GeoSize) },
	encode: func(s *Schema, v any) ([]byte, error) {
		g := v.(Geo)
		scale := geoScale(s.GeoSize)
		lat := int64(math.Round(g.Lat * scale))
		lng := int64(math.Round(g.Lng * scale))
		switch s.GeoSize {
		case 4:
			out := beBytes16(uint16(int16(lat)) ^ 0x8000)
			return append(out, beBytes16(uint16(int16(lng))^0x8000)...), nil
		case 8:
			out := beBytes32(uint32(int32(lat)) ^ 0x8000_0000)
			return append(out, beBytes32(uint32(int32(lng))^0x8000_0000)...), nil
		default:
			out := beBytes64(uint64(lat) ^ 0x8000_0000_0000_0000)
			return append(out, beBytes64(uint64(lng)^0x8000_0000_0000_0000)...), nil
		}
	},
	decode: func(s *Schema, raw []byte) any {
		scale := geoScale(s.GeoSize)
		var lat, lng int64
		switch s.GeoSize {
		case 4:
			lat = int64(int16(binary.BigEndian.Uint16(raw[0:2]) ^ 0x8000))
			lng = int64(int16(binary.BigEndian.Uint16(raw[2:4]) ^ 0x8000))
		case 8:
			lat = int64(int32(binary.BigEndian.Uint32(raw[0:4]) ^ 0x8000_0000))
			lng = int64(int32(binary.BigEndian.Uint32(raw[4:8]) ^ 0x8000_0000))
		default:
			lat = int64(binary.BigEndian.Uint64(raw[0:8]) ^ 0x8000_0000_0000_0000)
			lng = int64(binary.BigEndian.Uint64(raw[8:16]) ^ 0x8000_0000_0000_0000)
		}
		return Geo{Lat: float64(lat) / scale, Lng: float64(lng) / scale}
	},
	fromJSON: func(_ *Schema, v any) (any, error) {
		obj, ok := v.(map[string]any)
		if !ok {
			return nil, schemaErrf("geo value must be a JSON object with lat and lng")
		}
		lat, okLat := asFloat64(obj["lat"])
		lng, okLng := asFloat64(obj["lng"])
		if !okLat || !okLng {
			return nil, schemaErrf("geo value needs numeric 'lat' and 'lng'")
		}
		return Geo{Lat: lat, Lng: lng}, nil
	},
	toJSON: func(_ *Schema, v any) any {
		g := v.(Geo)
		return map[string]any{"lat": g.Lat, "lng": g.Lng}
	},
}

func parseGeoSchema(obj map[string]any, name string) (*Schema, error) {
	s := &Schema{Key: TypeGeo, Sortable: true}
	switch name {
	case "geo4":
		s.GeoSize = 4
	case "geo8":
		s.GeoSize = 8
	default:
		s.GeoSize = 16
	}
	if d, ok := obj["default"]; ok {
		v, err := geoCodec.fromJSON(s, d)
		if err != nil {
			return nil, err
		}
		// Snap the default to the wire grid so it equals what a reader of
		// the compiled schema reconstructs.
		raw, err := geoCodec.encode(s, v)
		if err != nil {
			return nil, err
		}
		s.Default = geoCodec.decode(s, raw)
	}
	return s, nil
}
