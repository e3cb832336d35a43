// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/bioorbit/core"
)

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	return core.ID(v), err
}

// MarshalCandidate serializes a Candidate to bytes.
func MarshalCandidate(c *core.Candidate) []byte {
	w := &writer{buf: make([]byte, candidateSize(c))}
	w.string(c.ID)
	w.float32(c.Score)
	w.string(c.Source.ID)
	w.string(c.Source.Title)
	w.string(c.Source.URL)
	w.strings(c.Source.Authors)
	w.string(c.Source.Date)
	w.string(string(c.Source.DB))
	w.string(c.Chunk.ID)
	w.string(c.Chunk.Text)
	w.string(c.Chunk.VectorID)
	w.int(c.Chunk.StartChar)
	w.int(c.Chunk.EndChar)
	w.string(c.StructureID)
	w.optFloat64(c.DeltaG)
	w.optFloat64(c.MolecularWeight)
	w.strings(c.Tags)
	w.string(string(c.Type))
	w.vector(c.Vector)
	return w.buf
}

// UnmarshalCandidate deserializes a Candidate from bytes.
func UnmarshalCandidate(data []byte) (*core.Candidate, error) {
	r := &reader{buf: data}
	c := &core.Candidate{}
	c.ID = r.string()
	c.Score = r.float32()
	c.Source.ID = r.string()
	c.Source.Title = r.string()
	c.Source.URL = r.string()
	c.Source.Authors = r.strings()
	c.Source.Date = r.string()
	c.Source.DB = core.SourceDB(r.string())
	c.Chunk.ID = r.string()
	c.Chunk.Text = r.string()
	c.Chunk.VectorID = r.string()
	c.Chunk.StartChar = r.int()
	c.Chunk.EndChar = r.int()
	c.StructureID = r.string()
	c.DeltaG = r.optFloat64()
	c.MolecularWeight = r.optFloat64()
	c.Tags = r.strings()
	c.Type = core.MoleculeType(r.string())
	c.Vector = r.vector()
	if r.err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSerializationFailed, r.err)
	}
	return c, nil
}

func candidateSize(c *core.Candidate) int {
	size := ord.String.Size(c.ID) +
		raw.Float32.Size(c.Score) +
		ord.String.Size(c.Source.ID) +
		ord.String.Size(c.Source.Title) +
		ord.String.Size(c.Source.URL) +
		stringsSize(c.Source.Authors) +
		ord.String.Size(c.Source.Date) +
		ord.String.Size(string(c.Source.DB)) +
		ord.String.Size(c.Chunk.ID) +
		ord.String.Size(c.Chunk.Text) +
		ord.String.Size(c.Chunk.VectorID) +
		varint.Int.Size(c.Chunk.StartChar) +
		varint.Int.Size(c.Chunk.EndChar) +
		ord.String.Size(c.StructureID) +
		optFloat64Size(c.DeltaG) +
		optFloat64Size(c.MolecularWeight) +
		stringsSize(c.Tags) +
		ord.String.Size(string(c.Type))
	size += varint.Int.Size(len(c.Vector))
	for _, f := range c.Vector {
		size += raw.Float32.Size(f)
	}
	return size
}

func stringsSize(ss []string) int {
	size := varint.Int.Size(len(ss))
	for _, s := range ss {
		size += ord.String.Size(s)
	}
	return size
}

func optFloat64Size(f *float64) int {
	if f == nil {
		return ord.Bool.Size(false)
	}
	return ord.Bool.Size(true) + raw.Float64.Size(*f)
}

// writer appends fields into a buffer sized by candidateSize.
type writer struct {
	buf []byte
	n   int
}

func (w *writer) string(s string) {
	w.n += ord.String.Marshal(s, w.buf[w.n:])
}

func (w *writer) int(v int) {
	w.n += varint.Int.Marshal(v, w.buf[w.n:])
}

func (w *writer) float32(f float32) {
	w.n += raw.Float32.Marshal(f, w.buf[w.n:])
}

func (w *writer) strings(ss []string) {
	w.int(len(ss))
	for _, s := range ss {
		w.string(s)
	}
}

func (w *writer) optFloat64(f *float64) {
	w.n += ord.Bool.Marshal(f != nil, w.buf[w.n:])
	if f != nil {
		w.n += raw.Float64.Marshal(*f, w.buf[w.n:])
	}
}

func (w *writer) vector(v []float32) {
	w.int(len(v))
	for _, f := range v {
		w.float32(f)
	}
}

// reader consumes fields in the order writer produced them. After the
// first failure every accessor returns the zero value.
type reader struct {
	buf []byte
	n   int
	err error
}

func (r *reader) string() string {
	if r.err != nil {
		return ""
	}
	v, n, err := ord.String.Unmarshal(r.buf[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) int() int {
	if r.err != nil {
		return 0
	}
	v, n, err := varint.Int.Unmarshal(r.buf[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) float32() float32 {
	if r.err != nil {
		return 0
	}
	v, n, err := raw.Float32.Unmarshal(r.buf[r.n:])
	r.n += n
	r.err = err
	return v
}

func (r *reader) length() int {
	l := r.int()
	if r.err == nil && (l < 0 || l > len(r.buf)-r.n) {
		r.err = ErrTruncatedData
		return 0
	}
	return l
}

func (r *reader) strings() []string {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	ss := make([]string, 0, l)
	for i := 0; i < l && r.err == nil; i++ {
		ss = append(ss, r.string())
	}
	return ss
}

func (r *reader) optFloat64() *float64 {
	if r.err != nil {
		return nil
	}
	present, n, err := ord.Bool.Unmarshal(r.buf[r.n:])
	r.n += n
	if err != nil {
		r.err = err
		return nil
	}
	if !present {
		return nil
	}
	v, n, err := raw.Float64.Unmarshal(r.buf[r.n:])
	r.n += n
	r.err = err
	return &v
}

func (r *reader) vector() []float32 {
	l := r.length()
	if r.err != nil || l == 0 {
		return nil
	}
	v := make([]float32, 0, l)
	for i := 0; i < l && r.err == nil; i++ {
		v = append(v, r.float32())
	}
	return v
}
