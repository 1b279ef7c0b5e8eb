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
	"math"
	"time"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"

	"github.com/poiesic/coldmail/core"
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
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalDraft serializes a Draft to bytes.
func MarshalDraft(draft *core.Draft) []byte {
	buf := make([]byte, draftSize(draft))
	draftMarshal(draft, buf)
	return buf
}

// UnmarshalDraft deserializes a Draft from bytes.
func UnmarshalDraft(data []byte) (*core.Draft, error) {
	draft, _, err := draftUnmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: draft: %w", ErrSerializationFailed, err)
	}
	return draft, nil
}

// MarshalVector serializes an embedding vector to bytes.
func MarshalVector(vector []float32) []byte {
	size := varint.Uint64.Size(uint64(len(vector)))
	for _, f := range vector {
		size += varint.Uint32.Size(math.Float32bits(f))
	}
	buf := make([]byte, size)
	n := varint.Uint64.Marshal(uint64(len(vector)), buf)
	for _, f := range vector {
		n += varint.Uint32.Marshal(math.Float32bits(f), buf[n:])
	}
	return buf
}

// UnmarshalVector deserializes an embedding vector from bytes.
func UnmarshalVector(data []byte) ([]float32, error) {
	length, n, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: vector length: %w", ErrSerializationFailed, err)
	}
	// Every element takes at least one byte.
	if length > uint64(len(data)-n) {
		return nil, fmt.Errorf("%w: vector of %d elements in %d bytes", ErrTruncatedData, length, len(data)-n)
	}

	vector := make([]float32, length)
	for i := range vector {
		bits, m, err := varint.Uint32.Unmarshal(data[n:])
		if err != nil {
			return nil, fmt.Errorf("%w: vector element %d: %w", ErrSerializationFailed, i, err)
		}
		vector[i] = math.Float32frombits(bits)
		n += m
	}
	return vector, nil
}

func draftSize(d *core.Draft) int {
	return varint.Uint64.Size(uint64(d.Id)) +
		varint.Int64.Size(int64(d.Kind)) +
		ord.String.Size(d.Company) +
		ord.String.Size(d.Subject) +
		ord.String.Size(d.Body) +
		ord.String.Size(d.Tone) +
		ord.String.Size(d.Focus) +
		varint.Int64.Size(int64(d.TemplateId)) +
		varint.Uint64.Size(math.Float64bits(d.TemplateScore)) +
		varint.Int64.Size(d.CreatedAt.UnixNano())
}

func draftMarshal(d *core.Draft, bs []byte) int {
	n := varint.Uint64.Marshal(uint64(d.Id), bs)
	n += varint.Int64.Marshal(int64(d.Kind), bs[n:])
	n += ord.String.Marshal(d.Company, bs[n:])
	n += ord.String.Marshal(d.Subject, bs[n:])
	n += ord.String.Marshal(d.Body, bs[n:])
	n += ord.String.Marshal(d.Tone, bs[n:])
	n += ord.String.Marshal(d.Focus, bs[n:])
	n += varint.Int64.Marshal(int64(d.TemplateId), bs[n:])
	n += varint.Uint64.Marshal(math.Float64bits(d.TemplateScore), bs[n:])
	n += varint.Int64.Marshal(d.CreatedAt.UnixNano(), bs[n:])
	return n
}

func draftUnmarshal(bs []byte) (*core.Draft, int, error) {
	var (
		d   core.Draft
		n   int
		m   int
		err error
	)

	id, m, err := varint.Uint64.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	n += m
	d.Id = core.ID(id)

	kind, m, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n, err
	}
	n += m
	d.Kind = core.DraftKind(kind)

	for _, field := range []*string{&d.Company, &d.Subject, &d.Body, &d.Tone, &d.Focus} {
		*field, m, err = ord.String.Unmarshal(bs[n:])
		if err != nil {
			return nil, n, err
		}
		n += m
	}

	templateID, m, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n, err
	}
	n += m
	d.TemplateId = int(templateID)

	score, m, err := varint.Uint64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n, err
	}
	n += m
	d.TemplateScore = math.Float64frombits(score)

	created, m, err := varint.Int64.Unmarshal(bs[n:])
	if err != nil {
		return nil, n, err
	}
	n += m
	d.CreatedAt = time.Unix(0, created).UTC()

	return &d, n, nil
}
