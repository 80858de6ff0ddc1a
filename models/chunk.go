// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package models

// Chunk is one bounded-size slice of a serialized settings payload. The
// remote note store truncates item bodies past a hard character ceiling
// without reporting an error, so payloads are always stored as a sequence of
// chunks at or below that ceiling.
type Chunk struct {
	// Index is the 1-based position of this chunk within its set.
	Index int `json:"index"`

	// Total is the number of chunks in the set. Every chunk of a set
	// carries the same Total.
	Total int `json:"total"`

	// Payload is the chunk text. All chunks except the last hold exactly
	// the codec's chunk size in characters; the last may be shorter.
	Payload string `json:"payload"`

	// Checksum is the hex SHA-256 of the complete serialized payload,
	// repeated on every chunk so reassembly can verify integrity even
	// when a racing writer replaced part of the set.
	Checksum string `json:"checksum,omitempty"`
}

// ChunkSet is an ordered collection of chunks representing one serialized
// payload. A valid set has contiguous indexes 1..Total with no duplicates.
type ChunkSet []Chunk
