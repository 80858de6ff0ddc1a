// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

// Package chunk implements the codec that projects a serialized settings
// payload onto the remote note store's bounded item bodies.
//
// The note service enforces a hard character ceiling on item bodies and
// silently truncates anything longer, corrupting the payload with no error
// from the store side. Splitting the payload into chunks at or below the
// ceiling is the only safe way to persist larger documents, and reassembly
// must verify integrity because individual chunk items can be deleted or
// left stale by a racing writer on another device.
package chunk

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"

	"github.com/riiiiiiiiiina0/nenya-sync/models"
)

var ErrInvalidChunkSize = errors.New("chunk size must be positive")

// Split slices serialized into consecutive chunks of exactly maxChunkChars
// characters each, except the final chunk which may be shorter. A payload
// that already fits yields a single chunk with Total=1. The empty string
// also yields a single empty chunk so that a stored document is always
// represented by at least one item.
//
// Splitting is done on runes, never mid-rune: each chunk must survive a JSON
// transport on its own, which malformed UTF-8 would not.
func Split(serialized string, maxChunkChars int) (models.ChunkSet, error) {
	if maxChunkChars <= 0 {
		return nil, ErrInvalidChunkSize
	}

	sum := sha256.Sum256([]byte(serialized))
	checksum := hex.EncodeToString(sum[:])

	runes := []rune(serialized)
	total := (len(runes) + maxChunkChars - 1) / maxChunkChars
	if total == 0 {
		total = 1
	}

	set := make(models.ChunkSet, 0, total)
	for i := 0; i < total; i++ {
		start := i * maxChunkChars
		end := start + maxChunkChars
		if end > len(runes) {
			end = len(runes)
		}
		set = append(set, models.Chunk{
			Index:    i + 1,
			Total:    total,
			Payload:  string(runes[start:end]),
			Checksum: checksum,
		})
	}

	return set, nil
}

// Join reassembles the original serialized payload from a chunk set.
//
// Before concatenating it verifies that every chunk declares the same Total,
// that the observed indexes are exactly 1..Total with no duplicates or gaps,
// and that the reassembled payload matches the checksum the chunks carry.
// On any violation Join returns an *IntegrityError naming the failed check
// and no payload — partial reassembly is never returned.
func Join(set models.ChunkSet) (string, error) {
	if len(set) == 0 {
		return "", &IntegrityError{Reason: ReasonEmptySet}
	}

	total := set[0].Total
	if total < 1 {
		return "", &IntegrityError{Reason: ReasonCountMismatch, Index: set[0].Index}
	}

	byIndex := make(map[int]models.Chunk, len(set))
	for _, c := range set {
		if c.Total != total {
			return "", &IntegrityError{Reason: ReasonCountMismatch, Index: c.Index}
		}
		if c.Index < 1 || c.Index > total {
			return "", &IntegrityError{Reason: ReasonIndexOutOfRange, Index: c.Index}
		}
		if _, dup := byIndex[c.Index]; dup {
			return "", &IntegrityError{Reason: ReasonDuplicateChunk, Index: c.Index}
		}
		byIndex[c.Index] = c
	}

	if len(byIndex) != total {
		for i := 1; i <= total; i++ {
			if _, ok := byIndex[i]; !ok {
				return "", &IntegrityError{Reason: ReasonMissingChunk, Index: i}
			}
		}
	}

	var joined []rune
	for i := 1; i <= total; i++ {
		joined = append(joined, []rune(byIndex[i].Payload)...)
	}
	payload := string(joined)

	if want := set[0].Checksum; want != "" {
		sum := sha256.Sum256([]byte(payload))
		if hex.EncodeToString(sum[:]) != want {
			return "", &IntegrityError{Reason: ReasonChecksumMismatch}
		}
	}

	return payload, nil
}
