// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package chunk

import "fmt"

// IntegrityReason identifies which reassembly check failed.
type IntegrityReason string

const (
	ReasonEmptySet         IntegrityReason = "empty chunk set"
	ReasonCountMismatch    IntegrityReason = "chunk count mismatch"
	ReasonMissingChunk     IntegrityReason = "missing chunk"
	ReasonDuplicateChunk   IntegrityReason = "duplicate chunk"
	ReasonIndexOutOfRange  IntegrityReason = "chunk index out of range"
	ReasonChecksumMismatch IntegrityReason = "payload checksum mismatch"
)

// IntegrityError is returned by [Join] when a chunk set fails verification.
// It is fatal to the sync cycle that observed it: the caller must not apply
// any part of the payload.
type IntegrityError struct {
	Reason IntegrityReason
	// Index is the offending chunk index where applicable (0 otherwise).
	Index int
}

func (e *IntegrityError) Error() string {
	if e.Index > 0 {
		return fmt.Sprintf("chunk integrity: %s (index %d)", e.Reason, e.Index)
	}
	return fmt.Sprintf("chunk integrity: %s", e.Reason)
}
