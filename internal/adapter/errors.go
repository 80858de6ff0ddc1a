// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package adapter

import "errors"

var (
	// ErrAuthExpired means the bearer token is expired or rejected. The
	// caller must surface a re-authentication prompt, not retry.
	ErrAuthExpired = errors.New("authentication expired")

	// ErrRateLimited means the service answered 429 and retries with
	// backoff were exhausted.
	ErrRateLimited = errors.New("rate limited by remote service")

	// ErrItemNotFound means the addressed item does not exist remotely.
	ErrItemNotFound = errors.New("remote item not found")

	// ErrPayloadTooLarge means an item body exceeds the service's hard
	// character limit and would be silently truncated if sent.
	ErrPayloadTooLarge = errors.New("item body exceeds remote limit")

	// ErrRemoteUnavailable covers 5xx responses after retries.
	ErrRemoteUnavailable = errors.New("remote service unavailable")

	// ErrNetwork covers transport-level failures (DNS, timeout, reset).
	ErrNetwork = errors.New("network error")
)
