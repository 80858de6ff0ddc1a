// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Riiina Works

package adapter

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/sethvargo/go-retry"
)

// mapHTTPError converts a non-2xx response into a sentinel error. 429 and
// 5xx are wrapped as retryable so the backoff loop re-issues them; the rest
// fail immediately.
func mapHTTPError(resp *resty.Response) error {
	code := resp.StatusCode()
	if code >= http.StatusOK && code < http.StatusMultipleChoices {
		return nil
	}

	body := strings.TrimSpace(string(resp.Body()))
	if body == "" {
		body = http.StatusText(code)
	}

	switch {
	case code == http.StatusUnauthorized || code == http.StatusForbidden:
		return fmt.Errorf("%w: %s", ErrAuthExpired, body)
	case code == http.StatusNotFound:
		return fmt.Errorf("%w: %s", ErrItemNotFound, body)
	case code == http.StatusRequestEntityTooLarge:
		return fmt.Errorf("%w: %s", ErrPayloadTooLarge, body)
	case code == http.StatusTooManyRequests:
		return retry.RetryableError(fmt.Errorf("%w: %s", ErrRateLimited, body))
	case code >= http.StatusInternalServerError:
		return retry.RetryableError(fmt.Errorf("%w: http %d: %s", ErrRemoteUnavailable, code, body))
	default:
		return fmt.Errorf("http %d: %s", code, body)
	}
}
