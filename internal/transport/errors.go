// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"fmt"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrMalformedResponse is wrapped when a 2xx response body cannot be decoded.
var ErrMalformedResponse = errors.New("malformed response from server")

// HTTPError is returned when the backend answers with a non-2xx status.
type HTTPError struct {
	StatusCode int
	StatusText string
	Detail     string
}

func (e *HTTPError) Error() string {
	if e.Detail != "" {
		return e.Detail
	}
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.StatusText)
}

// NetworkError is returned when the request never produced a response.
type NetworkError struct {
	Cause error
}

func (e *NetworkError) Error() string {
	if e.Cause == nil {
		return "network error"
	}
	return e.Cause.Error()
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// IsNetworkError reports whether err came from a request that never completed.
func IsNetworkError(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne)
}
