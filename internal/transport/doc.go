// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package transport is the HTTP client for the docs chat backend.
//
// A single call maps to a single POST /chat request: there is no retry,
// no client-side timeout and no caching. Failures are classified so the
// caller can turn them into chat messages:
//
//   - *HTTPError for a non-2xx status (message is the backend's "detail"
//     when present, otherwise "HTTP <code>: <status text>")
//   - *NetworkError when the request could not complete at all
//   - ErrMalformedResponse (wrapped) for a 2xx body that is not {"answer": ...}
//
// Example:
//
//	client := transport.NewClient("http://localhost:5000")
//	answer, err := client.Send(ctx, "How do I add a webhook node?")
package transport
