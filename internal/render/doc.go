// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package render turns chat messages into display blocks.
//
// Two renderers share one ViewModel:
//   - Renderer draws terminal blocks (glamour markdown for assistant text,
//     plain wrapped text otherwise)
//   - HTMLRenderer produces the message markup used by transcript export
//
// Message content is untrusted. Terminal escape sequences and control
// characters are removed by Sanitize before either renderer sees the text,
// and every HTML fragment produced from markdown passes a bluemonday policy.
package render
