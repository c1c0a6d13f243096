// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package offline

import (
	"errors"
	"net"
	"net/url"
	"strings"
)

// =============================================================================
// ERRORS
// =============================================================================

var (
	// ErrInvalidURLScheme is returned when a URL scheme is not http or https.
	ErrInvalidURLScheme = errors.New("only http and https schemes are allowed")

	// ErrMissingHost is returned for URLs without a host.
	ErrMissingHost = errors.New("URL has no host")
)

// =============================================================================
// URL VALIDATION
// =============================================================================

// IsLocalhost checks if a host string refers to localhost.
// Accepts "localhost", the whole 127.0.0.0/8 range and every IPv6 loopback
// spelling, with or without a port.
func IsLocalhost(host string) bool {
	if h, _, err := net.SplitHostPort(host); err == nil {
		host = h
	}

	host = strings.Trim(host, "[]")
	host = strings.ToLower(host)

	if host == "localhost" {
		return true
	}
	if ip := net.ParseIP(host); ip != nil {
		return ip.IsLoopback()
	}
	return false
}

// ValidateBaseURL checks that rawURL is an absolute http(s) URL with a host.
func ValidateBaseURL(rawURL string) error {
	parsed, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return err
	}

	scheme := strings.ToLower(parsed.Scheme)
	if scheme != "http" && scheme != "https" {
		return ErrInvalidURLScheme
	}
	if parsed.Hostname() == "" {
		return ErrMissingHost
	}
	return nil
}

// ProbeAddress returns the host:port to dial for a base URL, filling in the
// scheme's default port.
func ProbeAddress(rawURL string) (string, error) {
	if err := ValidateBaseURL(rawURL); err != nil {
		return "", err
	}
	parsed, _ := url.Parse(strings.TrimSpace(rawURL))

	port := parsed.Port()
	if port == "" {
		port = "80"
		if strings.EqualFold(parsed.Scheme, "https") {
			port = "443"
		}
	}
	return net.JoinHostPort(parsed.Hostname(), port), nil
}
