// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// =============================================================================
// SEND TESTS
// =============================================================================

func TestSend_Success(t *testing.T) {
	var got ChatRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"answer":"Hi there"}`))
	}))
	defer srv.Close()

	client := NewClient(srv.URL + "/")
	answer, err := client.Send(context.Background(), "Hello")

	require.NoError(t, err)
	assert.Equal(t, "Hi there", answer.Answer)
	assert.Equal(t, "Hello", got.Question)
}

func TestSend_HTTPErrorWithDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"detail":"rate limited"}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), "q")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusTooManyRequests, httpErr.StatusCode)
	assert.Equal(t, "rate limited", err.Error())
}

func TestSend_HTTPErrorUnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte("<html>oops</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), "q")

	var httpErr *HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Empty(t, httpErr.Detail)
	assert.Equal(t, "HTTP 500: Internal Server Error", err.Error())
}

func TestSend_HTTPErrorNonStringDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"detail":[{"loc":["body","question"]}]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), "q")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "422")
}

func TestSend_MalformedSuccessBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("not json"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), "q")

	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedResponse))
	assert.False(t, IsNetworkError(err))
}

func TestSend_NetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewClient(url).Send(context.Background(), "q")

	require.Error(t, err)
	assert.True(t, IsNetworkError(err))
	assert.NotEmpty(t, err.Error())
}

func TestSend_SingleAttempt(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).Send(context.Background(), "q")

	require.Error(t, err)
	assert.Equal(t, 1, calls)
}

// =============================================================================
// CONFIGURATION TESTS
// =============================================================================

func TestSetBaseURL(t *testing.T) {
	client := NewClient("")
	assert.Equal(t, DefaultBaseURL, client.BaseURL())

	client.SetBaseURL("http://docs.internal:8080///")
	assert.Equal(t, "http://docs.internal:8080", client.BaseURL())
}
