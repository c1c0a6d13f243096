// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package internal provides end-to-end tests for the complete docchat system:
// docs index, completions client, HTTP API, transport client and the chat
// controller wired together over real sockets.
package internal

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/docchat/internal/config"
	"github.com/jeranaias/docchat/internal/docs"
	"github.com/jeranaias/docchat/internal/llm"
	"github.com/jeranaias/docchat/internal/model"
	"github.com/jeranaias/docchat/internal/server"
	"github.com/jeranaias/docchat/internal/session"
	"github.com/jeranaias/docchat/internal/transport"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// =============================================================================
// TEST UTILITIES
// =============================================================================

const docsText = `Webhook node
The Webhook node starts a workflow when an HTTP request arrives at its URL.
Use the production URL once the workflow is active.

Cron node
The Cron node triggers a workflow on a schedule, for example every morning.
`

// completions is an OpenAI-compatible stub that records prompts.
type completions struct {
	mu      sync.Mutex
	down    bool
	prompts []string
}

func (c *completions) start(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/models", func(w http.ResponseWriter, r *http.Request) {
		c.mu.Lock()
		down := c.down
		c.mu.Unlock()
		if down {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		json.NewEncoder(w).Encode(llm.ModelsResponse{Data: []llm.ModelInfo{{ID: "qwen2.5-7b-instruct"}}})
	})
	mux.HandleFunc("/v1/completions", func(w http.ResponseWriter, r *http.Request) {
		var req llm.CompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		c.mu.Lock()
		c.prompts = append(c.prompts, req.Prompt)
		c.mu.Unlock()
		json.NewEncoder(w).Encode(llm.CompletionResponse{
			Choices: []llm.CompletionChoice{{Text: " Add a **Webhook** node and activate the workflow."}},
		})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func (c *completions) lastPrompt() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.prompts) == 0 {
		return ""
	}
	return c.prompts[len(c.prompts)-1]
}

// stack is a running backend plus a client pointed at it.
type stack struct {
	llm    *completions
	client *transport.Client
	stop   func()
}

func startStack(t *testing.T) *stack {
	t.Helper()
	dir := t.TempDir()

	source := filepath.Join(dir, "docs.txt")
	require.NoError(t, os.WriteFile(source, []byte(docsText), 0600))

	idx, err := docs.Open(filepath.Join(dir, "docs.db"), docs.WithChunking(120, 20))
	require.NoError(t, err)
	t.Cleanup(func() { idx.Close() })
	n, err := idx.Rebuild(context.Background(), source)
	require.NoError(t, err)
	require.Greater(t, n, 1)

	fake := &completions{}
	llmSrv := fake.start(t)
	llmCfg := config.Default().LLM
	llmCfg.URL = llmSrv.URL + "/v1/completions"
	generator := llm.NewGenerator(llm.NewClient(llmCfg))

	srvCfg := config.Default().Server
	srvCfg.RateLimit = 0
	api := server.New(srvCfg, idx, generator)

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- api.Serve(ctx, ln) }()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			cancel()
			select {
			case err := <-done:
				assert.NoError(t, err)
			case <-time.After(5 * time.Second):
				t.Error("server did not shut down")
			}
		})
	}
	t.Cleanup(stop)

	return &stack{
		llm:    fake,
		client: transport.NewClient("http://" + ln.Addr().String()),
		stop:   stop,
	}
}

// =============================================================================
// END-TO-END
// =============================================================================

func TestEndToEnd_AnswerFromDocs(t *testing.T) {
	s := startStack(t)
	ctrl := session.NewController()

	require.NoError(t, ctrl.Submit(context.Background(), s.client, "How do I receive a webhook?"))

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, model.RoleUser, msgs[0].Role)
	assert.Equal(t, model.RoleAssistant, msgs[1].Role)
	assert.False(t, msgs[1].Error)
	assert.Equal(t, "Add a **Webhook** node and activate the workflow.", msgs[1].Content)

	prompt := s.llm.lastPrompt()
	assert.Contains(t, prompt, "Webhook node")
	assert.Contains(t, prompt, "How do I receive a webhook?")
}

func TestEndToEnd_NoMatchingDocs(t *testing.T) {
	s := startStack(t)
	ctrl := session.NewController()

	require.NoError(t, ctrl.Submit(context.Background(), s.client, "zzyzx quux"))

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.Equal(t, server.NoResultsAnswer, msgs[1].Content)
	assert.Empty(t, s.llm.lastPrompt())
}

func TestEndToEnd_CompletionsServerDown(t *testing.T) {
	s := startStack(t)
	s.llm.mu.Lock()
	s.llm.down = true
	s.llm.mu.Unlock()

	ctrl := session.NewController()
	require.NoError(t, ctrl.Submit(context.Background(), s.client, "cron schedule"))

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.False(t, msgs[1].Error)
	assert.Equal(t, llm.NotRunningAnswer, msgs[1].Content)
}

func TestEndToEnd_BlankQuestionRejectedByServer(t *testing.T) {
	s := startStack(t)

	_, err := s.client.Send(context.Background(), "   ")
	var httpErr *transport.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusBadRequest, httpErr.StatusCode)
	assert.Equal(t, server.EmptyQuestion, httpErr.Detail)
}

func TestEndToEnd_BackendGone(t *testing.T) {
	s := startStack(t)
	s.stop()

	ctrl := session.NewController()
	require.NoError(t, ctrl.Submit(context.Background(), s.client, "cron"))

	msgs := ctrl.Messages()
	require.Len(t, msgs, 2)
	assert.True(t, msgs[1].Error)
	assert.True(t, strings.HasPrefix(msgs[1].Content, "Sorry, I encountered an error: "))
	assert.Equal(t, session.StateIdle, ctrl.State())
}
