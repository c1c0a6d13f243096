// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package server

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jeranaias/docchat/internal/docs"
)

// chatRequest is the body of POST /chat. Question is a pointer so a missing
// field can be told apart from an empty one.
type chatRequest struct {
	Question *string `json:"question"`
}

// chatResponse is the body of a successful POST /chat.
type chatResponse struct {
	Answer string `json:"answer"`
}

// healthResponse is the body of GET /health.
type healthResponse struct {
	Status     string `json:"status"`
	UptimeSecs int64  `json:"uptime_secs"`
	Chunks     int    `json:"chunks"`
	LLM        string `json:"llm"`
}

func detail(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": msg})
}

func (s *Server) root(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": RootMessage})
}

func (s *Server) health(c *gin.Context) {
	llm := "up"
	if err := s.generator.Ready(c.Request.Context()); err != nil {
		llm = "down"
	}
	c.JSON(http.StatusOK, healthResponse{
		Status:     "ok",
		UptimeSecs: int64(time.Since(s.started).Seconds()),
		Chunks:     s.retriever.Count(),
		LLM:        llm,
	})
}

func (s *Server) chat(c *gin.Context) {
	var req chatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			detail(c, http.StatusRequestEntityTooLarge, BodyTooLarge)
			return
		}
		detail(c, http.StatusUnprocessableEntity, "invalid request body: "+err.Error())
		return
	}
	if req.Question == nil {
		detail(c, http.StatusUnprocessableEntity, "field required: question")
		return
	}

	question := strings.TrimSpace(*req.Question)
	if question == "" {
		detail(c, http.StatusBadRequest, EmptyQuestion)
		return
	}

	ctx := c.Request.Context()
	chunks, err := s.retriever.Search(ctx, question, s.cfg.TopK)
	if err != nil {
		s.logger.Error().Err(err).Str("request_id", c.GetString(requestIDKey)).Msg("docs search failed")
		detail(c, http.StatusInternalServerError, InternalError)
		return
	}
	if len(chunks) == 0 {
		c.JSON(http.StatusOK, chatResponse{Answer: NoResultsAnswer})
		return
	}

	answer := s.generator.Answer(ctx, question, docs.Contents(chunks))
	c.JSON(http.StatusOK, chatResponse{Answer: answer})
}
