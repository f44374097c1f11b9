package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/programme-matcher/internal/assistant"
	apperrors "github.com/garyellow/programme-matcher/internal/errors"
)

// UserIDHeader keys per-user assistant rate limiting.
const UserIDHeader = "X-User-ID"

func (s *Server) assistantKey(c *gin.Context) string {
	if id := c.GetHeader(UserIDHeader); id != "" {
		return id
	}
	return c.ClientIP()
}

func (s *Server) handleAssistant(c *gin.Context) {
	if !s.assistant.Enabled() {
		s.respondError(c, "assistant", apperrors.ErrAssistantDisabled)
		return
	}

	var req assistantRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "assistant", err)
		return
	}

	key := s.assistantKey(c)
	if s.limiter != nil && !s.limiter.Allow(key) {
		quota := s.limiter.Quota(key)
		c.Header("Retry-After", "3600")
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"error": "assistant quota exhausted, try again later",
			"quota": quota,
		})
		s.metrics.RecordHTTPError("rate_limited", "assistant")
		return
	}

	result, err := s.assistant.Complete(c.Request.Context(), req.Prompt, assistant.Options{
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
		TopP:        req.TopP,
	})
	if err != nil {
		s.respondError(c, "assistant", err)
		return
	}

	resp := gin.H{"result": result}
	if s.limiter != nil {
		resp["quota"] = s.limiter.Quota(key)
	}
	c.JSON(http.StatusOK, resp)
}
