package app

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/feedback"
	"github.com/garyellow/programme-matcher/internal/sentry"
)

// statusFor maps a domain error onto an HTTP status and a metrics label.
func statusFor(err error) (int, string) {
	switch {
	case apperrors.IsInvalidInput(err):
		return http.StatusBadRequest, "validation"
	case errors.Is(err, feedback.ErrNotEnoughRatings):
		return http.StatusUnprocessableEntity, "not_enough_ratings"
	case apperrors.IsNotFound(err):
		return http.StatusNotFound, "not_found"
	case apperrors.IsRateLimitExceeded(err):
		return http.StatusTooManyRequests, "rate_limited"
	case errors.Is(err, apperrors.ErrAssistantDisabled):
		return http.StatusServiceUnavailable, "disabled"
	case apperrors.IsTimeout(err):
		return http.StatusGatewayTimeout, "timeout"
	case apperrors.IsDataUnavailable(err):
		return http.StatusServiceUnavailable, "data_unavailable"
	}
	return http.StatusInternalServerError, "internal"
}

// respondError writes {"error": msg}. 5xx responses hide internal detail
// unless a user message was attached with errors.Wrap.
func (s *Server) respondError(c *gin.Context, module string, err error) {
	status, label := statusFor(err)
	s.metrics.RecordHTTPError(label, module)

	msg := apperrors.GetUserMessage(err)
	var wrapped *apperrors.WrappedError
	if status >= http.StatusInternalServerError && !errors.As(err, &wrapped) {
		msg = http.StatusText(status)
	}

	log := s.logger.WithError(err).WithField("module", module).WithField("http_status", status)
	if status >= http.StatusInternalServerError {
		log.Error("Request failed")
		sentry.CaptureServerError(c, status, err)
	} else {
		log.Debug("Request rejected")
	}

	c.AbortWithStatusJSON(status, gin.H{"error": msg})
}
