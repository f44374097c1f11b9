package app

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/garyellow/programme-matcher/internal/config"
	"github.com/garyellow/programme-matcher/internal/ctxutil"
	apperrors "github.com/garyellow/programme-matcher/internal/errors"
	"github.com/garyellow/programme-matcher/internal/feedback"
	"github.com/garyellow/programme-matcher/internal/storage"
)

// writeContext detaches a feedback write from the request's cancellation,
// keeping its tracing values.
func writeContext(c *gin.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctxutil.PreserveTracing(c.Request.Context()), config.FeedbackWrite)
}

var errFeedbackDisabled = apperrors.NewWrapper("feedback", "storage").
	Wrap(apperrors.ErrDataUnavailable, "Feedback storage is not configured")

func (s *Server) handleRateModule(c *gin.Context) {
	if s.db == nil {
		s.respondError(c, "feedback", errFeedbackDisabled)
		return
	}
	var req rateRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "feedback", err)
		return
	}

	ctx, cancel := writeContext(c)
	defer cancel()
	rating := storage.ModuleRating{
		UserID:      ctxutil.GetUserID(ctx),
		ModuleCode:  req.ModuleCode,
		Institution: req.Institution,
		Rating:      req.Rating,
	}
	if err := s.db.RateModule(ctx, rating); err != nil {
		s.respondError(c, "feedback", apperrors.NewWrapper("feedback", "rate_module").Wrap(err, "Could not save rating"))
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetRatings(c *gin.Context) {
	if s.db == nil {
		s.respondError(c, "feedback", errFeedbackDisabled)
		return
	}
	ratings, err := s.db.GetRatings(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()))
	if err != nil {
		s.respondError(c, "feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ratings": ratings})
}

func (s *Server) handleSaveSelections(c *gin.Context) {
	if s.db == nil {
		s.respondError(c, "feedback", errFeedbackDisabled)
		return
	}
	var req selectionsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "feedback", err)
		return
	}

	selections := make([]storage.ModuleSelection, len(req.Selections))
	for i, in := range req.Selections {
		selections[i] = storage.ModuleSelection{
			ModuleCode:  in.ModuleCode,
			Institution: in.Institution,
			Title:       in.Title,
			Reason:      in.Reason,
		}
	}
	s.saveSelections(c, selections)
}

func (s *Server) saveSelections(c *gin.Context, selections []storage.ModuleSelection) {
	ctx, cancel := writeContext(c)
	defer cancel()
	userID := ctxutil.GetUserID(ctx)
	if err := s.db.SaveSelections(ctx, userID, selections); err != nil {
		s.respondError(c, "feedback", apperrors.NewWrapper("feedback", "save_selections").Wrap(err, "Could not save selections"))
		return
	}
	saved, err := s.db.GetSelections(ctx, userID)
	if err != nil {
		s.respondError(c, "feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selections": saved})
}

func (s *Server) handleGetSelections(c *gin.Context) {
	if s.db == nil {
		s.respondError(c, "feedback", errFeedbackDisabled)
		return
	}
	selections, err := s.db.GetSelections(c.Request.Context(), ctxutil.GetUserID(c.Request.Context()))
	if err != nil {
		s.respondError(c, "feedback", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"selections": selections})
}

// handleFinalSelections derives the final list from the user's stored
// ratings of the recommended modules and saves it.
func (s *Server) handleFinalSelections(c *gin.Context) {
	if s.db == nil {
		s.respondError(c, "feedback", errFeedbackDisabled)
		return
	}
	var req finalSelectionsRequest
	if err := bindJSON(c, &req); err != nil {
		s.respondError(c, "feedback", err)
		return
	}

	ctx := c.Request.Context()
	ratings, err := s.db.GetRatings(ctx, ctxutil.GetUserID(ctx))
	if err != nil {
		s.respondError(c, "feedback", err)
		return
	}
	byCode := make(map[string]int, len(ratings))
	for _, r := range ratings {
		byCode[r.ModuleCode] = r.Rating
	}

	picked, err := feedback.FinalSelections(req.Modules, byCode)
	if err != nil {
		s.respondError(c, "feedback", err)
		return
	}

	selections := make([]storage.ModuleSelection, len(picked))
	for i, p := range picked {
		selections[i] = storage.ModuleSelection{
			ModuleID:    p.Module.ID,
			ModuleCode:  p.Module.Code,
			Institution: string(p.Module.Institution),
			Title:       p.Module.Title,
			Reason:      p.Reason,
		}
	}
	s.saveSelections(c, selections)
}
