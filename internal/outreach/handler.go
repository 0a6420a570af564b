package outreach

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/llm"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

const (
	msgInvalidRequest   = "Invalid request data"
	msgRateLimited      = "AI rate limit exceeded. Please try again in a moment."
	msgUpstreamCredits  = "AI credits exhausted."
	msgGenerationFailed = "AI generation failed"
)

// Handler exposes the generation endpoint.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches POST /generate-outreach to rg.
func (h *Handler) RegisterRoutes(rg gin.IRoutes) {
	rg.POST("/generate-outreach", h.generate)
}

func (h *Handler) generate(c *gin.Context) {
	ctx := c.Request.Context()
	userID := middleware.UserIDFromContext(c)

	if err := h.Svc.Admit(ctx, userID); err != nil {
		writeError(c, err)
		return
	}

	var payload Payload
	if err := json.NewDecoder(c.Request.Body).Decode(&payload); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", msgInvalidRequest, nil)
		return
	}
	req, err := Validate(payload)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			respond.Error(c, http.StatusBadRequest, "validation_error", verr.Error(), nil)
			return
		}
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
		return
	}

	out, err := h.Svc.Generate(ctx, userID, req)
	if err != nil {
		writeError(c, err)
		return
	}
	if out.RecordID != "" {
		c.Set("generationId", out.RecordID)
	}
	c.Set("fallback", out.Fallback)
	respond.OK(c, out.Result)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, profiles.ErrPaymentRequired):
		respond.Error(c, http.StatusPaymentRequired, "payment_required", profiles.MsgPaymentRequired, nil)
	case errors.Is(err, profiles.ErrNotFound):
		respond.Error(c, http.StatusInternalServerError, "profile_not_found", profiles.MsgNotFound, nil)
	case errors.Is(err, llm.ErrRateLimited):
		respond.Error(c, http.StatusTooManyRequests, "ai_rate_limited", msgRateLimited, nil)
	case errors.Is(err, llm.ErrCreditsExhausted):
		respond.Error(c, http.StatusPaymentRequired, "ai_credits_exhausted", msgUpstreamCredits, nil)
	case errors.Is(err, ErrGenerationFailed):
		respond.Error(c, http.StatusInternalServerError, "generation_failed", msgGenerationFailed, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
	}
}
