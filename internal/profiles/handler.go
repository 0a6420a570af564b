package profiles

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
	"outreach-backend/internal/shared/validate"
)

// Handler exposes profile endpoints.
type Handler struct {
	Svc       *Service
	Validator *validate.Validator
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc, Validator: validate.New()}
}

// RegisterRoutes attaches caller-facing routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/me", h.me)
}

// RegisterAdminRoutes attaches admin routes. The group must already require the admin role.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/profiles", h.list)
	rg.GET("/profiles/:userId", h.get)
	rg.PATCH("/profiles/:userId", h.patch)
}

type meResponse struct {
	UserID           string `json:"user_id"`
	Email            string `json:"email,omitempty"`
	PlanType         Plan   `json:"plan_type"`
	CreditsRemaining int    `json:"credits_remaining"`
}

func (h *Handler) me(c *gin.Context) {
	userID := middleware.UserIDFromContext(c)
	p, err := h.Svc.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, meResponse{
		UserID:           p.UserID,
		Email:            middleware.UserEmailFromContext(c),
		PlanType:         p.PlanType,
		CreditsRemaining: p.CreditsRemaining,
	})
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	items, err := h.Svc.List(c.Request.Context(), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"profiles": items})
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.Svc.Get(c.Request.Context(), c.Param("userId"))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) patch(c *gin.Context) {
	var change Change
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&change); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid request data", nil)
		return
	}
	if change.PlanType == nil && change.CreditsRemaining == nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "plan_type or credits_remaining is required", nil)
		return
	}
	msgs, err := h.Validator.Messages(change, nil)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
		return
	}
	if len(msgs) > 0 {
		respond.Error(c, http.StatusBadRequest, "validation_error", strings.Join(msgs, ", "), nil)
		return
	}

	p, err := h.Svc.Apply(c.Request.Context(), c.Param("userId"), change)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", MsgNotFound, nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
	}
}
