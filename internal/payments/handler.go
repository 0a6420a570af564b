package payments

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"outreach-backend/internal/shared/server/middleware"
	"outreach-backend/internal/shared/server/respond"
)

const maxMultipartSize = MaxScreenshotBytes + 1<<20

// Handler exposes payment endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments", h.submit)
	rg.GET("/payments", h.mine)
}

// RegisterAdminRoutes attaches review routes. The group must already require the admin role.
func (h *Handler) RegisterAdminRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments", h.list)
	rg.GET("/payments/:id/screenshot", h.screenshot)
	rg.POST("/payments/:id/approve", h.approve)
	rg.POST("/payments/:id/reject", h.reject)
}

func (h *Handler) submit(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxMultipartSize)

	fileHeader, err := c.FormFile("screenshot")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "Screenshot exceeds 5 MB", nil)
			return
		}
		respond.Error(c, http.StatusBadRequest, "validation_error", "screenshot is required", nil)
		return
	}
	if fileHeader.Size > MaxScreenshotBytes {
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "Screenshot exceeds 5 MB", nil)
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "unable to read screenshot", nil)
		return
	}
	defer file.Close()

	p, err := h.Svc.Submit(c.Request.Context(), middleware.UserIDFromContext(c), file)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.JSON(c, http.StatusCreated, p)
}

func (h *Handler) mine(c *gin.Context) {
	items, err := h.Svc.Mine(c.Request.Context(), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"payments": items})
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	items, err := h.Svc.List(c.Request.Context(), Status(c.Query("status")), limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, gin.H{"payments": items})
}

func (h *Handler) approve(c *gin.Context) {
	p, err := h.Svc.Approve(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) reject(c *gin.Context) {
	p, err := h.Svc.Reject(c.Request.Context(), c.Param("id"), middleware.UserIDFromContext(c))
	if err != nil {
		writeError(c, err)
		return
	}
	respond.OK(c, p)
}

func (h *Handler) screenshot(c *gin.Context) {
	p, rc, err := h.Svc.Screenshot(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	defer rc.Close()
	c.Header("Content-Type", p.ContentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, rc)
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "Payment not found", nil)
	case errors.Is(err, ErrNotPending):
		respond.Error(c, http.StatusConflict, "conflict", "Payment has already been reviewed", nil)
	case errors.Is(err, ErrTooLarge):
		respond.Error(c, http.StatusRequestEntityTooLarge, "too_large", "Screenshot exceeds 5 MB", nil)
	case errors.Is(err, ErrUnsupportedType):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Screenshot must be a PNG, JPEG or WebP image", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", "Invalid request data", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Internal server error", nil)
	}
}
