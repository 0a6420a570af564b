package payments

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"outreach-backend/internal/profiles"
	"outreach-backend/internal/shared/storage/object"
	"outreach-backend/internal/shared/telemetry"
)

const (
	// MaxScreenshotBytes bounds uploaded screenshots.
	MaxScreenshotBytes = 5 << 20
	sniffLen           = 512
	keyNamespace       = "payment-screenshots"
)

var screenshotExt = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
	"image/webp": ".webp",
}

// PlanSetter upgrades a profile once a payment is approved.
type PlanSetter interface {
	SetPlan(ctx context.Context, userID string, plan profiles.Plan) (profiles.Profile, error)
}

// Service contains business logic for payment screenshots and their review.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Profiles PlanSetter
}

func NewService(repo Repo, store object.ObjectStore, p PlanSetter) *Service {
	return &Service{Repo: repo, Store: store, Profiles: p}
}

// Submit stores a screenshot and records a pending payment for userID.
func (s *Service) Submit(ctx context.Context, userID string, r io.Reader) (Payment, error) {
	if s.Repo == nil || s.Store == nil {
		return Payment{}, errors.New("missing dependencies")
	}
	if userID == "" {
		return Payment{}, ErrInvalidInput
	}

	data, err := io.ReadAll(io.LimitReader(r, MaxScreenshotBytes+1))
	if err != nil {
		return Payment{}, fmt.Errorf("read screenshot: %w", err)
	}
	if len(data) == 0 {
		return Payment{}, ErrInvalidInput
	}
	if len(data) > MaxScreenshotBytes {
		return Payment{}, ErrTooLarge
	}
	contentType := http.DetectContentType(data[:min(len(data), sniffLen)])
	ext, ok := screenshotExt[contentType]
	if !ok {
		return Payment{}, ErrUnsupportedType
	}

	key, err := object.NewKey(keyNamespace, userID, "screenshot"+ext)
	if err != nil {
		return Payment{}, err
	}
	if _, err := s.Store.Put(ctx, key, contentType, bytes.NewReader(data)); err != nil {
		return Payment{}, fmt.Errorf("store screenshot: %w", err)
	}

	p := Payment{
		ID:            uuid.NewString(),
		UserID:        userID,
		Status:        StatusPending,
		ScreenshotKey: key,
		ContentType:   contentType,
		CreatedAt:     time.Now().UTC(),
	}
	if err := s.Repo.Create(ctx, p); err != nil {
		return Payment{}, err
	}
	telemetry.Info("payments.submitted", map[string]any{"payment_id": p.ID, "user_id": userID, "size_bytes": len(data)})
	return p, nil
}

// Mine returns userID's payments newest first.
func (s *Service) Mine(ctx context.Context, userID string) ([]Payment, error) {
	return s.Repo.ListByUser(ctx, userID)
}

// List returns payments filtered by status for review.
func (s *Service) List(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	if status != "" && !status.Valid() {
		return nil, ErrInvalidInput
	}
	return s.Repo.List(ctx, status, profiles.ClampLimit(limit), max(offset, 0))
}

// Approve upgrades the owner of a pending payment to pro, then marks it approved.
// The payment stays pending when the upgrade fails so the review can be retried.
func (s *Service) Approve(ctx context.Context, id, reviewer string) (Payment, error) {
	pending, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Payment{}, err
	}
	if pending.Status != StatusPending {
		return Payment{}, ErrNotPending
	}
	if s.Profiles != nil {
		if _, err := s.Profiles.SetPlan(ctx, pending.UserID, profiles.PlanPro); err != nil {
			telemetry.Error("payments.upgrade_failed", map[string]any{"payment_id": id, "user_id": pending.UserID, "error": err})
			return Payment{}, fmt.Errorf("upgrade profile: %w", err)
		}
	}
	p, err := s.Repo.Review(ctx, id, StatusApproved, reviewer)
	if err != nil {
		return Payment{}, err
	}
	telemetry.Info("payments.approved", map[string]any{"payment_id": id, "user_id": p.UserID, "reviewed_by": reviewer})
	return p, nil
}

// Reject marks a pending payment rejected.
func (s *Service) Reject(ctx context.Context, id, reviewer string) (Payment, error) {
	p, err := s.Repo.Review(ctx, id, StatusRejected, reviewer)
	if err != nil {
		return Payment{}, err
	}
	telemetry.Info("payments.rejected", map[string]any{"payment_id": id, "user_id": p.UserID, "reviewed_by": reviewer})
	return p, nil
}

// Screenshot opens the stored screenshot of a payment.
func (s *Service) Screenshot(ctx context.Context, id string) (Payment, io.ReadCloser, error) {
	p, err := s.Repo.GetByID(ctx, id)
	if err != nil {
		return Payment{}, nil, err
	}
	rc, err := s.Store.Open(ctx, p.ScreenshotKey)
	if err != nil {
		return Payment{}, nil, err
	}
	return p, rc, nil
}
