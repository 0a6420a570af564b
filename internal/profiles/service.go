package profiles

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"outreach-backend/internal/shared/telemetry"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service implements the entitlement gate and profile administration.
type Service struct {
	Repo Repo
	// FreeCredits is the balance given to auto-provisioned profiles.
	FreeCredits int
	// AutoProvision creates missing profiles on Me instead of reporting ErrNotFound.
	AutoProvision bool
}

func NewService(repo Repo, freeCredits int, autoProvision bool) *Service {
	return &Service{Repo: repo, FreeCredits: freeCredits, AutoProvision: autoProvision}
}

// Admit loads the caller's profile and rejects free profiles without credits.
func (s *Service) Admit(ctx context.Context, userID string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	p, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	if !p.CanGenerate() {
		return Profile{}, ErrPaymentRequired
	}
	return p, nil
}

// Consume reserves one credit for a generation that is about to call the provider.
func (s *Service) Consume(ctx context.Context, userID string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	return s.Repo.ConsumeCredit(ctx, userID)
}

// Refund returns a credit reserved by Consume.
func (s *Service) Refund(ctx context.Context, userID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if err := s.Repo.RefundCredit(ctx, userID); err != nil {
		telemetry.Error("profiles.refund_failed", map[string]any{"user_id": userID, "error": err})
		return err
	}
	return nil
}

// Me returns the caller's profile, creating a free one when auto-provisioning is on.
func (s *Service) Me(ctx context.Context, userID string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	p, err := s.Repo.Get(ctx, userID)
	if err == nil || !errors.Is(err, ErrNotFound) || !s.AutoProvision {
		return p, err
	}
	p, err = s.Repo.Create(ctx, Profile{
		UserID:           userID,
		CreditsRemaining: s.FreeCredits,
		PlanType:         PlanFree,
	})
	if err != nil {
		return Profile{}, fmt.Errorf("provision profile: %w", err)
	}
	telemetry.Info("profiles.provisioned", map[string]any{"user_id": userID, "credits": p.CreditsRemaining})
	return p, nil
}

// Get returns any user's profile.
func (s *Service) Get(ctx context.Context, userID string) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	return s.Repo.Get(ctx, strings.TrimSpace(userID))
}

// Apply performs an administrative override.
func (s *Service) Apply(ctx context.Context, userID string, change Change) (Profile, error) {
	if err := s.ready(); err != nil {
		return Profile{}, err
	}
	current, err := s.Repo.Get(ctx, userID)
	if err != nil {
		return Profile{}, err
	}
	plan := current.PlanType
	credits := current.CreditsRemaining
	if change.PlanType != nil {
		if !change.PlanType.Valid() {
			return Profile{}, fmt.Errorf("unknown plan %q", *change.PlanType)
		}
		if *change.PlanType != plan {
			credits = creditsForPlan(*change.PlanType)
		}
		plan = *change.PlanType
	}
	if change.CreditsRemaining != nil {
		if *change.CreditsRemaining < 0 {
			return Profile{}, errors.New("credits must not be negative")
		}
		credits = *change.CreditsRemaining
	}
	updated, err := s.Repo.Update(ctx, userID, plan, credits)
	if err != nil {
		return Profile{}, err
	}
	telemetry.Info("profiles.updated", map[string]any{
		"user_id":   userID,
		"plan_type": string(updated.PlanType),
		"credits":   updated.CreditsRemaining,
	})
	return updated, nil
}

// SetPlan switches the user's plan, resetting credits to the plan default.
func (s *Service) SetPlan(ctx context.Context, userID string, plan Plan) (Profile, error) {
	return s.Apply(ctx, userID, Change{PlanType: &plan})
}

// SetCredits overrides the user's credit balance.
func (s *Service) SetCredits(ctx context.Context, userID string, credits int) (Profile, error) {
	return s.Apply(ctx, userID, Change{CreditsRemaining: &credits})
}

// List returns profiles newest first.
func (s *Service) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	return s.Repo.List(ctx, ClampLimit(limit), max(offset, 0))
}

// ClampLimit bounds a page size to the supported range.
func ClampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (s *Service) ready() error {
	if s == nil || s.Repo == nil {
		return errors.New("profiles service not configured")
	}
	return nil
}
