package outreach

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"outreach-backend/internal/generations"
	"outreach-backend/internal/llm"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/shared/metrics"
	"outreach-backend/internal/shared/telemetry"
)

// Entitlements gates generations on the caller's plan and credits.
type Entitlements interface {
	Admit(ctx context.Context, userID string) (profiles.Profile, error)
	Consume(ctx context.Context, userID string) (profiles.Profile, error)
	Refund(ctx context.Context, userID string) error
}

// Recorder stores generation history.
type Recorder interface {
	Save(ctx context.Context, rec generations.Record) (generations.Record, error)
}

// Service orchestrates one outreach generation.
type Service struct {
	Profiles Entitlements
	LLM      llm.Client
	History  Recorder
}

func NewService(p Entitlements, client llm.Client, history Recorder) *Service {
	return &Service{Profiles: p, LLM: client, History: history}
}

// Admit reports whether userID may start a generation.
func (s *Service) Admit(ctx context.Context, userID string) error {
	if err := s.ready(); err != nil {
		return err
	}
	if _, err := s.Profiles.Admit(ctx, userID); err != nil {
		if errors.Is(err, profiles.ErrPaymentRequired) {
			metrics.IncGenerationRejected()
		}
		return err
	}
	return nil
}

// Generate reserves a credit, calls the provider and records the outcome.
// The credit is refunded if the provider call fails. Once the credit is
// reserved the generation runs detached from ctx cancellation.
func (s *Service) Generate(ctx context.Context, userID string, req Request) (Outcome, error) {
	if err := s.ready(); err != nil {
		return Outcome{}, err
	}
	metrics.IncGenerationStarted()

	if _, err := s.Profiles.Consume(ctx, userID); err != nil {
		if errors.Is(err, profiles.ErrPaymentRequired) {
			metrics.IncGenerationRejected()
		}
		return Outcome{}, err
	}

	ctx = context.WithoutCancel(ctx)
	start := time.Now()
	raw, err := s.LLM.Complete(ctx, BuildPrompt(req))
	metrics.ObserveGenerationDurationMs(float64(time.Since(start).Milliseconds()))
	if err != nil {
		metrics.IncGenerationFailed()
		fields := map[string]any{"user_id": userID, "error": err}
		if refundErr := s.Profiles.Refund(ctx, userID); refundErr != nil {
			fields["refund_failed"] = refundErr.Error()
		}
		var statusErr *llm.StatusError
		if errors.As(err, &statusErr) {
			fields["provider_status"] = statusErr.Status
			fields["provider_body"] = statusErr.Body
		}
		telemetry.Error("outreach.provider_failed", fields)
		return Outcome{}, fmt.Errorf("%w: %w", ErrGenerationFailed, err)
	}

	out := Interpret(raw)
	if out.Fallback {
		metrics.IncGenerationFallback()
		telemetry.Warn("outreach.unparseable_output", map[string]any{"user_id": userID, "content_length": len(raw)})
	}

	out.RecordID = s.record(ctx, userID, req, out)
	metrics.IncGenerationCompleted()
	return out, nil
}

func (s *Service) record(ctx context.Context, userID string, req Request, out Outcome) string {
	if s.History == nil {
		return ""
	}
	body, err := json.Marshal(out.Result)
	if err != nil {
		telemetry.Error("outreach.record_failed", map[string]any{"user_id": userID, "error": err})
		return ""
	}
	rec, err := s.History.Save(ctx, generations.Record{
		UserID:         userID,
		CompanyName:    req.CompanyName,
		JobDescription: req.JobDescription,
		ResumeText:     req.ResumeText,
		Tone:           string(req.Tone),
		EmailLength:    string(req.EmailLength),
		Result:         body,
		Fallback:       out.Fallback,
	})
	if err != nil {
		telemetry.Error("outreach.record_failed", map[string]any{"user_id": userID, "error": err})
		return ""
	}
	return rec.ID
}

func (s *Service) ready() error {
	if s == nil || s.Profiles == nil || s.LLM == nil {
		return errors.New("outreach service not configured")
	}
	return nil
}
