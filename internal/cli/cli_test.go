package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"outreach-backend/internal/payments"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/shared/auth"
	"outreach-backend/internal/shared/config"
	"outreach-backend/internal/shared/storage/object/local"
)

func memoryOpener(t *testing.T) (Opener, *profiles.MemoryRepo, *payments.MemoryRepo) {
	t.Helper()
	profileRepo := profiles.NewMemoryRepo()
	paymentRepo := payments.NewMemoryRepo()
	store := local.New(t.TempDir())
	open := func(_ context.Context, cfg config.Config) (*Runtime, error) {
		svc := profiles.NewService(profileRepo, 3, false)
		return &Runtime{
			Config:   cfg,
			Profiles: svc,
			Payments: payments.NewService(paymentRepo, store, svc),
		}, nil
	}
	return open, profileRepo, paymentRepo
}

func run(t *testing.T, open Opener, args ...string) (string, error) {
	t.Helper()
	root := NewRootCommand(open)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func TestProfilesCommands(t *testing.T) {
	open, repo, _ := memoryOpener(t)
	if _, err := repo.Create(context.Background(), profiles.Profile{UserID: "user-1", PlanType: profiles.PlanFree, CreditsRemaining: 3}); err != nil {
		t.Fatalf("seed: %v", err)
	}

	if _, err := run(t, open, "profiles", "set-plan", "user-1", "pro"); err != nil {
		t.Fatalf("set-plan: %v", err)
	}
	out, err := run(t, open, "profiles", "get", "user-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	var p profiles.Profile
	if err := json.Unmarshal([]byte(out), &p); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
	if p.PlanType != profiles.PlanPro || p.CreditsRemaining != profiles.ProCredits {
		t.Fatalf("unexpected profile %+v", p)
	}

	if _, err := run(t, open, "profiles", "set-credits", "user-1", "7"); err != nil {
		t.Fatalf("set-credits: %v", err)
	}
	if got, _ := repo.Get(context.Background(), "user-1"); got.CreditsRemaining != 7 {
		t.Fatalf("expected 7 credits, got %d", got.CreditsRemaining)
	}

	if _, err := run(t, open, "profiles", "set-plan", "user-1", "gold"); err == nil {
		t.Fatalf("expected invalid plan error")
	}
	if _, err := run(t, open, "profiles", "set-credits", "user-1", "-1"); err == nil {
		t.Fatalf("expected negative credits error")
	}
}

func TestPaymentsCommands(t *testing.T) {
	open, profileRepo, paymentRepo := memoryOpener(t)
	ctx := context.Background()
	_, _ = profileRepo.Create(ctx, profiles.Profile{UserID: "user-1", PlanType: profiles.PlanFree})
	_ = paymentRepo.Create(ctx, payments.Payment{ID: "pay-1", UserID: "user-1", Status: payments.StatusPending, ScreenshotKey: "k", ContentType: "image/png"})

	out, err := run(t, open, "payments", "list", "--status", "pending")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(out, `"pay-1"`) {
		t.Fatalf("expected pay-1 in %s", out)
	}

	if _, err := run(t, open, "payments", "approve", "pay-1"); err != nil {
		t.Fatalf("approve: %v", err)
	}
	if p, _ := profileRepo.Get(ctx, "user-1"); p.PlanType != profiles.PlanPro {
		t.Fatalf("expected pro after approval, got %s", p.PlanType)
	}
	if _, err := run(t, open, "payments", "reject", "pay-1"); err == nil {
		t.Fatalf("expected error rejecting a reviewed payment")
	}
}

func TestMigrateRequiresDatabase(t *testing.T) {
	open, _, _ := memoryOpener(t)
	if _, err := run(t, open, "migrate"); err == nil {
		t.Fatalf("expected error without database")
	}
}

func TestTokenCommand(t *testing.T) {
	t.Setenv("AUTH_JWT_SECRET", "cli-secret")
	open, _, _ := memoryOpener(t)

	out, err := run(t, open, "token", "admin-1", "--admin", "--email", "ops@example.com")
	if err != nil {
		t.Fatalf("token: %v", err)
	}
	v, _ := auth.NewJWTVerifier("cli-secret", nil)
	id, err := v.Verify(context.Background(), strings.TrimSpace(out))
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if id.UserID != "admin-1" || !id.IsAdmin() || id.Email != "ops@example.com" {
		t.Fatalf("unexpected identity %+v", id)
	}
}
