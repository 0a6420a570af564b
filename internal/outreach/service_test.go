package outreach

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"outreach-backend/internal/generations"
	"outreach-backend/internal/llm"
	"outreach-backend/internal/profiles"
	"outreach-backend/internal/shared/telemetry"
)

type fakeLLM struct {
	mu      sync.Mutex
	calls   int
	content string
	err     error
}

func (f *fakeLLM) Complete(_ context.Context, _ llm.Prompt) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.content, f.err
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

type failingRecorder struct{}

func (failingRecorder) Save(context.Context, generations.Record) (generations.Record, error) {
	return generations.Record{}, errors.New("db down")
}

type fixture struct {
	profiles *profiles.MemoryRepo
	history  *generations.MemoryRepo
	llm      *fakeLLM
	svc      *Service
	router   *gin.Engine
}

func newFixture(t *testing.T, content string, seed ...profiles.Profile) *fixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	f := &fixture{
		profiles: profiles.NewMemoryRepo(),
		history:  generations.NewMemoryRepo(),
		llm:      &fakeLLM{content: content},
	}
	for _, p := range seed {
		if _, err := f.profiles.Create(context.Background(), p); err != nil {
			t.Fatalf("seed: %v", err)
		}
	}
	f.svc = NewService(
		profiles.NewService(f.profiles, 3, false),
		f.llm,
		generations.NewService(f.history),
	)

	f.router = gin.New()
	f.router.Use(func(c *gin.Context) {
		c.Set("userId", "user-1")
		c.Next()
	})
	NewHandler(f.svc).RegisterRoutes(f.router.Group("/api/v1"))
	return f
}

func (f *fixture) post(body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/generate-outreach", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp := httptest.NewRecorder()
	f.router.ServeHTTP(resp, req)
	return resp
}

func (f *fixture) credits(t *testing.T) int {
	t.Helper()
	p, err := f.profiles.Get(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	return p.CreditsRemaining
}

func validBody() string {
	b, _ := json.Marshal(map[string]string{
		"resume_text":     strings.Repeat("Go developer with projects. ", 3),
		"job_description": "Backend engineering intern role",
		"company_name":    "Acme",
	})
	return string(b)
}

func errorOf(t *testing.T, resp *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(resp.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode error body: %v (%s)", err, resp.Body.String())
	}
	msg, _ := body["error"].(string)
	return msg
}

func freeUser(credits int) profiles.Profile {
	return profiles.Profile{UserID: "user-1", PlanType: profiles.PlanFree, CreditsRemaining: credits}
}

func TestGenerateConsumesOneCreditAndRecords(t *testing.T) {
	f := newFixture(t, "```json\n"+packJSON+"\n```", freeUser(3))

	resp := f.post(validBody())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", resp.Code, resp.Body.String())
	}
	var got Result
	if err := json.Unmarshal(resp.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.ReplyProbability != 72 || got.FollowUps != [2]string{"a", "b"} {
		t.Fatalf("unexpected result %+v", got)
	}
	if c := f.credits(t); c != 2 {
		t.Fatalf("expected 2 credits left, got %d", c)
	}
	if n := f.history.Count(); n != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}
	recs, _ := f.history.ListByUser(context.Background(), "user-1", 10, 0)
	if recs[0].Fallback || recs[0].Tone != "professional" || recs[0].EmailLength != "medium" {
		t.Fatalf("unexpected record %+v", recs[0])
	}
}

func TestGenerateWithoutCreditsNeverCallsProvider(t *testing.T) {
	f := newFixture(t, packJSON, freeUser(0))

	resp := f.post(validBody())
	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402, got %d", resp.Code)
	}
	if msg := errorOf(t, resp); msg != profiles.MsgPaymentRequired {
		t.Fatalf("unexpected message %q", msg)
	}
	if f.llm.Calls() != 0 {
		t.Fatalf("expected no provider calls, got %d", f.llm.Calls())
	}
	if f.history.Count() != 0 {
		t.Fatalf("expected no records")
	}
}

func TestGateRunsBeforeValidation(t *testing.T) {
	f := newFixture(t, packJSON, freeUser(0))
	if resp := f.post(`{}`); resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 before validation, got %d", resp.Code)
	}
}

func TestGenerateMissingProfile(t *testing.T) {
	f := newFixture(t, packJSON)
	resp := f.post(validBody())
	if resp.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", resp.Code)
	}
	if msg := errorOf(t, resp); msg != "Profile not found" {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestGenerateProKeepsCredits(t *testing.T) {
	f := newFixture(t, packJSON, profiles.Profile{UserID: "user-1", PlanType: profiles.PlanPro, CreditsRemaining: 999})

	for i := 0; i < 3; i++ {
		if resp := f.post(validBody()); resp.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", resp.Code)
		}
	}
	if c := f.credits(t); c != 999 {
		t.Fatalf("expected credits unchanged, got %d", c)
	}
	if f.history.Count() != 3 {
		t.Fatalf("expected 3 records, got %d", f.history.Count())
	}
}

func TestGenerateRejectsInvalidInput(t *testing.T) {
	f := newFixture(t, packJSON, freeUser(3))

	cases := map[string]string{
		"malformed":  `{"resume_text":`,
		"wrong type": `{"resume_text": 42}`,
		"empty":      ``,
	}
	for name, body := range cases {
		resp := f.post(body)
		if resp.Code != http.StatusBadRequest {
			t.Fatalf("%s: expected 400, got %d", name, resp.Code)
		}
		if msg := errorOf(t, resp); msg != "Invalid request data" {
			t.Fatalf("%s: unexpected message %q", name, msg)
		}
	}

	resp := f.post(`{"resume_text":"too short","job_description":"also too short!!","company_name":"Acme","company_website":"not-a-url"}`)
	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.Code)
	}
	want := "Resume must be at least 50 characters, Job description must be at least 20 characters, Company website must be a valid URL"
	if msg := errorOf(t, resp); msg != want {
		t.Fatalf("unexpected message %q", msg)
	}
	if f.llm.Calls() != 0 || f.credits(t) != 3 {
		t.Fatalf("invalid input must not reach the provider or consume credits")
	}
}

func TestGenerateProseFallsBack(t *testing.T) {
	f := newFixture(t, "Here is your outreach pack, good luck!", freeUser(3))

	resp := f.post(validBody())
	if resp.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.Code)
	}
	var got Result
	_ = json.Unmarshal(resp.Body.Bytes(), &got)
	if got.ReplyProbability != 50 || got.ColdEmail != "Here is your outreach pack, good luck!" {
		t.Fatalf("unexpected fallback %+v", got)
	}
	recs, _ := f.history.ListByUser(context.Background(), "user-1", 10, 0)
	if len(recs) != 1 || !recs[0].Fallback {
		t.Fatalf("expected one fallback record, got %+v", recs)
	}
	if f.credits(t) != 2 {
		t.Fatalf("fallback still consumes a credit")
	}
}

func TestGenerateProviderErrors(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		msg    string
	}{
		{"rate limited", llm.ClassifyStatus("openai", 429, "", nil), http.StatusTooManyRequests, "AI rate limit exceeded. Please try again in a moment."},
		{"credits", llm.ClassifyStatus("openai", 402, "", nil), http.StatusPaymentRequired, "AI credits exhausted."},
		{"server", llm.ClassifyStatus("openai", 503, "upstream down", nil), http.StatusInternalServerError, "AI generation failed"},
		{"transport", llm.ClassifyStatus("openai", 0, "", errors.New("dial tcp: refused")), http.StatusInternalServerError, "AI generation failed"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture(t, "", freeUser(3))
			f.llm.err = tc.err

			resp := f.post(validBody())
			if resp.Code != tc.status {
				t.Fatalf("expected %d, got %d", tc.status, resp.Code)
			}
			if msg := errorOf(t, resp); msg != tc.msg {
				t.Fatalf("unexpected message %q", msg)
			}
			if c := f.credits(t); c != 3 {
				t.Fatalf("expected credit refunded, got %d", c)
			}
			if f.history.Count() != 0 {
				t.Fatalf("expected no record on failure")
			}
		})
	}
}

func TestGenerateRecordFailureStillSucceeds(t *testing.T) {
	f := newFixture(t, packJSON, freeUser(3))
	f.svc.History = failingRecorder{}

	out, err := f.svc.Generate(context.Background(), "user-1", Request{
		ResumeText:  strings.Repeat("r", 60),
		CompanyName: "Acme",
		Tone:        ToneProfessional,
		EmailLength: LengthMedium,
	})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out.RecordID != "" || out.Result.ReplyProbability != 72 {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if f.credits(t) != 2 {
		t.Fatalf("expected credit consumed")
	}
}

func TestConcurrentGenerationsNeverOverspend(t *testing.T) {
	f := newFixture(t, packJSON, freeUser(3))
	req := Request{ResumeText: strings.Repeat("r", 60), CompanyName: "Acme", Tone: ToneProfessional, EmailLength: LengthMedium}

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := f.svc.Generate(context.Background(), "user-1", req); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			} else if !errors.Is(err, profiles.ErrPaymentRequired) {
				t.Errorf("unexpected error %v", err)
			}
		}()
	}
	wg.Wait()

	if succeeded != 3 || f.llm.Calls() != 3 || f.history.Count() != 3 {
		t.Fatalf("expected 3 generations, got succeeded=%d calls=%d records=%d", succeeded, f.llm.Calls(), f.history.Count())
	}
	if f.credits(t) != 0 {
		t.Fatalf("expected 0 credits, got %d", f.credits(t))
	}
}

type cancellingLLM struct {
	cancel  context.CancelFunc
	content string
}

func (c *cancellingLLM) Complete(ctx context.Context, _ llm.Prompt) (string, error) {
	c.cancel()
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(50 * time.Millisecond):
		return c.content, nil
	}
}

func TestGenerateSurvivesCallerCancellation(t *testing.T) {
	f := newFixture(t, packJSON, freeUser(3))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.svc.LLM = &cancellingLLM{cancel: cancel, content: packJSON}

	req := Request{ResumeText: strings.Repeat("r", 60), CompanyName: "Acme", Tone: ToneProfessional, EmailLength: LengthMedium}
	out, err := f.svc.Generate(ctx, "user-1", req)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if out.Fallback || out.RecordID == "" {
		t.Fatalf("unexpected outcome %+v", out)
	}
	if c := f.credits(t); c != 2 {
		t.Fatalf("expected 2 credits left, got %d", c)
	}
	if n := f.history.Count(); n != 1 {
		t.Fatalf("expected 1 record, got %d", n)
	}
}

type stuckRefunds struct {
	Entitlements
}

func (stuckRefunds) Refund(context.Context, string) error {
	return errors.New("refund store down")
}

func TestProviderFailureLogsRefundError(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	prev := telemetry.L()
	telemetry.Use(zap.New(core))
	t.Cleanup(func() { telemetry.Use(prev) })

	f := newFixture(t, "", freeUser(3))
	f.llm.err = errors.New("connection reset")
	f.svc.Profiles = stuckRefunds{Entitlements: f.svc.Profiles}

	req := Request{ResumeText: strings.Repeat("r", 60), CompanyName: "Acme", Tone: ToneProfessional, EmailLength: LengthMedium}
	if _, err := f.svc.Generate(context.Background(), "user-1", req); !errors.Is(err, ErrGenerationFailed) {
		t.Fatalf("expected generation failure, got %v", err)
	}

	entries := logs.FilterMessage("outreach.provider_failed").All()
	if len(entries) != 1 {
		t.Fatalf("expected 1 provider_failed log, got %d", len(entries))
	}
	if got := entries[0].ContextMap()["refund_failed"]; got != "refund store down" {
		t.Fatalf("unexpected refund_failed field: %v", got)
	}
}
