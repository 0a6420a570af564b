package outreach

import (
	"strings"
	"testing"
)

func TestBuildPromptEmbedsRequest(t *testing.T) {
	req := Request{
		ResumeText:     "Built a Go service",
		JobDescription: "Backend intern",
		CompanyName:    "Acme",
		CompanyWebsite: "https://acme.example",
		RecruiterName:  "Priya",
		Tone:           ToneFriendly,
		EmailLength:    LengthShort,
	}
	p := BuildPrompt(req)

	if p.Temperature != 0.7 {
		t.Fatalf("unexpected temperature %v", p.Temperature)
	}
	for _, want := range []string{"- Tone: friendly", "- Email length: short", "follow_ups", "I am writing to express my interest"} {
		if !strings.Contains(p.System, want) {
			t.Fatalf("system prompt missing %q", want)
		}
	}
	for _, want := range []string{"Resume:\nBuilt a Go service", "Job Description:\nBackend intern", "Company: Acme", "Website: https://acme.example", "Recruiter: Priya"} {
		if !strings.Contains(p.User, want) {
			t.Fatalf("user prompt missing %q:\n%s", want, p.User)
		}
	}
	if !strings.HasSuffix(p.User, "Generate the complete outreach pack as JSON.") {
		t.Fatalf("unexpected user prompt ending:\n%s", p.User)
	}
}

func TestBuildPromptOmitsOptionalLines(t *testing.T) {
	p := BuildPrompt(Request{CompanyName: "Acme", Tone: ToneProfessional, EmailLength: LengthMedium})
	if strings.Contains(p.User, "Website:") || strings.Contains(p.User, "Recruiter:") {
		t.Fatalf("expected optional lines to be omitted:\n%s", p.User)
	}
}
