package outreach

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
)

// FallbackMessage fills the fields of a result that could not be parsed.
const FallbackMessage = "Could not parse. Please regenerate."

const fallbackReplyProbability = 50

var fenceReplacer = strings.NewReplacer("```json\n", "", "```json", "", "```\n", "", "```", "")

// StripFences removes markdown code fences anywhere in s and trims surrounding whitespace.
func StripFences(s string) string {
	return strings.TrimSpace(fenceReplacer.Replace(s))
}

type wireResult struct {
	ColdEmail              *string  `json:"cold_email"`
	CoverLetter            *string  `json:"cover_letter"`
	LinkedInDM             *string  `json:"linkedin_dm"`
	FollowUps              []string `json:"follow_ups"`
	InterviewPitch         *string  `json:"interview_pitch"`
	ReplyProbability       *float64 `json:"reply_probability"`
	ImprovementSuggestions *string  `json:"improvement_suggestions"`
}

// ParseResult decodes cleaned model output. Every key must be present with the right type.
func ParseResult(content string) (Result, error) {
	var w wireResult
	if err := json.Unmarshal([]byte(content), &w); err != nil {
		return Result{}, err
	}
	for name, v := range map[string]*string{
		"cold_email":              w.ColdEmail,
		"cover_letter":            w.CoverLetter,
		"linkedin_dm":             w.LinkedInDM,
		"interview_pitch":         w.InterviewPitch,
		"improvement_suggestions": w.ImprovementSuggestions,
	} {
		if v == nil {
			return Result{}, fmt.Errorf("missing %s", name)
		}
	}
	if len(w.FollowUps) != 2 {
		return Result{}, fmt.Errorf("follow_ups has %d entries, want 2", len(w.FollowUps))
	}
	if w.ReplyProbability == nil {
		return Result{}, errors.New("missing reply_probability")
	}
	p := *w.ReplyProbability
	if p != math.Trunc(p) || p < 0 || p > 100 {
		return Result{}, fmt.Errorf("reply_probability %v out of range", p)
	}

	return Result{
		ColdEmail:              *w.ColdEmail,
		CoverLetter:            *w.CoverLetter,
		LinkedInDM:             *w.LinkedInDM,
		FollowUps:              [2]string{w.FollowUps[0], w.FollowUps[1]},
		InterviewPitch:         *w.InterviewPitch,
		ReplyProbability:       int(p),
		ImprovementSuggestions: *w.ImprovementSuggestions,
	}, nil
}

// FallbackResult is the degraded result built from unparseable content.
func FallbackResult(content string) Result {
	return Result{
		ColdEmail:              content,
		CoverLetter:            FallbackMessage,
		LinkedInDM:             FallbackMessage,
		FollowUps:              [2]string{"", ""},
		InterviewPitch:         FallbackMessage,
		ReplyProbability:       fallbackReplyProbability,
		ImprovementSuggestions: FallbackMessage,
	}
}

// Interpret turns raw model output into an Outcome, falling back when it cannot be parsed.
func Interpret(raw string) Outcome {
	content := StripFences(raw)
	result, err := ParseResult(content)
	if err != nil {
		return Outcome{Result: FallbackResult(content), Fallback: true}
	}
	return Outcome{Result: result}
}
