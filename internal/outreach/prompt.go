package outreach

import (
	"fmt"
	"strings"

	"outreach-backend/internal/llm"
)

const temperature = 0.7

const systemTemplate = `You are a top-tier Indian placement strategist helping students get internships and jobs. Write concise, confident, highly personalized outreach messages that increase response rate.

You MUST respond with a valid JSON object with these exact keys:
- cold_email: string (a personalized cold email)
- cover_letter: string (a tailored cover letter)
- linkedin_dm: string (a short LinkedIn DM)
- follow_ups: array of 2 strings (follow-up emails)
- interview_pitch: string (a 30-second interview pitch)
- reply_probability: number between 0-100 (estimated reply chance)
- improvement_suggestions: string (tips to improve their profile)

Guidelines:
- Tone: %s
- Email length: %s
- Be specific, reference the candidate's actual skills and projects
- Reference the company and role specifically
- For Indian context: mention relevant tech stack, Indian companies, placement culture
- Make it sound human, not templated
- Do NOT use generic phrases like "I am writing to express my interest"`

// BuildPrompt renders the provider prompt for req. Applicant text is passed through verbatim.
func BuildPrompt(req Request) llm.Prompt {
	var b strings.Builder
	b.WriteString("Resume:\n")
	b.WriteString(req.ResumeText)
	b.WriteString("\n\nJob Description:\n")
	b.WriteString(req.JobDescription)
	b.WriteString("\n\nCompany: ")
	b.WriteString(req.CompanyName)
	b.WriteString("\n")
	if req.CompanyWebsite != "" {
		b.WriteString("Website: " + req.CompanyWebsite + "\n")
	}
	if req.RecruiterName != "" {
		b.WriteString("Recruiter: " + req.RecruiterName + "\n")
	}
	b.WriteString("\nGenerate the complete outreach pack as JSON.")

	return llm.Prompt{
		System:      fmt.Sprintf(systemTemplate, req.Tone, req.EmailLength),
		User:        b.String(),
		Temperature: temperature,
	}
}
