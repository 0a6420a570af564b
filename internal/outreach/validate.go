package outreach

import (
	"fmt"

	"github.com/go-playground/validator/v10"

	"outreach-backend/internal/shared/validate"
)

var requestValidator = validate.New()

// Validate applies defaults to p and checks every field constraint.
// It returns a *ValidationError listing one message per violated field.
func Validate(p Payload) (Request, error) {
	req := Request{
		ResumeText:     p.ResumeText,
		JobDescription: p.JobDescription,
		CompanyName:    p.CompanyName,
		CompanyWebsite: p.CompanyWebsite,
		RecruiterName:  p.RecruiterName,
		Tone:           ToneProfessional,
		EmailLength:    LengthMedium,
	}
	if p.Tone != nil {
		req.Tone = Tone(*p.Tone)
	}
	if p.EmailLength != nil {
		req.EmailLength = Length(*p.EmailLength)
	}

	msgs, err := requestValidator.Messages(req, fieldMessage)
	if err != nil {
		return Request{}, err
	}
	if len(msgs) > 0 {
		return Request{}, &ValidationError{Messages: msgs}
	}
	return req, nil
}

var fieldLabels = map[string]string{
	"resume_text":     "Resume",
	"job_description": "Job description",
	"company_name":    "Company name",
	"company_website": "Company website",
	"recruiter_name":  "Recruiter name",
	"tone":            "Tone",
	"email_length":    "Email length",
}

func fieldMessage(fe validator.FieldError) string {
	label := fieldLabels[fe.Field()]
	if label == "" {
		return validate.Default(fe)
	}
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s exceeds %s characters", label, fe.Param())
	case "url":
		return label + " must be a valid URL"
	case "oneof":
		switch fe.Field() {
		case "tone":
			return "Tone must be one of: professional, confident, friendly"
		case "email_length":
			return "Email length must be one of: short, medium, detailed"
		}
	}
	return validate.Default(fe)
}
