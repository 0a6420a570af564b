package generations

import (
	"encoding/json"
	"time"
)

// Record is one stored outreach generation.
type Record struct {
	ID             string          `json:"id"`
	UserID         string          `json:"user_id"`
	CompanyName    string          `json:"company_name"`
	JobDescription string          `json:"job_description"`
	ResumeText     string          `json:"resume_text"`
	Tone           string          `json:"tone"`
	EmailLength    string          `json:"email_length"`
	Result         json.RawMessage `json:"generated_result"`
	Fallback       bool            `json:"fallback"`
	CreatedAt      time.Time       `json:"created_at"`
}

// Summary is the list view of a Record.
type Summary struct {
	ID          string    `json:"id"`
	CompanyName string    `json:"company_name"`
	Tone        string    `json:"tone"`
	EmailLength string    `json:"email_length"`
	CreatedAt   time.Time `json:"created_at"`
}

func (r Record) Summary() Summary {
	return Summary{
		ID:          r.ID,
		CompanyName: r.CompanyName,
		Tone:        r.Tone,
		EmailLength: r.EmailLength,
		CreatedAt:   r.CreatedAt,
	}
}
