package outreach

// Tone is the voice requested for the outreach pack.
type Tone string

const (
	ToneProfessional Tone = "professional"
	ToneConfident    Tone = "confident"
	ToneFriendly     Tone = "friendly"
)

// Length is the requested email length.
type Length string

const (
	LengthShort    Length = "short"
	LengthMedium   Length = "medium"
	LengthDetailed Length = "detailed"
)

// Payload is the request body as sent by clients. Nil enums mean "use the default".
type Payload struct {
	ResumeText     string  `json:"resume_text"`
	JobDescription string  `json:"job_description"`
	CompanyName    string  `json:"company_name"`
	CompanyWebsite string  `json:"company_website,omitempty"`
	RecruiterName  string  `json:"recruiter_name,omitempty"`
	Tone           *string `json:"tone,omitempty"`
	EmailLength    *string `json:"email_length,omitempty"`
}

// Request is a validated generation request.
type Request struct {
	ResumeText     string `json:"resume_text" validate:"min=50,max=10000"`
	JobDescription string `json:"job_description" validate:"min=20,max=5000"`
	CompanyName    string `json:"company_name" validate:"required,max=200"`
	CompanyWebsite string `json:"company_website" validate:"omitempty,url,max=500"`
	RecruiterName  string `json:"recruiter_name" validate:"max=100"`
	Tone           Tone   `json:"tone" validate:"oneof=professional confident friendly"`
	EmailLength    Length `json:"email_length" validate:"oneof=short medium detailed"`
}

// Result is the outreach pack returned to clients.
type Result struct {
	ColdEmail              string    `json:"cold_email"`
	CoverLetter            string    `json:"cover_letter"`
	LinkedInDM             string    `json:"linkedin_dm"`
	FollowUps              [2]string `json:"follow_ups"`
	InterviewPitch         string    `json:"interview_pitch"`
	ReplyProbability       int       `json:"reply_probability"`
	ImprovementSuggestions string    `json:"improvement_suggestions"`
}

// Outcome is a generated result tagged with how it was obtained.
type Outcome struct {
	Result Result
	// Fallback is set when the model output could not be parsed and Result is the degraded default.
	Fallback bool
	// RecordID identifies the stored history record; empty if the write failed.
	RecordID string
}
