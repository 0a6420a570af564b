package payments

import "time"

// Status is the review state of a payment.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Payment is a manual upgrade request backed by a screenshot of the transfer.
type Payment struct {
	ID            string     `json:"id"`
	UserID        string     `json:"user_id"`
	Status        Status     `json:"status"`
	ScreenshotKey string     `json:"screenshot_key"`
	ContentType   string     `json:"content_type"`
	ReviewedBy    string     `json:"reviewed_by,omitempty"`
	ReviewedAt    *time.Time `json:"reviewed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
}
