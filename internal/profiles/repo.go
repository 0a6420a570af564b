package profiles

import "context"

// Repo persists profiles.
type Repo interface {
	Get(ctx context.Context, userID string) (Profile, error)
	// Create inserts p unless a row already exists, returning the stored profile.
	Create(ctx context.Context, p Profile) (Profile, error)
	// ConsumeCredit atomically takes one credit from a free profile with credits left.
	// Pro profiles are returned unchanged. A free profile with no credits yields ErrPaymentRequired.
	ConsumeCredit(ctx context.Context, userID string) (Profile, error)
	// RefundCredit returns a credit taken by ConsumeCredit. Pro profiles are untouched.
	RefundCredit(ctx context.Context, userID string) error
	Update(ctx context.Context, userID string, plan Plan, credits int) (Profile, error)
	List(ctx context.Context, limit, offset int) ([]Profile, error)
}
