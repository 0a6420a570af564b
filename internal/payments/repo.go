package payments

import "context"

// Repo defines persistence operations for payments.
type Repo interface {
	Create(ctx context.Context, p Payment) error
	GetByID(ctx context.Context, id string) (Payment, error)
	ListByUser(ctx context.Context, userID string) ([]Payment, error)
	// List returns payments newest first. An empty status matches all.
	List(ctx context.Context, status Status, limit, offset int) ([]Payment, error)
	// Review moves a pending payment to status. It returns ErrNotPending if the payment was already reviewed.
	Review(ctx context.Context, id string, status Status, reviewer string) (Payment, error)
}
