package payments

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo stores payments in memory and is safe for concurrent use.
type MemoryRepo struct {
	mu   sync.RWMutex
	byID map[string]Payment
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{byID: make(map[string]Payment)}
}

func (r *MemoryRepo) Create(ctx context.Context, p Payment) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[p.ID] = p
	return nil
}

func (r *MemoryRepo) GetByID(ctx context.Context, id string) (Payment, error) {
	if err := ctx.Err(); err != nil {
		return Payment{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) ListByUser(ctx context.Context, userID string) ([]Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.filter(func(p Payment) bool { return p.UserID == userID }, 0, 0), nil
}

func (r *MemoryRepo) List(ctx context.Context, status Status, limit, offset int) ([]Payment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return r.filter(func(p Payment) bool { return status == "" || p.Status == status }, limit, offset), nil
}

func (r *MemoryRepo) Review(ctx context.Context, id string, status Status, reviewer string) (Payment, error) {
	if err := ctx.Err(); err != nil {
		return Payment{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.byID[id]
	if !ok {
		return Payment{}, ErrNotFound
	}
	if p.Status != StatusPending {
		return Payment{}, ErrNotPending
	}
	now := time.Now().UTC()
	p.Status = status
	p.ReviewedBy = reviewer
	p.ReviewedAt = &now
	r.byID[id] = p
	return p, nil
}

func (r *MemoryRepo) filter(keep func(Payment) bool, limit, offset int) []Payment {
	r.mu.RLock()
	out := []Payment{}
	for _, p := range r.byID {
		if keep(p) {
			out = append(out, p)
		}
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset > 0 {
		if offset >= len(out) {
			return []Payment{}
		}
		out = out[offset:]
	}
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}
