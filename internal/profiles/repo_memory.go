package profiles

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-process Repo for dev and tests.
type MemoryRepo struct {
	mu       sync.RWMutex
	profiles map[string]Profile
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{profiles: make(map[string]Profile)}
}

func (r *MemoryRepo) Get(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p, nil
}

func (r *MemoryRepo) Create(ctx context.Context, p Profile) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.profiles[p.UserID]; ok {
		return existing, nil
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	r.profiles[p.UserID] = p
	return p, nil
}

func (r *MemoryRepo) ConsumeCredit(ctx context.Context, userID string) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	if p.PlanType == PlanPro {
		return p, nil
	}
	if p.CreditsRemaining <= 0 {
		return Profile{}, ErrPaymentRequired
	}
	p.CreditsRemaining--
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return p, nil
}

func (r *MemoryRepo) RefundCredit(ctx context.Context, userID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return ErrNotFound
	}
	if p.PlanType != PlanFree {
		return nil
	}
	p.CreditsRemaining++
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return nil
}

func (r *MemoryRepo) Update(ctx context.Context, userID string, plan Plan, credits int) (Profile, error) {
	if err := ctx.Err(); err != nil {
		return Profile{}, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.profiles[userID]
	if !ok {
		return Profile{}, ErrNotFound
	}
	p.PlanType = plan
	p.CreditsRemaining = credits
	p.UpdatedAt = time.Now().UTC()
	r.profiles[userID] = p
	return p, nil
}

func (r *MemoryRepo) List(ctx context.Context, limit, offset int) ([]Profile, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Profile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].UserID < out[j].UserID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	if offset >= len(out) {
		return []Profile{}, nil
	}
	out = out[offset:]
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}
