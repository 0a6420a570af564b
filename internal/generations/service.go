package generations

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service contains business logic for generation history.
type Service struct {
	Repo Repo
	now  func() time.Time
}

func NewService(repo Repo) *Service {
	return &Service{Repo: repo, now: time.Now}
}

// Save assigns an id and timestamp when missing and stores rec.
func (s *Service) Save(ctx context.Context, rec Record) (Record, error) {
	if s.Repo == nil {
		return Record{}, errors.New("missing dependencies")
	}
	if strings.TrimSpace(rec.UserID) == "" || len(rec.Result) == 0 {
		return Record{}, ErrInvalidInput
	}
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.CreatedAt.IsZero() {
		now := time.Now
		if s.now != nil {
			now = s.now
		}
		rec.CreatedAt = now().UTC()
	}
	if err := s.Repo.Create(ctx, rec); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// Get returns one of userID's records.
func (s *Service) Get(ctx context.Context, userID, id string) (Record, error) {
	if s.Repo == nil {
		return Record{}, errors.New("missing dependencies")
	}
	if _, err := uuid.Parse(id); err != nil {
		return Record{}, ErrNotFound
	}
	return s.Repo.GetByID(ctx, userID, id)
}

// List returns summaries of userID's records newest first.
func (s *Service) List(ctx context.Context, userID string, limit, offset int) ([]Summary, error) {
	if s.Repo == nil {
		return nil, errors.New("missing dependencies")
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	recs, err := s.Repo.ListByUser(ctx, userID, limit, max(offset, 0))
	if err != nil {
		return nil, err
	}
	out := make([]Summary, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.Summary())
	}
	return out, nil
}
