package health

import (
	"context"
	"time"
)

const pingTimeout = 2 * time.Second

// Pinger is satisfied by *sql.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// Service encapsulates health-related checks.
type Service struct {
	DB Pinger
}

// NewService constructs a health service. A nil db means in-memory repositories.
func NewService(db Pinger) *Service {
	return &Service{DB: db}
}

// Status reports overall health and the database state.
func (s *Service) Status(ctx context.Context) (bool, map[string]any) {
	if s == nil || s.DB == nil {
		return true, map[string]any{"ok": true, "database": "memory"}
	}
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := s.DB.PingContext(ctx); err != nil {
		return false, map[string]any{"ok": false, "database": "down"}
	}
	return true, map[string]any{"ok": true, "database": "up"}
}
