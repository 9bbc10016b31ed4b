package sqlite

import (
	"context"
	"fmt"

	"github.com/displayables/dashboard-api/internal/core/domain"
	"github.com/displayables/dashboard-api/internal/core/ports"
)

var _ ports.AuthEventRepository = (*Store)(nil)

// InsertEvent appends one entry to the auth_events table.
func (s *Store) InsertEvent(ctx context.Context, event *domain.AuthEvent) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_events (username, provider, action, state, reason, at, processed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		event.Username, string(event.Provider), string(event.Action), string(event.State),
		string(event.Reason), toMillis(event.At), toMillis(s.now()),
	)
	if err != nil {
		return fmt.Errorf("insert auth event: %w", err)
	}
	return nil
}
