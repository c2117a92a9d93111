package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/slotledger/internal/models"
)

// FetchAll returns the participant directory keyed by name.
func (s *SQLiteStore) FetchAll(ctx context.Context) (models.Preferences, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT name, contact, opted_in, role, color FROM participants ORDER BY name",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	prefs := make(models.Preferences)
	for rows.Next() {
		var (
			p       models.ParticipantPreference
			optedIn int
			role    string
		)
		if err := rows.Scan(&p.Name, &p.Contact, &optedIn, &role, &p.Color); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		p.OptedIn = optedIn != 0
		p.Role = models.Role(role)
		prefs[p.Name] = p
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate participants: %w", err)
	}

	return prefs, nil
}

// UpsertParticipant creates or replaces a directory entry.
func (s *SQLiteStore) UpsertParticipant(ctx context.Context, pref models.ParticipantPreference) error {
	name := strings.TrimSpace(pref.Name)
	if name == "" {
		return fmt.Errorf("participant name is required")
	}
	role := pref.Role
	if role == "" {
		role = models.RoleMember
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO participants (name, contact, opted_in, role, color) VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(name) DO UPDATE SET
		   contact = excluded.contact,
		   opted_in = excluded.opted_in,
		   role = excluded.role,
		   color = excluded.color`,
		name, pref.Contact, boolToInt(pref.OptedIn), string(role), pref.Color,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert participant: %w", err)
	}

	return nil
}
