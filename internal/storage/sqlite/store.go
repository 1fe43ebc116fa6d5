// Package sqlite persists submitted events so the grid survives restarts
// and can serve month windows without refetching the upstream feed.
package sqlite

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"weekgrid/internal/models"
)

type Store struct {
	db *sql.DB
}

// NewStore opens (or creates) the database at path and runs migrations.
// Use ":memory:" for an ephemeral store.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func (s *Store) Health() error {
	return s.db.Ping()
}

func (s *Store) migrate() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS events (
			id INTEGER PRIMARY KEY,
			title TEXT NOT NULL,
			subtitle TEXT DEFAULT '',
			start_at DATETIME NOT NULL,
			end_at DATETIME NOT NULL,
			all_day BOOLEAN DEFAULT 0,
			background_color TEXT DEFAULT '',
			border_color TEXT DEFAULT '',
			border_width INTEGER DEFAULT 0,
			text_color TEXT DEFAULT '',
			strike_through BOOLEAN DEFAULT 0,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_start ON events(start_at)`,
		`CREATE INDEX IF NOT EXISTS idx_events_end ON events(end_at)`,
	}

	for _, query := range queries {
		if _, err := s.db.Exec(query); err != nil {
			return fmt.Errorf("migration query failed: %w", err)
		}
	}
	return nil
}

// UpsertEvents inserts or replaces the given events by id in one
// transaction.
func (s *Store) UpsertEvents(events []*models.ResolvedEvent) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
		INSERT INTO events (id, title, subtitle, start_at, end_at, all_day,
			background_color, border_color, border_width, text_color, strike_through, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			subtitle = excluded.subtitle,
			start_at = excluded.start_at,
			end_at = excluded.end_at,
			all_day = excluded.all_day,
			background_color = excluded.background_color,
			border_color = excluded.border_color,
			border_width = excluded.border_width,
			text_color = excluded.text_color,
			strike_through = excluded.strike_through,
			updated_at = CURRENT_TIMESTAMP`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	for _, event := range events {
		_, err := stmt.Exec(
			event.ID, event.Title, event.Subtitle,
			event.Start.UTC(), event.End.UTC(), event.AllDay,
			event.Style.BackgroundColor, event.Style.BorderColor,
			event.Style.BorderWidth, event.Style.TextColor, event.Style.StrikeThrough,
		)
		if err != nil {
			return fmt.Errorf("failed to upsert event %d: %w", event.ID, err)
		}
	}

	return tx.Commit()
}

// EventsBetween returns events overlapping [start, end), ordered by start.
func (s *Store) EventsBetween(start, end time.Time) ([]*models.ResolvedEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, title, subtitle, start_at, end_at, all_day,
			background_color, border_color, border_width, text_color, strike_through
		FROM events
		WHERE start_at < ? AND end_at > ?
		ORDER BY start_at, end_at`, end.UTC(), start.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// AllEvents returns every stored event ordered by start.
func (s *Store) AllEvents() ([]*models.ResolvedEvent, error) {
	rows, err := s.db.Query(`
		SELECT id, title, subtitle, start_at, end_at, all_day,
			background_color, border_color, border_width, text_color, strike_through
		FROM events
		ORDER BY start_at, end_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// EventsPage returns one page of events ordered by start, plus the total
// count.
func (s *Store) EventsPage(limit, offset int) ([]*models.ResolvedEvent, int, error) {
	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM events`).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count events: %w", err)
	}

	rows, err := s.db.Query(`
		SELECT id, title, subtitle, start_at, end_at, all_day,
			background_color, border_color, border_width, text_color, strike_through
		FROM events
		ORDER BY start_at, end_at
		LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query events page: %w", err)
	}
	defer rows.Close()

	events, err := scanEvents(rows)
	if err != nil {
		return nil, 0, err
	}
	return events, total, nil
}

// DeleteEvents removes the given ids. Missing ids are not an error.
func (s *Store) DeleteEvents(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`DELETE FROM events WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("failed to prepare delete: %w", err)
	}
	defer stmt.Close()

	for _, id := range ids {
		if _, err := stmt.Exec(id); err != nil {
			return fmt.Errorf("failed to delete event %d: %w", id, err)
		}
	}

	return tx.Commit()
}

func scanEvents(rows *sql.Rows) ([]*models.ResolvedEvent, error) {
	var events []*models.ResolvedEvent
	for rows.Next() {
		var event models.ResolvedEvent
		err := rows.Scan(
			&event.ID, &event.Title, &event.Subtitle,
			&event.Start, &event.End, &event.AllDay,
			&event.Style.BackgroundColor, &event.Style.BorderColor,
			&event.Style.BorderWidth, &event.Style.TextColor, &event.Style.StrikeThrough,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		event.Start = event.Start.Local()
		event.End = event.End.Local()
		events = append(events, &event)
	}
	return events, rows.Err()
}
