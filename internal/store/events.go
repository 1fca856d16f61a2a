package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/lifelog/internal/ids"
	"github.com/lazypower/lifelog/internal/models"
)

// stamp assigns a fresh id, the owner and creation times for an insert.
func (db *DB) stamp(r *models.Record, userID string) {
	now := db.now()
	r.ID = ids.New()
	r.UserID = userID
	r.CreatedAt = now
	r.UpdatedAt = now
}

// CreateEvent inserts a new event owned by userID.
func (db *DB) CreateEvent(userID string, e *models.Event) error {
	e.Name = strings.TrimSpace(e.Name)
	if err := e.Validate(); err != nil {
		return err
	}
	db.stamp(&e.Record, userID)

	_, err := db.Exec(`
		INSERT INTO events (id, user_id, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, e.ID, e.UserID, e.Name, toMS(e.CreatedAt), toMS(e.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create event: %w", err)
	}
	return nil
}

func scanEvent(s scanner) (*models.Event, error) {
	var e models.Event
	var created, updated int64
	if err := s.Scan(&e.ID, &e.UserID, &e.Name, &created, &updated); err != nil {
		return nil, err
	}
	e.CreatedAt = fromMS(created)
	e.UpdatedAt = fromMS(updated)
	return &e, nil
}

// GetEvent returns one of userID's events.
func (db *DB) GetEvent(userID, id string) (*models.Event, error) {
	e, err := scanEvent(db.QueryRow(`
		SELECT id, user_id, name, created_at, updated_at
		FROM events WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get event: %w", err)
	}
	return e, nil
}

// ListEvents returns userID's events, newest first.
func (db *DB) ListEvents(userID string, p Page) (*Paged[models.Event], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM events WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count events: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, name, created_at, updated_at
		FROM events WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var events []models.Event
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("scan event: %w", err)
		}
		events = append(events, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(events, p, total), nil
}

// UpdateEvent renames an event.
func (db *DB) UpdateEvent(userID string, e *models.Event) error {
	e.Name = strings.TrimSpace(e.Name)
	if err := e.Validate(); err != nil {
		return err
	}
	e.UserID = userID
	e.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE events SET name = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, e.Name, toMS(e.UpdatedAt), e.ID, userID)
	if err != nil {
		return fmt.Errorf("update event: %w", err)
	}
	return affected(res, "event", e.ID)
}

// FindEventByName returns the user's event with exactly this name.
func (db *DB) FindEventByName(userID, name string) (*models.Event, error) {
	e, err := scanEvent(db.QueryRow(`
		SELECT id, user_id, name, created_at, updated_at
		FROM events WHERE user_id = ? AND name = ?
		ORDER BY id LIMIT 1
	`, userID, strings.TrimSpace(name)))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("event %q: %w", name, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("find event: %w", err)
	}
	return e, nil
}

// LatestTimestampsByEvent lists every event with the time it was last
// stamped, most recently stamped first. Never-stamped events come last.
func (db *DB) LatestTimestampsByEvent(userID string) ([]models.EventStamp, error) {
	rows, err := db.Query(`
		SELECT e.id, e.user_id, e.name, e.created_at, e.updated_at, MAX(t.at)
		FROM events e
		LEFT JOIN timestamps t ON t.event_id = e.id
		WHERE e.user_id = ?
		GROUP BY e.id
		ORDER BY MAX(t.at) IS NULL, MAX(t.at) DESC, e.name
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("latest timestamps: %w", err)
	}
	defer rows.Close()

	var out []models.EventStamp
	for rows.Next() {
		var es models.EventStamp
		var created, updated int64
		var last sql.NullInt64
		if err := rows.Scan(&es.Event.ID, &es.Event.UserID, &es.Event.Name, &created, &updated, &last); err != nil {
			return nil, fmt.Errorf("scan event stamp: %w", err)
		}
		es.Event.CreatedAt = fromMS(created)
		es.Event.UpdatedAt = fromMS(updated)
		if last.Valid {
			t := fromMS(last.Int64)
			es.LastAt = &t
		}
		out = append(out, es)
	}
	return out, rows.Err()
}

// CreateTimestamp records an occurrence of one of userID's events. A zero
// At means now.
func (db *DB) CreateTimestamp(userID string, ts *models.Timestamp) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	if err := owned(db, "events", userID, ts.EventID); err != nil {
		return err
	}
	db.stamp(&ts.Record, userID)
	if ts.At.IsZero() {
		ts.At = ts.CreatedAt
	}

	_, err := db.Exec(`
		INSERT INTO timestamps (id, user_id, event_id, at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, ts.ID, ts.UserID, ts.EventID, toMS(ts.At), toMS(ts.CreatedAt), toMS(ts.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create timestamp: %w", err)
	}
	return nil
}

const timestampSelect = `
	SELECT t.id, t.user_id, t.event_id, t.at, t.created_at, t.updated_at, e.name
	FROM timestamps t JOIN events e ON e.id = t.event_id
`

func scanTimestamp(s scanner) (*models.Timestamp, error) {
	var ts models.Timestamp
	var at, created, updated int64
	if err := s.Scan(&ts.ID, &ts.UserID, &ts.EventID, &at, &created, &updated, &ts.EventName); err != nil {
		return nil, err
	}
	ts.At = fromMS(at)
	ts.CreatedAt = fromMS(created)
	ts.UpdatedAt = fromMS(updated)
	return &ts, nil
}

// GetTimestamp returns one of userID's timestamps.
func (db *DB) GetTimestamp(userID, id string) (*models.Timestamp, error) {
	ts, err := scanTimestamp(db.QueryRow(timestampSelect+`WHERE t.id = ? AND t.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("timestamp %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get timestamp: %w", err)
	}
	return ts, nil
}

// ListTimestamps returns userID's timestamps, latest occurrence first.
func (db *DB) ListTimestamps(userID string, p Page) (*Paged[models.Timestamp], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM timestamps WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count timestamps: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(timestampSelect+`
		WHERE t.user_id = ?
		ORDER BY t.at DESC, t.id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list timestamps: %w", err)
	}
	defer rows.Close()

	var out []models.Timestamp
	for rows.Next() {
		ts, err := scanTimestamp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan timestamp: %w", err)
		}
		out = append(out, *ts)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateTimestamp moves a timestamp or reassigns it to another event.
func (db *DB) UpdateTimestamp(userID string, ts *models.Timestamp) error {
	if err := ts.Validate(); err != nil {
		return err
	}
	if ts.At.IsZero() {
		return models.FieldError("at", "this field is required")
	}
	if err := owned(db, "events", userID, ts.EventID); err != nil {
		return err
	}
	ts.UserID = userID
	ts.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE timestamps SET event_id = ?, at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, ts.EventID, toMS(ts.At), toMS(ts.UpdatedAt), ts.ID, userID)
	if err != nil {
		return fmt.Errorf("update timestamp: %w", err)
	}
	return affected(res, "timestamp", ts.ID)
}
