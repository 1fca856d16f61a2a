package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/lifelog/internal/models"
)

// CreateLogTitle inserts a log category.
func (db *DB) CreateLogTitle(userID string, t *models.LogTitle) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return err
	}
	db.stamp(&t.Record, userID)
	_, err := db.Exec(`
		INSERT INTO log_titles (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, toMS(t.CreatedAt), toMS(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create log title: %w", err)
	}
	return nil
}

func scanLogTitle(s scanner) (*models.LogTitle, error) {
	var t models.LogTitle
	var created, updated int64
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &created, &updated); err != nil {
		return nil, err
	}
	t.CreatedAt = fromMS(created)
	t.UpdatedAt = fromMS(updated)
	return &t, nil
}

// GetLogTitle returns one of userID's log categories.
func (db *DB) GetLogTitle(userID, id string) (*models.LogTitle, error) {
	t, err := scanLogTitle(db.QueryRow(`
		SELECT id, user_id, title, created_at, updated_at
		FROM log_titles WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("log title %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get log title: %w", err)
	}
	return t, nil
}

// ListLogTitles returns userID's log categories, newest first.
func (db *DB) ListLogTitles(userID string, p Page) (*Paged[models.LogTitle], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM log_titles WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count log titles: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, title, created_at, updated_at
		FROM log_titles WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list log titles: %w", err)
	}
	defer rows.Close()

	var out []models.LogTitle
	for rows.Next() {
		t, err := scanLogTitle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log title: %w", err)
		}
		out = append(out, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateLogTitle renames a log category.
func (db *DB) UpdateLogTitle(userID string, t *models.LogTitle) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return err
	}
	t.UserID = userID
	t.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE log_titles SET title = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, t.Title, toMS(t.UpdatedAt), t.ID, userID)
	if err != nil {
		return fmt.Errorf("update log title: %w", err)
	}
	return affected(res, "log title", t.ID)
}

// CreateLog inserts a start/finish span under one of userID's categories.
func (db *DB) CreateLog(userID string, l *models.Log) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := owned(db, "log_titles", userID, l.TitleID); err != nil {
		return err
	}
	db.stamp(&l.Record, userID)
	_, err := db.Exec(`
		INSERT INTO logs (id, user_id, title_id, start, finish, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, l.ID, l.UserID, l.TitleID, toMS(l.Start), toMS(l.Finish), toMS(l.CreatedAt), toMS(l.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create log: %w", err)
	}
	return nil
}

const logSelect = `
	SELECT l.id, l.user_id, l.title_id, l.start, l.finish, l.created_at, l.updated_at, t.title
	FROM logs l JOIN log_titles t ON t.id = l.title_id
`

func scanLog(s scanner) (*models.Log, error) {
	var l models.Log
	var start, finish, created, updated int64
	if err := s.Scan(&l.ID, &l.UserID, &l.TitleID, &start, &finish, &created, &updated, &l.Title); err != nil {
		return nil, err
	}
	l.Start = fromMS(start)
	l.Finish = fromMS(finish)
	l.CreatedAt = fromMS(created)
	l.UpdatedAt = fromMS(updated)
	return &l, nil
}

func (db *DB) queryLogs(query string, args ...any) ([]models.Log, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Log
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, fmt.Errorf("scan log: %w", err)
		}
		out = append(out, *l)
	}
	return out, rows.Err()
}

// GetLog returns one of userID's logs.
func (db *DB) GetLog(userID, id string) (*models.Log, error) {
	l, err := scanLog(db.QueryRow(logSelect+`WHERE l.id = ? AND l.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("log %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get log: %w", err)
	}
	return l, nil
}

// ListLogs returns userID's logs, latest start first.
func (db *DB) ListLogs(userID string, p Page) (*Paged[models.Log], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM logs WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count logs: %w", err)
	}
	limit, offset := p.limitOffset(total)
	logs, err := db.queryLogs(logSelect+`
		WHERE l.user_id = ?
		ORDER BY l.start DESC, l.id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list logs: %w", err)
	}
	return newPaged(logs, p, total), nil
}

// UpdateLog rewrites a log span.
func (db *DB) UpdateLog(userID string, l *models.Log) error {
	if err := l.Validate(); err != nil {
		return err
	}
	if err := owned(db, "log_titles", userID, l.TitleID); err != nil {
		return err
	}
	l.UserID = userID
	l.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE logs SET title_id = ?, start = ?, finish = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, l.TitleID, toMS(l.Start), toMS(l.Finish), toMS(l.UpdatedAt), l.ID, userID)
	if err != nil {
		return fmt.Errorf("update log: %w", err)
	}
	return affected(res, "log", l.ID)
}

// SleepIndex returns the newest limit logs filed under the category named
// title. A non-positive limit returns all of them.
func (db *DB) SleepIndex(userID, title string, limit int) ([]models.Log, error) {
	if limit <= 0 {
		limit = -1
	}
	logs, err := db.queryLogs(logSelect+`
		WHERE l.user_id = ? AND t.title = ?
		ORDER BY l.start DESC, l.id DESC
		LIMIT ?
	`, userID, title, limit)
	if err != nil {
		return nil, fmt.Errorf("sleep index: %w", err)
	}
	return logs, nil
}
