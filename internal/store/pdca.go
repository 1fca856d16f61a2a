package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/lifelog/internal/models"
)

// CreateTheme inserts a PDCA theme.
func (db *DB) CreateTheme(userID string, t *models.Theme) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return err
	}
	db.stamp(&t.Record, userID)
	_, err := db.Exec(`
		INSERT INTO themes (id, user_id, title, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, t.ID, t.UserID, t.Title, toMS(t.CreatedAt), toMS(t.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create theme: %w", err)
	}
	return nil
}

func scanTheme(s scanner) (*models.Theme, error) {
	var t models.Theme
	var created, updated int64
	if err := s.Scan(&t.ID, &t.UserID, &t.Title, &created, &updated); err != nil {
		return nil, err
	}
	t.CreatedAt = fromMS(created)
	t.UpdatedAt = fromMS(updated)
	return &t, nil
}

// GetTheme returns one of userID's themes.
func (db *DB) GetTheme(userID, id string) (*models.Theme, error) {
	t, err := scanTheme(db.QueryRow(`
		SELECT id, user_id, title, created_at, updated_at
		FROM themes WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("theme %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}
	return t, nil
}

// ListThemes returns userID's themes, newest first.
func (db *DB) ListThemes(userID string, p Page) (*Paged[models.Theme], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM themes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count themes: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, title, created_at, updated_at
		FROM themes WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list themes: %w", err)
	}
	defer rows.Close()

	var themes []models.Theme
	for rows.Next() {
		t, err := scanTheme(rows)
		if err != nil {
			return nil, fmt.Errorf("scan theme: %w", err)
		}
		themes = append(themes, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(themes, p, total), nil
}

// UpdateTheme retitles a theme.
func (db *DB) UpdateTheme(userID string, t *models.Theme) error {
	t.Title = strings.TrimSpace(t.Title)
	if err := t.Validate(); err != nil {
		return err
	}
	t.UserID = userID
	t.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE themes SET title = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, t.Title, toMS(t.UpdatedAt), t.ID, userID)
	if err != nil {
		return fmt.Errorf("update theme: %w", err)
	}
	return affected(res, "theme", t.ID)
}

// CreatePDC inserts a plan/check entry under one of userID's themes.
func (db *DB) CreatePDC(userID string, p *models.PDC) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := owned(db, "themes", userID, p.ThemeID); err != nil {
		return err
	}
	db.stamp(&p.Record, userID)
	_, err := db.Exec(`
		INSERT INTO pdcs (id, user_id, theme_id, plan, is_done, check_text, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.ThemeID, p.Plan, p.IsDone, p.Check, toMS(p.CreatedAt), toMS(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create pdc: %w", err)
	}
	return nil
}

const pdcSelect = `
	SELECT p.id, p.user_id, p.theme_id, p.plan, p.is_done, p.check_text, p.created_at, p.updated_at, t.title
	FROM pdcs p JOIN themes t ON t.id = p.theme_id
`

func scanPDC(s scanner) (*models.PDC, error) {
	var p models.PDC
	var created, updated int64
	if err := s.Scan(&p.ID, &p.UserID, &p.ThemeID, &p.Plan, &p.IsDone, &p.Check, &created, &updated, &p.ThemeTitle); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMS(created)
	p.UpdatedAt = fromMS(updated)
	return &p, nil
}

// GetPDC returns one of userID's plan/check entries.
func (db *DB) GetPDC(userID, id string) (*models.PDC, error) {
	p, err := scanPDC(db.QueryRow(pdcSelect+`WHERE p.id = ? AND p.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("pdc %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get pdc: %w", err)
	}
	return p, nil
}

// ListPDCs returns userID's entries whose is_done flag equals done,
// newest first.
func (db *DB) ListPDCs(userID string, done bool, pg Page) (*Paged[models.PDC], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM pdcs WHERE user_id = ? AND is_done = ?`, userID, done)
	if err != nil {
		return nil, fmt.Errorf("count pdcs: %w", err)
	}
	limit, offset := pg.limitOffset(total)
	rows, err := db.Query(pdcSelect+`
		WHERE p.user_id = ? AND p.is_done = ?
		ORDER BY p.id DESC
		LIMIT ? OFFSET ?
	`, userID, done, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list pdcs: %w", err)
	}
	defer rows.Close()

	var out []models.PDC
	for rows.Next() {
		p, err := scanPDC(rows)
		if err != nil {
			return nil, fmt.Errorf("scan pdc: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, pg, total), nil
}

// UpdatePDC rewrites a plan/check entry.
func (db *DB) UpdatePDC(userID string, p *models.PDC) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if err := owned(db, "themes", userID, p.ThemeID); err != nil {
		return err
	}
	p.UserID = userID
	p.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE pdcs SET theme_id = ?, plan = ?, is_done = ?, check_text = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, p.ThemeID, p.Plan, p.IsDone, p.Check, toMS(p.UpdatedAt), p.ID, userID)
	if err != nil {
		return fmt.Errorf("update pdc: %w", err)
	}
	return affected(res, "pdc", p.ID)
}
