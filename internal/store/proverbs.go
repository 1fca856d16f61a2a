package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/lifelog/internal/models"
)

// CreateProverb inserts a proverb.
func (db *DB) CreateProverb(userID string, p *models.Proverb) error {
	p.Content = strings.TrimSpace(p.Content)
	if err := p.Validate(); err != nil {
		return err
	}
	db.stamp(&p.Record, userID)
	_, err := db.Exec(`
		INSERT INTO proverbs (id, user_id, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, p.ID, p.UserID, p.Content, toMS(p.CreatedAt), toMS(p.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create proverb: %w", err)
	}
	return nil
}

func scanProverb(s scanner) (*models.Proverb, error) {
	var p models.Proverb
	var created, updated int64
	if err := s.Scan(&p.ID, &p.UserID, &p.Content, &created, &updated); err != nil {
		return nil, err
	}
	p.CreatedAt = fromMS(created)
	p.UpdatedAt = fromMS(updated)
	return &p, nil
}

// GetProverb returns one of userID's proverbs.
func (db *DB) GetProverb(userID, id string) (*models.Proverb, error) {
	p, err := scanProverb(db.QueryRow(`
		SELECT id, user_id, content, created_at, updated_at
		FROM proverbs WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("proverb %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get proverb: %w", err)
	}
	return p, nil
}

// RandomProverb picks one of userID's proverbs uniformly at random.
func (db *DB) RandomProverb(userID string) (*models.Proverb, error) {
	p, err := scanProverb(db.QueryRow(`
		SELECT id, user_id, content, created_at, updated_at
		FROM proverbs WHERE user_id = ?
		ORDER BY RANDOM() LIMIT 1
	`, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("random proverb: %w", ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("random proverb: %w", err)
	}
	return p, nil
}

// ListProverbs returns userID's proverbs, newest first.
func (db *DB) ListProverbs(userID string, pg Page) (*Paged[models.Proverb], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM proverbs WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count proverbs: %w", err)
	}
	limit, offset := pg.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, content, created_at, updated_at
		FROM proverbs WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list proverbs: %w", err)
	}
	defer rows.Close()

	var out []models.Proverb
	for rows.Next() {
		p, err := scanProverb(rows)
		if err != nil {
			return nil, fmt.Errorf("scan proverb: %w", err)
		}
		out = append(out, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, pg, total), nil
}

// UpdateProverb rewrites a proverb.
func (db *DB) UpdateProverb(userID string, p *models.Proverb) error {
	p.Content = strings.TrimSpace(p.Content)
	if err := p.Validate(); err != nil {
		return err
	}
	p.UserID = userID
	p.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE proverbs SET content = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, p.Content, toMS(p.UpdatedAt), p.ID, userID)
	if err != nil {
		return fmt.Errorf("update proverb: %w", err)
	}
	return affected(res, "proverb", p.ID)
}
