package store

import (
	"database/sql"
	"fmt"
	"strings"

	"github.com/lazypower/lifelog/internal/models"
)

// CreateGenre inserts a note genre.
func (db *DB) CreateGenre(userID string, g *models.Genre) error {
	g.Name = strings.TrimSpace(g.Name)
	g.Language = strings.TrimSpace(g.Language)
	if err := g.Validate(); err != nil {
		return err
	}
	db.stamp(&g.Record, userID)
	_, err := db.Exec(`
		INSERT INTO genres (id, user_id, name, language, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, g.ID, g.UserID, g.Name, g.Language, toMS(g.CreatedAt), toMS(g.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create genre: %w", err)
	}
	return nil
}

func scanGenre(s scanner) (*models.Genre, error) {
	var g models.Genre
	var created, updated int64
	if err := s.Scan(&g.ID, &g.UserID, &g.Name, &g.Language, &created, &updated); err != nil {
		return nil, err
	}
	g.CreatedAt = fromMS(created)
	g.UpdatedAt = fromMS(updated)
	return &g, nil
}

// GetGenre returns one of userID's genres.
func (db *DB) GetGenre(userID, id string) (*models.Genre, error) {
	g, err := scanGenre(db.QueryRow(`
		SELECT id, user_id, name, language, created_at, updated_at
		FROM genres WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("genre %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get genre: %w", err)
	}
	return g, nil
}

// ListGenres returns userID's genres, newest first.
func (db *DB) ListGenres(userID string, p Page) (*Paged[models.Genre], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM genres WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count genres: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, name, language, created_at, updated_at
		FROM genres WHERE user_id = ?
		ORDER BY id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list genres: %w", err)
	}
	defer rows.Close()

	var out []models.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, fmt.Errorf("scan genre: %w", err)
		}
		out = append(out, *g)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateGenre rewrites a genre.
func (db *DB) UpdateGenre(userID string, g *models.Genre) error {
	g.Name = strings.TrimSpace(g.Name)
	g.Language = strings.TrimSpace(g.Language)
	if err := g.Validate(); err != nil {
		return err
	}
	g.UserID = userID
	g.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE genres SET name = ?, language = ?, updated_at = ? WHERE id = ? AND user_id = ?
	`, g.Name, g.Language, toMS(g.UpdatedAt), g.ID, userID)
	if err != nil {
		return fmt.Errorf("update genre: %w", err)
	}
	return affected(res, "genre", g.ID)
}

// CreateNote inserts a code note under one of userID's genres.
func (db *DB) CreateNote(userID string, n *models.Note) error {
	n.Title = strings.TrimSpace(n.Title)
	if err := n.Validate(); err != nil {
		return err
	}
	if err := owned(db, "genres", userID, n.GenreID); err != nil {
		return err
	}
	db.stamp(&n.Record, userID)
	_, err := db.Exec(`
		INSERT INTO notes (id, user_id, genre_id, title, code,
			is_reviewed_1, is_reviewed_2, is_reviewed_3, is_reviewed_4, is_reviewed_5,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, n.ID, n.UserID, n.GenreID, n.Title, n.Code,
		n.IsReviewed1, n.IsReviewed2, n.IsReviewed3, n.IsReviewed4, n.IsReviewed5,
		toMS(n.CreatedAt), toMS(n.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

const noteSelect = `
	SELECT n.id, n.user_id, n.genre_id, n.title, n.code,
		n.is_reviewed_1, n.is_reviewed_2, n.is_reviewed_3, n.is_reviewed_4, n.is_reviewed_5,
		n.created_at, n.updated_at, g.name, g.language
	FROM notes n JOIN genres g ON g.id = n.genre_id
`

func scanNote(s scanner) (*models.Note, error) {
	var n models.Note
	var created, updated int64
	err := s.Scan(&n.ID, &n.UserID, &n.GenreID, &n.Title, &n.Code,
		&n.IsReviewed1, &n.IsReviewed2, &n.IsReviewed3, &n.IsReviewed4, &n.IsReviewed5,
		&created, &updated, &n.GenreName, &n.GenreLanguage)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = fromMS(created)
	n.UpdatedAt = fromMS(updated)
	return &n, nil
}

// GetNote returns one of userID's notes with its genre.
func (db *DB) GetNote(userID, id string) (*models.Note, error) {
	n, err := scanNote(db.QueryRow(noteSelect+`WHERE n.id = ? AND n.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// ListNotes returns userID's notes, newest first.
func (db *DB) ListNotes(userID string, p Page) (*Paged[models.Note], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM notes WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count notes: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(noteSelect+`
		WHERE n.user_id = ?
		ORDER BY n.created_at DESC, n.id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	defer rows.Close()

	var out []models.Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scan note: %w", err)
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateNote rewrites a note including its review flags.
func (db *DB) UpdateNote(userID string, n *models.Note) error {
	n.Title = strings.TrimSpace(n.Title)
	if err := n.Validate(); err != nil {
		return err
	}
	if err := owned(db, "genres", userID, n.GenreID); err != nil {
		return err
	}
	n.UserID = userID
	n.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE notes SET genre_id = ?, title = ?, code = ?,
			is_reviewed_1 = ?, is_reviewed_2 = ?, is_reviewed_3 = ?, is_reviewed_4 = ?, is_reviewed_5 = ?,
			updated_at = ?
		WHERE id = ? AND user_id = ?
	`, n.GenreID, n.Title, n.Code,
		n.IsReviewed1, n.IsReviewed2, n.IsReviewed3, n.IsReviewed4, n.IsReviewed5,
		toMS(n.UpdatedAt), n.ID, userID)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return affected(res, "note", n.ID)
}
