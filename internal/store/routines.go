package store

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/lazypower/lifelog/internal/models"
)

// CreateRoutine inserts a routine item.
func (db *DB) CreateRoutine(userID string, r *models.Routine) error {
	r.Name = strings.TrimSpace(r.Name)
	if err := r.Validate(); err != nil {
		return err
	}
	db.stamp(&r.Record, userID)
	_, err := db.Exec(`
		INSERT INTO routines (id, user_id, sort_order, name, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, r.ID, r.UserID, r.Order, r.Name, toMS(r.CreatedAt), toMS(r.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create routine: %w", err)
	}
	return nil
}

func scanRoutine(s scanner) (*models.Routine, error) {
	var r models.Routine
	var created, updated int64
	if err := s.Scan(&r.ID, &r.UserID, &r.Order, &r.Name, &created, &updated); err != nil {
		return nil, err
	}
	r.CreatedAt = fromMS(created)
	r.UpdatedAt = fromMS(updated)
	return &r, nil
}

// GetRoutine returns one of userID's routines.
func (db *DB) GetRoutine(userID, id string) (*models.Routine, error) {
	r, err := scanRoutine(db.QueryRow(`
		SELECT id, user_id, sort_order, name, created_at, updated_at
		FROM routines WHERE id = ? AND user_id = ?
	`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("routine %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get routine: %w", err)
	}
	return r, nil
}

// ListRoutines returns userID's routines in their configured order.
func (db *DB) ListRoutines(userID string, p Page) (*Paged[models.Routine], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM routines WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count routines: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`
		SELECT id, user_id, sort_order, name, created_at, updated_at
		FROM routines WHERE user_id = ?
		ORDER BY sort_order, id
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list routines: %w", err)
	}
	defer rows.Close()

	var out []models.Routine
	for rows.Next() {
		r, err := scanRoutine(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine: %w", err)
		}
		out = append(out, *r)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// NextRoutineOrder returns one past the user's highest routine order.
func (db *DB) NextRoutineOrder(userID string) (int, error) {
	var highest sql.NullInt64
	if err := db.QueryRow(`SELECT MAX(sort_order) FROM routines WHERE user_id = ?`, userID).Scan(&highest); err != nil {
		return 0, fmt.Errorf("next routine order: %w", err)
	}
	if !highest.Valid {
		return 1, nil
	}
	return int(highest.Int64) + 1, nil
}

// UpdateRoutine renames or reorders a routine.
func (db *DB) UpdateRoutine(userID string, r *models.Routine) error {
	r.Name = strings.TrimSpace(r.Name)
	if err := r.Validate(); err != nil {
		return err
	}
	r.UserID = userID
	r.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE routines SET sort_order = ?, name = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, r.Order, r.Name, toMS(r.UpdatedAt), r.ID, userID)
	if err != nil {
		return fmt.Errorf("update routine: %w", err)
	}
	return affected(res, "routine", r.ID)
}

// CreateRoutineStamp marks a routine done at s.At.
func (db *DB) CreateRoutineStamp(userID string, s *models.RoutineStamp) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := owned(db, "routines", userID, s.RoutineID); err != nil {
		return err
	}
	db.stamp(&s.Record, userID)
	_, err := db.Exec(`
		INSERT INTO routine_stamps (id, user_id, routine_id, at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, s.ID, s.UserID, s.RoutineID, toMS(s.At), toMS(s.CreatedAt), toMS(s.UpdatedAt))
	if err != nil {
		return fmt.Errorf("create routine stamp: %w", err)
	}
	return nil
}

const routineStampSelect = `
	SELECT s.id, s.user_id, s.routine_id, s.at, s.created_at, s.updated_at, r.name
	FROM routine_stamps s JOIN routines r ON r.id = s.routine_id
`

func scanRoutineStamp(sc scanner) (*models.RoutineStamp, error) {
	var s models.RoutineStamp
	var at, created, updated int64
	if err := sc.Scan(&s.ID, &s.UserID, &s.RoutineID, &at, &created, &updated, &s.RoutineName); err != nil {
		return nil, err
	}
	s.At = fromMS(at)
	s.CreatedAt = fromMS(created)
	s.UpdatedAt = fromMS(updated)
	return &s, nil
}

// GetRoutineStamp returns one of userID's routine stamps.
func (db *DB) GetRoutineStamp(userID, id string) (*models.RoutineStamp, error) {
	s, err := scanRoutineStamp(db.QueryRow(routineStampSelect+`WHERE s.id = ? AND s.user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("routine stamp %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get routine stamp: %w", err)
	}
	return s, nil
}

// ListRoutineStamps returns userID's stamps, latest first.
func (db *DB) ListRoutineStamps(userID string, p Page) (*Paged[models.RoutineStamp], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM routine_stamps WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count routine stamps: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(routineStampSelect+`
		WHERE s.user_id = ?
		ORDER BY s.at DESC, s.id DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list routine stamps: %w", err)
	}
	defer rows.Close()

	var out []models.RoutineStamp
	for rows.Next() {
		s, err := scanRoutineStamp(rows)
		if err != nil {
			return nil, fmt.Errorf("scan routine stamp: %w", err)
		}
		out = append(out, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateRoutineStamp moves a stamp or reassigns it to another routine.
func (db *DB) UpdateRoutineStamp(userID string, s *models.RoutineStamp) error {
	if err := s.Validate(); err != nil {
		return err
	}
	if err := owned(db, "routines", userID, s.RoutineID); err != nil {
		return err
	}
	s.UserID = userID
	s.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE routine_stamps SET routine_id = ?, at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, s.RoutineID, toMS(s.At), toMS(s.UpdatedAt), s.ID, userID)
	if err != nil {
		return fmt.Errorf("update routine stamp: %w", err)
	}
	return affected(res, "routine stamp", s.ID)
}

// RoutineStampTable counts stamps per routine per day for the days
// starting at from, with days bucketed in loc.
func (db *DB) RoutineStampTable(userID string, from models.Date, days int, loc *time.Location) (*models.RoutineTable, error) {
	if days < 1 {
		days = 1
	}
	routines, err := db.ListRoutines(userID, All)
	if err != nil {
		return nil, err
	}

	start := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, days)

	table := &models.RoutineTable{
		Dates:    make([]models.Date, days),
		Routines: routines.Items,
		Counts:   make(map[string][]int, len(routines.Items)),
	}
	index := make(map[string]int, days)
	for i := range days {
		d := models.NewDate(start.AddDate(0, 0, i))
		table.Dates[i] = d
		index[d.String()] = i
	}
	for _, r := range routines.Items {
		table.Counts[r.ID] = make([]int, days)
	}

	rows, err := db.Query(`
		SELECT routine_id, at FROM routine_stamps
		WHERE user_id = ? AND at >= ? AND at < ?
	`, userID, toMS(start), toMS(end))
	if err != nil {
		return nil, fmt.Errorf("routine stamp table: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var routineID string
		var at int64
		if err := rows.Scan(&routineID, &at); err != nil {
			return nil, fmt.Errorf("scan routine stamp: %w", err)
		}
		i, ok := index[models.NewDate(fromMS(at).In(loc)).String()]
		if !ok {
			continue
		}
		if counts, ok := table.Counts[routineID]; ok {
			counts[i]++
		}
	}
	return table, rows.Err()
}
