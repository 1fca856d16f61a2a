package store

import (
	"database/sql"
	"fmt"

	"github.com/lazypower/lifelog/internal/models"
)

const dateExistsMsg = "weather for this date already exists"

// CreateWeather records the day's weather. Only one record per user per
// date is allowed.
func (db *DB) CreateWeather(userID string, w *models.Weather) error {
	if err := w.Validate(); err != nil {
		return err
	}
	db.stamp(&w.Record, userID)
	_, err := db.Exec(`
		INSERT INTO weather (id, user_id, date, temperature_highest, temperature_lowest, rainy_percent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, w.ID, w.UserID, w.Date.String(), w.TemperatureHighest, w.TemperatureLowest, w.RainyPercent,
		toMS(w.CreatedAt), toMS(w.UpdatedAt))
	if isUniqueViolation(err) {
		return models.FieldError("date", dateExistsMsg)
	}
	if err != nil {
		return fmt.Errorf("create weather: %w", err)
	}
	return nil
}

func scanWeather(s scanner) (*models.Weather, error) {
	var w models.Weather
	var date string
	var created, updated int64
	if err := s.Scan(&w.ID, &w.UserID, &date, &w.TemperatureHighest, &w.TemperatureLowest,
		&w.RainyPercent, &created, &updated); err != nil {
		return nil, err
	}
	d, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}
	w.Date = d
	w.CreatedAt = fromMS(created)
	w.UpdatedAt = fromMS(updated)
	return &w, nil
}

const weatherColumns = `id, user_id, date, temperature_highest, temperature_lowest, rainy_percent, created_at, updated_at`

// GetWeather returns one of userID's weather records.
func (db *DB) GetWeather(userID, id string) (*models.Weather, error) {
	w, err := scanWeather(db.QueryRow(`SELECT `+weatherColumns+` FROM weather WHERE id = ? AND user_id = ?`, id, userID))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("weather %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get weather: %w", err)
	}
	return w, nil
}

// ListWeather returns userID's weather, latest date first.
func (db *DB) ListWeather(userID string, p Page) (*Paged[models.Weather], error) {
	total, err := db.count(db, `SELECT COUNT(*) FROM weather WHERE user_id = ?`, userID)
	if err != nil {
		return nil, fmt.Errorf("count weather: %w", err)
	}
	limit, offset := p.limitOffset(total)
	rows, err := db.Query(`SELECT `+weatherColumns+` FROM weather
		WHERE user_id = ?
		ORDER BY date DESC
		LIMIT ? OFFSET ?
	`, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list weather: %w", err)
	}
	defer rows.Close()

	var out []models.Weather
	for rows.Next() {
		w, err := scanWeather(rows)
		if err != nil {
			return nil, fmt.Errorf("scan weather: %w", err)
		}
		out = append(out, *w)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return newPaged(out, p, total), nil
}

// UpdateWeather rewrites a weather record.
func (db *DB) UpdateWeather(userID string, w *models.Weather) error {
	if err := w.Validate(); err != nil {
		return err
	}
	w.UserID = userID
	w.UpdatedAt = db.now()
	res, err := db.Exec(`
		UPDATE weather SET date = ?, temperature_highest = ?, temperature_lowest = ?, rainy_percent = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`, w.Date.String(), w.TemperatureHighest, w.TemperatureLowest, w.RainyPercent, toMS(w.UpdatedAt), w.ID, userID)
	if isUniqueViolation(err) {
		return models.FieldError("date", dateExistsMsg)
	}
	if err != nil {
		return fmt.Errorf("update weather: %w", err)
	}
	return affected(res, "weather", w.ID)
}
