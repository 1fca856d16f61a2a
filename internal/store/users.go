package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lazypower/lifelog/internal/ids"
	"github.com/lazypower/lifelog/internal/models"
)

const userColumns = `id, email, first_name, last_name, password_hash, is_staff, is_superuser, is_active, date_joined, last_login`

func scanUser(s scanner) (*models.User, error) {
	var u models.User
	var joined int64
	var lastLogin sql.NullInt64
	err := s.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.IsStaff, &u.IsSuperuser, &u.IsActive, &joined, &lastLogin)
	if err != nil {
		return nil, err
	}
	u.DateJoined = fromMS(joined)
	if lastLogin.Valid {
		t := fromMS(lastLogin.Int64)
		u.LastLogin = &t
	}
	return &u, nil
}

// CreateUser inserts a user. The caller is responsible for hashing the
// password; see auth.Manager.
func (db *DB) CreateUser(u *models.User) error {
	u.Email = models.NormalizeEmail(u.Email)
	if err := u.Validate(); err != nil {
		return err
	}
	if u.ID == "" {
		u.ID = ids.New()
	}
	if u.DateJoined.IsZero() {
		u.DateJoined = db.now()
	}

	_, err := db.Exec(`
		INSERT INTO users (`+userColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, NULL)
	`, u.ID, u.Email, u.FirstName, u.LastName, u.PasswordHash,
		u.IsStaff, u.IsSuperuser, u.IsActive, toMS(u.DateJoined))
	if isUniqueViolation(err) {
		return models.FieldError("email", "user with this email address already exists")
	}
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

// GetUser returns a user by id.
func (db *DB) GetUser(id string) (*models.User, error) {
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// GetUserByEmail returns a user by (normalized) email.
func (db *DB) GetUserByEmail(email string) (*models.User, error) {
	email = models.NormalizeEmail(email)
	u, err := scanUser(db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = ?`, email))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("user %s: %w", email, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get user by email: %w", err)
	}
	return u, nil
}

// ListUsers returns all users ordered by join date.
func (db *DB) ListUsers() ([]models.User, error) {
	rows, err := db.Query(`SELECT ` + userColumns + ` FROM users ORDER BY date_joined, id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// UpdateUserProfile updates the editable profile fields and flags.
func (db *DB) UpdateUserProfile(u *models.User) error {
	if err := u.Validate(); err != nil {
		return err
	}
	res, err := db.Exec(`
		UPDATE users SET first_name = ?, last_name = ?, is_staff = ?, is_superuser = ?, is_active = ?
		WHERE id = ?
	`, u.FirstName, u.LastName, u.IsStaff, u.IsSuperuser, u.IsActive, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return affected(res, "user", u.ID)
}

// SetPasswordHash replaces a user's password hash.
func (db *DB) SetPasswordHash(userID, hash string) error {
	res, err := db.Exec(`UPDATE users SET password_hash = ? WHERE id = ?`, hash, userID)
	if err != nil {
		return fmt.Errorf("set password: %w", err)
	}
	return affected(res, "user", userID)
}

// TouchLastLogin records a successful login.
func (db *DB) TouchLastLogin(userID string, at time.Time) error {
	res, err := db.Exec(`UPDATE users SET last_login = ? WHERE id = ?`, toMS(at), userID)
	if err != nil {
		return fmt.Errorf("touch last login: %w", err)
	}
	return affected(res, "user", userID)
}
