package models

import (
	"strings"
	"time"
)

const maxNameLen = 30

// User is the account that owns every journal record.
type User struct {
	ID           string     `json:"id" yaml:"id"`
	Email        string     `json:"email" yaml:"email"`
	FirstName    string     `json:"first_name" yaml:"first_name"`
	LastName     string     `json:"last_name" yaml:"last_name"`
	IsStaff      bool       `json:"is_staff" yaml:"is_staff"`
	IsSuperuser  bool       `json:"is_superuser" yaml:"is_superuser"`
	IsActive     bool       `json:"is_active" yaml:"is_active"`
	DateJoined   time.Time  `json:"date_joined" yaml:"date_joined"`
	LastLogin    *time.Time `json:"last_login,omitempty" yaml:"last_login,omitempty"`
	PasswordHash string     `json:"-" yaml:"-"`
}

// NormalizeEmail lower-cases the domain part of an address and leaves the
// local part alone, since mailbox names may be case sensitive.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}

// Validate checks the declarative constraints on a user record.
func (u *User) Validate() error {
	v := ValidationErrors{}
	if strings.TrimSpace(u.Email) == "" {
		v.Add("email", "this field is required")
	} else if at := strings.LastIndex(u.Email, "@"); at <= 0 || at == len(u.Email)-1 {
		v.Add("email", "enter a valid email address")
	}
	v.maxText("first_name", u.FirstName, maxNameLen)
	v.maxText("last_name", u.LastName, maxNameLen)
	return v.Err()
}

// FullName joins first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
