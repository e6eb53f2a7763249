package model

import "time"

// UserRole separates operators from administrators.
type UserRole string

const (
	RoleAdmin UserRole = "ADMIN"
	RoleUser  UserRole = "USER"
)

// User is an operator account. Passwords travel through the bridge as plain
// values, mirroring the spreadsheet user sheet.
type User struct {
	Username  string    `gorm:"primaryKey;size:128" json:"username"`
	Password  string    `gorm:"size:128" json:"password,omitempty"`
	Name      string    `gorm:"size:256;not null" json:"name"`
	Role      UserRole  `gorm:"size:16;not null" json:"role"`
	UpdatedAt time.Time `json:"-"`
}

// Sanitized returns a copy safe to hand to the UI.
func (u User) Sanitized() User {
	u.Password = ""
	return u
}

// Setting is one key-value pair of shared configuration distributed through
// the bridge (e.g. the advisor API key).
type Setting struct {
	Key       string    `gorm:"primaryKey;size:128"`
	Value     string    `gorm:"not null"`
	UpdatedAt time.Time
}
