package model

import (
	"database/sql"
	"time"
)

// User types. Fans listen; creators also publish tracks and see earnings.
const (
	UserTypeFan     = "fan"
	UserTypeCreator = "creator"
)

// User represents an account in the system.
type User struct {
	ID               int64          `json:"id"`
	Email            string         `json:"email"`
	Username         string         `json:"username"`
	PasswordHash     string         `json:"-"` // Not exposed in API responses
	UserType         string         `json:"userType"` // fan or creator
	FirstName        sql.NullString `json:"firstName,omitempty"`
	LastName         sql.NullString `json:"lastName,omitempty"`
	ProfilePicture   sql.NullString `json:"profilePicture,omitempty"`
	Bio              sql.NullString `json:"bio,omitempty"`
	MonthlyListeners int64          `json:"monthlyListeners"`
	TotalEarnings    string         `json:"totalEarnings"` // Decimal string, e.g. "0.00"
	IsVerified       bool           `json:"isVerified"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}
