package repository

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"riseup/model"
)

// ErrDuplicateUser is returned when a unique constraint on email or username fires.
var ErrDuplicateUser = errors.New("user with this email or username already exists")

// UserRepository defines the interface for user data operations.
type UserRepository interface {
	CreateUser(user *model.User) (int64, error)
	GetUserByID(id int64) (*model.User, error)
	GetUserByEmail(email string) (*model.User, error)
	GetUserByUsername(username string) (*model.User, error)
	UpdateProfile(userID int64, firstName, lastName, username, bio, profilePicture string) error
	UpdatePassword(email, passwordHash string) error
}

// mysqlUserRepository implements UserRepository for MySQL.
type mysqlUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new mysqlUserRepository.
func NewMySQLUserRepository(db *sql.DB) UserRepository {
	return &mysqlUserRepository{db: db}
}

const userColumns = "id, email, username, password_hash, user_type, first_name, last_name, profile_picture, bio, monthly_listeners, total_earnings, is_verified, created_at, updated_at"

func scanUser(row *sql.Row) (*model.User, error) {
	user := &model.User{}
	err := row.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.UserType,
		&user.FirstName, &user.LastName, &user.ProfilePicture, &user.Bio,
		&user.MonthlyListeners, &user.TotalEarnings, &user.IsVerified,
		&user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil // User not found
		}
		return nil, fmt.Errorf("failed to scan user row: %w", err)
	}
	return user, nil
}

// CreateUser adds a new user to the database.
func (r *mysqlUserRepository) CreateUser(user *model.User) (int64, error) {
	query := "INSERT INTO users (email, username, password_hash, user_type, first_name, last_name, profile_picture, bio) VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare create user statement: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.Exec(user.Email, user.Username, user.PasswordHash, user.UserType,
		user.FirstName, user.LastName, user.ProfilePicture, user.Bio)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return 0, ErrDuplicateUser
		}
		return 0, fmt.Errorf("failed to execute create user statement: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get last insert ID for user: %w", err)
	}
	return id, nil
}

// GetUserByID retrieves a user by their ID.
func (r *mysqlUserRepository) GetUserByID(id int64) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE id = ?"
	return scanUser(r.db.QueryRow(query, id))
}

// GetUserByEmail retrieves a user by their email address.
func (r *mysqlUserRepository) GetUserByEmail(email string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE email = ?"
	return scanUser(r.db.QueryRow(query, email))
}

// GetUserByUsername retrieves a user by their username.
func (r *mysqlUserRepository) GetUserByUsername(username string) (*model.User, error) {
	query := "SELECT " + userColumns + " FROM users WHERE username = ?"
	return scanUser(r.db.QueryRow(query, username))
}

// UpdateProfile updates the editable profile fields. Empty strings clear the
// optional columns, matching the original profile form semantics.
func (r *mysqlUserRepository) UpdateProfile(userID int64, firstName, lastName, username, bio, profilePicture string) error {
	query := "UPDATE users SET first_name = ?, last_name = ?, username = ?, bio = ?, profile_picture = ?, updated_at = NOW() WHERE id = ?"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare update profile statement: %w", err)
	}
	defer stmt.Close()

	_, err = stmt.Exec(nullable(firstName), nullable(lastName), username, nullable(bio), nullable(profilePicture), userID)
	if err != nil {
		if strings.Contains(err.Error(), "Duplicate entry") {
			return ErrDuplicateUser
		}
		return fmt.Errorf("failed to execute update profile statement: %w", err)
	}
	return nil
}

// UpdatePassword replaces the stored password hash for the given email.
func (r *mysqlUserRepository) UpdatePassword(email, passwordHash string) error {
	query := "UPDATE users SET password_hash = ?, updated_at = NOW() WHERE email = ?"
	stmt, err := r.db.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare update password statement: %w", err)
	}
	defer stmt.Close()

	if _, err := stmt.Exec(passwordHash, email); err != nil {
		return fmt.Errorf("failed to execute update password statement: %w", err)
	}
	return nil
}

func nullable(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
