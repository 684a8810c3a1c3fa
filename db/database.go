package db

import (
	"database/sql"
	"fmt"
	"log"

	"riseup/config"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
)

var DB *sql.DB

// ConnectDB establishes a connection to the database.
func ConnectDB(cfg *config.Config) error {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName)

	var err error
	DB, err = sql.Open("mysql", dsn)
	if err != nil {
		return fmt.Errorf("failed to open database connection: %w", err)
	}

	if err = DB.Ping(); err != nil {
		DB.Close()
		return fmt.Errorf("failed to ping database: %w", err)
	}

	log.Println("Successfully connected to the database.")
	return nil
}

// InitDB initializes the database schema, creating tables if they don't
// exist, and seeds the default catalog. Playlist and like tables are managed
// by GORM auto-migration (see gorm.go).
func InitDB() error {
	if err := createUsersTable(); err != nil {
		return err
	}
	if err := createTracksTable(); err != nil {
		return err
	}
	if err := seedDefaultTrack(); err != nil {
		return err
	}

	log.Println("Database initialization completed.")
	return nil
}

func createUsersTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id INT AUTO_INCREMENT PRIMARY KEY,
		email VARCHAR(255) NOT NULL UNIQUE,
		username VARCHAR(100) NOT NULL UNIQUE,
		password_hash VARCHAR(255) NOT NULL,
		user_type VARCHAR(20) NOT NULL DEFAULT 'fan',
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		profile_picture VARCHAR(767),
		bio TEXT,
		monthly_listeners INT NOT NULL DEFAULT 0,
		total_earnings VARCHAR(20) NOT NULL DEFAULT '0.00',
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create users table: %w", err)
	}
	log.Println("Users table initialized successfully (or already exists).")
	return nil
}

func createTracksTable() error {
	query := `
	CREATE TABLE IF NOT EXISTS tracks (
		id INT AUTO_INCREMENT PRIMARY KEY,
		creator_id INT,
		title VARCHAR(200) NOT NULL,
		artist_name VARCHAR(200) NOT NULL DEFAULT '',
		album VARCHAR(200),
		genre VARCHAR(100),
		audio_url VARCHAR(767) NOT NULL,
		cover_url VARCHAR(767),
		video_url VARCHAR(767),
		duration INT,
		plays INT NOT NULL DEFAULT 0,
		likes INT NOT NULL DEFAULT 0,
		price VARCHAR(20),
		is_admin_track BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
		updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP,
		CONSTRAINT fk_creator_tracks FOREIGN KEY (creator_id) REFERENCES users(id) ON DELETE SET NULL
	);
	`
	_, err := DB.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to create tracks table: %w", err)
	}
	log.Println("Tracks table initialized successfully (or already exists).")
	return nil
}

// seedDefaultTrack inserts the stock demo track once, so a fresh install has
// something playable in the catalog.
func seedDefaultTrack() error {
	const title = "Ocean Breeze"

	var existingID int64
	err := DB.QueryRow("SELECT id FROM tracks WHERE title = ? AND is_admin_track = TRUE", title).Scan(&existingID)
	if err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("failed to check for default track: %w", err)
	}
	if err == nil {
		log.Printf("Default track %q already exists with ID %d. Skipping seed.", title, existingID)
		return nil
	}

	_, err = DB.Exec(
		`INSERT INTO tracks (title, artist_name, album, genre, audio_url, duration, is_admin_track)
		 VALUES (?, ?, ?, ?, ?, ?, TRUE)`,
		title, "JT Wayne", "Beat Collection", "Instrumental",
		"/attached_assets/ocean-breeze-beat-by-jtwayne-213318_1755170104000.mp3", 155,
	)
	if err != nil {
		return fmt.Errorf("failed to seed default track: %w", err)
	}
	log.Printf("Default track %q seeded.", title)
	return nil
}
