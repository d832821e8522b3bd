package database

import (
	"os"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// APIKey is a team's key to the planning endpoints
type APIKey struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	Key       string         `gorm:"unique;not null" json:"-"`
	Team      string         `gorm:"not null" json:"team"`
	Preview   string         `json:"preview"`
	RateLimit int            `gorm:"default:10000" json:"rate_limit"`
	CreatedAt time.Time      `json:"created_at"`
	LastUsed  *time.Time     `json:"last_used"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// APIUsage counts planning requests per key per day
type APIUsage struct {
	ID           uint   `gorm:"primaryKey" json:"id"`
	KeyID        uint   `gorm:"uniqueIndex:idx_key_date;not null" json:"key_id"`
	Date         string `gorm:"uniqueIndex:idx_key_date;not null" json:"date"`
	RequestCount int    `gorm:"default:0" json:"request_count"`
	TotalDays    int    `gorm:"default:0" json:"total_days"`
	TotalPeople  int    `gorm:"default:0" json:"total_people"`
}

// AdminUser can log in to manage keys
type AdminUser struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Username     string    `gorm:"unique;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// Planning is a stored month of assignments, one per key and month.
// It is the continuity source for the following month.
type Planning struct {
	ID          uint                `gorm:"primaryKey" json:"id"`
	RunID       string              `gorm:"not null" json:"run_id"`
	KeyID       uint                `gorm:"uniqueIndex:idx_key_month;not null" json:"key_id"`
	Year        int                 `gorm:"uniqueIndex:idx_key_month;not null" json:"year"`
	Month       int                 `gorm:"uniqueIndex:idx_key_month;not null" json:"month"`
	Assignments map[string][]string `gorm:"serializer:json;type:text" json:"planning"`
	Steps       int                 `json:"steps"`
	Repairs     int                 `json:"repairs"`
	CreatedAt   time.Time           `json:"created_at"`
}

// Open connects to Postgres when dsn is set, otherwise to SQLite at path,
// and migrates the schema.
func Open(dsn, path string) (*gorm.DB, error) {
	var db *gorm.DB
	var err error

	if dsn != "" {
		db, err = gorm.Open(postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true,
		}), &gorm.Config{
			PrepareStmt: false,
		})
	} else {
		db, err = gorm.Open(sqlite.Open(path), &gorm.Config{})
	}
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&APIKey{}, &APIUsage{}, &AdminUser{}, &Planning{}); err != nil {
		return nil, err
	}
	return db, nil
}

// InitDB opens the database named by DATABASE_URL or DATA_PATH
func InitDB() (*gorm.DB, error) {
	dbPath := os.Getenv("DATA_PATH")
	if dbPath == "" {
		dbPath = "roster.db"
	}
	return Open(os.Getenv("DATABASE_URL"), dbPath)
}
