package database

import (
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SavePlanning stores p, replacing any earlier planning of the same key and month.
func SavePlanning(db *gorm.DB, p *Planning) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key_id"}, {Name: "year"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"run_id", "assignments", "steps", "repairs", "created_at"}),
	}).Create(p).Error
}

// FindPlanning loads the planning of a key for a month.
func FindPlanning(db *gorm.DB, keyID uint, year int, month time.Month) (*Planning, error) {
	var p Planning
	err := db.Where("key_id = ? AND year = ? AND month = ?", keyID, year, int(month)).First(&p).Error
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// PreviousPlanning loads the planning of the month before year/month.
func PreviousPlanning(db *gorm.DB, keyID uint, year int, month time.Month) (*Planning, error) {
	prev := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0)
	return FindPlanning(db, keyID, prev.Year(), prev.Month())
}

// RecordUsage adds one request to today's usage row of a key.
func RecordUsage(db *gorm.DB, keyID uint, days, people int) error {
	today := time.Now().Format("2006-01-02")

	// single-query upsert, supported by both Postgres and SQLite
	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key_id"}, {Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"request_count": gorm.Expr("request_count + ?", 1),
			"total_days":    gorm.Expr("total_days + ?", days),
			"total_people":  gorm.Expr("total_people + ?", people),
		}),
	}).Create(&APIUsage{
		KeyID:        keyID,
		Date:         today,
		RequestCount: 1,
		TotalDays:    days,
		TotalPeople:  people,
	}).Error
}

// RecentUsage returns up to 30 most recent usage rows of a key.
func RecentUsage(db *gorm.DB, keyID uint) ([]APIUsage, error) {
	var usage []APIUsage
	err := db.Where("key_id = ?", keyID).Order("date desc").Limit(30).Find(&usage).Error
	return usage, err
}

// TodayRequests is the number of requests a key made today.
func TodayRequests(db *gorm.DB, keyID uint) (int, error) {
	var usage APIUsage
	err := db.Where("key_id = ? AND date = ?", keyID, time.Now().Format("2006-01-02")).Limit(1).Find(&usage).Error
	return usage.RequestCount, err
}
