package database

import "gorm.io/gorm"

var DB *gorm.DB

// GetDB returns the global database handle
func GetDB() *gorm.DB {
	return DB
}

// SetDB overrides the global handle, used by tests
func SetDB(db *gorm.DB) {
	DB = db
}
