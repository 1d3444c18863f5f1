package db

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ForUpdate adds SELECT ... FOR UPDATE on dialects with row locks.
// SQLite serializes writers at the database level and has no such clause.
func ForUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "postgres" {
		return tx.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return tx
}

// InsertIfAbsent inserts value unless its primary or unique key is taken.
// It reports false when nothing was written.
func InsertIfAbsent(tx *gorm.DB, value interface{}) (bool, error) {
	result := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(value)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
