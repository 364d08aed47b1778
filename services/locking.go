package services

import (
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// forUpdate applies row locking where the dialect supports it. SQLite has
// no FOR UPDATE; its single-writer transaction lock gives the same
// guarantee there.
func forUpdate(tx *gorm.DB) *gorm.DB {
	if tx.Dialector.Name() == "sqlite" {
		return tx
	}
	return tx.Clauses(clause.Locking{Strength: "UPDATE"})
}
