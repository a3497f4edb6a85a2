// Package repo implements the data persistence layer for drafts and
// repair records, backed by GORM. This file provides small aggregate
// queries used for conditional responses (ETag generation) in the HTTP
// layer.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/fleetops/repair-intake/internal/domain"
)

// RecordsStats returns aggregate metadata for the record table: the total
// number of rows and the greatest CreatedAt among them. With no rows the
// count is 0 and maxCreatedAt is nil.
func RecordsStats(ctx context.Context, db *gorm.DB) (count int64, maxCreatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.RepairRecord{})

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Get latest created_at (avoid MAX() -> TEXT in SQLite)
	var row struct {
		CreatedAt time.Time
	}
	if err = q.Select("created_at").Order("created_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.CreatedAt, nil
}
