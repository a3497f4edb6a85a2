// Package repo implements the data persistence layer for drafts and
// repair records, backed by GORM. This file provides the record store:
// append-only repair rows with duplicate-submission protection on the
// idempotency key.
package repo

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/fleetops/repair-intake/internal/domain"
)

// ErrDuplicate indicates that a repair record already exists for the given
// idempotency key.
var ErrDuplicate = errors.New("duplicate record")

// AppendRecord inserts a finished record. A unique-index violation on
// msg_key is reported as ErrDuplicate, closing the race left open by the
// advisory MsgKeyExists check.
func AppendRecord(ctx context.Context, db *gorm.DB, rec *domain.RepairRecord) error {
	if err := db.WithContext(ctx).Create(rec).Error; err != nil {
		// glebarez/sqlite often returns plain-text errors for UNIQUE violations.
		low := strings.ToLower(err.Error())
		if errors.Is(err, gorm.ErrDuplicatedKey) ||
			strings.Contains(low, "unique constraint failed") ||
			strings.Contains(low, "constraint failed: unique") {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// MsgKeyExists reports whether a record with the given idempotency key is
// already stored. Lookup failures degrade to false — a save blocked by a
// broken dedup query is worse than a rare duplicate, and the unique index
// still backstops the append.
func MsgKeyExists(ctx context.Context, db *gorm.DB, msgKey string) bool {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.RepairRecord{}).
		Where("msg_key = ?", msgKey).
		Count(&n).Error
	if err != nil {
		return false
	}
	return n > 0
}

// CountRecords returns the total number of stored repair records.
func CountRecords(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).
		Model(&domain.RepairRecord{}).
		Count(&total).Error
	return total, err
}

// ListRecordsPage returns a page of records ordered by creation time
// descending (most recent first).
func ListRecordsPage(ctx context.Context, db *gorm.DB, offset, limit int) ([]domain.RepairRecord, error) {
	var out []domain.RepairRecord
	err := db.WithContext(ctx).
		Order("created_at desc").
		Offset(offset).
		Limit(limit).
		Find(&out).Error
	return out, err
}
