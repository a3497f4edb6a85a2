// Package repo implements the data persistence layer for drafts and
// repair records, backed by GORM. This file provides the draft store: the
// durable (state, form) pair that lets a conversation survive restarts.
//
// Draft payloads use a small versioned JSON envelope so the schema can
// evolve without a migration of in-flight drafts; a payload that cannot be
// decoded is treated as absent rather than as an error.
package repo

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fleetops/repair-intake/internal/domain"
)

// ErrNotFound is returned when a requested record does not exist. It
// aliases gorm.ErrRecordNotFound for consistency across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// draftPayloadVersion tags the current draft envelope shape.
const draftPayloadVersion = 1

// draftEnvelope is the stored JSON shape of a session.
type draftEnvelope struct {
	Version int         `json:"version"`
	State   string      `json:"state"`
	Form    domain.Form `json:"form"`
}

// GetDraft loads the persisted session for chatID. An absent draft is a
// normal condition and returns (nil, nil); an undecodable payload is
// logged upstream as a fresh start, also (nil, nil).
func GetDraft(ctx context.Context, db *gorm.DB, chatID int64) (*domain.Session, error) {
	var d domain.Draft
	err := db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		First(&d).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var env draftEnvelope
	if jsonErr := json.Unmarshal([]byte(d.Payload), &env); jsonErr != nil {
		return nil, nil
	}
	return &domain.Session{
		State: domain.ParseState(env.State),
		Form:  env.Form,
	}, nil
}

// SaveDraft upserts the session for chatID. Last writer wins; intra-chat
// serialization is the caller's responsibility.
func SaveDraft(ctx context.Context, db *gorm.DB, chatID int64, s *domain.Session) error {
	payload, err := json.Marshal(draftEnvelope{
		Version: draftPayloadVersion,
		State:   string(s.State),
		Form:    s.Form,
	})
	if err != nil {
		return err
	}
	d := domain.Draft{
		ChatID:    chatID,
		State:     string(s.State),
		Payload:   string(payload),
		UpdatedAt: time.Now().UTC(),
	}
	return db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "chat_id"}},
			UpdateAll: true,
		}).
		Create(&d).Error
}

// ClearDraft removes the draft for chatID. Deleting an absent draft is a
// no-op, not an error.
func ClearDraft(ctx context.Context, db *gorm.DB, chatID int64) error {
	return db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Delete(&domain.Draft{}).Error
}
