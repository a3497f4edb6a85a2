// Package services – IntakeService
//
// This file implements the IntakeService, which owns one inbound event's
// full processing: hydrate the session from the draft store, advance the
// conversation state machine, checkpoint the draft, and run the save
// protocol on a confirmed form. Persistence and the chat transport are
// injected behind narrow interfaces so the service is testable with fakes
// and indifferent to which backend fills them.
//
// Concurrency: events for different chats may be processed in parallel;
// events for the same chat must be serialized by the caller (the webhook
// boundary), since draft updates are last-writer-wins per chat id.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/fleetops/repair-intake/internal/domain"
	"github.com/fleetops/repair-intake/internal/flow"
	"github.com/fleetops/repair-intake/internal/repo"
	"github.com/fleetops/repair-intake/internal/validate"
)

// DraftRepo defines the draft-store contract required by IntakeService.
type DraftRepo interface {
	// Get loads the persisted session, or (nil, nil) when absent.
	Get(ctx context.Context, db *gorm.DB, chatID int64) (*domain.Session, error)

	// Save upserts the session, last writer wins.
	Save(ctx context.Context, db *gorm.DB, chatID int64, s *domain.Session) error

	// Clear removes the session; clearing an absent draft is a no-op.
	Clear(ctx context.Context, db *gorm.DB, chatID int64) error
}

// RecordRepo defines the record-store contract required by IntakeService.
type RecordRepo interface {
	// Append inserts a finished record, repo.ErrDuplicate on a key clash.
	Append(ctx context.Context, db *gorm.DB, rec *domain.RepairRecord) error

	// MsgKeyExists reports whether the idempotency key is already stored;
	// it degrades to false when the lookup itself fails.
	MsgKeyExists(ctx context.Context, db *gorm.DB, msgKey string) bool
}

// Channel is the outbound chat transport consumed by IntakeService.
// Implementations must be safe for concurrent use.
type Channel interface {
	// SendPrompt delivers a new message with its keyboard or buttons.
	SendPrompt(ctx context.Context, chatID int64, p flow.Prompt) error

	// EditMessage rewrites the text of an earlier message (used to
	// resolve the inline confirmation view in place).
	EditMessage(ctx context.Context, chatID, messageID int64, text string) error

	// AnswerCallback acknowledges an inline button press.
	AnswerCallback(ctx context.Context, callbackID string) error
}

// IntakeService drives the repair-record intake conversation.
type IntakeService struct {
	// DB is the GORM handle threaded through the repo interfaces.
	DB *gorm.DB
	// Drafts persists in-flight sessions across restarts.
	Drafts DraftRepo
	// Records stores finished repair rows.
	Records RecordRepo
	// Channel delivers outbound prompts.
	Channel Channel

	// Now and NewID are test seams for the append timestamp and row id.
	Now   func() time.Time
	NewID func() string
}

// NewIntakeService constructs an IntakeService with production defaults
// for the clock and id generator.
func NewIntakeService(db *gorm.DB, drafts DraftRepo, records RecordRepo, ch Channel) *IntakeService {
	return &IntakeService{
		DB:      db,
		Drafts:  drafts,
		Records: records,
		Channel: ch,
		Now:     time.Now,
		NewID:   uuid.NewString,
	}
}

// HandleEvent processes one inbound chat event to completion: exactly one
// outbound prompt or terminal acknowledgment results. Store failures are
// reported to the user with a short kind tag and returned wrapped for the
// caller's logs; the session is preserved so the user can retry.
func (s *IntakeService) HandleEvent(ctx context.Context, ev domain.Event) error {
	if ev.IsCallback() {
		// Best effort; a failed ack only leaves the button spinner.
		if err := s.Channel.AnswerCallback(ctx, ev.CallbackID); err != nil {
			log.Warn().Err(err).Int64("chat_id", ev.ChatID).Msg("answer callback failed")
		}
	}

	switch ev.Command {
	case "start":
		sess := domain.NewSession()
		if err := s.checkpoint(ctx, ev, sess); err != nil {
			return err
		}
		return s.Channel.SendPrompt(ctx, ev.ChatID, flow.PromptFor(domain.StateStart, &sess.Form))
	case "new":
		if err := s.Drafts.Clear(ctx, s.DB, ev.ChatID); err != nil {
			return s.reportStoreError(ctx, ev, ErrDraftStore, err)
		}
		sess := &domain.Session{State: domain.StateDate}
		if err := s.checkpoint(ctx, ev, sess); err != nil {
			return err
		}
		return s.Channel.SendPrompt(ctx, ev.ChatID, flow.PromptFor(domain.StateDate, &sess.Form))
	case "cancel":
		return s.cancel(ctx, ev)
	}

	sess, err := s.hydrate(ctx, ev)
	if err != nil {
		return err
	}

	flowEvents.WithLabelValues(string(sess.State)).Inc()
	res := flow.Advance(sess, ev)

	switch res.Action {
	case flow.ActionSave:
		return s.save(ctx, sess, ev)
	case flow.ActionCancel:
		if err := s.Drafts.Clear(ctx, s.DB, ev.ChatID); err != nil {
			return s.reportStoreError(ctx, ev, ErrDraftStore, err)
		}
		return s.respond(ctx, ev, res.Prompt)
	default:
		if err := s.checkpoint(ctx, ev, sess); err != nil {
			return err
		}
		return s.Channel.SendPrompt(ctx, ev.ChatID, res.Prompt)
	}
}

// hydrate loads the durable session when no fresher one exists for this
// event. Processing is per-event, so the in-memory session is always empty
// here; a loaded draft can therefore never clobber newer in-memory state.
func (s *IntakeService) hydrate(ctx context.Context, ev domain.Event) (*domain.Session, error) {
	sess, err := s.Drafts.Get(ctx, s.DB, ev.ChatID)
	if err != nil {
		return nil, s.reportStoreError(ctx, ev, ErrDraftStore, err)
	}
	if sess == nil {
		sess = domain.NewSession()
	}
	return sess, nil
}

// checkpoint persists the session after a transition so the conversation
// survives a restart at any step.
func (s *IntakeService) checkpoint(ctx context.Context, ev domain.Event, sess *domain.Session) error {
	if err := s.Drafts.Save(ctx, s.DB, ev.ChatID, sess); err != nil {
		return s.reportStoreError(ctx, ev, ErrDraftStore, err)
	}
	return nil
}

// cancel discards the draft and acknowledges; no record is written.
func (s *IntakeService) cancel(ctx context.Context, ev domain.Event) error {
	if err := s.Drafts.Clear(ctx, s.DB, ev.ChatID); err != nil {
		return s.reportStoreError(ctx, ev, ErrDraftStore, err)
	}
	return s.respond(ctx, ev, flow.Prompt{Text: "Cancelled.", RemoveKeyboard: true})
}

// save runs the persistence protocol for a confirmed form:
// default thin fields, checkpoint, verify required fields, consult the
// duplicate check, append, and only then clear the draft.
func (s *IntakeService) save(ctx context.Context, sess *domain.Session, ev domain.Event) error {
	form := &sess.Form

	// Sessions that reached CONFIRM through an abbreviated path still get
	// a usable date and type.
	if form.Date == "" {
		form.Date, _ = validate.NormalizeDate("today")
	}
	if form.Type == "" {
		form.Type = "Other"
	}
	sess.State = domain.StateConfirm

	// Consistency checkpoint before the potentially failing append.
	if err := s.checkpoint(ctx, ev, sess); err != nil {
		return err
	}

	if missing := form.MissingFields(); len(missing) > 0 {
		return s.respond(ctx, ev, flow.Prompt{Text: "Missing fields: " + strings.Join(missing, ", ")})
	}

	key := ev.MsgKey()
	if s.Records.MsgKeyExists(ctx, s.DB, key) {
		duplicatesRejected.Inc()
		// Draft intentionally retained for inspection and resubmission.
		return s.respond(ctx, ev, flow.Prompt{Text: "Duplicate detected. Not saved."})
	}

	rec := domain.NewRecord(s.NewID(), form, key, s.Now())
	if err := s.Records.Append(ctx, s.DB, rec); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			duplicatesRejected.Inc()
			return s.respond(ctx, ev, flow.Prompt{Text: "Duplicate detected. Not saved."})
		}
		return s.reportStoreError(ctx, ev, ErrRecordStore, err)
	}
	recordsSaved.Inc()

	if err := s.Drafts.Clear(ctx, s.DB, ev.ChatID); err != nil {
		// The record is safe; a stale draft is the lesser problem.
		log.Warn().Err(err).Int64("chat_id", ev.ChatID).Msg("draft clear after save failed")
	}
	return s.respond(ctx, ev, flow.Prompt{Text: "Saved ✅", RemoveKeyboard: true})
}

// respond delivers text to the user, editing the confirmation message in
// place for button-driven events and sending a fresh message otherwise.
func (s *IntakeService) respond(ctx context.Context, ev domain.Event, p flow.Prompt) error {
	if ev.IsCallback() {
		return s.Channel.EditMessage(ctx, ev.ChatID, ev.MessageID, p.Text)
	}
	return s.Channel.SendPrompt(ctx, ev.ChatID, p)
}

// reportStoreError tells the user a store operation failed (kind tag only)
// and returns the wrapped failure for the caller's logs. The draft and
// session are left untouched so a retry can succeed.
func (s *IntakeService) reportStoreError(ctx context.Context, ev domain.Event, sentinel error, cause error) error {
	label := "Draft"
	if errors.Is(sentinel, ErrRecordStore) {
		label = "Record"
	}
	msg := fmt.Sprintf("%s store error: %s. Please try again.", label, storeErrorKind(cause))
	if sendErr := s.respond(ctx, ev, flow.Prompt{Text: msg}); sendErr != nil {
		log.Error().Err(sendErr).Int64("chat_id", ev.ChatID).Msg("failed to report store error")
	}
	return fmt.Errorf("%w: %v", sentinel, cause)
}
