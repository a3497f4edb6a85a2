package domain

import "time"

// Draft is the durable copy of a conversation session, written after every
// state transition so the conversation survives process restarts. Payload
// holds a versioned JSON encoding of the session (see repo.encodeDraft);
// the draft store never inspects individual form fields.
type Draft struct {
	ChatID    int64     `gorm:"primaryKey"`
	State     string    `gorm:"type:varchar(32);not null"`
	Payload   string    `gorm:"type:text;not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName implements the GORM tabler interface.
func (Draft) TableName() string { return "drafts" }

// RepairRecord is one finished, immutable repair entry. Columns mirror the
// canonical record order; MsgKey carries a unique index so the same
// triggering event can never append two rows.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Date..Notes: the collected form values, already normalized.
//   - InvoiceLink: optional URL of the vendor invoice.
//   - MsgKey: idempotency key "updateID|chatID:messageID".
//   - CreatedAt: append time, UTC, second precision.
type RepairRecord struct {
	ID          string    `json:"id"           gorm:"type:char(36);primaryKey"`
	Date        string    `json:"date"         gorm:"type:varchar(10);not null"`
	Type        string    `json:"type"         gorm:"type:varchar(64);not null"`
	Unit        string    `json:"unit"         gorm:"type:varchar(64);not null"`
	Category    string    `json:"category"     gorm:"type:varchar(32);not null"`
	Repair      string    `json:"repair"       gorm:"type:varchar(255);not null"`
	Details     string    `json:"details"      gorm:"type:text"`
	Vendor      string    `json:"vendor"       gorm:"type:varchar(255);not null"`
	Total       string    `json:"total"        gorm:"type:varchar(32);not null"`
	PaidBy      string    `json:"paid_by"      gorm:"type:varchar(32);not null"`
	Paid        string    `json:"paid"         gorm:"type:varchar(8);not null"`
	ReportedBy  string    `json:"reported_by"  gorm:"type:varchar(255);not null"`
	Status      string    `json:"status"       gorm:"type:varchar(32);not null"`
	Notes       string    `json:"notes"        gorm:"type:text"`
	InvoiceLink string    `json:"invoice_link" gorm:"type:text"`
	MsgKey      string    `json:"msg_key"      gorm:"type:varchar(96);not null;uniqueIndex:ux_records_msg_key"`
	CreatedAt   time.Time `json:"created_at"   gorm:"not null"`
}

// TableName implements the GORM tabler interface.
func (RepairRecord) TableName() string { return "repair_records" }

// NewRecord builds a RepairRecord from a completed form. The caller
// supplies the row ID, the idempotency key, and the append time; now is
// truncated to whole seconds in UTC.
func NewRecord(id string, f *Form, msgKey string, now time.Time) *RepairRecord {
	return &RepairRecord{
		ID:          id,
		Date:        f.Date,
		Type:        f.Type,
		Unit:        f.Unit,
		Category:    f.Category,
		Repair:      f.Repair,
		Details:     f.Details,
		Vendor:      f.Vendor,
		Total:       f.Total,
		PaidBy:      f.PaidBy,
		Paid:        f.Paid,
		ReportedBy:  f.ReportedBy,
		Status:      f.Status,
		Notes:       f.Notes,
		InvoiceLink: f.InvoiceLink,
		MsgKey:      msgKey,
		CreatedAt:   now.UTC().Truncate(time.Second),
	}
}

// CanonicalRow returns the record as a row of strings in the canonical
// column order used by spreadsheet-like stores: Date, Type, Unit, Category,
// Repair, Details, Vendor, Total, Paid By, Paid?, Reported By, Status,
// Notes, InvoiceLink, MsgKey, CreatedAt (RFC 3339, "Z" suffix).
func (r *RepairRecord) CanonicalRow() []string {
	return []string{
		r.Date,
		r.Type,
		r.Unit,
		r.Category,
		r.Repair,
		r.Details,
		r.Vendor,
		r.Total,
		r.PaidBy,
		r.Paid,
		r.ReportedBy,
		r.Status,
		r.Notes,
		r.InvoiceLink,
		r.MsgKey,
		r.CreatedAt.UTC().Format("2006-01-02T15:04:05Z"),
	}
}
