package domain

import (
	"fmt"
	"strings"
)

// Form carries the repair-record fields collected so far. Every value is a
// string in the exact shape it will be written to the record store; all
// normalization happens at input time in the flow layer.
//
// TrailerNumber is an intermediate value used while composing the unit
// label for a trailer; it is cleared once Unit is built and never reaches
// the record store.
type Form struct {
	Date          string `json:"date,omitempty"`
	Type          string `json:"type,omitempty"`
	UnitType      string `json:"unit_type,omitempty"` // "TRK" or "TRL"
	TrailerNumber string `json:"trailer_number,omitempty"`
	Unit          string `json:"unit,omitempty"`
	Category      string `json:"category,omitempty"`
	Repair        string `json:"repair,omitempty"`
	Details       string `json:"details,omitempty"`
	Vendor        string `json:"vendor,omitempty"`
	Total         string `json:"total,omitempty"`
	PaidBy        string `json:"paid_by,omitempty"`
	Paid          string `json:"paid,omitempty"`
	ReportedBy    string `json:"reported_by,omitempty"`
	Status        string `json:"status,omitempty"`
	Notes         string `json:"notes,omitempty"`
	InvoiceLink   string `json:"invoice_link,omitempty"`
}

// Unit type codes as stored on the form and rendered into unit labels.
const (
	UnitTruck   = "TRK"
	UnitTrailer = "TRL"
)

// ComposeTruckUnit sets Unit to the primary-unit label "TRK <number>".
func (f *Form) ComposeTruckUnit(number string) {
	f.Unit = fmt.Sprintf("%s %s", UnitTruck, strings.TrimSpace(number))
}

// ComposeTrailerUnit sets Unit to the dependent-unit label
// "TRL <trailer> ( TRK <truck> )" and discards the intermediate trailer
// number.
func (f *Form) ComposeTrailerUnit(truckNumber string) {
	f.Unit = fmt.Sprintf("%s %s ( %s %s )",
		UnitTrailer, strings.TrimSpace(f.TrailerNumber),
		UnitTruck, strings.TrimSpace(truckNumber))
	f.TrailerNumber = ""
}

// requiredFields pairs each mandatory record column with its accessor.
// Details, Notes, and InvoiceLink are the only optional columns.
var requiredFields = []struct {
	Name string
	Get  func(*Form) string
}{
	{"Date", func(f *Form) string { return f.Date }},
	{"Type", func(f *Form) string { return f.Type }},
	{"Unit", func(f *Form) string { return f.Unit }},
	{"Category", func(f *Form) string { return f.Category }},
	{"Repair", func(f *Form) string { return f.Repair }},
	{"Vendor", func(f *Form) string { return f.Vendor }},
	{"Total", func(f *Form) string { return f.Total }},
	{"Paid By", func(f *Form) string { return f.PaidBy }},
	{"Paid?", func(f *Form) string { return f.Paid }},
	{"Reported By", func(f *Form) string { return f.ReportedBy }},
	{"Status", func(f *Form) string { return f.Status }},
}

// MissingFields returns the display names of every required field that is
// still empty, in canonical column order. An empty result means the form
// may be appended to the record store.
func (f *Form) MissingFields() []string {
	var missing []string
	for _, rf := range requiredFields {
		if strings.TrimSpace(rf.Get(f)) == "" {
			missing = append(missing, rf.Name)
		}
	}
	return missing
}

// Summary renders the confirmation view shown before saving.
func (f *Form) Summary() string {
	var b strings.Builder
	b.WriteString("Confirm:\n")
	fmt.Fprintf(&b, "Date: %s\n", f.Date)
	fmt.Fprintf(&b, "Type: %s\n", f.Type)
	fmt.Fprintf(&b, "Unit: %s\n", f.Unit)
	fmt.Fprintf(&b, "Category: %s\n", f.Category)
	fmt.Fprintf(&b, "Repair: %s\n", f.Repair)
	fmt.Fprintf(&b, "Details: %s\n", f.Details)
	fmt.Fprintf(&b, "Vendor: %s\n", f.Vendor)
	fmt.Fprintf(&b, "Total: %s\n", f.Total)
	fmt.Fprintf(&b, "Paid By: %s\n", f.PaidBy)
	fmt.Fprintf(&b, "Paid?: %s\n", f.Paid)
	fmt.Fprintf(&b, "Reported By: %s\n", f.ReportedBy)
	fmt.Fprintf(&b, "Status: %s\n", f.Status)
	fmt.Fprintf(&b, "Notes: %s\n", f.Notes)
	if f.InvoiceLink != "" {
		fmt.Fprintf(&b, "Invoice: %s\n", f.InvoiceLink)
	}
	return b.String()
}

// Session is one conversation's in-flight intake: the current step plus the
// form collected so far. It is the unit persisted to the draft store and
// rebuilt on hydration.
type Session struct {
	State State `json:"state"`
	Form  Form  `json:"form"`
}

// NewSession returns a fresh session positioned at the initial state.
func NewSession() *Session {
	return &Session{State: StateStart}
}
