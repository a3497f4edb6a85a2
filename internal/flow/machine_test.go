package flow

import (
	"strings"
	"testing"

	"github.com/fleetops/repair-intake/internal/domain"
)

func textEvent(text string) domain.Event {
	return domain.Event{ChatID: 1, Text: text, SenderName: "Jo Driver"}
}

// drive feeds inputs in order and fails if any produces a side-effect
// action before the last one.
func drive(t *testing.T, s *domain.Session, inputs ...string) Result {
	t.Helper()
	var res Result
	for i, in := range inputs {
		res = Advance(s, textEvent(in))
		if i < len(inputs)-1 && res.Action != ActionNone {
			t.Fatalf("input %q (#%d) produced action %v mid-flow", in, i, res.Action)
		}
	}
	return res
}

func TestAdvance_StartContinue(t *testing.T) {
	s := domain.NewSession()
	res := Advance(s, textEvent("continue"))
	if s.State != domain.StateDate {
		t.Fatalf("state = %q, want DATE", s.State)
	}
	if res.Prompt.Text != "Date of the repair?" {
		t.Fatalf("prompt = %q", res.Prompt.Text)
	}
}

func TestAdvance_StartAnythingElseCancels(t *testing.T) {
	s := domain.NewSession()
	res := Advance(s, textEvent("hello"))
	if res.Action != ActionCancel {
		t.Fatalf("action = %v, want cancel", res.Action)
	}
	if !res.Prompt.RemoveKeyboard {
		t.Fatalf("cancel should remove the keyboard")
	}
}

func TestAdvance_DateShortcuts(t *testing.T) {
	s := &domain.Session{State: domain.StateDate}
	Advance(s, textEvent("2025-01-31"))
	if s.Form.Date != "2025-01-31" || s.State != domain.StateType {
		t.Fatalf("date=%q state=%q", s.Form.Date, s.State)
	}

	s = &domain.Session{State: domain.StateDate}
	res := Advance(s, textEvent("Pick date"))
	if s.State != domain.StateDateTyped {
		t.Fatalf("state = %q, want DATE_TYPED", s.State)
	}
	if res.Prompt.Text != "Type date as YYYY-MM-DD" {
		t.Fatalf("prompt = %q", res.Prompt.Text)
	}

	s = &domain.Session{State: domain.StateDate}
	Advance(s, textEvent("Today"))
	if s.Form.Date == "" || s.State != domain.StateType {
		t.Fatalf("Today shortcut not applied: date=%q state=%q", s.Form.Date, s.State)
	}
}

func TestAdvance_InvalidDateReprompts(t *testing.T) {
	s := &domain.Session{State: domain.StateDate}
	res := Advance(s, textEvent("31/01/2025"))
	if s.State != domain.StateDate {
		t.Fatalf("state = %q, want DATE (re-prompt)", s.State)
	}
	if !strings.Contains(res.Prompt.Text, "2025-01-31") {
		t.Fatalf("want guidance text, got %q", res.Prompt.Text)
	}
	if s.Form.Date != "" {
		t.Fatalf("form.Date should stay empty, got %q", s.Form.Date)
	}
}

func TestAdvance_TruckUnitComposition(t *testing.T) {
	s := &domain.Session{State: domain.StateUnitType}
	drive(t, s, "truck", "TRK 1234")
	if s.Form.Unit != "TRK 1234" {
		t.Fatalf("unit = %q", s.Form.Unit)
	}
	if s.State != domain.StateCategory {
		t.Fatalf("state = %q, want CATEGORY", s.State)
	}
}

func TestAdvance_TrailerUnitComposition(t *testing.T) {
	s := &domain.Session{State: domain.StateUnitType}
	drive(t, s, "Trailer", "88", "2621")
	if s.Form.Unit != "TRL 88 ( TRK 2621 )" {
		t.Fatalf("unit = %q", s.Form.Unit)
	}
	if s.Form.TrailerNumber != "" {
		t.Fatalf("intermediate trailer number not discarded")
	}
	if s.State != domain.StateCategory {
		t.Fatalf("state = %q, want CATEGORY", s.State)
	}
}

func TestAdvance_DetailsAccumulate(t *testing.T) {
	s := &domain.Session{State: domain.StateRepair}
	drive(t, s, "Oil leak", "front seal", "gasket too", "Done")
	if s.Form.Details != "front seal\ngasket too" {
		t.Fatalf("details = %q", s.Form.Details)
	}
	if s.State != domain.StateVendor {
		t.Fatalf("state = %q, want VENDOR", s.State)
	}
}

func TestAdvance_TotalNormalized(t *testing.T) {
	s := &domain.Session{State: domain.StateTotal}
	Advance(s, textEvent("150.5"))
	if s.Form.Total != "150.50" {
		t.Fatalf("total = %q", s.Form.Total)
	}

	s = &domain.Session{State: domain.StateTotal}
	res := Advance(s, textEvent("a lot"))
	if s.State != domain.StateTotal || s.Form.Total != "" {
		t.Fatalf("invalid amount must re-prompt in place")
	}
	if !strings.Contains(res.Prompt.Text, "300") {
		t.Fatalf("want amount guidance, got %q", res.Prompt.Text)
	}
}

func TestAdvance_ReportedByUseMyName(t *testing.T) {
	s := &domain.Session{State: domain.StateReportedBy}
	Advance(s, textEvent("Use my name"))
	if s.Form.ReportedBy != "Jo Driver" {
		t.Fatalf("reported by = %q", s.Form.ReportedBy)
	}
	if s.State != domain.StateStatus {
		t.Fatalf("state = %q, want STATUS", s.State)
	}
}

func TestAdvance_BackKeepsFormValues(t *testing.T) {
	s := &domain.Session{State: domain.StateDate}
	Advance(s, textEvent("2025-01-31")) // now in TYPE
	res := Advance(s, textEvent("Back"))
	if s.State != domain.StateDate {
		t.Fatalf("state = %q, want DATE", s.State)
	}
	if s.Form.Date != "2025-01-31" {
		t.Fatalf("back must not roll back form values, date = %q", s.Form.Date)
	}
	if s.Form.Type != "" {
		t.Fatalf("type was never set, got %q", s.Form.Type)
	}
	if res.Prompt.Text != "Date of the repair?" {
		t.Fatalf("back should re-issue the previous prompt, got %q", res.Prompt.Text)
	}
}

func TestAdvance_BackFromFirstStepDoesNotUnderflow(t *testing.T) {
	s := &domain.Session{State: domain.StateDate}
	Advance(s, textEvent("Back"))
	if s.State != domain.StateDate {
		t.Fatalf("state = %q, want DATE", s.State)
	}
}

func TestAdvance_BackFromConfirmReturnsToInvoice(t *testing.T) {
	s := &domain.Session{State: domain.StateConfirm}
	Advance(s, textEvent("Back"))
	if s.State != domain.StateInvoice {
		t.Fatalf("state = %q, want INVOICE", s.State)
	}
}

func TestAdvance_BackFromDateTypedReturnsToDate(t *testing.T) {
	s := &domain.Session{State: domain.StateDateTyped}
	Advance(s, textEvent("Back"))
	if s.State != domain.StateDate {
		t.Fatalf("state = %q, want DATE", s.State)
	}
}

func TestAdvance_CancelAnywhere(t *testing.T) {
	for _, st := range []domain.State{domain.StateDate, domain.StateDetails, domain.StateConfirm} {
		s := &domain.Session{State: st}
		res := Advance(s, textEvent("cancel"))
		if res.Action != ActionCancel {
			t.Fatalf("cancel in %q: action = %v", st, res.Action)
		}
	}
}

func TestAdvance_InvoiceStep(t *testing.T) {
	s := &domain.Session{State: domain.StateInvoice}
	res := Advance(s, textEvent("ftp://nope"))
	if s.State != domain.StateInvoice {
		t.Fatalf("bad URL must re-prompt, state = %q", s.State)
	}
	if !strings.Contains(res.Prompt.Text, "http") {
		t.Fatalf("want URL guidance, got %q", res.Prompt.Text)
	}

	Advance(s, textEvent("HTTPS://vendor.example/inv.pdf"))
	if s.Form.InvoiceLink != "HTTPS://vendor.example/inv.pdf" || s.State != domain.StateConfirm {
		t.Fatalf("link=%q state=%q", s.Form.InvoiceLink, s.State)
	}

	s = &domain.Session{State: domain.StateInvoice}
	Advance(s, textEvent("Skip"))
	if s.Form.InvoiceLink != "" || s.State != domain.StateConfirm {
		t.Fatalf("skip should leave link empty and reach CONFIRM")
	}
}

func TestAdvance_ConfirmTokens(t *testing.T) {
	s := &domain.Session{State: domain.StateConfirm}
	if res := Advance(s, textEvent("SAVE")); res.Action != ActionSave {
		t.Fatalf("save action = %v", res.Action)
	}

	s = &domain.Session{State: domain.StateConfirm, Form: domain.Form{Date: "2025-01-31"}}
	Advance(s, textEvent("edit"))
	if s.State != domain.StateDate {
		t.Fatalf("edit should restart at DATE, state = %q", s.State)
	}

	s = &domain.Session{State: domain.StateConfirm}
	res := Advance(s, textEvent("hmm"))
	if res.Action != ActionNone || !strings.Contains(res.Prompt.Text, "Save, Edit, or Cancel") {
		t.Fatalf("unknown confirm input should re-prompt, got %+v", res)
	}
}

func TestAdvance_CallbackEqualsTypedConfirm(t *testing.T) {
	s := &domain.Session{State: domain.StateConfirm}
	res := Advance(s, domain.Event{ChatID: 1, Callback: CallbackSave, CallbackID: "cb1"})
	if res.Action != ActionSave {
		t.Fatalf("callback save: action = %v", res.Action)
	}

	s = &domain.Session{State: domain.StateConfirm}
	res = Advance(s, domain.Event{ChatID: 1, Callback: CallbackCancel, CallbackID: "cb2"})
	if res.Action != ActionCancel {
		t.Fatalf("callback cancel: action = %v", res.Action)
	}

	s = &domain.Session{State: domain.StateConfirm}
	Advance(s, domain.Event{ChatID: 1, Callback: CallbackEdit, CallbackID: "cb3"})
	if s.State != domain.StateDate {
		t.Fatalf("callback edit should restart at DATE, state = %q", s.State)
	}
}

func TestAdvance_ConfirmPromptCarriesSummaryAndButtons(t *testing.T) {
	s := &domain.Session{State: domain.StateNotes, Form: domain.Form{Vendor: "ACME"}}
	drive(t, s, "Skip", "Skip") // notes skip -> invoice skip -> confirm
	if s.State != domain.StateConfirm {
		t.Fatalf("state = %q, want CONFIRM", s.State)
	}
	p := PromptFor(domain.StateConfirm, &s.Form)
	if !strings.Contains(p.Text, "Vendor: ACME") {
		t.Fatalf("summary missing vendor: %q", p.Text)
	}
	if len(p.Inline) != 3 || p.Inline[0].Data != CallbackSave {
		t.Fatalf("confirm inline buttons wrong: %+v", p.Inline)
	}
}

func TestChoiceKeyboard_RowsOfThreePlusNav(t *testing.T) {
	kb := choiceKeyboard(CategoryChoices) // 10 choices -> 4 rows + nav
	if len(kb) != 5 {
		t.Fatalf("rows = %d, want 5", len(kb))
	}
	last := kb[len(kb)-1]
	if len(last) != 2 || last[0] != TokenBack || last[1] != TokenCancel {
		t.Fatalf("nav row = %v", last)
	}
}

func TestFullLinearTraversal(t *testing.T) {
	s := domain.NewSession()
	res := drive(t, s,
		"Continue",
		"2025-01-31",
		"Repair",
		"Truck", "1234",
		"Engine",
		"Oil leak",
		"Done",
		"ACME",
		"150.5",
		"Company",
		"Yes",
		"Use my name",
		"Open",
		"Skip",
		"Skip",
	)
	if s.State != domain.StateConfirm {
		t.Fatalf("state = %q, want CONFIRM", s.State)
	}
	if res.Action != ActionNone {
		t.Fatalf("reaching CONFIRM is not a side effect")
	}
	f := s.Form
	if f.Date != "2025-01-31" || f.Type != "Repair" || f.Unit != "TRK 1234" ||
		f.Category != "Engine" || f.Repair != "Oil leak" || f.Vendor != "ACME" ||
		f.Total != "150.50" || f.PaidBy != "Company" || f.Paid != "Yes" ||
		f.ReportedBy != "Jo Driver" || f.Status != "Open" || f.Notes != "" {
		t.Fatalf("form mismatch: %+v", f)
	}
	if missing := f.MissingFields(); missing != nil {
		t.Fatalf("form should be complete, missing %v", missing)
	}
}
