package flow

import (
	"strings"

	"github.com/fleetops/repair-intake/internal/domain"
	"github.com/fleetops/repair-intake/internal/validate"
)

// stepFn consumes the event for one state: it validates the input, mutates
// the form, picks the successor, and builds the reply. Invalid input stays
// on the same state with guidance text.
type stepFn func(s *domain.Session, ev domain.Event, text string) Result

// steps is the state-indexed dispatch table. Each entry owns exactly one
// state's acceptance rule and transition.
var steps = map[domain.State]stepFn{
	domain.StateStart:        handleStart,
	domain.StateDate:         handleDate,
	domain.StateDateTyped:    handleDateTyped,
	domain.StateType:         handleType,
	domain.StateUnitType:     handleUnitType,
	domain.StateUnitNumber:   handleUnitNumber,
	domain.StateTrailerTruck: handleTrailerTruck,
	domain.StateCategory:     handleCategory,
	domain.StateRepair:       handleRepair,
	domain.StateDetails:      handleDetails,
	domain.StateVendor:       handleVendor,
	domain.StateTotal:        handleTotal,
	domain.StatePaidBy:       handlePaidBy,
	domain.StatePaid:         handlePaid,
	domain.StateReportedBy:   handleReportedBy,
	domain.StateStatus:       handleStatus,
	domain.StateNotes:        handleNotes,
	domain.StateInvoice:      handleInvoice,
	domain.StateConfirm: func(s *domain.Session, _ domain.Event, text string) Result {
		return handleConfirm(s, text)
	},
}

func handleStart(s *domain.Session, _ domain.Event, text string) Result {
	if isToken(text, TokenContinue) {
		return goTo(s, domain.StateDate)
	}
	return Result{
		Prompt: Prompt{Text: "Cancelled.", RemoveKeyboard: true},
		Action: ActionCancel,
	}
}

func handleDate(s *domain.Session, _ domain.Event, text string) Result {
	if isToken(text, TokenPickDate) {
		return goTo(s, domain.StateDateTyped)
	}
	// "Today" falls through to the validator, which resolves the shortcut.
	if iso, ok := validate.NormalizeDate(text); ok {
		s.Form.Date = iso
		return goTo(s, domain.StateType)
	}
	return stay("Enter date like 2025-01-31 or tap Today.",
		[][]string{{TokenToday, TokenPickDate}, {TokenBack, TokenCancel}})
}

func handleDateTyped(s *domain.Session, _ domain.Event, text string) Result {
	if iso, ok := validate.NormalizeDate(text); ok {
		s.Form.Date = iso
		return goTo(s, domain.StateType)
	}
	return stay("Enter date like 2025-01-31.", navKeyboard())
}

// handleType accepts any non-empty text; the keyboard merely suggests the
// common choices. Typed values matching a choice are canonicalized.
func handleType(s *domain.Session, _ domain.Event, text string) Result {
	if text == "" {
		return stay("Choose a Type.", choiceKeyboard(TypeChoices))
	}
	if canon, ok := matchChoice(TypeChoices, text); ok {
		s.Form.Type = canon
	} else {
		s.Form.Type = text
	}
	return goTo(s, domain.StateUnitType)
}

func handleUnitType(s *domain.Session, _ domain.Event, text string) Result {
	canon, ok := matchChoice(UnitTypeChoices, text)
	if !ok {
		return stay("Choose: Truck or Trailer.", choiceKeyboard(UnitTypeChoices))
	}
	if canon == "Truck" {
		s.Form.UnitType = domain.UnitTruck
	} else {
		s.Form.UnitType = domain.UnitTrailer
	}
	return goTo(s, domain.StateUnitNumber)
}

func handleUnitNumber(s *domain.Session, _ domain.Event, text string) Result {
	num := stripUnitTokens(text)
	if num == "" {
		return stay("Enter "+unitWord(&s.Form)+" number.", navKeyboard())
	}
	if s.Form.UnitType == domain.UnitTruck {
		s.Form.ComposeTruckUnit(num)
		return goTo(s, domain.StateCategory)
	}
	s.Form.TrailerNumber = num
	return goTo(s, domain.StateTrailerTruck)
}

func handleTrailerTruck(s *domain.Session, _ domain.Event, text string) Result {
	trk := stripUnitTokens(text)
	if trk == "" {
		return stay("Trailer linked to which truck number? e.g. 2621.", navKeyboard())
	}
	s.Form.ComposeTrailerUnit(trk)
	return goTo(s, domain.StateCategory)
}

func handleCategory(s *domain.Session, _ domain.Event, text string) Result {
	canon, ok := matchChoice(CategoryChoices, text)
	if !ok {
		return stay("Choose a Category.", choiceKeyboard(CategoryChoices))
	}
	s.Form.Category = canon
	return goTo(s, domain.StateRepair)
}

func handleRepair(s *domain.Session, _ domain.Event, text string) Result {
	if text == "" {
		return stay("Short title of the work?", navKeyboard())
	}
	s.Form.Repair = text
	s.Form.Details = ""
	return goTo(s, domain.StateDetails)
}

// handleDetails accumulates lines until the Done token; each addition is
// newline-joined onto the in-progress details field.
func handleDetails(s *domain.Session, _ domain.Event, text string) Result {
	if isToken(text, TokenDone) {
		return goTo(s, domain.StateVendor)
	}
	prev := strings.TrimSpace(s.Form.Details)
	if prev == "" {
		s.Form.Details = text
	} else {
		s.Form.Details = prev + "\n" + text
	}
	return stay("Add more details or press Done.", navKeyboard(TokenDone))
}

func handleVendor(s *domain.Session, _ domain.Event, text string) Result {
	if text == "" {
		return stay("Vendor?", navKeyboard())
	}
	s.Form.Vendor = text
	return goTo(s, domain.StateTotal)
}

func handleTotal(s *domain.Session, _ domain.Event, text string) Result {
	amt, ok := validate.NormalizeAmount(text)
	if !ok {
		return stay("Enter a number like 300 or 300.00.", navKeyboard())
	}
	s.Form.Total = amt
	return goTo(s, domain.StatePaidBy)
}

func handlePaidBy(s *domain.Session, _ domain.Event, text string) Result {
	canon, ok := matchChoice(PaidByChoices, text)
	if !ok {
		return stay("Who paid?", choiceKeyboard(PaidByChoices))
	}
	s.Form.PaidBy = canon
	return goTo(s, domain.StatePaid)
}

func handlePaid(s *domain.Session, _ domain.Event, text string) Result {
	canon, ok := matchChoice(PaidChoices, text)
	if !ok {
		return stay("Is it paid?", choiceKeyboard(PaidChoices))
	}
	s.Form.Paid = canon
	return goTo(s, domain.StateReportedBy)
}

func handleReportedBy(s *domain.Session, ev domain.Event, text string) Result {
	if isToken(text, TokenUseMyName) {
		s.Form.ReportedBy = ev.SenderName
	} else if text != "" {
		s.Form.ReportedBy = text
	} else {
		return stay("Reported by?", [][]string{{TokenUseMyName}, {TokenBack, TokenCancel}})
	}
	return goTo(s, domain.StateStatus)
}

func handleStatus(s *domain.Session, _ domain.Event, text string) Result {
	canon, ok := matchChoice(StatusChoices, text)
	if !ok {
		return stay("Choose a status.", choiceKeyboard(StatusChoices))
	}
	s.Form.Status = canon
	return goTo(s, domain.StateNotes)
}

func handleNotes(s *domain.Session, _ domain.Event, text string) Result {
	if isToken(text, TokenSkip) {
		s.Form.Notes = ""
	} else {
		s.Form.Notes = text
	}
	return goTo(s, domain.StateInvoice)
}

func handleInvoice(s *domain.Session, _ domain.Event, text string) Result {
	if isToken(text, TokenSkip) {
		s.Form.InvoiceLink = ""
		return goTo(s, domain.StateConfirm)
	}
	if !validate.LooksLikeURL(text) {
		return stay("Send an invoice link starting with http:// or https://, or tap Skip.", navKeyboard(TokenSkip))
	}
	s.Form.InvoiceLink = strings.TrimSpace(text)
	return goTo(s, domain.StateConfirm)
}

// handleConfirm routes both typed tokens and inline-button callbacks, so
// the save/edit/cancel logic never diverges between the two.
func handleConfirm(s *domain.Session, token string) Result {
	switch strings.ToLower(strings.TrimSpace(token)) {
	case "save":
		return Result{Action: ActionSave}
	case "edit":
		return goTo(s, domain.StateDate)
	case "cancel":
		return Result{
			Prompt: Prompt{Text: "Cancelled.", RemoveKeyboard: true},
			Action: ActionCancel,
		}
	default:
		return Result{Prompt: Prompt{Text: "Use buttons: Save, Edit, or Cancel."}}
	}
}
