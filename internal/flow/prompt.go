// Package flow implements the intake conversation state machine: the step
// table, the per-step prompts and keyboards, and the transition logic that
// turns one inbound event into a mutated session plus one outbound prompt.
//
// The machine is pure: it never touches a store or a transport. Callers
// (the intake service) persist the session after every transition and emit
// the returned prompt through the chat channel.
package flow

import (
	"strings"

	"golang.org/x/text/cases"

	"github.com/fleetops/repair-intake/internal/domain"
)

// Navigation and shortcut tokens. These double as reply-keyboard button
// labels, so inputs are matched case-insensitively but rendered exactly.
const (
	TokenBack      = "Back"
	TokenCancel    = "Cancel"
	TokenContinue  = "Continue"
	TokenDone      = "Done"
	TokenSkip      = "Skip"
	TokenToday     = "Today"
	TokenPickDate  = "Pick date"
	TokenUseMyName = "Use my name"
)

// Inline-button callback tokens on the confirmation view.
const (
	CallbackSave   = "save"
	CallbackEdit   = "edit"
	CallbackCancel = "cancel_inline"
)

// Choice sets for the enumerated steps.
var (
	TypeChoices     = []string{"Repair", "PM Service", "Tire", "Tow", "Wash", "Inspection", "Other"}
	CategoryChoices = []string{"Engine", "Tires", "Brakes", "Electrical", "Fluids/Oil", "Body", "Cooling", "Drivetrain", "DOT", "Other"}
	PaidByChoices   = []string{"Company", "Driver", "Warranty", "Other"}
	PaidChoices     = []string{"Yes", "No"}
	StatusChoices   = []string{"Open", "In Progress", "On Hold", "Closed"}
	UnitTypeChoices = []string{"Truck", "Trailer"}
)

// Prompt describes one outbound message: its text plus either a reply
// keyboard, inline buttons, or an instruction to drop the keyboard.
type Prompt struct {
	Text           string
	Keyboard       [][]string
	Inline         []Button
	RemoveKeyboard bool
}

// Button is one inline action under a message.
type Button struct {
	Label string
	Data  string
}

// choiceKeyboard packs choices into rows of three and appends the
// navigation row, mirroring how every enumerated step renders.
func choiceKeyboard(choices []string) [][]string {
	var rows [][]string
	for i := 0; i < len(choices); i += 3 {
		end := i + 3
		if end > len(choices) {
			end = len(choices)
		}
		rows = append(rows, choices[i:end])
	}
	return append(rows, []string{TokenBack, TokenCancel})
}

// navKeyboard renders a single row of the given buttons followed by Back
// and Cancel.
func navKeyboard(extra ...string) [][]string {
	return [][]string{append(append([]string{}, extra...), TokenBack, TokenCancel)}
}

// foldCaser performs Unicode case folding for caseless choice matching.
var foldCaser = cases.Fold()

// matchChoice returns the canonical choice label matching text, caselessly.
func matchChoice(choices []string, text string) (string, bool) {
	ft := foldCaser.String(strings.TrimSpace(text))
	for _, c := range choices {
		if foldCaser.String(c) == ft {
			return c, true
		}
	}
	return "", false
}

// isToken reports whether text is the given token, caselessly.
func isToken(text, token string) bool {
	return strings.EqualFold(strings.TrimSpace(text), token)
}

// unitWord names the unit kind for prompts ("truck", "trailer", "unit").
func unitWord(f *domain.Form) string {
	switch f.UnitType {
	case domain.UnitTruck:
		return "truck"
	case domain.UnitTrailer:
		return "trailer"
	default:
		return "unit"
	}
}

// stripUnitTokens removes TRK/TRL prefixes users sometimes type along with
// the number ("TRK 1234" -> "1234").
func stripUnitTokens(text string) string {
	t := text
	for _, tok := range []string{domain.UnitTruck, domain.UnitTrailer} {
		t = strings.ReplaceAll(t, tok, "")
		t = strings.ReplaceAll(t, strings.ToLower(tok), "")
	}
	return strings.TrimSpace(t)
}

// PromptFor builds the entry prompt of a state, the one re-issued on back
// navigation and after each successful transition.
func PromptFor(state domain.State, f *domain.Form) Prompt {
	switch state {
	case domain.StateStart:
		return Prompt{Text: "Create a new repair record.", Keyboard: [][]string{{TokenContinue, TokenCancel}}}
	case domain.StateDate:
		return Prompt{Text: "Date of the repair?", Keyboard: [][]string{{TokenToday, TokenPickDate}, {TokenBack, TokenCancel}}}
	case domain.StateDateTyped:
		return Prompt{Text: "Type date as YYYY-MM-DD", Keyboard: navKeyboard()}
	case domain.StateType:
		return Prompt{Text: "Type?", Keyboard: choiceKeyboard(TypeChoices)}
	case domain.StateUnitType:
		return Prompt{Text: "Unit type?", Keyboard: choiceKeyboard(UnitTypeChoices)}
	case domain.StateUnitNumber:
		return Prompt{Text: "Enter " + unitWord(f) + " number.", Keyboard: navKeyboard()}
	case domain.StateTrailerTruck:
		return Prompt{Text: "Trailer linked to which truck number?", Keyboard: navKeyboard()}
	case domain.StateCategory:
		return Prompt{Text: "Category?", Keyboard: choiceKeyboard(CategoryChoices)}
	case domain.StateRepair:
		return Prompt{Text: "Short title of the work?", Keyboard: navKeyboard()}
	case domain.StateDetails:
		return Prompt{Text: "Details?", Keyboard: navKeyboard(TokenDone)}
	case domain.StateVendor:
		return Prompt{Text: "Vendor?", Keyboard: navKeyboard()}
	case domain.StateTotal:
		return Prompt{Text: "Total amount?", Keyboard: navKeyboard()}
	case domain.StatePaidBy:
		return Prompt{Text: "Who paid?", Keyboard: choiceKeyboard(PaidByChoices)}
	case domain.StatePaid:
		return Prompt{Text: "Is it paid?", Keyboard: choiceKeyboard(PaidChoices)}
	case domain.StateReportedBy:
		return Prompt{Text: "Reported by?", Keyboard: [][]string{{TokenUseMyName}, {TokenBack, TokenCancel}}}
	case domain.StateStatus:
		return Prompt{Text: "Status?", Keyboard: choiceKeyboard(StatusChoices)}
	case domain.StateNotes:
		return Prompt{Text: "Notes (optional).", Keyboard: navKeyboard(TokenSkip)}
	case domain.StateInvoice:
		return Prompt{Text: "Invoice link (optional).", Keyboard: navKeyboard(TokenSkip)}
	case domain.StateConfirm:
		return Prompt{
			Text: f.Summary(),
			Inline: []Button{
				{Label: "Save", Data: CallbackSave},
				{Label: "Edit", Data: CallbackEdit},
				{Label: "Cancel", Data: CallbackCancel},
			},
		}
	default:
		return PromptFor(domain.StateStart, f)
	}
}
