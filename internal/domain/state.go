// Package domain defines the conversation states, the typed repair form,
// and the persistence models shared by the flow, service, and repository
// layers.
package domain

// State identifies one step of the intake conversation. States are stored
// as plain strings inside drafts so that a draft written by an older build
// remains readable.
type State string

// Conversation states in traversal order. DateTyped is a sub-prompt of
// Date and sits outside the back-navigation order.
const (
	StateStart        State = "START"
	StateDate         State = "DATE"
	StateDateTyped    State = "DATE_TYPED"
	StateType         State = "TYPE"
	StateUnitType     State = "UNIT_TYPE"
	StateUnitNumber   State = "UNIT_NUMBER"
	StateTrailerTruck State = "TRAILER_TRUCK"
	StateCategory     State = "CATEGORY"
	StateRepair       State = "REPAIR"
	StateDetails      State = "DETAILS"
	StateVendor       State = "VENDOR"
	StateTotal        State = "TOTAL"
	StatePaidBy       State = "PAID_BY"
	StatePaid         State = "PAID"
	StateReportedBy   State = "REPORTED_BY"
	StateStatus       State = "STATUS"
	StateNotes        State = "NOTES"
	StateInvoice      State = "INVOICE"
	StateConfirm      State = "CONFIRM"
)

// knownStates indexes every valid state for ParseState.
var knownStates = map[State]struct{}{
	StateStart:        {},
	StateDate:         {},
	StateDateTyped:    {},
	StateType:         {},
	StateUnitType:     {},
	StateUnitNumber:   {},
	StateTrailerTruck: {},
	StateCategory:     {},
	StateRepair:       {},
	StateDetails:      {},
	StateVendor:       {},
	StateTotal:        {},
	StatePaidBy:       {},
	StatePaid:         {},
	StateReportedBy:   {},
	StateStatus:       {},
	StateNotes:        {},
	StateInvoice:      {},
	StateConfirm:      {},
}

// ParseState maps a persisted state string to a State. Unrecognized values
// fall back to StateStart so a corrupted or future-versioned draft restarts
// the conversation instead of crashing it.
func ParseState(s string) State {
	st := State(s)
	if _, ok := knownStates[st]; ok {
		return st
	}
	return StateStart
}

// Valid reports whether s is one of the enumerated states.
func (s State) Valid() bool {
	_, ok := knownStates[s]
	return ok
}
