package flow

import (
	"strings"

	"github.com/fleetops/repair-intake/internal/domain"
)

// Action tells the caller what side effect, if any, the transition asks
// for. The machine itself performs no I/O.
type Action int

const (
	// ActionNone: persist the session and send the prompt.
	ActionNone Action = iota
	// ActionSave: run the save protocol for the completed form.
	ActionSave
	// ActionCancel: discard the draft and acknowledge cancellation.
	ActionCancel
)

// Result is the outcome of advancing the machine by one event.
type Result struct {
	Prompt Prompt
	Action Action
}

// backOrder is the linear traversal used by the Back token. DATE_TYPED is
// deliberately absent: it is a sub-prompt of DATE, so backing out of it
// (or out of TYPE) lands on DATE.
var backOrder = []domain.State{
	domain.StateDate,
	domain.StateType,
	domain.StateUnitType,
	domain.StateUnitNumber,
	domain.StateTrailerTruck,
	domain.StateCategory,
	domain.StateRepair,
	domain.StateDetails,
	domain.StateVendor,
	domain.StateTotal,
	domain.StatePaidBy,
	domain.StatePaid,
	domain.StateReportedBy,
	domain.StateStatus,
	domain.StateNotes,
	domain.StateInvoice,
	domain.StateConfirm,
}

// prevState returns the step preceding state in the traversal order.
// The first step and START back onto themselves; DATE_TYPED folds back
// into DATE.
func prevState(state domain.State) domain.State {
	if state == domain.StateDateTyped {
		return domain.StateDate
	}
	for i, st := range backOrder {
		if st == state {
			if i == 0 {
				return st
			}
			return backOrder[i-1]
		}
	}
	return domain.StateStart
}

// Advance consumes one inbound event, mutates the session, and returns the
// outbound prompt plus the requested side effect. Global Back/Cancel
// tokens are handled here before per-step dispatch; inline confirmation
// callbacks are routed through the same confirm logic as typed input.
func Advance(s *domain.Session, ev domain.Event) Result {
	if ev.IsCallback() {
		return handleConfirm(s, callbackToken(ev.Callback))
	}

	text := strings.TrimSpace(ev.Text)

	if s.State != domain.StateStart {
		if isToken(text, TokenCancel) {
			return Result{
				Prompt: Prompt{Text: "Cancelled.", RemoveKeyboard: true},
				Action: ActionCancel,
			}
		}
		if isToken(text, TokenBack) {
			prev := prevState(s.State)
			s.State = prev
			return Result{Prompt: PromptFor(prev, &s.Form)}
		}
	}

	h, ok := steps[s.State]
	if !ok {
		// Unknown in-memory state: restart rather than strand the chat.
		s.State = domain.StateStart
		return Result{Prompt: PromptFor(domain.StateStart, &s.Form)}
	}
	return h(s, ev, text)
}

// callbackToken maps an inline-button payload onto the equivalent typed
// confirmation token.
func callbackToken(data string) string {
	switch data {
	case CallbackSave:
		return "save"
	case CallbackEdit:
		return "edit"
	case CallbackCancel:
		return "cancel"
	default:
		return data
	}
}

// goTo moves the session to next and issues that step's entry prompt.
func goTo(s *domain.Session, next domain.State) Result {
	s.State = next
	return Result{Prompt: PromptFor(next, &s.Form)}
}

// stay keeps the current state and re-prompts with guidance text.
func stay(text string, kb [][]string) Result {
	return Result{Prompt: Prompt{Text: text, Keyboard: kb}}
}
