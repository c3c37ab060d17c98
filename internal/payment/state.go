package payment

import (
	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
	"github.com/glowora/payconfirm/pkg/types"
)

// EventKind discriminates the inputs that can move the session state.
type EventKind string

const (
	// EventKindSnapshot is a status-check response from the backend.
	EventKindSnapshot EventKind = "snapshot"
	// EventKindDeadline is a local observation that the intent expired.
	EventKindDeadline EventKind = "deadline"
	// EventKindCheckFailed is a status check that failed in a way retries
	// cannot heal, such as the backend no longer knowing the payment code.
	EventKindCheckFailed EventKind = "check_failed"
)

// Event is one input to the confirmation state machine.
type Event struct {
	Kind     EventKind
	Snapshot types.StatusSnapshot
}

// SnapshotEvent wraps a status-check response.
func SnapshotEvent(snapshot types.StatusSnapshot) Event {
	return Event{Kind: EventKindSnapshot, Snapshot: snapshot}
}

// DeadlineEvent signals that the wall clock passed the intent's expiry.
func DeadlineEvent() Event {
	return Event{Kind: EventKindDeadline}
}

// CheckFailedEvent signals a non-retryable status-check error.
func CheckFailedEvent() Event {
	return Event{Kind: EventKindCheckFailed}
}

// Outcome describes a terminal state for presentation. PaidAmount is set only
// for partial refunds, where an underpayment was detected and auto-credited
// back to the wallet.
type Outcome struct {
	State      enums.ScreenStatus
	PaidAmount decimal.Decimal
}

// Result is the output of one transition evaluation.
type Result struct {
	State   enums.ScreenStatus
	Changed bool
	Outcome Outcome
}

// Apply evaluates one event against the current state and returns the new
// state. It is pure: the session drives side effects (stopping timers,
// dispatching callbacks) off the returned Result, never off assumed prior
// state. Terminal states absorb every event, which is what makes the final
// state deterministic under any timer/poll interleaving.
func Apply(current enums.ScreenStatus, ev Event) Result {
	unchanged := Result{State: current}
	if current.IsTerminal() {
		return unchanged
	}

	switch ev.Kind {
	case EventKindSnapshot:
		return applySnapshot(current, ev.Snapshot)
	case EventKindDeadline:
		return terminal(enums.ScreenStatusExpired, decimal.Decimal{})
	case EventKindCheckFailed:
		return terminal(enums.ScreenStatusFailed, decimal.Decimal{})
	default:
		return unchanged
	}
}

func applySnapshot(current enums.ScreenStatus, snapshot types.StatusSnapshot) Result {
	switch snapshot.Status {
	case enums.RemoteStatusCompleted:
		return terminal(enums.ScreenStatusSuccess, decimal.Decimal{})
	case enums.RemoteStatusFailed:
		if snapshot.PaidAmount.IsPositive() {
			return terminal(enums.ScreenStatusPartialRefund, snapshot.PaidAmount)
		}
		return terminal(enums.ScreenStatusFailed, decimal.Decimal{})
	case enums.RemoteStatusExpired:
		return terminal(enums.ScreenStatusExpired, decimal.Decimal{})
	case enums.RemoteStatusPending:
		return Result{State: current}
	default:
		// Unknown statuses are treated like pending so a newer backend
		// cannot strand the session in a half-applied transition.
		return Result{State: current}
	}
}

func terminal(state enums.ScreenStatus, paid decimal.Decimal) Result {
	return Result{
		State:   state,
		Changed: true,
		Outcome: Outcome{State: state, PaidAmount: paid},
	}
}
