package watch

import (
	"context"
	"fmt"
	"sync/atomic"

	"github.com/glowora/payconfirm/pkg/enums"
	"github.com/glowora/payconfirm/pkg/logger"
)

// StateSource exposes the current session state to the guard. *Session
// satisfies it.
type StateSource interface {
	State() enums.ScreenStatus
}

// Confirmer asks the user whether they really want to leave a pending
// payment. It blocks until the user answers.
type Confirmer interface {
	ConfirmLeave(ctx context.Context) (bool, error)
}

// Canceler releases the underlying payable resource (reservation,
// appointment) when the user abandons the payment.
type Canceler interface {
	Cancel(ctx context.Context) error
}

// GuardParams configure an exit guard.
type GuardParams struct {
	Logger    *logger.Logger
	Source    StateSource
	Confirmer Confirmer
	Canceler  Canceler
}

// Guard intercepts attempts to leave a pending payment. While the session is
// waiting it suspends the exit behind a confirmation prompt; once the session
// is terminal it is inert and every attempt passes.
type Guard struct {
	logg      *logger.Logger
	source    StateSource
	confirmer Confirmer
	canceler  Canceler
	prompting atomic.Bool
}

// NewGuard builds an exit guard.
func NewGuard(params GuardParams) (*Guard, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Source == nil {
		return nil, fmt.Errorf("state source required")
	}
	if params.Confirmer == nil {
		return nil, fmt.Errorf("confirmer required")
	}
	return &Guard{
		logg:      params.Logger,
		source:    params.Source,
		confirmer: params.Confirmer,
		canceler:  params.Canceler,
	}, nil
}

// Attempt evaluates one exit attempt and reports whether the caller may
// proceed. Only one confirmation prompt is in flight at a time; re-entrant
// attempts while a prompt is open are dropped.
func (g *Guard) Attempt(ctx context.Context) bool {
	if g.source.State().IsTerminal() {
		return true
	}
	if !g.prompting.CompareAndSwap(false, true) {
		return false
	}
	defer g.prompting.Store(false)

	confirmed, err := g.confirmer.ConfirmLeave(ctx)
	if err != nil {
		g.logg.Error(ctx, "leave confirmation failed", err)
		return false
	}
	if !confirmed {
		g.logg.Info(ctx, "user stayed on pending payment")
		return false
	}
	if g.canceler != nil {
		// The user's choice to leave is honored regardless of whether the
		// cancellation call lands.
		if err := g.canceler.Cancel(ctx); err != nil {
			g.logg.Error(ctx, "reservation cancel failed", err)
		}
	}
	g.logg.Info(ctx, "user abandoned pending payment")
	return true
}
