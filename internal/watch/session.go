package watch

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/glowora/payconfirm/internal/payment"
	"github.com/glowora/payconfirm/pkg/enums"
	pkgerrors "github.com/glowora/payconfirm/pkg/errors"
	"github.com/glowora/payconfirm/pkg/logger"
	"github.com/glowora/payconfirm/pkg/metrics"
	"github.com/glowora/payconfirm/pkg/types"
)

// The cadence constants are observable behavior of the checkout flow, not
// tuning knobs: the backend expects one status check per five seconds and the
// countdown renders once per second.
const (
	DefaultPollInterval  = 5 * time.Second
	DefaultCountdownTick = time.Second
	DefaultCheckTimeout  = 10 * time.Second
)

// StatusChecker performs one status read for a payment code.
type StatusChecker interface {
	CheckStatus(ctx context.Context, paymentCode string) (types.StatusSnapshot, error)
}

// Sink receives presentation events from a session. Remaining is called once
// per countdown tick while the session is waiting; Terminal is called exactly
// once, when the session reaches its final state.
type Sink interface {
	Remaining(formatted string)
	Terminal(outcome payment.Outcome)
}

// SessionParams configure a confirmation session.
type SessionParams struct {
	Logger        *logger.Logger
	Intent        types.PaymentIntent
	Checker       StatusChecker
	Sink          Sink
	Metrics       *metrics.WatchMetrics
	PollInterval  time.Duration
	CountdownTick time.Duration
	CheckTimeout  time.Duration
	Now           func() time.Time
}

// Session watches a single payment intent until it reaches a terminal state.
// It owns both timers: the countdown tick and the status poll. Both stop the
// moment the state leaves waiting, on Close, and on context cancellation.
type Session struct {
	logg          *logger.Logger
	intent        types.PaymentIntent
	checker       StatusChecker
	sink          Sink
	metrics       *metrics.WatchMetrics
	pollInterval  time.Duration
	countdownTick time.Duration
	checkTimeout  time.Duration
	now           func() time.Time

	mu      sync.Mutex
	state   enums.ScreenStatus
	outcome payment.Outcome
	started bool
	closed  bool

	// inFlight is touched only by the loop goroutine.
	inFlight bool

	closeOnce sync.Once
	doneOnce  sync.Once
	closing   chan struct{}
	done      chan struct{}
}

type checkResult struct {
	snapshot types.StatusSnapshot
	err      error
}

// NewSession builds a session. An invalid intent is fatal here: the session
// is never constructed and no timers start.
func NewSession(params SessionParams) (*Session, error) {
	if params.Logger == nil {
		return nil, fmt.Errorf("logger required")
	}
	if params.Checker == nil {
		return nil, fmt.Errorf("status checker required")
	}
	if params.Sink == nil {
		return nil, fmt.Errorf("sink required")
	}
	if err := params.Intent.Validate(); err != nil {
		return nil, err
	}
	pollInterval := params.PollInterval
	if pollInterval <= 0 {
		pollInterval = DefaultPollInterval
	}
	countdownTick := params.CountdownTick
	if countdownTick <= 0 {
		countdownTick = DefaultCountdownTick
	}
	checkTimeout := params.CheckTimeout
	if checkTimeout <= 0 {
		checkTimeout = DefaultCheckTimeout
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Session{
		logg:          params.Logger,
		intent:        params.Intent,
		checker:       params.Checker,
		sink:          params.Sink,
		metrics:       params.Metrics,
		pollInterval:  pollInterval,
		countdownTick: countdownTick,
		checkTimeout:  checkTimeout,
		now:           now,
		state:         enums.ScreenStatusWaiting,
		closing:       make(chan struct{}),
		done:          make(chan struct{}),
	}, nil
}

// Start launches the session loop. It may be called once, and never after
// Close.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return fmt.Errorf("session already closed")
	}
	if s.started {
		s.mu.Unlock()
		return fmt.Errorf("session already started")
	}
	s.started = true
	s.mu.Unlock()

	if ctx == nil {
		ctx = context.Background()
	}
	go s.loop(ctx)
	return nil
}

// State returns the current session state.
func (s *Session) State() enums.ScreenStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Outcome returns the terminal outcome; meaningful once State is terminal.
func (s *Session) Outcome() payment.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.outcome
}

// Done closes when the session loop has fully stopped and both timers are
// released.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Close tears the session down. Safe to call from any exit path and any
// number of times, including before Start; it returns after the loop
// goroutine has stopped, and Start refuses to run afterwards.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		close(s.closing)
	})
	s.mu.Lock()
	s.closed = true
	started := s.started
	s.mu.Unlock()
	if started {
		<-s.done
	} else {
		// Never started, and Start refuses from here on: the loop will not
		// run, so mark it finished. doneOnce is shared with the loop so a
		// Start racing this path cannot close done twice.
		s.doneOnce.Do(func() { close(s.done) })
	}
	return nil
}

func (s *Session) loop(ctx context.Context) {
	defer s.doneOnce.Do(func() { close(s.done) })

	ctx = s.logg.WithPaymentCode(ctx, s.intent.PaymentCode)
	ctx = s.logg.WithPaymentType(ctx, s.intent.PaymentType.String())
	s.logg.Info(ctx, "confirmation session started")

	// An intent already past its deadline expires before any remaining-time
	// emission or status check.
	if s.intent.Expired(s.now()) {
		s.applyEvent(ctx, payment.DeadlineEvent())
		return
	}

	countdown := time.NewTicker(s.countdownTick)
	defer countdown.Stop()
	poll := time.NewTicker(s.pollInterval)
	defer poll.Stop()

	results := make(chan checkResult, 1)

	for {
		select {
		case <-ctx.Done():
			s.logg.Info(ctx, "confirmation session context canceled")
			return
		case <-s.closing:
			s.logg.Info(ctx, "confirmation session closed")
			return
		case <-countdown.C:
			s.handleCountdown(ctx, results)
		case <-poll.C:
			s.handlePollTick(ctx, results)
		case result := <-results:
			s.inFlight = false
			s.handleCheckResult(ctx, result)
		}
		if s.State().IsTerminal() {
			return
		}
	}
}

func (s *Session) handleCountdown(ctx context.Context, results chan checkResult) {
	now := s.now()
	if s.intent.Expired(now) {
		s.expire(ctx, results)
		return
	}
	s.sink.Remaining(FormatRemaining(s.intent.ExpiredAt.Sub(now)))
}

func (s *Session) handlePollTick(ctx context.Context, results chan checkResult) {
	if s.inFlight {
		s.logg.Debug(ctx, "status check still in flight, skipping tick")
		return
	}
	// Re-check the deadline here as well, so a drifting countdown ticker
	// cannot keep a dead intent polling.
	if s.intent.Expired(s.now()) {
		s.expire(ctx, results)
		return
	}
	s.inFlight = true
	go s.check(ctx, results)
}

func (s *Session) check(ctx context.Context, results chan<- checkResult) {
	checkCtx, cancel := context.WithTimeout(ctx, s.checkTimeout)
	defer cancel()
	start := time.Now()
	snapshot, err := s.checker.CheckStatus(checkCtx, s.intent.PaymentCode)
	s.metrics.ObservePollDuration(s.intent.PaymentType.String(), time.Since(start))
	// Buffered by one and guarded by inFlight, so this never blocks even
	// when the loop has already exited.
	results <- checkResult{snapshot: snapshot, err: err}
}

func (s *Session) handleCheckResult(ctx context.Context, result checkResult) {
	if result.err != nil {
		s.metrics.IncPollFailure(s.intent.PaymentType.String())
		if pkgerrors.IsRetryable(result.err) {
			s.logg.Warn(s.logg.WithField(ctx, "error", result.err.Error()), "status check failed, retrying on next tick")
			return
		}
		// Validation and not-found errors do not heal on retry: the backend
		// will never resolve this payment code.
		s.logg.Error(ctx, "status check failed permanently", result.err)
		s.applyEvent(ctx, payment.CheckFailedEvent())
		return
	}
	s.metrics.IncPollSuccess(s.intent.PaymentType.String())
	s.applyEvent(ctx, payment.SnapshotEvent(result.snapshot))
}

// expire applies the deadline, but a check result that already arrived gets
// evaluated first: a completed payment observed in the same pass as the
// deadline wins over expiry.
func (s *Session) expire(ctx context.Context, results chan checkResult) {
	select {
	case result := <-results:
		s.inFlight = false
		s.handleCheckResult(ctx, result)
		if s.State().IsTerminal() {
			return
		}
	default:
	}
	s.applyEvent(ctx, payment.DeadlineEvent())
}

func (s *Session) applyEvent(ctx context.Context, ev payment.Event) {
	s.mu.Lock()
	result := payment.Apply(s.state, ev)
	s.state = result.State
	if result.Changed {
		s.outcome = result.Outcome
	}
	s.mu.Unlock()

	if !result.Changed || !result.State.IsTerminal() {
		return
	}
	s.metrics.IncOutcome(result.State.String())
	ctx = s.logg.WithField(ctx, "state", result.State.String())
	if result.State == enums.ScreenStatusPartialRefund {
		ctx = s.logg.WithField(ctx, "paid_amount", result.Outcome.PaidAmount.String())
	}
	s.logg.Info(ctx, "confirmation session reached terminal state")
	s.sink.Terminal(result.Outcome)
}
