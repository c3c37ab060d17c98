package stub

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
	pkgerrors "github.com/glowora/payconfirm/pkg/errors"
	"github.com/glowora/payconfirm/pkg/types"
)

// Scenario scripts how a stubbed payment resolves once its pending polls are
// used up.
type Scenario string

const (
	ScenarioSuccess Scenario = "success"
	ScenarioFailed  Scenario = "failed"
	ScenarioPartial Scenario = "partial"
	// ScenarioStuck never resolves; the intent runs into its expiry.
	ScenarioStuck Scenario = "stuck"
)

// partialPaidRatio is the slice of the amount the stub pretends was paid
// before the underpayment was detected and refunded.
var partialPaidRatio = decimal.NewFromFloat(0.2)

type record struct {
	intent      types.PaymentIntent
	scenario    Scenario
	pendingLeft int
	canceled    bool
}

// Store keeps stubbed payment intents in memory. Scenarios are selected by
// reference-id prefix ("fail-", "partial-", "stuck-") so a caller can demo
// every outcome through the unchanged production contract.
type Store struct {
	mu           sync.Mutex
	records      map[string]*record
	ttl          time.Duration
	pendingPolls int
	now          func() time.Time
}

// StoreParams configure the in-memory store.
type StoreParams struct {
	TTL          time.Duration
	PendingPolls int
	Now          func() time.Time
}

// NewStore builds a store. TTL bounds every intent; PendingPolls is how many
// status checks report pending before a scenario resolves.
func NewStore(params StoreParams) *Store {
	ttl := params.TTL
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	pendingPolls := params.PendingPolls
	if pendingPolls < 0 {
		pendingPolls = 0
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		records:      make(map[string]*record),
		ttl:          ttl,
		pendingPolls: pendingPolls,
		now:          now,
	}
}

func scenarioFor(referenceID string) Scenario {
	switch {
	case strings.HasPrefix(referenceID, "fail-"):
		return ScenarioFailed
	case strings.HasPrefix(referenceID, "partial-"):
		return ScenarioPartial
	case strings.HasPrefix(referenceID, "stuck-"):
		return ScenarioStuck
	default:
		return ScenarioSuccess
	}
}

// CreateIntent opens a stubbed intent and returns the handle.
func (s *Store) CreateIntent(referenceID string, paymentType enums.PaymentType, amount decimal.Decimal) types.PaymentIntent {
	s.mu.Lock()
	defer s.mu.Unlock()

	code := "PAY-" + uuid.NewString()
	intent := types.PaymentIntent{
		PaymentCode: code,
		ExpiredAt:   s.now().Add(s.ttl),
		PaymentType: paymentType,
		ReferenceID: referenceID,
		Banking: types.BankingInfo{
			BankName:      "Glow Bank",
			AccountNumber: "0012345678",
			AccountName:   "GLOWORA PTE LTD",
			Amount:        amount,
			QRCodeURL:     fmt.Sprintf("https://cdn.glowora.test/qr/%s.png", code),
		},
	}
	s.records[code] = &record{
		intent:      intent,
		scenario:    scenarioFor(referenceID),
		pendingLeft: s.pendingPolls,
	}
	return intent
}

// Check returns the current status snapshot for a payment code.
func (s *Store) Check(paymentCode string) (types.StatusSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[paymentCode]
	if !ok {
		return types.StatusSnapshot{}, pkgerrors.New(pkgerrors.CodeNotFound, "unknown payment code")
	}

	snapshot := types.StatusSnapshot{
		Amount:      rec.intent.Banking.Amount,
		PaymentType: rec.intent.PaymentType,
	}

	switch {
	case rec.canceled:
		snapshot.Status = enums.RemoteStatusFailed
	case !s.now().Before(rec.intent.ExpiredAt):
		snapshot.Status = enums.RemoteStatusExpired
	case rec.pendingLeft > 0 || rec.scenario == ScenarioStuck:
		rec.pendingLeft--
		snapshot.Status = enums.RemoteStatusPending
	default:
		switch rec.scenario {
		case ScenarioFailed:
			snapshot.Status = enums.RemoteStatusFailed
		case ScenarioPartial:
			snapshot.Status = enums.RemoteStatusFailed
			snapshot.PaidAmount = rec.intent.Banking.Amount.Mul(partialPaidRatio)
			snapshot.PaymentMethod = "bank_transfer"
		default:
			snapshot.Status = enums.RemoteStatusCompleted
			snapshot.PaymentMethod = "bank_transfer"
		}
	}
	return snapshot, nil
}

// CancelByReference marks every intent for the reference as canceled.
func (s *Store) CancelByReference(referenceID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	found := false
	for _, rec := range s.records {
		if rec.intent.ReferenceID == referenceID {
			rec.canceled = true
			found = true
		}
	}
	if !found {
		return pkgerrors.New(pkgerrors.CodeNotFound, "unknown appointment")
	}
	return nil
}
