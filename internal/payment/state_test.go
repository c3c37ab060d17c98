package payment

import (
	"testing"

	"github.com/shopspring/decimal"

	"github.com/glowora/payconfirm/pkg/enums"
	"github.com/glowora/payconfirm/pkg/types"
)

func snapshot(status enums.RemoteStatus, paid int64) types.StatusSnapshot {
	return types.StatusSnapshot{
		Status:     status,
		PaidAmount: decimal.NewFromInt(paid),
		Amount:     decimal.NewFromInt(250000),
	}
}

func TestApplyFromWaiting(t *testing.T) {
	cases := []struct {
		name    string
		event   Event
		want    enums.ScreenStatus
		changed bool
		paid    int64
	}{
		{name: "completed wins", event: SnapshotEvent(snapshot(enums.RemoteStatusCompleted, 0)), want: enums.ScreenStatusSuccess, changed: true},
		{name: "failed with partial payment", event: SnapshotEvent(snapshot(enums.RemoteStatusFailed, 50000)), want: enums.ScreenStatusPartialRefund, changed: true, paid: 50000},
		{name: "failed without payment", event: SnapshotEvent(snapshot(enums.RemoteStatusFailed, 0)), want: enums.ScreenStatusFailed, changed: true},
		{name: "server reported expiry", event: SnapshotEvent(snapshot(enums.RemoteStatusExpired, 0)), want: enums.ScreenStatusExpired, changed: true},
		{name: "pending is a no-op", event: SnapshotEvent(snapshot(enums.RemoteStatusPending, 0)), want: enums.ScreenStatusWaiting},
		{name: "unknown status is a no-op", event: SnapshotEvent(snapshot(enums.RemoteStatus("refunded"), 0)), want: enums.ScreenStatusWaiting},
		{name: "local deadline", event: DeadlineEvent(), want: enums.ScreenStatusExpired, changed: true},
		{name: "permanent check failure", event: CheckFailedEvent(), want: enums.ScreenStatusFailed, changed: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			result := Apply(enums.ScreenStatusWaiting, tc.event)
			if result.State != tc.want {
				t.Fatalf("expected state %s, got %s", tc.want, result.State)
			}
			if result.Changed != tc.changed {
				t.Fatalf("expected changed=%v, got %v", tc.changed, result.Changed)
			}
			if tc.paid > 0 && !result.Outcome.PaidAmount.Equal(decimal.NewFromInt(tc.paid)) {
				t.Fatalf("expected paid amount %d, got %s", tc.paid, result.Outcome.PaidAmount)
			}
		})
	}
}

func TestTerminalStatesAbsorbEveryEvent(t *testing.T) {
	terminals := []enums.ScreenStatus{
		enums.ScreenStatusSuccess,
		enums.ScreenStatusExpired,
		enums.ScreenStatusFailed,
		enums.ScreenStatusPartialRefund,
	}
	events := []Event{
		SnapshotEvent(snapshot(enums.RemoteStatusCompleted, 0)),
		SnapshotEvent(snapshot(enums.RemoteStatusFailed, 99999)),
		SnapshotEvent(snapshot(enums.RemoteStatusExpired, 0)),
		SnapshotEvent(snapshot(enums.RemoteStatusPending, 0)),
		DeadlineEvent(),
		CheckFailedEvent(),
	}

	for _, state := range terminals {
		for _, ev := range events {
			result := Apply(state, ev)
			if result.Changed {
				t.Fatalf("terminal state %s changed on event %s", state, ev.Kind)
			}
			if result.State != state {
				t.Fatalf("terminal state %s moved to %s on event %s", state, result.State, ev.Kind)
			}
		}
	}
}

func TestStalePendingAfterProgressDoesNotRegress(t *testing.T) {
	result := Apply(enums.ScreenStatusWaiting, SnapshotEvent(snapshot(enums.RemoteStatusCompleted, 0)))
	if result.State != enums.ScreenStatusSuccess {
		t.Fatalf("expected success, got %s", result.State)
	}
	late := Apply(result.State, SnapshotEvent(snapshot(enums.RemoteStatusPending, 0)))
	if late.State != enums.ScreenStatusSuccess || late.Changed {
		t.Fatalf("stale pending snapshot must not regress out of success")
	}
}
