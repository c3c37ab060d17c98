package watch

import (
	"testing"
	"time"
)

func TestFormatRemaining(t *testing.T) {
	cases := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "two minutes", d: 2 * time.Minute, want: "02:00"},
		{name: "under a minute", d: 59 * time.Second, want: "00:59"},
		{name: "sub-second floors to zero", d: 900 * time.Millisecond, want: "00:00"},
		{name: "negative clamps", d: -5 * time.Second, want: "00:00"},
		{name: "over an hour keeps minutes", d: 61 * time.Minute, want: "61:00"},
		{name: "mixed", d: 9*time.Minute + 7*time.Second, want: "09:07"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := FormatRemaining(tc.d); got != tc.want {
				t.Fatalf("expected %q, got %q", tc.want, got)
			}
		})
	}
}
