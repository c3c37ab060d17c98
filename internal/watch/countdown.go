package watch

import (
	"fmt"
	"time"
)

// FormatRemaining renders a duration as mm:ss for the countdown display.
// Negative durations clamp to 00:00.
func FormatRemaining(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%02d:%02d", total/60, total%60)
}
