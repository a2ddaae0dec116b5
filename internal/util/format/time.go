package format

import (
	"fmt"
	"time"
)

// Clock renders a duration as m:ss, or h:mm:ss from one hour up.
// Sub-second remainders are truncated.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int64(d / time.Second)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%d:%02d", m, s)
}

// ClockIf renders d with Clock when ok, else "".
func ClockIf(d time.Duration, ok bool) string {
	if !ok {
		return ""
	}
	return Clock(d)
}
