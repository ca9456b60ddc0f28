package handle_interaction

import (
	"fmt"
	"math"
	"strings"
	"time"
)

// HumanizeRetry renders d as "1 hours 1 minutes 5 seconds", leaving out zero
// components. Durations are rounded to whole seconds; anything under half a
// second renders as "0 seconds".
func HumanizeRetry(d time.Duration) string {
	total := int64(math.Round(d.Seconds()))
	if total <= 0 {
		return "0 seconds"
	}
	hours := total / 3600
	minutes := (total % 3600) / 60
	seconds := total % 60

	var parts []string
	if hours > 0 {
		parts = append(parts, fmt.Sprintf("%d hours", hours))
	}
	if minutes > 0 {
		parts = append(parts, fmt.Sprintf("%d minutes", minutes))
	}
	if seconds > 0 {
		parts = append(parts, fmt.Sprintf("%d seconds", seconds))
	}
	return strings.Join(parts, " ")
}
