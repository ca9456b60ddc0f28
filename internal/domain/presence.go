package domain

import "time"

type ManualOverride struct {
	Text      string
	CreatedAt time.Time
}

func (o ManualOverride) Age(now time.Time) time.Duration {
	return now.Sub(o.CreatedAt)
}

var DefaultPresencePool = []string{
	"📈 detecting PRs!",
	"🦾 Lifting weights",
}
