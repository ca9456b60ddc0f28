package domain

import "context"

type UsageRecorder interface {
	Increment(ctx context.Context, userID, command string, delta int) error
}

// UsageSink accepts increments without blocking the caller.
type UsageSink interface {
	Record(userID, command string, delta int)
}
