package services

import (
	"context"
	"time"

	"github.com/ahmetcoskunkizilkaya/champions-backend/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

const (
	// ReviewCredits is awarded per indicator review in an approved
	// submission and per accepted single review.
	ReviewCredits = 10
	// VoteCredits is awarded to the owner the first time a vote row is up.
	VoteCredits = 2

	MaxRating        = 5
	MaxRationaleLen  = 2000
	MaxTagsPerReview = 10
	MaxAdminNoteLen  = 1000
)

// clock lets tests pin the timestamps a service writes.
type clock struct {
	now func() time.Time
}

// SetClock replaces the time source. Intended for tests.
func (c *clock) SetClock(now func() time.Time) {
	c.now = now
}

func (c *clock) timeNow() time.Time {
	if c.now == nil {
		return time.Now().UTC()
	}
	return c.now()
}

func startSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return telemetry.Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// endSpan records *errp on the span and ends it. Use with defer.
func endSpan(span trace.Span, errp *error) {
	if errp != nil {
		telemetry.RecordError(span, *errp)
	}
	span.End()
}
